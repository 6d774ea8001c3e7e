package tunnel

import (
	"context"

	"golang.ngrok.com/ngrok"
	ngrokcfg "golang.ngrok.com/ngrok/config"
)

// NgrokDialer establishes tunnels through the ngrok agent SDK.
type NgrokDialer struct{}

// Dial opens an HTTPS endpoint on the ngrok edge. The returned tunnel is a
// net.Listener whose URL is the public endpoint.
func (NgrokDialer) Dial(ctx context.Context, authtoken string) (Listener, error) {
	tun, err := ngrok.Listen(ctx,
		ngrokcfg.HTTPEndpoint(),
		ngrok.WithAuthtoken(authtoken),
	)
	if err != nil {
		return nil, err
	}
	return tun, nil
}
