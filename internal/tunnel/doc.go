// Package tunnel manages the public ingress for the webhook receiver.
//
// A Manager owns one tunnel and moves through an explicit state machine:
// disabled until Start, starting while the tunnel is being established,
// then active or failed. Establishment failure is terminal for the Start
// call; the caller decides whether that aborts the process (it does, at
// gateway startup). The production dialer uses the ngrok agent SDK; tests
// inject their own.
package tunnel
