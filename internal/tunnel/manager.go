package tunnel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/voxkit/telnyx-mcp-gateway/internal/logging"
)

// State is the tunnel lifecycle state.
type State string

const (
	StateDisabled State = "disabled"
	StateStarting State = "starting"
	StateActive   State = "active"
	StateFailed   State = "failed"
)

// ErrAlreadyStarted is returned when Start is called twice.
var ErrAlreadyStarted = errors.New("tunnel already started")

// Listener is an established tunnel: a net.Listener with a public URL.
type Listener interface {
	net.Listener
	URL() string
}

// Dialer establishes tunnels. Implementations must respect ctx
// cancellation.
type Dialer interface {
	Dial(ctx context.Context, authtoken string) (Listener, error)
}

// Recorder receives tunnel state transitions. Implemented by the
// instrumentation metrics recorder.
type Recorder interface {
	RecordTunnelTransition(ctx context.Context, state string)
}

// Status is a point-in-time snapshot of the manager.
type Status struct {
	State     State     `json:"state"`
	URL       string    `json:"public_url,omitempty"`
	LastError string    `json:"last_error,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithDialTimeout bounds tunnel establishment.
func WithDialTimeout(d time.Duration) Option {
	return func(m *Manager) { m.dialTimeout = d }
}

// WithRecorder sets the transition recorder.
func WithRecorder(rec Recorder) Option {
	return func(m *Manager) { m.recorder = rec }
}

// Manager owns a single tunnel and serves an HTTP handler through it.
type Manager struct {
	dialer      Dialer
	authtoken   string
	dialTimeout time.Duration
	logger      *slog.Logger
	recorder    Recorder

	mu        sync.RWMutex
	state     State
	url       string
	lastErr   error
	startedAt time.Time
	listener  Listener
}

// NewManager creates a Manager in the disabled state.
func NewManager(dialer Dialer, authtoken string, opts ...Option) *Manager {
	m := &Manager{
		dialer:      dialer,
		authtoken:   authtoken,
		dialTimeout: 30 * time.Second,
		logger:      slog.Default(),
		state:       StateDisabled,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start establishes the tunnel and begins serving handler through it.
// On establishment failure the manager moves to the failed state and the
// error is returned; the tunnel does not retry.
func (m *Manager) Start(ctx context.Context, handler http.Handler) error {
	m.mu.Lock()
	if m.state != StateDisabled {
		m.mu.Unlock()
		return ErrAlreadyStarted
	}
	m.state = StateStarting
	m.mu.Unlock()

	m.record(ctx, StateStarting)
	m.logger.Info("establishing tunnel", logging.State(string(StateStarting)))

	dialCtx, cancel := context.WithTimeout(ctx, m.dialTimeout)
	defer cancel()
	listener, err := m.dialer.Dial(dialCtx, m.authtoken)
	if err != nil {
		err = fmt.Errorf("tunnel establishment failed: %w", err)
		m.mu.Lock()
		m.state = StateFailed
		m.lastErr = err
		m.mu.Unlock()
		m.record(ctx, StateFailed)
		m.logger.Error("tunnel failed", logging.State(string(StateFailed)), logging.Err(err))
		return err
	}

	m.mu.Lock()
	m.state = StateActive
	m.url = listener.URL()
	m.startedAt = time.Now().UTC()
	m.listener = listener
	m.mu.Unlock()

	m.record(ctx, StateActive)
	m.logger.Info("tunnel active",
		logging.State(string(StateActive)),
		slog.String("public_url", listener.URL()))

	go m.serve(listener, handler)
	return nil
}

// serve runs the HTTP server on the tunnel listener. A serve error after
// the listener was closed by Stop is expected and ignored.
func (m *Manager) serve(listener Listener, handler http.Handler) {
	err := http.Serve(listener, handler)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateActive {
		return
	}
	m.state = StateFailed
	m.lastErr = err
	m.logger.Error("tunnel serving stopped", logging.State(string(StateFailed)), logging.Err(err))
	m.record(context.Background(), StateFailed)
}

func (m *Manager) record(ctx context.Context, state State) {
	if m.recorder != nil {
		m.recorder.RecordTunnelTransition(ctx, string(state))
	}
}

// Stop closes the tunnel and returns the manager to the disabled state.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var err error
	if m.listener != nil {
		err = m.listener.Close()
		m.listener = nil
	}
	m.state = StateDisabled
	m.url = ""
	m.record(context.Background(), StateDisabled)
	m.logger.Info("tunnel stopped", logging.State(string(StateDisabled)))
	return err
}

// Status returns a snapshot of the manager state.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Status{
		State:     m.state,
		URL:       m.url,
		StartedAt: m.startedAt,
	}
	if m.lastErr != nil {
		s.LastError = m.lastErr.Error()
	}
	return s
}

// URL returns the public URL, empty unless the tunnel is active.
func (m *Manager) URL() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.url
}
