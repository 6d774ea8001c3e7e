package supervisor

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// DefaultInterval is how often the parent is checked.
const DefaultInterval = 2 * time.Second

// ParentAlive reports whether the supervised parent still exists. The
// default implementation treats reparenting to init (PID 1) as death.
func ParentAlive() bool {
	return os.Getppid() != 1
}

// Supervisor polls a liveness probe and invokes onExit once when it fails.
type Supervisor struct {
	interval time.Duration
	alive    func() bool
	onExit   func()
	logger   *slog.Logger
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithInterval overrides the poll interval.
func WithInterval(d time.Duration) Option {
	return func(s *Supervisor) { s.interval = d }
}

// WithProbe injects the liveness probe.
func WithProbe(alive func() bool) Option {
	return func(s *Supervisor) { s.alive = alive }
}

// WithLogger sets the supervisor logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Supervisor) { s.logger = logger }
}

// New creates a Supervisor that calls onExit when the parent dies.
func New(onExit func(), opts ...Option) *Supervisor {
	s := &Supervisor{
		interval: DefaultInterval,
		alive:    ParentAlive,
		onExit:   onExit,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run polls until ctx is cancelled or the probe reports the parent gone.
// It blocks; callers run it in a goroutine.
func (s *Supervisor) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.alive() {
				continue
			}
			s.logger.Warn("parent process gone, shutting down")
			s.onExit()
			return
		}
	}
}
