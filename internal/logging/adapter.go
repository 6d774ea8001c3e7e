package logging

import (
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/util"
)

// SlogAdapter adapts an slog.Logger to the mcp-go util.Logger interface so
// protocol-layer messages land in the same structured log stream as the
// rest of the gateway.
type SlogAdapter struct {
	logger *slog.Logger
}

var _ util.Logger = (*SlogAdapter)(nil)

// NewSlogAdapter creates a new SlogAdapter wrapping the given slog.Logger.
// If logger is nil, slog.Default() is used.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{logger: logger}
}

// Infof logs a formatted info message.
func (a *SlogAdapter) Infof(format string, v ...any) {
	a.logger.Info(fmt.Sprintf(format, v...))
}

// Errorf logs a formatted error message.
func (a *SlogAdapter) Errorf(format string, v ...any) {
	a.logger.Error(fmt.Sprintf(format, v...))
}

// Logger returns the underlying slog.Logger for direct access when needed.
func (a *SlogAdapter) Logger() *slog.Logger {
	return a.logger
}
