// Package logging provides structured logging utilities for the gateway.
//
// This package centralizes logging patterns to ensure consistent, structured
// logging throughout the codebase using the standard library's slog package.
//
// # Key Features
//
//   - Structured logging with slog
//   - Identity sanitization (token subjects are hashed)
//   - Consistent attribute naming across the codebase
//   - Adapter bridging slog into the mcp-go logger interface
//
// # Usage Patterns
//
// Create a logger with standard attributes:
//
//	logger := logging.WithOperation(slog.Default(), "messaging.send")
//	logger.Info("message sent",
//	    logging.Status("success"))
//
// Sanitize sensitive data before logging:
//
//	logger.Info("token issued",
//	    logging.Subject(claims.Subject))
//
// # Security Considerations
//
//   - Token subjects are hashed to prevent identity leakage while allowing
//     correlation
//   - Bearer tokens are never logged directly
package logging
