package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/voxkit/telnyx-mcp-gateway/internal/logging"
)

// Param types understood by argument validation.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
)

// ErrToolNotFound is returned by Dispatch for any name outside the active
// set, whether the tool was filtered out or never existed.
var ErrToolNotFound = errors.New("tool not found")

// ValidationError describes an argument that failed schema validation.
type ValidationError struct {
	Tool   string
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid arguments for %s: parameter %q %s", e.Tool, e.Param, e.Reason)
}

// Handler executes a tool call and returns its text result.
type Handler func(ctx context.Context, args map[string]any) (string, error)

// Param describes one tool parameter.
type Param struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// Descriptor is an immutable description of one tool: its identity, its
// parameter schema and the handler that executes it.
type Descriptor struct {
	Name        string
	Description string
	Service     string
	Params      []Param
	Handler     Handler
}

// Filter narrows the catalog. A non-empty Include list wins: the active set
// is exactly the catalog entries named in it, and Exclude is ignored.
// Otherwise the active set is the catalog minus the Exclude names.
type Filter struct {
	Include []string
	Exclude []string
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithToolTimeout bounds how long a single dispatch may run.
func WithToolTimeout(d time.Duration) Option {
	return func(r *Registry) { r.timeout = d }
}

// Registry holds the active tool set. It is immutable after New and safe
// for concurrent use.
type Registry struct {
	active  []Descriptor
	byName  map[string]int
	timeout time.Duration
	logger  *slog.Logger
}

// New builds a registry from the catalog and filter. The active set keeps
// the catalog's declaration order. Duplicate catalog names are an error;
// filter names that match nothing are logged and ignored.
func New(catalog []Descriptor, filter Filter, opts ...Option) (*Registry, error) {
	r := &Registry{
		byName:  make(map[string]int),
		timeout: 30 * time.Second,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}

	known := make(map[string]bool, len(catalog))
	for _, d := range catalog {
		if d.Name == "" {
			return nil, errors.New("tool descriptor with empty name")
		}
		if d.Handler == nil {
			return nil, fmt.Errorf("tool %s has no handler", d.Name)
		}
		if known[d.Name] {
			return nil, fmt.Errorf("duplicate tool name %s in catalog", d.Name)
		}
		known[d.Name] = true
	}

	for _, name := range append(append([]string{}, filter.Include...), filter.Exclude...) {
		if !known[name] {
			r.logger.Warn("tool filter references unknown tool", logging.Tool(name))
		}
	}

	keep := activePredicate(filter)
	for _, d := range catalog {
		if !keep(d.Name) {
			continue
		}
		r.byName[d.Name] = len(r.active)
		r.active = append(r.active, d)
	}

	r.logger.Info("tool registry built",
		slog.Int("catalog_size", len(catalog)),
		slog.Int("active_size", len(r.active)))
	return r, nil
}

// activePredicate returns the membership rule for the filter. Include wins
// over Exclude when both are set.
func activePredicate(filter Filter) func(string) bool {
	if len(filter.Include) > 0 {
		include := make(map[string]bool, len(filter.Include))
		for _, name := range filter.Include {
			include[name] = true
		}
		return func(name string) bool { return include[name] }
	}
	if len(filter.Exclude) > 0 {
		exclude := make(map[string]bool, len(filter.Exclude))
		for _, name := range filter.Exclude {
			exclude[name] = true
		}
		return func(name string) bool { return !exclude[name] }
	}
	return func(string) bool { return true }
}

// Active returns a copy of the active descriptors in catalog order.
func (r *Registry) Active() []Descriptor {
	out := make([]Descriptor, len(r.active))
	copy(out, r.active)
	return out
}

// Names returns the active tool names in catalog order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.active))
	for i, d := range r.active {
		names[i] = d.Name
	}
	return names
}

// Has reports whether name is in the active set.
func (r *Registry) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Dispatch validates args against the named tool's schema and runs its
// handler under the registry's timeout.
func (r *Registry) Dispatch(ctx context.Context, name string, args map[string]any) (string, error) {
	idx, ok := r.byName[name]
	if !ok {
		return "", ErrToolNotFound
	}
	d := r.active[idx]

	if err := validateArgs(d, args); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	result, err := d.Handler(ctx, args)
	logger := logging.WithTool(r.logger, name)
	if err != nil {
		logger.Warn("tool call failed",
			logging.Status(logging.StatusError),
			slog.Duration(logging.KeyDuration, time.Since(start)),
			logging.Err(err))
		return "", err
	}
	logger.Debug("tool call completed",
		logging.Status(logging.StatusSuccess),
		slog.Duration(logging.KeyDuration, time.Since(start)))
	return result, nil
}

// validateArgs checks required parameters and value kinds. Unknown extra
// arguments are permitted.
func validateArgs(d Descriptor, args map[string]any) error {
	for _, p := range d.Params {
		v, present := args[p.Name]
		if !present || v == nil {
			if p.Required {
				return &ValidationError{Tool: d.Name, Param: p.Name, Reason: "is required"}
			}
			continue
		}
		if !kindMatches(p.Type, v) {
			return &ValidationError{Tool: d.Name, Param: p.Name, Reason: fmt.Sprintf("must be a %s", p.Type)}
		}
	}
	return nil
}

func kindMatches(typ string, v any) bool {
	switch typ {
	case TypeString:
		_, ok := v.(string)
		return ok
	case TypeNumber:
		switch v.(type) {
		case float64, float32, int, int64:
			return true
		}
		return false
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeObject:
		_, ok := v.(map[string]any)
		return ok
	case TypeArray:
		_, ok := v.([]any)
		return ok
	default:
		return true
	}
}
