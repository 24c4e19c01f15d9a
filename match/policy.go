package match

import (
	"fmt"
	"sort"
	"sync"

	"github.com/tsawler/gridmatch/layout"
)

// Policy knows one document template: which rows are sections, element
// headers and data, how row cells map to fields, and how the finished
// result is flattened. A policy holds no per-document state; the Matcher
// keeps it in the Context.
type Policy interface {
	// Name returns the policy name
	Name() string

	// Settings returns the calibration the policy was built with
	Settings() *Settings

	// Prepare sees the page's rows before matching. It may record header
	// fields, drop framing rows, or return no rows to skip the page.
	Prepare(ctx *Context, rows []layout.Row) ([]layout.Row, error)

	// Classify decides what a row is
	Classify(ctx *Context, row layout.Row) (RowKind, error)

	// Apply records a section, element-header, element or continuation row
	Apply(ctx *Context, kind RowKind, row layout.Row) error

	// Flatten turns a result into output rows
	Flatten(r *MatchResult) Table
}

// Table is a flattened result.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Factory builds a policy from settings.
type Factory func(s *Settings) Policy

type registration struct {
	defaults func() *Settings
	build    Factory
}

// PolicyRegistry holds registered policies
type PolicyRegistry struct {
	mu       sync.RWMutex
	policies map[string]registration
}

// NewRegistry creates a new policy registry
func NewRegistry() *PolicyRegistry {
	return &PolicyRegistry{policies: make(map[string]registration)}
}

// Register registers a policy under name with its default settings
func (r *PolicyRegistry) Register(name string, defaults func() *Settings, build Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.policies[name] = registration{defaults: defaults, build: build}
}

// Defaults returns a fresh copy of a policy's default settings
func (r *PolicyRegistry) Defaults(name string) (*Settings, error) {
	r.mu.RLock()
	reg, ok := r.policies[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
	return reg.defaults(), nil
}

// New builds the named policy. Nil settings mean the policy's defaults.
func (r *PolicyRegistry) New(name string, s *Settings) (Policy, error) {
	r.mu.RLock()
	reg, ok := r.policies[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, name)
	}
	if s == nil {
		s = reg.defaults()
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("policy %s: %w", name, err)
	}
	return reg.build(s), nil
}

// List returns all registered policy names, sorted
func (r *PolicyRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.policies))
	for name := range r.policies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var globalRegistry = NewRegistry()

// RegisterPolicy registers a policy globally
func RegisterPolicy(name string, defaults func() *Settings, build Factory) {
	globalRegistry.Register(name, defaults, build)
}

// NewPolicy builds a globally registered policy
func NewPolicy(name string, s *Settings) (Policy, error) {
	return globalRegistry.New(name, s)
}

// PolicyDefaults returns the default settings of a registered policy
func PolicyDefaults(name string) (*Settings, error) {
	return globalRegistry.Defaults(name)
}

// ListPolicies returns all registered policy names
func ListPolicies() []string {
	return globalRegistry.List()
}

func init() {
	RegisterPolicy(GenericName, DefaultSettings, NewGeneric)
	RegisterPolicy(PreventiveName, PreventiveSettings, NewPreventive)
	RegisterPolicy(MVName, MVSettings, NewMV)
}
