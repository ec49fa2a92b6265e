package pkg

import "fmt"

// Loader turns raw package-definition bytes plus a format hint (the
// source file's extension, e.g. "yaml", "json") into a Package. It is
// the pluggable boundary named in spec.md §6: package file syntax is a
// collaborator choice, not something the core prescribes.
type Loader interface {
	Load(data []byte, formatHint string) (*Package, error)
}

// Warning is a non-fatal loader signal: an unknown field was seen and
// ignored rather than rejected.
type Warning struct {
	Field   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Field, w.Message)
}

// LoadResult pairs a loaded Package with any warnings collected while
// loading it.
type LoadResult struct {
	Package  *Package
	Warnings []Warning
}

// Registry dispatches to a Loader by format hint, so a single call
// site (the scanner) doesn't need to know which formats are wired in.
type Registry struct {
	loaders map[string]Loader
}

// NewRegistry constructs an empty format Registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]Loader)}
}

// Register associates formatHint (e.g. "yaml", "json") with a Loader.
func (r *Registry) Register(formatHint string, l Loader) {
	r.loaders[formatHint] = l
}

// Load dispatches to the Loader registered for formatHint.
func (r *Registry) Load(data []byte, formatHint string) (*Package, error) {
	l, ok := r.loaders[formatHint]
	if !ok {
		return nil, fmt.Errorf("pkg: no loader registered for format %q", formatHint)
	}
	return l.Load(data, formatHint)
}
