package tpl

import (
	"sort"
	"strings"
	"sync"
)

// Spec is the registration of a plugin.
type Spec struct {
	// Name of the directive. An attribute whose canonical name equals the
	// canonical name of a plugin applies the plugin to its element.
	Name string
	// Names of the keyword arguments the plugin accepts. Attributes of the
	// element matching them are consumed by the plugin.
	Args []string
	// Plugins with higher priorities are applied first, i.e. they wrap
	// the plugins with lower priorities.
	Priority int
	// If true, the plugin also applies to elements whose tag name matches
	// the name of the plugin.
	Tag bool
	// New creates an instance of the plugin.
	New func(b *Build) (Plugin, error)

	canonical string
	args      map[string]string
}

// Registry holds the plugins known to a compiler. It is safe for concurrent
// use.
type Registry struct {
	mu     sync.RWMutex
	prefix string
	specs  map[string]*Spec
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry { return &Registry{specs: map[string]*Spec{}} }

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry, which is initialized
// with the builtin plugins on first use.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		RegisterBuiltins(defaultRegistry)
	})
	return defaultRegistry
}

// RegisterBuiltins registers the builtin plugins: template, for, model,
// click and include.
func RegisterBuiltins(reg *Registry) {
	reg.Register(Spec{Name: "template", Args: []string{"name"}, Priority: 200, New: newTemplateDef})
	reg.Register(Spec{Name: "for", Priority: 100, New: newFor})
	reg.Register(Spec{Name: "model", Args: []string{"update_event", "update_interval"}, Priority: 10, New: newModel})
	RegisterEvent(reg, "click")
	reg.Register(Spec{Name: "include", Args: []string{"name"}, Tag: true, New: newInclude})
}

// RegisterEvent registers a plugin calling a handler whenever the named DOM
// event fires on an element.
func RegisterEvent(reg *Registry, event string) {
	reg.Register(Spec{Name: event, Priority: 5, New: func(b *Build) (Plugin, error) {
		return newEvent(b, event)
	}})
}

func normalize(key string) string {
	return strings.NewReplacer("-", "", "_", "").Replace(strings.ToUpper(key))
}

// Canonical returns the canonical form of a directive name: upper-cased,
// with dashes and underscores removed and the prefix stripped.
func (r *Registry) Canonical(key string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.canonical(key)
}

func (r *Registry) canonical(key string) string {
	return strings.TrimPrefix(normalize(key), r.prefix)
}

// SetPrefix sets the prefix of directive names, e.g. "tpl-" to write loops as
// tpl-for. Directives without the prefix are still recognized.
func (r *Registry) SetPrefix(prefix string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefix = normalize(prefix)
}

// Prefix returns the canonical form of the prefix.
func (r *Registry) Prefix() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.prefix
}

// Register registers a plugin, replacing any plugin with the same canonical
// name.
func (r *Registry) Register(s Spec) {
	s.canonical = normalize(s.Name)
	s.args = make(map[string]string, len(s.Args))
	for _, a := range s.Args {
		s.args[normalize(a)] = a
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs[s.canonical] = &s
}

// Unregister removes a plugin.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.specs, normalize(name))
}

// Lookup finds the plugin for a directive name.
func (r *Registry) Lookup(name string) (*Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.specs[r.canonical(name)]
	return s, ok
}

// Names returns the names of all registered plugins, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.specs))
	for _, s := range r.specs {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// Returns the argument name matched by an attribute name.
func (s *Spec) arg(attr string) (string, bool) {
	a, ok := s.args[normalize(attr)]
	return a, ok
}
