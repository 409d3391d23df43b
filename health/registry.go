package health

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

// Entry is a named health check held by a Registry.
type Entry struct {
	// Name uniquely identifies the check within its registry.
	Name string

	// Tags are the categories the check belongs to, e.g. "ready".
	Tags []string

	// Timeout bounds a single execution. Zero uses the executor default.
	Timeout time.Duration

	// Checker performs the check.
	Checker Checker
}

// HasTag reports whether the entry carries tag.
func (e Entry) HasTag(tag string) bool {
	return slices.Contains(e.Tags, tag)
}

// EntryOption configures an Entry at registration time.
type EntryOption func(*Entry)

// WithTags sets the categories of the entry. Duplicates are dropped.
func WithTags(tags ...string) EntryOption {
	return func(e *Entry) {
		for _, tag := range tags {
			if tag != "" && !e.HasTag(tag) {
				e.Tags = append(e.Tags, tag)
			}
		}
	}
}

// WithTimeout bounds each execution of the entry.
func WithTimeout(d time.Duration) EntryOption {
	return func(e *Entry) {
		e.Timeout = d
	}
}

// Registry is the catalogue of health checks for a process.
//
// Checks are registered during startup. Once Freeze is called the registry is
// read-only and every accessor returns copies.
type Registry struct {
	mu      sync.RWMutex
	entries []Entry
	index   map[string]int
	frozen  bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]int),
	}
}

// Register adds a named check. It returns ErrDuplicateName if name is taken,
// in which case the registry is left unchanged.
func (r *Registry) Register(name string, checker Checker, opts ...EntryOption) error {
	if name == "" || checker == nil {
		return fmt.Errorf("%w: name %q", ErrInvalidEntry, name)
	}

	entry := Entry{Name: name, Checker: checker}
	for _, opt := range opts {
		opt(&entry)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return fmt.Errorf("%w: cannot register %q", ErrFrozen, name)
	}
	if _, exists := r.index[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}

	r.index[name] = len(r.entries)
	r.entries = append(r.entries, entry)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, checker Checker, opts ...EntryOption) {
	if err := r.Register(name, checker, opts...); err != nil {
		panic(err)
	}
}

// Freeze stops the registry from accepting further registrations.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Entries returns the entries tagged with tag in registration order.
// An empty tag selects every entry.
func (r *Registry) Entries(tag string) []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		if tag != "" && !e.HasTag(tag) {
			continue
		}
		e.Tags = slices.Clone(e.Tags)
		out = append(out, e)
	}
	return out
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[name]
	if !ok {
		return Entry{}, false
	}
	e := r.entries[i]
	e.Tags = slices.Clone(e.Tags)
	return e, true
}

// Names returns the registered check names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.Name
	}
	return names
}

// Len returns the number of registered checks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
