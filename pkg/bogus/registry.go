package bogus

import (
	"maps"
	"net/http"
	"sort"
	"strings"
	"sync"
)

// Result is what a handler answers with
type Result struct {
	Body   string
	Status int
}

// HandlerFunc produces the response for a registered route
type HandlerFunc func() Result

// Respond returns a HandlerFunc that always answers with body and status
func Respond(body string, status int) HandlerFunc {
	return func() Result {
		return Result{Body: body, Status: status}
	}
}

// Entry is a registered route together with its handler and extra headers
type Entry struct {
	Route   string
	Handler HandlerFunc
	Headers map[string]string
}

// Registry maps HTTP methods to their ordered handler entries.
// Entries are never modified after registration; lookups return the
// first entry whose route equals the requested path.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string][]Entry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string][]Entry),
	}
}

// Register appends entry to the list for method, creating the list if absent.
// An empty method means GET.
func (r *Registry) Register(entry Entry, method string) {
	method = normalizeMethod(method)
	if entry.Headers != nil {
		entry.Headers = maps.Clone(entry.Headers)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[method] = append(r.handlers[method], entry)
}

// Lookup returns the first entry registered for method whose route equals path
func (r *Registry) Lookup(method, path string) (Entry, bool) {
	method = normalizeMethod(method)

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, entry := range r.handlers[method] {
		if entry.Route == path {
			return entry, true
		}
	}
	return Entry{}, false
}

// Entries returns a copy of the entries registered for method, in registration order
func (r *Registry) Entries(method string) []Entry {
	method = normalizeMethod(method)

	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := r.handlers[method]
	if len(entries) == 0 {
		return nil
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Methods returns the methods that have at least one entry, sorted
func (r *Registry) Methods() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	methods := make([]string, 0, len(r.handlers))
	for method, entries := range r.handlers {
		if len(entries) > 0 {
			methods = append(methods, method)
		}
	}
	sort.Strings(methods)
	return methods
}

// Len returns the number of entries across all methods
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, entries := range r.handlers {
		n += len(entries)
	}
	return n
}

// Reset removes every entry
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = make(map[string][]Entry)
}

// Replace swaps the whole table in one step, so concurrent lookups see either
// the old entries or the new ones. Keys are normalized like Register.
func (r *Registry) Replace(entries map[string][]Entry) {
	handlers := make(map[string][]Entry, len(entries))
	for method, list := range entries {
		method = normalizeMethod(method)
		for _, entry := range list {
			if entry.Headers != nil {
				entry.Headers = maps.Clone(entry.Headers)
			}
			handlers[method] = append(handlers[method], entry)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = handlers
}

func normalizeMethod(method string) string {
	if method == "" {
		return http.MethodGet
	}
	return strings.ToUpper(method)
}
