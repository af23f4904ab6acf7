package ledger

import "strings"

// DefaultCategories seeds every new registry. Users can append custom
// categories at runtime; nothing is ever removed.
var DefaultCategories = []string{
	"Food & Drinks",
	"Groceries",
	"Transportation",
	"Entertainment",
	"Shopping",
	"Bills & Utilities",
	"Education",
	"Housing & Rent",
	"Health",
	"Other",
}

// CategoryRegistry is an ordered, append-only set of category names. Every
// budget allocation key and every expense category must exist here, which
// keeps the allocation map valid by construction.
type CategoryRegistry struct {
	names []string
	index map[string]struct{}
}

// NewCategoryRegistry creates a registry seeded with the given names. Blank
// and duplicate names are dropped, first occurrence wins.
func NewCategoryRegistry(seed ...string) *CategoryRegistry {
	r := &CategoryRegistry{index: make(map[string]struct{}, len(seed))}
	for _, name := range seed {
		r.Add(name)
	}
	return r
}

// Add appends a category if it is not already registered. It reports whether
// the name was newly added.
func (r *CategoryRegistry) Add(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	if _, ok := r.index[name]; ok {
		return false
	}
	r.index[name] = struct{}{}
	r.names = append(r.names, name)
	return true
}

// Contains reports whether the category is registered.
func (r *CategoryRegistry) Contains(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Names returns the registered categories in insertion order.
func (r *CategoryRegistry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of registered categories.
func (r *CategoryRegistry) Len() int {
	return len(r.names)
}
