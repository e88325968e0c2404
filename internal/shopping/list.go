// Package shopping maintains the session shopping list.
package shopping

import (
	"strings"
	"sync"

	"github.com/Chitrank-Dixit/pict2recipe/internal/domain"
	"github.com/Chitrank-Dixit/pict2recipe/internal/logger"
)

// List collects ingredients the user still needs to buy. Entries are
// keyed by lower-cased name, so a name can appear only once regardless
// of casing, and the first-seen quantity is kept. Entries accumulate for
// the whole process lifetime; starting a new analysis does not clear the
// list. Safe for concurrent access.
type List struct {
	mu    sync.RWMutex
	order []string // lower-cased names in insertion order
	items map[string]domain.Ingredient
	log   *logger.Logger
}

// NewList creates an empty shopping list.
func NewList(log *logger.Logger) *List {
	return &List{
		items: make(map[string]domain.Ingredient),
		log:   log,
	}
}

// Add inserts ing unless an entry with the same name (case-insensitive)
// already exists. Reports whether the entry was added.
func (l *List) Add(ing domain.Ingredient) bool {
	key := strings.ToLower(ing.Name)

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.items[key]; ok {
		l.log.Debug("shopping: skipping duplicate %q", ing.Name)
		return false
	}
	l.items[key] = ing
	l.order = append(l.order, key)
	l.log.Debug("shopping: added %q (%s)", ing.Name, ing.Quantity)
	return true
}

// AddAll adds each ingredient in turn and returns the number actually
// added. Duplicates within items collapse silently.
func (l *List) AddAll(items []domain.Ingredient) int {
	added := 0
	for _, ing := range items {
		if l.Add(ing) {
			added++
		}
	}
	return added
}

// Items returns the entries in insertion order.
func (l *List) Items() []domain.Ingredient {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.Ingredient, 0, len(l.order))
	for _, key := range l.order {
		out = append(out, l.items[key])
	}
	return out
}

// Len returns the number of entries.
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.order)
}

// Clear empties the list. Only an explicit user action calls this; the
// list deliberately survives "start over".
func (l *List) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = make(map[string]domain.Ingredient)
	l.order = l.order[:0]
	l.log.Debug("shopping: cleared")
}
