package items

import (
	"errors"
	"fmt"
)

// ErrDuplicateStore is returned when an item identifier is stored twice.
// Storing an item more than once produces duplicate-key conflicts in the
// downstream loader, so the Tracker rejects it here instead.
var ErrDuplicateStore = errors.New("item already stored")

// Tracker records items for output and enforces the store-once rule.
//
// Items remain mutable after Store; the usual pattern is to register an
// item as soon as it is created, keep filling in attributes and
// references during the pass, and serialize everything at the end.
type Tracker struct {
	stored []*Item
	seen   map[string]bool
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{seen: make(map[string]bool)}
}

// Store registers an item for output. Storing the same identifier twice
// returns ErrDuplicateStore.
func (t *Tracker) Store(it *Item) error {
	if it.ID == "" {
		return fmt.Errorf("storing %s item with empty identifier", it.Class)
	}
	if t.seen[it.ID] {
		return fmt.Errorf("%w: %s (%s)", ErrDuplicateStore, it.ID, it.Class)
	}
	t.seen[it.ID] = true
	t.stored = append(t.stored, it)
	return nil
}

// StoreAll registers each item in turn, stopping at the first error.
func (t *Tracker) StoreAll(list ...*Item) error {
	for _, it := range list {
		if err := t.Store(it); err != nil {
			return err
		}
	}
	return nil
}

// Stored reports whether the identifier has been stored.
func (t *Tracker) Stored(id string) bool { return t.seen[id] }

// Items returns the stored items in store order.
func (t *Tracker) Items() []*Item { return t.stored }

// Len returns the number of stored items.
func (t *Tracker) Len() int { return len(t.stored) }
