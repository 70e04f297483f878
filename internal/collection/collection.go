// Package collection holds the client's local, ordered snapshots of backend
// entities. Every operation returns a new snapshot and leaves the receiver
// untouched, so a view can keep showing its last good snapshot while a
// request is in flight.
package collection

import (
	"bytes"
	"encoding/json"
)

// Keyed is an entity identified by its backend id
type Keyed interface {
	Key() string
}

// Collection is an ordered snapshot with unique keys
type Collection[T Keyed] struct {
	items []T
}

// New builds a collection from items, keeping the first entry for each key
func New[T Keyed](items ...T) Collection[T] {
	return Collection[T]{}.ReplaceAll(items)
}

// Items returns a copy of the snapshot in order
func (c Collection[T]) Items() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

func (c Collection[T]) Len() int { return len(c.items) }

// At returns the item at index i. It panics when i is out of range, like a slice.
func (c Collection[T]) At(i int) T { return c.items[i] }

// Index returns the position of id, or -1
func (c Collection[T]) Index(id string) int {
	for i, item := range c.items {
		if item.Key() == id {
			return i
		}
	}
	return -1
}

// Find returns the entry with the given id
func (c Collection[T]) Find(id string) (T, bool) {
	if i := c.Index(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

func (c Collection[T]) Contains(id string) bool {
	return c.Index(id) >= 0
}

// ReplaceAll overwrites the snapshot after a fetch
func (c Collection[T]) ReplaceAll(items []T) Collection[T] {
	seen := make(map[string]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item.Key()]; dup {
			continue
		}
		seen[item.Key()] = struct{}{}
		out = append(out, item)
	}
	return Collection[T]{items: out}
}

// InsertFront puts a freshly created item at index 0
func (c Collection[T]) InsertFront(item T) Collection[T] {
	out := make([]T, 0, len(c.items)+1)
	out = append(out, item)
	for _, existing := range c.items {
		if existing.Key() != item.Key() {
			out = append(out, existing)
		}
	}
	return Collection[T]{items: out}
}

// ReplaceByID swaps the entry with the given id for item. Unknown ids leave
// the collection unchanged.
func (c Collection[T]) ReplaceByID(id string, item T) Collection[T] {
	i := c.Index(id)
	if i < 0 {
		return c
	}
	out := c.Items()
	out[i] = item
	return Collection[T]{items: out}
}

// RemoveByID drops the entry with the given id
func (c Collection[T]) RemoveByID(id string) Collection[T] {
	i := c.Index(id)
	if i < 0 {
		return c
	}
	out := make([]T, 0, len(c.items)-1)
	out = append(out, c.items[:i]...)
	out = append(out, c.items[i+1:]...)
	return Collection[T]{items: out}
}

// PatchByID merges a partial change into the existing entry
func (c Collection[T]) PatchByID(id string, patch func(T) T) Collection[T] {
	i := c.Index(id)
	if i < 0 {
		return c
	}
	out := c.Items()
	out[i] = patch(out[i])
	return Collection[T]{items: out}
}

// DecodeObjects splits a JSON array body into entities. Entries that are not
// JSON objects, or that do not decode into T, are dropped; the second return
// value counts them. A body that is not an array (including null) yields an
// empty result.
func DecodeObjects[T any](body []byte) ([]T, int) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return []T{}, 0
	}

	out := make([]T, 0, len(raw))
	dropped := 0
	for _, entry := range raw {
		entry = bytes.TrimSpace(entry)
		if len(entry) == 0 || entry[0] != '{' {
			dropped++
			continue
		}
		var item T
		if err := json.Unmarshal(entry, &item); err != nil {
			dropped++
			continue
		}
		out = append(out, item)
	}
	return out, dropped
}
