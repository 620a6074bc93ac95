package store

// Collection is an ordered in-memory list of records. It is not safe for
// concurrent use; Store serializes access.
type Collection[T any] struct {
	items []T
}

func NewCollection[T any](items []T) *Collection[T] {
	c := &Collection[T]{}
	c.Replace(items)
	return c
}

func (c *Collection[T]) Append(item T) {
	c.items = append(c.items, item)
}

// Update applies mutate to every item matching pred and returns how many
// items were changed.
func (c *Collection[T]) Update(pred func(T) bool, mutate func(*T)) int {
	n := 0
	for i := range c.items {
		if pred(c.items[i]) {
			mutate(&c.items[i])
			n++
		}
	}
	return n
}

// All returns a copy of the items in insertion order.
func (c *Collection[T]) All() []T {
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Filter returns copies of the matching items.
func (c *Collection[T]) Filter(pred func(T) bool) []T {
	var out []T
	for _, it := range c.items {
		if pred(it) {
			out = append(out, it)
		}
	}
	return out
}

// Find returns the first matching item.
func (c *Collection[T]) Find(pred func(T) bool) (T, bool) {
	for _, it := range c.items {
		if pred(it) {
			return it, true
		}
	}
	var zero T
	return zero, false
}

func (c *Collection[T]) Len() int {
	return len(c.items)
}

// Replace swaps the contents for a copy of items.
func (c *Collection[T]) Replace(items []T) {
	c.items = make([]T, len(items))
	copy(c.items, items)
}

// TrimFront keeps only the newest max items.
func (c *Collection[T]) TrimFront(max int) int {
	over := len(c.items) - max
	if over <= 0 {
		return 0
	}
	kept := make([]T, max)
	copy(kept, c.items[over:])
	c.items = kept
	return over
}
