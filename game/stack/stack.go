// Package stack provides a fixed-capacity LIFO container.
//
// The player inventory is a Stack[engine.Item]: only the top element is ever
// consulted by gameplay, and pushes beyond the capacity are rejected without
// touching the contents.
package stack

import "errors"

var (
	ErrCapacityExceeded = errors.New("stack: capacity exceeded")
	ErrEmpty            = errors.New("stack: empty")
	ErrInvalidCapacity  = errors.New("stack: invalid capacity")
)

// Stack is a bounded LIFO container. The zero value has capacity 0 and
// rejects every push.
type Stack[T any] struct {
	items    []T
	capacity int
}

// New creates an empty stack bounded by capacity. A negative capacity is
// treated as zero.
func New[T any](capacity int) *Stack[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Stack[T]{
		items:    make([]T, 0, capacity),
		capacity: capacity,
	}
}

// Push adds item as the new top.
func (s *Stack[T]) Push(item T) error {
	if len(s.items) >= s.capacity {
		return ErrCapacityExceeded
	}
	s.items = append(s.items, item)
	return nil
}

// Pop removes and returns the top item.
func (s *Stack[T]) Pop() (T, error) {
	var zero T
	if len(s.items) == 0 {
		return zero, ErrEmpty
	}
	last := len(s.items) - 1
	item := s.items[last]
	s.items[last] = zero
	s.items = s.items[:last]
	return item, nil
}

// Peek returns the top item without removing it.
func (s *Stack[T]) Peek() (T, error) {
	if len(s.items) == 0 {
		var zero T
		return zero, ErrEmpty
	}
	return s.items[len(s.items)-1], nil
}

// Top is the non-failing form of Peek.
func (s *Stack[T]) Top() (T, bool) {
	item, err := s.Peek()
	return item, err == nil
}

// Clear empties the stack. The capacity is kept.
func (s *Stack[T]) Clear() {
	clear(s.items)
	s.items = s.items[:0]
}

// SetCapacity changes the bound. Shrinking below the current occupancy is
// rejected and leaves the stack untouched.
func (s *Stack[T]) SetCapacity(n int) error {
	if n < len(s.items) || n < 0 {
		return ErrInvalidCapacity
	}
	s.capacity = n
	return nil
}

func (s *Stack[T]) Size() int     { return len(s.items) }
func (s *Stack[T]) Capacity() int { return s.capacity }
func (s *Stack[T]) IsEmpty() bool { return len(s.items) == 0 }
func (s *Stack[T]) IsFull() bool  { return len(s.items) >= s.capacity }

// Items returns a copy of the contents ordered top to bottom.
func (s *Stack[T]) Items() []T {
	out := make([]T, len(s.items))
	for i, item := range s.items {
		out[len(s.items)-1-i] = item
	}
	return out
}

// Clone returns an independent copy with the same capacity and contents.
func (s *Stack[T]) Clone() *Stack[T] {
	c := &Stack[T]{
		items:    make([]T, len(s.items), max(s.capacity, len(s.items))),
		capacity: s.capacity,
	}
	copy(c.items, s.items)
	return c
}

// FromBottom builds a stack from items listed bottom to top. It fails with
// ErrCapacityExceeded when the items do not fit.
func FromBottom[T any](capacity int, items []T) (*Stack[T], error) {
	s := New[T](capacity)
	for _, item := range items {
		if err := s.Push(item); err != nil {
			return nil, err
		}
	}
	return s, nil
}
