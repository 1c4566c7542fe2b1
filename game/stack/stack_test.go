package stack

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStack_PushPopLIFO(t *testing.T) {
	s := New[string](3)
	require.NoError(t, s.Push("a"))
	require.NoError(t, s.Push("b"))
	assert.Equal(t, 2, s.Size())

	top, err := s.Peek()
	require.NoError(t, err)
	assert.Equal(t, "b", top)

	got, err := s.Pop()
	require.NoError(t, err)
	assert.Equal(t, "b", got)

	got, err = s.Pop()
	require.NoError(t, err)
	assert.Equal(t, "a", got)
	assert.True(t, s.IsEmpty())
}

func TestStack_CapacityExceeded(t *testing.T) {
	for c := 1; c <= 5; c++ {
		t.Run(fmt.Sprintf("capacity %d", c), func(t *testing.T) {
			s := New[int](c)
			for i := 0; i < c; i++ {
				require.NoError(t, s.Push(i))
			}
			before := s.Items()

			err := s.Push(99)
			assert.ErrorIs(t, err, ErrCapacityExceeded)
			assert.Equal(t, c, s.Size())
			assert.Equal(t, before, s.Items(), "rejected push must not mutate the stack")
			assert.True(t, s.IsFull())
		})
	}
}

func TestStack_EmptyErrors(t *testing.T) {
	s := New[int](2)

	_, err := s.Pop()
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = s.Peek()
	assert.ErrorIs(t, err, ErrEmpty)

	_, ok := s.Top()
	assert.False(t, ok)
}

func TestStack_Top(t *testing.T) {
	s := New[int](2)
	require.NoError(t, s.Push(7))

	v, ok := s.Top()
	assert.True(t, ok)
	assert.Equal(t, 7, v)
	assert.Equal(t, 1, s.Size(), "Top must not remove the item")
}

func TestStack_SetCapacity(t *testing.T) {
	tests := []struct {
		name     string
		pushes   int
		newCap   int
		wantErr  bool
		finalCap int
	}{
		{"grow", 2, 5, false, 5},
		{"shrink to occupancy", 2, 2, false, 2},
		{"shrink below occupancy", 2, 1, true, 3},
		{"shrink empty to zero", 0, 0, false, 0},
		{"negative", 0, -1, true, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New[int](3)
			for i := 0; i < tt.pushes; i++ {
				require.NoError(t, s.Push(i))
			}

			err := s.SetCapacity(tt.newCap)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCapacity)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.finalCap, s.Capacity())
			assert.Equal(t, tt.pushes, s.Size())
		})
	}
}

func TestStack_ClearKeepsCapacity(t *testing.T) {
	s := New[int](2)
	require.NoError(t, s.Push(1))
	require.NoError(t, s.Push(2))

	s.Clear()
	assert.Equal(t, 0, s.Size())
	assert.Equal(t, 2, s.Capacity())
	assert.NoError(t, s.Push(3))
}

func TestStack_ItemsTopToBottom(t *testing.T) {
	s := New[string](3)
	require.NoError(t, s.Push("bottom"))
	require.NoError(t, s.Push("middle"))
	require.NoError(t, s.Push("top"))

	assert.Equal(t, []string{"top", "middle", "bottom"}, s.Items())

	items := s.Items()
	items[0] = "changed"
	top, _ := s.Top()
	assert.Equal(t, "top", top, "Items must return a copy")
}

func TestStack_CloneIsIndependent(t *testing.T) {
	s := New[int](3)
	require.NoError(t, s.Push(1))

	c := s.Clone()
	require.NoError(t, c.Push(2))

	assert.Equal(t, 1, s.Size())
	assert.Equal(t, 2, c.Size())
	assert.Equal(t, s.Capacity(), c.Capacity())
}

func TestFromBottom(t *testing.T) {
	s, err := FromBottom(3, []string{"a", "b"})
	require.NoError(t, err)
	top, _ := s.Top()
	assert.Equal(t, "b", top)

	_, err = FromBottom(1, []string{"a", "b"})
	assert.ErrorIs(t, err, ErrCapacityExceeded)
}

func TestStack_ZeroValueRejectsPush(t *testing.T) {
	var s Stack[int]
	assert.ErrorIs(t, s.Push(1), ErrCapacityExceeded)
}
