package wtinylfu

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPushFront(t *testing.T) {
	t.Run("PushFront", func(t *testing.T) {
		l := newList()
		assert.Nil(t, l.Front())

		var nodes []*node
		for i := 0; i < 3; i++ {
			n := &node{key: uint64(i)}
			nodes = append([]*node{n}, nodes...)
			l.PushFront(n)

			assert.Equal(t, n, l.Front())
			checkList(t, l, nodes)
		}
	})

	t.Run("ChangeLists", func(t *testing.T) {
		l1, l2 := newList(), newList()
		n := &node{key: 42}
		l1.PushFront(n)
		l2.PushFront(n)
		checkList(t, l1, nil)
		checkList(t, l2, []*node{n})
	})
}

func TestPushBack(t *testing.T) {
	t.Run("PushBack", func(t *testing.T) {
		l := newList()
		assert.Nil(t, l.Back())

		var nodes []*node
		for i := 0; i < 3; i++ {
			n := &node{key: uint64(i)}
			nodes = append(nodes, n)
			l.PushBack(n)

			assert.Equal(t, n, l.Back())
			checkList(t, l, nodes)
		}
	})

	t.Run("ChangeLists", func(t *testing.T) {
		l1, l2 := newList(), newList()
		n := &node{key: 42}
		l1.PushBack(n)
		l2.PushBack(n)
		checkList(t, l1, nil)
		checkList(t, l2, []*node{n})
	})
}

func TestRemove(t *testing.T) {
	t.Run("Uninitialized", func(t *testing.T) {
		n := &node{}
		assert.NotPanics(t, func() { n.Remove() })
	})

	t.Run("SingleNode", func(t *testing.T) {
		n := &node{}
		l := newList()
		l.PushFront(n)
		checkList(t, l, []*node{n})
		n.Remove()
		checkList(t, l, nil)
	})

	// Test removal of the head, middle, and tail.
	for i := 0; i < 3; i++ {
		l := newList()
		var nodes []*node
		var remove *node

		for ni := 0; ni < 3; ni++ {
			n := &node{key: uint64(ni)}
			l.PushBack(n)
			if ni == i {
				remove = n
			} else {
				nodes = append(nodes, n)
			}
		}

		t.Run(fmt.Sprintf("Remove%dOf3", i), func(t *testing.T) {
			remove.Remove()
			assert.Nil(t, remove.prev)
			assert.Nil(t, remove.next)
			assert.Nil(t, remove.list)
			checkList(t, l, nodes)
		})
	}
}

func TestMoveToFront(t *testing.T) {
	t.Run("Uninitialized", func(t *testing.T) {
		n := &node{}
		assert.Panics(t, func() { n.MoveToFront() })
	})

	t.Run("SingleNode", func(t *testing.T) {
		n := &node{}
		l := newList()
		l.PushFront(n)
		n.MoveToFront()
		checkList(t, l, []*node{n})
	})

	// Test moving the head, middle, and tail.
	for i := 0; i < 3; i++ {
		l := newList()
		var nodes []*node
		var move *node

		for ni := 0; ni < 3; ni++ {
			n := &node{key: uint64(ni)}
			l.PushBack(n)
			if ni == i {
				move = n
				nodes = append([]*node{n}, nodes...)
			} else {
				nodes = append(nodes, n)
			}
		}

		t.Run(fmt.Sprintf("Move%dOf3", i), func(t *testing.T) {
			move.MoveToFront()
			checkList(t, l, nodes)
		})
	}
}

func checkList(t *testing.T, l *list, nodes []*node) {
	t.Helper()

	root := &l.root
	if !assert.Equal(t, len(nodes), l.Len(), "list length") {
		return
	}

	// Special case: empty list
	if len(nodes) == 0 {
		if root.next != nil && root.next != root || root.prev != nil && root.prev != root {
			t.Errorf("l.root.next = %p, l.root.prev = %p; both should both be nil or %p", l.root.next, l.root.prev, root)
		}
		return
	}

	for i, n := range nodes {
		assert.Equal(t, l, n.List())

		if i > 0 {
			assert.Equal(t, nodes[i-1], n.prev, "internal prev pointer")
			assert.Equal(t, nodes[i-1], n.Prev(), "external prev pointer")
		} else {
			assert.Equal(t, root, n.prev, "internal prev pointer")
			assert.Nil(t, n.Prev(), "external prev pointer")
		}

		if i < len(nodes)-1 {
			assert.Equal(t, nodes[i+1], n.next, "internal next pointer")
			assert.Equal(t, nodes[i+1], n.Next(), "external next pointer")
		} else {
			assert.Equal(t, root, n.next, "internal next pointer")
			assert.Nil(t, n.Next(), "external next pointer")
		}
	}
}
