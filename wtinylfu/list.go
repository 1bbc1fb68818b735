package wtinylfu

// list implements a doubly linked list. It is based on Go's built-in
// list.List, but simplified to hold cache nodes intrusively so that moving a
// node between segments never allocates. Unlike the built-in list, this
// struct must be initialized prior to use.
type list struct {
	// To simplify the implementation, internally a list l is implemented as a
	// ring, such that root is both the next element of l.Back() and the
	// previous element of l.Front().
	root node

	// Current list length excluding the root.
	len int
}

// newList returns an initialized list.
func newList() *list { return new(list).Init() }

// Init initializes or clears the list.
func (l *list) Init() *list {
	l.root.next = &l.root
	l.root.prev = &l.root
	l.len = 0
	return l
}

// Len returns the number of nodes in the list.
func (l *list) Len() int { return l.len }

// Front returns the most recently used node or nil if the list is empty.
func (l *list) Front() *node {
	if l.len == 0 {
		return nil
	}
	return l.root.next
}

// Back returns the least recently used node or nil if the list is empty.
func (l *list) Back() *node {
	if l.len == 0 {
		return nil
	}
	return l.root.prev
}

// PushFront inserts a node at the MRU end of the list, unlinking it from its
// current list first if necessary.
func (l *list) PushFront(n *node) {
	if n.list != nil {
		n.Remove()
	}
	n.next = l.root.next
	n.prev = &l.root
	l.root.next = n
	n.next.prev = n
	n.list = l
	l.len++
}

// PushBack inserts a node at the LRU end of the list, unlinking it from its
// current list first if necessary.
func (l *list) PushBack(n *node) {
	if n.list != nil {
		n.Remove()
	}
	n.prev = l.root.prev
	n.next = &l.root
	l.root.prev = n
	n.prev.next = n
	n.list = l
	l.len++
}

// node is one resident key, linked into exactly one segment list. The list
// back-pointer doubles as the node's segment tag: a detached node has nil
// links and a nil list.
type node struct {
	next, prev *node
	list       *list

	key uint64
}

// Next returns the next node toward the LRU end, or nil.
func (n *node) Next() *node {
	if p := n.next; n.list != nil && p != &n.list.root {
		return p
	}
	return nil
}

// Prev returns the previous node toward the MRU end, or nil.
func (n *node) Prev() *node {
	if p := n.prev; n.list != nil && p != &n.list.root {
		return p
	}
	return nil
}

// List returns the list containing the node or nil.
func (n *node) List() *list {
	return n.list
}

// Remove unlinks a node from its list and clears its links.
func (n *node) Remove() {
	if n.list == nil {
		return
	}

	n.list.len--
	n.prev.next = n.next
	n.next.prev = n.prev
	n.next = nil
	n.prev = nil
	n.list = nil
}

// MoveToFront moves a node to the MRU end of its list. The node must be
// linked into a list.
func (n *node) MoveToFront() {
	root := &n.list.root
	if root.next == n {
		return
	}

	n.prev.next = n.next
	n.next.prev = n.prev
	n.prev = root
	n.next = root.next
	root.next.prev = n
	root.next = n
}
