package diagram

import "slices"

// Registry is the ordered collection of visible nodes.
//
// It is not safe for concurrent use; like the UI event loop it models, it
// expects a single caller at a time.
type Registry struct {
	nodes []Node
	index map[string]int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Add appends n. It reports false and leaves the registry unchanged when a
// node with the same ID is already present.
func (r *Registry) Add(n Node) bool {
	if _, ok := r.index[n.ID]; ok {
		return false
	}
	r.index[n.ID] = len(r.nodes)
	r.nodes = append(r.nodes, n)
	return true
}

// Remove deletes the node with the given ID and reports whether it existed.
func (r *Registry) Remove(id string) bool {
	i, ok := r.index[id]
	if !ok {
		return false
	}
	r.nodes = slices.Delete(r.nodes, i, i+1)
	delete(r.index, id)
	for j := i; j < len(r.nodes); j++ {
		r.index[r.nodes[j].ID] = j
	}
	return true
}

// Clear removes every node.
func (r *Registry) Clear() {
	r.nodes = nil
	clear(r.index)
}

// Len returns the number of visible nodes.
func (r *Registry) Len() int { return len(r.nodes) }

// List returns a copy of the nodes in insertion order.
func (r *Registry) List() []Node {
	return slices.Clone(r.nodes)
}

// Node returns the node with the given ID.
func (r *Registry) Node(id string) (Node, bool) {
	i, ok := r.index[id]
	if !ok {
		return Node{}, false
	}
	return r.nodes[i], true
}

// Last returns the most recently added node.
func (r *Registry) Last() (Node, bool) {
	if len(r.nodes) == 0 {
		return Node{}, false
	}
	return r.nodes[len(r.nodes)-1], true
}

// SetPosition moves a node. It reports false for an unknown ID.
func (r *Registry) SetPosition(id string, p Position) bool {
	return r.update(id, func(n *Node) { n.Position = p })
}

// SetSize records a node's rendered size and marks it rendered.
func (r *Registry) SetSize(id string, s Size) bool {
	return r.update(id, func(n *Node) {
		n.Size = s
		n.Rendered = true
	})
}

// SetDragTarget sets or clears a node's drag target flag.
func (r *Registry) SetDragTarget(id string, on bool) bool {
	return r.update(id, func(n *Node) { n.DragTarget = on })
}

func (r *Registry) update(id string, fn func(*Node)) bool {
	i, ok := r.index[id]
	if !ok {
		return false
	}
	fn(&r.nodes[i])
	return true
}
