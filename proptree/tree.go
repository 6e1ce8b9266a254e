// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package proptree

import "fmt"

// NoNode is the parent and owner id of nodes that have none.
const NoNode = -1

// Node is one entry of a property tree.
type Node[T any] struct {
	ID       int
	ParentID int
	// OwnerID is the id of the layer that created the node, or NoNode.
	OwnerID int
	Data    T
}

// Tree is an index-addressed forest. Parents precede their children.
type Tree[T any] struct {
	nodes []Node[T]
}

// Insert appends a node and returns its id. parentID must be NoNode or an
// existing node.
func (t *Tree[T]) Insert(parentID, ownerID int, data T) int {
	if parentID != NoNode {
		t.check(parentID)
	}
	id := len(t.nodes)
	t.nodes = append(t.nodes, Node[T]{ID: id, ParentID: parentID, OwnerID: ownerID, Data: data})
	return id
}

// Node returns the node with the given id.
func (t *Tree[T]) Node(id int) *Node[T] {
	t.check(id)
	return &t.nodes[id]
}

// Parent returns the parent of n, or nil for a root.
func (t *Tree[T]) Parent(n *Node[T]) *Node[T] {
	if n.ParentID == NoNode {
		return nil
	}
	return t.Node(n.ParentID)
}

// Size returns the number of nodes.
func (t *Tree[T]) Size() int {
	return len(t.nodes)
}

// Nodes returns the nodes in index order. The slice is owned by the tree.
func (t *Tree[T]) Nodes() []Node[T] {
	return t.nodes
}

// Clear removes all nodes and keeps the backing storage.
func (t *Tree[T]) Clear() {
	clear(t.nodes)
	t.nodes = t.nodes[:0]
}

// IsAncestorOf reports whether a is a strict ancestor of b.
func (t *Tree[T]) IsAncestorOf(a, b int) bool {
	for id := t.Node(b).ParentID; id != NoNode; id = t.nodes[id].ParentID {
		if id == a {
			return true
		}
	}
	return false
}

func (t *Tree[T]) check(id int) {
	if id < 0 || id >= len(t.nodes) {
		panic(fmt.Sprintf("proptree: node %d out of range [0,%d)", id, len(t.nodes)))
	}
}
