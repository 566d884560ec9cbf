package exprtree

import (
	"strconv"
	"strings"
)

// NodeID addresses a node in a Tree.
type NodeID int32

// NoNode is the parent of a tree's root.
const NoNode NodeID = -1

// ItemKind tags the payload of a node.
type ItemKind int8

const (
	ItemNone ItemKind = iota
	// ItemOp is an internal node applying an operation to its children.
	ItemOp
	// ItemNum is a literal number leaf.
	ItemNum
	// ItemVar is a variable reference leaf.
	ItemVar
)

func (k ItemKind) String() string {
	switch k {
	case ItemNone:
		return "None"
	case ItemOp:
		return "Op"
	case ItemNum:
		return "Num"
	case ItemVar:
		return "Var"
	default:
		return "ItemKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Item is the payload of a node: an operation, a number, or a variable name.
type Item struct {
	Kind ItemKind
	// Op is the operation of an ItemOp.
	Op *Operation
	// Num is the value of an ItemNum.
	Num float64
	// Text is the source text of a number or the name of a variable.
	Text string
	// Pos is the column of the token that created the node.
	Pos int
}

// node is an element of the tree arena.
type node struct {
	item     Item
	parent   NodeID
	children []NodeID
}

// Tree is an expression tree stored as an arena. Children are always stored
// before their parents, and every node is reachable from the root. A Tree is
// immutable once parsing finishes.
type Tree struct {
	nodes []node
	root  NodeID
}

// add appends a node owning children and returns its ID.
func (t *Tree) add(item Item, children ...NodeID) NodeID {
	id := NodeID(len(t.nodes))
	for _, c := range children {
		t.nodes[c].parent = id
	}
	t.nodes = append(t.nodes, node{item: item, parent: NoNode, children: children})
	return id
}

// Root returns the ID of the root node.
func (t *Tree) Root() NodeID {
	return t.root
}

// Len returns the number of nodes in the tree.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Item returns the payload of a node.
func (t *Tree) Item(id NodeID) Item {
	return t.nodes[id].item
}

// Parent returns the parent of a node, or NoNode for the root.
func (t *Tree) Parent(id NodeID) NodeID {
	return t.nodes[id].parent
}

// Children returns a copy of the ordered children of a node.
func (t *Tree) Children(id NodeID) []NodeID {
	return append([]NodeID(nil), t.nodes[id].children...)
}

// Depth returns the number of nodes on the longest path from the root to a
// leaf.
func (t *Tree) Depth() int {
	// Children precede parents, so one forward pass sees every child's depth
	// before its parent's.
	depth := make([]int, len(t.nodes))
	for i, n := range t.nodes {
		d := 0
		for _, c := range n.children {
			if depth[c] > d {
				d = depth[c]
			}
		}
		depth[i] = d + 1
	}
	if len(depth) == 0 {
		return 0
	}
	return depth[t.root]
}

// path lists the names of the operations enclosing id, innermost first.
func (t *Tree) path(id NodeID) []string {
	var v []string
	for p := t.nodes[id].parent; p != NoNode; p = t.nodes[p].parent {
		v = append(v, t.nodes[p].item.Op.Name)
	}
	return v
}

// String formats the tree with every term grouped, alternating round and
// square brackets by depth.
func (t *Tree) String() string {
	if len(t.nodes) == 0 {
		return ""
	}
	var b strings.Builder
	t.fmt(&b, t.root, false)
	return b.String()
}

func (t *Tree) fmt(b *strings.Builder, id NodeID, square bool) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	defer b.WriteByte(r)
	n := &t.nodes[id]
	switch n.item.Kind {
	case ItemNum, ItemVar:
		b.WriteString(n.item.Text)
	case ItemOp:
		op := n.item.Op
		switch {
		case op == negation:
			b.WriteByte('-')
			t.fmt(b, n.children[0], !square)
		case op.IsFunction:
			b.WriteString(op.Name)
			t.fmtargs(b, n.children, !square)
		default:
			t.fmt(b, n.children[0], !square)
			b.WriteString(" " + op.Name + " ")
			t.fmt(b, n.children[1], !square)
		}
	default:
		panic("exprtree: invalid node kind " + n.item.Kind.String() + " after writing " + b.String())
	}
}

func (t *Tree) fmtargs(b *strings.Builder, args []NodeID, square bool) {
	var l, r byte = '(', ')'
	if square {
		l, r = '[', ']'
	}
	b.WriteByte(l)
	defer b.WriteByte(r)
	for i, c := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		t.fmt(b, c, !square)
	}
}
