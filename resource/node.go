package resource

import (
	"iter"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Node is a vertex of a resource tree: a name, a set of uniquely named
// attributes kept in insertion order, and an ordered list of children.
//
// Parent points back to the node this node was appended to. It is only used
// for navigating upwards; equality, hashing and encoding ignore it.
type Node struct {
	Name     string
	Parent   *Node
	Children []*Node

	attrs *orderedmap.OrderedMap[string, NodeAttribute]
}

func NewNode(name string) *Node {
	return &Node{Name: name}
}

// AppendChild appends child to n and sets its parent.
func (n *Node) AppendChild(child *Node) *Node {
	child.Parent = n
	n.Children = append(n.Children, child)
	return child
}

// SetAttribute stores a under name, replacing (in place) any attribute
// already stored under that name.
func (n *Node) SetAttribute(name string, a NodeAttribute) {
	if n.attrs == nil {
		n.attrs = orderedmap.New[string, NodeAttribute]()
	}
	n.attrs.Set(name, a)
}

func (n *Node) Attribute(name string) (NodeAttribute, bool) {
	if n.attrs == nil {
		return NodeAttribute{}, false
	}
	return n.attrs.Get(name)
}

func (n *Node) DeleteAttribute(name string) bool {
	if n.attrs == nil {
		return false
	}
	_, ok := n.attrs.Delete(name)
	return ok
}

func (n *Node) AttributeCount() int {
	if n.attrs == nil {
		return 0
	}
	return n.attrs.Len()
}

// Attributes iterates over the attributes of n in insertion order.
func (n *Node) Attributes() iter.Seq2[string, NodeAttribute] {
	return func(yield func(string, NodeAttribute) bool) {
		if n.attrs == nil {
			return
		}
		for p := n.attrs.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

// ChildrenNamed returns the children of n with the given name, in order.
func (n *Node) ChildrenNamed(name string) []*Node {
	var res []*Node
	for _, c := range n.Children {
		if c.Name == name {
			res = append(res, c)
		}
	}
	return res
}

// Path returns the slash separated names from the root of the tree down to n.
func (n *Node) Path() string {
	var parts []string
	for y := n; y != nil; y = y.Parent {
		parts = append(parts, y.Name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "/")
}

func (n *Node) Root() *Node {
	res := n
	for res.Parent != nil {
		res = res.Parent
	}
	return res
}

// Walk calls f on n and its descendants in depth first pre-order. depth is 0
// for n. If f returns false for a node, its children are skipped.
func (n *Node) Walk(f func(y *Node, depth int) (bool, error)) error {
	return n.walk(f, 0)
}

func (n *Node) walk(f func(y *Node, depth int) (bool, error), depth int) error {
	dive, err := f(n, depth)
	if err != nil {
		return err
	}
	if !dive {
		return nil
	}
	for _, c := range n.Children {
		if err := c.walk(f, depth+1); err != nil {
			return err
		}
	}
	return nil
}
