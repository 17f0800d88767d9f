// Package dom implements the mutable document tree the conversion engine
// rewrites. Nodes live in a single arena and are addressed by stable indices,
// parent links are plain indices as well, so moving nodes around never
// creates ownership cycles.
package dom

import (
	"errors"
	"fmt"
	"slices"
)

// NodeID addresses node in the document arena. IDs are never reused during
// the lifetime of a Document.
type NodeID int32

// Nil is returned where there is no node (detached node parent, etc.).
const Nil NodeID = -1

// NodeType distinguishes kinds of nodes.
type NodeType uint8

const (
	RootNode NodeType = iota
	ElementNode
	TextNode
)

func (t NodeType) String() string {
	switch t {
	case RootNode:
		return "root"
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	default:
		return fmt.Sprintf("NodeType(%d)", uint8(t))
	}
}

// TextTag is the tag name reported for text nodes.
const TextTag = "#text"

var (
	ErrInvalidNode = errors.New("invalid node reference")
	ErrDetached    = errors.New("node is not attached to the tree")
	ErrAttached    = errors.New("node is already attached to the tree")
	ErrHierarchy   = errors.New("operation would break tree hierarchy")
)

// Attribute is a single element attribute, order of attributes is preserved.
type Attribute struct {
	Key string
	Val string
}

type node struct {
	typ      NodeType
	tag      string
	text     string
	attrs    []Attribute
	parent   NodeID
	children []NodeID
}

// Document owns all nodes of a single tree. It is not safe for concurrent
// use, each conversion builds its own document.
type Document struct {
	nodes []node
}

// New returns empty document consisting of root node only.
func New() *Document {
	return &Document{nodes: []node{{typ: RootNode, parent: Nil}}}
}

// Root returns id of the document root.
func (d *Document) Root() NodeID { return 0 }

// Len returns number of nodes ever created in the document, including
// detached ones. Any valid NodeID is less than Len.
func (d *Document) Len() int { return len(d.nodes) }

// Valid reports whether id refers to a node of this document.
func (d *Document) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(d.nodes)
}

func (d *Document) get(id NodeID) (*node, error) {
	if !d.Valid(id) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidNode, id)
	}
	return &d.nodes[id], nil
}

// Type returns node type, invalid ids are reported as RootNode.
func (d *Document) Type(id NodeID) NodeType {
	if !d.Valid(id) {
		return RootNode
	}
	return d.nodes[id].typ
}

// Tag returns element tag name, TextTag for text nodes and empty string for
// the root or invalid ids.
func (d *Document) Tag(id NodeID) string {
	if !d.Valid(id) {
		return ""
	}
	switch n := &d.nodes[id]; n.typ {
	case ElementNode:
		return n.tag
	case TextNode:
		return TextTag
	default:
		return ""
	}
}

// SetTag renames element.
func (d *Document) SetTag(id NodeID, tag string) error {
	n, err := d.get(id)
	if err != nil {
		return err
	}
	if n.typ != ElementNode {
		return fmt.Errorf("unable to rename %s node: %w", n.typ, ErrHierarchy)
	}
	n.tag = tag
	return nil
}

// Text returns payload of text node.
func (d *Document) Text(id NodeID) string {
	if !d.Valid(id) {
		return ""
	}
	return d.nodes[id].text
}

// Attr returns attribute value and whether it was present.
func (d *Document) Attr(id NodeID, key string) (string, bool) {
	if !d.Valid(id) {
		return "", false
	}
	for _, a := range d.nodes[id].attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Attrs returns copy of element attributes.
func (d *Document) Attrs(id NodeID) []Attribute {
	if !d.Valid(id) {
		return nil
	}
	return slices.Clone(d.nodes[id].attrs)
}

// SetAttr sets (or replaces) attribute value.
func (d *Document) SetAttr(id NodeID, key, val string) error {
	n, err := d.get(id)
	if err != nil {
		return err
	}
	if n.typ != ElementNode {
		return fmt.Errorf("unable to set attribute on %s node: %w", n.typ, ErrHierarchy)
	}
	for i := range n.attrs {
		if n.attrs[i].Key == key {
			n.attrs[i].Val = val
			return nil
		}
	}
	n.attrs = append(n.attrs, Attribute{Key: key, Val: val})
	return nil
}

// RemoveAttr deletes attribute if present.
func (d *Document) RemoveAttr(id NodeID, key string) {
	if !d.Valid(id) {
		return
	}
	n := &d.nodes[id]
	n.attrs = slices.DeleteFunc(n.attrs, func(a Attribute) bool { return a.Key == key })
}

// Parent returns parent id or Nil for root and detached nodes.
func (d *Document) Parent(id NodeID) NodeID {
	if !d.Valid(id) {
		return Nil
	}
	return d.nodes[id].parent
}

// Children returns snapshot of node children.
func (d *Document) Children(id NodeID) []NodeID {
	if !d.Valid(id) {
		return nil
	}
	return slices.Clone(d.nodes[id].children)
}

// ChildCount returns number of node children.
func (d *Document) ChildCount(id NodeID) int {
	if !d.Valid(id) {
		return 0
	}
	return len(d.nodes[id].children)
}

// ChildAt returns i-th child of node or Nil when out of range.
func (d *Document) ChildAt(id NodeID, i int) NodeID {
	if !d.Valid(id) || i < 0 || i >= len(d.nodes[id].children) {
		return Nil
	}
	return d.nodes[id].children[i]
}

// ChildIndex returns position of child among node children or -1.
func (d *Document) ChildIndex(id, child NodeID) int {
	if !d.Valid(id) {
		return -1
	}
	return slices.Index(d.nodes[id].children, child)
}

// CreateElement adds new detached element to the arena.
func (d *Document) CreateElement(tag string) NodeID {
	d.nodes = append(d.nodes, node{typ: ElementNode, tag: tag, parent: Nil})
	return NodeID(len(d.nodes) - 1)
}

// CreateText adds new detached text node to the arena.
func (d *Document) CreateText(text string) NodeID {
	d.nodes = append(d.nodes, node{typ: TextNode, text: text, parent: Nil})
	return NodeID(len(d.nodes) - 1)
}

// InsertAfter attaches detached node n right after sibling.
func (d *Document) InsertAfter(sibling, n NodeID) error {
	if err := d.checkDetached(n); err != nil {
		return err
	}
	s, err := d.get(sibling)
	if err != nil {
		return err
	}
	if s.parent == Nil {
		return fmt.Errorf("unable to insert after node %d: %w", sibling, ErrDetached)
	}
	if d.isAncestor(n, s.parent) {
		return fmt.Errorf("unable to insert node %d after %d: %w", n, sibling, ErrHierarchy)
	}
	p := &d.nodes[s.parent]
	idx := slices.Index(p.children, sibling)
	p.children = slices.Insert(p.children, idx+1, n)
	d.nodes[n].parent = s.parent
	return nil
}

// AppendChild attaches detached node child as the last child of parent.
func (d *Document) AppendChild(parent, child NodeID) error {
	if err := d.checkDetached(child); err != nil {
		return err
	}
	p, err := d.get(parent)
	if err != nil {
		return err
	}
	if p.typ == TextNode || d.isAncestor(child, parent) {
		return fmt.Errorf("unable to append node %d to %d: %w", child, parent, ErrHierarchy)
	}
	p.children = append(p.children, child)
	d.nodes[child].parent = parent
	return nil
}

// Remove detaches node (with its subtree) from its parent. Detached node
// stays in the arena and may be attached again.
func (d *Document) Remove(id NodeID) error {
	n, err := d.get(id)
	if err != nil {
		return err
	}
	if n.parent == Nil {
		return fmt.Errorf("unable to remove node %d: %w", id, ErrDetached)
	}
	p := &d.nodes[n.parent]
	if idx := slices.Index(p.children, id); idx >= 0 {
		p.children = slices.Delete(p.children, idx, idx+1)
	}
	n.parent = Nil
	return nil
}

// Unwrap removes node from the tree promoting its children to its former
// position. Returns parent the children were promoted to.
func (d *Document) Unwrap(id NodeID) (NodeID, error) {
	n, err := d.get(id)
	if err != nil {
		return Nil, err
	}
	parent := n.parent
	if parent == Nil {
		return Nil, fmt.Errorf("unable to unwrap node %d: %w", id, ErrDetached)
	}
	p := &d.nodes[parent]
	idx := slices.Index(p.children, id)
	children := n.children
	for _, c := range children {
		d.nodes[c].parent = parent
	}
	p.children = slices.Replace(p.children, idx, idx+1, children...)
	n.children = nil
	n.parent = Nil
	return parent, nil
}

func (d *Document) checkDetached(id NodeID) error {
	n, err := d.get(id)
	if err != nil {
		return err
	}
	if n.typ == RootNode {
		return fmt.Errorf("root cannot be moved: %w", ErrHierarchy)
	}
	if n.parent != Nil {
		return fmt.Errorf("node %d: %w", id, ErrAttached)
	}
	return nil
}

// isAncestor reports whether a is id or one of its ancestors.
func (d *Document) isAncestor(a, id NodeID) bool {
	for cur := id; cur != Nil; cur = d.nodes[cur].parent {
		if cur == a {
			return true
		}
	}
	return false
}
