package richtext

import (
	"errors"

	"go.uber.org/zap"

	"richtag/css"
	"richtag/dom"
)

// walker performs single conversion pass over a document. Every node is
// visited at most once, nodes created while walking are visited when the scan
// of their parent reaches them.
type walker struct {
	log      *zap.Logger
	doc      *dom.Document
	grammar  *grammar
	handlers *handlerTable
	css      *css.Parser
	align    map[string]string
	seen     map[dom.NodeID]bool
}

// walkChildren walks children of parent in order. Handlers reshape the child
// list at or after the node they were given, so everything before the cursor
// is already walked.
func (w *walker) walkChildren(parent dom.NodeID) error {
	for i := 0; ; {
		next := dom.Nil
		for n := w.doc.ChildCount(parent); i < n; i++ {
			if c := w.doc.ChildAt(parent, i); !w.seen[c] {
				next = c
				break
			}
		}
		if next == dom.Nil {
			return nil
		}
		if err := w.walk(next, parent); err != nil {
			return err
		}
		// custom handler dropped preceding siblings
		if w.doc.ChildAt(parent, i) != next && w.doc.Parent(next) == parent {
			if j := w.doc.ChildIndex(parent, next); j < i {
				i = j
			}
		}
	}
}

// walk processes node which is a child of scanning.
func (w *walker) walk(id, scanning dom.NodeID) error {
	if !w.doc.Valid(id) {
		return newError(KindStructural, "", dom.ErrInvalidNode, "node %d is missing", id)
	}
	w.seen[id] = true

	tag := w.doc.Tag(id)
	if w.grammar.unsupportedInput.has(tag) {
		return newError(KindUnsupportedInputTag, w.doc.OuterHTML(id), nil, "tag <%s> cannot be represented", tag)
	}
	if p := tagPrefix(tag); p != "" && w.grammar.unsupportedPrefix.has(p) {
		return newError(KindUnsupportedOutputPrefix, w.doc.OuterHTML(id), nil, "tag prefix %q is not supported", p)
	}

	next := id
	if w.doc.Type(id) == dom.ElementNode {
		var err error
		if next, err = w.resolveStyle(id); err != nil {
			return err
		}
	}

	if h, ok := w.handlers.lookup(tag); ok {
		fragment := w.doc.OuterHTML(next)
		cont, err := h.Handle(w.doc, next)
		if err != nil {
			var e *Error
			if errors.As(err, &e) {
				return err
			}
			return newError(KindStructural, fragment, err, "handler for <%s> failed", tag)
		}
		if !w.doc.Valid(cont) {
			return newError(KindStructural, fragment, dom.ErrInvalidNode, "handler for <%s> returned no node", tag)
		}
		next = cont
	}

	// Content was handed back to the element being scanned, its scan picks
	// up promoted children.
	if next == scanning {
		return nil
	}
	w.seen[next] = true

	tag = w.doc.Tag(next)
	if w.grammar.isLeaf(tag) {
		return nil
	}
	if next != w.doc.Root() && !w.grammar.isOutput(tag) {
		return newError(KindUnhandleableOutputTag, w.doc.OuterHTML(next), nil, "tag <%s> has no output representation", tag)
	}
	return w.walkChildren(next)
}
