package richtext

import (
	"errors"
	"fmt"
	"maps"

	"richtag/dom"
)

// Handler rewrites node bound to it and returns node traversal continues
// from: the node itself, a synthetic element which now holds its content or
// the parent its content was promoted to.
type Handler interface {
	Handle(doc *dom.Document, id dom.NodeID) (dom.NodeID, error)
}

// HandlerFunc adapts ordinary function to Handler.
type HandlerFunc func(doc *dom.Document, id dom.NodeID) (dom.NodeID, error)

func (f HandlerFunc) Handle(doc *dom.Document, id dom.NodeID) (dom.NodeID, error) {
	return f(doc, id)
}

// DefaultLinkColor is color of hyperlinks produced by Anchor.
const DefaultLinkColor = "#1677ff"

var errHeadingLevel = errors.New("unknown heading level")

type anchorHandler struct {
	color string
}

// Anchor turns <a href="url"> into color > crlink="url" > content.
func Anchor() Handler {
	return anchorHandler{color: DefaultLinkColor}
}

func (h anchorHandler) Handle(doc *dom.Document, id dom.NodeID) (dom.NodeID, error) {
	href, _ := doc.Attr(id, "href")

	color := doc.CreateElement(h.color)
	if err := doc.InsertAfter(id, color); err != nil {
		return dom.Nil, err
	}
	link := doc.CreateElement(`crlink="` + href + `"`)
	if err := doc.AppendChild(color, link); err != nil {
		return dom.Nil, err
	}
	if err := doc.Remove(id); err != nil {
		return dom.Nil, err
	}
	if err := doc.AppendChild(link, id); err != nil {
		return dom.Nil, err
	}
	return doc.Unwrap(id)
}

type lineBreakHandler struct{}

// LineBreak replaces block element (or <br>) with its content followed by
// newline.
func LineBreak() Handler {
	return lineBreakHandler{}
}

func (lineBreakHandler) Handle(doc *dom.Document, id dom.NodeID) (dom.NodeID, error) {
	if err := doc.InsertAfter(id, doc.CreateText("\n")); err != nil {
		return dom.Nil, err
	}
	return doc.Unwrap(id)
}

type unwrapHandler struct{}

// Unwrap drops element keeping its content in place.
func Unwrap() Handler {
	return unwrapHandler{}
}

func (unwrapHandler) Handle(doc *dom.Document, id dom.NodeID) (dom.NodeID, error) {
	return doc.Unwrap(id)
}

// DefaultRenames is tag rename table used by Rename unless overwritten.
var DefaultRenames = map[string]string{
	"em":     "i",
	"strong": "b",
}

type renameHandler struct {
	table map[string]string
}

// Rename changes tag name according to table, elements with names missing
// from the table are left alone. Table is copied.
func Rename(table map[string]string) Handler {
	return renameHandler{table: maps.Clone(table)}
}

func (h renameHandler) Handle(doc *dom.Document, id dom.NodeID) (dom.NodeID, error) {
	to, ok := h.table[doc.Tag(id)]
	if !ok {
		return id, nil
	}
	if err := doc.SetTag(id, to); err != nil {
		return dom.Nil, err
	}
	return id, nil
}

var headingSizes = map[string]string{
	"h1": "2",
	"h2": "1.5",
	"h3": "1.2",
	"h4": "1",
	"h5": "0.8",
}

type headingHandler struct{}

// Heading turns <hN> into size=Xem > b > content followed by newline.
func Heading() Handler {
	return headingHandler{}
}

func (headingHandler) Handle(doc *dom.Document, id dom.NodeID) (dom.NodeID, error) {
	tag := doc.Tag(id)
	size, ok := headingSizes[tag]
	if !ok {
		return dom.Nil, fmt.Errorf("%w: <%s>", errHeadingLevel, tag)
	}

	wrapper := doc.CreateElement("size=" + size + "em")
	if err := doc.InsertAfter(id, wrapper); err != nil {
		return dom.Nil, err
	}
	bold := doc.CreateElement("b")
	if err := doc.AppendChild(wrapper, bold); err != nil {
		return dom.Nil, err
	}
	if err := doc.InsertAfter(wrapper, doc.CreateText("\n")); err != nil {
		return dom.Nil, err
	}
	if err := doc.Remove(id); err != nil {
		return dom.Nil, err
	}
	if err := doc.AppendChild(bold, id); err != nil {
		return dom.Nil, err
	}
	if _, err := doc.Unwrap(id); err != nil {
		return dom.Nil, err
	}
	return bold, nil
}
