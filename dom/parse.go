package dom

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse reads HTML fragment and builds document from it. Input is parsed as
// content of <body> element so fragments do not get html/head/body wrappers.
// Comments and doctype are dropped.
func Parse(r io.Reader) (*Document, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(r, body)
	if err != nil {
		return nil, fmt.Errorf("unable to parse html: %w", err)
	}

	d := New()
	for _, n := range nodes {
		d.importNode(d.Root(), n)
	}
	return d, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

func (d *Document) importNode(parent NodeID, n *html.Node) {
	var id NodeID
	switch n.Type {
	case html.TextNode:
		id = d.CreateText(n.Data)
	case html.ElementNode:
		id = d.CreateElement(n.Data)
		if len(n.Attr) > 0 {
			attrs := make([]Attribute, 0, len(n.Attr))
			for _, a := range n.Attr {
				attrs = append(attrs, Attribute{Key: a.Key, Val: a.Val})
			}
			d.nodes[id].attrs = attrs
		}
	default:
		return
	}

	d.nodes[id].parent = parent
	d.nodes[parent].children = append(d.nodes[parent].children, id)

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.importNode(id, c)
	}
}
