package dom

import (
	"html"
	"io"
	"strings"

	"richtag/utils/debug"
)

// markupEscaper is used for text in target markup. Non-breaking spaces are
// written as entities, post-processing decides what to do with them.
var markupEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\u00a0", "&nbsp;",
)

var voidElements = map[string]bool{
	"br":    true,
	"hr":    true,
	"img":   true,
	"input": true,
	"wbr":   true,
}

// WriteTo writes target markup for the whole document to w, implementing
// io.WriterTo. Attributes are never written: target grammar carries all
// formatting in tag names.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	d.writeMarkup(&sb, d.Root())
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

// String returns target markup for the whole document.
func (d *Document) String() string {
	var sb strings.Builder
	d.writeMarkup(&sb, d.Root())
	return sb.String()
}

// Markup returns target markup for a single subtree.
func (d *Document) Markup(id NodeID) string {
	if !d.Valid(id) {
		return ""
	}
	var sb strings.Builder
	d.writeMarkup(&sb, id)
	return sb.String()
}

func (d *Document) writeMarkup(sb *strings.Builder, id NodeID) {
	n := &d.nodes[id]
	switch n.typ {
	case TextNode:
		sb.WriteString(markupEscaper.Replace(n.text))
		return
	case ElementNode:
		sb.WriteByte('<')
		sb.WriteString(n.tag)
		sb.WriteByte('>')
		if voidElements[n.tag] && len(n.children) == 0 {
			return
		}
	}
	for _, c := range n.children {
		d.writeMarkup(sb, c)
	}
	if n.typ == ElementNode {
		sb.WriteString("</")
		sb.WriteString(n.tag)
		sb.WriteByte('>')
	}
}

// OuterHTML renders subtree as HTML including attributes. It is meant for
// diagnostics, not for output.
func (d *Document) OuterHTML(id NodeID) string {
	if !d.Valid(id) {
		return ""
	}
	var sb strings.Builder
	d.writeHTML(&sb, id)
	return sb.String()
}

func (d *Document) writeHTML(sb *strings.Builder, id NodeID) {
	n := &d.nodes[id]
	switch n.typ {
	case TextNode:
		sb.WriteString(html.EscapeString(n.text))
		return
	case ElementNode:
		sb.WriteByte('<')
		sb.WriteString(n.tag)
		for _, a := range n.attrs {
			sb.WriteByte(' ')
			sb.WriteString(a.Key)
			sb.WriteString(`="`)
			sb.WriteString(html.EscapeString(a.Val))
			sb.WriteByte('"')
		}
		sb.WriteByte('>')
		if voidElements[n.tag] && len(n.children) == 0 {
			return
		}
	}
	for _, c := range n.children {
		d.writeHTML(sb, c)
	}
	if n.typ == ElementNode {
		sb.WriteString("</")
		sb.WriteString(n.tag)
		sb.WriteByte('>')
	}
}

// Dump returns indented tree representation of the document, one node per
// line, for debugging and reports.
func (d *Document) Dump() string {
	tw := debug.NewTreeWriter()
	d.dump(tw, d.Root(), 0)
	return tw.String()
}

func (d *Document) dump(tw *debug.TreeWriter, id NodeID, depth int) {
	n := &d.nodes[id]
	switch n.typ {
	case RootNode:
		tw.Node(depth, int(id), "#root")
	case TextNode:
		tw.TextBlock(depth, TextTag, n.text)
	case ElementNode:
		label := n.tag
		for _, a := range n.attrs {
			label += " " + a.Key + "=" + debug.Quote(a.Val)
		}
		tw.Node(depth, int(id), label)
	}
	for _, c := range n.children {
		d.dump(tw, c, depth+1)
	}
}
