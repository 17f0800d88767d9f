package richtext

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"richtag/css"
	"richtag/dom"
)

const (
	indentTag  = "indent=2em"
	markAlpha  = "80"
	styleAttr  = "style"
	fontFamily = "font-family"
)

// resolveStyle promotes inline style of the node into a chain of wrapper
// elements. Wrappers are spliced in at the node position in declaration
// order, so the first declaration ends up outermost and the node itself
// innermost. Returns the node.
func (w *walker) resolveStyle(id dom.NodeID) (dom.NodeID, error) {
	style, ok := w.doc.Attr(id, styleAttr)
	if !ok || strings.TrimSpace(style) == "" {
		return id, nil
	}

	decls, err := w.css.ParseInline(style)
	if err != nil {
		fragment := style
		var se *css.SyntaxError
		if errors.As(err, &se) {
			fragment = se.Fragment
		}
		return dom.Nil, newError(KindStyleFormat, fragment, err, "style clause must be 'property: value'")
	}

	tags := make([]string, 0, len(decls))
	for _, d := range decls {
		tag, err := wrapperTag(d, w.align)
		if err != nil {
			return dom.Nil, err
		}
		tags = append(tags, tag)
	}

	for _, tag := range tags {
		if err := wrap(w.doc, id, tag); err != nil {
			return dom.Nil, newError(KindStructural, w.doc.OuterHTML(id), err, "unable to wrap node into <%s>", tag)
		}
	}
	w.doc.RemoveAttr(id, styleAttr)

	w.log.Debug("Style promoted", zap.String("style", style), zap.Strings("wrappers", tags))
	return id, nil
}

// wrap places new element with given tag at the node position and moves the
// node into it.
func wrap(doc *dom.Document, id dom.NodeID, tag string) error {
	wrapper := doc.CreateElement(tag)
	if err := doc.InsertAfter(id, wrapper); err != nil {
		return err
	}
	if err := doc.Remove(id); err != nil {
		return err
	}
	return doc.AppendChild(wrapper, id)
}

// wrapperTag maps single style declaration to output tag.
func wrapperTag(d css.Declaration, align map[string]string) (string, error) {
	switch d.Property {
	case "text-align":
		tag, ok := align[strings.ToLower(d.Value)]
		if !ok {
			return "", newError(KindInvalidTextAlignValue, d.Raw, nil, "unknown text-align value %q", d.Value)
		}
		return tag, nil
	case "text-indent":
		return indentTag, nil
	case "line-height":
		return "line-height=" + d.Value + "em", nil
	case "background-color":
		c, err := css.ParseRGB(d.Value)
		if err != nil {
			return "", newError(KindRGBParse, d.Raw, err, "unable to parse background color")
		}
		return "mark=#" + c.Hex() + markAlpha, nil
	case "color":
		c, err := css.ParseRGB(d.Value)
		if err != nil {
			return "", newError(KindRGBParse, d.Raw, err, "unable to parse color")
		}
		return "#" + c.Hex(), nil
	case "font-size":
		return "size=" + d.Value, nil
	case fontFamily:
		return "", newError(KindUnsupportedFontFamily, d.Raw, nil, "font families are not supported yet")
	default:
		return "", newError(KindUnsupportedStyleProperty, d.Raw, nil, "style property %q is not supported", d.Property)
	}
}
