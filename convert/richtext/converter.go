// Package richtext converts HTML fragments into rich text markup understood by
// game UI text widgets: tags like <size=2em>, <b>, <align=center>,
// <mark=#rrggbbaa>, <crlink="url"> and hex color tags closed by </color>.
//
// Conversion is strict. Anything which has no representation in the target
// markup fails the whole conversion with *Error.
package richtext

import (
	"io"
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"

	"richtag/css"
	"richtag/dom"
)

// Converter is safe for concurrent use, handlers may be registered while
// conversions are running.
type Converter struct {
	log      *zap.Logger
	grammar  *grammar
	registry *Registry
	css      *css.Parser
}

// Option configures Converter.
type Option func(*Converter)

// WithRenames extends default rename table (em->i, strong->b). Every tag in
// the resulting table is bound to Rename handler.
func WithRenames(table map[string]string) Option {
	return func(c *Converter) {
		merged := maps.Clone(DefaultRenames)
		maps.Copy(merged, table)
		h := Rename(merged)

		entries := make([]Entry, 0, len(merged))
		for _, from := range slices.Sorted(maps.Keys(merged)) {
			entries = append(entries, Entry{Tag: from, Handler: h})
		}
		c.registry.Register(entries...)
	}
}

// WithHandlers registers additional bindings on construction.
func WithHandlers(entries ...Entry) Option {
	return func(c *Converter) {
		c.registry.Register(entries...)
	}
}

// New creates converter with default handlers.
func New(log *zap.Logger, opts ...Option) *Converter {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Converter{
		log:     log.Named("richtext"),
		grammar: defaultGrammar(),
		css:     css.NewParser(log),
	}
	c.registry = NewRegistry(c.log, DefaultEntries()...)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RegisterHandlers adds or overrides handler bindings and returns converter
// for chaining.
func (c *Converter) RegisterHandlers(entries ...Entry) *Converter {
	c.registry.Register(entries...)
	return c
}

// Registry gives access to handler bindings.
func (c *Converter) Registry() *Registry {
	return c.registry
}

// Convert parses html fragment and converts it for language lang. Language
// affects only direction dependent text alignment.
func (c *Converter) Convert(html, lang string) (string, error) {
	if err := c.CheckMarkup(strings.NewReader(html)); err != nil {
		return "", err
	}
	doc, err := dom.Parse(strings.NewReader(html))
	if err != nil {
		return "", newError(KindStructural, html, err, "unable to parse input")
	}
	return c.ConvertDocument(doc, lang)
}

// CheckMarkup rejects unsupported input tags which do not survive HTML tree
// construction. Callers parsing markup themselves should run it on the raw
// text before ConvertDocument.
func (c *Converter) CheckMarkup(r io.Reader) error {
	return c.grammar.checkStrayTags(r)
}

// ConvertDocument converts already parsed document. Document is modified in
// place and on failure is left in partially converted state, which is useful
// for diagnostics only.
func (c *Converter) ConvertDocument(doc *dom.Document, lang string) (string, error) {
	w := &walker{
		log:      c.log,
		doc:      doc,
		grammar:  c.grammar,
		handlers: c.registry.current(),
		css:      c.css,
		align:    alignTable(lang),
		seen:     make(map[dom.NodeID]bool, doc.Len()),
	}

	c.log.Debug("Conversion started", zap.String("lang", lang), zap.Bool("rtl", isRTL(lang)), zap.Int("nodes", doc.Len()))
	if err := w.walkChildren(doc.Root()); err != nil {
		c.log.Debug("Conversion failed", zap.Error(err))
		return "", err
	}

	out := postProcess(doc.String())
	c.log.Debug("Conversion finished", zap.Int("nodes", doc.Len()), zap.Int("length", len(out)))
	return out, nil
}
