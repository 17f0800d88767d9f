package state

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"richtag/config"
	"richtag/convert/richtext"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
		Log:   zap.NewNop(),
	}
}

// PrepareConverter builds converter according to configuration. Rename pairs
// are applied first so explicit tag bindings always win.
func (e *LocalEnv) PrepareConverter() error {
	conv := e.Cfg.Conversion

	renames := maps.Clone(richtext.DefaultRenames)
	maps.Copy(renames, conv.Rename)

	entries, err := handlerEntries(conv.Handlers, renames)
	if err != nil {
		return err
	}
	e.Converter = richtext.New(e.Log,
		richtext.WithRenames(conv.Rename),
		richtext.WithHandlers(entries...),
	)
	e.Log.Debug("Converter prepared", zap.Strings("bindings", e.Converter.Registry().Tags()))
	return nil
}

// CheckLanguage warns about language codes which are not well formed BCP 47
// tags. Such codes are still used, conversion looks at the first two letters
// only.
func (e *LocalEnv) CheckLanguage(lang string) bool {
	if _, err := language.Parse(lang); err != nil {
		e.Log.Warn("Language is not a valid BCP 47 tag", zap.String("lang", lang), zap.Error(err))
		return false
	}
	return true
}

func handlerEntries(bindings map[string]config.HandlerKind, renames map[string]string) ([]richtext.Entry, error) {
	entries := make([]richtext.Entry, 0, len(bindings))
	for _, tag := range slices.Sorted(maps.Keys(bindings)) {
		h, err := handlerFor(bindings[tag], renames)
		if err != nil {
			return nil, fmt.Errorf("unable to bind handler to <%s>: %w", tag, err)
		}
		entries = append(entries, richtext.Entry{Tag: tag, Handler: h})
	}
	return entries, nil
}

func handlerFor(kind config.HandlerKind, renames map[string]string) (richtext.Handler, error) {
	switch kind {
	case config.HandlerKindAnchor:
		return richtext.Anchor(), nil
	case config.HandlerKindLinebreak:
		return richtext.LineBreak(), nil
	case config.HandlerKindUnwrap:
		return richtext.Unwrap(), nil
	case config.HandlerKindRename:
		return richtext.Rename(renames), nil
	case config.HandlerKindHeading:
		return richtext.Heading(), nil
	default:
		return nil, fmt.Errorf("unsupported handler kind %s", kind)
	}
}
