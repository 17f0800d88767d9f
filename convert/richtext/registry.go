package richtext

import (
	"maps"
	"slices"
	"sort"
	"sync/atomic"

	"github.com/maruel/natural"
	"go.uber.org/zap"
)

// Entry binds handler to input tag name. Entry with nil Handler removes
// binding for the tag.
type Entry struct {
	Tag     string
	Handler Handler
}

// handlerTable is immutable snapshot of registry state.
type handlerTable struct {
	exact   map[string]Handler
	heading Handler
}

func (t *handlerTable) lookup(tag string) (Handler, bool) {
	if h, ok := t.exact[tag]; ok {
		return h, true
	}
	if t.heading != nil && headingPattern.MatchString(tag) {
		return t.heading, true
	}
	return nil, false
}

// Registry maps input tags to handlers. Readers always see complete snapshot,
// Register publishes a modified copy.
type Registry struct {
	log      *zap.Logger
	snapshot atomic.Pointer[handlerTable]
}

// DefaultEntries returns built-in handler bindings. Headings h1-h5 are
// dispatched by pattern and do not need entries.
func DefaultEntries() []Entry {
	lb := LineBreak()
	rn := Rename(DefaultRenames)
	return []Entry{
		{Tag: "a", Handler: Anchor()},
		{Tag: "p", Handler: lb},
		{Tag: "div", Handler: lb},
		{Tag: "br", Handler: lb},
		{Tag: "span", Handler: Unwrap()},
		{Tag: "em", Handler: rn},
		{Tag: "strong", Handler: rn},
	}
}

// NewRegistry creates registry with heading pattern route and given entries.
func NewRegistry(log *zap.Logger, entries ...Entry) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Registry{log: log.Named("registry")}
	r.snapshot.Store(&handlerTable{exact: map[string]Handler{}, heading: Heading()})
	return r.Register(entries...)
}

// Register adds or overrides bindings. Concurrent conversions keep using
// snapshot they started with.
func (r *Registry) Register(entries ...Entry) *Registry {
	if len(entries) == 0 {
		return r
	}
	for {
		old := r.snapshot.Load()
		next := &handlerTable{exact: maps.Clone(old.exact), heading: old.heading}
		for _, e := range entries {
			if e.Handler == nil {
				delete(next.exact, e.Tag)
				continue
			}
			next.exact[e.Tag] = e.Handler
		}
		if r.snapshot.CompareAndSwap(old, next) {
			r.log.Debug("Handlers snapshot published", zap.Int("entries", len(entries)), zap.Int("bindings", len(next.exact)))
			return r
		}
	}
}

// Lookup finds handler by exact tag name, falling back to heading handler
// for h1-h5.
func (r *Registry) Lookup(tag string) (Handler, bool) {
	return r.snapshot.Load().lookup(tag)
}

// Tags returns tags with explicit bindings in natural order.
func (r *Registry) Tags() []string {
	tags := slices.Collect(maps.Keys(r.current().exact))
	sort.Sort(natural.StringSlice(tags))
	return tags
}

func (r *Registry) current() *handlerTable {
	return r.snapshot.Load()
}
