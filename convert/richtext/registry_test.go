package richtext

import (
	"slices"
	"testing"
)

func TestRegistry_Lookup(t *testing.T) {
	r := NewRegistry(nil, DefaultEntries()...)

	for _, tag := range []string{"a", "p", "div", "br", "span", "em", "strong", "h1", "h3", "h5"} {
		if _, ok := r.Lookup(tag); !ok {
			t.Errorf("Lookup(%q) found nothing", tag)
		}
	}
	for _, tag := range []string{"h", "h0", "h6", "h12", "b", "#text", ""} {
		if _, ok := r.Lookup(tag); ok {
			t.Errorf("Lookup(%q) found handler", tag)
		}
	}

	h1, _ := r.Lookup("h1")
	h4, _ := r.Lookup("h4")
	if h1 != h4 {
		t.Error("heading levels must share one handler")
	}
}

func TestRegistry_RegisterCopyOnWrite(t *testing.T) {
	r := NewRegistry(nil)
	before := r.current()

	if got := r.Register(Entry{Tag: "x", Handler: Unwrap()}); got != r {
		t.Fatal("Register() must return the same registry")
	}
	if _, ok := before.lookup("x"); ok {
		t.Error("old snapshot must not change")
	}
	if _, ok := r.Lookup("x"); !ok {
		t.Error("new snapshot must have binding")
	}

	r.Register(Entry{Tag: "h10", Handler: Unwrap()}, Entry{Tag: "h2", Handler: Unwrap()}, Entry{Tag: "x"})
	if want := []string{"h2", "h10"}; !slices.Equal(r.Tags(), want) {
		t.Errorf("Tags() = %v, want %v", r.Tags(), want)
	}
}
