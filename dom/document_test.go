package dom_test

import (
	"errors"
	"strings"
	"testing"

	"richtag/dom"
)

// find returns first element with given tag in document order.
func find(d *dom.Document, tag string) dom.NodeID {
	var walk func(id dom.NodeID) dom.NodeID
	walk = func(id dom.NodeID) dom.NodeID {
		if d.Tag(id) == tag {
			return id
		}
		for _, c := range d.Children(id) {
			if found := walk(c); found != dom.Nil {
				return found
			}
		}
		return dom.Nil
	}
	return walk(d.Root())
}

func mustParse(t *testing.T, src string) *dom.Document {
	t.Helper()
	d, err := dom.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString(%q) error = %v", src, err)
	}
	return d
}

func TestParse_Render(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text", in: "hello", want: "hello"},
		{name: "nested", in: "<b>x<i>y</i></b>z", want: "<b>x<i>y</i></b>z"},
		{name: "attributes dropped", in: `<b class="c" style="color: red">x</b>`, want: "<b>x</b>"},
		{name: "nbsp entity kept", in: "a&nbsp;b", want: "a&nbsp;b"},
		{name: "escaping", in: "1 &lt; 2 &amp; 3", want: "1 &lt; 2 &amp; 3"},
		{name: "void element", in: "a<br>b", want: "a<br>b"},
		{name: "comments dropped", in: "<!-- note --><u>x</u>", want: "<u>x</u>"},
		{name: "unicode", in: "<b>大标题</b>", want: "<b>大标题</b>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := mustParse(t, tt.in)
			if got := d.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			var sb strings.Builder
			n, err := d.WriteTo(&sb)
			if err != nil {
				t.Fatalf("WriteTo() error = %v", err)
			}
			if sb.String() != tt.want || int(n) != len(tt.want) {
				t.Errorf("WriteTo() = %q (%d), want %q", sb.String(), n, tt.want)
			}
		})
	}
}

func TestOuterHTML(t *testing.T) {
	d := mustParse(t, `<p><a href="https://example.com/?a=1&amp;b=2">link</a></p>`)
	a := find(d, "a")
	want := `<a href="https://example.com/?a=1&amp;b=2">link</a>`
	if got := d.OuterHTML(a); got != want {
		t.Errorf("OuterHTML() = %q, want %q", got, want)
	}
	if href, ok := d.Attr(a, "href"); !ok || href != "https://example.com/?a=1&b=2" {
		t.Errorf("Attr(href) = %q, %v", href, ok)
	}
}

func TestUnwrap(t *testing.T) {
	d := mustParse(t, "<div>x<span>a<i>b</i></span><b>c</b></div>")
	div, span := find(d, "div"), find(d, "span")

	parent, err := d.Unwrap(span)
	if err != nil {
		t.Fatalf("Unwrap() error = %v", err)
	}
	if parent != div {
		t.Errorf("Unwrap() = %d, want parent %d", parent, div)
	}
	if got, want := d.String(), "<div>xa<i>b</i><b>c</b></div>"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if d.Parent(span) != dom.Nil || len(d.Children(span)) != 0 {
		t.Error("unwrapped node must be detached and empty")
	}
	if i := find(d, "i"); d.Parent(i) != div {
		t.Errorf("promoted child parent = %d, want %d", d.Parent(i), div)
	}
}

func TestWrapWithPrimitives(t *testing.T) {
	d := mustParse(t, "<b>x</b>y")
	b := find(d, "b")

	u := d.CreateElement("u")
	if err := d.InsertAfter(b, u); err != nil {
		t.Fatalf("InsertAfter() error = %v", err)
	}
	if err := d.Remove(b); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := d.AppendChild(u, b); err != nil {
		t.Fatalf("AppendChild() error = %v", err)
	}
	nl := d.CreateText("\n")
	if err := d.InsertAfter(u, nl); err != nil {
		t.Fatalf("InsertAfter() error = %v", err)
	}

	if got, want := d.String(), "<u><b>x</b></u>\ny"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestSetTagAndAttrs(t *testing.T) {
	d := mustParse(t, `<em title="t">x</em>`)
	em := find(d, "em")
	if err := d.SetTag(em, "i"); err != nil {
		t.Fatalf("SetTag() error = %v", err)
	}
	if err := d.SetAttr(em, "title", "u"); err != nil {
		t.Fatalf("SetAttr() error = %v", err)
	}
	if v, _ := d.Attr(em, "title"); v != "u" {
		t.Errorf("Attr(title) = %q, want %q", v, "u")
	}
	d.RemoveAttr(em, "title")
	if _, ok := d.Attr(em, "title"); ok {
		t.Error("attribute must be removed")
	}
	if got := d.String(); got != "<i>x</i>" {
		t.Errorf("String() = %q", got)
	}

	text := d.Children(em)[0]
	if d.Tag(text) != dom.TextTag || d.Type(text) != dom.TextNode {
		t.Errorf("text node tag = %q type = %v", d.Tag(text), d.Type(text))
	}
	if err := d.SetTag(text, "b"); !errors.Is(err, dom.ErrHierarchy) {
		t.Errorf("SetTag(text) error = %v, want ErrHierarchy", err)
	}
}

func TestMutationErrors(t *testing.T) {
	d := mustParse(t, "<b><i>x</i></b>")
	b, i := find(d, "b"), find(d, "i")

	tests := []struct {
		name string
		op   func() error
		want error
	}{
		{name: "append attached", op: func() error { return d.AppendChild(d.Root(), i) }, want: dom.ErrAttached},
		{name: "remove root", op: func() error { return d.Remove(d.Root()) }, want: dom.ErrDetached},
		{name: "invalid id", op: func() error { return d.Remove(dom.NodeID(1000)) }, want: dom.ErrInvalidNode},
		{name: "nil id", op: func() error { _, err := d.Unwrap(dom.Nil); return err }, want: dom.ErrInvalidNode},
		{name: "move root", op: func() error { return d.AppendChild(b, d.Root()) }, want: dom.ErrHierarchy},
		{
			name: "ancestor into descendant",
			op: func() error {
				if err := d.Remove(b); err != nil {
					return err
				}
				return d.AppendChild(i, b)
			},
			want: dom.ErrHierarchy,
		},
		{name: "insert after detached", op: func() error { return d.InsertAfter(b, d.CreateText("z")) }, want: dom.ErrDetached},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.op(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestChildAccessors(t *testing.T) {
	d := mustParse(t, "<b>1</b><i>2</i>3")
	root := d.Root()
	b, i := find(d, "b"), find(d, "i")

	if n := d.ChildCount(root); n != 3 {
		t.Fatalf("ChildCount() = %d, want 3", n)
	}
	if d.ChildAt(root, 0) != b || d.ChildAt(root, 1) != i || d.Type(d.ChildAt(root, 2)) != dom.TextNode {
		t.Errorf("ChildAt() order broken: %v", d.Children(root))
	}
	for _, idx := range []int{-1, 3} {
		if got := d.ChildAt(root, idx); got != dom.Nil {
			t.Errorf("ChildAt(%d) = %d, want Nil", idx, got)
		}
	}
	if d.ChildIndex(root, i) != 1 || d.ChildIndex(root, d.CreateText("x")) != -1 {
		t.Error("ChildIndex() mismatch")
	}
	if d.ChildCount(dom.Nil) != 0 || d.ChildAt(dom.Nil, 0) != dom.Nil || d.ChildIndex(dom.Nil, b) != -1 {
		t.Error("accessors must tolerate invalid ids")
	}
}

func TestDump(t *testing.T) {
	d := mustParse(t, `<b class="x">t</b>`)
	want := "[0] #root\n  [1] b class=\"x\"\n    #text: \"t\"\n"
	if got := d.Dump(); got != want {
		t.Errorf("Dump() = %q, want %q", got, want)
	}
}
