package richtext

import (
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"richtag/dom"
)

func TestTagPrefix(t *testing.T) {
	tests := map[string]string{
		"size=2em":           "size=",
		`crlink="a=b"`:       "crlink=",
		"b":                  "",
		"font=arial":         "font=",
		"=x":                 "=",
		"line-height=1.2em=": "line-height=",
	}
	for in, want := range tests {
		if got := tagPrefix(in); got != want {
			t.Errorf("tagPrefix(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestGrammar_IsOutput(t *testing.T) {
	g := defaultGrammar()
	tests := []struct {
		tag  string
		want bool
	}{
		{"b", true},
		{"i", true},
		{"u", true},
		{"sup", true},
		{"sub", true},
		{"align=center", true},
		{"align=justified", true},
		{"align=middle", false},
		{"size=2em", true},
		{"mark=#7d7de180", true},
		{"indent=2em", true},
		{"line-height=1.5em", true},
		{`crlink="https://x"`, true},
		{"#eb903a", true},
		{"#EB903A80", true},
		{"#eb903", false},
		{"#eb903a801", false},
		{"font=arial", false},
		{"span", false},
		{"h1", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := g.isOutput(tt.tag); got != tt.want {
			t.Errorf("isOutput(%q) = %v, want %v", tt.tag, got, tt.want)
		}
	}
	if !g.isLeaf(dom.TextTag) || !g.isLeaf("br") || g.isLeaf("b") {
		t.Error("unexpected leaf classification")
	}
}

func TestIsRTL(t *testing.T) {
	tests := map[string]bool{
		"ar":    true,
		"ar-EG": true,
		"FA":    true,
		"iw_IL": true,
		"ur":    true,
		"ug":    true,
		"he":    false,
		"zh-CN": false,
		"en":    false,
		"a":     false,
		"":      false,
	}
	for lang, want := range tests {
		if got := isRTL(lang); got != want {
			t.Errorf("isRTL(%q) = %v, want %v", lang, got, want)
		}
	}
}

func TestPostProcess(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "a&nbsp;&nbsp;b", want: "a  b"},
		{in: "<#eb903a>x</#eb903a>", want: "<#eb903a>x</color>"},
		{in: "<#EB903A80>x</#EB903A80>", want: "<#EB903A80>x</color>"},
		{in: "<#aabbcc><#112233>x</#112233></#aabbcc>", want: "<#aabbcc><#112233>x</color></color>"},
		{in: "</#abc>", want: "</#abc>"},
		{in: "&amp;nbsp; &lt;/#aabbcc&gt;", want: "&amp;nbsp; &lt;/#aabbcc&gt;"},
	}
	for _, tt := range tests {
		if got := postProcess(tt.in); got != tt.want {
			t.Errorf("postProcess(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSnippet(t *testing.T) {
	if got := snippet("short"); got != "short" {
		t.Errorf("snippet() = %q", got)
	}
	long := "一二三四五六七八九十一二三四五六七八九十一二三四五六七八九十末尾"
	want := "一二三四五六七八九十一二三四五六七八九十一二三四五六七八九十..."
	if got := snippet(long); got != want {
		t.Errorf("snippet() = %q, want %q", got, want)
	}
	exact := "一二三四五六七八九十一二三四五六七八九十一二三四五六七八九十"
	if got := snippet(exact); got != exact {
		t.Errorf("snippet() = %q, want %q", got, exact)
	}
}

// every element left in converted tree must belong to output grammar
func TestConvert_OutputGrammar(t *testing.T) {
	inputs := []string{
		`<h1 style="color: rgb(1,2,3)">a<em>b</em></h1><p>c<a href="x">d</a></p>`,
		`<div style="text-align: start; background-color: rgb(9,9,9)"><span style="font-size: 2em">x</span><br></div>`,
		`<p><strong style="line-height: 2; text-indent: 1em">y</strong><h5>z</h5></p>`,
	}

	c := New(zap.NewNop())
	for _, in := range inputs {
		doc, err := dom.ParseString(in)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := c.ConvertDocument(doc, "ug"); err != nil {
			t.Fatalf("ConvertDocument(%q) error = %v", in, err)
		}

		var check func(id dom.NodeID)
		check = func(id dom.NodeID) {
			if id != doc.Root() {
				tag := doc.Tag(id)
				if !c.grammar.isLeaf(tag) && !c.grammar.isOutput(tag) {
					t.Errorf("%q: tag %q left in output", in, tag)
				}
				if _, ok := doc.Attr(id, styleAttr); ok {
					t.Errorf("%q: style attribute left on %q", in, tag)
				}
			}
			for _, ch := range doc.Children(id) {
				check(ch)
			}
		}
		check(doc.Root())
	}
}

func TestGrammar_CheckStrayTags(t *testing.T) {
	g := defaultGrammar()
	tests := []struct {
		in   string
		want string // fragment, empty when markup is accepted
	}{
		{in: "<p>x</p>", want: ""},
		{in: "<table><tbody><tr><th>h</th><td>x</td></tr></tbody></table>", want: ""},
		{in: "<table><tr><td><table><tr><td>x</td></tr></table></td></tr></table>", want: ""},
		{in: "<script>document.write('<td>')</script>", want: ""},
		{in: "<!-- <td> -->", want: ""},
		{in: "<td/>", want: "<td/>"},
		{in: "x</table><tr>", want: "<tr>"},
		{in: "<table><tr><td>x</td></tr></table><th>y</th>", want: "<th>"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			err := g.checkStrayTags(strings.NewReader(tt.in))
			if tt.want == "" {
				if err != nil {
					t.Errorf("checkStrayTags() error = %v", err)
				}
				return
			}
			var e *Error
			if !errors.As(err, &e) || e.Kind != KindUnsupportedInputTag || e.Fragment != tt.want {
				t.Errorf("checkStrayTags() error = %v, want UnsupportedInputTag %q", err, tt.want)
			}
		})
	}
}
