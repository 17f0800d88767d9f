package richtext

import (
	"errors"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"richtag/dom"
)

type tagSet map[string]struct{}

func newTagSet(tags ...string) tagSet {
	s := make(tagSet, len(tags))
	for _, t := range tags {
		s[t] = struct{}{}
	}
	return s
}

func (s tagSet) has(tag string) bool {
	_, ok := s[tag]
	return ok
}

var (
	headingPattern  = regexp.MustCompile(`^h[1-5]$`)
	colorTagPattern = regexp.MustCompile(`^#[A-Za-z0-9]{6,8}$`)
)

// grammar holds tag classification of input and output markup. It is built
// once per converter and never modified afterwards.
type grammar struct {
	leaf              tagSet // terminal, never recursed into
	noTranslate       tagSet // passed through as is
	unityPrefixes     tagSet // parametrized output tags, "size=" etc.
	unsupportedInput  tagSet
	unsupportedPrefix tagSet
	tableParts        tagSet // dropped by html parser outside of <table>
}

func defaultGrammar() *grammar {
	return &grammar{
		leaf: newTagSet(dom.TextTag, "br"),
		noTranslate: newTagSet(
			"u", "sup", "sub", "b", "i",
			alignCenter, alignLeft, alignRight, alignJustified,
		),
		unityPrefixes: newTagSet("size=", "mark=", "indent=", "line-height=", "crlink="),
		unsupportedInput: newTagSet(
			"pre", "code", "li", "ul", "ol",
			"table", "tbody", "th", "tr", "td",
			"input", "hr", "img",
		),
		unsupportedPrefix: newTagSet("font="),
		tableParts:        newTagSet("tbody", "th", "tr", "td"),
	}
}

// checkStrayTags scans raw markup for table parts outside of any table. Tree
// construction silently drops such tags keeping their content, so the walker
// would never see them.
func (g *grammar) checkStrayTags(r io.Reader) error {
	z := html.NewTokenizer(r)
	depth := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return newError(KindStructural, "", err, "unable to tokenize input")
			}
			return nil
		case html.StartTagToken, html.SelfClosingTagToken:
			// TagName lower-cases token in place
			raw := string(z.Raw())
			name, _ := z.TagName()
			switch tag := string(name); {
			case tag == "table":
				depth++
			case depth == 0 && g.tableParts.has(tag):
				return newError(KindUnsupportedInputTag, raw, nil, "tag <%s> cannot be represented", tag)
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); string(name) == "table" && depth > 0 {
				depth--
			}
		}
	}
}

// tagPrefix returns tag up to and including first '=', or empty string.
func tagPrefix(tag string) string {
	if i := strings.IndexByte(tag, '='); i >= 0 {
		return tag[:i+1]
	}
	return ""
}

func (g *grammar) isLeaf(tag string) bool {
	return g.leaf.has(tag)
}

// isOutput reports whether tag may appear in produced markup.
func (g *grammar) isOutput(tag string) bool {
	if g.noTranslate.has(tag) || colorTagPattern.MatchString(tag) {
		return true
	}
	p := tagPrefix(tag)
	return p != "" && g.unityPrefixes.has(p)
}
