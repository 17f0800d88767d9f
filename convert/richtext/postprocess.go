package richtext

import (
	"regexp"
	"strings"
)

var colorEndTag = regexp.MustCompile(`</#[A-Za-z0-9]{6,8}>`)

// postProcess normalizes serialized markup: non-breaking space entities become
// plain spaces and all color end tags collapse to </color>.
func postProcess(s string) string {
	s = strings.ReplaceAll(s, "&nbsp;", " ")
	return colorEndTag.ReplaceAllLiteralString(s, "</color>")
}
