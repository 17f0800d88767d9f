package convert

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
)

const defaultSelector = "body"

// extractFragment parses complete page and returns inner markup of all
// elements matching selector concatenated in document order.
func extractFragment(r io.Reader, selector string) (string, error) {
	if len(selector) == 0 {
		selector = defaultSelector
	}
	m, err := cascadia.Compile(selector)
	if err != nil {
		return "", fmt.Errorf("bad selector %q: %w", selector, err)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("unable to parse html: %w", err)
	}

	sel := doc.FindMatcher(m)
	if sel.Length() == 0 {
		return "", fmt.Errorf("nothing matches selector %q", selector)
	}

	var sb strings.Builder
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var h string
		if h, err = s.Html(); err != nil {
			return false
		}
		sb.WriteString(h)
		return true
	})
	if err != nil {
		return "", fmt.Errorf("unable to render selection: %w", err)
	}
	return sb.String(), nil
}
