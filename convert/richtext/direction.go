package richtext

import "strings"

const (
	alignCenter    = "align=center"
	alignLeft      = "align=left"
	alignRight     = "align=right"
	alignJustified = "align=justified"
)

var rtlLanguages = newTagSet("ar", "fa", "iw", "ur", "ug")

// isRTL checks primary subtag of language code, only first two characters are
// considered so "ar-EG" and "ar_EG" are both right to left.
func isRTL(lang string) bool {
	if len(lang) > 2 {
		lang = lang[:2]
	}
	return rtlLanguages.has(strings.ToLower(lang))
}

var (
	alignLTR = map[string]string{
		"center":  alignCenter,
		"left":    alignLeft,
		"right":   alignRight,
		"justify": alignJustified,
		"start":   alignLeft,
		"end":     alignRight,
	}
	alignRTL = map[string]string{
		"center":  alignCenter,
		"left":    alignLeft,
		"right":   alignRight,
		"justify": alignJustified,
		"start":   alignRight,
		"end":     alignLeft,
	}
)

// alignTable returns text-align value to output tag mapping for language.
func alignTable(lang string) map[string]string {
	if isRTL(lang) {
		return alignRTL
	}
	return alignLTR
}
