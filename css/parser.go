package css

import (
	"io"
	"regexp"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses inline style attributes into ordered declarations.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// clause is a piece of style attribute between semicolons.
type clause struct {
	raw    strings.Builder
	colon  int // byte offset of the first top level colon in raw
	colons int // number of top level colons
}

// ParseInline splits style attribute into declarations preserving
// declaration order. Semicolons and colons inside functions, brackets,
// strings and url() do not split. Blank clauses are skipped, any other clause
// must have exactly one top level colon.
func (p *Parser) ParseInline(style string) ([]Declaration, error) {
	clauses, err := splitClauses(style)
	if err != nil {
		return nil, err
	}

	decls := make([]Declaration, 0, len(clauses))
	for _, c := range clauses {
		raw := c.raw.String()
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if c.colons != 1 {
			return nil, &SyntaxError{Fragment: strings.TrimSpace(raw), Err: ErrDeclarationFormat}
		}
		decl := Declaration{
			Property: strings.ToLower(strings.TrimSpace(raw[:c.colon])),
			Value:    strings.TrimSpace(raw[c.colon+1:]),
			Raw:      strings.TrimSpace(raw),
		}
		if decl.Property == "" {
			return nil, &SyntaxError{Fragment: decl.Raw, Err: ErrDeclarationFormat}
		}
		decls = append(decls, decl)
	}

	p.log.Debug("Parsed inline style", zap.String("style", style), zap.Int("declarations", len(decls)))
	return decls, nil
}

func splitClauses(style string) ([]*clause, error) {
	l := css.NewLexer(parse.NewInput(strings.NewReader(style)))

	var (
		depth   int
		current = &clause{}
		result  = []*clause{current}
	)
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			if err := l.Err(); err != nil && err != io.EOF {
				return nil, &SyntaxError{Fragment: style, Err: err}
			}
			return result, nil
		case css.CommentToken:
			continue
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken, css.LeftBraceToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken, css.RightBraceToken:
			if depth > 0 {
				depth--
			}
		case css.SemicolonToken:
			if depth == 0 {
				current = &clause{}
				result = append(result, current)
				continue
			}
		case css.ColonToken:
			if depth == 0 {
				if current.colons == 0 {
					current.colon = current.raw.Len()
				}
				current.colons++
			}
		}
		current.raw.Write(data)
	}
}

// rgbPattern captures three comma separated channels of rgb() function.
// Channels are validated separately so non-integer channels produce a
// meaningful error instead of a pattern mismatch.
var rgbPattern = regexp.MustCompile(`^rgb\(([^,()]*),([^,()]*),([^,()]*)\)$`)

// ParseRGB parses "rgb(r, g, b)" color value.
func ParseRGB(value string) (RGB, error) {
	m := rgbPattern.FindStringSubmatch(strings.ToLower(strings.TrimSpace(value)))
	if m == nil {
		return RGB{}, &SyntaxError{Fragment: value, Err: ErrRGBFormat}
	}

	var channels [3]uint8
	for i, s := range m[1:] {
		v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 8)
		if err != nil {
			return RGB{}, &SyntaxError{Fragment: value, Err: ErrRGBFormat}
		}
		channels[i] = uint8(v)
	}
	return RGB{R: channels[0], G: channels[1], B: channels[2]}, nil
}
