package richtext

import (
	"errors"
	"fmt"
)

// Kind classifies conversion failures.
type Kind int

const (
	KindUnknown Kind = iota
	KindStructural
	KindUnsupportedInputTag
	KindUnsupportedOutputPrefix
	KindUnhandleableOutputTag
	KindStyleFormat
	KindUnsupportedStyleProperty
	KindUnsupportedFontFamily
	KindInvalidTextAlignValue
	KindRGBParse
)

var kindNames = [...]string{
	KindUnknown:                  "UnknownError",
	KindStructural:               "StructuralError",
	KindUnsupportedInputTag:      "UnsupportedInputTag",
	KindUnsupportedOutputPrefix:  "UnsupportedOutputPrefix",
	KindUnhandleableOutputTag:    "UnhandleableOutputTag",
	KindStyleFormat:              "StyleFormatError",
	KindUnsupportedStyleProperty: "UnsupportedStyleProperty",
	KindUnsupportedFontFamily:    "UnsupportedFontFamily",
	KindInvalidTextAlignValue:    "InvalidTextAlignValue",
	KindRGBParse:                 "RgbParseError",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Sentinels for errors.Is matching, only Kind is compared.
var (
	ErrStructural               = &Error{Kind: KindStructural}
	ErrUnsupportedInputTag      = &Error{Kind: KindUnsupportedInputTag}
	ErrUnsupportedOutputPrefix  = &Error{Kind: KindUnsupportedOutputPrefix}
	ErrUnhandleableOutputTag    = &Error{Kind: KindUnhandleableOutputTag}
	ErrStyleFormat              = &Error{Kind: KindStyleFormat}
	ErrUnsupportedStyleProperty = &Error{Kind: KindUnsupportedStyleProperty}
	ErrUnsupportedFontFamily    = &Error{Kind: KindUnsupportedFontFamily}
	ErrInvalidTextAlignValue    = &Error{Kind: KindInvalidTextAlignValue}
	ErrRGBParse                 = &Error{Kind: KindRGBParse}
)

// snippetLength is the number of runes of offending fragment kept in errors.
const snippetLength = 30

// Error is returned by conversion for any input it cannot represent.
type Error struct {
	Kind     Kind
	Msg      string
	Fragment string // first runes of offending input, may be empty
	Err      error
}

func newError(kind Kind, fragment string, err error, format string, args ...any) *Error {
	return &Error{
		Kind:     kind,
		Msg:      fmt.Sprintf(format, args...),
		Fragment: snippet(fragment),
		Err:      err,
	}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if e.Fragment != "" {
		msg += fmt.Sprintf(" (near %q)", e.Fragment)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// KindOf returns kind of conversion error in err chain or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func snippet(s string) string {
	n := 0
	for i := range s {
		if n == snippetLength {
			return s[:i] + "..."
		}
		n++
	}
	return s
}
