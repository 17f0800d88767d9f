package css

import (
	"errors"
	"fmt"
)

var (
	// ErrDeclarationFormat is reported for style clauses which do not consist
	// of exactly one property and one value.
	ErrDeclarationFormat = errors.New("declaration must have form 'property: value'")
	// ErrRGBFormat is reported for color values which are not rgb(r, g, b)
	// with integer channels.
	ErrRGBFormat = errors.New("color must have form 'rgb(r, g, b)' with integer channels 0-255")
)

// SyntaxError carries offending piece of CSS source.
type SyntaxError struct {
	Fragment string
	Err      error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Fragment)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Declaration represents a single property declaration of inline style.
type Declaration struct {
	Property string // Lower-cased property name (e.g., "text-align")
	Value    string // Trimmed value as written (e.g., "rgb(1, 2, 3)")
	Raw      string // Whole clause as written, for diagnostics
}

// RGB is a color with 8 bit channels.
type RGB struct {
	R, G, B uint8
}

// Hex returns lower case hex representation without leading '#', e.g. "eb903a".
func (c RGB) Hex() string {
	return fmt.Sprintf("%02x%02x%02x", c.R, c.G, c.B)
}
