package config

import (
	"fmt"
	"strings"
)

// Built-in handler which could be bound to a tag from configuration.
// ENUM(anchor, linebreak, unwrap, rename, heading)
type HandlerKind int

const (
	HandlerKindAnchor HandlerKind = iota
	HandlerKindLinebreak
	HandlerKindUnwrap
	HandlerKindRename
	HandlerKindHeading
)

var handlerKindNames = []string{"anchor", "linebreak", "unwrap", "rename", "heading"}

// HandlerKindNames returns list of possible string values of HandlerKind.
func HandlerKindNames() []string {
	return append([]string(nil), handlerKindNames...)
}

func (x HandlerKind) IsValid() bool {
	return x >= 0 && int(x) < len(handlerKindNames)
}

func (x HandlerKind) String() string {
	if x.IsValid() {
		return handlerKindNames[x]
	}
	return fmt.Sprintf("HandlerKind(%d)", int(x))
}

// ParseHandlerKind attempts to convert case insensitive string to HandlerKind.
func ParseHandlerKind(name string) (HandlerKind, error) {
	for i, n := range handlerKindNames {
		if strings.EqualFold(n, name) {
			return HandlerKind(i), nil
		}
	}
	return HandlerKind(0), fmt.Errorf("%q is not a valid HandlerKind, try [%s]", name, strings.Join(handlerKindNames, ", "))
}

func (x HandlerKind) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}

func (x *HandlerKind) UnmarshalText(text []byte) error {
	v, err := ParseHandlerKind(string(text))
	if err != nil {
		return err
	}
	*x = v
	return nil
}
