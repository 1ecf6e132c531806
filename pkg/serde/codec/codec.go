// Package codec holds the per-type encode/decode strategies a host mapping
// engine installs for values it has no native representation for: byte
// buffers, time of day, calendar dates and closed ranges.
//
// Strategies are stateless. Everything a call needs, including the element
// type of a generic container, arrives through its arguments, so a single
// Registry can serve any number of concurrent encodes and decodes.
package codec

import (
	"reflect"

	"github.com/lk2023060901/garden-serde/pkg/serde/token"
)

// Tag is the static identifier of a strategy.
type Tag string

const (
	TagBytes       Tag = "bytes"
	TagLocalTime   Tag = "local-time"
	TagLocalDate   Tag = "local-date"
	TagClosedRange Tag = "closed-range"
)

func (t Tag) String() string {
	return string(t)
}

// EncodeContext is supplied by the host engine so a strategy can encode a
// nested value with that value's own serializer.
type EncodeContext interface {
	EncodeValue(w token.Writer, v any) error
}

// DecodeContext is supplied by the host engine for every decode call.
type DecodeContext interface {
	// DecodeValue decodes the value the reader is positioned on as type t.
	DecodeValue(r token.Reader, t reflect.Type) (any, error)
	// ElementType is the contextual type resolved at the call site, such as
	// the type argument of the declaring field. It is nil when the call site
	// has none.
	ElementType() reflect.Type
}

type (
	EncodeFunc func(ctx EncodeContext, w token.Writer, v any) error
	DecodeFunc func(ctx DecodeContext, r token.Reader) (any, error)
)

// Strategy is an (encode, decode) pair registered for a type.
type Strategy struct {
	Tag    Tag
	Encode EncodeFunc
	Decode DecodeFunc
}
