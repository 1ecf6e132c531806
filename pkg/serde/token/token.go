// Package token defines the structured token stream shared by codecs and wire
// formats. Codecs write into a Writer and read from a Reader; a format only
// has to turn bytes into tokens and back, so every codec works unchanged on
// JSON, YAML, CBOR or protobuf documents.
package token

// Kind identifies a token in the stream.
type Kind int

const (
	Invalid Kind = iota
	ObjectStart
	ObjectEnd
	ArrayStart
	ArrayEnd
	FieldName
	String
	Int
	Uint
	Float
	Bool
	Null
	// End is returned once the root value has been fully consumed.
	End
)

var kindNames = map[Kind]string{
	Invalid:     "invalid",
	ObjectStart: "object-start",
	ObjectEnd:   "object-end",
	ArrayStart:  "array-start",
	ArrayEnd:    "array-end",
	FieldName:   "field-name",
	String:      "string",
	Int:         "int",
	Uint:        "uint",
	Float:       "float",
	Bool:        "bool",
	Null:        "null",
	End:         "end",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// IsScalar reports whether the token carries a leaf value.
func (k Kind) IsScalar() bool {
	switch k {
	case String, Int, Uint, Float, Bool, Null:
		return true
	default:
		return false
	}
}

// IsNumber reports whether the token is one of the numeric kinds.
func (k Kind) IsNumber() bool {
	return k == Int || k == Uint || k == Float
}

// Writer receives tokens in document order. Implementations reject sequences
// that cannot form a document (a field name outside an object, an unbalanced
// end token) with merr.ErrStructuralMismatch.
type Writer interface {
	WriteObjectStart() error
	WriteObjectEnd() error
	WriteArrayStart() error
	WriteArrayEnd() error
	WriteFieldName(name string) error
	WriteString(s string) error
	WriteInt(v int64) error
	WriteUint(v uint64) error
	WriteFloat(v float64) error
	WriteBool(v bool) error
	WriteNull() error
}

// Reader is a pull parser positioned on a current token.
//
// A decoder is handed a Reader positioned on the first token of its value and
// must return with the Reader positioned on the last token of that value: the
// scalar itself, or the matching ObjectEnd/ArrayEnd.
type Reader interface {
	// Next advances to the following token and returns its kind.
	Next() (Kind, error)
	// Current returns the kind of the token the reader is positioned on.
	Current() Kind
	// Name returns the field name when Current is FieldName.
	Name() string
	// Text returns the value of a String token.
	Text() string
	// Int returns the value of a numeric token as int64.
	Int() int64
	// Uint returns the value of a numeric token as uint64.
	Uint() uint64
	// Float returns the value of a numeric token as float64.
	Float() float64
	// Bool returns the value of a Bool token.
	Bool() bool
	// Skip moves past the current value. On ObjectStart or ArrayStart the
	// reader ends positioned on the matching end token; on scalars it is a
	// no-op.
	Skip() error
}
