package codec

import (
	"cmp"
	"fmt"
	"reflect"

	"github.com/lk2023060901/garden-serde/pkg/serde/token"
	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

const (
	fieldStart        = "start"
	fieldEndInclusive = "endInclusive"
)

// Range is a closed interval [Start, EndInclusive]. Start <= EndInclusive is
// assumed, never enforced.
type Range[T any] struct {
	Start        T
	EndInclusive T
}

func NewRange[T any](start, end T) Range[T] {
	return Range[T]{Start: start, EndInclusive: end}
}

// Ranged is implemented by every Range instantiation.
type Ranged interface {
	// ElementType returns the type argument of the instantiation.
	ElementType() reflect.Type
	Bounds() (start, end any)
	// WithBounds returns a range of the receiver's instantiation holding
	// start and end.
	WithBounds(start, end any) (Ranged, error)
}

var rangedType = TypeOf[Ranged]()

func (rg Range[T]) ElementType() reflect.Type {
	return TypeOf[T]()
}

// IsZero reports whether both bounds hold the zero value of T.
func (rg Range[T]) IsZero() bool {
	return reflect.ValueOf(rg).IsZero()
}

func (rg Range[T]) Bounds() (any, any) {
	return rg.Start, rg.EndInclusive
}

func (rg Range[T]) WithBounds(start, end any) (Ranged, error) {
	s, ok := elementAs[T](start)
	if !ok {
		return nil, merr.WrapErrParameterInvalid(TypeOf[T]().String(), fmt.Sprintf("%T", start), "range start")
	}
	e, ok := elementAs[T](end)
	if !ok {
		return nil, merr.WrapErrParameterInvalid(TypeOf[T]().String(), fmt.Sprintf("%T", end), "range end")
	}
	return Range[T]{Start: s, EndInclusive: e}, nil
}

func elementAs[T any](v any) (T, bool) {
	var zero T
	if v == nil {
		return zero, true
	}
	t, ok := v.(T)
	return t, ok
}

// Contains reports whether v lies within the closed range.
func Contains[T cmp.Ordered](rg Range[T], v T) bool {
	return cmp.Compare(rg.Start, v) <= 0 && cmp.Compare(v, rg.EndInclusive) <= 0
}

// IsRangeType reports whether t is a Range instantiation.
func IsRangeType(t reflect.Type) bool {
	return t != nil && t.Kind() == reflect.Struct && t.Implements(rangedType)
}

// RangeElementType returns the type argument of a Range instantiation, or
// nil if t is not one. Host engines use it to resolve the contextual type of
// a declared field or parameter.
func RangeElementType(t reflect.Type) reflect.Type {
	if !IsRangeType(t) {
		return nil
	}
	return reflect.Zero(t).Interface().(Ranged).ElementType()
}

// ConvertRange turns a decoded Range[any] into the instantiation target.
func ConvertRange(target reflect.Type, decoded any) (any, error) {
	if !IsRangeType(target) {
		return nil, merr.WrapErrParameterInvalid("range type", target.String())
	}
	src, ok := decoded.(Ranged)
	if !ok {
		return nil, merr.WrapErrParameterInvalid("range value", fmt.Sprintf("%T", decoded))
	}
	start, end := src.Bounds()
	return reflect.Zero(target).Interface().(Ranged).WithBounds(start, end)
}

// RangeStrategy encodes a range as {"start": <enc>, "endInclusive": <enc>},
// each bound written with its own serializer. Decoding needs the element
// type from DecodeContext.ElementType and yields a Range[any] whose bounds
// hold values of that type.
func RangeStrategy() Strategy {
	return Strategy{
		Tag:    TagClosedRange,
		Encode: encodeRange,
		Decode: decodeRange,
	}
}

func encodeRange(ctx EncodeContext, w token.Writer, v any) error {
	rg, ok := v.(Ranged)
	if !ok {
		return merr.WrapErrParameterInvalid("codec.Range", fmt.Sprintf("%T", v))
	}
	start, end := rg.Bounds()
	if err := w.WriteObjectStart(); err != nil {
		return err
	}
	if err := w.WriteFieldName(fieldStart); err != nil {
		return err
	}
	if err := ctx.EncodeValue(w, start); err != nil {
		return err
	}
	if err := w.WriteFieldName(fieldEndInclusive); err != nil {
		return err
	}
	if err := ctx.EncodeValue(w, end); err != nil {
		return err
	}
	return w.WriteObjectEnd()
}

func decodeRange(ctx DecodeContext, r token.Reader) (any, error) {
	elem := ctx.ElementType()
	if elem == nil {
		return nil, merr.WrapErrMissingTypeContext(string(TagClosedRange), "element type not supplied")
	}
	if err := token.Expect(r, token.ObjectStart, "closed range should be an object"); err != nil {
		return nil, err
	}
	if err := token.ExpectField(r, fieldStart, "ranges should start with 'start' field"); err != nil {
		return nil, err
	}
	if _, err := r.Next(); err != nil {
		return nil, err
	}
	start, err := ctx.DecodeValue(r, elem)
	if err != nil {
		return nil, err
	}
	if err := token.ExpectField(r, fieldEndInclusive, "ranges should end with 'endInclusive' field"); err != nil {
		return nil, err
	}
	if _, err := r.Next(); err != nil {
		return nil, err
	}
	end, err := ctx.DecodeValue(r, elem)
	if err != nil {
		return nil, err
	}
	if err := token.ExpectNext(r, token.ObjectEnd, "closed range should have exactly two fields"); err != nil {
		return nil, err
	}
	return Range[any]{Start: start, EndInclusive: end}, nil
}
