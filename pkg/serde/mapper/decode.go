package mapper

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/garden-serde/pkg/metrics"
	"github.com/lk2023060901/garden-serde/pkg/serde/codec"
	"github.com/lk2023060901/garden-serde/pkg/serde/token"
	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

// decodeContext carries the contextual type of one strategy call.
type decodeContext struct {
	m    *Mapper
	elem reflect.Type
}

func (c decodeContext) ElementType() reflect.Type {
	return c.elem
}

func (c decodeContext) DecodeValue(r token.Reader, t reflect.Type) (any, error) {
	v, err := c.m.decodeValue(r, t)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// Decode reads one value from r into target, which must be a non-nil
// pointer. The reader may be positioned before the value or on its first
// token.
func (m *Mapper) Decode(r token.Reader, target any) error {
	rv := reflect.ValueOf(target)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return merr.WrapErrParameterInvalid("non-nil pointer", fmt.Sprintf("%T", target), "decode target")
	}
	if err := advance(r); err != nil {
		return err
	}
	v, err := m.decodeValue(r, rv.Type().Elem())
	if err != nil {
		return err
	}
	rv.Elem().Set(v)
	return nil
}

// DecodeWithContext runs the strategy registered under tag with elem as the
// contextual type. It serves callers that hold no declared type to resolve
// the context from, such as a top-level range. A nil elem is passed through,
// so strategies that need one fail with ErrMissingTypeContext.
func (m *Mapper) DecodeWithContext(r token.Reader, tag codec.Tag, elem reflect.Type) (any, error) {
	s, ok := m.registry.ByTag(tag)
	if !ok {
		return nil, merr.WrapErrUnregisteredType(tag.String())
	}
	if err := advance(r); err != nil {
		return nil, err
	}
	v, err := s.Decode(decodeContext{m: m, elem: elem}, r)
	metrics.ObserveCodec(tag.String(), metrics.OpDecode, err)
	return v, err
}

// DecodeRange decodes a closed range whose bounds have type elem.
func (m *Mapper) DecodeRange(r token.Reader, elem reflect.Type) (codec.Range[any], error) {
	v, err := m.DecodeWithContext(r, codec.TagClosedRange, elem)
	if err != nil {
		return codec.Range[any]{}, err
	}
	rg, ok := v.(codec.Range[any])
	if !ok {
		return codec.Range[any]{}, merr.WrapErrStructuralMismatch("codec.Range[any]", fmt.Sprintf("%T", v))
	}
	return rg, nil
}

func advance(r token.Reader) error {
	if r.Current() != token.Invalid {
		return nil
	}
	_, err := r.Next()
	return err
}

// contextType resolves the contextual type a strategy gets for declared type
// t: the type argument for range instantiations, nil otherwise.
func contextType(t reflect.Type) reflect.Type {
	return codec.RangeElementType(t)
}

func (m *Mapper) decodeValue(r token.Reader, t reflect.Type) (reflect.Value, error) {
	kind := r.Current()
	if kind == token.End || kind == token.Invalid {
		return reflect.Value{}, merr.WrapErrStructuralMismatch("value", kind, t.String())
	}
	if s, ok := m.registry.Lookup(t); ok {
		if kind == token.Null {
			return reflect.Zero(t), nil
		}
		v, err := s.Decode(decodeContext{m: m, elem: contextType(t)}, r)
		metrics.ObserveCodec(s.Tag.String(), metrics.OpDecode, err)
		if err != nil {
			return reflect.Value{}, err
		}
		return adapt(t, v)
	}
	if kind == token.Null {
		return reflect.Zero(t), nil
	}
	if t == objectPtrType {
		tree, err := token.ReadValue(r)
		if err != nil {
			return reflect.Value{}, err
		}
		obj, ok := tree.(*token.Object)
		if !ok {
			return reflect.Value{}, merr.WrapErrStructuralMismatch(token.ObjectStart, kind)
		}
		return reflect.ValueOf(obj), nil
	}
	if t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface && reflect.PointerTo(t).Implements(textUnmarshalerType) {
		return decodeText(r, t)
	}

	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Pointer:
		inner, err := m.decodeValue(r, t.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		p := reflect.New(t.Elem())
		p.Elem().Set(inner)
		return p, nil
	case reflect.Interface:
		if t.NumMethod() != 0 {
			return reflect.Value{}, merr.WrapErrUnsupportedType(t.String(), "decode into non-empty interface")
		}
		tree, err := token.ReadValue(r)
		if err != nil {
			return reflect.Value{}, err
		}
		if tree != nil {
			out.Set(reflect.ValueOf(token.Plain(tree)))
		}
		return out, nil
	case reflect.Bool:
		if err := token.Expect(r, token.Bool, t.String()); err != nil {
			return reflect.Value{}, err
		}
		out.SetBool(r.Bool())
		return out, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := token.IntValue(r, t.String())
		if err != nil {
			return reflect.Value{}, err
		}
		if out.OverflowInt(i) {
			return reflect.Value{}, merr.WrapErrValueOutOfRange(t.String(), i)
		}
		out.SetInt(i)
		return out, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u, err := token.UintValue(r, t.String())
		if err != nil {
			return reflect.Value{}, err
		}
		if out.OverflowUint(u) {
			return reflect.Value{}, merr.WrapErrValueOutOfRange(t.String(), u)
		}
		out.SetUint(u)
		return out, nil
	case reflect.Float32, reflect.Float64:
		var f float64
		switch kind {
		case token.Float:
			f = r.Float()
		case token.Int:
			f = float64(r.Int())
		case token.Uint:
			f = float64(r.Uint())
		default:
			return reflect.Value{}, merr.WrapErrStructuralMismatch(token.Float, kind, t.String())
		}
		if out.OverflowFloat(f) {
			return reflect.Value{}, merr.WrapErrValueOutOfRange(t.String(), f)
		}
		out.SetFloat(f)
		return out, nil
	case reflect.String:
		if err := token.Expect(r, token.String, t.String()); err != nil {
			return reflect.Value{}, err
		}
		out.SetString(r.Text())
		return out, nil
	case reflect.Slice:
		return m.decodeSlice(r, t)
	case reflect.Array:
		return m.decodeArray(r, t, out)
	case reflect.Map:
		return m.decodeMap(r, t)
	case reflect.Struct:
		return m.decodeStruct(r, t, out)
	}
	return reflect.Value{}, merr.WrapErrUnsupportedType(t.String(), "decode")
}

// adapt fits a strategy result to the declared type.
func adapt(t reflect.Type, v any) (reflect.Value, error) {
	if codec.IsRangeType(t) {
		converted, err := codec.ConvertRange(t, v)
		if err != nil {
			return reflect.Value{}, err
		}
		v = converted
	}
	rv := reflect.ValueOf(v)
	switch {
	case !rv.IsValid():
		return reflect.Zero(t), nil
	case rv.Type().AssignableTo(t):
		out := reflect.New(t).Elem()
		out.Set(rv)
		return out, nil
	case rv.Type().ConvertibleTo(t):
		return rv.Convert(t), nil
	}
	return reflect.Value{}, merr.WrapErrParameterInvalid(t.String(), rv.Type().String(), "strategy result")
}

func decodeText(r token.Reader, t reflect.Type) (reflect.Value, error) {
	if err := token.Expect(r, token.String, t.String()); err != nil {
		return reflect.Value{}, err
	}
	p := reflect.New(t)
	if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(r.Text())); err != nil {
		return reflect.Value{}, merr.WrapErrMalformedEncoding(t.String(), err.Error())
	}
	return p.Elem(), nil
}

func (m *Mapper) decodeSlice(r token.Reader, t reflect.Type) (reflect.Value, error) {
	if err := token.Expect(r, token.ArrayStart, t.String()); err != nil {
		return reflect.Value{}, err
	}
	out := reflect.MakeSlice(t, 0, 0)
	for i := 0; ; i++ {
		kind, err := r.Next()
		if err != nil {
			return reflect.Value{}, err
		}
		if kind == token.ArrayEnd {
			return out, nil
		}
		item, err := m.decodeValue(r, t.Elem())
		if err != nil {
			return reflect.Value{}, errors.Wrapf(err, "index %d", i)
		}
		out = reflect.Append(out, item)
	}
}

func (m *Mapper) decodeArray(r token.Reader, t reflect.Type, out reflect.Value) (reflect.Value, error) {
	if err := token.Expect(r, token.ArrayStart, t.String()); err != nil {
		return reflect.Value{}, err
	}
	for i := 0; ; i++ {
		kind, err := r.Next()
		if err != nil {
			return reflect.Value{}, err
		}
		if kind == token.ArrayEnd {
			if i != t.Len() {
				return reflect.Value{}, merr.WrapErrStructuralMismatch(t.Len(), i, t.String()+" length")
			}
			return out, nil
		}
		if i >= t.Len() {
			return reflect.Value{}, merr.WrapErrStructuralMismatch(token.ArrayEnd, kind, t.String()+" length")
		}
		item, err := m.decodeValue(r, t.Elem())
		if err != nil {
			return reflect.Value{}, errors.Wrapf(err, "index %d", i)
		}
		out.Index(i).Set(item)
	}
}

func (m *Mapper) decodeMap(r token.Reader, t reflect.Type) (reflect.Value, error) {
	if err := token.Expect(r, token.ObjectStart, t.String()); err != nil {
		return reflect.Value{}, err
	}
	out := reflect.MakeMap(t)
	for {
		kind, err := r.Next()
		if err != nil {
			return reflect.Value{}, err
		}
		if kind == token.ObjectEnd {
			return out, nil
		}
		if kind != token.FieldName {
			return reflect.Value{}, merr.WrapErrStructuralMismatch(token.FieldName, kind, t.String())
		}
		name := r.Name()
		key, err := mapKey(t.Key(), name)
		if err != nil {
			return reflect.Value{}, err
		}
		if _, err := r.Next(); err != nil {
			return reflect.Value{}, err
		}
		v, err := m.decodeValue(r, t.Elem())
		if err != nil {
			return reflect.Value{}, errors.Wrapf(err, "key %q", name)
		}
		out.SetMapIndex(key, v)
	}
}

func mapKey(t reflect.Type, name string) (reflect.Value, error) {
	if reflect.PointerTo(t).Implements(textUnmarshalerType) {
		p := reflect.New(t)
		if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(name)); err != nil {
			return reflect.Value{}, merr.WrapErrMalformedEncoding(t.String(), err.Error())
		}
		return p.Elem(), nil
	}
	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.String:
		out.SetString(name)
		return out, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(name, 10, 64)
		if err != nil || out.OverflowInt(i) {
			return reflect.Value{}, merr.WrapErrMalformedEncoding(t.String(), "invalid map key "+strconv.Quote(name))
		}
		out.SetInt(i)
		return out, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u, err := strconv.ParseUint(name, 10, 64)
		if err != nil || out.OverflowUint(u) {
			return reflect.Value{}, merr.WrapErrMalformedEncoding(t.String(), "invalid map key "+strconv.Quote(name))
		}
		out.SetUint(u)
		return out, nil
	}
	return reflect.Value{}, merr.WrapErrUnsupportedType(t.String(), "map key")
}

func (m *Mapper) decodeStruct(r token.Reader, t reflect.Type, out reflect.Value) (reflect.Value, error) {
	if err := token.Expect(r, token.ObjectStart, t.String()); err != nil {
		return reflect.Value{}, err
	}
	info := cachedStructInfo(t)
	for {
		kind, err := r.Next()
		if err != nil {
			return reflect.Value{}, err
		}
		if kind == token.ObjectEnd {
			return out, nil
		}
		if kind != token.FieldName {
			return reflect.Value{}, merr.WrapErrStructuralMismatch(token.FieldName, kind, t.String())
		}
		name := r.Name()
		if _, err := r.Next(); err != nil {
			return reflect.Value{}, err
		}
		idx, ok := info.byName[name]
		if !ok {
			if m.failOnUnknown {
				return reflect.Value{}, merr.WrapErrUnknownField(name, t.String())
			}
			if err := r.Skip(); err != nil {
				return reflect.Value{}, err
			}
			continue
		}
		f := info.fields[idx]
		fv, err := fieldForWrite(out, f.index)
		if err != nil {
			return reflect.Value{}, errors.Wrapf(err, "field %s", f.name)
		}
		v, err := m.decodeValue(r, f.typ)
		if err != nil {
			return reflect.Value{}, errors.Wrapf(err, "field %s", f.name)
		}
		fv.Set(v)
	}
}
