package mapper

import (
	"encoding"
	"reflect"
	"sort"
	"strconv"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/garden-serde/pkg/metrics"
	"github.com/lk2023060901/garden-serde/pkg/serde/token"
	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

var (
	objectPtrType       = reflect.TypeOf((*token.Object)(nil))
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// encodeContext lets a strategy encode nested values, such as range bounds,
// with their own serializers.
type encodeContext struct {
	m *Mapper
}

func (c encodeContext) EncodeValue(w token.Writer, v any) error {
	return c.m.encodeValue(w, reflect.ValueOf(v))
}

// Encode writes v to w.
func (m *Mapper) Encode(w token.Writer, v any) error {
	return m.encodeValue(w, reflect.ValueOf(v))
}

func (m *Mapper) encodeValue(w token.Writer, rv reflect.Value) error {
	if !rv.IsValid() {
		return w.WriteNull()
	}
	t := rv.Type()
	if s, ok := m.registry.Lookup(t); ok {
		err := s.Encode(encodeContext{m: m}, w, rv.Interface())
		metrics.ObserveCodec(s.Tag.String(), metrics.OpEncode, err)
		return err
	}
	if t == objectPtrType {
		if rv.IsNil() {
			return w.WriteNull()
		}
		return token.WriteValue(w, rv.Interface())
	}
	if tm, ok := textMarshaler(rv); ok {
		text, err := tm.MarshalText()
		if err != nil {
			return errors.Wrapf(err, "marshal %s as text", t)
		}
		return w.WriteString(string(text))
	}

	switch t.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return w.WriteNull()
		}
		return m.encodeValue(w, rv.Elem())
	case reflect.Bool:
		return w.WriteBool(rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return w.WriteInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return w.WriteUint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return w.WriteFloat(rv.Float())
	case reflect.String:
		return w.WriteString(rv.String())
	case reflect.Slice:
		if rv.IsNil() {
			return w.WriteNull()
		}
		return m.encodeArray(w, rv)
	case reflect.Array:
		return m.encodeArray(w, rv)
	case reflect.Map:
		if rv.IsNil() {
			return w.WriteNull()
		}
		return m.encodeMap(w, rv)
	case reflect.Struct:
		return m.encodeStruct(w, rv)
	}
	return merr.WrapErrUnsupportedType(t.String(), "encode")
}

// textMarshaler mirrors the decode side: pointers are dereferenced first so
// registered strategies for the element type take precedence.
func textMarshaler(rv reflect.Value) (encoding.TextMarshaler, bool) {
	t := rv.Type()
	if t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface || !rv.CanInterface() {
		return nil, false
	}
	if t.Implements(textMarshalerType) {
		return rv.Interface().(encoding.TextMarshaler), true
	}
	if rv.CanAddr() && reflect.PointerTo(t).Implements(textMarshalerType) {
		return rv.Addr().Interface().(encoding.TextMarshaler), true
	}
	return nil, false
}

func (m *Mapper) encodeArray(w token.Writer, rv reflect.Value) error {
	if err := w.WriteArrayStart(); err != nil {
		return err
	}
	for i := 0; i < rv.Len(); i++ {
		if err := m.encodeValue(w, rv.Index(i)); err != nil {
			return errors.Wrapf(err, "index %d", i)
		}
	}
	return w.WriteArrayEnd()
}

// encodeMap writes map entries sorted by key so output is deterministic.
func (m *Mapper) encodeMap(w token.Writer, rv reflect.Value) error {
	type entry struct {
		name  string
		value reflect.Value
	}
	entries := make([]entry, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		name, err := mapKeyName(iter.Key())
		if err != nil {
			return err
		}
		entries = append(entries, entry{name: name, value: iter.Value()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	if err := w.WriteObjectStart(); err != nil {
		return err
	}
	for _, e := range entries {
		if err := w.WriteFieldName(e.name); err != nil {
			return err
		}
		if err := m.encodeValue(w, e.value); err != nil {
			return errors.Wrapf(err, "key %q", e.name)
		}
	}
	return w.WriteObjectEnd()
}

func mapKeyName(k reflect.Value) (string, error) {
	if k.Kind() == reflect.String {
		return k.String(), nil
	}
	if tm, ok := k.Interface().(encoding.TextMarshaler); ok {
		text, err := tm.MarshalText()
		if err != nil {
			return "", errors.Wrapf(err, "marshal map key %s", k.Type())
		}
		return string(text), nil
	}
	switch k.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(k.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(k.Uint(), 10), nil
	}
	return "", merr.WrapErrUnsupportedType(k.Type().String(), "map key")
}

func (m *Mapper) encodeStruct(w token.Writer, rv reflect.Value) error {
	info := cachedStructInfo(rv.Type())
	if err := w.WriteObjectStart(); err != nil {
		return err
	}
	for _, f := range info.fields {
		fv, err := rv.FieldByIndexErr(f.index)
		if err != nil {
			// promoted through a nil embedded pointer
			continue
		}
		if (m.inclusion == InclusionNonEmpty || f.omitEmpty) && isEmptyValue(fv) {
			continue
		}
		if err := w.WriteFieldName(f.name); err != nil {
			return err
		}
		if err := m.encodeValue(w, fv); err != nil {
			return errors.Wrapf(err, "field %s", f.name)
		}
	}
	return w.WriteObjectEnd()
}
