package token

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"
	"reflect"

	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

// Expect checks that the reader is positioned on a token of kind want.
func Expect(r Reader, want Kind, what string) error {
	if got := r.Current(); got != want {
		return merr.WrapErrStructuralMismatch(want, got, what)
	}
	return nil
}

// ExpectNext advances the reader and checks the kind of the new token.
func ExpectNext(r Reader, want Kind, what string) error {
	got, err := r.Next()
	if err != nil {
		return err
	}
	if got != want {
		return merr.WrapErrStructuralMismatch(want, got, what)
	}
	return nil
}

// ExpectField advances to the next field name and checks that it is name.
func ExpectField(r Reader, name string, what string) error {
	if err := ExpectNext(r, FieldName, what); err != nil {
		return err
	}
	if got := r.Name(); got != name {
		return merr.WrapErrStructuralMismatch(name, got, what)
	}
	return nil
}

// ReadInt advances to the next token, which must be an integral number.
// Integral floats are accepted since some formats only carry doubles.
func ReadInt(r Reader, what string) (int64, error) {
	if _, err := r.Next(); err != nil {
		return 0, err
	}
	return IntValue(r, what)
}

// IntValue returns the current token as an integer without advancing.
func IntValue(r Reader, what string) (int64, error) {
	switch kind := r.Current(); kind {
	case Int:
		return r.Int(), nil
	case Uint:
		u := r.Uint()
		if u > math.MaxInt64 {
			return 0, merr.WrapErrStructuralMismatch(Int, u, what)
		}
		return int64(u), nil
	case Float:
		f := r.Float()
		if f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
			return 0, merr.WrapErrStructuralMismatch(Int, f, what)
		}
		return int64(f), nil
	default:
		return 0, merr.WrapErrStructuralMismatch(Int, kind, what)
	}
}

// UintValue returns the current token as a non-negative integer without
// advancing.
func UintValue(r Reader, what string) (uint64, error) {
	switch kind := r.Current(); kind {
	case Uint:
		return r.Uint(), nil
	case Int:
		i := r.Int()
		if i < 0 {
			return 0, merr.WrapErrStructuralMismatch(Uint, i, what)
		}
		return uint64(i), nil
	case Float:
		f := r.Float()
		if f != math.Trunc(f) || f < 0 || f >= math.MaxUint64 {
			return 0, merr.WrapErrStructuralMismatch(Uint, f, what)
		}
		return uint64(f), nil
	default:
		return 0, merr.WrapErrStructuralMismatch(Uint, kind, what)
	}
}

// ReadValue materializes the value the reader is positioned on as a tree and
// leaves the reader on its last token.
func ReadValue(r Reader) (any, error) {
	switch kind := r.Current(); kind {
	case Null:
		return nil, nil
	case String:
		return r.Text(), nil
	case Int:
		return r.Int(), nil
	case Uint:
		return r.Uint(), nil
	case Float:
		return r.Float(), nil
	case Bool:
		return r.Bool(), nil
	case ArrayStart:
		items := make([]any, 0)
		for {
			next, err := r.Next()
			if err != nil {
				return nil, err
			}
			if next == ArrayEnd {
				return items, nil
			}
			item, err := ReadValue(r)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	case ObjectStart:
		obj := NewObject()
		for {
			next, err := r.Next()
			if err != nil {
				return nil, err
			}
			if next == ObjectEnd {
				return obj, nil
			}
			if next != FieldName {
				return nil, merr.WrapErrStructuralMismatch(FieldName, next, "object entry")
			}
			name := r.Name()
			if _, err := r.Next(); err != nil {
				return nil, err
			}
			v, err := ReadValue(r)
			if err != nil {
				return nil, err
			}
			obj.Set(name, v)
		}
	default:
		return nil, merr.WrapErrStructuralMismatch("value", kind)
	}
}

// WriteValue writes a tree to w. It accepts the same node types as
// TreeReader.
func WriteValue(w Writer, tree any) error {
	switch v := tree.(type) {
	case nil:
		return w.WriteNull()
	case *Object:
		if v == nil {
			return w.WriteNull()
		}
		if err := w.WriteObjectStart(); err != nil {
			return err
		}
		for _, k := range v.keys {
			if err := w.WriteFieldName(k); err != nil {
				return err
			}
			if err := WriteValue(w, v.values[k]); err != nil {
				return err
			}
		}
		return w.WriteObjectEnd()
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sortCanonical(keys)
		if err := w.WriteObjectStart(); err != nil {
			return err
		}
		for _, k := range keys {
			if err := w.WriteFieldName(k); err != nil {
				return err
			}
			if err := WriteValue(w, v[k]); err != nil {
				return err
			}
		}
		return w.WriteObjectEnd()
	case map[any]any:
		byName := make(map[string]any, len(v))
		for k, val := range v {
			byName[fmt.Sprint(k)] = val
		}
		return WriteValue(w, byName)
	case []any:
		if err := w.WriteArrayStart(); err != nil {
			return err
		}
		for _, item := range v {
			if err := WriteValue(w, item); err != nil {
				return err
			}
		}
		return w.WriteArrayEnd()
	case []byte:
		return w.WriteString(base64.StdEncoding.EncodeToString(v))
	case string:
		return w.WriteString(v)
	case bool:
		return w.WriteBool(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return w.WriteInt(i)
		}
		f, err := v.Float64()
		if err != nil {
			return merr.WrapErrMalformedEncoding("number", err.Error())
		}
		return w.WriteFloat(f)
	}

	rv := reflect.ValueOf(tree)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return w.WriteInt(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return w.WriteUint(rv.Uint())
	case reflect.Float32, reflect.Float64:
		return w.WriteFloat(rv.Float())
	case reflect.Slice, reflect.Array:
		if err := w.WriteArrayStart(); err != nil {
			return err
		}
		for i := 0; i < rv.Len(); i++ {
			if err := WriteValue(w, rv.Index(i).Interface()); err != nil {
				return err
			}
		}
		return w.WriteArrayEnd()
	}
	return merr.WrapErrUnsupportedType(fmt.Sprintf("%T", tree), "tree node")
}

// Copy streams the value the reader is positioned on into w.
func Copy(w Writer, r Reader) error {
	v, err := ReadValue(r)
	if err != nil {
		return err
	}
	return WriteValue(w, v)
}

// Normalize rebuilds tree from the node types Writer can produce: ordered
// objects, []any and int64/uint64/float64/string/bool/nil scalars. Plain maps
// become objects in canonical key order.
func Normalize(tree any) (any, error) {
	w := NewTreeWriter()
	if err := WriteValue(w, tree); err != nil {
		return nil, err
	}
	return w.Result()
}
