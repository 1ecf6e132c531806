package token

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

type readFrame struct {
	object  bool
	keys    []string
	values  []any
	pos     int
	pending bool
}

// TreeReader walks a tree as a token stream.
//
// Besides the nodes TreeWriter produces it accepts what generic decoders
// return: map[string]any, map[any]any, any integer or float width,
// json.Number and []byte (surfaced as a Base64 String token). Plain maps carry
// no field order, so their keys are visited in canonical order: shorter keys
// first, then bytewise. That is the order canonical CBOR emits.
type TreeReader struct {
	root    any
	stack   []*readFrame
	started bool
	cur     Kind
	name    string
	scalar  any
}

var _ Reader = (*TreeReader)(nil)

func NewTreeReader(tree any) *TreeReader {
	return &TreeReader{root: tree, cur: Invalid}
}

func (r *TreeReader) Current() Kind { return r.cur }

func (r *TreeReader) Name() string { return r.name }

func (r *TreeReader) Next() (Kind, error) {
	if !r.started {
		r.started = true
		return r.emit(r.root)
	}
	if len(r.stack) == 0 {
		r.cur = End
		return End, nil
	}
	top := r.stack[len(r.stack)-1]
	if top.object {
		if top.pending {
			top.pending = false
			return r.emit(top.values[top.pos-1])
		}
		if top.pos < len(top.keys) {
			r.name = top.keys[top.pos]
			top.pos++
			top.pending = true
			r.cur = FieldName
			return FieldName, nil
		}
		r.stack = r.stack[:len(r.stack)-1]
		r.cur = ObjectEnd
		return ObjectEnd, nil
	}
	if top.pos < len(top.values) {
		v := top.values[top.pos]
		top.pos++
		return r.emit(v)
	}
	r.stack = r.stack[:len(r.stack)-1]
	r.cur = ArrayEnd
	return ArrayEnd, nil
}

func (r *TreeReader) Skip() error {
	switch r.cur {
	case ObjectStart:
		r.stack = r.stack[:len(r.stack)-1]
		r.cur = ObjectEnd
	case ArrayStart:
		r.stack = r.stack[:len(r.stack)-1]
		r.cur = ArrayEnd
	case FieldName:
		// skip the field together with its value
		if _, err := r.Next(); err != nil {
			return err
		}
		return r.Skip()
	}
	return nil
}

func (r *TreeReader) Text() string {
	if s, ok := r.scalar.(string); ok {
		return s
	}
	return ""
}

func (r *TreeReader) Int() int64 {
	switch v := r.scalar.(type) {
	case int64:
		return v
	case uint64:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

func (r *TreeReader) Uint() uint64 {
	switch v := r.scalar.(type) {
	case int64:
		return uint64(v)
	case uint64:
		return v
	case float64:
		return uint64(v)
	}
	return 0
}

func (r *TreeReader) Float() float64 {
	switch v := r.scalar.(type) {
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case float64:
		return v
	}
	return 0
}

func (r *TreeReader) Bool() bool {
	b, _ := r.scalar.(bool)
	return b
}

func (r *TreeReader) setScalar(kind Kind, v any) (Kind, error) {
	r.cur = kind
	r.scalar = v
	return kind, nil
}

func (r *TreeReader) push(f *readFrame, kind Kind) (Kind, error) {
	r.stack = append(r.stack, f)
	r.cur = kind
	r.scalar = nil
	return kind, nil
}

func (r *TreeReader) emit(node any) (Kind, error) {
	switch v := node.(type) {
	case nil:
		return r.setScalar(Null, nil)
	case *Object:
		if v == nil {
			return Invalid, merr.WrapErrParameterInvalid("object", "nil *token.Object", "read tree")
		}
		f := &readFrame{object: true, keys: v.keys, values: make([]any, len(v.keys))}
		for i, k := range v.keys {
			f.values[i] = v.values[k]
		}
		return r.push(f, ObjectStart)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sortCanonical(keys)
		f := &readFrame{object: true, keys: keys, values: make([]any, len(keys))}
		for i, k := range keys {
			f.values[i] = v[k]
		}
		return r.push(f, ObjectStart)
	case map[any]any:
		byName := make(map[string]any, len(v))
		for k, val := range v {
			byName[fmt.Sprint(k)] = val
		}
		return r.emit(byName)
	case []any:
		return r.push(&readFrame{values: v}, ArrayStart)
	case []byte:
		return r.setScalar(String, base64.StdEncoding.EncodeToString(v))
	case string:
		return r.setScalar(String, v)
	case bool:
		return r.setScalar(Bool, v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return r.setScalar(Int, i)
		}
		f, err := v.Float64()
		if err != nil {
			return Invalid, merr.WrapErrMalformedEncoding("number", err.Error())
		}
		return r.setScalar(Float, f)
	}

	rv := reflect.ValueOf(node)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return r.setScalar(Int, rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return r.setScalar(Uint, rv.Uint())
	case reflect.Float32, reflect.Float64:
		return r.setScalar(Float, rv.Float())
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return r.push(&readFrame{values: items}, ArrayStart)
	}
	return Invalid, merr.WrapErrUnsupportedType(fmt.Sprintf("%T", node), "tree node")
}

func sortCanonical(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})
}
