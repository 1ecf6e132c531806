package token

// Object is an insertion-ordered string keyed map. It is the tree node for
// objects so that field order survives a round trip through order-preserving
// formats.
type Object struct {
	keys   []string
	values map[string]any
}

func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// ObjectOf builds an Object from alternating key/value pairs. It panics on an
// odd argument count or a non-string key; it is meant for literals.
func ObjectOf(kv ...any) *Object {
	if len(kv)%2 != 0 {
		panic("token: ObjectOf needs key/value pairs")
	}
	o := NewObject()
	for i := 0; i < len(kv); i += 2 {
		o.Set(kv[i].(string), kv[i+1])
	}
	return o
}

// Set stores v under key. A new key is appended; an existing key keeps its
// position.
func (o *Object) Set(key string, v any) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

func (o *Object) Get(key string) (any, bool) {
	v, ok := o.values[key]
	return v, ok
}

func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Range visits entries in insertion order until f returns false.
func (o *Object) Range(f func(key string, v any) bool) {
	for _, k := range o.keys {
		if !f(k, o.values[k]) {
			return
		}
	}
}

// ToMap converts the object, and every nested Object, into plain maps.
func (o *Object) ToMap() map[string]any {
	out := make(map[string]any, len(o.keys))
	for _, k := range o.keys {
		out[k] = Plain(o.values[k])
	}
	return out
}

// Plain lowers a tree into plain Go values: every *Object becomes a
// map[string]any. Formats without field order use it before marshaling.
func Plain(tree any) any {
	switch v := tree.(type) {
	case *Object:
		return v.ToMap()
	case []any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = Plain(v[i])
		}
		return out
	default:
		return v
	}
}
