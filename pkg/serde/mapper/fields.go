package mapper

import (
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

type field struct {
	name      string
	index     []int
	typ       reflect.Type
	omitEmpty bool
}

type structInfo struct {
	fields []field
	byName map[string]int
}

var structCache sync.Map // reflect.Type -> *structInfo

func cachedStructInfo(t reflect.Type) *structInfo {
	if v, ok := structCache.Load(t); ok {
		return v.(*structInfo)
	}
	v, _ := structCache.LoadOrStore(t, buildStructInfo(t))
	return v.(*structInfo)
}

// buildStructInfo lists the serialized fields of t. Names come from the json
// tag, otherwise the Go name in lower camel case. Untagged embedded structs are
// flattened. When two fields share a name the first one wins.
func buildStructInfo(t reflect.Type) *structInfo {
	info := &structInfo{byName: make(map[string]int)}
	for _, sf := range reflect.VisibleFields(t) {
		tag, hasTag := sf.Tag.Lookup("json")
		if sf.Anonymous && !hasTag {
			ft := sf.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		if name == "-" && opts == "" {
			continue
		}
		if name == "" {
			name = lowerCamel(sf.Name)
		}
		if _, dup := info.byName[name]; dup {
			continue
		}
		info.byName[name] = len(info.fields)
		info.fields = append(info.fields, field{
			name:      name,
			index:     sf.Index,
			typ:       sf.Type,
			omitEmpty: hasOption(opts, "omitempty"),
		})
	}
	return info
}

func hasOption(opts, want string) bool {
	for opts != "" {
		var opt string
		opt, opts, _ = strings.Cut(opts, ",")
		if opt == want {
			return true
		}
	}
	return false
}

// lowerCamel lowers the leading capital run of a Go identifier, keeping the
// last capital when it starts the next word: Name→name, ID→id, URLPath→urlPath.
func lowerCamel(s string) string {
	runes := []rune(s)
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	switch {
	case n == 0:
		return s
	case n > 1 && n < len(runes) && unicode.IsLower(runes[n]):
		n--
	}
	for i := 0; i < n; i++ {
		runes[i] = unicode.ToLower(runes[i])
	}
	return string(runes)
}

// fieldForWrite returns the field at index, allocating nil embedded pointers
// on the way.
func fieldForWrite(v reflect.Value, index []int) (reflect.Value, error) {
	for i, x := range index {
		if i > 0 && v.Kind() == reflect.Pointer {
			if v.IsNil() {
				if !v.CanSet() {
					return reflect.Value{}, merr.WrapErrUnsupportedType(v.Type().String(), "unexported embedded pointer")
				}
				v.Set(reflect.New(v.Type().Elem()))
			}
			v = v.Elem()
		}
		v = v.Field(x)
	}
	return v, nil
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Struct:
		if v.Type().Implements(isZeroerType) && v.CanInterface() {
			return v.Interface().(isZeroer).IsZero()
		}
		return false
	default:
		return false
	}
}

// isZeroer is implemented by values such as dates and ranges that know
// their own zero state.
type isZeroer interface {
	IsZero() bool
}

var isZeroerType = reflect.TypeOf((*isZeroer)(nil)).Elem()
