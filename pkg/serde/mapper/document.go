package mapper

import (
	"fmt"
	"io"
	"reflect"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/lk2023060901/garden-serde/pkg/log"
	"github.com/lk2023060901/garden-serde/pkg/metrics"
	"github.com/lk2023060901/garden-serde/pkg/serde/format"
	"github.com/lk2023060901/garden-serde/pkg/serde/token"
	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

// ToTree encodes v into an in-memory tree of *token.Object, []any and
// scalars.
func (m *Mapper) ToTree(v any) (any, error) {
	w := token.NewTreeWriter()
	if err := m.Encode(w, v); err != nil {
		return nil, err
	}
	return w.Result()
}

// ToMap encodes v, which must encode as an object, into an ordered map.
func (m *Mapper) ToMap(v any) (*token.Object, error) {
	tree, err := m.ToTree(v)
	if err != nil {
		return nil, err
	}
	obj, ok := tree.(*token.Object)
	if !ok {
		return nil, merr.WrapErrStructuralMismatch(token.ObjectStart, fmt.Sprintf("%T", tree), "value does not encode as an object")
	}
	return obj, nil
}

// FromTree decodes a tree into target. Besides trees built by ToTree it
// accepts plain maps and slices such as those produced by other decoders.
func (m *Mapper) FromTree(tree any, target any) error {
	return m.Decode(token.NewTreeReader(tree), target)
}

// ToObject decodes an ordered or plain map into target.
func (m *Mapper) ToObject(obj any, target any) error {
	switch obj.(type) {
	case *token.Object, map[string]any, map[any]any:
		return m.FromTree(obj, target)
	}
	return merr.WrapErrParameterInvalid("object", fmt.Sprintf("%T", obj), "convert to object")
}

func (m *Mapper) format(contentType string) (format.Format, error) {
	if contentType == "" {
		contentType = m.defaultContentType
	}
	f, err := m.formats.Get(contentType)
	if err != nil {
		return nil, err
	}
	m.Logger().Debug("format resolved", log.FieldContentType(contentType), zap.String("format", f.ContentType()))
	return f, nil
}

// ContentType resolves an alias or the empty string to the canonical content
// type. Unsupported names are returned unchanged.
func (m *Mapper) ContentType(contentType string) string {
	if contentType == "" {
		contentType = m.defaultContentType
	}
	f, err := m.formats.Get(contentType)
	if err != nil {
		return contentType
	}
	return f.ContentType()
}

// Serialize encodes v as a document of the given content type. An empty
// content type selects the default one.
func (m *Mapper) Serialize(v any, contentType string) ([]byte, error) {
	f, err := m.format(contentType)
	if err != nil {
		return nil, err
	}
	tree, err := m.ToTree(v)
	if err != nil {
		return nil, err
	}
	data, err := f.Marshal(tree)
	if err != nil {
		return nil, err
	}
	metrics.ObserveDocument(f.ContentType(), metrics.OpSerialize, len(data))
	return data, nil
}

// SerializeTo writes v to out. Formats that can stream are written token by
// token, the rest are marshaled first.
func (m *Mapper) SerializeTo(out io.Writer, v any, contentType string) error {
	f, err := m.format(contentType)
	if err != nil {
		return err
	}
	streamer, ok := f.(format.Streamer)
	if !ok {
		data, err := m.Serialize(v, f.ContentType())
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return errors.Wrap(err, "write document")
	}
	w := streamer.NewStreamWriter(out)
	if err := m.Encode(w, v); err != nil {
		return err
	}
	return w.Flush()
}

// ParseTree parses a document into a tree without mapping it onto a type.
func (m *Mapper) ParseTree(data []byte, contentType string) (any, error) {
	f, err := m.format(contentType)
	if err != nil {
		return nil, err
	}
	metrics.ObserveDocument(f.ContentType(), metrics.OpParse, len(data))
	tree, err := f.Unmarshal(data)
	if err != nil {
		m.Logger().RatedWarn(1, "parse document failed", log.FieldContentType(f.ContentType()), zap.Error(err))
		return nil, err
	}
	return tree, nil
}

// Parse decodes a document into target, a non-nil pointer.
func (m *Mapper) Parse(data []byte, target any, contentType string) error {
	tree, err := m.ParseTree(data, contentType)
	if err != nil {
		return err
	}
	if err := m.FromTree(tree, target); err != nil {
		m.Logger().RatedWarn(1, "decode document failed",
			log.FieldContentType(contentType),
			zap.String("target", fmt.Sprintf("%T", target)),
			zap.Error(err))
		return err
	}
	return nil
}

// ParseList decodes a document holding an array into target, a pointer to a
// slice.
func (m *Mapper) ParseList(data []byte, target any, contentType string) error {
	rt := reflect.TypeOf(target)
	if rt == nil || rt.Kind() != reflect.Pointer || rt.Elem().Kind() != reflect.Slice {
		return merr.WrapErrParameterInvalid("pointer to slice", fmt.Sprintf("%T", target), "parse list")
	}
	return m.Parse(data, target, contentType)
}

// ParseReader reads a whole document from in and decodes it into target.
func (m *Mapper) ParseReader(in io.Reader, target any, contentType string) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return errors.Wrap(err, "read document")
	}
	return m.Parse(data, target, contentType)
}

// Convert re-encodes a document from one content type to another through
// the tree, without a Go type in between.
func (m *Mapper) Convert(data []byte, from, to string) ([]byte, error) {
	tree, err := m.ParseTree(data, from)
	if err != nil {
		return nil, err
	}
	f, err := m.format(to)
	if err != nil {
		return nil, err
	}
	out, err := f.Marshal(tree)
	if err != nil {
		return nil, err
	}
	metrics.ObserveDocument(f.ContentType(), metrics.OpSerialize, len(out))
	return out, nil
}
