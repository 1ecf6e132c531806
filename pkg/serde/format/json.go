package format

import (
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	jsoniter "github.com/json-iterator/go"

	"github.com/lk2023060901/garden-serde/pkg/serde/token"
	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

type jsonFormat struct {
	api jsoniter.API
}

var _ Streamer = (*jsonFormat)(nil)

// JSON returns the compact JSON format. Objects keep the field order of the
// tree on output and the document order on input.
func JSON() Format {
	return JSONIndent(0)
}

// JSONIndent returns a JSON format indenting nested values by step spaces.
func JSONIndent(step int) Format {
	return &jsonFormat{api: jsoniter.Config{
		EscapeHTML:    false,
		IndentionStep: step,
	}.Froze()}
}

func (f *jsonFormat) ContentType() string { return ContentTypeJSON }

func (f *jsonFormat) Aliases() []string { return []string{"json", "text/json"} }

func (f *jsonFormat) Marshal(tree any) ([]byte, error) {
	stream := f.api.BorrowStream(nil)
	defer f.api.ReturnStream(stream)

	w := &jsonStreamWriter{stream: stream}
	if err := token.WriteValue(w, tree); err != nil {
		return nil, err
	}
	if stream.Error != nil {
		return nil, merr.WrapErrFormatFailed(ContentTypeJSON, stream.Error)
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

func (f *jsonFormat) NewStreamWriter(out io.Writer) StreamWriter {
	return &jsonStreamWriter{stream: jsoniter.NewStream(f.api, out, 512)}
}

func (f *jsonFormat) Unmarshal(data []byte) (any, error) {
	iter := f.api.BorrowIterator(data)
	defer f.api.ReturnIterator(iter)

	if iter.WhatIsNext() == jsoniter.InvalidValue {
		return nil, merr.WrapErrFormatFailed(ContentTypeJSON, errors.New("empty or invalid document"))
	}
	tree, ok := readJSONValue(iter)
	if !ok {
		if iter.Error != nil && !errors.Is(iter.Error, io.EOF) {
			return nil, merr.WrapErrFormatFailed(ContentTypeJSON, iter.Error)
		}
		return nil, merr.WrapErrFormatFailed(ContentTypeJSON, io.ErrUnexpectedEOF)
	}
	if iter.Error == nil {
		// Only the end of input leaves io.EOF behind.
		iter.WhatIsNext()
		if iter.Error == nil {
			iter.ReportError("Unmarshal", "unexpected content after top-level value")
		}
	}
	if iter.Error != nil && !errors.Is(iter.Error, io.EOF) {
		return nil, merr.WrapErrFormatFailed(ContentTypeJSON, iter.Error)
	}
	return tree, nil
}

// readJSONValue reads one value. ok is false when the value is malformed or
// cut off. jsoniter keeps the first error, and io.EOF from a short buffer
// would hide later ones, so completeness is taken from the callbacks'
// results instead.
func readJSONValue(iter *jsoniter.Iterator) (any, bool) {
	switch iter.WhatIsNext() {
	case jsoniter.ObjectValue:
		obj := token.NewObject()
		done := iter.ReadObjectCB(func(it *jsoniter.Iterator, field string) bool {
			v, ok := readJSONValue(it)
			obj.Set(field, v)
			return ok
		})
		return obj, done && iter.Error == nil
	case jsoniter.ArrayValue:
		items := make([]any, 0)
		done := iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
			v, ok := readJSONValue(it)
			items = append(items, v)
			return ok
		})
		return items, done && iter.Error == nil
	case jsoniter.StringValue:
		s := iter.ReadString()
		return s, iter.Error == nil
	case jsoniter.NumberValue:
		n := iter.ReadNumber()
		if iter.Error != nil && !errors.Is(iter.Error, io.EOF) {
			return nil, false
		}
		return jsonNumber(n)
	case jsoniter.BoolValue:
		b := iter.ReadBool()
		return b, iter.Error == nil
	case jsoniter.NilValue:
		iter.ReadNil()
		return nil, iter.Error == nil
	default:
		iter.ReportError("readJSONValue", "unexpected token")
		return nil, false
	}
}

// jsonNumber keeps integers exact: int64 when it fits, uint64 for larger
// positive values, float64 otherwise.
func jsonNumber(n json.Number) (any, bool) {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		if u, err := strconv.ParseUint(s, 10, 64); err == nil {
			return u, true
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	return f, true
}

type jsonFrame struct {
	object  bool
	count   int
	hasName bool
}

// jsonStreamWriter is a token.Writer over a jsoniter stream. It places the
// separators itself and rejects token sequences that are not valid JSON.
type jsonStreamWriter struct {
	stream   *jsoniter.Stream
	stack    []jsonFrame
	rootDone bool
}

func (w *jsonStreamWriter) top() *jsonFrame {
	if len(w.stack) == 0 {
		return nil
	}
	return &w.stack[len(w.stack)-1]
}

func (w *jsonStreamWriter) beforeValue() error {
	top := w.top()
	if top == nil {
		if w.rootDone {
			return merr.WrapErrStructuralMismatch("end of document", "value")
		}
		return nil
	}
	if top.object {
		if !top.hasName {
			return merr.WrapErrStructuralMismatch(token.FieldName, "value")
		}
		top.hasName = false
		return nil
	}
	if top.count > 0 {
		w.stream.WriteMore()
	}
	top.count++
	return nil
}

func (w *jsonStreamWriter) afterValue() {
	if len(w.stack) == 0 {
		w.rootDone = true
	}
}

func (w *jsonStreamWriter) WriteObjectStart() error {
	if err := w.beforeValue(); err != nil {
		return err
	}
	w.stream.WriteObjectStart()
	w.stack = append(w.stack, jsonFrame{object: true})
	return nil
}

func (w *jsonStreamWriter) WriteObjectEnd() error {
	top := w.top()
	if top == nil || !top.object || top.hasName {
		return merr.WrapErrStructuralMismatch("open object", token.ObjectEnd)
	}
	w.stack = w.stack[:len(w.stack)-1]
	w.stream.WriteObjectEnd()
	w.afterValue()
	return nil
}

func (w *jsonStreamWriter) WriteArrayStart() error {
	if err := w.beforeValue(); err != nil {
		return err
	}
	w.stream.WriteArrayStart()
	w.stack = append(w.stack, jsonFrame{})
	return nil
}

func (w *jsonStreamWriter) WriteArrayEnd() error {
	top := w.top()
	if top == nil || top.object {
		return merr.WrapErrStructuralMismatch("open array", token.ArrayEnd)
	}
	w.stack = w.stack[:len(w.stack)-1]
	w.stream.WriteArrayEnd()
	w.afterValue()
	return nil
}

func (w *jsonStreamWriter) WriteFieldName(name string) error {
	top := w.top()
	if top == nil || !top.object || top.hasName {
		return merr.WrapErrStructuralMismatch("open object", token.FieldName)
	}
	if top.count > 0 {
		w.stream.WriteMore()
	}
	top.count++
	top.hasName = true
	w.stream.WriteObjectField(name)
	return nil
}

func (w *jsonStreamWriter) scalar(write func()) error {
	if err := w.beforeValue(); err != nil {
		return err
	}
	write()
	w.afterValue()
	return nil
}

func (w *jsonStreamWriter) WriteString(s string) error {
	return w.scalar(func() { w.stream.WriteString(s) })
}

func (w *jsonStreamWriter) WriteInt(i int64) error {
	return w.scalar(func() { w.stream.WriteInt64(i) })
}

func (w *jsonStreamWriter) WriteUint(u uint64) error {
	return w.scalar(func() { w.stream.WriteUint64(u) })
}

func (w *jsonStreamWriter) WriteFloat(f float64) error {
	return w.scalar(func() { w.stream.WriteFloat64(f) })
}

func (w *jsonStreamWriter) WriteBool(b bool) error {
	return w.scalar(func() { w.stream.WriteBool(b) })
}

func (w *jsonStreamWriter) WriteNull() error {
	return w.scalar(func() { w.stream.WriteNil() })
}

// Flush writes buffered output and reports any error the stream recorded.
// An unfinished document is an error.
func (w *jsonStreamWriter) Flush() error {
	if len(w.stack) > 0 {
		return merr.WrapErrStructuralMismatch("complete document", "unclosed container")
	}
	if w.stream.Error != nil {
		return merr.WrapErrFormatFailed(ContentTypeJSON, w.stream.Error)
	}
	return merr.WrapErrFormatFailed(ContentTypeJSON, w.stream.Flush())
}
