package token

import (
	"github.com/lk2023060901/garden-serde/pkg/util/merr"
)

type writeFrame struct {
	obj     *Object
	arr     []any
	name    string
	hasName bool
}

func (f *writeFrame) isObject() bool {
	return f.obj != nil
}

// TreeWriter builds an in-memory tree from tokens: objects become *Object,
// arrays []any, numbers int64/uint64/float64.
type TreeWriter struct {
	stack []*writeFrame
	root  any
	done  bool
}

var _ Writer = (*TreeWriter)(nil)

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{}
}

// Result returns the completed tree. It fails if the document is still open
// or nothing has been written.
func (w *TreeWriter) Result() (any, error) {
	if len(w.stack) > 0 || !w.done {
		return nil, merr.WrapErrStructuralMismatch("complete document", "incomplete document")
	}
	return w.root, nil
}

func (w *TreeWriter) top() *writeFrame {
	if len(w.stack) == 0 {
		return nil
	}
	return w.stack[len(w.stack)-1]
}

func (w *TreeWriter) value(v any) error {
	top := w.top()
	if top == nil {
		if w.done {
			return merr.WrapErrStructuralMismatch(End, "second root value")
		}
		w.root = v
		w.done = true
		return nil
	}
	if top.isObject() {
		if !top.hasName {
			return merr.WrapErrStructuralMismatch(FieldName, "value")
		}
		top.obj.Set(top.name, v)
		top.hasName = false
		return nil
	}
	top.arr = append(top.arr, v)
	return nil
}

func (w *TreeWriter) checkValueSlot() error {
	top := w.top()
	if top == nil {
		if w.done {
			return merr.WrapErrStructuralMismatch(End, "second root value")
		}
		return nil
	}
	if top.isObject() && !top.hasName {
		return merr.WrapErrStructuralMismatch(FieldName, "value")
	}
	return nil
}

func (w *TreeWriter) WriteObjectStart() error {
	if err := w.checkValueSlot(); err != nil {
		return err
	}
	w.stack = append(w.stack, &writeFrame{obj: NewObject()})
	return nil
}

func (w *TreeWriter) WriteObjectEnd() error {
	top := w.top()
	if top == nil || !top.isObject() || top.hasName {
		return merr.WrapErrStructuralMismatch(ObjectEnd, "unbalanced object end")
	}
	w.stack = w.stack[:len(w.stack)-1]
	return w.value(top.obj)
}

func (w *TreeWriter) WriteArrayStart() error {
	if err := w.checkValueSlot(); err != nil {
		return err
	}
	w.stack = append(w.stack, &writeFrame{arr: make([]any, 0)})
	return nil
}

func (w *TreeWriter) WriteArrayEnd() error {
	top := w.top()
	if top == nil || top.isObject() {
		return merr.WrapErrStructuralMismatch(ArrayEnd, "unbalanced array end")
	}
	w.stack = w.stack[:len(w.stack)-1]
	return w.value(top.arr)
}

func (w *TreeWriter) WriteFieldName(name string) error {
	top := w.top()
	if top == nil || !top.isObject() || top.hasName {
		return merr.WrapErrStructuralMismatch("value", FieldName)
	}
	top.name = name
	top.hasName = true
	return nil
}

func (w *TreeWriter) WriteString(s string) error { return w.value(s) }

func (w *TreeWriter) WriteInt(v int64) error { return w.value(v) }

func (w *TreeWriter) WriteUint(v uint64) error { return w.value(v) }

func (w *TreeWriter) WriteFloat(v float64) error { return w.value(v) }

func (w *TreeWriter) WriteBool(v bool) error { return w.value(v) }

func (w *TreeWriter) WriteNull() error { return w.value(nil) }
