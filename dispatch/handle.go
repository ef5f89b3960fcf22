package dispatch

import (
	"reflect"
	"unsafe"

	"github.com/wippyai/contract/errors"
)

var errorType = reflect.TypeFor[error]()

// Handle pairs an opaque data pointer with a dispatch table. It does not own
// the pointee; the caller keeps it alive for as long as the handle is used.
// Handles are plain values and may be copied freely.
type Handle struct {
	data  unsafe.Pointer
	table *Table
}

// NewHandle pairs data with table. data must point to a value of the table's
// implementation type, or of whatever type the table's adapters expect.
func NewHandle(data unsafe.Pointer, table *Table) Handle {
	return Handle{data: data, table: table}
}

// Data returns the opaque data pointer.
func (h Handle) Data() unsafe.Pointer {
	return h.data
}

// Table returns the shared dispatch table.
func (h Handle) Table() *Table {
	return h.table
}

// IsZero reports whether the handle is unset.
func (h Handle) IsZero() bool {
	return h.table == nil
}

// Invoke calls method name through the table and returns its raw results.
// Arguments must be assignable to the slot's parameter types; nil stands for
// the zero value.
func (h Handle) Invoke(name string, args ...any) ([]any, error) {
	if h.table == nil {
		return nil, errors.InvalidInput(errors.PhaseInvoke, "zero handle")
	}
	i, ok := h.table.index[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseInvoke, "method", name)
	}
	fn := h.table.entries[i].Fn

	in, err := h.arguments(name, fn.Type(), args)
	if err != nil {
		return nil, err
	}

	out := fn.Call(in)
	res := make([]any, len(out))
	for j, v := range out {
		res[j] = v.Interface()
	}
	return res, nil
}

func (h Handle) arguments(name string, ft reflect.Type, args []any) ([]reflect.Value, error) {
	path := []string{h.table.spec.Name(), name}
	fixed := ft.NumIn() - 1
	if ft.IsVariadic() {
		fixed--
	}
	if len(args) < fixed || (!ft.IsVariadic() && len(args) > fixed) {
		return nil, errors.New(errors.PhaseInvoke, errors.KindArity).
			Path(path...).
			Contract(h.table.spec.Name()).
			Detail("got %d arguments, want %d", len(args), fixed).
			Build()
	}

	in := make([]reflect.Value, 0, len(args)+1)
	in = append(in, reflect.ValueOf(h.data))
	for j, a := range args {
		var pt reflect.Type
		if j < fixed {
			pt = ft.In(j + 1)
		} else {
			pt = ft.In(ft.NumIn() - 1).Elem()
		}
		if a == nil {
			in = append(in, reflect.Zero(pt))
			continue
		}
		v := reflect.ValueOf(a)
		if !v.Type().AssignableTo(pt) {
			return nil, errors.TypeMismatch(errors.PhaseInvoke, path, v.Type().String(), pt.String())
		}
		in = append(in, v)
	}
	return in, nil
}

// Call invokes name and splits a trailing error result from the payload.
// The payload is nil for no values, the value itself for one, and []any for
// several.
func (h Handle) Call(name string, args ...any) (any, error) {
	res, err := h.Invoke(name, args...)
	if err != nil {
		return nil, err
	}

	fn := h.table.entries[h.table.index[name]].Fn.Type()
	if n := fn.NumOut(); n > 0 && fn.Out(n-1).Implements(errorType) {
		last := res[n-1]
		res = res[:n-1]
		if last != nil && !isNil(reflect.ValueOf(last)) {
			err = last.(error)
		}
	}

	switch len(res) {
	case 0:
		return nil, err
	case 1:
		return res[0], err
	default:
		return res, err
	}
}
