package dispatch

import (
	"reflect"
	"unsafe"

	"github.com/wippyai/contract/descriptor"
	"github.com/wippyai/contract/errors"
	"github.com/wippyai/contract/signature"
	"github.com/wippyai/contract/spec"
)

// MaxArity is the largest supported parameter count of a contract method,
// receiver slot included.
const MaxArity = 5

var unsafePointerType = reflect.TypeFor[unsafe.Pointer]()

// Entry is one dispatch slot. Fn takes the opaque data pointer followed by
// the method's parameters and returns the method's results.
type Entry struct {
	Fn    reflect.Value
	Owner *spec.Spec
	Name  string
	Sig   signature.Signature
}

// Table is an immutable dispatch table for one contract. Slots follow the
// contract's dispatch layout, so position i names the same method in every
// table built for that contract.
type Table struct {
	spec    *spec.Spec
	impl    reflect.Type
	index   map[string]int
	entries []Entry
}

// Spec returns the contract the table serves.
func (t *Table) Spec() *spec.Spec {
	return t.spec
}

// Impl returns the implementation type, or nil for hand-built tables.
func (t *Table) Impl() reflect.Type {
	return t.impl
}

// Len returns the slot count.
func (t *Table) Len() int {
	return len(t.entries)
}

// Entry returns slot i.
func (t *Table) Entry(i int) Entry {
	return t.entries[i]
}

// Entries returns all slots in layout order.
func (t *Table) Entries() []Entry {
	return t.entries
}

// Index returns the slot position of a method name.
func (t *Table) Index(name string) (int, bool) {
	i, ok := t.index[name]
	return i, ok
}

// Slot returns the slot adapter for name typed as F, for example
// func(unsafe.Pointer, uint32) (uint32, error).
func Slot[F any](t *Table, name string) (F, error) {
	var zero F
	i, ok := t.index[name]
	if !ok {
		return zero, errors.NotFound(errors.PhaseInvoke, "method", name)
	}
	f, ok := t.entries[i].Fn.Interface().(F)
	if !ok {
		return zero, errors.TypeMismatch(errors.PhaseInvoke, []string{t.spec.Name(), name},
			t.entries[i].Fn.Type().String(), reflect.TypeFor[F]().String())
	}
	return f, nil
}

func newTable(s *spec.Spec, impl reflect.Type, entries []Entry) *Table {
	t := &Table{
		spec:    s,
		impl:    impl,
		entries: entries,
		index:   make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		t.index[e.Name] = i
	}
	return t
}

func checkArity(s *spec.Spec, slot spec.Slot) error {
	if total := slot.Sig.Arity(); total < 1 || total > MaxArity {
		return errors.Arity(s.Name(), slot.Name, total, MaxArity)
	}
	return nil
}

// NewTable builds a table from hand-written adapters, one per slot in
// spec.Slots order. Each adapter takes an unsafe.Pointer followed by
// parameters and returns results compatible with the contract method. A
// trailing concrete error result is widened to error as in synthesized
// tables.
func NewTable(s *spec.Spec, fns ...any) (*Table, error) {
	if s == nil {
		return nil, errors.NilPointer(errors.PhaseSynthesize, nil, "*spec.Spec")
	}

	slots := s.Slots()
	if len(fns) != len(slots) {
		return nil, errors.New(errors.PhaseSynthesize, errors.KindInvalidInput).
			Contract(s.Name()).
			Detail("got %d adapters for %d slots", len(fns), len(slots)).
			Build()
	}

	entries := make([]Entry, len(slots))
	for i, slot := range slots {
		if err := checkArity(s, slot); err != nil {
			return nil, err
		}
		fn, err := checkAdapter(s, slot, fns[i])
		if err != nil {
			return nil, err
		}
		entries[i] = Entry{Name: slot.Name, Owner: slot.Owner, Sig: slot.Sig, Fn: fn}
	}

	t := newTable(s, nil, entries)
	Logger().Debug("dispatch table assembled",
		zapContract(s), zapSlots(len(entries)))
	return t, nil
}

func checkAdapter(s *spec.Spec, slot spec.Slot, fn any) (reflect.Value, error) {
	path := []string{s.Name(), slot.Name}
	v := reflect.ValueOf(fn)
	if !v.IsValid() || v.Kind() != reflect.Func || v.IsNil() {
		return reflect.Value{}, errors.TypeMismatch(errors.PhaseSynthesize, path, typeString(fn), "adapter func")
	}

	ft := v.Type()
	if ft.NumIn() == 0 || ft.In(0) != unsafePointerType {
		return reflect.Value{}, errors.TypeMismatch(errors.PhaseSynthesize, path, ft.String(), "func(unsafe.Pointer, ...)")
	}
	if got, want := ft.NumIn(), slot.Sig.Arity(); got != want {
		return reflect.Value{}, errors.New(errors.PhaseSynthesize, errors.KindArity).
			Path(path...).
			Contract(s.Name()).
			GoType(ft.String()).
			Detail("adapter takes %d parameters, want %d", got, want).
			Build()
	}

	sig, err := signature.FromFunc(ft)
	if err != nil {
		return reflect.Value{}, err
	}
	for i, want := range slot.Sig.Params {
		if !descriptor.Compatible(want, sig.Params[i+1]) {
			return reflect.Value{}, errors.TypeMismatch(errors.PhaseSynthesize, path, ft.In(i+1).String(), want.String())
		}
	}
	if !descriptor.ReturnCompatible(slot.Sig.Return, sig.Return) {
		return reflect.Value{}, errors.TypeMismatch(errors.PhaseSynthesize, path, sig.Return.String(), slot.Sig.Return.String())
	}
	return widenAdapter(v), nil
}

// widenAdapter wraps a hand-written adapter whose trailing result is a
// concrete error type so the slot returns error.
func widenAdapter(v reflect.Value) reflect.Value {
	ft := v.Type()
	out := make([]reflect.Type, ft.NumOut())
	for i := range out {
		out[i] = ft.Out(i)
	}
	if !widenError(out) {
		return v
	}
	in := make([]reflect.Type, ft.NumIn())
	for i := range in {
		in[i] = ft.In(i)
	}
	wt := reflect.FuncOf(in, out, ft.IsVariadic())
	return reflect.MakeFunc(wt, func(args []reflect.Value) []reflect.Value {
		if ft.IsVariadic() {
			return asError(v.CallSlice(args))
		}
		return asError(v.Call(args))
	})
}

func typeString(v any) string {
	if v == nil {
		return "nil"
	}
	return reflect.TypeOf(v).String()
}
