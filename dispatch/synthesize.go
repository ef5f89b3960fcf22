package dispatch

import (
	"reflect"
	"sync"

	"github.com/wippyai/contract/errors"
	"github.com/wippyai/contract/signature"
	"github.com/wippyai/contract/spec"
)

// Synthesizer generates dispatch tables and memoizes one per
// (contract, implementation type) pair.
type Synthesizer struct {
	cache sync.Map // cacheKey -> *Table
}

type cacheKey struct {
	spec *spec.Spec
	impl reflect.Type
}

// NewSynthesizer creates a synthesizer with an empty cache.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{}
}

var defaultSynthesizer = NewSynthesizer()

// Synthesize uses the package-level synthesizer.
func Synthesize(s *spec.Spec, impl reflect.Type) (*Table, error) {
	return defaultSynthesizer.Synthesize(s, impl)
}

// MustSynthesize is Synthesize that panics on error.
func MustSynthesize(s *spec.Spec, impl reflect.Type) *Table {
	t, err := Synthesize(s, impl)
	if err != nil {
		panic(err)
	}
	return t
}

// Synthesize returns the dispatch table of impl for contract s.
//
// impl must satisfy s and every method must fit within MaxArity; otherwise
// no table is built and the error carries the reason. An unnamed pointer
// type is treated as its element type. Concurrent first calls may build the
// table twice; all callers observe the same published instance.
func (sy *Synthesizer) Synthesize(s *spec.Spec, impl reflect.Type) (*Table, error) {
	if s == nil {
		return nil, errors.NilPointer(errors.PhaseSynthesize, nil, "*spec.Spec")
	}
	if impl == nil {
		return nil, errors.New(errors.PhaseSynthesize, errors.KindNilPointer).
			Contract(s.Name()).
			Detail("implementation type cannot be nil").
			Build()
	}
	if impl.Kind() == reflect.Pointer && impl.Name() == "" {
		impl = impl.Elem()
	}

	key := cacheKey{spec: s, impl: impl}
	if cached, ok := sy.cache.Load(key); ok {
		return cached.(*Table), nil
	}

	t, err := build(s, impl)
	if err != nil {
		return nil, err
	}

	actual, loaded := sy.cache.LoadOrStore(key, t)
	if !loaded {
		Logger().Debug("dispatch table synthesized",
			zapContract(s), zapType(impl), zapSlots(t.Len()))
	}
	return actual.(*Table), nil
}

func build(s *spec.Spec, impl reflect.Type) (*Table, error) {
	set := signature.Reflect(impl)
	if diags := spec.Verify(s, set); !diags.OK() {
		return nil, errors.Unsatisfied(s.Name(), impl.String(), diags)
	}

	slots := s.Slots()
	entries := make([]Entry, len(slots))
	for i, slot := range slots {
		if err := checkArity(s, slot); err != nil {
			return nil, err
		}
		m, _ := set.Lookup(slot.Name)
		rm, _ := set.Func(slot.Name)
		entries[i] = Entry{
			Name:  slot.Name,
			Owner: slot.Owner,
			Sig:   slot.Sig,
			Fn:    adapter(impl, rm, m.PointerReceiver),
		}
	}
	return newTable(s, impl, entries), nil
}

// adapter builds func(unsafe.Pointer, params...) results for one method.
// The pointer addresses a value of type impl. A trailing error result of a
// concrete type is exposed as error, so every implementation of a fallible
// method fills the slot with the same func type.
func adapter(impl reflect.Type, rm reflect.Method, pointerRecv bool) reflect.Value {
	mt := rm.Type
	first := 1
	if impl.Kind() == reflect.Interface {
		first = 0
	}

	in := make([]reflect.Type, 0, mt.NumIn()-first+1)
	in = append(in, unsafePointerType)
	for i := first; i < mt.NumIn(); i++ {
		in = append(in, mt.In(i))
	}
	out := make([]reflect.Type, mt.NumOut())
	for i := range out {
		out[i] = mt.Out(i)
	}
	widened := widenError(out)
	variadic := mt.IsVariadic()
	ft := reflect.FuncOf(in, out, variadic)

	call := func(fn reflect.Value, args []reflect.Value) []reflect.Value {
		var res []reflect.Value
		if variadic {
			res = fn.CallSlice(args)
		} else {
			res = fn.Call(args)
		}
		if widened {
			res = asError(res)
		}
		return res
	}

	if impl.Kind() == reflect.Interface {
		name := rm.Name
		return reflect.MakeFunc(ft, func(args []reflect.Value) []reflect.Value {
			recv := reflect.NewAt(impl, args[0].UnsafePointer()).Elem()
			return call(recv.MethodByName(name), args[1:])
		})
	}

	fn := rm.Func
	return reflect.MakeFunc(ft, func(args []reflect.Value) []reflect.Value {
		recv := reflect.NewAt(impl, args[0].UnsafePointer())
		if !pointerRecv {
			recv = recv.Elem()
		}
		full := make([]reflect.Value, len(args))
		full[0] = recv
		copy(full[1:], args[1:])
		return call(fn, full)
	})
}

// widenError replaces a trailing result that implements error with the error
// interface itself. It reports whether out changed.
func widenError(out []reflect.Type) bool {
	n := len(out)
	if n == 0 || out[n-1] == errorType || !out[n-1].Implements(errorType) {
		return false
	}
	out[n-1] = errorType
	return true
}

// asError converts the trailing result to an error value. A typed nil
// becomes a nil error.
func asError(res []reflect.Value) []reflect.Value {
	last := res[len(res)-1]
	e := reflect.New(errorType).Elem()
	if !isNil(last) {
		e.Set(last)
	}
	res[len(res)-1] = e
	return res
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}
