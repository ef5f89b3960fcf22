package contract

import (
	"reflect"
	"unsafe"

	"github.com/wippyai/contract/descriptor"
	"github.com/wippyai/contract/diag"
	"github.com/wippyai/contract/dispatch"
	"github.com/wippyai/contract/errors"
	"github.com/wippyai/contract/signature"
	"github.com/wippyai/contract/spec"
)

type (
	Spec   = spec.Spec
	Method = spec.Method
	Handle = dispatch.Handle
	Table  = dispatch.Table
)

// Option marks an optional value in method signatures.
type Option[T any] = descriptor.Option[T]

// Some returns a present Option.
func Some[T any](v T) Option[T] {
	return descriptor.Some(v)
}

// None returns an absent Option.
func None[T any]() Option[T] {
	return descriptor.None[T]()
}

// Define builds a contract from primary methods and embedded contracts.
func Define(name string, methods []Method, embedded ...*Spec) (*Spec, error) {
	return spec.Define(name, methods, embedded...)
}

// MustDefine is Define that panics on error.
func MustDefine(name string, methods []Method, embedded ...*Spec) *Spec {
	return spec.MustDefine(name, methods, embedded...)
}

// MethodOf declares a contract method whose signature is read from the Go
// func type F, for example MethodOf[func(User) (uint32, error)]("Create").
func MethodOf[F any](name string) Method {
	return spec.M(name, signature.For[F]())
}

// Verify checks T against s. It never fails; an empty list means satisfied.
func Verify[T any](s *Spec) diag.List {
	return VerifyType(s, reflect.TypeFor[T]())
}

// VerifyType is Verify for a reflect.Type.
func VerifyType(s *Spec, t reflect.Type) diag.List {
	return spec.Verify(s, signature.Reflect(t))
}

// AssertSatisfied returns an unsatisfied error wrapping the diagnostic list
// when T does not satisfy s.
func AssertSatisfied[T any](s *Spec) error {
	return assertType(s, reflect.TypeFor[T]())
}

func assertType(s *Spec, t reflect.Type) error {
	if s == nil {
		return errors.NilPointer(errors.PhaseVerify, nil, "*spec.Spec")
	}
	if diags := VerifyType(s, t); !diags.OK() {
		return errors.Unsatisfied(s.Name(), t.String(), diags)
	}
	return nil
}

// MakeHandleChecked pairs impl with a caller-supplied table after checking
// that T satisfies s and that the table serves s.
func MakeHandleChecked[T any](s *Spec, impl *T, table *Table) (Handle, error) {
	t := reflect.TypeFor[T]()
	if impl == nil {
		return Handle{}, errors.NilPointer(errors.PhaseSynthesize, []string{specName(s)}, t.String())
	}
	if err := assertType(s, t); err != nil {
		return Handle{}, err
	}
	if table == nil {
		return Handle{}, errors.NilPointer(errors.PhaseSynthesize, []string{s.Name()}, "*dispatch.Table")
	}
	if table.Spec() != s {
		return Handle{}, errors.New(errors.PhaseSynthesize, errors.KindTypeMismatch).
			Contract(s.Name()).
			Detail("table serves contract %q", table.Spec().Name()).
			Build()
	}
	if it := table.Impl(); it != nil && it != t {
		return Handle{}, errors.TypeMismatch(errors.PhaseSynthesize, []string{s.Name()}, t.String(), it.String())
	}
	return dispatch.NewHandle(unsafe.Pointer(impl), table), nil
}

// MakeHandleAuto pairs impl with the synthesized table of T for s.
func MakeHandleAuto[T any](s *Spec, impl *T) (Handle, error) {
	t := reflect.TypeFor[T]()
	if impl == nil {
		return Handle{}, errors.NilPointer(errors.PhaseSynthesize, []string{specName(s)}, t.String())
	}
	table, err := dispatch.Synthesize(s, t)
	if err != nil {
		return Handle{}, err
	}
	return dispatch.NewHandle(unsafe.Pointer(impl), table), nil
}

// MustHandle is MakeHandleAuto that panics on error.
func MustHandle[T any](s *Spec, impl *T) Handle {
	h, err := MakeHandleAuto(s, impl)
	if err != nil {
		panic(err)
	}
	return h
}

func specName(s *Spec) string {
	if s == nil {
		return "<nil>"
	}
	return s.Name()
}
