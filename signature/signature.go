package signature

import (
	"reflect"
	"strings"

	"github.com/wippyai/contract/descriptor"
	"github.com/wippyai/contract/errors"
)

// Signature is the declared shape of a contract method. The receiver is
// not part of it.
type Signature struct {
	Return descriptor.Return
	Params []descriptor.Descriptor
}

// New builds a contract signature.
func New(ret descriptor.Return, params ...descriptor.Descriptor) Signature {
	return Signature{Params: params, Return: ret}
}

// Arity is the number of parameters an implementation method must take,
// receiver included.
func (s Signature) Arity() int {
	return len(s.Params) + 1
}

func (s Signature) String() string {
	var b strings.Builder
	b.WriteString("func(")
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	if ret := s.Return.String(); ret != "()" {
		b.WriteByte(' ')
		b.WriteString(ret)
	}
	return b.String()
}

// FromFunc derives a contract signature from a Go func type.
func FromFunc(t reflect.Type) (Signature, error) {
	if t == nil || t.Kind() != reflect.Func {
		name := "<nil>"
		if t != nil {
			name = t.String()
		}
		return Signature{}, errors.TypeMismatch(errors.PhaseDefine, nil, name, "func type")
	}

	params := make([]descriptor.Descriptor, t.NumIn())
	for i := range params {
		params[i] = descriptor.Of(t.In(i))
	}

	return Signature{Params: params, Return: descriptor.ReturnOf(results(t))}, nil
}

// For derives a contract signature from the func type F.
// It panics if F is not a func type.
func For[F any]() Signature {
	sig, err := FromFunc(reflect.TypeFor[F]())
	if err != nil {
		panic(err)
	}
	return sig
}

// Method is an implementation method. Params[0] is the receiver.
type Method struct {
	Name            string
	Return          descriptor.Return
	Params          []descriptor.Descriptor
	PointerReceiver bool
	Variadic        bool
}

func (m Method) String() string {
	var b strings.Builder
	b.WriteString("func ")
	if len(m.Params) > 0 {
		b.WriteByte('(')
		b.WriteString(m.Params[0].String())
		b.WriteString(") ")
	}
	b.WriteString(m.Name)
	b.WriteByte('(')
	for i := 1; i < len(m.Params); i++ {
		if i > 1 {
			b.WriteString(", ")
		}
		if p, ok := m.Params[i].(*descriptor.Pointer); ok && m.Variadic && i == len(m.Params)-1 {
			b.WriteString("...")
			b.WriteString(p.Elem.String())
			continue
		}
		b.WriteString(m.Params[i].String())
	}
	b.WriteByte(')')
	if ret := m.Return.String(); ret != "()" {
		b.WriteByte(' ')
		b.WriteString(ret)
	}
	return b.String()
}

// MethodSet is the set of methods a candidate type offers.
type MethodSet interface {
	// TypeName names the candidate type in diagnostics.
	TypeName() string
	// Lookup returns the method called name.
	Lookup(name string) (Method, bool)
}

func results(t reflect.Type) []reflect.Type {
	out := make([]reflect.Type, t.NumOut())
	for i := range out {
		out[i] = t.Out(i)
	}
	return out
}
