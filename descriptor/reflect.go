package descriptor

import (
	"reflect"
	"strings"
	"sync"
)

// Enumerator is implemented by named integer types that behave as enums.
// EnumVariants must return the same list for every call, ordered as the
// variants are declared.
type Enumerator interface {
	EnumVariants() []Variant
}

var (
	enumeratorType = reflect.TypeFor[Enumerator]()
	optionalType   = reflect.TypeFor[optional]()
	errorType      = reflect.TypeFor[error]()
	optionPkgPath  = reflect.TypeFor[Option[struct{}]]().PkgPath()
)

// Describer derives descriptors from Go types and memoizes them per type.
// It is safe for concurrent use.
type Describer struct {
	cache sync.Map // reflect.Type -> Descriptor
}

// NewDescriber returns an empty Describer.
func NewDescriber() *Describer {
	return &Describer{}
}

var defaultDescriber = NewDescriber()

// Of returns the descriptor for t using the shared Describer.
func Of(t reflect.Type) Descriptor {
	return defaultDescriber.Describe(t)
}

// For returns the descriptor for T using the shared Describer.
func For[T any]() Descriptor {
	return defaultDescriber.Describe(reflect.TypeFor[T]())
}

// Describe returns the descriptor for t. A nil type describes as Void.
func (d *Describer) Describe(t reflect.Type) Descriptor {
	if t == nil {
		return Void
	}
	if cached, ok := d.cache.Load(t); ok {
		return cached.(Descriptor)
	}

	desc := describe(t, make(map[reflect.Type]Descriptor))

	actual, _ := d.cache.LoadOrStore(t, desc)
	return actual.(Descriptor)
}

// Identity returns the name a type is compared by when it has no structure:
// pkgpath.Name for named types, the type literal otherwise.
func Identity(t reflect.Type) string {
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

func describe(t reflect.Type, inProgress map[reflect.Type]Descriptor) Descriptor {
	if d, ok := inProgress[t]; ok {
		return d
	}

	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if variants, ok := enumVariants(t); ok {
			return &Enum{Name: Identity(t), Variants: variants}
		}
		return &Primitive{Name: Identity(t)}

	case reflect.Bool, reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128, reflect.String, reflect.Uintptr:
		return &Primitive{Name: Identity(t)}

	case reflect.Struct:
		if isOption(t) {
			o := &Optional{}
			inProgress[t] = o
			o.Elem = describe(reflect.Zero(t).Interface().(optional).optionElem(), inProgress)
			return o
		}
		s := &Struct{Fields: make([]Field, t.NumField())}
		if t.Name() != "" {
			s.Name = Identity(t)
		}
		inProgress[t] = s
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			s.Fields[i] = Field{Name: f.Name, Type: describe(f.Type, inProgress)}
		}
		return s

	case reflect.Array:
		a := &Array{Len: t.Len()}
		inProgress[t] = a
		a.Elem = describe(t.Elem(), inProgress)
		return a

	case reflect.Pointer:
		p := &Pointer{Size: SizeSingle}
		inProgress[t] = p
		p.Elem = describe(t.Elem(), inProgress)
		return p

	case reflect.Slice:
		p := &Pointer{Size: SizeSlice}
		inProgress[t] = p
		p.Elem = describe(t.Elem(), inProgress)
		return p

	default:
		// map, chan, func, interface, unsafe.Pointer
		return &Opaque{Identity: Identity(t)}
	}
}

// isOption reports whether t is an Option instantiation. Structs that embed
// an Option inherit its methods but keep their own fields.
func isOption(t reflect.Type) bool {
	return t.PkgPath() == optionPkgPath &&
		strings.HasPrefix(t.Name(), "Option[") &&
		t.Implements(optionalType)
}

func enumVariants(t reflect.Type) ([]Variant, bool) {
	if t.Implements(enumeratorType) {
		return reflect.Zero(t).Interface().(Enumerator).EnumVariants(), true
	}
	if reflect.PointerTo(t).Implements(enumeratorType) {
		return reflect.New(t).Interface().(Enumerator).EnumVariants(), true
	}
	return nil, false
}

// ReturnOf derives the return descriptor for a result list.
// A trailing error-implementing result makes the return fallible, with that
// result's type as the error domain.
func ReturnOf(results []reflect.Type) Return {
	if n := len(results); n > 0 && results[n-1].Implements(errorType) {
		return FallibleIn(payloadOf(results[:n-1]), Of(results[n-1]))
	}
	return Direct(payloadOf(results))
}

func payloadOf(results []reflect.Type) Descriptor {
	elems := make([]Descriptor, len(results))
	for i, r := range results {
		elems[i] = Of(r)
	}
	return Payload(elems)
}

// IsError reports whether t implements the error interface.
func IsError(t reflect.Type) bool {
	return t.Implements(errorType)
}
