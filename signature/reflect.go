package signature

import (
	"reflect"
	"sync"

	"github.com/wippyai/contract/descriptor"
)

// ReflectSet is the method set of a concrete Go type, read through reflection.
//
// For a struct or other concrete type T it covers the methods of *T, so both
// value and pointer receivers are visible; PointerReceiver tells them apart.
// For an interface type it covers the interface's methods with a by-value
// receiver.
type ReflectSet struct {
	typ     reflect.Type
	methods map[string]Method
	funcs   map[string]reflect.Method
	order   []string
}

var reflectSets sync.Map // reflect.Type -> *ReflectSet

// Reflect returns the method set of t. Pointer types are dereferenced once,
// so Reflect(*T) and Reflect(T) describe the same set. Results are memoized.
func Reflect(t reflect.Type) *ReflectSet {
	if t.Kind() == reflect.Pointer && t.Name() == "" {
		t = t.Elem()
	}
	if cached, ok := reflectSets.Load(t); ok {
		return cached.(*ReflectSet)
	}

	s := buildReflectSet(t)

	actual, _ := reflectSets.LoadOrStore(t, s)
	return actual.(*ReflectSet)
}

func buildReflectSet(t reflect.Type) *ReflectSet {
	s := &ReflectSet{
		typ:     t,
		methods: make(map[string]Method),
		funcs:   make(map[string]reflect.Method),
	}

	if t.Kind() == reflect.Interface {
		recv := descriptor.Of(t)
		for i := 0; i < t.NumMethod(); i++ {
			m := t.Method(i)
			params := make([]descriptor.Descriptor, 0, m.Type.NumIn()+1)
			params = append(params, recv)
			for j := 0; j < m.Type.NumIn(); j++ {
				params = append(params, descriptor.Of(m.Type.In(j)))
			}
			s.add(m, Method{
				Name:     m.Name,
				Params:   params,
				Return:   descriptor.ReturnOf(results(m.Type)),
				Variadic: m.Type.IsVariadic(),
			})
		}
		return s
	}

	ptr := reflect.PointerTo(t)
	for i := 0; i < ptr.NumMethod(); i++ {
		m := ptr.Method(i)
		pointerRecv := true
		if vm, ok := t.MethodByName(m.Name); ok {
			m = vm
			pointerRecv = false
		}

		params := make([]descriptor.Descriptor, m.Type.NumIn())
		for j := range params {
			params[j] = descriptor.Of(m.Type.In(j))
		}
		s.add(m, Method{
			Name:            m.Name,
			Params:          params,
			Return:          descriptor.ReturnOf(results(m.Type)),
			PointerReceiver: pointerRecv,
			Variadic:        m.Type.IsVariadic(),
		})
	}
	return s
}

func (s *ReflectSet) add(rm reflect.Method, m Method) {
	s.methods[m.Name] = m
	s.funcs[m.Name] = rm
	s.order = append(s.order, m.Name)
}

// Type returns the implementation type (never a pointer to it).
func (s *ReflectSet) Type() reflect.Type {
	return s.typ
}

// TypeName implements MethodSet.
func (s *ReflectSet) TypeName() string {
	return s.typ.String()
}

// Lookup implements MethodSet.
func (s *ReflectSet) Lookup(name string) (Method, bool) {
	m, ok := s.methods[name]
	return m, ok
}

// Func returns the reflected method called name. For concrete types
// Func.Func takes the receiver as its first argument; for interface types
// it is the zero Value and the method must be called through a value.
func (s *ReflectSet) Func(name string) (reflect.Method, bool) {
	m, ok := s.funcs[name]
	return m, ok
}

// Names returns method names in reflection order (sorted by name).
func (s *ReflectSet) Names() []string {
	return s.order
}
