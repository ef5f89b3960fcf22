package spec

import (
	"github.com/wippyai/contract/errors"
	"github.com/wippyai/contract/signature"
)

// Method is a named contract method.
type Method struct {
	Name string
	Sig  signature.Signature
}

// M is shorthand for a Method literal.
func M(name string, sig signature.Signature) Method {
	return Method{Name: name, Sig: sig}
}

// Spec is a named, immutable contract: primary methods plus embedded contracts.
type Spec struct {
	index    map[string]int
	name     string
	methods  []Method
	embedded []*Spec
}

// Define builds a contract. Methods keep their declared order; embedded
// contracts keep theirs. The same contract may be embedded in several
// branches.
func Define(name string, methods []Method, embedded ...*Spec) (*Spec, error) {
	if name == "" {
		return nil, errors.InvalidInput(errors.PhaseDefine, "contract name cannot be empty")
	}

	s := &Spec{
		name:     name,
		methods:  make([]Method, 0, len(methods)),
		embedded: make([]*Spec, 0, len(embedded)),
		index:    make(map[string]int, len(methods)),
	}

	for _, m := range methods {
		if m.Name == "" {
			return nil, errors.New(errors.PhaseDefine, errors.KindInvalidInput).
				Path(name).
				Contract(name).
				Detail("method name cannot be empty").
				Build()
		}
		if _, dup := s.index[m.Name]; dup {
			return nil, errors.Duplicate(errors.PhaseDefine, []string{name}, "method", m.Name)
		}
		for i, p := range m.Sig.Params {
			if p == nil {
				return nil, errors.New(errors.PhaseDefine, errors.KindNilPointer).
					Path(name, m.Name).
					Contract(name).
					Detail("parameter %d has no descriptor", i).
					Build()
			}
		}
		s.index[m.Name] = len(s.methods)
		s.methods = append(s.methods, m)
	}

	for i, e := range embedded {
		if e == nil {
			return nil, errors.New(errors.PhaseDefine, errors.KindNilPointer).
				Path(name).
				Contract(name).
				Detail("embedded contract %d is nil", i).
				Build()
		}
		s.embedded = append(s.embedded, e)
	}

	return s, nil
}

// MustDefine is Define that panics on error, for package-level contracts.
func MustDefine(name string, methods []Method, embedded ...*Spec) *Spec {
	s, err := Define(name, methods, embedded...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the contract name.
func (s *Spec) Name() string {
	return s.name
}

// Methods returns the primary methods in declaration order.
func (s *Spec) Methods() []Method {
	return s.methods
}

// Embedded returns the directly embedded contracts in declaration order.
func (s *Spec) Embedded() []*Spec {
	return s.embedded
}

// Primary returns the primary method called name.
func (s *Spec) Primary(name string) (Method, bool) {
	i, ok := s.index[name]
	if !ok {
		return Method{}, false
	}
	return s.methods[i], true
}

// Has reports whether name is in the contract's full method set.
func (s *Spec) Has(name string) bool {
	if _, ok := s.index[name]; ok {
		return true
	}
	for _, e := range s.embedded {
		if e.Has(name) {
			return true
		}
	}
	return false
}

// Lookup finds name in the full method set and returns the contract that
// declares it. Primary methods win; embeds are searched in order.
func (s *Spec) Lookup(name string) (Method, *Spec, bool) {
	if m, ok := s.Primary(name); ok {
		return m, s, true
	}
	for _, e := range s.embedded {
		if m, owner, ok := e.Lookup(name); ok {
			return m, owner, true
		}
	}
	return Method{}, nil, false
}

func (s *Spec) String() string {
	return s.name
}
