package spec

import (
	"github.com/wippyai/contract/diag"
	"github.com/wippyai/contract/signature"
)

// Names lists the full method set, primary methods first, then each embedded
// contract's names in embedding order. Each name appears once.
func (s *Spec) Names() []string {
	seen := make(map[string]bool)
	var out []string
	s.collectNames(seen, &out)
	return out
}

func (s *Spec) collectNames(seen map[string]bool, out *[]string) {
	for _, m := range s.methods {
		if !seen[m.Name] {
			seen[m.Name] = true
			*out = append(*out, m.Name)
		}
	}
	for _, e := range s.embedded {
		e.collectNames(seen, out)
	}
}

// Slot is one entry of the flattened dispatch layout.
type Slot struct {
	Method
	Owner *Spec
}

// Slots lists the full method set in dispatch order: embedded contracts
// first, depth-first in embedding order, then primary methods. A name reached
// again through a later branch keeps its first position.
func (s *Spec) Slots() []Slot {
	seen := make(map[string]bool)
	var out []Slot
	s.collectSlots(seen, &out)
	return out
}

func (s *Spec) collectSlots(seen map[string]bool, out *[]Slot) {
	for _, e := range s.embedded {
		e.collectSlots(seen, out)
	}
	for _, m := range s.methods {
		if !seen[m.Name] {
			seen[m.Name] = true
			*out = append(*out, Slot{Method: m, Owner: s})
		}
	}
}

// Ambiguities reports every name contributed by more than one direct branch
// of the contract. The primary method set is one branch; each direct embed
// is another, counted once however deep the name sits inside it.
func (s *Spec) Ambiguities() diag.List {
	var out diag.List
	for _, name := range s.Names() {
		var sources []string
		if _, ok := s.index[name]; ok {
			sources = append(sources, s.name)
		}
		for _, e := range s.embedded {
			if e.Has(name) {
				sources = append(sources, e.name)
			}
		}
		if len(sources) > 1 {
			out = append(out, diag.AmbiguousMethod{Method: name, Sources: sources})
		}
	}
	return out
}

// Verify checks impl against the contract.
//
// Ambiguities are reported alone when present. Otherwise primary methods are
// matched in declaration order, followed by a full verification of each
// embedded contract, which runs its own ambiguity check.
func Verify(s *Spec, impl signature.MethodSet) diag.List {
	if amb := s.Ambiguities(); len(amb) > 0 {
		return amb
	}

	var out diag.List
	for _, m := range s.methods {
		out = append(out, signature.Match(m.Name, m.Sig, impl)...)
	}
	for _, e := range s.embedded {
		out = append(out, Verify(e, impl)...)
	}
	return out
}
