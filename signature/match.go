package signature

import (
	"github.com/wippyai/contract/descriptor"
	"github.com/wippyai/contract/diag"
)

// Match compares the contract method name against the candidate's method of
// the same name.
//
// A missing method or an arity mismatch ends the comparison with a single
// incompatibility. Otherwise every mismatching parameter is reported, then
// the return. Parameter indexes count the receiver as 0.
func Match(name string, contract Signature, impl MethodSet) diag.List {
	m, ok := impl.Lookup(name)
	if !ok {
		return diag.List{diag.MissingMethod{Name: name}}
	}

	if want := contract.Arity(); len(m.Params) != want {
		return diag.List{diag.WrongParamCount{Method: name, Expected: want, Got: len(m.Params)}}
	}

	var out diag.List
	for i, expected := range contract.Params {
		got := m.Params[i+1]
		if !descriptor.Compatible(expected, got) {
			out = append(out, diag.ParamTypeMismatch{
				Method:   name,
				Index:    i + 1,
				Expected: expected,
				Got:      got,
			})
		}
	}

	if !descriptor.ReturnCompatible(contract.Return, m.Return) {
		out = append(out, diag.ReturnTypeMismatch{
			Method:   name,
			Expected: contract.Return,
			Got:      m.Return,
		})
	}

	return out
}
