package descriptor

import "strings"

// Return describes what a method produces.
//
// A fallible return carries an error domain alongside its payload; only the
// payload takes part in compatibility checks.
type Return struct {
	Payload  Descriptor
	Domain   Descriptor
	Fallible bool
}

// Direct returns an infallible return of payload d.
func Direct(d Descriptor) Return {
	return Return{Payload: d}
}

// Fallible returns a fallible return of payload d with an open error domain.
func Fallible(d Descriptor) Return {
	return Return{Payload: d, Fallible: true}
}

// FallibleIn returns a fallible return of payload d in the given error domain.
func FallibleIn(d, domain Descriptor) Return {
	return Return{Payload: d, Domain: domain, Fallible: true}
}

// PayloadOrVoid returns the payload, treating nil as Void.
func (r Return) PayloadOrVoid() Descriptor {
	if r.Payload == nil {
		return Void
	}
	return r.Payload
}

func (r Return) String() string {
	payload := r.PayloadOrVoid()
	if !r.Fallible {
		if isVoid(payload) {
			return "()"
		}
		return payload.String()
	}

	domain := "error"
	if r.Domain != nil {
		domain = r.Domain.String()
	}
	if isVoid(payload) {
		return domain
	}

	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(payload.String())
	b.WriteString(", ")
	b.WriteString(domain)
	b.WriteByte(')')
	return b.String()
}

// ReturnCompatible reports whether impl satisfies the contract return.
// Fallibility must agree; error domains are ignored.
func ReturnCompatible(contract, impl Return) bool {
	if contract.Fallible != impl.Fallible {
		return false
	}
	return Compatible(contract.PayloadOrVoid(), impl.PayloadOrVoid())
}

func isVoid(d Descriptor) bool {
	p, ok := d.(*Primitive)
	return ok && p.Name == "void"
}
