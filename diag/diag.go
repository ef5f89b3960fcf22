package diag

import (
	"fmt"
	"strings"

	"github.com/wippyai/contract/descriptor"
)

// Kind identifies an incompatibility variant.
type Kind uint8

const (
	KindMissingMethod Kind = iota
	KindWrongParamCount
	KindParamTypeMismatch
	KindReturnTypeMismatch
	KindAmbiguousMethod
)

var kindNames = [...]string{
	KindMissingMethod:      "missing_method",
	KindWrongParamCount:    "wrong_param_count",
	KindParamTypeMismatch:  "param_type_mismatch",
	KindReturnTypeMismatch: "return_type_mismatch",
	KindAmbiguousMethod:    "ambiguous_method",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Incompatibility is one reason a type fails to satisfy a contract.
type Incompatibility interface {
	Kind() Kind
	// MethodName is the contract method the problem is about.
	MethodName() string
	// Message renders the problem on one line, without hint.
	Message() string
}

// MissingMethod reports a contract method the type does not have.
type MissingMethod struct {
	Name string
}

// WrongParamCount reports an arity mismatch. Counts include the receiver.
type WrongParamCount struct {
	Method   string
	Expected int
	Got      int
}

// ParamTypeMismatch reports an incompatible parameter. Index counts the
// receiver as parameter 0.
type ParamTypeMismatch struct {
	Expected descriptor.Descriptor
	Got      descriptor.Descriptor
	Method   string
	Index    int
}

// ReturnTypeMismatch reports an incompatible return.
type ReturnTypeMismatch struct {
	Method   string
	Expected descriptor.Return
	Got      descriptor.Return
}

// AmbiguousMethod reports a method reachable through several branches of a
// contract's composition.
type AmbiguousMethod struct {
	Method  string
	Sources []string
}

func (MissingMethod) Kind() Kind      { return KindMissingMethod }
func (WrongParamCount) Kind() Kind    { return KindWrongParamCount }
func (ParamTypeMismatch) Kind() Kind  { return KindParamTypeMismatch }
func (ReturnTypeMismatch) Kind() Kind { return KindReturnTypeMismatch }
func (AmbiguousMethod) Kind() Kind    { return KindAmbiguousMethod }

func (m MissingMethod) MethodName() string      { return m.Name }
func (m WrongParamCount) MethodName() string    { return m.Method }
func (m ParamTypeMismatch) MethodName() string  { return m.Method }
func (m ReturnTypeMismatch) MethodName() string { return m.Method }
func (m AmbiguousMethod) MethodName() string    { return m.Method }

func (m MissingMethod) Message() string {
	return fmt.Sprintf("missing method %q", m.Name)
}

func (m WrongParamCount) Message() string {
	return fmt.Sprintf("method %q: expected %d parameters including receiver, got %d", m.Method, m.Expected, m.Got)
}

func (m ParamTypeMismatch) Message() string {
	return fmt.Sprintf("method %q: parameter %d: expected %s, got %s", m.Method, m.Index, m.Expected, m.Got)
}

func (m ReturnTypeMismatch) Message() string {
	return fmt.Sprintf("method %q: return type: expected %s, got %s", m.Method, m.Expected, m.Got)
}

func (m AmbiguousMethod) Message() string {
	return fmt.Sprintf("method %q is ambiguous: provided by %s", m.Method, strings.Join(m.Sources, ", "))
}

// List is the ordered result of a verification. An empty list means the
// contract is satisfied.
type List []Incompatibility

// OK reports whether the list is empty.
func (l List) OK() bool {
	return len(l) == 0
}

// Count returns the number of incompatibilities of kind k.
func (l List) Count(k Kind) int {
	n := 0
	for _, inc := range l {
		if inc.Kind() == k {
			n++
		}
	}
	return n
}

// Error renders the list as a numbered report so a List can travel as an error.
func (l List) Error() string {
	return strings.TrimSuffix(l.Render("", ""), "\n")
}
