package diag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/contract/descriptor"
)

// Hint returns a best-effort suggestion for an expected/got type pair,
// or "" when no rule applies. Rules are tried in priority order.
func Hint(expected, got descriptor.Descriptor) string {
	if ep, ok := expected.(*descriptor.Pointer); ok && ep.Const {
		if gp, ok := got.(*descriptor.Pointer); !ok || !gp.Const {
			return "make it const: the contract only grants read access"
		}
	}

	_, eOpt := expected.(*descriptor.Optional)
	_, gOpt := got.(*descriptor.Optional)
	if eOpt != gOpt {
		return "wrap or unwrap the value with the optional marker (descriptor.Option)"
	}

	if _, ok := expected.(*descriptor.Enum); ok {
		if _, ok := got.(*descriptor.Enum); ok {
			return "check variant names and values match exactly"
		}
	}

	if es, ok := expected.(*descriptor.Struct); ok {
		if gs, ok := got.(*descriptor.Struct); ok {
			if len(es.Fields) != len(gs.Fields) {
				return fmt.Sprintf("field count differs: expected %d, got %d", len(es.Fields), len(gs.Fields))
			}
			return "check field names and types match exactly, in order"
		}
	}

	if ep, ok := expected.(*descriptor.Pointer); ok {
		if gp, ok := got.(*descriptor.Pointer); ok && ep.Size != gp.Size {
			return "check single-item vs many-item vs slice pointer kind"
		}
	}

	return ""
}

// HintFor returns the hint attached to inc, if any.
func HintFor(inc Incompatibility) string {
	switch v := inc.(type) {
	case ParamTypeMismatch:
		return Hint(v.Expected, v.Got)
	case ReturnTypeMismatch:
		return Hint(v.Expected.PayloadOrVoid(), v.Got.PayloadOrVoid())
	}
	return ""
}

// Render produces a numbered report. contract and typeName label the header
// and may be empty.
func (l List) Render(contract, typeName string) string {
	var b strings.Builder

	subject := ""
	switch {
	case contract != "" && typeName != "":
		subject = fmt.Sprintf("contract %q with %s", contract, typeName)
	case contract != "":
		subject = fmt.Sprintf("contract %q", contract)
	case typeName != "":
		subject = typeName
	}

	if len(l) == 0 {
		if subject != "" {
			b.WriteString(subject)
			b.WriteString(": ")
		}
		b.WriteString("satisfied\n")
		return b.String()
	}

	if subject != "" {
		b.WriteString(subject)
		b.WriteString(": ")
	}
	b.WriteString(strconv.Itoa(len(l)))
	if len(l) == 1 {
		b.WriteString(" problem\n")
	} else {
		b.WriteString(" problems\n")
	}

	width := len(strconv.Itoa(len(l)))
	for i, inc := range l {
		num := strconv.Itoa(i + 1)
		b.WriteString("  ")
		b.WriteString(strings.Repeat(" ", width-len(num)))
		b.WriteString(num)
		b.WriteString(". ")
		b.WriteString(inc.Message())
		b.WriteByte('\n')

		if hint := HintFor(inc); hint != "" {
			b.WriteString(strings.Repeat(" ", width+4))
			b.WriteString("hint: ")
			b.WriteString(hint)
			b.WriteByte('\n')
		}
	}

	return b.String()
}
