package loader

import (
	stderrors "errors"
	"testing"

	"github.com/wippyai/contract/descriptor"
	"github.com/wippyai/contract/errors"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		expr string
		want string
	}{
		{"u32", "uint32"},
		{"s8", "int8"},
		{"char", "int32"},
		{"f64", "float64"},
		{"byte", "uint8"},
		{"uint16", "uint16"},
		{"string", "string"},
		{"list<string>", "[]string"},
		{"own<u8>", "*uint8"},
		{"ptr<u8>", "*uint8"},
		{"borrow<u8>", "*const uint8"},
		{"many<u8>", "[*]uint8"},
		{"option<s64>", "?int64"},
		{"tuple<u8, string>", "tuple<uint8, string>"},
		{"(bool, f64)", "tuple<bool, float64>"},
		{"array<u16, 4>", "[4]uint16"},
		{" list< option< tuple<u32, list<string>> > > ", "[]?tuple<uint32, []string>"},
		{"error", "error"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			d, err := ParseType(tt.expr)
			if err != nil {
				t.Fatalf("ParseType(%q) error = %v", tt.expr, err)
			}
			if got := d.String(); got != tt.want {
				t.Errorf("ParseType(%q) = %q, want %q", tt.expr, got, tt.want)
			}
		})
	}
}

func TestParseType_Errors(t *testing.T) {
	tests := []struct {
		name string
		expr string
		kind errors.Kind
	}{
		{"empty", "", errors.KindInvalidData},
		{"result outside return", "result<u32>", errors.KindInvalidData},
		{"too many args", "list<u8, u16>", errors.KindInvalidData},
		{"bad array length", "array<u8, x>", errors.KindInvalidData},
		{"negative array length", "array<u8, -1>", errors.KindInvalidData},
		{"empty tuple", "tuple<>", errors.KindInvalidData},
		{"unknown constructor", "map<u8>", errors.KindInvalidData},
		{"unknown name", "Widget", errors.KindNotFound},
		{"unknown nested name", "list<Widget>", errors.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseType(tt.expr)
			if err == nil {
				t.Fatalf("ParseType(%q) expected error", tt.expr)
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("error type = %T, want *errors.Error", err)
			}
			if e.Kind != tt.kind {
				t.Errorf("Kind = %s, want %s", e.Kind, tt.kind)
			}
			if e.Phase != errors.PhaseParse {
				t.Errorf("Phase = %s, want %s", e.Phase, errors.PhaseParse)
			}
		})
	}
}

func TestParseReturn(t *testing.T) {
	tests := []struct {
		expr     string
		fallible bool
		payload  string
		domain   string
	}{
		{"", false, "void", ""},
		{"()", false, "void", ""},
		{"u32", false, "uint32", ""},
		{"(u32, string)", false, "tuple<uint32, string>", ""},
		{"result", true, "void", ""},
		{"result<u32>", true, "uint32", ""},
		{"result<_, error>", true, "void", "error"},
		{"result<option<string>, error>", true, "?string", "error"},
		{"result<u32, _>", true, "uint32", ""},
	}

	l := New()
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			r, err := l.ParseReturn(tt.expr)
			if err != nil {
				t.Fatalf("ParseReturn(%q) error = %v", tt.expr, err)
			}
			if r.Fallible != tt.fallible {
				t.Errorf("Fallible = %v, want %v", r.Fallible, tt.fallible)
			}
			if got := r.PayloadOrVoid().String(); got != tt.payload {
				t.Errorf("payload = %q, want %q", got, tt.payload)
			}
			var domain string
			if r.Domain != nil {
				domain = r.Domain.String()
			}
			if domain != tt.domain {
				t.Errorf("domain = %q, want %q", domain, tt.domain)
			}
		})
	}
}

func TestParseReturn_Errors(t *testing.T) {
	l := New()
	for _, expr := range []string{"result<>", "result<u8, u8, u8>", "result<Widget>", "result<u8, Widget>"} {
		if _, err := l.ParseReturn(expr); err == nil {
			t.Errorf("ParseReturn(%q) expected error", expr)
		}
	}
}

func TestParseType_Compatible(t *testing.T) {
	type pair struct {
		A uint8
		B string
	}

	d, err := ParseType("list<option<u8>>")
	if err != nil {
		t.Fatal(err)
	}
	if !descriptor.Compatible(d, descriptor.For[[]descriptor.Option[uint8]]()) {
		t.Errorf("%s should be compatible with []Option[uint8]", d)
	}
	if descriptor.Compatible(d, descriptor.For[[]uint8]()) {
		t.Errorf("%s should not be compatible with []uint8", d)
	}

	tuple, err := ParseType("tuple<u8, string>")
	if err != nil {
		t.Fatal(err)
	}
	if descriptor.Compatible(tuple, descriptor.For[pair]()) {
		t.Errorf("%s should not be compatible with a named struct", tuple)
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"u8", []string{"u8"}},
		{"u8, string", []string{"u8", "string"}},
		{"list<tuple<a, b>>, (c, d), e", []string{"list<tuple<a, b>>", "(c, d)", "e"}},
		{"a,", []string{"a", ""}},
	}

	for _, tt := range tests {
		got := splitArgs(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("splitArgs(%q) = %q, want %q", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitArgs(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestStripParamName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"u32", "u32"},
		{"id: u32", "u32"},
		{"user-id:list<u8>", "list<u8>"},
		{"max_len : u16", "u16"},
		{"list<a: b>", "list<a: b>"},
	}

	for _, tt := range tests {
		if got := stripParamName(tt.in); got != tt.want {
			t.Errorf("stripParamName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGoName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"id", "Id"},
		{"user-id", "UserId"},
		{"user_id", "UserId"},
		{"Name", "Name"},
		{"max-retry-count", "MaxRetryCount"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := GoName(tt.in); got != tt.want {
			t.Errorf("GoName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
