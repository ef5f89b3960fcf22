package loader

import (
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/contract/descriptor"
	"github.com/wippyai/contract/errors"
)

func witName(s string) *string { return &s }

func TestFromWIT_Primitives(t *testing.T) {
	tests := []struct {
		typ  wit.Type
		want string
	}{
		{nil, "void"},
		{wit.Bool{}, "bool"},
		{wit.U8{}, "uint8"},
		{wit.U16{}, "uint16"},
		{wit.U32{}, "uint32"},
		{wit.U64{}, "uint64"},
		{wit.S8{}, "int8"},
		{wit.S16{}, "int16"},
		{wit.S32{}, "int32"},
		{wit.S64{}, "int64"},
		{wit.F32{}, "float32"},
		{wit.F64{}, "float64"},
		{wit.Char{}, "int32"},
		{wit.String{}, "string"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			d, err := FromWIT(tt.typ)
			if err != nil {
				t.Fatalf("FromWIT() error = %v", err)
			}
			if d.String() != tt.want {
				t.Errorf("FromWIT() = %q, want %q", d.String(), tt.want)
			}
		})
	}
}

func TestFromWIT_Record(t *testing.T) {
	point := &wit.TypeDef{
		Name: witName("point"),
		Kind: &wit.Record{
			Fields: []wit.Field{
				{Name: "x-pos", Type: wit.S32{}},
				{Name: "y-pos", Type: wit.S32{}},
			},
		},
	}

	d, err := FromWIT(point)
	if err != nil {
		t.Fatal(err)
	}
	s, ok := d.(*descriptor.Struct)
	if !ok {
		t.Fatalf("FromWIT() = %T, want *descriptor.Struct", d)
	}
	if s.Name != "point" || len(s.Fields) != 2 || s.Fields[0].Name != "XPos" || s.Fields[1].Name != "YPos" {
		t.Errorf("record = %+v", s)
	}

	type goPoint struct {
		XPos int32
		YPos int32
	}
	if !descriptor.Compatible(d, descriptor.For[goPoint]()) {
		t.Error("point should be compatible with goPoint")
	}

	raw, err := New(WithFieldNamer(func(s string) string { return s })).FromWIT(point)
	if err != nil {
		t.Fatal(err)
	}
	if got := raw.(*descriptor.Struct).Fields[0].Name; got != "x-pos" {
		t.Errorf("custom namer field = %q, want x-pos", got)
	}
}

func TestFromWIT_Enum(t *testing.T) {
	color := &wit.TypeDef{
		Name: witName("color"),
		Kind: &wit.Enum{Cases: []wit.EnumCase{{Name: "red"}, {Name: "dark-blue"}}},
	}
	d, err := FromWIT(color)
	if err != nil {
		t.Fatal(err)
	}
	e := d.(*descriptor.Enum)
	if len(e.Variants) != 2 ||
		e.Variants[0] != (descriptor.Variant{Name: "Red", Value: 0}) ||
		e.Variants[1] != (descriptor.Variant{Name: "DarkBlue", Value: 1}) {
		t.Errorf("variants = %v", e.Variants)
	}
}

func flagsDef(n int) *wit.TypeDef {
	flags := make([]wit.Flag, n)
	for i := range flags {
		flags[i] = wit.Flag{Name: "f" + string(rune('a'+i%26))}
	}
	return &wit.TypeDef{Kind: &wit.Flags{Flags: flags}}
}

func TestFromWIT_Flags(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "uint8"},
		{8, "uint8"},
		{9, "uint16"},
		{17, "uint32"},
		{33, "uint64"},
		{64, "uint64"},
	}
	for _, tt := range tests {
		d, err := FromWIT(flagsDef(tt.n))
		if err != nil {
			t.Fatalf("%d flags: %v", tt.n, err)
		}
		if d.String() != tt.want {
			t.Errorf("%d flags = %q, want %q", tt.n, d.String(), tt.want)
		}
	}

	if _, err := FromWIT(flagsDef(65)); err == nil {
		t.Error("65 flags should fail")
	}
}

func TestFromWIT_Containers(t *testing.T) {
	file := &wit.TypeDef{
		Name: witName("file"),
		Kind: &wit.Record{Fields: []wit.Field{{Name: "fd", Type: wit.U32{}}}},
	}

	tests := []struct {
		name string
		typ  wit.Type
		want string
	}{
		{"option", &wit.TypeDef{Kind: &wit.Option{Type: wit.String{}}}, "?string"},
		{"list", &wit.TypeDef{Kind: &wit.List{Type: wit.U8{}}}, "[]uint8"},
		{"tuple", &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.U32{}, wit.String{}}}}, "tuple<uint32, string>"},
		{"own", &wit.TypeDef{Kind: &wit.Own{Type: file}}, "*file"},
		{"borrow", &wit.TypeDef{Kind: &wit.Borrow{Type: file}}, "*const file"},
		{"own resource", &wit.TypeDef{Kind: &wit.Own{Type: nil}}, "*resource"},
		{"alias", &wit.TypeDef{Name: witName("id"), Kind: wit.U64{}}, "uint64"},
		{"named variant", &wit.TypeDef{Name: witName("shape"), Kind: &wit.Variant{Cases: []wit.Case{{Name: "circle"}}}}, "shape"},
		{"list of records", &wit.TypeDef{Kind: &wit.List{Type: file}}, "[]file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := FromWIT(tt.typ)
			if err != nil {
				t.Fatalf("FromWIT() error = %v", err)
			}
			if d.String() != tt.want {
				t.Errorf("FromWIT() = %q, want %q", d.String(), tt.want)
			}
		})
	}
}

func TestFromWIT_Errors(t *testing.T) {
	tests := []struct {
		name string
		typ  wit.Type
	}{
		{"result", &wit.TypeDef{Kind: &wit.Result{OK: wit.U32{}, Err: wit.String{}}}},
		{"anonymous variant", &wit.TypeDef{Kind: &wit.Variant{Cases: []wit.Case{{Name: "a"}}}}},
		{"nested result", &wit.TypeDef{Kind: &wit.List{Type: &wit.TypeDef{Kind: &wit.Result{}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromWIT(tt.typ)
			if e := errorOf(t, err); e.Kind != errors.KindUnsupported {
				t.Errorf("Kind = %s, want unsupported", e.Kind)
			}
		})
	}
}

func TestSignatureFromWIT(t *testing.T) {
	l := New()
	resultDef := &wit.TypeDef{Kind: &wit.Result{OK: wit.S32{}, Err: wit.String{}}}

	tests := []struct {
		name    string
		params  []wit.Type
		results []wit.Type
		want    string
	}{
		{"no results", []wit.Type{wit.U32{}}, nil, "func(uint32)"},
		{"single result", []wit.Type{wit.String{}, wit.Bool{}}, []wit.Type{wit.U64{}}, "func(string, bool) uint64"},
		{"multiple results", nil, []wit.Type{wit.U8{}, wit.String{}}, "func() tuple<uint8, string>"},
		{"result with error", []wit.Type{wit.String{}}, []wit.Type{resultDef}, "func(string) (int32, string)"},
		{"result without error", nil, []wit.Type{&wit.TypeDef{Kind: &wit.Result{OK: wit.U8{}}}}, "func() (uint8, error)"},
		{"empty result", nil, []wit.Type{&wit.TypeDef{Kind: &wit.Result{}}}, "func() error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := l.SignatureFromWIT(tt.params, tt.results)
			if err != nil {
				t.Fatalf("SignatureFromWIT() error = %v", err)
			}
			if got := sig.String(); got != tt.want {
				t.Errorf("SignatureFromWIT() = %q, want %q", got, tt.want)
			}
		})
	}
}
