package inspect

import (
	"context"
	stderrors "errors"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/wippyai/contract/descriptor"
	"github.com/wippyai/contract/diag"
	"github.com/wippyai/contract/errors"
	"github.com/wippyai/contract/loader"
	"github.com/wippyai/contract/spec"
)

const storeSrc = `package store

type UserID uint32

type Status uint8

const (
	Active Status = iota
	Banned
)

const Unrelated = 7

func (Status) EnumVariants() {}

type User struct {
	ID   UserID
	Name string
	Tags []string
	Next *User
}

type Point struct {
	X, Y  int32
	Label string
	Raw   []byte
	Grid  [2][2]float64
	Any   interface{}
}

type Blob []byte

type MemRepo struct {
	users map[UserID]User
}

func (r *MemRepo) Create(u User) (UserID, error) { return u.ID, nil }

func (r MemRepo) Count() int { return len(r.users) }

func (r *MemRepo) Tag(id UserID, tags ...string) error { return nil }

func (r *MemRepo) hidden() {}

type Reader interface {
	Count() int
}

type Box[T any] struct{ V T }
`

const storeContracts = `
types:
  UserID: {primitive: example.com/store.UserID}
  User:
    record:
      - {name: ID, type: UserID}
      - {name: Name, type: string}
      - {name: Tags, type: "list<string>"}
      - {name: Next, type: "own<User>"}
contracts:
  - name: Counter
    methods:
      - {name: Count, returns: int}
  - name: Store
    embeds: [Counter]
    methods:
      - {name: Create, params: [User], returns: "result<UserID, error>"}
  - name: Deleter
    methods:
      - {name: Delete, params: [UserID], returns: result}
`

func checkSource(t *testing.T, path, src string) *Package {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "src.go", src, 0)
	if err != nil {
		t.Fatal(err)
	}
	conf := types.Config{}
	pkg, err := conf.Check(path, fset, []*ast.File{f}, nil)
	if err != nil {
		t.Fatal(err)
	}
	return FromTypes(pkg)
}

func lookupType(t *testing.T, p *Package, name string) types.Type {
	t.Helper()
	obj := p.Types().Scope().Lookup(name)
	if obj == nil {
		t.Fatalf("%s not declared", name)
	}
	return obj.Type()
}

func TestMethodSet(t *testing.T) {
	p := checkSource(t, "example.com/store", storeSrc)

	typ, err := p.MethodSet("MemRepo")
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(typ.Names(), ","); got != "Count,Create,Tag" {
		t.Errorf("Names() = %q, want Count,Create,Tag", got)
	}
	if typ.TypeName() != "store.MemRepo" {
		t.Errorf("TypeName() = %q, want store.MemRepo", typ.TypeName())
	}
	if typ.IsInterface() {
		t.Error("MemRepo is not an interface")
	}

	tests := []struct {
		name     string
		pointer  bool
		variadic bool
		str      string
	}{
		{"Count", false, false, "func (example.com/store.MemRepo) Count() int"},
		{"Create", true, false, "func (*example.com/store.MemRepo) Create(example.com/store.User) (example.com/store.UserID, error)"},
		{"Tag", true, true, "func (*example.com/store.MemRepo) Tag(example.com/store.UserID, ...string) error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := typ.Lookup(tt.name)
			if !ok {
				t.Fatalf("%s missing", tt.name)
			}
			if m.PointerReceiver != tt.pointer {
				t.Errorf("PointerReceiver = %v, want %v", m.PointerReceiver, tt.pointer)
			}
			if m.Variadic != tt.variadic {
				t.Errorf("Variadic = %v, want %v", m.Variadic, tt.variadic)
			}
			if got := m.String(); got != tt.str {
				t.Errorf("String() = %q, want %q", got, tt.str)
			}
			if _, ok := typ.Func(tt.name); !ok {
				t.Errorf("Func(%s) missing", tt.name)
			}
		})
	}

	if _, ok := typ.Lookup("hidden"); ok {
		t.Error("unexported method should be skipped")
	}
}

func TestMethodSet_Interface(t *testing.T) {
	p := checkSource(t, "example.com/store", storeSrc)

	typ, err := p.MethodSet("Reader")
	if err != nil {
		t.Fatal(err)
	}
	if !typ.IsInterface() {
		t.Error("Reader should be an interface")
	}
	m, ok := typ.Lookup("Count")
	if !ok {
		t.Fatal("Count missing")
	}
	if m.PointerReceiver {
		t.Error("interface methods take the receiver by value")
	}
	if got := m.Params[0].String(); got != "example.com/store.Reader" {
		t.Errorf("receiver = %q", got)
	}
}

func TestMethodSet_Errors(t *testing.T) {
	p := checkSource(t, "example.com/store", storeSrc)

	tests := []struct {
		name string
		kind errors.Kind
	}{
		{"Missing", errors.KindNotFound},
		{"Active", errors.KindTypeMismatch},
		{"Box", errors.KindUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.MethodSet(tt.name)
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("error = %v, want *errors.Error", err)
			}
			if e.Kind != tt.kind || e.Phase != errors.PhaseInspect {
				t.Errorf("error = %s/%s, want inspect/%s", e.Phase, e.Kind, tt.kind)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	p := checkSource(t, "example.com/store", storeSrc)

	tests := []struct {
		name string
		kind descriptor.Kind
		str  string
	}{
		{"UserID", descriptor.KindPrimitive, "example.com/store.UserID"},
		{"Status", descriptor.KindEnum, "example.com/store.Status"},
		{"User", descriptor.KindStruct, "example.com/store.User"},
		{"Blob", descriptor.KindPointer, "[]uint8"},
		{"Reader", descriptor.KindOpaque, "example.com/store.Reader"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Describe(lookupType(t, p, tt.name))
			if d.Kind() != tt.kind {
				t.Errorf("Kind() = %s, want %s", d.Kind(), tt.kind)
			}
			if d.String() != tt.str {
				t.Errorf("String() = %q, want %q", d.String(), tt.str)
			}
		})
	}

	status := Describe(lookupType(t, p, "Status")).(*descriptor.Enum)
	want := []descriptor.Variant{{Name: "Active", Value: 0}, {Name: "Banned", Value: 1}}
	if !reflect.DeepEqual(status.Variants, want) {
		t.Errorf("Status variants = %v, want %v", status.Variants, want)
	}

	repo := Describe(lookupType(t, p, "MemRepo")).(*descriptor.Struct)
	if got := repo.Fields[0].Type.String(); got != "map[store.UserID]store.User" {
		t.Errorf("map field = %q", got)
	}

	if Describe(nil) != descriptor.Void {
		t.Error("Describe(nil) should be Void")
	}
}

// point mirrors Point in storeSrc.
type point struct {
	X, Y  int32
	Label string
	Raw   []byte
	Grid  [2][2]float64
	Any   interface{}
}

func TestDescribe_MatchesReflection(t *testing.T) {
	p := checkSource(t, "example.com/store", storeSrc)

	static := Describe(lookupType(t, p, "Point"))
	reflected := descriptor.For[point]()
	if !descriptor.Compatible(static, reflected) {
		t.Errorf("static %s should be compatible with reflected %s", static, reflected)
	}
}

const optionSrc = `package descriptor

type Option[T any] struct {
	value T
	ok    bool
}

type Holder struct {
	A Option[int32]
	B Option[*Holder]
}
`

type holder struct {
	A descriptor.Option[int32]
	B descriptor.Option[*holder]
}

func TestDescribe_Option(t *testing.T) {
	p := checkSource(t, optionPath, optionSrc)

	d := Describe(lookupType(t, p, "Holder"))
	s := d.(*descriptor.Struct)
	if s.Fields[0].Type.Kind() != descriptor.KindOptional {
		t.Errorf("A = %s, want optional", s.Fields[0].Type)
	}
	if !descriptor.Compatible(d, descriptor.For[holder]()) {
		t.Errorf("%s should be compatible with holder", d)
	}
}

func TestVerify_Static(t *testing.T) {
	p := checkSource(t, "example.com/store", storeSrc)
	set, err := loader.Parse([]byte(storeContracts))
	if err != nil {
		t.Fatal(err)
	}
	typ, err := p.MethodSet("MemRepo")
	if err != nil {
		t.Fatal(err)
	}

	store, _ := set.Contract("Store")
	if diags := spec.Verify(store, typ); len(diags) != 0 {
		t.Errorf("MemRepo should satisfy Store:\n%s", diags.Render("Store", typ.TypeName()))
	}

	deleter, _ := set.Contract("Deleter")
	diags := spec.Verify(deleter, typ)
	if len(diags) != 1 || diags[0].Kind() != diag.KindMissingMethod {
		t.Errorf("Deleter diagnostics = %v, want one missing method", diags)
	}
}

func TestLoadOne(t *testing.T) {
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go command not available")
	}

	dir := t.TempDir()
	write := func(name, content string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	write("go.mod", "module example.com/store\n\ngo 1.22\n")
	write("store.go", storeSrc)

	pkg, err := LoadOne(context.Background(), dir, ".")
	if err != nil {
		t.Fatalf("LoadOne() error = %v", err)
	}
	if pkg.Path() != "example.com/store" || pkg.Name() != "store" {
		t.Errorf("package = %s (%s)", pkg.Path(), pkg.Name())
	}
	typ, err := pkg.MethodSet("MemRepo")
	if err != nil {
		t.Fatal(err)
	}
	if len(typ.Names()) != 3 {
		t.Errorf("Names() = %v", typ.Names())
	}

	write("broken.go", "package store\n\nfunc broken() int { return \"x\" }\n")
	_, err = LoadOne(context.Background(), dir, ".")
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Phase != errors.PhaseInspect {
		t.Errorf("broken package error = %v, want inspect error", err)
	}
}
