package signature

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/wippyai/contract/descriptor"
	"github.com/wippyai/contract/diag"
)

type user struct {
	ID   uint32
	Name string
}

type errNotFound struct{}

func (errNotFound) Error() string { return "not found" }

type store struct {
	users []user
}

func (s *store) Create(u user) (uint32, error)                   { return 0, nil }
func (s store) Count() int                                      { return len(s.users) }
func (s *store) Find(id uint32) (descriptor.Option[user], error) { return descriptor.None[user](), nil }
func (s *store) Rename(id uint32, name *string) error           { return nil }
func (s *store) Tags(prefix string, tags ...string) []string    { return tags }
func (s *store) Touch() errNotFound                             { return errNotFound{} }

type closer interface {
	Close() error
}

func TestReflect_MethodSet(t *testing.T) {
	set := Reflect(reflect.TypeFor[store]())

	if set.Type() != reflect.TypeFor[store]() {
		t.Errorf("Type = %v", set.Type())
	}
	if Reflect(reflect.TypeFor[*store]()) != set {
		t.Error("Reflect(*T) should share the memoized set of T")
	}

	create, ok := set.Lookup("Create")
	if !ok {
		t.Fatal("Create not found")
	}
	if !create.PointerReceiver {
		t.Error("Create should have a pointer receiver")
	}
	if len(create.Params) != 2 {
		t.Fatalf("Create params = %d, want 2 (receiver + user)", len(create.Params))
	}
	if create.Params[0].Kind() != descriptor.KindPointer {
		t.Errorf("pointer receiver described as %v", create.Params[0].Kind())
	}
	if !create.Return.Fallible {
		t.Error("Create should be fallible")
	}

	count, _ := set.Lookup("Count")
	if count.PointerReceiver {
		t.Error("Count has a value receiver")
	}
	if count.Params[0].Kind() != descriptor.KindStruct {
		t.Errorf("value receiver described as %v", count.Params[0].Kind())
	}

	tags, _ := set.Lookup("Tags")
	if !tags.Variadic {
		t.Error("Tags should be variadic")
	}
	if !strings.Contains(tags.String(), "...string") {
		t.Errorf("String = %q", tags.String())
	}

	if _, ok := set.Func("Find"); !ok {
		t.Error("Func(Find) not found")
	}
	if len(set.Names()) != 6 {
		t.Errorf("Names = %v", set.Names())
	}
}

func TestReflect_Interface(t *testing.T) {
	set := Reflect(reflect.TypeFor[closer]())
	m, ok := set.Lookup("Close")
	if !ok {
		t.Fatal("Close not found")
	}
	if len(m.Params) != 1 || m.PointerReceiver {
		t.Errorf("interface method = %+v", m)
	}
	if set.TypeName() != reflect.TypeFor[closer]().String() {
		t.Errorf("TypeName = %q", set.TypeName())
	}
}

func TestMatch(t *testing.T) {
	set := Reflect(reflect.TypeFor[store]())
	u32 := descriptor.For[uint32]()
	usr := descriptor.For[user]()

	tests := []struct {
		name   string
		method string
		sig    Signature
		kinds  []diag.Kind
	}{
		{"satisfied", "Create", New(descriptor.Fallible(u32), usr), nil},
		{"value receiver", "Count", New(descriptor.Direct(descriptor.For[int]())), nil},
		{"optional payload", "Find", New(descriptor.Fallible(descriptor.For[descriptor.Option[user]]()), u32), nil},
		{"missing", "Delete", New(descriptor.Fallible(descriptor.Void), u32), []diag.Kind{diag.KindMissingMethod}},
		{"arity", "Create", New(descriptor.Fallible(u32), usr, u32), []diag.Kind{diag.KindWrongParamCount}},
		{"one param", "Create", New(descriptor.Fallible(u32), u32), []diag.Kind{diag.KindParamTypeMismatch}},
		{
			"every param and return",
			"Rename",
			New(descriptor.Direct(descriptor.Void), descriptor.For[uint64](), descriptor.For[string]()),
			[]diag.Kind{diag.KindParamTypeMismatch, diag.KindParamTypeMismatch, diag.KindReturnTypeMismatch},
		},
		{"direct vs fallible", "Count", New(descriptor.Fallible(descriptor.For[int]())), []diag.Kind{diag.KindReturnTypeMismatch}},
		{"custom error domain", "Touch", New(descriptor.Fallible(descriptor.Void)), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(tt.method, tt.sig, set)
			if len(got) != len(tt.kinds) {
				t.Fatalf("got %d incompatibilities, want %d:\n%s", len(got), len(tt.kinds), got.Render("", ""))
			}
			for i, k := range tt.kinds {
				if got[i].Kind() != k {
					t.Errorf("[%d] kind = %v, want %v", i, got[i].Kind(), k)
				}
			}
		})
	}
}

func TestMatch_ParamIndexes(t *testing.T) {
	set := Reflect(reflect.TypeFor[store]())
	sig := New(descriptor.Fallible(descriptor.Void), descriptor.For[uint64](), descriptor.For[*uint64]())

	got := Match("Rename", sig, set)
	if len(got) != 2 {
		t.Fatalf("got %d, want 2", len(got))
	}
	for i, inc := range got {
		pm, ok := inc.(diag.ParamTypeMismatch)
		if !ok {
			t.Fatalf("[%d] is %T", i, inc)
		}
		if pm.Index != i+1 {
			t.Errorf("[%d] Index = %d, want %d", i, pm.Index, i+1)
		}
	}

	wc := Match("Create", New(descriptor.Direct(descriptor.Void)), set)[0].(diag.WrongParamCount)
	if wc.Expected != 1 || wc.Got != 2 {
		t.Errorf("WrongParamCount = %+v", wc)
	}
}

func TestFromFunc(t *testing.T) {
	sig := For[func(user) (uint32, error)]()
	if len(sig.Params) != 1 || !sig.Return.Fallible {
		t.Errorf("sig = %s", sig)
	}
	if sig.Arity() != 2 {
		t.Errorf("Arity = %d, want 2", sig.Arity())
	}
	if !strings.HasPrefix(sig.String(), "func(") || !strings.HasSuffix(sig.String(), "(uint32, error)") {
		t.Errorf("String = %q", sig.String())
	}

	if got := For[func()]().String(); got != "func()" {
		t.Errorf("String = %q, want func()", got)
	}

	_, err := FromFunc(reflect.TypeFor[int]())
	if err == nil {
		t.Fatal("FromFunc(int) should fail")
	}
	var target interface{ Unwrap() error }
	if !errors.As(err, &target) {
		t.Errorf("error %T should be a structured error", err)
	}
}

func TestFor_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("For[int] should panic")
		}
	}()
	For[int]()
}
