package contract

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"unsafe"

	"github.com/wippyai/contract/descriptor"
	"github.com/wippyai/contract/diag"
	"github.com/wippyai/contract/dispatch"
	"github.com/wippyai/contract/errors"
)

type User struct {
	ID   uint32
	Name string
}

type memRepo struct {
	users map[uint32]User
	next  uint32
}

func newMemRepo() *memRepo {
	return &memRepo{users: make(map[uint32]User)}
}

func (r *memRepo) Create(u User) (uint32, error) {
	r.next++
	u.ID = r.next
	r.users[u.ID] = u
	return u.ID, nil
}

func (r *memRepo) FindByID(id uint32) (Option[User], error) {
	u, ok := r.users[id]
	if !ok {
		return None[User](), nil
	}
	return Some(u), nil
}

var userRepository = MustDefine("UserRepository", []Method{
	MethodOf[func(User) (uint32, error)]("Create"),
	MethodOf[func(uint32) (Option[User], error)]("FindByID"),
})

func TestUserRepository_EndToEnd(t *testing.T) {
	if diags := Verify[memRepo](userRepository); !diags.OK() {
		t.Fatalf("memRepo should satisfy UserRepository:\n%s", diags.Render("UserRepository", "memRepo"))
	}

	repo := newMemRepo()
	h, err := MakeHandleAuto(userRepository, repo)
	if err != nil {
		t.Fatalf("MakeHandleAuto: %v", err)
	}

	for want := uint32(1); want <= 3; want++ {
		id, err := h.Call("Create", User{ID: 0, Name: fmt.Sprintf("user%d", want)})
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if id != want {
			t.Errorf("Create id = %v, want %d", id, want)
		}
	}

	got, err := h.Call("FindByID", uint32(1))
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	u, ok := got.(Option[User]).Get()
	if !ok || u != (User{ID: 1, Name: "user1"}) {
		t.Errorf("FindByID(1) = %v", got)
	}

	got, _ = h.Call("FindByID", uint32(999))
	if got.(Option[User]).IsSome() {
		t.Errorf("FindByID(999) = %v, want none", got)
	}
}

type errSetA struct{}

func (errSetA) Error() string { return "a" }

type errSetB struct{ code int }

func (e *errSetB) Error() string { return fmt.Sprint(e.code) }

type implA struct{}

func (implA) Run() errSetA { return errSetA{} }

type implB struct{}

func (implB) Run() *errSetB { return nil }

type implAny struct{}

func (implAny) Run() error { return nil }

type implDirect struct{}

func (implDirect) Run() {}

func TestVerify_FallibleIgnoresErrorDomain(t *testing.T) {
	runner := MustDefine("Runner", []Method{MethodOf[func() error]("Run")})

	if d := Verify[implA](runner); !d.OK() {
		t.Errorf("implA: %v", d)
	}
	if d := Verify[implB](runner); !d.OK() {
		t.Errorf("implB: %v", d)
	}
	if d := Verify[implAny](runner); !d.OK() {
		t.Errorf("implAny: %v", d)
	}
	if d := Verify[implDirect](runner); d.Count(diag.KindReturnTypeMismatch) != 1 {
		t.Errorf("implDirect should mismatch the return, got %v", d)
	}
}

func TestMakeHandleAuto_ErrorDomains(t *testing.T) {
	runner := MustDefine("Runner", []Method{MethodOf[func() error]("Run")})

	tests := []struct {
		name    string
		handle  func() (Handle, error)
		wantErr string
	}{
		{"error value", func() (Handle, error) { return MakeHandleAuto(runner, &implA{}) }, "a"},
		{"typed nil", func() (Handle, error) { return MakeHandleAuto(runner, &implB{}) }, ""},
		{"error interface", func() (Handle, error) { return MakeHandleAuto(runner, &implAny{}) }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := tt.handle()
			if err != nil {
				t.Fatalf("MakeHandleAuto: %v", err)
			}
			_, err = h.Call("Run")
			switch {
			case tt.wantErr == "" && err != nil:
				t.Errorf("Run() error = %#v, want nil", err)
			case tt.wantErr != "" && (err == nil || err.Error() != tt.wantErr):
				t.Errorf("Run() error = %v, want %q", err, tt.wantErr)
			}

			run, err := dispatch.Slot[func(unsafe.Pointer) error](h.Table(), "Run")
			if err != nil {
				t.Fatalf("Slot: %v", err)
			}
			if got := run(h.Data()); (got == nil) != (tt.wantErr == "") {
				t.Errorf("slot Run() = %#v", got)
			}
		})
	}
}

func TestAssertSatisfied(t *testing.T) {
	if err := AssertSatisfied[memRepo](userRepository); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err := AssertSatisfied[implAny](userRepository)
	if err == nil {
		t.Fatal("implAny does not satisfy UserRepository")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseVerify, Kind: errors.KindUnsatisfied}) {
		t.Errorf("err = %v", err)
	}

	var diags diag.List
	if !stderrors.As(err, &diags) || diags.Count(diag.KindMissingMethod) != 2 {
		t.Errorf("diagnostics = %v", diags)
	}
	if !strings.Contains(err.Error(), `missing method "Create"`) {
		t.Errorf("report missing from error: %s", err)
	}
}

func TestMakeHandleChecked(t *testing.T) {
	table, err := dispatch.NewTable(userRepository,
		func(p unsafe.Pointer, u User) (uint32, error) {
			u.Name = strings.ToUpper(u.Name)
			return (*memRepo)(p).Create(u)
		},
		func(p unsafe.Pointer, id uint32) (Option[User], error) {
			return (*memRepo)(p).FindByID(id)
		},
	)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	repo := newMemRepo()
	h, err := MakeHandleChecked(userRepository, repo, table)
	if err != nil {
		t.Fatalf("MakeHandleChecked: %v", err)
	}
	if _, err := h.Call("Create", User{Name: "ada"}); err != nil {
		t.Fatal(err)
	}
	if repo.users[1].Name != "ADA" {
		t.Errorf("hand-written adapter not used: %+v", repo.users[1])
	}

	if _, err := MakeHandleChecked(userRepository, &implAny{}, table); err == nil {
		t.Error("unsatisfied type should be rejected before the table is used")
	}
	if _, err := MakeHandleChecked[memRepo](userRepository, nil, table); err == nil {
		t.Error("nil implementation should be rejected")
	}
	if _, err := MakeHandleChecked(userRepository, repo, nil); err == nil {
		t.Error("nil table should be rejected")
	}

	other := MustDefine("Other", []Method{MethodOf[func(User) (uint32, error)]("Create")})
	foreign, _ := dispatch.NewTable(other, func(p unsafe.Pointer, u User) (uint32, error) { return 0, nil })
	if _, err := MakeHandleChecked(userRepository, repo, foreign); err == nil {
		t.Error("table of another contract should be rejected")
	}

	type otherRepo struct{ memRepo }
	synthesized := dispatch.MustSynthesize(userRepository, reflect.TypeFor[otherRepo]())
	if _, err := MakeHandleChecked(userRepository, repo, synthesized); err == nil {
		t.Error("table synthesized for another type should be rejected")
	}
}

func TestMustHandle(t *testing.T) {
	h := MustHandle(userRepository, newMemRepo())
	if h.IsZero() {
		t.Fatal("handle should be set")
	}

	defer func() {
		if recover() == nil {
			t.Error("MustHandle should panic for an unsatisfied type")
		}
	}()
	MustHandle(userRepository, &implAny{})
}

func TestMakeHandleAuto_Errors(t *testing.T) {
	if _, err := MakeHandleAuto[memRepo](userRepository, nil); err == nil {
		t.Error("nil implementation should fail")
	}
	if _, err := MakeHandleAuto(userRepository, &implA{}); err == nil {
		t.Error("unsatisfied implementation should fail")
	}
}

func TestDefine(t *testing.T) {
	base, err := Define("Base", []Method{MethodOf[func() error]("Run")})
	if err != nil {
		t.Fatal(err)
	}
	top, err := Define("Top", nil, base)
	if err != nil {
		t.Fatal(err)
	}
	if !top.Has("Run") {
		t.Error("embedded method missing from Top")
	}
	if _, err := Define("", nil); err == nil {
		t.Error("empty name should fail")
	}
	if d := Verify[implAny](top); !d.OK() {
		t.Errorf("implAny should satisfy Top: %v", d)
	}
	if p := descriptor.For[Option[User]](); p.Kind() != descriptor.KindOptional {
		t.Errorf("Option[User] described as %v", p.Kind())
	}
}
