package inspect

import (
	"context"
	"go/types"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/go/packages"

	"github.com/wippyai/contract/descriptor"
	"github.com/wippyai/contract/errors"
	"github.com/wippyai/contract/signature"
)

const loadMode = packages.NeedName |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedSyntax |
	packages.NeedImports |
	packages.NeedDeps

// Package is a type-checked Go package.
type Package struct {
	types *types.Package
}

// Load type-checks the packages matching patterns, resolved from dir.
// Any package error fails the whole load.
func Load(ctx context.Context, dir string, patterns ...string) ([]*Package, error) {
	cfg := &packages.Config{
		Context: ctx,
		Mode:    loadMode,
		Dir:     dir,
		Env:     append(os.Environ(), "GOWORK=off"),
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseInspect, errors.KindInvalidInput, err, "load packages")
	}

	var msgs []string
	out := make([]*Package, 0, len(pkgs))
	for _, p := range pkgs {
		for _, e := range p.Errors {
			msgs = append(msgs, p.PkgPath+": "+e.Msg)
		}
		out = append(out, &Package{types: p.Types})
	}
	if len(msgs) > 0 {
		return nil, errors.New(errors.PhaseInspect, errors.KindInvalidInput).
			Detail("package errors:\n  %s", strings.Join(msgs, "\n  ")).
			Build()
	}

	Logger().Debug("packages loaded",
		zap.String("dir", dir),
		zap.Strings("patterns", patterns),
		zap.Int("count", len(out)))
	return out, nil
}

// LoadOne loads exactly one package.
func LoadOne(ctx context.Context, dir, pattern string) (*Package, error) {
	pkgs, err := Load(ctx, dir, pattern)
	if err != nil {
		return nil, err
	}
	if len(pkgs) != 1 {
		return nil, errors.New(errors.PhaseInspect, errors.KindInvalidInput).
			Value(pattern).
			Detail("pattern %q matched %d packages, want 1", pattern, len(pkgs)).
			Build()
	}
	return pkgs[0], nil
}

// FromTypes wraps an already type-checked package.
func FromTypes(p *types.Package) *Package {
	return &Package{types: p}
}

// Path returns the import path.
func (p *Package) Path() string { return p.types.Path() }

// Name returns the package name.
func (p *Package) Name() string { return p.types.Name() }

// Types returns the underlying go/types package.
func (p *Package) Types() *types.Package { return p.types }

// MethodSet returns the method set of the named type called name.
func (p *Package) MethodSet(name string) (*Type, error) {
	obj := p.types.Scope().Lookup(name)
	if obj == nil {
		return nil, errors.New(errors.PhaseInspect, errors.KindNotFound).
			Path(p.Path(), name).
			Detail("type %q not found in package %s", name, p.Path()).
			Build()
	}
	tn, ok := obj.(*types.TypeName)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseInspect, []string{p.Path(), name}, obj.String(), "type name")
	}
	named, ok := types.Unalias(tn.Type()).(*types.Named)
	if !ok {
		return nil, errors.TypeMismatch(errors.PhaseInspect, []string{p.Path(), name}, tn.Type().String(), "named type")
	}
	if named.TypeParams().Len() > 0 {
		return nil, errors.Unsupported(errors.PhaseInspect, "generic type "+name)
	}
	return newType(p, named), nil
}

// Type is the method set of a named type found by static inspection.
// It implements signature.MethodSet.
//
// For a concrete type T it covers the methods of *T; PointerReceiver tells
// value and pointer receivers apart. For an interface type it covers the
// interface's methods with a by-value receiver. Unexported methods are
// skipped.
type Type struct {
	pkg     *Package
	named   *types.Named
	methods map[string]signature.Method
	funcs   map[string]*types.Func
	order   []string
}

var _ signature.MethodSet = (*Type)(nil)

func newType(p *Package, named *types.Named) *Type {
	t := &Type{
		pkg:     p,
		named:   named,
		methods: make(map[string]signature.Method),
		funcs:   make(map[string]*types.Func),
	}

	if iface, ok := named.Underlying().(*types.Interface); ok {
		recv := Describe(named)
		for i := 0; i < iface.NumMethods(); i++ {
			fn := iface.Method(i)
			if fn.Exported() {
				t.add(fn, recv, false)
			}
		}
		return t
	}

	ptr := types.NewPointer(named)
	valueSet := types.NewMethodSet(named)
	ptrSet := types.NewMethodSet(ptr)
	for i := 0; i < ptrSet.Len(); i++ {
		fn := ptrSet.At(i).Obj().(*types.Func)
		if !fn.Exported() {
			continue
		}
		if valueSet.Lookup(fn.Pkg(), fn.Name()) != nil {
			t.add(fn, Describe(named), false)
		} else {
			t.add(fn, Describe(ptr), true)
		}
	}
	return t
}

func (t *Type) add(fn *types.Func, recv descriptor.Descriptor, pointerRecv bool) {
	sig := fn.Type().(*types.Signature)
	params := make([]descriptor.Descriptor, 0, sig.Params().Len()+1)
	params = append(params, recv)
	for i := 0; i < sig.Params().Len(); i++ {
		params = append(params, Describe(sig.Params().At(i).Type()))
	}
	t.methods[fn.Name()] = signature.Method{
		Name:            fn.Name(),
		Params:          params,
		Return:          ReturnOf(sig.Results()),
		PointerReceiver: pointerRecv,
		Variadic:        sig.Variadic(),
	}
	t.funcs[fn.Name()] = fn
	t.order = append(t.order, fn.Name())
}

// Name returns the unqualified type name.
func (t *Type) Name() string { return t.named.Obj().Name() }

// Package returns the package declaring the type.
func (t *Type) Package() *Package { return t.pkg }

// Named returns the go/types representation.
func (t *Type) Named() *types.Named { return t.named }

// IsInterface reports whether the type is an interface.
func (t *Type) IsInterface() bool {
	return types.IsInterface(t.named)
}

// TypeName implements signature.MethodSet. It matches reflect's
// package-qualified spelling.
func (t *Type) TypeName() string {
	return t.pkg.Name() + "." + t.Name()
}

// Lookup implements signature.MethodSet.
func (t *Type) Lookup(name string) (signature.Method, bool) {
	m, ok := t.methods[name]
	return m, ok
}

// Func returns the declared method called name.
func (t *Type) Func(name string) (*types.Func, bool) {
	fn, ok := t.funcs[name]
	return fn, ok
}

// Names returns method names sorted by name.
func (t *Type) Names() []string {
	return t.order
}
