package inspect

import (
	"go/constant"
	"go/types"
	"sort"
	"strings"

	"github.com/wippyai/contract/descriptor"
)

// optionPath is the import path of descriptor.Option; its instantiations
// describe as Optional.
const optionPath = "github.com/wippyai/contract/descriptor"

var errorInterface = types.Universe.Lookup("error").Type().Underlying().(*types.Interface)

// Describe returns the descriptor for a type-checked Go type, following the
// same rules as descriptor.Of does for reflected types.
//
// Reflection learns enum variants by calling EnumVariants. Statically the
// variants are the typed constants of the enum type in declaration order,
// so EnumVariants is expected to list them that way.
func Describe(t types.Type) descriptor.Descriptor {
	if t == nil {
		return descriptor.Void
	}
	return describe(t, make(map[types.Type]descriptor.Descriptor))
}

// IsError reports whether t implements the error interface.
func IsError(t types.Type) bool {
	return types.Implements(t, errorInterface)
}

// ReturnOf derives the return descriptor for a result tuple.
func ReturnOf(results *types.Tuple) descriptor.Return {
	n := results.Len()
	if n > 0 && IsError(results.At(n-1).Type()) {
		return descriptor.FallibleIn(payloadOf(results, n-1), Describe(results.At(n-1).Type()))
	}
	return descriptor.Direct(payloadOf(results, n))
}

func payloadOf(results *types.Tuple, n int) descriptor.Descriptor {
	elems := make([]descriptor.Descriptor, n)
	for i := range elems {
		elems[i] = Describe(results.At(i).Type())
	}
	return descriptor.Payload(elems)
}

// Identity mirrors descriptor.Identity: pkgpath.Name for named types, the
// type literal otherwise.
func Identity(t types.Type) string {
	switch v := types.Unalias(t).(type) {
	case *types.Named:
		obj := v.Obj()
		name := obj.Name()
		if args := v.TypeArgs(); args.Len() > 0 {
			parts := make([]string, args.Len())
			for i := range parts {
				parts[i] = types.TypeString(args.At(i), qualifyPath)
			}
			name += "[" + strings.Join(parts, ",") + "]"
		}
		if obj.Pkg() == nil {
			return name
		}
		return obj.Pkg().Path() + "." + name
	case *types.Basic:
		return basicName(v)
	case *types.Interface:
		if v.Empty() {
			return "interface {}"
		}
	}
	return types.TypeString(t, qualifyName)
}

func qualifyPath(p *types.Package) string { return p.Path() }
func qualifyName(p *types.Package) string { return p.Name() }

// basicName normalizes aliases such as byte and rune.
func basicName(b *types.Basic) string {
	if b.Kind() == types.UnsafePointer {
		return "unsafe.Pointer"
	}
	return types.Typ[b.Kind()].Name()
}

func describe(t types.Type, inProgress map[types.Type]descriptor.Descriptor) descriptor.Descriptor {
	t = types.Unalias(t)
	if d, ok := inProgress[t]; ok {
		return d
	}

	named, _ := t.(*types.Named)
	if named != nil && isOption(named) {
		o := &descriptor.Optional{}
		inProgress[t] = o
		o.Elem = describe(named.TypeArgs().At(0), inProgress)
		return o
	}

	switch u := t.Underlying().(type) {
	case *types.Basic:
		switch {
		case u.Kind() == types.UnsafePointer:
			return &descriptor.Opaque{Identity: Identity(t)}
		case u.Info()&types.IsInteger != 0 && u.Kind() != types.Uintptr:
			if named != nil {
				if variants, ok := enumVariants(named); ok {
					return &descriptor.Enum{Name: Identity(t), Variants: variants}
				}
			}
			return &descriptor.Primitive{Name: Identity(t)}
		default:
			return &descriptor.Primitive{Name: Identity(t)}
		}

	case *types.Struct:
		s := &descriptor.Struct{Fields: make([]descriptor.Field, u.NumFields())}
		if named != nil {
			s.Name = Identity(t)
		}
		inProgress[t] = s
		for i := 0; i < u.NumFields(); i++ {
			f := u.Field(i)
			s.Fields[i] = descriptor.Field{Name: f.Name(), Type: describe(f.Type(), inProgress)}
		}
		return s

	case *types.Array:
		a := &descriptor.Array{Len: int(u.Len())}
		inProgress[t] = a
		a.Elem = describe(u.Elem(), inProgress)
		return a

	case *types.Pointer:
		p := &descriptor.Pointer{Size: descriptor.SizeSingle}
		inProgress[t] = p
		p.Elem = describe(u.Elem(), inProgress)
		return p

	case *types.Slice:
		p := &descriptor.Pointer{Size: descriptor.SizeSlice}
		inProgress[t] = p
		p.Elem = describe(u.Elem(), inProgress)
		return p
	}

	// map, chan, func, interface
	return &descriptor.Opaque{Identity: Identity(t)}
}

func isOption(n *types.Named) bool {
	obj := n.Obj()
	return obj.Pkg() != nil && obj.Pkg().Path() == optionPath && obj.Name() == "Option" && n.TypeArgs().Len() == 1
}

func enumVariants(n *types.Named) ([]descriptor.Variant, bool) {
	if !hasMethod(n, "EnumVariants") {
		return nil, false
	}
	pkg := n.Obj().Pkg()
	if pkg == nil {
		return nil, false
	}

	var consts []*types.Const
	scope := pkg.Scope()
	for _, name := range scope.Names() {
		c, ok := scope.Lookup(name).(*types.Const)
		if ok && types.Identical(c.Type(), n) {
			consts = append(consts, c)
		}
	}
	sort.Slice(consts, func(i, j int) bool { return consts[i].Pos() < consts[j].Pos() })

	variants := make([]descriptor.Variant, len(consts))
	for i, c := range consts {
		v, _ := constant.Int64Val(constant.ToInt(c.Val()))
		variants[i] = descriptor.Variant{Name: c.Name(), Value: v}
	}
	return variants, true
}

func hasMethod(n *types.Named, name string) bool {
	obj, _, _ := types.LookupFieldOrMethod(types.NewPointer(n), false, n.Obj().Pkg(), name)
	_, ok := obj.(*types.Func)
	return ok
}
