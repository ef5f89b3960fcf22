package descriptor

type pair struct {
	a, b Descriptor
}

// Compatible reports whether a and b describe interchangeable shapes.
//
// Struct and enum members are matched by position, pointers must agree on
// size kind, const-ness and volatility, and primitives and opaque types are
// compared by identity. Cycles are assumed compatible on revisit.
func Compatible(a, b Descriptor) bool {
	return compatible(a, b, nil)
}

func compatible(a, b Descriptor, seen map[pair]bool) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch x := a.(type) {
	case *Primitive:
		return x.Name == b.(*Primitive).Name

	case *Opaque:
		return x.Identity == b.(*Opaque).Identity

	case *Enum:
		y := b.(*Enum)
		if len(x.Variants) != len(y.Variants) {
			return false
		}
		for i := range x.Variants {
			if x.Variants[i] != y.Variants[i] {
				return false
			}
		}
		return true

	case *Struct:
		y := b.(*Struct)
		if len(x.Fields) != len(y.Fields) || x.Tuple != y.Tuple {
			return false
		}
		key := pair{a, b}
		if seen[key] {
			return true
		}
		if seen == nil {
			seen = make(map[pair]bool)
		}
		seen[key] = true
		for i := range x.Fields {
			if x.Fields[i].Name != y.Fields[i].Name {
				return false
			}
			if !compatible(x.Fields[i].Type, y.Fields[i].Type, seen) {
				return false
			}
		}
		return true

	case *Array:
		y := b.(*Array)
		return x.Len == y.Len && compatible(x.Elem, y.Elem, seen)

	case *Pointer:
		y := b.(*Pointer)
		if x.Size != y.Size || x.Const != y.Const || x.Volatile != y.Volatile {
			return false
		}
		return compatible(x.Elem, y.Elem, seen)

	case *Optional:
		return compatible(x.Elem, b.(*Optional).Elem, seen)
	}

	return false
}
