package loader

import (
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/contract/descriptor"
	"github.com/wippyai/contract/errors"
	"github.com/wippyai/contract/signature"
)

// FromWIT converts a WIT type with the default loader.
func FromWIT(t wit.Type) (descriptor.Descriptor, error) {
	return std.FromWIT(t)
}

// FromWIT converts a WIT type to a descriptor.
//
// Records become structs with fields named by the loader's FieldNamer,
// enums keep case order with values 0..n-1, flags become the smallest
// unsigned integer holding every flag, list<T> is a slice, own<T> a pointer
// and borrow<T> a const pointer. Resources and variants are opaque by name.
// result<T, E> is only meaningful as a method return; see ParseReturn.
func (l *Loader) FromWIT(t wit.Type) (descriptor.Descriptor, error) {
	return l.fromWIT(t, make(map[*wit.TypeDef]descriptor.Descriptor), nil)
}

var witPrimitives = map[string]string{
	"bool":   "bool",
	"u8":     "uint8",
	"u16":    "uint16",
	"u32":    "uint32",
	"u64":    "uint64",
	"s8":     "int8",
	"s16":    "int16",
	"s32":    "int32",
	"s64":    "int64",
	"f32":    "float32",
	"f64":    "float64",
	"char":   "int32",
	"string": "string",
}

func prim(wname string) descriptor.Descriptor {
	return &descriptor.Primitive{Name: witPrimitives[wname]}
}

func (l *Loader) fromWIT(t wit.Type, seen map[*wit.TypeDef]descriptor.Descriptor, path []string) (descriptor.Descriptor, error) {
	switch v := t.(type) {
	case nil:
		return descriptor.Void, nil
	case wit.Bool:
		return prim("bool"), nil
	case wit.U8:
		return prim("u8"), nil
	case wit.U16:
		return prim("u16"), nil
	case wit.U32:
		return prim("u32"), nil
	case wit.U64:
		return prim("u64"), nil
	case wit.S8:
		return prim("s8"), nil
	case wit.S16:
		return prim("s16"), nil
	case wit.S32:
		return prim("s32"), nil
	case wit.S64:
		return prim("s64"), nil
	case wit.F32:
		return prim("f32"), nil
	case wit.F64:
		return prim("f64"), nil
	case wit.Char:
		return prim("char"), nil
	case wit.String:
		return prim("string"), nil
	case *wit.TypeDef:
		if v == nil {
			return &descriptor.Opaque{Identity: "resource"}, nil
		}
		return l.fromTypeDef(v, seen, path)
	}
	return nil, errors.New(errors.PhaseParse, errors.KindUnsupported).
		Path(path...).
		Detail("WIT type %T", t).
		Build()
}

func typeDefName(td *wit.TypeDef) string {
	if td.Name != nil {
		return *td.Name
	}
	return ""
}

func (l *Loader) fromTypeDef(td *wit.TypeDef, seen map[*wit.TypeDef]descriptor.Descriptor, path []string) (descriptor.Descriptor, error) {
	if d, ok := seen[td]; ok {
		return d, nil
	}
	name := typeDefName(td)
	if name != "" {
		path = append(append([]string{}, path...), name)
	}

	switch k := td.Kind.(type) {
	case *wit.Record:
		s := &descriptor.Struct{Name: name, Fields: make([]descriptor.Field, len(k.Fields))}
		seen[td] = s
		for i, f := range k.Fields {
			ft, err := l.fromWIT(f.Type, seen, append(path, f.Name))
			if err != nil {
				return nil, err
			}
			s.Fields[i] = descriptor.Field{Name: l.namer(f.Name), Type: ft}
		}
		return s, nil

	case *wit.Enum:
		e := &descriptor.Enum{Name: name, Variants: make([]descriptor.Variant, len(k.Cases))}
		for i, c := range k.Cases {
			e.Variants[i] = descriptor.Variant{Name: l.namer(c.Name), Value: int64(i)}
		}
		seen[td] = e
		return e, nil

	case *wit.Flags:
		var d descriptor.Descriptor
		switch n := len(k.Flags); {
		case n <= 8:
			d = prim("u8")
		case n <= 16:
			d = prim("u16")
		case n <= 32:
			d = prim("u32")
		case n <= 64:
			d = prim("u64")
		default:
			return nil, errors.New(errors.PhaseParse, errors.KindInvalidData).
				Path(path...).
				Detail("flags type exceeds maximum 64 flags, got %d", n).
				Build()
		}
		seen[td] = d
		return d, nil

	case *wit.Option:
		o := &descriptor.Optional{}
		seen[td] = o
		elem, err := l.fromWIT(k.Type, seen, append(path, "[some]"))
		if err != nil {
			return nil, err
		}
		o.Elem = elem
		return o, nil

	case *wit.List:
		p := &descriptor.Pointer{Size: descriptor.SizeSlice}
		seen[td] = p
		elem, err := l.fromWIT(k.Type, seen, append(path, "[elem]"))
		if err != nil {
			return nil, err
		}
		p.Elem = elem
		return p, nil

	case *wit.Tuple:
		elems := make([]descriptor.Descriptor, len(k.Types))
		for i, et := range k.Types {
			d, err := l.fromWIT(et, seen, path)
			if err != nil {
				return nil, err
			}
			elems[i] = d
		}
		s := descriptor.Tuple(elems...)
		seen[td] = s
		return s, nil

	case *wit.Own:
		return l.handle(td, k.Type, false, seen, path)

	case *wit.Borrow:
		return l.handle(td, k.Type, true, seen, path)

	case *wit.Resource, *wit.Variant:
		if name == "" {
			return nil, errors.New(errors.PhaseParse, errors.KindUnsupported).
				Path(path...).
				Detail("anonymous %T", k).
				Build()
		}
		d := &descriptor.Opaque{Identity: name}
		seen[td] = d
		return d, nil

	case *wit.Result:
		return nil, errors.New(errors.PhaseParse, errors.KindUnsupported).
			Path(path...).
			Detail("result is only allowed as a method return").
			Build()

	case wit.Type:
		d, err := l.fromWIT(k, seen, path)
		if err != nil {
			return nil, err
		}
		seen[td] = d
		return d, nil
	}

	return nil, errors.New(errors.PhaseParse, errors.KindUnsupported).
		Path(path...).
		Detail("WIT type definition %T", td.Kind).
		Build()
}

func (l *Loader) handle(td *wit.TypeDef, target *wit.TypeDef, borrow bool, seen map[*wit.TypeDef]descriptor.Descriptor, path []string) (descriptor.Descriptor, error) {
	p := &descriptor.Pointer{Size: descriptor.SizeSingle, Const: borrow}
	seen[td] = p
	var elem descriptor.Descriptor = &descriptor.Opaque{Identity: "resource"}
	if target != nil {
		d, err := l.fromTypeDef(target, seen, path)
		if err != nil {
			return nil, err
		}
		elem = d
	}
	p.Elem = elem
	return p, nil
}

// SignatureFromWIT builds a contract signature from WIT parameter and result
// types. A single result<T, E> result makes the return fallible.
func (l *Loader) SignatureFromWIT(params, results []wit.Type) (signature.Signature, error) {
	ps := make([]descriptor.Descriptor, len(params))
	for i, p := range params {
		d, err := l.FromWIT(p)
		if err != nil {
			return signature.Signature{}, err
		}
		ps[i] = d
	}
	ret, err := l.fromWITReturn(results)
	if err != nil {
		return signature.Signature{}, err
	}
	return signature.New(ret, ps...), nil
}

func (l *Loader) fromWITReturn(results []wit.Type) (descriptor.Return, error) {
	seen := make(map[*wit.TypeDef]descriptor.Descriptor)
	if len(results) == 1 {
		if td, ok := results[0].(*wit.TypeDef); ok && td != nil {
			if r, ok := td.Kind.(*wit.Result); ok {
				payload, err := l.fromWIT(r.OK, seen, []string{"[ok]"})
				if err != nil {
					return descriptor.Return{}, err
				}
				if r.Err == nil {
					return descriptor.Fallible(payload), nil
				}
				domain, err := l.fromWIT(r.Err, seen, []string{"[err]"})
				if err != nil {
					return descriptor.Return{}, err
				}
				return descriptor.FallibleIn(payload, domain), nil
			}
		}
	}

	elems := make([]descriptor.Descriptor, len(results))
	for i, t := range results {
		d, err := l.fromWIT(t, seen, nil)
		if err != nil {
			return descriptor.Return{}, err
		}
		elems[i] = d
	}
	return descriptor.Direct(descriptor.Payload(elems)), nil
}
