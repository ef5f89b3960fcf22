package loader

import (
	"strconv"
	"strings"

	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/wippyai/contract/descriptor"
	"github.com/wippyai/contract/errors"
)

// goPrimitives are Go spellings accepted next to WIT primitive names.
var goPrimitives = map[string]string{
	"bool": "bool", "string": "string",
	"int": "int", "int8": "int8", "int16": "int16", "int32": "int32", "int64": "int64",
	"uint": "uint", "uint8": "uint8", "uint16": "uint16", "uint32": "uint32", "uint64": "uint64",
	"uintptr": "uintptr", "byte": "uint8", "rune": "int32",
	"float32": "float32", "float64": "float64",
	"complex64": "complex64", "complex128": "complex128",
}

var errorDescriptor = descriptor.For[error]()

// scope resolves named types while parsing expressions.
type scope struct {
	l        *Loader
	resolve  func(name string, path []string) (descriptor.Descriptor, bool, error)
	witCache map[string]descriptor.Descriptor
}

func (l *Loader) newScope(resolve func(string, []string) (descriptor.Descriptor, bool, error)) *scope {
	return &scope{l: l, resolve: resolve, witCache: make(map[string]descriptor.Descriptor)}
}

// ParseType parses a type expression that refers only to primitives.
func (l *Loader) ParseType(expr string) (descriptor.Descriptor, error) {
	return l.newScope(nil).parse(expr, nil)
}

// ParseReturn parses a return expression that refers only to primitives.
func (l *Loader) ParseReturn(expr string) (descriptor.Return, error) {
	return l.newScope(nil).parseReturn(expr, nil)
}

func exprError(path []string, expr, detail string) error {
	return errors.New(errors.PhaseParse, errors.KindInvalidData).
		Path(path...).
		Value(expr).
		Detail("%s: %q", detail, expr).
		Build()
}

// generic splits "head<a, b>" into its head and arguments.
func generic(expr string) (string, []string, bool) {
	open := strings.IndexByte(expr, '<')
	if open < 0 || !strings.HasSuffix(expr, ">") {
		return "", nil, false
	}
	head := strings.TrimSpace(expr[:open])
	return head, splitArgs(expr[open+1 : len(expr)-1]), true
}

// splitArgs splits a comma list, honoring nested <> and ().
func splitArgs(s string) []string {
	var result []string
	var current strings.Builder
	depth := 0

	for _, ch := range s {
		switch ch {
		case '<', '(':
			depth++
			current.WriteRune(ch)
		case '>', ')':
			depth--
			current.WriteRune(ch)
		case ',':
			if depth == 0 {
				result = append(result, strings.TrimSpace(current.String()))
				current.Reset()
			} else {
				current.WriteRune(ch)
			}
		default:
			current.WriteRune(ch)
		}
	}

	if str := strings.TrimSpace(current.String()); str != "" || len(result) > 0 {
		result = append(result, str)
	}
	return result
}

// stripParamName drops a leading "name:" as in WIT parameter lists.
func stripParamName(p string) string {
	idx := strings.IndexByte(p, ':')
	if idx < 0 {
		return p
	}
	name := strings.TrimSpace(p[:idx])
	for _, r := range name {
		if !(r == '-' || r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return p
		}
	}
	return strings.TrimSpace(p[idx+1:])
}

func (s *scope) parse(expr string, path []string) (descriptor.Descriptor, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, exprError(path, expr, "empty type expression")
	}

	if strings.HasPrefix(expr, "(") && strings.HasSuffix(expr, ")") {
		return s.tuple(splitArgs(expr[1:len(expr)-1]), path)
	}

	head, args, ok := generic(expr)
	if !ok {
		return s.named(expr, path)
	}

	want := func(n int) error {
		if len(args) != n {
			return exprError(path, expr, head+" takes "+strconv.Itoa(n)+" argument(s)")
		}
		return nil
	}

	switch head {
	case "list":
		if err := want(1); err != nil {
			return nil, err
		}
		return s.pointer(args[0], descriptor.SizeSlice, false, path)

	case "own", "ptr":
		if err := want(1); err != nil {
			return nil, err
		}
		return s.pointer(args[0], descriptor.SizeSingle, false, path)

	case "borrow":
		if err := want(1); err != nil {
			return nil, err
		}
		return s.pointer(args[0], descriptor.SizeSingle, true, path)

	case "many":
		if err := want(1); err != nil {
			return nil, err
		}
		return s.pointer(args[0], descriptor.SizeMany, false, path)

	case "option":
		if err := want(1); err != nil {
			return nil, err
		}
		elem, err := s.parse(args[0], path)
		if err != nil {
			return nil, err
		}
		return &descriptor.Optional{Elem: elem}, nil

	case "tuple":
		if len(args) == 0 {
			return nil, exprError(path, expr, "tuple takes at least one argument")
		}
		return s.tuple(args, path)

	case "array":
		if err := want(2); err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 0 {
			return nil, exprError(path, expr, "array length must be a non-negative integer")
		}
		elem, err := s.parse(args[0], path)
		if err != nil {
			return nil, err
		}
		return &descriptor.Array{Len: n, Elem: elem}, nil

	case "result":
		return nil, exprError(path, expr, "result is only allowed as a method return")
	}

	return nil, exprError(path, expr, "unknown type constructor "+strconv.Quote(head))
}

func (s *scope) pointer(arg string, size descriptor.SizeKind, isConst bool, path []string) (descriptor.Descriptor, error) {
	elem, err := s.parse(arg, path)
	if err != nil {
		return nil, err
	}
	return &descriptor.Pointer{Size: size, Const: isConst, Elem: elem}, nil
}

func (s *scope) tuple(args []string, path []string) (descriptor.Descriptor, error) {
	elems := make([]descriptor.Descriptor, len(args))
	for i, a := range args {
		d, err := s.parse(a, path)
		if err != nil {
			return nil, err
		}
		elems[i] = d
	}
	return descriptor.Tuple(elems...), nil
}

func (s *scope) named(name string, path []string) (descriptor.Descriptor, error) {
	if s.resolve != nil {
		d, ok, err := s.resolve(name, path)
		if err != nil {
			return nil, err
		}
		if ok {
			return d, nil
		}
	}

	switch name {
	case "error":
		return errorDescriptor, nil
	case "void", "_":
		return descriptor.Void, nil
	}

	if d, ok := s.witCache[name]; ok {
		return d, nil
	}
	if _, isWIT := witPrimitives[name]; isWIT {
		d := prim(name)
		if t, err := wit.ParseType(name); err == nil {
			if d, err = s.l.FromWIT(t); err != nil {
				return nil, errors.ParseFailed("WIT type "+name, err)
			}
		} else {
			Logger().Debug("WIT parser rejected primitive", zap.String("type", name), zap.Error(err))
		}
		s.witCache[name] = d
		return d, nil
	}

	if goName, ok := goPrimitives[name]; ok {
		return &descriptor.Primitive{Name: goName}, nil
	}

	return nil, errors.New(errors.PhaseParse, errors.KindNotFound).
		Path(path...).
		Value(name).
		Detail("unknown type %q", name).
		Build()
}

// parseReturn accepts "", "()", "T", "(A, B)", "result", "result<T>",
// "result<T, E>" and "result<_, E>".
func (s *scope) parseReturn(expr string, path []string) (descriptor.Return, error) {
	expr = strings.TrimSpace(expr)
	switch expr {
	case "", "()":
		return descriptor.Direct(descriptor.Void), nil
	case "result":
		return descriptor.Fallible(descriptor.Void), nil
	}

	head, args, ok := generic(expr)
	if !ok || head != "result" {
		d, err := s.parse(expr, path)
		if err != nil {
			return descriptor.Return{}, err
		}
		return descriptor.Direct(d), nil
	}

	if len(args) < 1 || len(args) > 2 {
		return descriptor.Return{}, exprError(path, expr, "result takes 1 or 2 arguments")
	}
	payload, err := s.parse(args[0], path)
	if err != nil {
		return descriptor.Return{}, err
	}
	if len(args) == 1 || args[1] == "_" {
		return descriptor.Fallible(payload), nil
	}
	domain, err := s.parse(args[1], path)
	if err != nil {
		return descriptor.Return{}, err
	}
	return descriptor.FallibleIn(payload, domain), nil
}
