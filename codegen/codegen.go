package codegen

import (
	"bytes"
	"go/format"
	"go/types"
	"path"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"unicode"

	"go.uber.org/zap"

	"github.com/wippyai/contract/dispatch"
	"github.com/wippyai/contract/errors"
	"github.com/wippyai/contract/inspect"
	"github.com/wippyai/contract/spec"
)

// Request describes one generated file.
type Request struct {
	// Spec is the contract to generate a table for.
	Spec *spec.Spec
	// Impl is the implementation type, usually from inspect.Package.MethodSet.
	Impl *inspect.Type
	// Impls are further implementations sharing the contract's table and
	// handle types in the same file.
	Impls []*inspect.Type
	// Package is the package clause of the generated file.
	Package string
	// PackagePath is the import path of the generated file's package. Types
	// declared there are not qualified. Optional.
	PackagePath string
	// Generator names the tool in the "Code generated" header.
	Generator string
}

// Generate emits gofmt'ed Go source holding the contract's table and handle
// types, plus one shared table value, table constructor and handle
// constructor per implementation.
//
// Slot types are those of the first implementation with a trailing error
// result widened to error; every implementation must agree on them. It
// refuses contracts an implementation does not satisfy and contracts with a
// method outside the supported arity range.
func Generate(req Request) ([]byte, error) {
	if req.Spec == nil || req.Impl == nil {
		return nil, errors.InvalidInput(errors.PhaseGenerate, "spec and implementation are required")
	}
	if req.Package == "" {
		return nil, errors.InvalidInput(errors.PhaseGenerate, "package name is required")
	}

	impls := append([]*inspect.Type{req.Impl}, req.Impls...)
	seen := make(map[string]bool, len(impls))
	for _, impl := range impls {
		if impl == nil {
			return nil, errors.InvalidInput(errors.PhaseGenerate, "implementation is nil")
		}
		if seen[impl.Name()] {
			return nil, errors.Duplicate(errors.PhaseGenerate, []string{req.Spec.Name()}, "implementation", impl.Name())
		}
		seen[impl.Name()] = true
		if diags := spec.Verify(req.Spec, impl); !diags.OK() {
			return nil, errors.Unsatisfied(req.Spec.Name(), impl.TypeName(), diags)
		}
	}

	g := &generator{imports: newImportSet(req.PackagePath)}
	model, err := g.file(req, impls)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, model); err != nil {
		return nil, errors.Wrap(errors.PhaseGenerate, errors.KindInvalidData, err, "execute template")
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, errors.New(errors.PhaseGenerate, errors.KindInvalidData).
			Contract(req.Spec.Name()).
			Cause(err).
			Detail("format generated source").
			Build()
	}

	Logger().Debug("generated dispatch table",
		zap.String("contract", req.Spec.Name()),
		zap.Int("impls", len(impls)),
		zap.Int("slots", len(model.Slots)),
		zap.Int("bytes", len(src)))
	return src, nil
}

type fileModel struct {
	Generator string
	Package   string
	Contract  string
	Table     string
	Handle    string
	Imports   []importEntry
	Slots     []slotModel
	Impls     []implModel
}

type implModel struct {
	ImplType   string
	Var        string
	Ctor       string
	HandleCtor string
	Slots      []slotModel
}

type slotModel struct {
	Name      string
	FuncType  string
	Params    string // "p0 T0, p1 ...T1"
	Args      string // "p0, p1..."
	Results   string
	HasResult bool
	Recv      string

	// NilCheck is set when the method returns a nilable concrete error
	// type. Vars names its results, ErrVar the last one, and NilReturn
	// replaces it with a nil error.
	NilCheck  bool
	Vars      string
	ErrVar    string
	NilReturn string
}

type generator struct {
	imports *importSet
}

var errorIface = types.Universe.Lookup("error").Type().Underlying().(*types.Interface)

func (g *generator) file(req Request, impls []*inspect.Type) (*fileModel, error) {
	contract := identifier(req.Spec.Name())
	m := &fileModel{
		Generator: req.Generator,
		Package:   req.Package,
		Contract:  req.Spec.Name(),
		Table:     contract + "Table",
		Handle:    contract + "Handle",
	}
	if m.Generator == "" {
		m.Generator = "contractcheck"
	}

	for _, slot := range req.Spec.Slots() {
		if total := slot.Sig.Arity(); total > dispatch.MaxArity {
			return nil, errors.Arity(req.Spec.Name(), slot.Name, total, dispatch.MaxArity)
		}
	}

	for _, impl := range impls {
		im, err := g.impl(req.Spec, contract, impl)
		if err != nil {
			return nil, err
		}
		if m.Slots == nil {
			m.Slots = im.Slots
		} else if err := sameShape(req.Spec.Name(), m, im); err != nil {
			return nil, err
		}
		m.Impls = append(m.Impls, im)
	}

	m.Imports = g.imports.sorted()
	return m, nil
}

func (g *generator) impl(s *spec.Spec, contract string, impl *inspect.Type) (implModel, error) {
	name := identifier(impl.Name())
	implType := types.TypeString(impl.Named(), g.imports.qualifier)
	im := implModel{
		ImplType:   implType,
		Var:        unexported(contract) + "TableFor" + name,
		Ctor:       "New" + contract + "TableFor" + name,
		HandleCtor: "New" + contract + "HandleFor" + name,
	}

	for _, slot := range s.Slots() {
		fn, ok := impl.Func(slot.Name)
		if !ok {
			return implModel{}, errors.NotFound(errors.PhaseGenerate, "method", slot.Name)
		}
		method, _ := impl.Lookup(slot.Name)

		recv := "(*(*" + implType + ")(self))"
		if method.PointerReceiver {
			recv = "(*" + implType + ")(self)"
		}
		im.Slots = append(im.Slots, g.slot(slot.Name, fn.Type().(*types.Signature), recv))
	}
	return im, nil
}

// sameShape checks that im fills every slot with the table's func type.
func sameShape(contract string, m *fileModel, im implModel) error {
	for i, slot := range im.Slots {
		if want := m.Slots[i].FuncType; slot.FuncType != want {
			return errors.New(errors.PhaseGenerate, errors.KindTypeMismatch).
				Path(contract, slot.Name).
				Contract(contract).
				GoType(im.ImplType).
				Detail("slot type %s differs from %s used by %s", slot.FuncType, want, m.Impls[0].ImplType).
				Build()
		}
	}
	return nil
}

func (g *generator) slot(name string, sig *types.Signature, recv string) slotModel {
	params := sig.Params()
	var decl, args, kinds []string
	kinds = append(kinds, "unsafe.Pointer")
	for i := 0; i < params.Len(); i++ {
		pname := "p" + strconv.Itoa(i)
		t := params.At(i).Type()
		if sig.Variadic() && i == params.Len()-1 {
			elem := "..." + types.TypeString(t.(*types.Slice).Elem(), g.imports.qualifier)
			decl = append(decl, pname+" "+elem)
			kinds = append(kinds, elem)
			args = append(args, pname+"...")
			continue
		}
		ts := types.TypeString(t, g.imports.qualifier)
		decl = append(decl, pname+" "+ts)
		kinds = append(kinds, ts)
		args = append(args, pname)
	}

	res := sig.Results()
	results, widened := g.results(res)
	funcType := "func(" + strings.Join(kinds, ", ") + ")"
	if results != "" {
		funcType += " " + results
	}

	m := slotModel{
		Name:      name,
		FuncType:  funcType,
		Params:    strings.Join(decl, ", "),
		Args:      strings.Join(args, ", "),
		Results:   results,
		HasResult: res.Len() > 0,
		Recv:      recv,
	}
	if widened && nilable(res.At(res.Len()-1).Type()) {
		vars := make([]string, res.Len())
		for i := range vars {
			vars[i] = "r" + strconv.Itoa(i)
		}
		m.NilCheck = true
		m.Vars = strings.Join(vars, ", ")
		m.ErrVar = vars[len(vars)-1]
		m.NilReturn = strings.Join(append(vars[:len(vars)-1:len(vars)-1], "nil"), ", ")
	}
	return m
}

// results renders a result list. A trailing result implementing error is
// rendered as error; widened reports whether that changed its type.
func (g *generator) results(t *types.Tuple) (string, bool) {
	n := t.Len()
	if n == 0 {
		return "", false
	}
	parts := make([]string, n)
	for i := range parts {
		parts[i] = types.TypeString(t.At(i).Type(), g.imports.qualifier)
	}
	widened := false
	if last := t.At(n - 1).Type(); types.Implements(last, errorIface) && !types.Identical(last, types.Universe.Lookup("error").Type()) {
		parts[n-1] = "error"
		widened = true
	}
	if n == 1 {
		return parts[0], widened
	}
	return "(" + strings.Join(parts, ", ") + ")", widened
}

// nilable reports whether a concrete type can hold nil. Interface values are
// excluded: a nil interface converts to a nil error.
func nilable(t types.Type) bool {
	switch t.Underlying().(type) {
	case *types.Pointer, *types.Map, *types.Slice, *types.Chan, *types.Signature:
		return true
	}
	return false
}

type importEntry struct {
	Path  string
	Alias string
}

// importSet assigns unique local names to imported packages.
type importSet struct {
	self   string
	byPath map[string]string
	used   map[string]bool
}

func newImportSet(self string) *importSet {
	return &importSet{
		self:   self,
		byPath: map[string]string{"unsafe": "unsafe"},
		used:   map[string]bool{"unsafe": true, "self": true},
	}
}

func (s *importSet) qualifier(p *types.Package) string {
	if p.Path() == s.self {
		return ""
	}
	if alias, ok := s.byPath[p.Path()]; ok {
		return alias
	}
	base := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return -1
	}, p.Name())
	alias := base
	for i := 2; s.used[alias]; i++ {
		alias = base + strconv.Itoa(i)
	}
	s.byPath[p.Path()] = alias
	s.used[alias] = true
	return alias
}

func (s *importSet) sorted() []importEntry {
	out := make([]importEntry, 0, len(s.byPath))
	for p, alias := range s.byPath {
		e := importEntry{Path: p}
		if alias != path.Base(p) {
			e.Alias = alias
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// identifier returns an exported Go identifier for s.
func identifier(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	out := b.String()
	if out == "" || unicode.IsDigit(rune(out[0])) {
		out = "X" + out
	}
	return out
}

func unexported(s string) string {
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

var fileTemplate = template.Must(template.New("file").Parse(`// Code generated by {{.Generator}}. DO NOT EDIT.

package {{.Package}}

import (
{{- range .Imports}}
{{- if .Alias}}
	{{.Alias}} "{{.Path}}"
{{- else}}
	"{{.Path}}"
{{- end}}
{{- end}}
)

// {{.Table}} is the dispatch table of contract {{.Contract}}.
// Slots are in positional order; each takes the implementation pointer first.
type {{.Table}} struct {
{{- range .Slots}}
	{{.Name}} {{.FuncType}}
{{- end}}
}

// {{.Handle}} pairs an implementation pointer with its {{.Contract}} table.
type {{.Handle}} struct {
	Data  unsafe.Pointer
	Table *{{.Table}}
}
{{range .Slots}}
// {{.Name}} calls the {{.Name}} slot.
func (h {{$.Handle}}) {{.Name}}({{.Params}}) {{.Results}} {
	{{if .HasResult}}return {{end}}h.Table.{{.Name}}(h.Data{{if .Args}}, {{.Args}}{{end}})
}
{{end}}
{{- range .Impls}}
var {{.Var}} = &{{$.Table}}{
{{- range .Slots}}
	{{.Name}}: func(self unsafe.Pointer{{if .Params}}, {{.Params}}{{end}}) {{.Results}} {
	{{- if .NilCheck}}
		{{.Vars}} := {{.Recv}}.{{.Name}}({{.Args}})
		if {{.ErrVar}} == nil {
			return {{.NilReturn}}
		}
		return {{.Vars}}
	{{- else}}
		{{if .HasResult}}return {{end}}{{.Recv}}.{{.Name}}({{.Args}})
	{{- end}}
	},
{{- end}}
}

// {{.Ctor}} returns the shared {{$.Contract}} table for {{.ImplType}}.
func {{.Ctor}}() *{{$.Table}} {
	return {{.Var}}
}

// {{.HandleCtor}} returns a handle for impl.
func {{.HandleCtor}}(impl *{{.ImplType}}) {{$.Handle}} {
	return {{$.Handle}}{Data: unsafe.Pointer(impl), Table: {{.Var}}}
}
{{end}}`))
