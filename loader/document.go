package loader

import (
	"bytes"
	stderrors "errors"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/wippyai/contract/descriptor"
	"github.com/wippyai/contract/errors"
	"github.com/wippyai/contract/signature"
	"github.com/wippyai/contract/spec"
)

// Document is the YAML form of a contract file.
type Document struct {
	Types     map[string]TypeDecl `yaml:"types"`
	Contracts []ContractDecl      `yaml:"contracts"`
}

// TypeDecl declares one named type. Exactly one of the kind fields is set.
type TypeDecl struct {
	Record    *[]FieldDecl   `yaml:"record"`
	Enum      *[]VariantDecl `yaml:"enum"`
	Primitive string         `yaml:"primitive"`
	Opaque    string         `yaml:"opaque"`
	Alias     string         `yaml:"type"`
	// Name overrides the descriptor name; defaults to the map key.
	Name string `yaml:"name"`
}

// FieldDecl is a record field. Names are used verbatim.
type FieldDecl struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// VariantDecl is an enum case. Value defaults to the case position.
type VariantDecl struct {
	Value *int64 `yaml:"value"`
	Name  string `yaml:"name"`
}

// UnmarshalYAML accepts a bare case name as shorthand.
func (v *VariantDecl) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		v.Name = n.Value
		return nil
	}
	type plain VariantDecl
	return n.Decode((*plain)(v))
}

// ContractDecl declares a contract. Embeds must name contracts declared
// earlier in the same document.
type ContractDecl struct {
	Name    string       `yaml:"name"`
	Embeds  []string     `yaml:"embeds"`
	Methods []MethodDecl `yaml:"methods"`
}

// MethodDecl declares a contract method.
type MethodDecl struct {
	Name    string   `yaml:"name"`
	Returns string   `yaml:"returns"`
	Params  []string `yaml:"params"`
}

// ParseYAML decodes a YAML contract document. Unknown keys are rejected.
func (l *Loader) ParseYAML(data []byte) (*Set, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.Load("decode YAML", err)
	}
	return l.Build(&doc)
}

// Build resolves a decoded document into a Set.
func (l *Loader) Build(doc *Document) (*Set, error) {
	b := &builder{
		decls:     doc.Types,
		set:       newSet(),
		resolving: make(map[string]bool),
	}
	b.scope = l.newScope(b.resolve)

	names := make([]string, 0, len(doc.Types))
	for name := range doc.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := b.named(name); err != nil {
			return nil, err
		}
	}

	for i := range doc.Contracts {
		c, err := b.contract(&doc.Contracts[i])
		if err != nil {
			return nil, err
		}
		if err := b.set.add(c); err != nil {
			return nil, err
		}
	}
	return b.set, nil
}

type builder struct {
	scope     *scope
	decls     map[string]TypeDecl
	set       *Set
	resolving map[string]bool
}

func (b *builder) resolve(name string, _ []string) (descriptor.Descriptor, bool, error) {
	if _, ok := b.decls[name]; !ok {
		return nil, false, nil
	}
	d, err := b.named(name)
	return d, err == nil, err
}

func (b *builder) named(name string) (descriptor.Descriptor, error) {
	if d, ok := b.set.types[name]; ok {
		return d, nil
	}

	decl := b.decls[name]
	path := []string{"types", name}

	kinds := 0
	for _, set := range []bool{decl.Record != nil, decl.Enum != nil, decl.Primitive != "", decl.Opaque != "", decl.Alias != ""} {
		if set {
			kinds++
		}
	}
	if kinds != 1 {
		return nil, errors.InvalidData(errors.PhaseLoad, path, "type must declare exactly one of record, enum, primitive, opaque, type")
	}

	descName := decl.Name
	if descName == "" {
		descName = name
	}

	switch {
	case decl.Record != nil:
		s := &descriptor.Struct{Name: descName, Fields: make([]descriptor.Field, len(*decl.Record))}
		b.set.types[name] = s
		seen := make(map[string]bool, len(*decl.Record))
		for i, f := range *decl.Record {
			if f.Name == "" {
				return nil, errors.InvalidData(errors.PhaseLoad, path, "record field without a name")
			}
			if seen[f.Name] {
				return nil, errors.Duplicate(errors.PhaseLoad, path, "field", f.Name)
			}
			seen[f.Name] = true
			ft, err := b.scope.parse(f.Type, append(path, f.Name))
			if err != nil {
				return nil, err
			}
			s.Fields[i] = descriptor.Field{Name: f.Name, Type: ft}
		}
		return s, nil

	case decl.Enum != nil:
		e := &descriptor.Enum{Name: descName, Variants: make([]descriptor.Variant, len(*decl.Enum))}
		seen := make(map[string]bool, len(*decl.Enum))
		for i, v := range *decl.Enum {
			if v.Name == "" {
				return nil, errors.InvalidData(errors.PhaseLoad, path, "enum variant without a name")
			}
			if seen[v.Name] {
				return nil, errors.Duplicate(errors.PhaseLoad, path, "variant", v.Name)
			}
			seen[v.Name] = true
			value := int64(i)
			if v.Value != nil {
				value = *v.Value
			}
			e.Variants[i] = descriptor.Variant{Name: v.Name, Value: value}
		}
		b.set.types[name] = e
		return e, nil

	case decl.Primitive != "":
		d := &descriptor.Primitive{Name: decl.Primitive}
		b.set.types[name] = d
		return d, nil

	case decl.Opaque != "":
		d := &descriptor.Opaque{Identity: decl.Opaque}
		b.set.types[name] = d
		return d, nil
	}

	if b.resolving[name] {
		return nil, errors.InvalidData(errors.PhaseLoad, path, "type alias refers to itself")
	}
	b.resolving[name] = true
	d, err := b.scope.parse(decl.Alias, path)
	delete(b.resolving, name)
	if err != nil {
		return nil, err
	}
	b.set.types[name] = d
	return d, nil
}

func (b *builder) contract(decl *ContractDecl) (*spec.Spec, error) {
	path := []string{"contracts", decl.Name}

	embeds := make([]*spec.Spec, len(decl.Embeds))
	for i, name := range decl.Embeds {
		e, ok := b.set.Contract(name)
		if !ok {
			return nil, errors.New(errors.PhaseLoad, errors.KindNotFound).
				Path(append(path, "embeds")...).
				Contract(decl.Name).
				Detail("embedded contract %q must be declared earlier", name).
				Build()
		}
		embeds[i] = e
	}

	methods := make([]spec.Method, len(decl.Methods))
	for i, m := range decl.Methods {
		mpath := append(append([]string{}, path...), m.Name)
		params := make([]descriptor.Descriptor, len(m.Params))
		for j, p := range m.Params {
			d, err := b.scope.parse(stripParamName(p), mpath)
			if err != nil {
				return nil, err
			}
			params[j] = d
		}
		ret, err := b.scope.parseReturn(m.Returns, mpath)
		if err != nil {
			return nil, err
		}
		methods[i] = spec.M(m.Name, signature.New(ret, params...))
	}

	s, err := spec.Define(decl.Name, methods, embeds...)
	if err != nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
			Path(path...).
			Contract(decl.Name).
			Cause(err).
			Build()
	}
	return s, nil
}
