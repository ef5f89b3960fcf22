package loader

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/contract/descriptor"
	"github.com/wippyai/contract/errors"
	"github.com/wippyai/contract/spec"
)

// FieldNamer maps a source field name (WIT kebab-case, proto snake_case)
// to the Go field name descriptors use.
type FieldNamer func(string) string

// Loader turns contract documents into specs.
type Loader struct {
	namer       FieldNamer
	importPaths []string
}

// Option configures a Loader.
type Option func(*Loader)

// WithFieldNamer replaces GoName for record and message fields.
func WithFieldNamer(f FieldNamer) Option {
	return func(l *Loader) {
		if f != nil {
			l.namer = f
		}
	}
}

// WithImportPaths sets the directories searched for .proto imports.
func WithImportPaths(paths ...string) Option {
	return func(l *Loader) {
		l.importPaths = append(l.importPaths, paths...)
	}
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{namer: GoName}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

var std = New()

// Load reads a contract file with the default loader.
func Load(path string) (*Set, error) {
	return std.LoadFile(path)
}

// Parse reads a YAML contract document with the default loader.
func Parse(data []byte) (*Set, error) {
	return std.ParseYAML(data)
}

// ParseType parses a standalone type expression with the default loader.
func ParseType(expr string) (descriptor.Descriptor, error) {
	return std.ParseType(expr)
}

// LoadFile reads a .yaml, .yml or .proto file.
func (l *Loader) LoadFile(path string) (*Set, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".proto":
		return l.LoadProto(path)
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Load("read "+path, err)
		}
		set, err := l.ParseYAML(data)
		if err != nil {
			return nil, err
		}
		Logger().Debug("contracts loaded",
			zap.String("path", path),
			zap.Strings("contracts", set.Names()))
		return set, nil
	default:
		return nil, errors.Unsupported(errors.PhaseLoad, "contract file extension "+filepath.Ext(path))
	}
}

// Set is the result of loading: named types and contracts in document order.
type Set struct {
	types     map[string]descriptor.Descriptor
	index     map[string]*spec.Spec
	contracts []*spec.Spec
}

func newSet() *Set {
	return &Set{
		types: make(map[string]descriptor.Descriptor),
		index: make(map[string]*spec.Spec),
	}
}

func (s *Set) add(c *spec.Spec) error {
	if _, dup := s.index[c.Name()]; dup {
		return errors.Duplicate(errors.PhaseLoad, []string{"contracts"}, "contract", c.Name())
	}
	s.index[c.Name()] = c
	s.contracts = append(s.contracts, c)
	return nil
}

// Contracts returns every contract in declaration order.
func (s *Set) Contracts() []*spec.Spec {
	return s.contracts
}

// Contract returns the contract called name.
func (s *Set) Contract(name string) (*spec.Spec, bool) {
	c, ok := s.index[name]
	return c, ok
}

// Type returns the named type called name.
func (s *Set) Type(name string) (descriptor.Descriptor, bool) {
	d, ok := s.types[name]
	return d, ok
}

// Names returns contract names in declaration order.
func (s *Set) Names() []string {
	out := make([]string, len(s.contracts))
	for i, c := range s.contracts {
		out[i] = c.Name()
	}
	return out
}

// Merge adds the contracts and types of other. Contract names must not
// collide.
func (s *Set) Merge(other *Set) error {
	for name, d := range other.types {
		if _, ok := s.types[name]; !ok {
			s.types[name] = d
		}
	}
	for _, c := range other.contracts {
		if err := s.add(c); err != nil {
			return err
		}
	}
	return nil
}
