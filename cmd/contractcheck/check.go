package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/wippyai/contract/codegen"
	"github.com/wippyai/contract/diag"
	"github.com/wippyai/contract/inspect"
	"github.com/wippyai/contract/loader"
	"github.com/wippyai/contract/spec"
)

const grpcScheme = "grpc://"

type options struct {
	contracts string
	dir       string
	pkg       string
	typeName  string
	contract  string
	gen       string
	genPkg    string
	list      bool
	color     bool
}

// session holds a loaded contract set and, unless only listing, the
// implementation type it is checked against.
type session struct {
	set  *loader.Set
	pkg  *inspect.Package
	impl *inspect.Type
}

func open(ctx context.Context, opts options) (*session, error) {
	var set *loader.Set
	var err error
	if target, ok := strings.CutPrefix(opts.contracts, grpcScheme); ok {
		set, err = loader.New().LoadGRPC(ctx, target)
	} else {
		set, err = loader.New().LoadFile(opts.contracts)
	}
	if err != nil {
		return nil, err
	}
	s := &session{set: set}
	if opts.list {
		return s, nil
	}

	s.pkg, err = inspect.LoadOne(ctx, opts.dir, opts.pkg)
	if err != nil {
		return nil, err
	}
	s.impl, err = s.pkg.MethodSet(opts.typeName)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// selected returns the named contract, or every contract when name is empty.
func (s *session) selected(name string) ([]*spec.Spec, error) {
	if name == "" {
		all := s.set.Contracts()
		if len(all) == 0 {
			return nil, fmt.Errorf("no contracts defined")
		}
		return all, nil
	}
	c, ok := s.set.Contract(name)
	if !ok {
		return nil, fmt.Errorf("contract %q not defined (have %s)", name, strings.Join(s.set.Names(), ", "))
	}
	return []*spec.Spec{c}, nil
}

func (s *session) verify(c *spec.Spec) diag.List {
	return spec.Verify(c, s.impl)
}

func (s *session) report(c *spec.Spec, color bool) string {
	return paint{color: color}.report(s.verify(c).Render(c.Name(), s.impl.TypeName()))
}

// generate emits a dispatch table for c. An empty pkgName places the file in
// the implementation's own package.
func (s *session) generate(c *spec.Spec, pkgName string) ([]byte, error) {
	req := codegen.Request{Spec: c, Impl: s.impl, Package: pkgName}
	if pkgName == "" || pkgName == s.pkg.Name() {
		req.Package = s.pkg.Name()
		req.PackagePath = s.pkg.Path()
	}
	return codegen.Generate(req)
}

// run checks every selected contract and reports whether all are satisfied.
func run(ctx context.Context, opts options, w io.Writer) (bool, error) {
	s, err := open(ctx, opts)
	if err != nil {
		return false, err
	}

	contracts, err := s.selected(opts.contract)
	if err != nil {
		return false, err
	}

	if opts.list {
		p := paint{color: opts.color}
		for _, c := range contracts {
			fmt.Fprintln(w, p.contract(c))
		}
		return true, nil
	}

	ok := true
	for _, c := range contracts {
		if !s.verify(c).OK() {
			ok = false
		}
		fmt.Fprint(w, s.report(c, opts.color))
	}

	if opts.gen == "" {
		return ok, nil
	}
	if !ok {
		return false, fmt.Errorf("not generating %s: contract unsatisfied", opts.gen)
	}
	if len(contracts) != 1 {
		return false, fmt.Errorf("-gen needs -contract when the document defines %d contracts", len(contracts))
	}

	src, err := s.generate(contracts[0], opts.genPkg)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(opts.gen, src, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", opts.gen, err)
	}
	fmt.Fprintf(w, "wrote %s\n", opts.gen)
	return true, nil
}
