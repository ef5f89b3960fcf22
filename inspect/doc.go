// Package inspect reads method sets from Go source without running it.
//
// Packages are loaded with golang.org/x/tools/go/packages and described
// with the same rules descriptor.Of applies to reflected types, so
// spec.Verify gives the same verdict for a static Type as for its
// reflected counterpart:
//
//	pkg, err := inspect.LoadOne(ctx, ".", "./internal/store")
//	typ, err := pkg.MethodSet("MemRepo")
//	diags := spec.Verify(repository, typ)
package inspect
