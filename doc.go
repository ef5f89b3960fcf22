// Package contract verifies Go types against declared contracts and builds
// type-erased handles for them.
//
// A contract is a named set of method signatures, optionally composed from
// other contracts. Verification compares a concrete type structurally,
// method by method, and returns every incompatibility it finds. A verified
// type can then be paired with a dispatch table to form a Handle: an opaque
// data pointer plus a shared, positional table of adapters.
//
// # Architecture Overview
//
//	contract/            Root package with the public surface
//	├── descriptor/      Type descriptors, structural compatibility, Option
//	├── signature/       Contract signatures, method sets, method matching
//	├── spec/            Contract model, composition, ambiguity, Verify
//	├── diag/            Incompatibilities, hints and numbered reports
//	├── dispatch/        Table synthesis, memoization, handles
//	├── loader/          Contracts from YAML, .proto, WIT and gRPC reflection
//	├── inspect/         Method sets and descriptors from go/types
//	├── codegen/         Typed tables and handles generated ahead of time
//	├── registry/        Numbered table of live handles
//	├── errors/          Structured error types
//	└── cmd/contractcheck Command-line verifier and generator
//
// # Quick Start
//
//	repo := contract.MustDefine("UserRepository", []contract.Method{
//	    contract.MethodOf[func(User) (uint32, error)]("Create"),
//	    contract.MethodOf[func(uint32) (contract.Option[User], error)]("FindByID"),
//	})
//
//	if err := contract.AssertSatisfied[MemRepo](repo); err != nil {
//	    log.Fatal(err)
//	}
//
//	h := contract.MustHandle(repo, &MemRepo{})
//	id, err := h.Call("Create", User{Name: "ada"})
//
// # Compatibility
//
// Descriptors compare structurally: struct fields by position with exact
// names, enum variants by position with exact names and values, pointers by
// size kind, constness and volatility. A fallible return matches any fallible
// implementation with a compatible payload, whatever its error type.
//
// # Ambiguity
//
// A method name supplied by two direct branches of a composition, the
// primary method set counting as one, is ambiguous. Ambiguities are reported
// alone; no other check runs for that contract.
package contract
