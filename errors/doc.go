// Package errors provides structured error types for the contract library.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: location path, Go type and contract names,
// and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseInvoke, errors.KindTypeMismatch).
//		Path("Repository", "Create").
//		GoType("string").
//		Contract("Repository").
//		Detail("argument 0 is not assignable to main.User").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Arity("Repository", "Bulk", 6, 5)
//	err := errors.NotFound(errors.PhaseInvoke, "method", "Delete")
//
// Failed verifications are reported as KindUnsatisfied errors whose cause is
// the diagnostic list, so the individual problems remain reachable through
// errors.As. All errors implement the standard error interface and support
// errors.Is/As.
package errors
