// Package diag defines contract incompatibilities and renders them.
//
// A verification produces a List of Incompatibility values in a stable order.
// The five variants are MissingMethod, WrongParamCount, ParamTypeMismatch,
// ReturnTypeMismatch and AmbiguousMethod. They describe a permanent property
// of a (contract, type) pair and are meant for the developer, not for retry
// logic.
//
// Render numbers the problems and attaches hints to type mismatches:
//
//	contract "Repository" with main.MemRepo: 2 problems
//	  1. missing method "Delete"
//	  2. method "Create": parameter 1: expected User, got ?User
//	     hint: wrap or unwrap the value with the optional marker (descriptor.Option)
//
// List implements error so a failed verification can be returned as-is.
package diag
