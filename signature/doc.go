// Package signature matches implementation methods against contract methods.
//
// A contract method is a Signature: parameter descriptors without receiver
// plus a Return. An implementation method is a Method whose first parameter
// is the receiver. Candidate types expose their methods through MethodSet;
// Reflect builds one from a reflect.Type, and the inspect package builds one
// from go/types for static checks.
//
// Match applies the comparison rules in order:
//
//  1. no method of that name: MissingMethod, stop
//  2. parameter count (receiver included) differs: WrongParamCount, stop
//  3. each incompatible parameter: ParamTypeMismatch
//  4. incompatible return: ReturnTypeMismatch
package signature
