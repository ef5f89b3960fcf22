// Package descriptor describes type shapes and decides structural compatibility.
//
// A Descriptor is one of seven variants:
//
//	Primitive   scalar compared by name (uint32, example.com/app.UserID)
//	Struct      positional fields, exact names, tuple flag
//	Enum        positional variants, exact names and values
//	Array       fixed length and element
//	Pointer     single, many or slice; const and volatile qualifiers
//	Optional    element that may be absent
//	Opaque      anything else, compared by identity
//
// Descriptors are derived from Go types with Of (memoized per reflect.Type)
// or built directly by contract sources such as the loader package.
//
// # Go Type Mapping
//
//	Go type                         Descriptor
//	──────────────────────────────────────────────────────
//	bool, numbers, string           Primitive
//	integer type with EnumVariants  Enum
//	struct                          Struct
//	Option[T]                       Optional(T)
//	[N]T                            Array(N, T)
//	*T                              Pointer(single, T)
//	[]T                             Pointer(slice, T)
//	map, chan, func, interface      Opaque
//
// Go pointers carry no const or volatile qualifier, so descriptors derived
// from Go types are always mutable. A contract asking for a const pointer is
// therefore only satisfiable by another contract source, which is what the
// diagnostics hint points at.
//
// # Returns
//
// Return describes a method result as Direct(T) or Fallible(T). A trailing
// error result makes a Go method fallible; the remaining results form the
// payload. ReturnCompatible ignores the error domain.
package descriptor
