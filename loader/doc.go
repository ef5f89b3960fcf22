// Package loader builds contracts from declarative sources.
//
// Supported sources:
//
//   - YAML documents with named types and contracts (ParseYAML, LoadFile)
//   - .proto files, one contract per service (LoadProto)
//   - running gRPC servers through server reflection (LoadGRPC)
//   - WIT types from go.bytecodealliance.org/wit (FromWIT, SignatureFromWIT)
//
// Type expressions use WIT spelling:
//
//	u32, string, list<T>, option<T>, tuple<A, B>, array<T, 4>
//	own<T>      single pointer
//	borrow<T>   single const pointer
//	many<T>     many-item pointer
//	result<T, E>, result<_, E>, result   (returns only)
//
// Contracts may only embed contracts declared earlier in the same document.
// Errors carry the document path of the offending entry.
package loader
