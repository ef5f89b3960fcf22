// Package spec models contracts: named method sets composed from other
// contracts.
//
// A Spec owns its primary methods and refers to embedded specs. The same
// embedded spec may appear in several branches; the graph is walked, never
// copied.
//
// Two enumeration orders exist and each is fixed:
//
//   - Names is primary-first and drives ambiguity scanning and diagnostic order.
//   - Slots is embedded-first, depth-first, primary-last and drives the
//     positional dispatch layout.
//
// A name is ambiguous when it is contributed by two or more direct branches,
// the primary set counting as one branch. Ambiguity is about provenance:
// identical signatures in two branches are still ambiguous.
package spec
