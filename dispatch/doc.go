// Package dispatch synthesizes dispatch tables and type-erased handles.
//
// A Table holds one adapter per contract method, laid out in the contract's
// slot order (embedded contracts first, primary methods last). Each adapter
// has the form
//
//	func(data unsafe.Pointer, params...) results
//
// and forwards to the implementation's method, dereferencing data for value
// receivers. Tables are built once per (contract, implementation type) and
// shared by every Handle of that type.
//
// Synthesis verifies the implementation first and fails without building
// anything when it does not satisfy the contract or when a method takes more
// than MaxArity parameters counting the receiver.
package dispatch
