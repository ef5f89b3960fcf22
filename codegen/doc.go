// Package codegen writes static dispatch tables as Go source.
//
// The generated file has the same layout a synthesized dispatch.Table has,
// but every slot is an ordinary func literal, so calls through it need no
// reflection:
//
//	type RepositoryTable struct {
//		FindByID func(unsafe.Pointer, uint32) (descriptor.Option[store.User], error)
//		Create   func(unsafe.Pointer, store.User) (uint32, error)
//	}
//
//	func NewRepositoryTableForMemRepo() *RepositoryTable
//
//	type RepositoryHandle struct {
//		Data  unsafe.Pointer
//		Table *RepositoryTable
//	}
package codegen
