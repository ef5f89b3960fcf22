// Package registry numbers live dispatch handles.
//
// A Table maps small integer IDs to dispatch.Handle values so that handles
// can cross boundaries that only carry integers:
//
//	reg := registry.NewTable()
//	id := reg.Insert(dispatch.NewHandle(unsafe.Pointer(repo), table))
//
//	h, ok := reg.GetFor(id, repositorySpec)
//	res, err := reg.Call(id, "Count")
//
// IDs start at 1 and freed IDs are reused. A handle pinned with Borrow cannot
// be removed until it is released; Call pins the handle while it runs.
//
// Observers receive EventCreated and EventRemoved synchronously.
package registry
