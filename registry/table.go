package registry

import (
	"reflect"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/contract/dispatch"
	"github.com/wippyai/contract/errors"
	"github.com/wippyai/contract/spec"
)

// Table numbers live dispatch handles so they can be passed around as plain
// integers. It is safe for concurrent use.
type Table struct {
	store     *store
	observers []Observer
	instance  uuid.UUID
	mu        sync.RWMutex
}

// NewTable creates an empty table with a fresh instance ID.
func NewTable() *Table {
	return &Table{store: newStore(), instance: uuid.New()}
}

// Instance identifies the table in events, so one observer can watch
// several tables.
func (t *Table) Instance() uuid.UUID {
	return t.instance
}

// Insert stores h and returns its ID. It returns 0 for a zero handle or a
// closed table.
func (t *Table) Insert(h dispatch.Handle) ID {
	if h.IsZero() {
		return 0
	}
	id, err := t.store.create(h)
	if err != nil {
		Logger().Debug("insert rejected", zap.Error(err))
		return 0
	}
	t.notify(Event{Type: EventCreated, ID: id, Handle: h, Contract: contractName(h)})
	return id
}

// Get returns the handle stored under id.
func (t *Table) Get(id ID) (dispatch.Handle, bool) {
	return t.store.get(id)
}

// GetFor returns the handle under id only if its table was synthesized for
// contract.
func (t *Table) GetFor(id ID, contract *spec.Spec) (dispatch.Handle, bool) {
	h, ok := t.store.get(id)
	if !ok || h.Table().Spec() != contract {
		return dispatch.Handle{}, false
	}
	return h, true
}

// Remove deletes id and returns its handle. Borrowed handles are not removed.
func (t *Table) Remove(id ID) (dispatch.Handle, bool) {
	h, ok := t.store.drop(id)
	if !ok {
		return dispatch.Handle{}, false
	}
	t.notify(Event{Type: EventRemoved, ID: id, Handle: h, Contract: contractName(h)})
	return h, true
}

// Borrow pins id so Remove fails until the matching Release.
func (t *Table) Borrow(id ID) (dispatch.Handle, bool) {
	return t.store.borrow(id)
}

// Release undoes one Borrow.
func (t *Table) Release(id ID) bool {
	return t.store.release(id)
}

// Call invokes method on the handle under id. The handle stays borrowed for
// the duration of the call.
func (t *Table) Call(id ID, method string, args ...any) (any, error) {
	h, ok := t.store.borrow(id)
	if !ok {
		return nil, errors.New(errors.PhaseRegistry, errors.KindNotFound).
			Value(id).
			Detail("handle %d not found", id).
			Build()
	}
	defer t.store.release(id)
	return h.Call(method, args...)
}

// Subscribe registers an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer. Observers of uncomparable types, such as
// ObserverFunc, cannot be removed.
func (t *Table) Unsubscribe(o Observer) {
	if o == nil || !reflect.TypeOf(o).Comparable() {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of live handles.
func (t *Table) Len() int {
	return t.store.len()
}

// Each visits live handles in ID order until fn returns false. fn must not
// modify the table.
func (t *Table) Each(fn func(ID, dispatch.Handle) bool) {
	t.store.each(fn)
}

// Clear removes every handle that is not borrowed.
func (t *Table) Clear() {
	var ids []ID
	t.store.each(func(id ID, _ dispatch.Handle) bool {
		ids = append(ids, id)
		return true
	})
	for _, id := range ids {
		t.Remove(id)
	}
}

// Close releases the table. Later inserts return 0. Observers are not
// notified for handles dropped by Close.
func (t *Table) Close() {
	live := t.store.close()
	Logger().Debug("registry closed",
		zap.Stringer("table", t.instance),
		zap.Int("dropped", len(live)))

	t.mu.Lock()
	t.observers = nil
	t.mu.Unlock()
}

func (t *Table) notify(e Event) {
	e.Table = t.instance

	t.mu.RLock()
	observers := make([]Observer, len(t.observers))
	copy(observers, t.observers)
	t.mu.RUnlock()

	for _, o := range observers {
		o.OnHandleEvent(e)
	}
}

func contractName(h dispatch.Handle) string {
	if h.Table() == nil || h.Table().Spec() == nil {
		return ""
	}
	return h.Table().Spec().Name()
}
