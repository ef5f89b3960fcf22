package registry

import (
	"sync"

	"github.com/wippyai/contract/dispatch"
	"github.com/wippyai/contract/errors"
)

// store is the slot array behind a Table. Freed IDs are reused LIFO.
type store struct {
	entries  []entry
	freeList []ID
	mu       sync.RWMutex
	closed   bool
}

type entry struct {
	handle      dispatch.Handle
	borrowCount uint32
	valid       bool
}

func newStore() *store {
	return &store{
		entries:  make([]entry, 0, 64),
		freeList: make([]ID, 0, 16),
	}
}

func (s *store) create(h dispatch.Handle) (ID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, errors.Closed(errors.PhaseRegistry, "registry")
	}

	e := entry{handle: h, valid: true}

	if len(s.freeList) > 0 {
		id := s.freeList[len(s.freeList)-1]
		s.freeList = s.freeList[:len(s.freeList)-1]
		s.entries[id-1] = e
		return id, nil
	}

	s.entries = append(s.entries, e)
	return ID(len(s.entries)), nil
}

// at returns the live entry for id. Callers hold mu.
func (s *store) at(id ID) (*entry, bool) {
	if id == 0 || int(id) > len(s.entries) {
		return nil, false
	}
	e := &s.entries[id-1]
	if !e.valid {
		return nil, false
	}
	return e, true
}

func (s *store) get(id ID) (dispatch.Handle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.at(id)
	if !ok {
		return dispatch.Handle{}, false
	}
	return e.handle, true
}

// drop frees id unless it is borrowed.
func (s *store) drop(id ID) (dispatch.Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.at(id)
	if !ok || e.borrowCount > 0 {
		return dispatch.Handle{}, false
	}

	h := e.handle
	*e = entry{}
	s.freeList = append(s.freeList, id)
	return h, true
}

func (s *store) borrow(id ID) (dispatch.Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.at(id)
	if !ok {
		return dispatch.Handle{}, false
	}
	e.borrowCount++
	return e.handle, true
}

func (s *store) release(id ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.at(id)
	if !ok || e.borrowCount == 0 {
		return false
	}
	e.borrowCount--
	return true
}

func (s *store) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, e := range s.entries {
		if e.valid {
			count++
		}
	}
	return count
}

// each visits live entries in ID order until fn returns false.
func (s *store) each(fn func(ID, dispatch.Handle) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, e := range s.entries {
		if e.valid && !fn(ID(i+1), e.handle) {
			return
		}
	}
}

func (s *store) close() []dispatch.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var live []dispatch.Handle
	for _, e := range s.entries {
		if e.valid {
			live = append(live, e.handle)
		}
	}
	s.entries = nil
	s.freeList = nil
	return live
}
