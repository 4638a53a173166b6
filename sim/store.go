package sim

import "log"

// HookPosStorePut marks when an element is put into the store.
var HookPosStorePut = &HookPos{Name: "Store Put"}

// HookPosStoreGet marks when an element leaves the store.
var HookPosStoreGet = &HookPos{Name: "Store Get"}

// A Store is a bounded FIFO queue that processes can block on. A process that
// calls Get on an empty store is parked and woken by a later Put, longest
// parked first. The woken process retries its Get when it resumes.
type Store interface {
	Named
	Hookable

	CanPut() bool
	Put(e interface{})
	Get(p Process) (interface{}, bool)
	Pop() interface{}
	Peek() interface{}

	// Remove takes the given element out of the store, wherever it queues.
	Remove(e interface{}) bool

	// RotateHead moves the head element to the back of the store.
	RotateHead()

	Capacity() int
	Size() int

	// Remove all elements in the store
	Clear()
}

// NewStore creates a store with the given capacity. The scheduler wakes
// parked getters.
func NewStore(name string, capacity int, sched ProcessScheduler) Store {
	NameMustBeValid(name)

	return &storeImpl{
		name:     name,
		capacity: capacity,
		sched:    sched,
	}
}

type storeImpl struct {
	HookableBase

	name     string
	capacity int
	sched    ProcessScheduler
	elements []interface{}
	waiters  []Process
}

// Name returns the name of the store.
func (s *storeImpl) Name() string {
	return s.name
}

func (s *storeImpl) CanPut() bool {
	return len(s.elements) < s.capacity
}

func (s *storeImpl) Put(e interface{}) {
	if len(s.elements) >= s.capacity {
		log.Panic("store overflow")
	}

	s.elements = append(s.elements, e)

	if s.NumHooks() > 0 {
		s.InvokeHook(HookCtx{
			Domain: s,
			Pos:    HookPosStorePut,
			Item:   e,
			Detail: nil,
		})
	}

	if len(s.waiters) > 0 {
		w := s.waiters[0]
		s.waiters = s.waiters[1:]
		s.sched.ScheduleNow(w)
	}
}

// Get returns the head element, or parks the process until one arrives. The
// second return value is false if the process was parked.
func (s *storeImpl) Get(p Process) (interface{}, bool) {
	if len(s.elements) == 0 {
		s.waiters = append(s.waiters, p)
		return nil, false
	}

	return s.takeHead(), true
}

func (s *storeImpl) Pop() interface{} {
	if len(s.elements) == 0 {
		return nil
	}

	return s.takeHead()
}

func (s *storeImpl) takeHead() interface{} {
	e := s.elements[0]
	s.elements = s.elements[1:]

	if s.NumHooks() > 0 {
		s.InvokeHook(HookCtx{
			Domain: s,
			Pos:    HookPosStoreGet,
			Item:   e,
			Detail: nil,
		})
	}

	return e
}

func (s *storeImpl) Peek() interface{} {
	if len(s.elements) == 0 {
		return nil
	}

	return s.elements[0]
}

func (s *storeImpl) Remove(e interface{}) bool {
	for i, elem := range s.elements {
		if elem == e {
			s.elements = append(s.elements[:i], s.elements[i+1:]...)

			if s.NumHooks() > 0 {
				s.InvokeHook(HookCtx{
					Domain: s,
					Pos:    HookPosStoreGet,
					Item:   e,
					Detail: nil,
				})
			}

			return true
		}
	}

	return false
}

func (s *storeImpl) RotateHead() {
	if len(s.elements) < 2 {
		return
	}

	head := s.elements[0]
	s.elements = append(s.elements[1:], head)
}

func (s *storeImpl) Capacity() int {
	return s.capacity
}

func (s *storeImpl) Size() int {
	return len(s.elements)
}

// Clear drops the queued elements and any parked getters.
func (s *storeImpl) Clear() {
	s.elements = nil
	s.waiters = nil
}
