package sim

import (
	"container/heap"
	"log"
)

// A PriorityLock admits one process at a time. Contenders that cannot acquire
// the lock immediately are parked and granted the lock in (priority, arrival)
// order, lowest priority value first. The grant hands the lock over directly:
// when a parked process is woken it already holds the lock.
type PriorityLock struct {
	name    string
	sched   ProcessScheduler
	holder  Process
	waiters lockWaiterHeap
	nextSeq uint64
}

// NewPriorityLock creates a PriorityLock. The scheduler wakes parked
// contenders when the lock is handed to them.
func NewPriorityLock(name string, sched ProcessScheduler) *PriorityLock {
	NameMustBeValid(name)

	l := new(PriorityLock)
	l.name = name
	l.sched = sched

	return l
}

// Name returns the name of the lock.
func (l *PriorityLock) Name() string {
	return l.name
}

// Acquire takes the lock for the process if it is free, returning true. If the
// lock is held, the process is parked and Acquire returns false. The process
// holds the lock when it is next woken.
func (l *PriorityLock) Acquire(p Process, priority int) bool {
	if l.holder == nil {
		l.holder = p
		return true
	}

	heap.Push(&l.waiters, lockWaiter{
		process:  p,
		priority: priority,
		seq:      l.nextSeq,
	})
	l.nextSeq++

	return false
}

// Release hands the lock to the highest-ranked parked contender, or frees it
// if nobody waits. Only the holder may release.
func (l *PriorityLock) Release(p Process) {
	if l.holder != p {
		log.Panic("releasing a lock that the process does not hold")
	}

	if l.waiters.Len() == 0 {
		l.holder = nil
		return
	}

	w := heap.Pop(&l.waiters).(lockWaiter)
	l.holder = w.process
	l.sched.ScheduleNow(w.process)
}

// Holder returns the process currently holding the lock, or nil.
func (l *PriorityLock) Holder() Process {
	return l.holder
}

// NumWaiting returns the number of parked contenders.
func (l *PriorityLock) NumWaiting() int {
	return l.waiters.Len()
}

type lockWaiter struct {
	process  Process
	priority int
	seq      uint64
}

type lockWaiterHeap []lockWaiter

func (h lockWaiterHeap) Len() int {
	return len(h)
}

func (h lockWaiterHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h lockWaiterHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *lockWaiterHeap) Push(x interface{}) {
	*h = append(*h, x.(lockWaiter))
}

func (h *lockWaiterHeap) Pop() interface{} {
	old := *h
	n := len(old)
	w := old[n-1]
	*h = old[0 : n-1]
	return w
}
