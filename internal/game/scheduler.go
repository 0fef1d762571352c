package game

import (
	"container/heap"
	"fmt"
	"sort"
)

// EntityKind tags what an EntityRef points at.
type EntityKind uint8

const (
	EntityNone EntityKind = iota
	EntityTank
	EntityBullet
	EntityGate
	EntityPill
	EntityWorld
)

func (ek EntityKind) String() string {
	switch ek {
	case EntityTank:
		return "tank"
	case EntityBullet:
		return "bullet"
	case EntityGate:
		return "gate"
	case EntityPill:
		return "pill"
	case EntityWorld:
		return "world"
	default:
		return "none"
	}
}

// EntityRef names an entity without holding a pointer to it.
type EntityRef struct {
	Kind EntityKind
	ID   int
}

// DeferredFunc runs when its timer expires. It must look the target up and
// do nothing if it no longer exists.
type DeferredFunc func(w *World, ref EntityRef)

type timer struct {
	expiry int
	seq    int // insertion order, breaks expiry ties
	ref    EntityRef
	label  string
	fn     DeferredFunc
}

type timerHeap []*timer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	if h[i].expiry != h[j].expiry {
		return h[i].expiry < h[j].expiry
	}
	return h[i].seq < h[j].seq
}
func (h timerHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *timerHeap) Push(x any) { *h = append(*h, x.(*timer)) }
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return it
}

// Scheduler holds one-shot callbacks ordered by expiry tick. There is no
// cancel: callbacks re-check liveness themselves.
type Scheduler struct {
	pending timerHeap
	seq     int
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// After queues fn to run once the tick counter reaches now+delay.
func (s *Scheduler) After(now, delay int, label string, ref EntityRef, fn DeferredFunc) {
	if delay < 0 {
		delay = 0
	}
	s.seq++
	heap.Push(&s.pending, &timer{
		expiry: now + delay,
		seq:    s.seq,
		ref:    ref,
		label:  label,
		fn:     fn,
	})
}

// Len returns the number of queued callbacks.
func (s *Scheduler) Len() int { return len(s.pending) }

// NextExpiry returns the earliest expiry, or false when idle.
func (s *Scheduler) NextExpiry() (int, bool) {
	if len(s.pending) == 0 {
		return 0, false
	}
	return s.pending[0].expiry, true
}

// Pending describes the queued callbacks in run order.
func (s *Scheduler) Pending() []string {
	ts := append(timerHeap(nil), s.pending...)
	sort.Sort(ts)
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = fmt.Sprintf("T=%d %s %s#%d", t.expiry, t.label, t.ref.Kind, t.ref.ID)
	}
	return out
}

// RunDue pops and runs every callback with expiry <= now, in expiry then
// insertion order. Callbacks scheduled while draining with a zero delay run
// in the same pass. It returns the number run.
func (s *Scheduler) RunDue(w *World, now int) int {
	n := 0
	for len(s.pending) > 0 && s.pending[0].expiry <= now {
		t := heap.Pop(&s.pending).(*timer)
		t.fn(w, t.ref)
		n++
	}
	return n
}
