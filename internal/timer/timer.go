// Package timer tracks at most one pending round-timeout per room.
//
// The registry maps are owned by the coordinator goroutine: Arm, Cancel
// and Match must only be called from it. The fire callback runs on the
// runtime timer goroutine and must do nothing but post a message back
// onto the coordinator inbox carrying the generation it was armed with;
// the coordinator re-checks the generation with Match before acting, so
// a fire that lost the race against a synchronous resolution is a no-op.
package timer

import "time"

type entry struct {
	timer *time.Timer
	gen   uint64
}

type Registry struct {
	armed map[string]*entry
	gens  map[string]uint64
}

func NewRegistry() *Registry {
	return &Registry{
		armed: make(map[string]*entry),
		gens:  make(map[string]uint64),
	}
}

// Arm schedules fire after d for the given room. Returns false without
// replacing anything if a timer is already armed; replacing is only
// valid after an explicit Cancel.
func (r *Registry) Arm(roomID string, d time.Duration, fire func(gen uint64)) bool {
	if _, ok := r.armed[roomID]; ok {
		return false
	}
	r.gens[roomID]++
	gen := r.gens[roomID]
	r.armed[roomID] = &entry{
		timer: time.AfterFunc(d, func() { fire(gen) }),
		gen:   gen,
	}
	return true
}

// Cancel stops and forgets the room's timer. Cancelling a room with no
// timer is a no-op, never an error.
func (r *Registry) Cancel(roomID string) {
	if e, ok := r.armed[roomID]; ok {
		e.timer.Stop()
		delete(r.armed, roomID)
	}
}

// Match reports whether the room still has a live timer of exactly this
// generation. A false result means the fire is stale and must be dropped.
func (r *Registry) Match(roomID string, gen uint64) bool {
	e, ok := r.armed[roomID]
	return ok && e.gen == gen
}

func (r *Registry) Armed(roomID string) bool {
	_, ok := r.armed[roomID]
	return ok
}
