package ecs

import "fmt"

// Entity is a generational handle: the slot id sits in the low half and the
// slot's generation in the high half, so a handle to a destroyed entity
// never matches the slot's next occupant. The zero Entity is never issued.
type Entity uint64

type (
	entityID   uint32
	generation uint32
)

func newEntity(id entityID, gen generation) Entity {
	return Entity(gen)<<32 | Entity(id)
}

func (e Entity) slot() entityID  { return entityID(e & 0xffffffff) }
func (e Entity) gen() generation { return generation(e >> 32) }

func (e Entity) Valid() bool { return e.slot() != 0 }

func (e Entity) String() string {
	return fmt.Sprintf("%d#%d", e.slot(), e.gen())
}

// entityStore tracks slot generations and recycled slots. Slot ids start at 1.
type entityStore struct {
	gen   []generation
	alive []bool
	free  []entityID
	count int
}

func (s *entityStore) create() Entity {
	var id entityID
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.gen = append(s.gen, 0)
		s.alive = append(s.alive, false)
		id = entityID(len(s.gen))
	}
	s.alive[id-1] = true
	s.count++
	return newEntity(id, s.gen[id-1])
}

func (s *entityStore) destroy(e Entity) bool {
	if !s.isAlive(e) {
		return false
	}
	idx := e.slot() - 1
	s.alive[idx] = false
	s.gen[idx]++
	s.free = append(s.free, e.slot())
	s.count--
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	id := e.slot()
	if id == 0 || int(id) > len(s.gen) {
		return false
	}
	return s.alive[id-1] && s.gen[id-1] == e.gen()
}

// current returns the live handle for a slot id.
func (s *entityStore) current(id entityID) (Entity, bool) {
	if id == 0 || int(id) > len(s.gen) || !s.alive[id-1] {
		return 0, false
	}
	return newEntity(id, s.gen[id-1]), true
}

func (s *entityStore) list() []Entity {
	out := make([]Entity, 0, s.count)
	for i := range s.gen {
		if s.alive[i] {
			out = append(out, newEntity(entityID(i+1), s.gen[i]))
		}
	}
	return out
}
