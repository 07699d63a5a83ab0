package modelrender

import "modelbins/internal/sim"

// objectSet is an unordered set of objects keyed by id. Items are kept dense
// for iteration; removal swaps the last item into the hole.
type objectSet[T any] struct {
	items []T
	ids   []sim.ObjectID
	index map[sim.ObjectID]int
}

func newObjectSet[T any]() *objectSet[T] {
	return &objectSet[T]{index: make(map[sim.ObjectID]int)}
}

// add inserts obj unless id is already present. It reports whether it inserted.
func (s *objectSet[T]) add(id sim.ObjectID, obj T) bool {
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = len(s.items)
	s.items = append(s.items, obj)
	s.ids = append(s.ids, id)
	return true
}

// get returns a pointer to the stored item for in-place updates.
// The pointer is invalidated by the next add or del.
func (s *objectSet[T]) get(id sim.ObjectID) (*T, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return &s.items[i], true
}

// del removes id. It reports whether id was present.
func (s *objectSet[T]) del(id sim.ObjectID) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	last := len(s.items) - 1
	if i != last {
		s.items[i] = s.items[last]
		s.ids[i] = s.ids[last]
		s.index[s.ids[i]] = i
	}
	var zero T
	s.items[last] = zero
	s.items = s.items[:last]
	s.ids = s.ids[:last]
	delete(s.index, id)
	return true
}

func (s *objectSet[T]) len() int { return len(s.items) }

// binMap holds one objectSet per texture type. Sets never stay in the map
// once empty.
type binMap[T any] map[int]*objectSet[T]

func (b binMap[T]) add(tex int, id sim.ObjectID, obj T) bool {
	s, ok := b[tex]
	if !ok {
		s = newObjectSet[T]()
		b[tex] = s
	}
	return s.add(id, obj)
}

func (b binMap[T]) get(tex int, id sim.ObjectID) (*T, bool) {
	s, ok := b[tex]
	if !ok {
		return nil, false
	}
	return s.get(id)
}

func (b binMap[T]) del(tex int, id sim.ObjectID) bool {
	s, ok := b[tex]
	if !ok {
		return false
	}
	removed := s.del(id)
	if s.len() == 0 {
		delete(b, tex)
	}
	return removed
}

// featureEntry pairs a feature with the opacity it was registered at.
type featureEntry struct {
	feature *sim.Feature
	alpha   float32
}
