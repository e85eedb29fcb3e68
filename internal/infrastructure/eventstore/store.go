package eventstore

import (
	"sort"
	"sync"
	"time"

	"tambo-herd/internal/domain/aggregate"
	"tambo-herd/internal/domain/event"
	"tambo-herd/pkg/errors"
)

// HerdStore is the in-memory source of truth for the current session: the
// animal registry plus the append-mostly event log. Events keep insertion
// order, which is not necessarily timestamp order.
//
// Aggregates never cross the lock boundary: lookups return detached copies
// and registration stores one, so only the store mutates its animals. A
// returned animal is a snapshot of the moment it was read.
type HerdStore struct {
	mu      sync.RWMutex
	animals map[string]*aggregate.Animal
	order   []string
	events  []event.DomainEvent
	lastID  int64
}

func NewHerdStore() *HerdStore {
	return &HerdStore{
		animals: make(map[string]*aggregate.Animal),
	}
}

// RegisterAnimal adds or replaces an animal. Replacing keeps the existing
// event history attached to the tag ID, matching bulk re-import behavior.
func (s *HerdStore) RegisterAnimal(a *aggregate.Animal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.animals[a.ID()]; !exists {
		s.order = append(s.order, a.ID())
	}
	s.animals[a.ID()] = a.Clone()
}

// Animal looks up one animal by tag ID. Absence is a result, not an error.
func (s *HerdStore) Animal(id string) (*aggregate.Animal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.animals[id]
	if !ok {
		return nil, false
	}
	return a.Clone(), true
}

// Animals returns the herd in registration order.
func (s *HerdStore) Animals() []*aggregate.Animal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*aggregate.Animal, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.animals[id].Clone())
	}
	return out
}

// RemoveAnimal deletes an animal and cascades deletion of its events.
// Removing a missing animal is a no-op.
func (s *HerdStore) RemoveAnimal(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.animals[id]; !ok {
		return
	}
	delete(s.animals, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	kept := s.events[:0]
	for _, ev := range s.events {
		if ev.AggregateID() != id {
			kept = append(kept, ev)
		}
	}
	s.events = kept
}

// AppendEvent validates the animal reference, assigns an ID when absent,
// stores the event and applies its state-transition rule to the owning
// animal. The event is returned unchanged apart from the assigned ID.
func (s *HerdStore) AppendEvent(ev event.DomainEvent) (event.DomainEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked(ev)
}

// AppendMany appends a batch. The batch stops at the first invalid reference;
// events before it stay appended.
func (s *HerdStore) AppendMany(events []event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range events {
		if _, err := s.appendLocked(ev); err != nil {
			return err
		}
	}
	return nil
}

func (s *HerdStore) appendLocked(ev event.DomainEvent) (event.DomainEvent, error) {
	a, ok := s.animals[ev.AggregateID()]
	if !ok {
		return nil, errors.NewInvalidReferenceError(ev.AggregateID())
	}
	event.AssignID(ev, s.nextIDLocked())
	if ev.EventID() > s.lastID {
		s.lastID = ev.EventID()
	}
	s.events = append(s.events, ev)
	a.Apply(ev)
	return ev, nil
}

// RemoveEvent deletes an event by ID and refolds the owning animal from its
// remaining history, so the derived state never keeps effects of a deleted
// event. Removing a missing ID is a no-op.
func (s *HerdStore) RemoveEvent(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, ev := range s.events {
		if ev.EventID() == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	animalID := s.events[idx].AggregateID()
	s.events = append(s.events[:idx], s.events[idx+1:]...)
	if a, ok := s.animals[animalID]; ok {
		a.Refold(s.eventsForLocked(animalID))
	}
}

// Event looks up one event by ID.
func (s *HerdStore) Event(id int64) (event.DomainEvent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ev := range s.events {
		if ev.EventID() == id {
			return ev, true
		}
	}
	return nil, false
}

// EventsByAnimal returns one animal's events in insertion order.
func (s *HerdStore) EventsByAnimal(animalID string) []event.DomainEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eventsForLocked(animalID)
}

// AllEvents returns the full log in insertion order.
func (s *HerdStore) AllEvents() []event.DomainEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]event.DomainEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Seed loads a persisted snapshot, replacing current contents. Events are
// ordered by their IDs, which the store hands out monotonically, and each
// animal is refolded from its baseline plus its seeded events so the cached
// state matches the log.
func (s *HerdStore) Seed(animals []*aggregate.Animal, events []event.DomainEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.animals = make(map[string]*aggregate.Animal, len(animals))
	s.order = s.order[:0]
	for _, a := range animals {
		s.animals[a.ID()] = a.Clone()
		s.order = append(s.order, a.ID())
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].EventID() < events[j].EventID() })
	s.events = events
	for _, ev := range events {
		if ev.EventID() > s.lastID {
			s.lastID = ev.EventID()
		}
	}
	for id, a := range s.animals {
		a.Refold(s.eventsForLocked(id))
	}
}

func (s *HerdStore) eventsForLocked(animalID string) []event.DomainEvent {
	var out []event.DomainEvent
	for _, ev := range s.events {
		if ev.AggregateID() == animalID {
			out = append(out, ev)
		}
	}
	return out
}

// nextIDLocked derives IDs from the clock, bumping past the last one handed
// out so two appends in the same nanosecond never collide.
func (s *HerdStore) nextIDLocked() int64 {
	id := time.Now().UnixNano()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	return id
}
