package eventstore

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tambo-herd/internal/domain/aggregate"
	"tambo-herd/internal/domain/event"
	"tambo-herd/pkg/errors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func registered(t *testing.T, s *HerdStore, id string) *aggregate.Animal {
	t.Helper()
	a, err := aggregate.NewAnimal(aggregate.AnimalParams{ID: id})
	require.NoError(t, err)
	s.RegisterAnimal(a)
	return a
}

func TestAppendEventRejectsUnknownAnimal(t *testing.T) {
	s := NewHerdStore()

	_, err := s.AppendEvent(&event.HeatDetected{AnimalID: "ghost", Timestamp: date(2026, 8, 1)})
	require.Error(t, err)

	appErr, ok := err.(*errors.ApplicationError)
	require.True(t, ok)
	assert.Equal(t, "INVALID_REFERENCE", appErr.Code)
	assert.Empty(t, s.AllEvents())
}

func TestAppendEventAssignsIDAndAppliesRule(t *testing.T) {
	s := NewHerdStore()
	registered(t, s, "101")

	ev, err := s.AppendEvent(&event.InseminationPerformed{AnimalID: "101", Timestamp: date(2026, 1, 10)})
	require.NoError(t, err)

	assert.NotZero(t, ev.EventID())
	a, found := s.Animal("101")
	require.True(t, found)
	assert.Equal(t, aggregate.ReproInseminated, a.ReproductiveState())
}

func TestAppendEventKeepsExistingID(t *testing.T) {
	s := NewHerdStore()
	registered(t, s, "101")

	ev, err := s.AppendEvent(&event.HeatDetected{ID: 42, AnimalID: "101", Timestamp: date(2026, 1, 10)})
	require.NoError(t, err)
	assert.Equal(t, int64(42), ev.EventID())
}

func TestAppendedIDsAreUniqueAndIncreasing(t *testing.T) {
	s := NewHerdStore()
	registered(t, s, "101")

	var last int64
	for i := 0; i < 50; i++ {
		ev, err := s.AppendEvent(&event.HeatDetected{AnimalID: "101", Timestamp: date(2026, 1, 10)})
		require.NoError(t, err)
		assert.Greater(t, ev.EventID(), last)
		last = ev.EventID()
	}
}

func TestAnimalsKeepRegistrationOrder(t *testing.T) {
	s := NewHerdStore()
	registered(t, s, "c")
	registered(t, s, "a")
	registered(t, s, "b")

	var ids []string
	for _, a := range s.Animals() {
		ids = append(ids, a.ID())
	}
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestAnimalLookupReturnsDetachedSnapshot(t *testing.T) {
	s := NewHerdStore()
	registered(t, s, "101")

	before, found := s.Animal("101")
	require.True(t, found)

	_, err := s.AppendEvent(&event.CalvingRecorded{AnimalID: "101", Timestamp: date(2026, 1, 10)})
	require.NoError(t, err)

	// The earlier snapshot stays at the state it was read in.
	assert.Equal(t, 0, before.TotalCalvings())
	after, _ := s.Animal("101")
	assert.Equal(t, 1, after.TotalCalvings())
}

func TestConcurrentReadsDuringAppends(t *testing.T) {
	s := NewHerdStore()
	registered(t, s, "101")

	const rounds = 200
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			_, err := s.AppendEvent(&event.InseminationPerformed{AnimalID: "101", Timestamp: date(2026, 1, 10)})
			assert.NoError(t, err)
			_, err = s.AppendEvent(&event.CalvingRecorded{AnimalID: "101", Timestamp: date(2026, 1, 11)})
			assert.NoError(t, err)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < rounds; i++ {
			for _, a := range s.Animals() {
				_ = a.ReproductiveState()
				_ = a.TotalCalvings()
			}
		}
	}()
	wg.Wait()

	a, found := s.Animal("101")
	require.True(t, found)
	assert.Equal(t, rounds, a.TotalCalvings())
	assert.Equal(t, aggregate.ReproOpen, a.ReproductiveState())
}

func TestRemoveAnimalCascadesEvents(t *testing.T) {
	s := NewHerdStore()
	registered(t, s, "101")
	registered(t, s, "102")

	_, err := s.AppendEvent(&event.HeatDetected{AnimalID: "101", Timestamp: date(2026, 1, 10)})
	require.NoError(t, err)
	kept, err := s.AppendEvent(&event.HeatDetected{AnimalID: "102", Timestamp: date(2026, 1, 11)})
	require.NoError(t, err)

	s.RemoveAnimal("101")

	_, found := s.Animal("101")
	assert.False(t, found)
	events := s.AllEvents()
	require.Len(t, events, 1)
	assert.Equal(t, kept.EventID(), events[0].EventID())

	// Removing again is a no-op.
	s.RemoveAnimal("101")
	assert.Len(t, s.AllEvents(), 1)
}

func TestRemoveEventRefoldsAnimal(t *testing.T) {
	s := NewHerdStore()
	registered(t, s, "101")

	_, err := s.AppendEvent(&event.InseminationPerformed{AnimalID: "101", Timestamp: date(2026, 1, 10)})
	require.NoError(t, err)
	check, err := s.AppendEvent(&event.PregnancyCheckRecorded{
		AnimalID: "101", Timestamp: date(2026, 3, 10), Result: event.CheckPregnant,
	})
	require.NoError(t, err)
	pregnant, _ := s.Animal("101")
	require.Equal(t, aggregate.ReproPregnant, pregnant.ReproductiveState())

	s.RemoveEvent(check.EventID())

	refolded, _ := s.Animal("101")
	assert.Equal(t, aggregate.ReproInseminated, refolded.ReproductiveState())
	assert.Len(t, s.EventsByAnimal("101"), 1)
}

func TestRemoveEventMissingIsNoOp(t *testing.T) {
	s := NewHerdStore()
	registered(t, s, "101")
	_, err := s.AppendEvent(&event.HeatDetected{AnimalID: "101", Timestamp: date(2026, 1, 10)})
	require.NoError(t, err)

	before, _ := s.Animal("101")
	s.RemoveEvent(999999)

	after, _ := s.Animal("101")
	assert.Len(t, s.AllEvents(), 1)
	assert.Equal(t, before.LastHeat(), after.LastHeat())
}

func TestAppendManyStopsAtInvalidReference(t *testing.T) {
	s := NewHerdStore()
	registered(t, s, "101")

	err := s.AppendMany([]event.DomainEvent{
		&event.HeatDetected{AnimalID: "101", Timestamp: date(2026, 1, 10)},
		&event.HeatDetected{AnimalID: "ghost", Timestamp: date(2026, 1, 11)},
		&event.HeatDetected{AnimalID: "101", Timestamp: date(2026, 1, 12)},
	})

	require.Error(t, err)
	assert.Len(t, s.AllEvents(), 1)
}

func TestSeedOrdersByEventID(t *testing.T) {
	s := NewHerdStore()
	a, err := aggregate.NewAnimal(aggregate.AnimalParams{ID: "101"})
	require.NoError(t, err)

	s.Seed([]*aggregate.Animal{a}, []event.DomainEvent{
		&event.HeatDetected{ID: 30, AnimalID: "101", Timestamp: date(2026, 1, 12)},
		&event.HeatDetected{ID: 10, AnimalID: "101", Timestamp: date(2026, 1, 10)},
		&event.HeatDetected{ID: 20, AnimalID: "101", Timestamp: date(2026, 1, 11)},
	})

	events := s.AllEvents()
	require.Len(t, events, 3)
	assert.Equal(t, int64(10), events[0].EventID())
	assert.Equal(t, int64(30), events[2].EventID())

	// Seeding folds the stored history back into the cached state.
	seeded, found := s.Animal("101")
	require.True(t, found)
	assert.Equal(t, date(2026, 1, 12), seeded.LastHeat())

	// New appends continue past the seeded IDs.
	ev, err := s.AppendEvent(&event.HeatDetected{AnimalID: "101", Timestamp: date(2026, 1, 13)})
	require.NoError(t, err)
	assert.Greater(t, ev.EventID(), int64(30))
}
