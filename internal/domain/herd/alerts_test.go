package herd

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tambo-herd/internal/domain/aggregate"
	"tambo-herd/internal/domain/event"
)

func TestAlertsWithholdingComesFirst(t *testing.T) {
	now := date(2026, 8, 30)
	stale := mustAnimal(t, aggregate.AnimalParams{ID: "9", LastCalving: date(2025, 6, 1)})
	events := []event.DomainEvent{
		&event.HealthTreatmentApplied{ID: 1, AnimalID: "9", Timestamp: date(2026, 8, 28), WithholdingDays: 5},
	}

	alerts := Alerts([]*aggregate.Animal{stale}, events, now)
	require.Len(t, alerts, 2)
	assert.Equal(t, "withholding-1", alerts[0].ID)
	assert.Equal(t, SeverityUrgent, alerts[0].Severity)
	assert.Contains(t, alerts[0].Message, "WITHHOLD MILK")
	assert.Equal(t, "days-in-milk-9", alerts[1].ID)
	assert.Contains(t, alerts[1].Message, "CRITICAL DAYS IN MILK")
}

func TestAlertsExpireWithTime(t *testing.T) {
	events := []event.DomainEvent{
		&event.HealthTreatmentApplied{ID: 1, AnimalID: "9", Timestamp: date(2026, 8, 1), WithholdingDays: 5},
	}

	assert.Len(t, Alerts(nil, events, date(2026, 8, 3)), 1)
	assert.Empty(t, Alerts(nil, events, date(2026, 8, 10)))
}

func TestAlertsSkipPregnantAndDryForDaysInMilk(t *testing.T) {
	now := date(2026, 8, 30)
	pregnant := mustAnimal(t, aggregate.AnimalParams{
		ID: "1", LastCalving: date(2025, 6, 1), Reproductive: aggregate.ReproPregnant,
	})
	dry := mustAnimal(t, aggregate.AnimalParams{
		ID: "2", LastCalving: date(2025, 6, 1), Lactation: aggregate.Dry,
	})

	assert.Empty(t, Alerts([]*aggregate.Animal{pregnant, dry}, nil, now))
}

func TestAlertsCappedAtTen(t *testing.T) {
	now := date(2026, 8, 30)
	var animals []*aggregate.Animal
	for i := 0; i < 15; i++ {
		animals = append(animals, mustAnimal(t, aggregate.AnimalParams{
			ID: fmt.Sprintf("a%d", i), LastCalving: date(2025, 6, 1),
		}))
	}

	assert.Len(t, Alerts(animals, nil, now), 10)
}

func lookupOf(animals ...*aggregate.Animal) func(string) (*aggregate.Animal, bool) {
	byID := map[string]*aggregate.Animal{}
	for _, a := range animals {
		byID[a.ID()] = a
	}
	return func(id string) (*aggregate.Animal, bool) {
		a, ok := byID[id]
		return a, ok
	}
}

func TestActiveHeatsKeepsFreshActionableHeats(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	open := mustAnimal(t, aggregate.AnimalParams{ID: "1"})
	pregnant := mustAnimal(t, aggregate.AnimalParams{ID: "2", Reproductive: aggregate.ReproPregnant})

	events := []event.DomainEvent{
		&event.HeatDetected{AnimalID: "1", Timestamp: now.Add(-6 * time.Hour)},
		&event.HeatDetected{AnimalID: "1", Timestamp: now.Add(-48 * time.Hour)}, // too old
		&event.HeatDetected{AnimalID: "2", Timestamp: now.Add(-2 * time.Hour)},  // pregnant
		&event.HeatDetected{AnimalID: "3", Timestamp: now.Add(-1 * time.Hour)},  // unknown animal
	}

	active := ActiveHeats(lookupOf(open, pregnant), events, now)
	require.Len(t, active, 1)
	assert.Equal(t, "1", active[0].Animal.ID())
}

func TestActiveHeatsExcludesFutureDatedHeats(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	a := mustAnimal(t, aggregate.AnimalParams{ID: "1"})

	events := []event.DomainEvent{
		&event.HeatDetected{AnimalID: "1", Timestamp: now.Add(3 * time.Hour)},
		&event.HeatDetected{AnimalID: "1", Timestamp: now.AddDate(0, 0, 2)},
	}

	assert.Empty(t, ActiveHeats(lookupOf(a), events, now))
}

func TestActiveHeatsExcludesInseminatedAnimals(t *testing.T) {
	now := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	a := mustAnimal(t, aggregate.AnimalParams{ID: "1"})

	heat := &event.HeatDetected{AnimalID: "1", Timestamp: now.Add(-3 * time.Hour)}
	a.Apply(heat)
	a.Apply(&event.InseminationPerformed{AnimalID: "1", Timestamp: now.Add(-time.Hour)})

	assert.Empty(t, ActiveHeats(lookupOf(a), []event.DomainEvent{heat}, now))
}

func TestUpcomingHeatsWindowAndOrder(t *testing.T) {
	now := date(2026, 8, 30)

	soon := mustAnimal(t, aggregate.AnimalParams{ID: "soon", LastHeat: date(2026, 8, 10)})    // due in 1 day
	today := mustAnimal(t, aggregate.AnimalParams{ID: "today", LastHeat: date(2026, 8, 9)})   // due now
	far := mustAnimal(t, aggregate.AnimalParams{ID: "far", LastHeat: date(2026, 8, 20)})      // due in 11 days
	passed := mustAnimal(t, aggregate.AnimalParams{ID: "passed", LastHeat: date(2026, 7, 1)}) // cycle already missed
	pregnant := mustAnimal(t, aggregate.AnimalParams{
		ID: "preg", LastHeat: date(2026, 8, 10), Reproductive: aggregate.ReproPregnant,
	})
	never := mustAnimal(t, aggregate.AnimalParams{ID: "never"})

	forecasts := UpcomingHeats([]*aggregate.Animal{soon, today, far, passed, pregnant, never}, now)
	require.Len(t, forecasts, 2)
	assert.Equal(t, "today", forecasts[0].Animal.ID())
	assert.Equal(t, 0, forecasts[0].DaysUntil)
	assert.Equal(t, "soon", forecasts[1].Animal.ID())
	assert.Equal(t, 1, forecasts[1].DaysUntil)
}
