package herd

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tambo-herd/internal/domain/aggregate"
	"tambo-herd/internal/domain/event"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustAnimal(t *testing.T, p aggregate.AnimalParams) *aggregate.Animal {
	t.Helper()
	a, err := aggregate.NewAnimal(p)
	require.NoError(t, err)
	return a
}

func TestDaysInMilk(t *testing.T) {
	now := date(2026, 8, 30)

	fresh := mustAnimal(t, aggregate.AnimalParams{ID: "1", LastCalving: date(2026, 8, 1)})
	assert.Equal(t, 29, DaysInMilk(fresh, now))

	noCalving := mustAnimal(t, aggregate.AnimalParams{ID: "2"})
	assert.Equal(t, 0, DaysInMilk(noCalving, now))
}

func TestDaysOpenWhileOpenEqualsDaysInMilk(t *testing.T) {
	now := date(2026, 8, 30)
	a := mustAnimal(t, aggregate.AnimalParams{ID: "1", LastCalving: date(2026, 6, 1)})

	assert.Equal(t, DaysInMilk(a, now), DaysOpen(a, nil, now))
}

func TestDaysOpenUsesConceptionService(t *testing.T) {
	now := date(2026, 8, 30)
	a := mustAnimal(t, aggregate.AnimalParams{
		ID: "1", LastCalving: date(2026, 1, 1), Reproductive: aggregate.ReproPregnant,
	})

	events := []event.DomainEvent{
		&event.InseminationPerformed{AnimalID: "1", Timestamp: date(2026, 2, 20)},
		&event.InseminationPerformed{AnimalID: "1", Timestamp: date(2026, 4, 1)},
		&event.PregnancyCheckRecorded{AnimalID: "1", Timestamp: date(2026, 5, 15), Result: event.CheckPregnant},
		// Later service after the confirming check must not win.
		&event.InseminationPerformed{AnimalID: "1", Timestamp: date(2026, 6, 1)},
	}

	assert.Equal(t, 90, DaysOpen(a, events, now)) // Jan 1 to Apr 1
}

func TestDaysOpenWithoutCheckUsesLatestService(t *testing.T) {
	now := date(2026, 8, 30)
	a := mustAnimal(t, aggregate.AnimalParams{
		ID: "1", LastCalving: date(2026, 1, 1), Reproductive: aggregate.ReproPregnant,
	})
	events := []event.DomainEvent{
		&event.InseminationPerformed{AnimalID: "1", Timestamp: date(2026, 3, 1)},
		&event.InseminationPerformed{AnimalID: "1", Timestamp: date(2026, 3, 22)},
	}

	assert.Equal(t, 80, DaysOpen(a, events, now)) // Jan 1 to Mar 22
}

func TestDaysOpenPregnantWithoutRecordedService(t *testing.T) {
	now := date(2026, 8, 30)
	a := mustAnimal(t, aggregate.AnimalParams{
		ID: "1", LastCalving: date(2026, 1, 1), Reproductive: aggregate.ReproPregnant,
	})
	assert.Equal(t, 0, DaysOpen(a, nil, now))
}

func TestDaysOpenNoCalving(t *testing.T) {
	a := mustAnimal(t, aggregate.AnimalParams{ID: "1", Reproductive: aggregate.ReproPregnant})
	assert.Equal(t, 0, DaysOpen(a, nil, date(2026, 8, 30)))
}

func TestAgeMonths(t *testing.T) {
	now := date(2026, 8, 30)

	a := mustAnimal(t, aggregate.AnimalParams{ID: "1", BirthDate: date(2024, 8, 15)})
	assert.Equal(t, 24, AgeMonths(a, now))

	// Day-of-month not yet reached rounds down.
	b := mustAnimal(t, aggregate.AnimalParams{ID: "2", BirthDate: date(2024, 9, 15)})
	assert.Equal(t, 23, AgeMonths(b, now))

	missing := mustAnimal(t, aggregate.AnimalParams{ID: "3"})
	assert.Equal(t, 0, AgeMonths(missing, now))

	future := mustAnimal(t, aggregate.AnimalParams{ID: "4", BirthDate: date(2027, 1, 1)})
	assert.Equal(t, 0, AgeMonths(future, now))
}

func TestUnderWithholdingIsTimeRelative(t *testing.T) {
	treated := date(2026, 8, 25)
	events := []event.DomainEvent{
		&event.HealthTreatmentApplied{AnimalID: "1", Timestamp: treated, WithholdingDays: 4},
	}
	release := treated.AddDate(0, 0, 4)

	assert.True(t, UnderWithholding(events, release.Add(-time.Hour)))
	// The release date itself is not strictly after now.
	assert.False(t, UnderWithholding(events, release))
	assert.False(t, UnderWithholding(events, release.Add(time.Hour)))
}

func TestUnderWithholdingIgnoresTreatmentsWithoutWindow(t *testing.T) {
	events := []event.DomainEvent{
		&event.HealthTreatmentApplied{AnimalID: "1", Timestamp: date(2026, 8, 25)},
	}
	assert.False(t, UnderWithholding(events, date(2026, 8, 26)))
}

// Full cycle: service, confirmation and calving on a fresh animal.
func TestReproductiveCycleMetrics(t *testing.T) {
	a := mustAnimal(t, aggregate.AnimalParams{ID: "42", BirthDate: date(2023, 8, 30)})
	served := date(2026, 1, 1)

	assert.Equal(t, Metrics{DaysInMilk: 0, DaysOpen: 0, AgeMonths: 36}, ComputeMetrics(a, nil, date(2026, 8, 30)))

	a.Apply(&event.InseminationPerformed{AnimalID: "42", Timestamp: served})
	assert.Equal(t, aggregate.ReproInseminated, a.ReproductiveState())
	assert.Equal(t, served.AddDate(0, 0, aggregate.GestationDays), a.ProbableCalving())

	a.Apply(&event.PregnancyCheckRecorded{
		AnimalID: "42", Timestamp: served.AddDate(0, 0, 60),
		Result: event.CheckPregnant, MonthsGestation: 2,
	})
	assert.Equal(t, aggregate.ReproPregnant, a.ReproductiveState())
	assert.Equal(t, 60, a.DaysPregnant())

	a.Apply(&event.CalvingRecorded{AnimalID: "42", Timestamp: served.AddDate(0, 0, aggregate.GestationDays)})
	assert.Equal(t, 1, a.TotalCalvings())
	assert.Equal(t, aggregate.ReproOpen, a.ReproductiveState())
	assert.Equal(t, served.AddDate(0, 0, aggregate.GestationDays), a.LastCalving())
}

func TestSummarizeWithholdingDeduplicatesAnimals(t *testing.T) {
	now := date(2026, 8, 30)
	events := []event.DomainEvent{
		&event.HealthTreatmentApplied{AnimalID: "1", Timestamp: date(2026, 8, 28), WithholdingDays: 5},
		&event.HealthTreatmentApplied{AnimalID: "1", Timestamp: date(2026, 8, 29), WithholdingDays: 5},
		&event.HealthTreatmentApplied{AnimalID: "2", Timestamp: date(2026, 8, 1), WithholdingDays: 3},
	}

	summary := SummarizeWithholding(events, now)
	assert.Equal(t, 1, summary.InTreatment)
	assert.Equal(t, []string{"1"}, summary.Withheld)
}
