package herd

import (
	"time"

	"tambo-herd/internal/domain/aggregate"
	"tambo-herd/internal/domain/event"
)

// Metrics are the point-in-time reproduction figures for one animal.
type Metrics struct {
	DaysInMilk int `json:"days_in_milk"`
	DaysOpen   int `json:"days_open"`
	AgeMonths  int `json:"age_months"`
}

// ComputeMetrics evaluates all metrics for an animal against now.
func ComputeMetrics(a *aggregate.Animal, events []event.DomainEvent, now time.Time) Metrics {
	return Metrics{
		DaysInMilk: DaysInMilk(a, now),
		DaysOpen:   DaysOpen(a, events, now),
		AgeMonths:  AgeMonths(a, now),
	}
}

// DaysInMilk is the whole-day count since the last calving, 0 with no calving
// on record.
func DaysInMilk(a *aggregate.Animal, now time.Time) int {
	last := a.LastCalving()
	if last.IsZero() {
		return 0
	}
	return daysBetween(last, now)
}

// DaysOpen is the calving-to-conception interval. While the animal is still
// open it equals DaysInMilk. Once pregnant, the conception service is the
// insemination with the latest timestamp at or before the confirming
// pregnancy check; with no check on record the latest insemination wins.
func DaysOpen(a *aggregate.Animal, events []event.DomainEvent, now time.Time) int {
	last := a.LastCalving()
	if last.IsZero() {
		return 0
	}
	if a.ReproductiveState() != aggregate.ReproPregnant {
		return DaysInMilk(a, now)
	}

	var confirmed time.Time
	for _, ev := range events {
		check, ok := ev.(*event.PregnancyCheckRecorded)
		if !ok || check.Result != event.CheckPregnant {
			continue
		}
		if check.Timestamp.After(confirmed) {
			confirmed = check.Timestamp
		}
	}

	var conception time.Time
	for _, ev := range events {
		svc, ok := ev.(*event.InseminationPerformed)
		if !ok {
			continue
		}
		if !confirmed.IsZero() && svc.Timestamp.After(confirmed) {
			continue
		}
		if svc.Timestamp.After(conception) {
			conception = svc.Timestamp
		}
	}
	if conception.IsZero() {
		return 0
	}
	return daysBetween(last, conception)
}

// AgeMonths is the whole-month difference between the birth date and now,
// 0 when the birth date is missing or malformed.
func AgeMonths(a *aggregate.Animal, now time.Time) int {
	birth := a.BirthDate()
	if birth.IsZero() || birth.After(now) {
		return 0
	}
	months := (now.Year()-birth.Year())*12 + int(now.Month()) - int(birth.Month())
	if now.Day() < birth.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// UnderWithholding reports whether any treatment among the animal's events has
// a release date strictly in the future. The predicate is time-relative: it
// flips off on its own once now passes the release date.
func UnderWithholding(events []event.DomainEvent, now time.Time) bool {
	for _, ev := range events {
		if t, ok := ev.(*event.HealthTreatmentApplied); ok {
			if release := t.Release(); release.After(now) {
				return true
			}
		}
	}
	return false
}

// MedicalSummary is the herd-wide milk-withholding picture.
type MedicalSummary struct {
	InTreatment int      `json:"in_treatment"`
	Withheld    []string `json:"withheld_animals"`
}

// SummarizeWithholding collects the animals whose milk must currently be kept
// out of the supply.
func SummarizeWithholding(events []event.DomainEvent, now time.Time) MedicalSummary {
	seen := map[string]bool{}
	var withheld []string
	for _, ev := range events {
		t, ok := ev.(*event.HealthTreatmentApplied)
		if !ok || seen[t.AnimalID] {
			continue
		}
		if t.Release().After(now) {
			seen[t.AnimalID] = true
			withheld = append(withheld, t.AnimalID)
		}
	}
	return MedicalSummary{InTreatment: len(withheld), Withheld: withheld}
}

// daysBetween is the whole-day difference from a to b, truncated toward zero.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
