package herd

import (
	"fmt"
	"sort"
	"time"

	"tambo-herd/internal/domain/aggregate"
	"tambo-herd/internal/domain/event"
)

const (
	maxAlerts         = 10
	daysInMilkCeiling = 300
	estrusCycleDays   = 21
	heatForecastDays  = 3
)

type AlertSeverity string

const (
	SeverityUrgent    AlertSeverity = "urgent"
	SeverityAttention AlertSeverity = "attention"
	SeverityInfo      AlertSeverity = "info"
)

// Alert is one actionable notification for the day board.
type Alert struct {
	ID       string        `json:"id"`
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
	Action   string        `json:"action"`
	Link     string        `json:"link"`
}

// Alerts scans the whole herd and produces at most 10 notifications.
// Withholding alerts come first, then reproductive-risk alerts, each in
// scan order.
func Alerts(animals []*aggregate.Animal, events []event.DomainEvent, now time.Time) []Alert {
	var alerts []Alert

	for _, ev := range events {
		t, ok := ev.(*event.HealthTreatmentApplied)
		if !ok {
			continue
		}
		if release := t.Release(); release.After(now) {
			alerts = append(alerts, Alert{
				ID:       fmt.Sprintf("withholding-%d", t.ID),
				Severity: SeverityUrgent,
				Message:  fmt.Sprintf("Animal %s - WITHHOLD MILK", t.AnimalID),
				Action:   fmt.Sprintf("Release: %s", FormatDate(release)),
				Link:     "/animals/" + t.AnimalID,
			})
		}
	}

	for _, a := range animals {
		del := DaysInMilk(a, now)
		if del > daysInMilkCeiling && a.ReproductiveState() != aggregate.ReproPregnant && a.Lactation() == aggregate.Lactating {
			alerts = append(alerts, Alert{
				ID:       "days-in-milk-" + a.ID(),
				Severity: SeverityUrgent,
				Message:  fmt.Sprintf("Animal %s - CRITICAL DAYS IN MILK (%d days)", a.ID(), del),
				Action:   "INVESTIGATE WHY SHE IS NOT PREGNANT",
				Link:     "/animals/" + a.ID(),
			})
		}
	}

	if len(alerts) > maxAlerts {
		alerts = alerts[:maxAlerts]
	}
	return alerts
}

// ActiveHeat pairs a fresh heat event with its animal, ready for the
// insemination-window calculation.
type ActiveHeat struct {
	Animal *aggregate.Animal
	Event  *event.HeatDetected
}

// ActiveHeats returns the heats less than one whole day old whose animals are
// not already inseminated or pregnant. Future-dated heats are data-entry
// mistakes and never make the board.
func ActiveHeats(lookup func(id string) (*aggregate.Animal, bool), events []event.DomainEvent, now time.Time) []ActiveHeat {
	var active []ActiveHeat
	for _, ev := range events {
		heat, ok := ev.(*event.HeatDetected)
		if !ok || heat.Timestamp.After(now) || daysBetween(heat.Timestamp, now) >= 1 {
			continue
		}
		a, found := lookup(heat.AnimalID)
		if !found {
			continue
		}
		if state := a.ReproductiveState(); state == aggregate.ReproInseminated || state == aggregate.ReproPregnant {
			continue
		}
		active = append(active, ActiveHeat{Animal: a, Event: heat})
	}
	return active
}

// HeatForecast predicts the next heat from the 21-day estrus cycle.
type HeatForecast struct {
	Animal    *aggregate.Animal
	NextHeat  time.Time
	DaysUntil int
}

// UpcomingHeats predicts next heats for non-pregnant animals with a recorded
// last heat, keeping the ones due within the next 3 days, soonest first.
func UpcomingHeats(animals []*aggregate.Animal, now time.Time) []HeatForecast {
	var forecasts []HeatForecast
	for _, a := range animals {
		if a.LastHeat().IsZero() || a.ReproductiveState() == aggregate.ReproPregnant {
			continue
		}
		next := a.LastHeat().AddDate(0, 0, estrusCycleDays)
		until := daysBetween(now, next)
		if until >= 0 && until <= heatForecastDays {
			forecasts = append(forecasts, HeatForecast{Animal: a, NextHeat: next, DaysUntil: until})
		}
	}
	sort.SliceStable(forecasts, func(i, j int) bool {
		return forecasts[i].DaysUntil < forecasts[j].DaysUntil
	})
	return forecasts
}
