package herd

import (
	"time"

	"tambo-herd/internal/domain/aggregate"
)

// Calendar windows for the probable-calving overlays, in days.
const (
	calvingWindowDays = 15
	dryOffLeadDays    = 60
	dryOffEarlyDays   = -7
	dryOffLateDays    = 15
)

// Groups partitions the herd by lactation and breed, plus the two
// probable-calving overlays. Dry/Lactating is a true partition; the overlays
// may both hold the same animal, or neither.
type Groups struct {
	Dry                []*aggregate.Animal
	Lactating          []*aggregate.Animal
	ApproachingDryOff  []*aggregate.Animal
	ApproachingCalving []*aggregate.Animal
	ByBreed            map[aggregate.Breed][]*aggregate.Animal
}

// GroupAnimals classifies every animal. Animals with no probable calving date
// never appear in the date-window overlays.
func GroupAnimals(animals []*aggregate.Animal, now time.Time) Groups {
	g := Groups{ByBreed: make(map[aggregate.Breed][]*aggregate.Animal)}

	for _, a := range animals {
		if a.Lactation() == aggregate.Dry {
			g.Dry = append(g.Dry, a)
		} else {
			g.Lactating = append(g.Lactating, a)
		}
		g.ByBreed[a.Breed()] = append(g.ByBreed[a.Breed()], a)

		fpp := a.ProbableCalving()
		if fpp.IsZero() {
			continue
		}
		untilCalving := daysBetween(now, fpp)
		if untilCalving >= 0 && untilCalving <= calvingWindowDays {
			g.ApproachingCalving = append(g.ApproachingCalving, a)
		}
		untilDryOff := daysBetween(now, fpp.AddDate(0, 0, -dryOffLeadDays))
		if untilDryOff >= dryOffEarlyDays && untilDryOff <= dryOffLateDays && a.Lactation() == aggregate.Lactating {
			g.ApproachingDryOff = append(g.ApproachingDryOff, a)
		}
	}
	return g
}
