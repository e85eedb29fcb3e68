package herd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tambo-herd/internal/domain/aggregate"
)

func TestGroupAnimalsPartitionsByLactation(t *testing.T) {
	now := date(2026, 8, 30)
	milking := mustAnimal(t, aggregate.AnimalParams{ID: "1"})
	resting := mustAnimal(t, aggregate.AnimalParams{ID: "2", Lactation: aggregate.Dry})

	g := GroupAnimals([]*aggregate.Animal{milking, resting}, now)

	require.Len(t, g.Lactating, 1)
	require.Len(t, g.Dry, 1)
	assert.Equal(t, "1", g.Lactating[0].ID())
	assert.Equal(t, "2", g.Dry[0].ID())
}

func TestGroupAnimalsByBreed(t *testing.T) {
	now := date(2026, 8, 30)
	animals := []*aggregate.Animal{
		mustAnimal(t, aggregate.AnimalParams{ID: "1", Breed: aggregate.BreedHolando}),
		mustAnimal(t, aggregate.AnimalParams{ID: "2", Breed: aggregate.BreedJersey}),
		mustAnimal(t, aggregate.AnimalParams{ID: "3", Breed: aggregate.BreedHolando}),
	}

	g := GroupAnimals(animals, now)

	assert.Len(t, g.ByBreed[aggregate.BreedHolando], 2)
	assert.Len(t, g.ByBreed[aggregate.BreedJersey], 1)
}

func TestApproachingCalvingWindow(t *testing.T) {
	now := date(2026, 8, 30)

	inside := mustAnimal(t, aggregate.AnimalParams{
		ID: "in", Reproductive: aggregate.ReproPregnant, ProbableCalving: date(2026, 9, 10),
	})
	edge := mustAnimal(t, aggregate.AnimalParams{
		ID: "edge", Reproductive: aggregate.ReproPregnant, ProbableCalving: date(2026, 9, 14),
	})
	beyond := mustAnimal(t, aggregate.AnimalParams{
		ID: "out", Reproductive: aggregate.ReproPregnant, ProbableCalving: date(2026, 10, 30),
	})
	overdue := mustAnimal(t, aggregate.AnimalParams{
		ID: "late", Reproductive: aggregate.ReproPregnant, ProbableCalving: date(2026, 8, 20),
	})
	noDate := mustAnimal(t, aggregate.AnimalParams{ID: "none"})

	g := GroupAnimals([]*aggregate.Animal{inside, edge, beyond, overdue, noDate}, now)

	ids := make([]string, 0, len(g.ApproachingCalving))
	for _, a := range g.ApproachingCalving {
		ids = append(ids, a.ID())
	}
	assert.Equal(t, []string{"in", "edge"}, ids)
}

func TestApproachingDryOffWindow(t *testing.T) {
	now := date(2026, 8, 30)

	// Dry-off target is the probable calving minus 60 days.
	due := mustAnimal(t, aggregate.AnimalParams{
		ID: "due", Reproductive: aggregate.ReproPregnant, ProbableCalving: date(2026, 11, 5),
	})
	slightlyPast := mustAnimal(t, aggregate.AnimalParams{
		ID: "past", Reproductive: aggregate.ReproPregnant, ProbableCalving: date(2026, 10, 25),
	})
	tooEarly := mustAnimal(t, aggregate.AnimalParams{
		ID: "early", Reproductive: aggregate.ReproPregnant, ProbableCalving: date(2027, 1, 15),
	})
	alreadyDry := mustAnimal(t, aggregate.AnimalParams{
		ID: "dry", Lactation: aggregate.Dry, Reproductive: aggregate.ReproPregnant, ProbableCalving: date(2026, 11, 5),
	})

	g := GroupAnimals([]*aggregate.Animal{due, slightlyPast, tooEarly, alreadyDry}, now)

	ids := make([]string, 0, len(g.ApproachingDryOff))
	for _, a := range g.ApproachingDryOff {
		ids = append(ids, a.ID())
	}
	assert.Equal(t, []string{"due", "past"}, ids)
}
