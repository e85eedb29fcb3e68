package aggregate

import (
	"fmt"
	"time"

	"tambo-herd/internal/domain/event"
)

type Breed string

const (
	BreedHolando Breed = "Holando"
	BreedJersey  Breed = "Jersey"
	BreedCruza   Breed = "Cruza"
)

type Category string

const (
	CategoryCalf   Category = "calf"
	CategoryHeifer Category = "heifer"
	CategoryCow    Category = "cow"
)

type LactationState string

const (
	Lactating LactationState = "lactating"
	Dry       LactationState = "dry"
)

type ReproductiveState string

const (
	ReproOpen        ReproductiveState = "open"
	ReproInseminated ReproductiveState = "inseminated"
	ReproPregnant    ReproductiveState = "pregnant"
	ReproDry         ReproductiveState = "dry"
)

// GestationDays is the fixed bovine gestation length used for the probable
// calving date.
const GestationDays = 283

// baseline is the reproductive snapshot an animal starts from. A refold resets
// the derived fields to this snapshot before replaying the event history, so
// deleting an event rolls back the state it caused.
type baseline struct {
	lactation       LactationState
	repro           ReproductiveState
	lastCalving     time.Time
	totalCalvings   int
	probableCalving time.Time
	daysPregnant    int
	lastHeat        time.Time
}

// Animal is a herd member. Fixed attributes come from registration or import;
// the reproductive fields are a cache derived from the event history.
type Animal struct {
	id              string
	rp              string
	breed           Breed
	category        Category
	birthDate       time.Time
	sire            string
	dam             string
	visualNote      string
	establishmentID string

	lactation       LactationState
	repro           ReproductiveState
	lastCalving     time.Time
	totalCalvings   int
	probableCalving time.Time
	daysPregnant    int
	lastHeat        time.Time

	base baseline
}

// AnimalParams carries registration data. Zero-valued optional fields fall
// back to the same defaults the bulk loader used.
type AnimalParams struct {
	ID              string
	RP              string
	Breed           Breed
	Category        Category
	BirthDate       time.Time
	Sire            string
	Dam             string
	VisualNote      string
	EstablishmentID string

	Lactation       LactationState
	Reproductive    ReproductiveState
	LastCalving     time.Time
	TotalCalvings   int
	ProbableCalving time.Time
	DaysPregnant    int
	LastHeat        time.Time
}

func NewAnimal(p AnimalParams) (*Animal, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("animal tag ID cannot be empty")
	}
	if p.TotalCalvings < 0 {
		return nil, fmt.Errorf("invalid total calvings: %d", p.TotalCalvings)
	}
	switch p.Breed {
	case "":
		p.Breed = BreedHolando
	case BreedHolando, BreedJersey, BreedCruza:
	default:
		return nil, fmt.Errorf("unknown breed: %s", p.Breed)
	}
	switch p.Category {
	case "":
		p.Category = CategoryCow
	case CategoryCalf, CategoryHeifer, CategoryCow:
	default:
		return nil, fmt.Errorf("unknown category: %s", p.Category)
	}
	switch p.Lactation {
	case "":
		p.Lactation = Lactating
	case Lactating, Dry:
	default:
		return nil, fmt.Errorf("unknown lactation state: %s", p.Lactation)
	}
	switch p.Reproductive {
	case "":
		p.Reproductive = ReproOpen
	case ReproOpen, ReproInseminated, ReproPregnant, ReproDry:
	default:
		return nil, fmt.Errorf("unknown reproductive state: %s", p.Reproductive)
	}
	if p.Reproductive != ReproPregnant && p.Reproductive != ReproInseminated {
		// Keep the probable calving date consistent with the state.
		p.ProbableCalving = time.Time{}
		p.DaysPregnant = 0
	}

	a := &Animal{
		id:              p.ID,
		rp:              p.RP,
		breed:           p.Breed,
		category:        p.Category,
		birthDate:       p.BirthDate,
		sire:            p.Sire,
		dam:             p.Dam,
		visualNote:      p.VisualNote,
		establishmentID: p.EstablishmentID,
		base: baseline{
			lactation:       p.Lactation,
			repro:           p.Reproductive,
			lastCalving:     p.LastCalving,
			totalCalvings:   p.TotalCalvings,
			probableCalving: p.ProbableCalving,
			daysPregnant:    p.DaysPregnant,
			lastHeat:        p.LastHeat,
		},
	}
	a.resetToBaseline()
	return a, nil
}

// NewAnimalFromHistory registers the animal and folds its full event history,
// the recovery path for a desynced cache.
func NewAnimalFromHistory(p AnimalParams, events []event.DomainEvent) (*Animal, error) {
	a, err := NewAnimal(p)
	if err != nil {
		return nil, err
	}
	a.Refold(events)
	return a, nil
}

func (a *Animal) resetToBaseline() {
	a.lactation = a.base.lactation
	a.repro = a.base.repro
	a.lastCalving = a.base.lastCalving
	a.totalCalvings = a.base.totalCalvings
	a.probableCalving = a.base.probableCalving
	a.daysPregnant = a.base.daysPregnant
	a.lastHeat = a.base.lastHeat
}

// Apply runs the single state-transition rule for the event's type. Rules are
// independent per type; events that carry no reproductive meaning (treatments,
// milk tests) leave the state untouched.
func (a *Animal) Apply(ev event.DomainEvent) {
	switch e := ev.(type) {
	case *event.InseminationPerformed:
		a.repro = ReproInseminated
		a.probableCalving = e.Timestamp.AddDate(0, 0, GestationDays)

	case *event.PregnancyCheckRecorded:
		if e.Result == event.CheckPregnant {
			a.repro = ReproPregnant
			if e.MonthsGestation > 0 {
				a.daysPregnant = e.MonthsGestation * 30
			}
		} else {
			a.repro = ReproOpen
			a.probableCalving = time.Time{}
			a.daysPregnant = 0
		}

	case *event.CalvingRecorded:
		a.repro = ReproOpen
		a.lactation = Lactating
		a.lastCalving = e.Timestamp
		a.totalCalvings++
		a.probableCalving = time.Time{}
		a.daysPregnant = 0

	case *event.HeatDetected:
		// A heat observed while marked pregnant means the pregnancy ended.
		if a.repro == ReproPregnant {
			a.repro = ReproOpen
			a.probableCalving = time.Time{}
			a.daysPregnant = 0
		}
		a.lastHeat = e.Timestamp

	case *event.DryOffRecorded:
		a.lactation = Dry

	case *event.HealthTreatmentApplied, *event.MilkTestRecorded:
		// No reproductive-state change.
	}
}

// Refold rebuilds the derived state from the registration baseline plus the
// given events, in the order the log holds them.
func (a *Animal) Refold(events []event.DomainEvent) {
	a.resetToBaseline()
	for _, ev := range events {
		a.Apply(ev)
	}
}

// Clone returns an independent copy. The aggregate holds only value fields,
// so the copy shares no state with the original.
func (a *Animal) Clone() *Animal {
	c := *a
	return &c
}

// BaselineSnapshot is the exported view of the registration baseline, used by
// the persistence layer to store what a refold starts from.
type BaselineSnapshot struct {
	Lactation       LactationState
	Reproductive    ReproductiveState
	LastCalving     time.Time
	TotalCalvings   int
	ProbableCalving time.Time
	DaysPregnant    int
	LastHeat        time.Time
}

func (a *Animal) Baseline() BaselineSnapshot {
	return BaselineSnapshot{
		Lactation:       a.base.lactation,
		Reproductive:    a.base.repro,
		LastCalving:     a.base.lastCalving,
		TotalCalvings:   a.base.totalCalvings,
		ProbableCalving: a.base.probableCalving,
		DaysPregnant:    a.base.daysPregnant,
		LastHeat:        a.base.lastHeat,
	}
}

func (a *Animal) ID() string                           { return a.id }
func (a *Animal) RP() string                           { return a.rp }
func (a *Animal) Breed() Breed                         { return a.breed }
func (a *Animal) Category() Category                   { return a.category }
func (a *Animal) BirthDate() time.Time                 { return a.birthDate }
func (a *Animal) Sire() string                         { return a.sire }
func (a *Animal) Dam() string                          { return a.dam }
func (a *Animal) VisualNote() string                   { return a.visualNote }
func (a *Animal) EstablishmentID() string              { return a.establishmentID }
func (a *Animal) Lactation() LactationState            { return a.lactation }
func (a *Animal) ReproductiveState() ReproductiveState { return a.repro }
func (a *Animal) LastCalving() time.Time               { return a.lastCalving }
func (a *Animal) TotalCalvings() int                   { return a.totalCalvings }
func (a *Animal) ProbableCalving() time.Time           { return a.probableCalving }
func (a *Animal) DaysPregnant() int                    { return a.daysPregnant }
func (a *Animal) LastHeat() time.Time                  { return a.lastHeat }
