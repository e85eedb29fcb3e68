package projection

import (
	"fmt"
	"time"

	"tambo-herd/internal/domain/aggregate"
	"tambo-herd/internal/domain/event"
)

// BaselineDoc persists the registration snapshot an animal folds from, so a
// warm start can rebuild aggregates without double-applying the event log.
type BaselineDoc struct {
	Lactation       aggregate.LactationState    `bson:"lactation" json:"lactation"`
	Reproductive    aggregate.ReproductiveState `bson:"reproductive" json:"reproductive"`
	LastCalving     time.Time                   `bson:"last_calving,omitempty" json:"last_calving,omitempty"`
	TotalCalvings   int                         `bson:"total_calvings" json:"total_calvings"`
	ProbableCalving time.Time                   `bson:"probable_calving,omitempty" json:"probable_calving,omitempty"`
	DaysPregnant    int                         `bson:"days_pregnant" json:"days_pregnant"`
	LastHeat        time.Time                   `bson:"last_heat,omitempty" json:"last_heat,omitempty"`
}

// AnimalReadModel is the persisted view of one animal: fixed attributes, the
// cached derived state, and the fold baseline.
type AnimalReadModel struct {
	ID              string             `bson:"_id" json:"id"`
	RP              string             `bson:"rp,omitempty" json:"rp,omitempty"`
	Breed           aggregate.Breed    `bson:"breed" json:"breed"`
	Category        aggregate.Category `bson:"category" json:"category"`
	BirthDate       time.Time          `bson:"birth_date,omitempty" json:"birth_date,omitempty"`
	Sire            string             `bson:"sire,omitempty" json:"sire,omitempty"`
	Dam             string             `bson:"dam,omitempty" json:"dam,omitempty"`
	VisualNote      string             `bson:"visual_note,omitempty" json:"visual_note,omitempty"`
	EstablishmentID string             `bson:"establishment_id,omitempty" json:"establishment_id,omitempty"`

	Lactation       aggregate.LactationState    `bson:"lactation" json:"lactation"`
	Reproductive    aggregate.ReproductiveState `bson:"reproductive" json:"reproductive"`
	LastCalving     time.Time                   `bson:"last_calving,omitempty" json:"last_calving,omitempty"`
	TotalCalvings   int                         `bson:"total_calvings" json:"total_calvings"`
	ProbableCalving time.Time                   `bson:"probable_calving,omitempty" json:"probable_calving,omitempty"`
	DaysPregnant    int                         `bson:"days_pregnant" json:"days_pregnant"`
	LastHeat        time.Time                   `bson:"last_heat,omitempty" json:"last_heat,omitempty"`

	Baseline  BaselineDoc `bson:"baseline" json:"-"`
	UpdatedAt time.Time   `bson:"updated_at" json:"updated_at"`
}

// NewAnimalReadModel snapshots an aggregate into its persisted view.
func NewAnimalReadModel(a *aggregate.Animal) *AnimalReadModel {
	base := a.Baseline()
	return &AnimalReadModel{
		ID:              a.ID(),
		RP:              a.RP(),
		Breed:           a.Breed(),
		Category:        a.Category(),
		BirthDate:       a.BirthDate(),
		Sire:            a.Sire(),
		Dam:             a.Dam(),
		VisualNote:      a.VisualNote(),
		EstablishmentID: a.EstablishmentID(),
		Lactation:       a.Lactation(),
		Reproductive:    a.ReproductiveState(),
		LastCalving:     a.LastCalving(),
		TotalCalvings:   a.TotalCalvings(),
		ProbableCalving: a.ProbableCalving(),
		DaysPregnant:    a.DaysPregnant(),
		LastHeat:        a.LastHeat(),
		Baseline: BaselineDoc{
			Lactation:       base.Lactation,
			Reproductive:    base.Reproductive,
			LastCalving:     base.LastCalving,
			TotalCalvings:   base.TotalCalvings,
			ProbableCalving: base.ProbableCalving,
			DaysPregnant:    base.DaysPregnant,
			LastHeat:        base.LastHeat,
		},
		UpdatedAt: time.Now().UTC(),
	}
}

// ToAggregate rebuilds the aggregate from the baseline; the caller refolds the
// event history on top.
func (m *AnimalReadModel) ToAggregate() (*aggregate.Animal, error) {
	return aggregate.NewAnimal(aggregate.AnimalParams{
		ID:              m.ID,
		RP:              m.RP,
		Breed:           m.Breed,
		Category:        m.Category,
		BirthDate:       m.BirthDate,
		Sire:            m.Sire,
		Dam:             m.Dam,
		VisualNote:      m.VisualNote,
		EstablishmentID: m.EstablishmentID,
		Lactation:       m.Baseline.Lactation,
		Reproductive:    m.Baseline.Reproductive,
		LastCalving:     m.Baseline.LastCalving,
		TotalCalvings:   m.Baseline.TotalCalvings,
		ProbableCalving: m.Baseline.ProbableCalving,
		DaysPregnant:    m.Baseline.DaysPregnant,
		LastHeat:        m.Baseline.LastHeat,
	})
}

// EventReadModel flattens the event union into one document shape, the same
// trick the sync schema uses: type-specific columns are simply empty for
// other types.
type EventReadModel struct {
	ID              int64     `bson:"_id" json:"id"`
	AnimalID        string    `bson:"animal_id" json:"animal_id"`
	Type            string    `bson:"type" json:"type"`
	Timestamp       time.Time `bson:"timestamp" json:"timestamp"`
	Note            string    `bson:"note,omitempty" json:"note,omitempty"`
	RecordedBy      string    `bson:"recorded_by,omitempty" json:"recorded_by,omitempty"`
	EstablishmentID string    `bson:"establishment_id,omitempty" json:"establishment_id,omitempty"`

	Intensity       event.HeatIntensity   `bson:"intensity,omitempty" json:"intensity,omitempty"`
	SireCode        string                `bson:"sire_code,omitempty" json:"sire_code,omitempty"`
	Inseminator     string                `bson:"inseminator,omitempty" json:"inseminator,omitempty"`
	ServiceNumber   int                   `bson:"service_number,omitempty" json:"service_number,omitempty"`
	Result          event.CheckResult     `bson:"result,omitempty" json:"result,omitempty"`
	MonthsGestation int                   `bson:"months_gestation,omitempty" json:"months_gestation,omitempty"`
	CalfSex         event.CalfSex         `bson:"calf_sex,omitempty" json:"calf_sex,omitempty"`
	CalfWeight      float64               `bson:"calf_weight,omitempty" json:"calf_weight,omitempty"`
	CalfDisposition event.CalfDisposition `bson:"calf_disposition,omitempty" json:"calf_disposition,omitempty"`
	Grade           event.TreatmentGrade  `bson:"grade,omitempty" json:"grade,omitempty"`
	Quarters        []event.Quarter       `bson:"quarters,omitempty" json:"quarters,omitempty"`
	Medication      string                `bson:"medication,omitempty" json:"medication,omitempty"`
	WithholdingDays int                   `bson:"withholding_days,omitempty" json:"withholding_days,omitempty"`
	ReleaseDate     time.Time             `bson:"release_date,omitempty" json:"release_date,omitempty"`
	Liters          float64               `bson:"liters,omitempty" json:"liters,omitempty"`
	FatPct          float64               `bson:"fat_pct,omitempty" json:"fat_pct,omitempty"`
	ProteinPct      float64               `bson:"protein_pct,omitempty" json:"protein_pct,omitempty"`
}

// NewEventReadModel flattens a domain event for persistence.
func NewEventReadModel(ev event.DomainEvent) *EventReadModel {
	m := &EventReadModel{
		ID:        ev.EventID(),
		AnimalID:  ev.AggregateID(),
		Type:      ev.EventType(),
		Timestamp: ev.OccurredAt(),
	}
	switch e := ev.(type) {
	case *event.HeatDetected:
		m.Note, m.RecordedBy, m.EstablishmentID = e.Note, e.RecordedBy, e.EstablishmentID
		m.Intensity = e.Intensity
	case *event.InseminationPerformed:
		m.Note, m.RecordedBy, m.EstablishmentID = e.Note, e.RecordedBy, e.EstablishmentID
		m.SireCode, m.Inseminator, m.ServiceNumber = e.SireCode, e.Inseminator, e.ServiceNumber
	case *event.PregnancyCheckRecorded:
		m.Note, m.RecordedBy, m.EstablishmentID = e.Note, e.RecordedBy, e.EstablishmentID
		m.Result, m.MonthsGestation = e.Result, e.MonthsGestation
	case *event.CalvingRecorded:
		m.Note, m.RecordedBy, m.EstablishmentID = e.Note, e.RecordedBy, e.EstablishmentID
		m.CalfSex, m.CalfWeight, m.CalfDisposition = e.CalfSex, e.CalfWeight, e.CalfDisposition
	case *event.HealthTreatmentApplied:
		m.Note, m.RecordedBy, m.EstablishmentID = e.Note, e.RecordedBy, e.EstablishmentID
		m.Grade, m.Quarters, m.Medication = e.Grade, e.Quarters, e.Medication
		m.WithholdingDays, m.ReleaseDate = e.WithholdingDays, e.Release()
	case *event.MilkTestRecorded:
		m.Note, m.RecordedBy, m.EstablishmentID = e.Note, e.RecordedBy, e.EstablishmentID
		m.Liters, m.FatPct, m.ProteinPct = e.Liters, e.FatPct, e.ProteinPct
	case *event.DryOffRecorded:
		m.Note, m.RecordedBy, m.EstablishmentID = e.Note, e.RecordedBy, e.EstablishmentID
	}
	return m
}

// ToDomain rebuilds the typed event from the flat document.
func (m *EventReadModel) ToDomain() (event.DomainEvent, error) {
	switch m.Type {
	case "HeatDetected":
		return &event.HeatDetected{
			ID: m.ID, AnimalID: m.AnimalID, Timestamp: m.Timestamp, Note: m.Note,
			Intensity: m.Intensity, RecordedBy: m.RecordedBy, EstablishmentID: m.EstablishmentID,
		}, nil
	case "InseminationPerformed":
		return &event.InseminationPerformed{
			ID: m.ID, AnimalID: m.AnimalID, Timestamp: m.Timestamp, Note: m.Note,
			SireCode: m.SireCode, Inseminator: m.Inseminator, ServiceNumber: m.ServiceNumber,
			RecordedBy: m.RecordedBy, EstablishmentID: m.EstablishmentID,
		}, nil
	case "PregnancyCheckRecorded":
		return &event.PregnancyCheckRecorded{
			ID: m.ID, AnimalID: m.AnimalID, Timestamp: m.Timestamp, Note: m.Note,
			Result: m.Result, MonthsGestation: m.MonthsGestation,
			RecordedBy: m.RecordedBy, EstablishmentID: m.EstablishmentID,
		}, nil
	case "CalvingRecorded":
		return &event.CalvingRecorded{
			ID: m.ID, AnimalID: m.AnimalID, Timestamp: m.Timestamp, Note: m.Note,
			CalfSex: m.CalfSex, CalfWeight: m.CalfWeight, CalfDisposition: m.CalfDisposition,
			RecordedBy: m.RecordedBy, EstablishmentID: m.EstablishmentID,
		}, nil
	case "HealthTreatmentApplied":
		return &event.HealthTreatmentApplied{
			ID: m.ID, AnimalID: m.AnimalID, Timestamp: m.Timestamp, Note: m.Note,
			Grade: m.Grade, Quarters: m.Quarters, Medication: m.Medication,
			WithholdingDays: m.WithholdingDays, ReleaseDate: m.ReleaseDate,
			RecordedBy: m.RecordedBy, EstablishmentID: m.EstablishmentID,
		}, nil
	case "MilkTestRecorded":
		return &event.MilkTestRecorded{
			ID: m.ID, AnimalID: m.AnimalID, Timestamp: m.Timestamp, Note: m.Note,
			Liters: m.Liters, FatPct: m.FatPct, ProteinPct: m.ProteinPct,
			RecordedBy: m.RecordedBy, EstablishmentID: m.EstablishmentID,
		}, nil
	case "DryOffRecorded":
		return &event.DryOffRecorded{
			ID: m.ID, AnimalID: m.AnimalID, Timestamp: m.Timestamp, Note: m.Note,
			RecordedBy: m.RecordedBy, EstablishmentID: m.EstablishmentID,
		}, nil
	}
	return nil, fmt.Errorf("unknown event type in store: %s", m.Type)
}
