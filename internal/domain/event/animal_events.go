package event

import (
	"time"
)

// DomainEvent is the contract every herd event satisfies. The setID method is
// unexported on purpose: the set of event types is closed, and only the event
// log may assign identifiers.
type DomainEvent interface {
	EventID() int64
	EventType() string
	AggregateID() string
	OccurredAt() time.Time
	setID(id int64)
}

// AssignID stamps a store-generated identifier onto an event that was created
// without one. Events already carrying an ID are never restamped.
func AssignID(ev DomainEvent, id int64) {
	if ev.EventID() == 0 {
		ev.setID(id)
	}
}

// Udder quarters affected by a treatment.
type Quarter string

const (
	QuarterFrontLeft  Quarter = "front_left"
	QuarterFrontRight Quarter = "front_right"
	QuarterRearLeft   Quarter = "rear_left"
	QuarterRearRight  Quarter = "rear_right"
)

// TreatmentGrade is the severity grade of a health treatment (1, 2, 3 or clinical).
type TreatmentGrade string

const (
	GradeOne      TreatmentGrade = "1"
	GradeTwo      TreatmentGrade = "2"
	GradeThree    TreatmentGrade = "3"
	GradeClinical TreatmentGrade = "clinical"
)

// CheckResult is the outcome of a pregnancy check.
type CheckResult string

const (
	CheckPregnant CheckResult = "pregnant"
	CheckOpen     CheckResult = "open"
)

type HeatIntensity string

const (
	HeatMild   HeatIntensity = "mild"
	HeatNormal HeatIntensity = "normal"
	HeatStrong HeatIntensity = "strong"
)

type CalfSex string

const (
	CalfMale   CalfSex = "male"
	CalfFemale CalfSex = "female"
	CalfTwins  CalfSex = "twins"
)

type CalfDisposition string

const (
	CalfKept CalfDisposition = "kept"
	CalfSold CalfDisposition = "sold"
	CalfDied CalfDisposition = "died"
)

// HeatDetected records observed estrus behavior.
type HeatDetected struct {
	ID              int64         `json:"id"`
	AnimalID        string        `json:"animal_id"`
	Timestamp       time.Time     `json:"timestamp"`
	Note            string        `json:"note,omitempty"`
	Intensity       HeatIntensity `json:"intensity,omitempty"`
	RecordedBy      string        `json:"recorded_by,omitempty"`
	EstablishmentID string        `json:"establishment_id,omitempty"`
}

func (e *HeatDetected) EventID() int64        { return e.ID }
func (e *HeatDetected) EventType() string     { return "HeatDetected" }
func (e *HeatDetected) AggregateID() string   { return e.AnimalID }
func (e *HeatDetected) OccurredAt() time.Time { return e.Timestamp }
func (e *HeatDetected) setID(id int64)        { e.ID = id }

// InseminationPerformed records an artificial breeding service.
type InseminationPerformed struct {
	ID              int64     `json:"id"`
	AnimalID        string    `json:"animal_id"`
	Timestamp       time.Time `json:"timestamp"`
	Note            string    `json:"note,omitempty"`
	SireCode        string    `json:"sire_code,omitempty"`
	Inseminator     string    `json:"inseminator,omitempty"`
	ServiceNumber   int       `json:"service_number,omitempty"`
	RecordedBy      string    `json:"recorded_by,omitempty"`
	EstablishmentID string    `json:"establishment_id,omitempty"`
}

func (e *InseminationPerformed) EventID() int64        { return e.ID }
func (e *InseminationPerformed) EventType() string     { return "InseminationPerformed" }
func (e *InseminationPerformed) AggregateID() string   { return e.AnimalID }
func (e *InseminationPerformed) OccurredAt() time.Time { return e.Timestamp }
func (e *InseminationPerformed) setID(id int64)        { e.ID = id }

// PregnancyCheckRecorded records a veterinary palpation/ultrasound result.
type PregnancyCheckRecorded struct {
	ID              int64       `json:"id"`
	AnimalID        string      `json:"animal_id"`
	Timestamp       time.Time   `json:"timestamp"`
	Note            string      `json:"note,omitempty"`
	Result          CheckResult `json:"result"`
	MonthsGestation int         `json:"months_gestation,omitempty"`
	RecordedBy      string      `json:"recorded_by,omitempty"`
	EstablishmentID string      `json:"establishment_id,omitempty"`
}

func (e *PregnancyCheckRecorded) EventID() int64        { return e.ID }
func (e *PregnancyCheckRecorded) EventType() string     { return "PregnancyCheckRecorded" }
func (e *PregnancyCheckRecorded) AggregateID() string   { return e.AnimalID }
func (e *PregnancyCheckRecorded) OccurredAt() time.Time { return e.Timestamp }
func (e *PregnancyCheckRecorded) setID(id int64)        { e.ID = id }

// CalvingRecorded records a birth and the calf's data.
type CalvingRecorded struct {
	ID              int64           `json:"id"`
	AnimalID        string          `json:"animal_id"`
	Timestamp       time.Time       `json:"timestamp"`
	Note            string          `json:"note,omitempty"`
	CalfSex         CalfSex         `json:"calf_sex,omitempty"`
	CalfWeight      float64         `json:"calf_weight,omitempty"`
	CalfDisposition CalfDisposition `json:"calf_disposition,omitempty"`
	RecordedBy      string          `json:"recorded_by,omitempty"`
	EstablishmentID string          `json:"establishment_id,omitempty"`
}

func (e *CalvingRecorded) EventID() int64        { return e.ID }
func (e *CalvingRecorded) EventType() string     { return "CalvingRecorded" }
func (e *CalvingRecorded) AggregateID() string   { return e.AnimalID }
func (e *CalvingRecorded) OccurredAt() time.Time { return e.Timestamp }
func (e *CalvingRecorded) setID(id int64)        { e.ID = id }

// HealthTreatmentApplied records a medication course and its milk-withholding
// window. ReleaseDate is timestamp + withholding days.
type HealthTreatmentApplied struct {
	ID              int64          `json:"id"`
	AnimalID        string         `json:"animal_id"`
	Timestamp       time.Time      `json:"timestamp"`
	Note            string         `json:"note,omitempty"`
	Grade           TreatmentGrade `json:"grade,omitempty"`
	Quarters        []Quarter      `json:"quarters,omitempty"`
	Medication      string         `json:"medication,omitempty"`
	WithholdingDays int            `json:"withholding_days,omitempty"`
	ReleaseDate     time.Time      `json:"release_date,omitempty"`
	RecordedBy      string         `json:"recorded_by,omitempty"`
	EstablishmentID string         `json:"establishment_id,omitempty"`
}

func (e *HealthTreatmentApplied) EventID() int64        { return e.ID }
func (e *HealthTreatmentApplied) EventType() string     { return "HealthTreatmentApplied" }
func (e *HealthTreatmentApplied) AggregateID() string   { return e.AnimalID }
func (e *HealthTreatmentApplied) OccurredAt() time.Time { return e.Timestamp }
func (e *HealthTreatmentApplied) setID(id int64)        { e.ID = id }

// Release returns the end of the withholding window, deriving it from the
// withholding days when the explicit date was never set.
func (e *HealthTreatmentApplied) Release() time.Time {
	if !e.ReleaseDate.IsZero() {
		return e.ReleaseDate
	}
	if e.WithholdingDays > 0 && !e.Timestamp.IsZero() {
		return e.Timestamp.AddDate(0, 0, e.WithholdingDays)
	}
	return time.Time{}
}

// MilkTestRecorded records a milk production/quality test.
type MilkTestRecorded struct {
	ID              int64     `json:"id"`
	AnimalID        string    `json:"animal_id"`
	Timestamp       time.Time `json:"timestamp"`
	Note            string    `json:"note,omitempty"`
	Liters          float64   `json:"liters,omitempty"`
	FatPct          float64   `json:"fat_pct,omitempty"`
	ProteinPct      float64   `json:"protein_pct,omitempty"`
	RecordedBy      string    `json:"recorded_by,omitempty"`
	EstablishmentID string    `json:"establishment_id,omitempty"`
}

func (e *MilkTestRecorded) EventID() int64        { return e.ID }
func (e *MilkTestRecorded) EventType() string     { return "MilkTestRecorded" }
func (e *MilkTestRecorded) AggregateID() string   { return e.AnimalID }
func (e *MilkTestRecorded) OccurredAt() time.Time { return e.Timestamp }
func (e *MilkTestRecorded) setID(id int64)        { e.ID = id }

// DryOffRecorded marks the end of the lactation before the next calving.
type DryOffRecorded struct {
	ID              int64     `json:"id"`
	AnimalID        string    `json:"animal_id"`
	Timestamp       time.Time `json:"timestamp"`
	Note            string    `json:"note,omitempty"`
	RecordedBy      string    `json:"recorded_by,omitempty"`
	EstablishmentID string    `json:"establishment_id,omitempty"`
}

func (e *DryOffRecorded) EventID() int64        { return e.ID }
func (e *DryOffRecorded) EventType() string     { return "DryOffRecorded" }
func (e *DryOffRecorded) AggregateID() string   { return e.AnimalID }
func (e *DryOffRecorded) OccurredAt() time.Time { return e.Timestamp }
func (e *DryOffRecorded) setID(id int64)        { e.ID = id }
