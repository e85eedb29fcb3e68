package command

import (
	"tambo-herd/internal/domain/aggregate"
)

// Caller identifies who is performing a mutation. Role checks are a
// precondition the handlers enforce; the identity collaborator supplies the
// values.
type Caller struct {
	UserID          string
	Role            aggregate.UserRole
	EstablishmentID string
}

// RegisterAnimal adds one animal to the herd. Dates travel as strings and are
// parsed at the operation boundary.
type RegisterAnimal struct {
	Caller Caller

	ID            string `json:"id"`
	RP            string `json:"rp,omitempty"`
	Breed         string `json:"breed,omitempty"`
	Category      string `json:"category,omitempty"`
	BirthDate     string `json:"birth_date,omitempty"`
	Sire          string `json:"sire,omitempty"`
	Dam           string `json:"dam,omitempty"`
	VisualNote    string `json:"visual_note,omitempty"`
	Lactation     string `json:"lactation,omitempty"`
	Reproductive  string `json:"reproductive,omitempty"`
	LastCalving   string `json:"last_calving,omitempty"`
	TotalCalvings int    `json:"total_calvings,omitempty"`
}

// RecordEvent appends one event to an animal's history. Type selects the
// variant; only the matching payload fields are read.
type RecordEvent struct {
	Caller Caller

	AnimalID  string `json:"animal_id"`
	Type      string `json:"type"`
	Timestamp string `json:"timestamp"`
	Note      string `json:"note,omitempty"`

	// heat
	Intensity string `json:"intensity,omitempty"`
	// insemination
	SireCode      string `json:"sire_code,omitempty"`
	Inseminator   string `json:"inseminator,omitempty"`
	ServiceNumber int    `json:"service_number,omitempty"`
	// pregnancy check
	Result          string `json:"result,omitempty"`
	MonthsGestation int    `json:"months_gestation,omitempty"`
	// calving
	CalfSex         string  `json:"calf_sex,omitempty"`
	CalfWeight      float64 `json:"calf_weight,omitempty"`
	CalfDisposition string  `json:"calf_disposition,omitempty"`
	// health treatment
	Grade           string   `json:"grade,omitempty"`
	Quarters        []string `json:"quarters,omitempty"`
	Medication      string   `json:"medication,omitempty"`
	WithholdingDays int      `json:"withholding_days,omitempty"`
	// milk test
	Liters     float64 `json:"liters,omitempty"`
	FatPct     float64 `json:"fat_pct,omitempty"`
	ProteinPct float64 `json:"protein_pct,omitempty"`
}

// Wire names for the event union.
const (
	TypeHeat            = "heat"
	TypeInsemination    = "insemination"
	TypePregnancyCheck  = "pregnancy_check"
	TypeCalving         = "calving"
	TypeHealthTreatment = "health_treatment"
	TypeMilkTest        = "milk_test"
	TypeDryOff          = "dry_off"
)

// DeleteAnimal removes an animal and, by cascade, its events.
type DeleteAnimal struct {
	Caller   Caller
	AnimalID string `json:"animal_id"`
}

// DeleteEvent removes one event by ID. Deleting a missing ID is a no-op.
type DeleteEvent struct {
	Caller  Caller
	EventID int64 `json:"event_id"`
}

// BulkImport loads a free-text veterinary worksheet.
type BulkImport struct {
	Caller Caller
	Text   string `json:"text"`
}

// BulkImportResult reports what a worksheet produced.
type BulkImportResult struct {
	AnimalsImported int     `json:"animals_imported"`
	EventsImported  int     `json:"events_imported"`
	EventIDs        []int64 `json:"-"`
}
