package command

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tambo-herd/internal/domain/aggregate"
	"tambo-herd/internal/domain/event"
	"tambo-herd/internal/domain/herd"
	"tambo-herd/internal/infrastructure/bus"
	"tambo-herd/internal/infrastructure/eventstore"
	"tambo-herd/internal/infrastructure/projection"
	"tambo-herd/pkg/errors"
)

// syncTimeout bounds the fire-and-forget calls to the persistence
// collaborator so a dead connection cannot pile up goroutines.
const syncTimeout = 10 * time.Second

// RegisterAnimalHandler handles animal registration.
type RegisterAnimalHandler struct {
	store  *eventstore.HerdStore
	sync   projection.HerdSync
	logger *zap.Logger
}

func NewRegisterAnimalHandler(store *eventstore.HerdStore, sync projection.HerdSync, logger *zap.Logger) *RegisterAnimalHandler {
	return &RegisterAnimalHandler{store: store, sync: sync, logger: logger}
}

func (h *RegisterAnimalHandler) Handle(ctx context.Context, cmd *RegisterAnimal) (*aggregate.Animal, error) {
	if cmd == nil {
		return nil, errors.NewValidationError("command cannot be nil")
	}
	if !cmd.Caller.Role.CanManageHerd() {
		return nil, errors.NewForbiddenError("role cannot register animals")
	}
	if cmd.ID == "" {
		return nil, errors.NewValidationError("animal tag ID is required")
	}

	birth, err := parseOptionalDate(cmd.BirthDate)
	if err != nil {
		return nil, err
	}
	lastCalving, err := parseOptionalDate(cmd.LastCalving)
	if err != nil {
		return nil, err
	}

	animal, err := aggregate.NewAnimal(aggregate.AnimalParams{
		ID:              cmd.ID,
		RP:              cmd.RP,
		Breed:           aggregate.Breed(cmd.Breed),
		Category:        aggregate.Category(cmd.Category),
		BirthDate:       birth,
		Sire:            cmd.Sire,
		Dam:             cmd.Dam,
		VisualNote:      cmd.VisualNote,
		EstablishmentID: cmd.Caller.EstablishmentID,
		Lactation:       aggregate.LactationState(cmd.Lactation),
		Reproductive:    aggregate.ReproductiveState(cmd.Reproductive),
		LastCalving:     lastCalving,
		TotalCalvings:   cmd.TotalCalvings,
	})
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	h.store.RegisterAnimal(animal)
	persistAnimal(h.sync, h.logger, animal)
	return animal, nil
}

// RecordEventHandler appends one typed event, applies its transition rule and
// hands the event to the bus for cloud sync.
type RecordEventHandler struct {
	store  *eventstore.HerdStore
	bus    bus.EventBus
	logger *zap.Logger
}

func NewRecordEventHandler(store *eventstore.HerdStore, eventBus bus.EventBus, logger *zap.Logger) *RecordEventHandler {
	return &RecordEventHandler{store: store, bus: eventBus, logger: logger}
}

func (h *RecordEventHandler) Handle(ctx context.Context, cmd *RecordEvent) (event.DomainEvent, error) {
	if cmd == nil {
		return nil, errors.NewValidationError("command cannot be nil")
	}
	if cmd.AnimalID == "" {
		return nil, errors.NewValidationError("animal_id is required")
	}

	ev, err := buildEvent(cmd)
	if err != nil {
		return nil, err
	}
	if !cmd.Caller.Role.CanRecord(ev.EventType()) {
		return nil, errors.NewForbiddenError("role cannot record " + cmd.Type + " events")
	}

	appended, err := h.store.AppendEvent(ev)
	if err != nil {
		return nil, err
	}
	h.bus.Publish(ctx, appended)
	return appended, nil
}

// buildEvent turns the flat wire command into the typed union member.
func buildEvent(cmd *RecordEvent) (event.DomainEvent, error) {
	ts, err := herd.ParseTimestamp(cmd.Timestamp)
	if err != nil {
		return nil, err
	}

	switch cmd.Type {
	case TypeHeat:
		return &event.HeatDetected{
			AnimalID: cmd.AnimalID, Timestamp: ts, Note: cmd.Note,
			Intensity:  event.HeatIntensity(cmd.Intensity),
			RecordedBy: cmd.Caller.UserID, EstablishmentID: cmd.Caller.EstablishmentID,
		}, nil

	case TypeInsemination:
		return &event.InseminationPerformed{
			AnimalID: cmd.AnimalID, Timestamp: ts, Note: cmd.Note,
			SireCode: cmd.SireCode, Inseminator: cmd.Inseminator, ServiceNumber: cmd.ServiceNumber,
			RecordedBy: cmd.Caller.UserID, EstablishmentID: cmd.Caller.EstablishmentID,
		}, nil

	case TypePregnancyCheck:
		result := event.CheckResult(cmd.Result)
		if result != event.CheckPregnant && result != event.CheckOpen {
			return nil, errors.NewValidationError("pregnancy check result must be pregnant or open")
		}
		return &event.PregnancyCheckRecorded{
			AnimalID: cmd.AnimalID, Timestamp: ts, Note: cmd.Note,
			Result: result, MonthsGestation: cmd.MonthsGestation,
			RecordedBy: cmd.Caller.UserID, EstablishmentID: cmd.Caller.EstablishmentID,
		}, nil

	case TypeCalving:
		return &event.CalvingRecorded{
			AnimalID: cmd.AnimalID, Timestamp: ts, Note: cmd.Note,
			CalfSex:         event.CalfSex(cmd.CalfSex),
			CalfWeight:      cmd.CalfWeight,
			CalfDisposition: event.CalfDisposition(cmd.CalfDisposition),
			RecordedBy:      cmd.Caller.UserID, EstablishmentID: cmd.Caller.EstablishmentID,
		}, nil

	case TypeHealthTreatment:
		if cmd.WithholdingDays < 0 {
			return nil, errors.NewValidationError("withholding days cannot be negative")
		}
		quarters := make([]event.Quarter, 0, len(cmd.Quarters))
		for _, q := range cmd.Quarters {
			quarters = append(quarters, event.Quarter(q))
		}
		ev := &event.HealthTreatmentApplied{
			AnimalID: cmd.AnimalID, Timestamp: ts, Note: cmd.Note,
			Grade: event.TreatmentGrade(cmd.Grade), Quarters: quarters,
			Medication: cmd.Medication, WithholdingDays: cmd.WithholdingDays,
			RecordedBy: cmd.Caller.UserID, EstablishmentID: cmd.Caller.EstablishmentID,
		}
		ev.ReleaseDate = ev.Release()
		return ev, nil

	case TypeMilkTest:
		return &event.MilkTestRecorded{
			AnimalID: cmd.AnimalID, Timestamp: ts, Note: cmd.Note,
			Liters: cmd.Liters, FatPct: cmd.FatPct, ProteinPct: cmd.ProteinPct,
			RecordedBy: cmd.Caller.UserID, EstablishmentID: cmd.Caller.EstablishmentID,
		}, nil

	case TypeDryOff:
		return &event.DryOffRecorded{
			AnimalID: cmd.AnimalID, Timestamp: ts, Note: cmd.Note,
			RecordedBy: cmd.Caller.UserID, EstablishmentID: cmd.Caller.EstablishmentID,
		}, nil
	}
	return nil, errors.NewValidationError("unknown event type: " + cmd.Type)
}

// DeleteAnimalHandler removes an animal and cascades its events, locally and
// in the cloud store.
type DeleteAnimalHandler struct {
	store  *eventstore.HerdStore
	sync   projection.HerdSync
	logger *zap.Logger
}

func NewDeleteAnimalHandler(store *eventstore.HerdStore, sync projection.HerdSync, logger *zap.Logger) *DeleteAnimalHandler {
	return &DeleteAnimalHandler{store: store, sync: sync, logger: logger}
}

func (h *DeleteAnimalHandler) Handle(ctx context.Context, cmd *DeleteAnimal) error {
	if cmd == nil || cmd.AnimalID == "" {
		return errors.NewValidationError("animal_id is required")
	}
	if !cmd.Caller.Role.CanManageHerd() {
		return errors.NewForbiddenError("role cannot delete animals")
	}

	h.store.RemoveAnimal(cmd.AnimalID)
	go func(id string) {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		if err := h.sync.DeleteAnimal(ctx, id); err != nil {
			h.logger.Warn("cloud delete failed", zap.String("animal_id", id), zap.Error(err))
		}
	}(cmd.AnimalID)
	return nil
}

// DeleteEventHandler removes an event. The owning animal is refolded from the
// remaining history so the deletion leaves no stale derived state behind.
type DeleteEventHandler struct {
	store  *eventstore.HerdStore
	sync   projection.HerdSync
	logger *zap.Logger
}

func NewDeleteEventHandler(store *eventstore.HerdStore, sync projection.HerdSync, logger *zap.Logger) *DeleteEventHandler {
	return &DeleteEventHandler{store: store, sync: sync, logger: logger}
}

func (h *DeleteEventHandler) Handle(ctx context.Context, cmd *DeleteEvent) error {
	if cmd == nil || cmd.EventID == 0 {
		return errors.NewValidationError("event_id is required")
	}

	ev, found := h.store.Event(cmd.EventID)
	if !found {
		// Idempotent: deleting a missing event is a no-op, not an error.
		return nil
	}
	// Deletion refolds state, so it needs the same permission as recording.
	if !cmd.Caller.Role.CanRecord(ev.EventType()) {
		return errors.NewForbiddenError("role cannot delete " + ev.EventType() + " events")
	}
	h.store.RemoveEvent(cmd.EventID)

	if animal, ok := h.store.Animal(ev.AggregateID()); ok {
		persistAnimal(h.sync, h.logger, animal)
	}
	go func(id int64) {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		if err := h.sync.DeleteEvent(ctx, id); err != nil {
			h.logger.Warn("cloud delete failed", zap.Int64("event_id", id), zap.Error(err))
		}
	}(cmd.EventID)
	return nil
}

// parseOptionalDate parses a date string that may be absent. Empty input maps
// to the zero time.
func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return herd.ParseTimestamp(s)
}

// persistAnimal pushes the animal's current snapshot to the sync collaborator
// without making the caller wait on it.
func persistAnimal(sync projection.HerdSync, logger *zap.Logger, animal *aggregate.Animal) {
	model := projection.NewAnimalReadModel(animal)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		if err := sync.UpsertAnimal(ctx, model); err != nil {
			logger.Warn("cloud upsert failed", zap.String("animal_id", model.ID), zap.Error(err))
		}
	}()
}
