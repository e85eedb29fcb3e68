package command

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tambo-herd/internal/domain/aggregate"
	"tambo-herd/internal/importer"
	"tambo-herd/internal/infrastructure/bus"
	"tambo-herd/internal/infrastructure/eventstore"
	"tambo-herd/internal/infrastructure/projection"
	"tambo-herd/pkg/errors"
)

// BulkImportHandler loads a veterinary worksheet: animals first, then their
// events, so every event lands on a registered animal.
type BulkImportHandler struct {
	store  *eventstore.HerdStore
	bus    bus.EventBus
	sync   projection.HerdSync
	logger *zap.Logger
}

func NewBulkImportHandler(store *eventstore.HerdStore, eventBus bus.EventBus, sync projection.HerdSync, logger *zap.Logger) *BulkImportHandler {
	return &BulkImportHandler{store: store, bus: eventBus, sync: sync, logger: logger}
}

func (h *BulkImportHandler) Handle(ctx context.Context, cmd *BulkImport) (*BulkImportResult, error) {
	if cmd == nil || cmd.Text == "" {
		return nil, errors.NewValidationError("worksheet text is required")
	}
	if !cmd.Caller.Role.CanManageHerd() {
		return nil, errors.NewForbiddenError("role cannot import worksheets")
	}

	ws, err := importer.Parse(cmd.Text, importer.Options{
		Now:             time.Now(),
		RecordedBy:      cmd.Caller.UserID,
		EstablishmentID: cmd.Caller.EstablishmentID,
	})
	if err != nil {
		return nil, errors.NewValidationError(err.Error())
	}

	animals := make([]*aggregate.Animal, 0, len(ws.Animals))
	for _, params := range ws.Animals {
		animal, err := aggregate.NewAnimal(params)
		if err != nil {
			return nil, errors.NewValidationError(err.Error())
		}
		animals = append(animals, animal)
	}
	for _, animal := range animals {
		h.store.RegisterAnimal(animal)
	}
	if err := h.store.AppendMany(ws.Events); err != nil {
		return nil, err
	}

	// Events went through the transition rules inside the store; persist the
	// post-import snapshots, not the freshly constructed animals.
	for _, animal := range animals {
		if current, ok := h.store.Animal(animal.ID()); ok {
			persistAnimal(h.sync, h.logger, current)
		}
	}
	h.bus.PublishBatch(ctx, ws.Events)

	result := &BulkImportResult{
		AnimalsImported: len(animals),
		EventsImported:  len(ws.Events),
	}
	for _, ev := range ws.Events {
		result.EventIDs = append(result.EventIDs, ev.EventID())
	}
	return result, nil
}
