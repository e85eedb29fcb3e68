package services

import (
	"context"

	"go.uber.org/zap"

	"tambo-herd/internal/application/command"
	"tambo-herd/internal/application/query"
	"tambo-herd/internal/domain/aggregate"
	"tambo-herd/internal/domain/event"
	"tambo-herd/internal/domain/herd"
	"tambo-herd/internal/infrastructure/bus"
	"tambo-herd/internal/infrastructure/eventstore"
	"tambo-herd/internal/infrastructure/projection"
)

// HerdService is the facade the transport layer talks to. It owns one handler
// per operation and forwards to them.
type HerdService struct {
	registerAnimal *command.RegisterAnimalHandler
	recordEvent    *command.RecordEventHandler
	deleteAnimal   *command.DeleteAnimalHandler
	deleteEvent    *command.DeleteEventHandler
	bulkImport     *command.BulkImportHandler

	getAnimal      *query.GetAnimalHandler
	listAnimals    *query.ListAnimalsHandler
	groups         *query.GroupsHandler
	alerts         *query.AlertsHandler
	activeHeats    *query.ActiveHeatsHandler
	upcomingHeats  *query.UpcomingHeatsHandler
	medicalSummary *query.MedicalSummaryHandler
	recommend      *query.RecommendTimingHandler
}

func NewHerdService(store *eventstore.HerdStore, eventBus bus.EventBus, sync projection.HerdSync, logger *zap.Logger) *HerdService {
	return &HerdService{
		registerAnimal: command.NewRegisterAnimalHandler(store, sync, logger),
		recordEvent:    command.NewRecordEventHandler(store, eventBus, logger),
		deleteAnimal:   command.NewDeleteAnimalHandler(store, sync, logger),
		deleteEvent:    command.NewDeleteEventHandler(store, sync, logger),
		bulkImport:     command.NewBulkImportHandler(store, eventBus, sync, logger),
		getAnimal:      query.NewGetAnimalHandler(store),
		listAnimals:    query.NewListAnimalsHandler(store),
		groups:         query.NewGroupsHandler(store),
		alerts:         query.NewAlertsHandler(store),
		activeHeats:    query.NewActiveHeatsHandler(store),
		upcomingHeats:  query.NewUpcomingHeatsHandler(store),
		medicalSummary: query.NewMedicalSummaryHandler(store),
		recommend:      query.NewRecommendTimingHandler(),
	}
}

func (s *HerdService) RegisterAnimal(ctx context.Context, cmd *command.RegisterAnimal) (*aggregate.Animal, error) {
	return s.registerAnimal.Handle(ctx, cmd)
}

func (s *HerdService) RecordEvent(ctx context.Context, cmd *command.RecordEvent) (event.DomainEvent, error) {
	return s.recordEvent.Handle(ctx, cmd)
}

func (s *HerdService) DeleteAnimal(ctx context.Context, cmd *command.DeleteAnimal) error {
	return s.deleteAnimal.Handle(ctx, cmd)
}

func (s *HerdService) DeleteEvent(ctx context.Context, cmd *command.DeleteEvent) error {
	return s.deleteEvent.Handle(ctx, cmd)
}

func (s *HerdService) BulkImport(ctx context.Context, cmd *command.BulkImport) (*command.BulkImportResult, error) {
	return s.bulkImport.Handle(ctx, cmd)
}

func (s *HerdService) GetAnimal(ctx context.Context, scope query.Scope, animalID string) (*query.AnimalView, error) {
	return s.getAnimal.Handle(ctx, scope, animalID)
}

func (s *HerdService) ListAnimals(ctx context.Context, scope query.Scope) []*query.AnimalSummary {
	return s.listAnimals.Handle(ctx, scope)
}

func (s *HerdService) Groups(ctx context.Context, scope query.Scope) *query.GroupsView {
	return s.groups.Handle(ctx, scope)
}

func (s *HerdService) Alerts(ctx context.Context, scope query.Scope) []herd.Alert {
	return s.alerts.Handle(ctx, scope)
}

func (s *HerdService) ActiveHeats(ctx context.Context, scope query.Scope) []*query.ActiveHeatView {
	return s.activeHeats.Handle(ctx, scope)
}

func (s *HerdService) UpcomingHeats(ctx context.Context, scope query.Scope) []*query.HeatForecastView {
	return s.upcomingHeats.Handle(ctx, scope)
}

func (s *HerdService) MedicalSummary(ctx context.Context, scope query.Scope) herd.MedicalSummary {
	return s.medicalSummary.Handle(ctx, scope)
}

func (s *HerdService) RecommendTiming(ctx context.Context, detectedAt string) (herd.Recommendation, error) {
	return s.recommend.Handle(ctx, detectedAt)
}
