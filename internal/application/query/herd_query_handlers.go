package query

import (
	"context"
	"time"

	"tambo-herd/internal/domain/aggregate"
	"tambo-herd/internal/domain/event"
	"tambo-herd/internal/domain/herd"
	"tambo-herd/internal/infrastructure/eventstore"
	"tambo-herd/internal/infrastructure/projection"
	"tambo-herd/pkg/errors"
)

// Scope restricts reads to one establishment. An empty ID reads everything,
// which single-farm deployments rely on.
type Scope struct {
	EstablishmentID string
}

func (s Scope) includes(a *aggregate.Animal) bool {
	return s.EstablishmentID == "" || a.EstablishmentID() == s.EstablishmentID
}

// AnimalView is the full card for one animal: attributes, cached state,
// point-in-time metrics and the event history.
type AnimalView struct {
	*projection.AnimalReadModel
	Metrics          herd.Metrics                 `json:"metrics"`
	UnderWithholding bool                         `json:"under_withholding"`
	Events           []*projection.EventReadModel `json:"events"`
}

// AnimalSummary is the list row: the read model plus metrics, without the
// event history.
type AnimalSummary struct {
	*projection.AnimalReadModel
	Metrics          herd.Metrics `json:"metrics"`
	UnderWithholding bool         `json:"under_withholding"`
}

// GetAnimalHandler answers the single-animal view.
type GetAnimalHandler struct {
	store *eventstore.HerdStore
	now   func() time.Time
}

func NewGetAnimalHandler(store *eventstore.HerdStore) *GetAnimalHandler {
	return &GetAnimalHandler{store: store, now: time.Now}
}

func (h *GetAnimalHandler) Handle(ctx context.Context, scope Scope, animalID string) (*AnimalView, error) {
	a, ok := h.store.Animal(animalID)
	if !ok || !scope.includes(a) {
		return nil, errors.NewNotFoundError("animal " + animalID)
	}
	events := h.store.EventsByAnimal(animalID)
	now := h.now()

	view := &AnimalView{
		AnimalReadModel:  projection.NewAnimalReadModel(a),
		Metrics:          herd.ComputeMetrics(a, events, now),
		UnderWithholding: herd.UnderWithholding(events, now),
		Events:           make([]*projection.EventReadModel, 0, len(events)),
	}
	for _, ev := range events {
		view.Events = append(view.Events, projection.NewEventReadModel(ev))
	}
	return view, nil
}

// ListAnimalsHandler answers the herd list in registration order.
type ListAnimalsHandler struct {
	store *eventstore.HerdStore
	now   func() time.Time
}

func NewListAnimalsHandler(store *eventstore.HerdStore) *ListAnimalsHandler {
	return &ListAnimalsHandler{store: store, now: time.Now}
}

func (h *ListAnimalsHandler) Handle(ctx context.Context, scope Scope) []*AnimalSummary {
	now := h.now()
	var out []*AnimalSummary
	for _, a := range h.store.Animals() {
		if !scope.includes(a) {
			continue
		}
		events := h.store.EventsByAnimal(a.ID())
		out = append(out, &AnimalSummary{
			AnimalReadModel:  projection.NewAnimalReadModel(a),
			Metrics:          herd.ComputeMetrics(a, events, now),
			UnderWithholding: herd.UnderWithholding(events, now),
		})
	}
	return out
}

// GroupsView is the herd partitioned for the paddock board. Breed keys are the
// breed names.
type GroupsView struct {
	Dry                []*projection.AnimalReadModel            `json:"dry"`
	Lactating          []*projection.AnimalReadModel            `json:"lactating"`
	ApproachingDryOff  []*projection.AnimalReadModel            `json:"approaching_dry_off"`
	ApproachingCalving []*projection.AnimalReadModel            `json:"approaching_calving"`
	ByBreed            map[string][]*projection.AnimalReadModel `json:"by_breed"`
}

// GroupsHandler answers the grouping view.
type GroupsHandler struct {
	store *eventstore.HerdStore
	now   func() time.Time
}

func NewGroupsHandler(store *eventstore.HerdStore) *GroupsHandler {
	return &GroupsHandler{store: store, now: time.Now}
}

func (h *GroupsHandler) Handle(ctx context.Context, scope Scope) *GroupsView {
	animals := scopedAnimals(h.store, scope)
	groups := herd.GroupAnimals(animals, h.now())

	view := &GroupsView{ByBreed: make(map[string][]*projection.AnimalReadModel)}
	view.Dry = toReadModels(groups.Dry)
	view.Lactating = toReadModels(groups.Lactating)
	view.ApproachingDryOff = toReadModels(groups.ApproachingDryOff)
	view.ApproachingCalving = toReadModels(groups.ApproachingCalving)
	for breed, members := range groups.ByBreed {
		view.ByBreed[string(breed)] = toReadModels(members)
	}
	return view
}

// AlertsHandler answers the day-board notifications.
type AlertsHandler struct {
	store *eventstore.HerdStore
	now   func() time.Time
}

func NewAlertsHandler(store *eventstore.HerdStore) *AlertsHandler {
	return &AlertsHandler{store: store, now: time.Now}
}

func (h *AlertsHandler) Handle(ctx context.Context, scope Scope) []herd.Alert {
	return herd.Alerts(scopedAnimals(h.store, scope), scopedEvents(h.store, scope), h.now())
}

// ActiveHeatView pairs a fresh heat with the AM/PM recommendation for it.
type ActiveHeatView struct {
	Animal         *projection.AnimalReadModel `json:"animal"`
	Heat           *projection.EventReadModel  `json:"heat"`
	Recommendation herd.Recommendation         `json:"recommendation"`
}

// ActiveHeatsHandler answers the heats still inside the insemination window.
type ActiveHeatsHandler struct {
	store *eventstore.HerdStore
	now   func() time.Time
}

func NewActiveHeatsHandler(store *eventstore.HerdStore) *ActiveHeatsHandler {
	return &ActiveHeatsHandler{store: store, now: time.Now}
}

func (h *ActiveHeatsHandler) Handle(ctx context.Context, scope Scope) []*ActiveHeatView {
	lookup := func(id string) (*aggregate.Animal, bool) {
		a, ok := h.store.Animal(id)
		if !ok || !scope.includes(a) {
			return nil, false
		}
		return a, true
	}

	var out []*ActiveHeatView
	for _, heat := range herd.ActiveHeats(lookup, h.store.AllEvents(), h.now()) {
		rec, err := herd.RecommendInsemination(heat.Event.Timestamp)
		if err != nil {
			continue
		}
		out = append(out, &ActiveHeatView{
			Animal:         projection.NewAnimalReadModel(heat.Animal),
			Heat:           projection.NewEventReadModel(heat.Event),
			Recommendation: rec,
		})
	}
	return out
}

// HeatForecastView is one predicted heat for the coming days.
type HeatForecastView struct {
	Animal    *projection.AnimalReadModel `json:"animal"`
	NextHeat  time.Time                   `json:"next_heat"`
	NextDate  string                      `json:"next_date"`
	DaysUntil int                         `json:"days_until"`
}

// UpcomingHeatsHandler answers the 21-day-cycle forecast.
type UpcomingHeatsHandler struct {
	store *eventstore.HerdStore
	now   func() time.Time
}

func NewUpcomingHeatsHandler(store *eventstore.HerdStore) *UpcomingHeatsHandler {
	return &UpcomingHeatsHandler{store: store, now: time.Now}
}

func (h *UpcomingHeatsHandler) Handle(ctx context.Context, scope Scope) []*HeatForecastView {
	var out []*HeatForecastView
	for _, f := range herd.UpcomingHeats(scopedAnimals(h.store, scope), h.now()) {
		out = append(out, &HeatForecastView{
			Animal:    projection.NewAnimalReadModel(f.Animal),
			NextHeat:  f.NextHeat,
			NextDate:  herd.FormatDate(f.NextHeat),
			DaysUntil: f.DaysUntil,
		})
	}
	return out
}

// MedicalSummaryHandler answers the milk-withholding picture.
type MedicalSummaryHandler struct {
	store *eventstore.HerdStore
	now   func() time.Time
}

func NewMedicalSummaryHandler(store *eventstore.HerdStore) *MedicalSummaryHandler {
	return &MedicalSummaryHandler{store: store, now: time.Now}
}

func (h *MedicalSummaryHandler) Handle(ctx context.Context, scope Scope) herd.MedicalSummary {
	return herd.SummarizeWithholding(scopedEvents(h.store, scope), h.now())
}

// RecommendTimingHandler answers the AM/PM rule for an arbitrary detection
// time, for heats not yet on record.
type RecommendTimingHandler struct{}

func NewRecommendTimingHandler() *RecommendTimingHandler {
	return &RecommendTimingHandler{}
}

func (h *RecommendTimingHandler) Handle(ctx context.Context, detectedAt string) (herd.Recommendation, error) {
	ts, err := herd.ParseTimestamp(detectedAt)
	if err != nil {
		return herd.Recommendation{}, err
	}
	return herd.RecommendInsemination(ts)
}

func toReadModels(animals []*aggregate.Animal) []*projection.AnimalReadModel {
	out := make([]*projection.AnimalReadModel, 0, len(animals))
	for _, a := range animals {
		out = append(out, projection.NewAnimalReadModel(a))
	}
	return out
}

func scopedAnimals(store *eventstore.HerdStore, scope Scope) []*aggregate.Animal {
	var out []*aggregate.Animal
	for _, a := range store.Animals() {
		if scope.includes(a) {
			out = append(out, a)
		}
	}
	return out
}

// scopedEvents keeps the events whose owning animal is inside the scope.
func scopedEvents(store *eventstore.HerdStore, scope Scope) []event.DomainEvent {
	events := store.AllEvents()
	if scope.EstablishmentID == "" {
		return events
	}
	var out []event.DomainEvent
	for _, ev := range events {
		if a, ok := store.Animal(ev.AggregateID()); ok && scope.includes(a) {
			out = append(out, ev)
		}
	}
	return out
}
