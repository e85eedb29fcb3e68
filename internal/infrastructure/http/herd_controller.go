package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"tambo-herd/internal/application/command"
	"tambo-herd/internal/application/query"
	"tambo-herd/internal/application/services"
	"tambo-herd/pkg/errors"
	"tambo-herd/pkg/middleware"
	"tambo-herd/pkg/response"
)

// HTTPHerdController handles HTTP requests for herd operations.
type HTTPHerdController struct {
	herdService *services.HerdService
}

// NewHTTPHerdController creates a new HTTP herd controller.
func NewHTTPHerdController(herdService *services.HerdService) *HTTPHerdController {
	return &HTTPHerdController{herdService: herdService}
}

func callerFromContext(ctx context.Context) command.Caller {
	userID, _ := middleware.GetUserID(ctx)
	role, _ := middleware.GetRole(ctx)
	establishment, _ := middleware.GetEstablishment(ctx)
	return command.Caller{UserID: userID, Role: role, EstablishmentID: establishment}
}

func scopeFromContext(ctx context.Context) query.Scope {
	establishment, _ := middleware.GetEstablishment(ctx)
	return query.Scope{EstablishmentID: establishment}
}

// RegisterAnimal handles POST /animals
func (c *HTTPHerdController) RegisterAnimal(w http.ResponseWriter, r *http.Request) {
	var cmd command.RegisterAnimal
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		middleware.HandleError(w, r, errors.NewValidationError("Invalid JSON format"))
		return
	}
	cmd.Caller = callerFromContext(r.Context())

	animal, err := c.herdService.RegisterAnimal(r.Context(), &cmd)
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	response.SendCreated(w, r, map[string]interface{}{
		"message": "Animal registered successfully",
		"id":      animal.ID(),
	})
}

// ListAnimals handles GET /animals
func (c *HTTPHerdController) ListAnimals(w http.ResponseWriter, r *http.Request) {
	animals := c.herdService.ListAnimals(r.Context(), scopeFromContext(r.Context()))
	response.SendSuccess(w, r, map[string]interface{}{
		"animals": animals,
		"count":   len(animals),
	})
}

// GetAnimal handles GET /animals/{id}
func (c *HTTPHerdController) GetAnimal(w http.ResponseWriter, r *http.Request) {
	animalID := chi.URLParam(r, "id")
	if animalID == "" {
		middleware.HandleError(w, r, errors.NewValidationError("Animal ID is required"))
		return
	}

	view, err := c.herdService.GetAnimal(r.Context(), scopeFromContext(r.Context()), animalID)
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	response.SendSuccess(w, r, view)
}

// DeleteAnimal handles DELETE /animals/{id}
func (c *HTTPHerdController) DeleteAnimal(w http.ResponseWriter, r *http.Request) {
	cmd := command.DeleteAnimal{
		Caller:   callerFromContext(r.Context()),
		AnimalID: chi.URLParam(r, "id"),
	}
	if err := c.herdService.DeleteAnimal(r.Context(), &cmd); err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	response.SendSuccess(w, r, map[string]interface{}{
		"message": "Animal deleted successfully",
	})
}

// RecordEvent handles POST /animals/{id}/events
func (c *HTTPHerdController) RecordEvent(w http.ResponseWriter, r *http.Request) {
	var cmd command.RecordEvent
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		middleware.HandleError(w, r, errors.NewValidationError("Invalid JSON format"))
		return
	}
	cmd.AnimalID = chi.URLParam(r, "id")
	cmd.Caller = callerFromContext(r.Context())

	ev, err := c.herdService.RecordEvent(r.Context(), &cmd)
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	response.SendCreated(w, r, map[string]interface{}{
		"message":  "Event recorded successfully",
		"event_id": ev.EventID(),
	})
}

// ListEvents handles GET /animals/{id}/events
func (c *HTTPHerdController) ListEvents(w http.ResponseWriter, r *http.Request) {
	animalID := chi.URLParam(r, "id")
	view, err := c.herdService.GetAnimal(r.Context(), scopeFromContext(r.Context()), animalID)
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	response.SendSuccess(w, r, map[string]interface{}{
		"events": view.Events,
		"count":  len(view.Events),
	})
}

// DeleteEvent handles DELETE /events/{id}
func (c *HTTPHerdController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		middleware.HandleError(w, r, errors.NewValidationError("Event ID must be numeric"))
		return
	}

	cmd := command.DeleteEvent{Caller: callerFromContext(r.Context()), EventID: eventID}
	if err := c.herdService.DeleteEvent(r.Context(), &cmd); err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	response.SendSuccess(w, r, map[string]interface{}{
		"message": "Event deleted successfully",
	})
}

// BulkImport handles POST /import
func (c *HTTPHerdController) BulkImport(w http.ResponseWriter, r *http.Request) {
	var cmd command.BulkImport
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		middleware.HandleError(w, r, errors.NewValidationError("Invalid JSON format"))
		return
	}
	cmd.Caller = callerFromContext(r.Context())

	result, err := c.herdService.BulkImport(r.Context(), &cmd)
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	response.SendCreated(w, r, result)
}

// Groups handles GET /groups
func (c *HTTPHerdController) Groups(w http.ResponseWriter, r *http.Request) {
	response.SendSuccess(w, r, c.herdService.Groups(r.Context(), scopeFromContext(r.Context())))
}

// Alerts handles GET /alerts
func (c *HTTPHerdController) Alerts(w http.ResponseWriter, r *http.Request) {
	alerts := c.herdService.Alerts(r.Context(), scopeFromContext(r.Context()))
	response.SendSuccess(w, r, map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// ActiveHeats handles GET /heats/active
func (c *HTTPHerdController) ActiveHeats(w http.ResponseWriter, r *http.Request) {
	heats := c.herdService.ActiveHeats(r.Context(), scopeFromContext(r.Context()))
	response.SendSuccess(w, r, map[string]interface{}{
		"heats": heats,
		"count": len(heats),
	})
}

// UpcomingHeats handles GET /heats/upcoming
func (c *HTTPHerdController) UpcomingHeats(w http.ResponseWriter, r *http.Request) {
	forecasts := c.herdService.UpcomingHeats(r.Context(), scopeFromContext(r.Context()))
	response.SendSuccess(w, r, map[string]interface{}{
		"forecasts": forecasts,
		"count":     len(forecasts),
	})
}

// MedicalSummary handles GET /medical/summary
func (c *HTTPHerdController) MedicalSummary(w http.ResponseWriter, r *http.Request) {
	response.SendSuccess(w, r, c.herdService.MedicalSummary(r.Context(), scopeFromContext(r.Context())))
}

// RecommendTiming handles GET /insemination/timing?detected_at=...
func (c *HTTPHerdController) RecommendTiming(w http.ResponseWriter, r *http.Request) {
	detectedAt := r.URL.Query().Get("detected_at")
	if detectedAt == "" {
		middleware.HandleError(w, r, errors.NewValidationError("detected_at query parameter is required"))
		return
	}

	rec, err := c.herdService.RecommendTiming(r.Context(), detectedAt)
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	response.SendSuccess(w, r, rec)
}
