package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"tambo-herd/internal/domain/aggregate"
	jwtutil "tambo-herd/pkg/jwt"
	"tambo-herd/pkg/middleware"
	"tambo-herd/pkg/response"
)

// NewRouter wires every endpoint. Login and the health probe are public;
// everything else sits behind the bearer token, with herd-management writes
// additionally gated by role.
func NewRouter(herd *HTTPHerdController, auth *HTTPAuthController, tokens *jwtutil.Manager) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestLogging)
	r.Use(middleware.Recovery)

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		response.SendSuccess(w, req, map[string]string{"status": "ok"})
	})
	r.Post("/auth/login", auth.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(tokens))

		r.Post("/auth/users", auth.CreateUser)

		r.Get("/animals", herd.ListAnimals)
		r.Get("/animals/{id}", herd.GetAnimal)
		r.Get("/animals/{id}/events", herd.ListEvents)
		r.Post("/animals/{id}/events", herd.RecordEvent)
		r.Delete("/events/{id}", herd.DeleteEvent)

		r.Get("/groups", herd.Groups)
		r.Get("/alerts", herd.Alerts)
		r.Get("/heats/active", herd.ActiveHeats)
		r.Get("/heats/upcoming", herd.UpcomingHeats)
		r.Get("/medical/summary", herd.MedicalSummary)
		r.Get("/insemination/timing", herd.RecommendTiming)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRoles(aggregate.RoleAdmin, aggregate.RoleManager))

			r.Post("/animals", herd.RegisterAnimal)
			r.Delete("/animals/{id}", herd.DeleteAnimal)
			r.Post("/import", herd.BulkImport)
		})
	})

	return r
}
