package http

import (
	"encoding/json"
	"net/http"

	"tambo-herd/internal/application/services"
	"tambo-herd/pkg/errors"
	"tambo-herd/pkg/middleware"
	"tambo-herd/pkg/response"
)

// HTTPAuthController handles HTTP requests for authentication.
type HTTPAuthController struct {
	authService *services.AuthService
}

// NewHTTPAuthController creates a new HTTP auth controller.
func NewHTTPAuthController(authService *services.AuthService) *HTTPAuthController {
	return &HTTPAuthController{authService: authService}
}

// Login handles POST /auth/login
func (c *HTTPAuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.HandleError(w, r, errors.NewValidationError("Invalid JSON format"))
		return
	}

	result, err := c.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	response.SendSuccess(w, r, result)
}

// CreateUser handles POST /auth/users
func (c *HTTPAuthController) CreateUser(w http.ResponseWriter, r *http.Request) {
	var params services.CreateUserParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		middleware.HandleError(w, r, errors.NewValidationError("Invalid JSON format"))
		return
	}

	role, _ := middleware.GetRole(r.Context())
	user, err := c.authService.CreateUser(r.Context(), role, params)
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	response.SendCreated(w, r, user)
}
