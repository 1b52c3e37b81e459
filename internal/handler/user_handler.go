package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"noteapp/internal/domain"
	"noteapp/internal/service"
	"noteapp/pkg/response"

	"github.com/gorilla/mux"
)

type UserHandler struct {
	service *service.UserService
	logger  *slog.Logger
}

func NewUserHandler(service *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

func (h *UserHandler) GetByEmail(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	if email == "" {
		response.BadRequest(w, "Email is required")
		return
	}

	user, err := h.service.GetByEmail(r.Context(), email)
	if err != nil {
		writeError(w, h.logger, err, "Failed to fetch user")
		return
	}

	response.Success(w, user)
}

// Create registers a user, or returns the existing one for a known email.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	user, err := h.service.GetOrCreate(r.Context(), &req)
	if err != nil {
		writeError(w, h.logger, err, "Failed to create user")
		return
	}

	response.Created(w, user)
}
