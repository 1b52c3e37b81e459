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

type NoteHandler struct {
	service *service.NoteService
	logger  *slog.Logger
}

func NewNoteHandler(service *service.NoteService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{
		service: service,
		logger:  logger,
	}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	note, err := h.service.Create(r.Context(), &req)
	if err != nil {
		writeError(w, h.logger, err, "Failed to create note")
		return
	}

	response.Created(w, note)
}

func (h *NoteHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if userID == "" {
		response.BadRequest(w, "User ID is required")
		return
	}

	notes, err := h.service.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, err, "Failed to list notes")
		return
	}

	response.Success(w, notes)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	if noteID == "" {
		response.BadRequest(w, "Note ID is required")
		return
	}

	var req domain.UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	note, err := h.service.Update(r.Context(), noteID, &req)
	if err != nil {
		writeError(w, h.logger, err, "Failed to update note")
		return
	}

	response.Success(w, note)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	if noteID == "" {
		response.BadRequest(w, "Note ID is required")
		return
	}

	if err := h.service.Delete(r.Context(), noteID); err != nil {
		writeError(w, h.logger, err, "Failed to delete note")
		return
	}

	response.Success(w, map[string]string{"id": noteID})
}
