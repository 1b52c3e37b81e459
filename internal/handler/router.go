package handler

import (
	"log/slog"
	"net/http"

	"noteapp/internal/service"

	"github.com/gorilla/mux"
)

// NewRouter registers the note service routes. Middleware is added by the caller.
func NewRouter(users *service.UserService, notes *service.NoteService, logger *slog.Logger) *mux.Router {
	if logger == nil {
		logger = slog.Default()
	}
	userHandler := NewUserHandler(users, logger.With("handler", "user"))
	noteHandler := NewNoteHandler(notes, logger.With("handler", "note"))

	r := mux.NewRouter()

	r.HandleFunc("/users/{email}", userHandler.GetByEmail).Methods("GET", "OPTIONS")
	r.HandleFunc("/users", userHandler.Create).Methods("POST", "OPTIONS")

	r.HandleFunc("/notes/user/{userId}", noteHandler.ListByUser).Methods("GET", "OPTIONS")
	r.HandleFunc("/notes", noteHandler.Create).Methods("POST", "OPTIONS")
	r.HandleFunc("/notes/{id}", noteHandler.Update).Methods("PUT", "OPTIONS")
	r.HandleFunc("/notes/{id}", noteHandler.Delete).Methods("DELETE", "OPTIONS")

	r.HandleFunc("/health", healthHandler).Methods("GET")

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"noteapp"}`))
}
