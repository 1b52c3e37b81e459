package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"noteapp/internal/domain"
	"noteapp/internal/service"
	"noteapp/pkg/response"
)

func writeError(w http.ResponseWriter, logger *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		response.BadRequest(w, err.Error())
	default:
		logger.Error(fallback, "error", err)
		response.InternalError(w, fallback)
	}
}
