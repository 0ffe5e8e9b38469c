// Package http contains the HTTP handlers for the REST API.
package http

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/floktl/XploreED-sub002/internal/errors"
	"github.com/floktl/XploreED-sub002/pkg/response"
)

// handleError writes an AppError with its mapped status, or a generic 500.
func handleError(log zerolog.Logger, w http.ResponseWriter, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		response.Error(w, appErr.HTTPStatus(), appErr)
		return
	}
	log.Error().Err(err).Msg("Internal server error")
	response.InternalError(w, "internal server error")
}
