package handler

import (
	"errors"
	"net/http"
	"strconv"

	"clinic-scheduling-api/internal/delivery/http/middleware"
	"clinic-scheduling-api/internal/domain/entity"
	"clinic-scheduling-api/internal/usecase"
	"clinic-scheduling-api/pkg/apperror"
	"clinic-scheduling-api/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// writeError maps a classified usecase error to a status code. The body's
// code is the error kind so clients need not parse messages.
func writeError(w http.ResponseWriter, err error, fallback string) {
	kind := apperror.KindOf(err)
	message := apperror.MessageOf(err)

	switch kind {
	case apperror.KindValidation:
		response.BadRequest(w, message)
	case apperror.KindNotFound:
		response.NotFound(w, message)
	case apperror.KindAuthorization:
		response.Forbidden(w, message)
	case apperror.KindConflict:
		if errors.Is(err, usecase.ErrBookingInPast) {
			response.Fail(w, http.StatusBadRequest, kind.String(), message)
			return
		}
		response.Fail(w, http.StatusConflict, kind.String(), message)
	case apperror.KindInvalidState:
		response.Fail(w, http.StatusConflict, kind.String(), message)
	default:
		response.InternalServerError(w, fallback)
	}
}

func callerOrUnauthorized(w http.ResponseWriter, r *http.Request) (entity.Caller, bool) {
	caller, ok := middleware.GetCallerFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
	}
	return caller, ok
}

func uuidVar(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.BadRequest(w, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

func intQuery(r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	return n, err == nil
}
