package httpx

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/diewo77/autoparts/internal/apperr"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	var body []byte
	var err error
	if payload != nil {
		body, err = json.Marshal(payload)
		if err != nil {
			http.Error(w, `{"error":"encode_error"}`, http.StatusInternalServerError)
			return
		}
	} else {
		body = []byte("null")
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func JSONError(w http.ResponseWriter, status int, msg string, details any) {
	JSON(w, status, ErrorResponse{Error: msg, Details: details})
}

// Conflict is implemented by domain errors that describe a state conflict
// (for example an illegal status change).
type Conflict interface {
	error
	ConflictCode() string
}

// Error maps err onto the error taxonomy and writes the matching response.
// Remote failures are logged with their operation; callers only see a
// generic message.
func Error(w http.ResponseWriter, err error) {
	var (
		ve *apperr.ValidationError
		re *apperr.RemoteOperationError
		ae *apperr.AuthorizationError
		ce Conflict
	)
	switch {
	case errors.As(err, &ve):
		JSONError(w, http.StatusUnprocessableEntity, "validation_failed", ve.Fields)
	case errors.As(err, &ae):
		JSONError(w, http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, apperr.ErrUnauthenticated):
		JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, apperr.ErrNotFound):
		JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, apperr.ErrAlreadyExists):
		JSONError(w, http.StatusConflict, "already_exists", nil)
	case errors.As(err, &ce):
		JSONError(w, http.StatusConflict, ce.ConflictCode(), nil)
	case errors.As(err, &re):
		log.Printf("remote operation %q failed: %v", re.Op, re.Err)
		JSONError(w, http.StatusBadGateway, "remote_operation_failed", nil)
	default:
		log.Printf("unhandled error: %v", err)
		JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
