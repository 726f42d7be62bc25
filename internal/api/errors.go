package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/schematic-core/internal/circuit"
	"github.com/nerrad567/schematic-core/internal/editor"
	"github.com/nerrad567/schematic-core/internal/netlist"
	"github.com/nerrad567/schematic-core/internal/project"
)

// Error is the body of every non-2xx response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeValidation   = "validation_error"
	ErrCodeUnauthorized = "unauthorised"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeTooLarge     = "too_large"
	ErrCodeUnavailable  = "unavailable"
	ErrCodeInternal     = "internal_error"
)

// errorMapping turns a domain error into a response. An empty message
// sends the error text.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var domainErrors = []errorMapping{
	{netlist.ErrFormat, http.StatusBadRequest, ErrCodeBadRequest, ""},
	{circuit.ErrUnknownType, http.StatusBadRequest, ErrCodeValidation, ""},
	{circuit.ErrValidation, http.StatusBadRequest, ErrCodeValidation, ""},
	{project.ErrInvalidName, http.StatusBadRequest, ErrCodeValidation, ""},
	{circuit.ErrElementNotFound, http.StatusNotFound, ErrCodeNotFound, ""},
	{project.ErrProjectNotFound, http.StatusNotFound, ErrCodeNotFound, ""},
	{project.ErrProjectExists, http.StatusConflict, ErrCodeConflict, ""},
	{editor.ErrNoProjectStore, http.StatusServiceUnavailable, ErrCodeUnavailable, "project store is not configured"},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v) //nolint:errcheck // client may be gone
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{Status: status, Code: code, Message: message})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

func writeForbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, ErrCodeForbidden, message)
}

func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDomainError answers with the first mapping err matches. Unmapped
// errors are logged and answered with a bare 500.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, ErrCodeTooLarge, "request body too large")
		return
	}
	for _, m := range domainErrors {
		if errors.Is(err, m.target) {
			msg := m.message
			if msg == "" {
				msg = err.Error()
			}
			writeError(w, m.status, m.code, msg)
			return
		}
	}

	s.logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
		"request_id", requestID(r),
	)
	writeInternalError(w, "internal server error")
}
