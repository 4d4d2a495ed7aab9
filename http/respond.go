package http

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"

	"loandesk/domain"
)

type errorBody struct {
	Error string           `json:"error"`
	Kind  domain.ErrorKind `json:"kind,omitempty"`
}

// writeJSON encodes into a buffer first so a failed encode never leaves a
// half-written 200 on the wire.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}

// writeError maps the service error taxonomy onto status codes. Untyped
// errors are never echoed verbatim.
func writeError(w http.ResponseWriter, err error) {
	kind := domain.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case domain.KindValidation:
		status = http.StatusBadRequest
	case domain.KindNotFound:
		status = http.StatusNotFound
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindStorage:
		status = http.StatusServiceUnavailable
	case domain.KindComputation:
		status = http.StatusInternalServerError
	}

	msg := "internal server error"
	if kind != "" {
		msg = err.Error()
	} else {
		log.Printf("Error handling request: %v", err)
	}
	writeJSON(w, status, errorBody{Error: msg, Kind: kind})
}
