package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/morelab/appcomposer/internal/apps"
	"github.com/morelab/appcomposer/internal/bundles"
	"github.com/morelab/appcomposer/internal/locales"
	"github.com/morelab/appcomposer/internal/ownership"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return io.EOF
	}
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeXML(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	switch {
	case errors.Is(err, apps.ErrAppNotFound),
		errors.Is(err, bundles.ErrMessageNotFound),
		errors.Is(err, locales.ErrMalformedCode),
		errors.Is(err, ownership.ErrNoOwner):
		return http.StatusNotFound, errorResponse{Error: "not_found", Message: err.Error()}

	case errors.Is(err, ownership.ErrOwnershipTaken):
		return http.StatusConflict, errorResponse{Error: "conflict", Message: err.Error()}

	case errors.Is(err, bundles.ErrSpecRetrieval):
		return http.StatusBadGateway, errorResponse{Error: "upstream_error", Message: err.Error()}

	case errors.Is(err, apps.ErrNotTranslatable),
		errors.Is(err, bundles.ErrNoDefaultLanguage):
		return http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: err.Error()}
	}

	return http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: err.Error()}
}
