package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/morelab/appcomposer/internal/apps"
)

type ownershipEntry struct {
	PartialCode string `json:"lang"`
	AppID       string `json:"app_id"`
	AppName     string `json:"app_name"`
	Owner       string `json:"owner"`
	Autoaccept  string `json:"autoaccept"`
}

// handleOwnerships lists the owned languages of a spec URL.
func (api *API) handleOwnerships(w http.ResponseWriter, r *http.Request) {
	specURL := strings.TrimSpace(r.URL.Query().Get("spec_url"))
	if specURL == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "bad_request",
			Message: "spec_url query parameter is required",
		})
		return
	}

	owners, err := api.ownership.ForSpec(r.Context(), specURL)
	if err != nil {
		writeError(w, err)
		return
	}

	entries := make([]ownershipEntry, 0, len(owners))
	for _, owner := range owners {
		entries = append(entries, ownershipEntry{
			PartialCode: owner.PartialCode,
			AppID:       owner.AppID.String(),
			AppName:     owner.AppName,
			Owner:       owner.Owner,
			Autoaccept:  flagString(owner.Autoaccept),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"spec_url":   specURL,
		"ownerships": entries,
	})
}

// handleGetAutoaccept reports the automatic acceptance flag of an application.
func (api *API) handleGetAutoaccept(w http.ResponseWriter, r *http.Request) {
	app, ok := api.appFromQuery(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app_id": app.ID.String(),
		"value":  flagString(app.Autoaccept),
	})
}

type autoacceptRequest struct {
	AppID string `json:"app_id"`
	// Value follows the wire convention of the flag: "1" enables, "0" disables.
	Value string `json:"value"`
}

// handleSetAutoaccept updates the automatic acceptance flag.
func (api *API) handleSetAutoaccept(w http.ResponseWriter, r *http.Request) {
	var req autoacceptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "bad_request",
			Message: "invalid JSON body",
		})
		return
	}

	appID, err := uuid.Parse(req.AppID)
	if err != nil {
		writeError(w, &apps.NotFoundError{ID: req.AppID})
		return
	}
	if req.Value != "0" && req.Value != "1" {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "bad_request",
			Message: `value must be "0" or "1"`,
		})
		return
	}

	app, err := api.apps.SetAutoaccept(r.Context(), appID, req.Value == "1")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app_id": app.ID.String(),
		"value":  flagString(app.Autoaccept),
	})
}

func (api *API) appFromQuery(w http.ResponseWriter, r *http.Request) (*apps.Application, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("app_id"))
	appID, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, &apps.NotFoundError{ID: raw})
		return nil, false
	}
	app, err := api.apps.Get(r.Context(), appID)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return app, true
}

func flagString(value bool) string {
	if value {
		return "1"
	}
	return "0"
}
