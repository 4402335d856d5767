package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/morelab/appcomposer/internal/apps"
	"github.com/morelab/appcomposer/internal/locales"
)

// handleRenderedSpec serves the rewritten gadget spec for an application:
// upstream Locale elements are swapped for references to the hosted
// language files, keeping the default element in place.
func (api *API) handleRenderedSpec(w http.ResponseWriter, r *http.Request) {
	appID, err := uuid.Parse(r.PathValue("appid"))
	if err != nil {
		writeError(w, &apps.NotFoundError{ID: r.PathValue("appid")})
		return
	}

	app, err := api.apps.Get(r.Context(), appID)
	if err != nil {
		writeError(w, err)
		return
	}

	mgr, err := api.apps.Manager(r.Context(), app)
	if err != nil {
		writeError(w, err)
		return
	}

	rendered, err := mgr.RenderSpec(r.Context(), app.ID.String(), true)
	if err != nil {
		api.logger.Error("rendering spec failed", "app_id", app.ID, "error", err)
		writeError(w, err)
		return
	}
	writeXML(w, http.StatusOK, rendered)
}

// handleLangfile serves one language file as a gadget message bundle.
// The path segment is the full locale code plus ".xml".
func (api *API) handleLangfile(w http.ResponseWriter, r *http.Request) {
	appID, err := uuid.Parse(r.PathValue("appid"))
	if err != nil {
		writeError(w, &apps.NotFoundError{ID: r.PathValue("appid")})
		return
	}

	code := strings.TrimSuffix(r.PathValue("langfile"), ".xml")
	if _, err := locales.Parse(code); err != nil {
		writeError(w, err)
		return
	}

	app, err := api.apps.Get(r.Context(), appID)
	if err != nil {
		writeError(w, err)
		return
	}

	mgr, err := api.apps.Manager(r.Context(), app)
	if err != nil {
		writeError(w, err)
		return
	}

	bundle, ok := mgr.Bundle(code)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{
			Error:   "not_found",
			Message: "no bundle for " + code,
		})
		return
	}

	body, err := bundle.ToXML()
	if err != nil {
		writeError(w, err)
		return
	}
	writeXML(w, http.StatusOK, body)
}
