package restapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"timberprices.msstate.edu/internal/logging"
	"timberprices.msstate.edu/internal/models"
	"timberprices.msstate.edu/internal/stumpage"
)

func (api *RestAPI) visitsHandler(w http.ResponseWriter, r *http.Request) {
	if api.Visits == nil {
		api.sendError(w, r, http.StatusServiceUnavailable, "visit counter unavailable")
		return
	}

	count, err := api.Visits.Visits(r.Context())
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	api.sendResponse(w, r, models.NewEntryResponse(models.VisitsModel{Count: count}))
}

func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	if api.Manager == nil {
		api.datasetUnavailableResponse(w, r)
		return
	}

	health := models.NewHealthModel(api.Manager.Status())
	code := http.StatusOK
	if health.Status == "unavailable" {
		code = http.StatusServiceUnavailable
	}
	api.sendResponse(w, r, models.NewResponse(code, map[string]interface{}{"entry": health}, http.StatusText(code)))
}

// refreshHandler re-reads the source on demand. It requires an admin key.
func (api *RestAPI) refreshHandler(w http.ResponseWriter, r *http.Request) {
	if api.RequestHasInvalidAdminKey(r) {
		api.invalidAPIKeyResponse(w, r)
		return
	}
	if api.Manager == nil {
		api.datasetUnavailableResponse(w, r)
		return
	}

	// a refresh outlives a client that hangs up
	err := api.Manager.Refresh(context.WithoutCancel(r.Context()))
	if err != nil {
		var retrievalErr *stumpage.RetrievalError
		var schemaErr *stumpage.SchemaError
		if errors.As(err, &retrievalErr) || errors.As(err, &schemaErr) {
			api.upstreamErrorResponse(w, r, err)
			return
		}
		api.serverErrorResponse(w, r, err)
		return
	}

	status := api.Manager.Status()
	logging.LogOperation(logging.FromContext(r.Context()), "manual_refresh_completed",
		slog.Int("records", status.Records))
	api.sendResponse(w, r, models.NewEntryResponse(models.NewHealthModel(status)))
}
