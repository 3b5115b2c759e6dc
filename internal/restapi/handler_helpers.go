package restapi

import (
	"net/http"

	"timberprices.msstate.edu/internal/stumpage"
	"timberprices.msstate.edu/internal/utils"
)

// datasetAvailable sends a 503 and returns false when nothing is loaded.
func (api *RestAPI) datasetAvailable(w http.ResponseWriter, r *http.Request) bool {
	if api.Manager == nil || len(api.Manager.Dataset()) == 0 {
		api.datasetUnavailableResponse(w, r)
		return false
	}
	return true
}

// runQuery parses the filter parameters of r and applies them to the current
// dataset. On failure the error response has already been sent.
func (api *RestAPI) runQuery(w http.ResponseWriter, r *http.Request) (stumpage.Criteria, stumpage.Result, bool) {
	if !api.datasetAvailable(w, r) {
		return stumpage.Criteria{}, stumpage.Result{}, false
	}

	criteria, fieldErrors := utils.ParseCriteria(r.URL.Query())
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return stumpage.Criteria{}, stumpage.Result{}, false
	}

	criteria, result := api.Manager.Query(criteria)
	return criteria, result, true
}
