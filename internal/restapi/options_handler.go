package restapi

import (
	"net/http"

	"timberprices.msstate.edu/internal/models"
)

func (api *RestAPI) optionsHandler(w http.ResponseWriter, r *http.Request) {
	if !api.datasetAvailable(w, r) {
		return
	}

	options := models.NewOptionsData(api.Manager.Dataset())
	api.sendResponse(w, r, models.NewEntryResponse(options))
}
