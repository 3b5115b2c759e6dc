package restapi

import (
	"net/http"

	"timberprices.msstate.edu/internal/models"
	"timberprices.msstate.edu/internal/stumpage"
)

// NoDataText accompanies an empty result. It is not an error.
const NoDataText = "no data available for the selected filters"

func (api *RestAPI) pricesHandler(w http.ResponseWriter, r *http.Request) {
	criteria, result, ok := api.runQuery(w, r)
	if !ok {
		return
	}

	data := models.NewPricesData(criteria, result)
	if result.Empty() {
		api.sendResponse(w, r, models.NewResponse(http.StatusOK, data, NoDataText))
		return
	}
	api.sendResponse(w, r, models.NewOKResponse(data))
}

// pricesCSVHandler serves the filtered rows as a download. An empty result
// has nothing to download and gets 204 No Content.
func (api *RestAPI) pricesCSVHandler(w http.ResponseWriter, r *http.Request) {
	_, result, ok := api.runQuery(w, r)
	if !ok {
		return
	}

	if result.Empty() {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	body, err := stumpage.ToCSV(result.Records)
	if err != nil {
		api.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Disposition", `attachment; filename="`+stumpage.ExportFileName+`"`)
	api.sendBytes(w, r, "text/csv; charset=utf-8", body)
}
