package restapi

import (
	"net/http"

	"timberprices.msstate.edu/internal/chart"
	"timberprices.msstate.edu/internal/models"
	"timberprices.msstate.edu/internal/stumpage"
	"timberprices.msstate.edu/internal/utils"
)

func (api *RestAPI) chartHandler(w http.ResponseWriter, r *http.Request) {
	criteria, result, ok := api.runQuery(w, r)
	if !ok {
		return
	}

	svg := chart.LineChart(result, criteria.Metric, chart.DefaultConfig())
	api.sendBytes(w, r, "image/svg+xml", []byte(svg))
}

// seriesHandler serves the chart data as JSON for client-side rendering.
// The metric comes from the path, e.g. /api/series/average.json.
func (api *RestAPI) seriesHandler(w http.ResponseWriter, r *http.Request) {
	metric, err := stumpage.ParseMetric(utils.RouteParam(r, "metric"))
	if err != nil {
		api.validationErrorResponse(w, r, map[string][]string{
			utils.ParamMetric: {err.Error()},
		})
		return
	}

	criteria, result, ok := api.runQuery(w, r)
	if !ok {
		return
	}
	criteria.Metric = metric

	data := models.NewSeriesData(result, criteria.Metric)
	if result.Empty() {
		api.sendResponse(w, r, models.NewResponse(http.StatusOK, data, NoDataText))
		return
	}
	api.sendResponse(w, r, models.NewOKResponse(data))
}
