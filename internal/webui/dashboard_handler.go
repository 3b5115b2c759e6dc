package webui

import (
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"

	"timberprices.msstate.edu/internal/chart"
	"timberprices.msstate.edu/internal/logging"
	"timberprices.msstate.edu/internal/stumpage"
	"timberprices.msstate.edu/internal/utils"
)

const (
	PageTitle      = "Mississippi Timber Price Report"
	ContactName    = "Sabhyata Lamichhane"
	ContactEmail   = "sabhyata.lamichhane@msstate.edu"
	ContactPhone   = "662-325-3550"
	ExtensionURL   = "http://www.extension.msstate.edu/forestry/forest-economics/timber-prices"
	DownloadLabel  = "Download Filtered Data as CSV"
	unavailableMsg = "Stumpage price data is currently unavailable. Please try again later."
)

type option struct {
	Value    string
	Selected bool
}

type dashboardPage struct {
	Title        string
	ContactName  string
	ContactEmail string
	ContactPhone string
	ExtensionURL string

	Metrics  []option
	Types    []option
	Quarters []option
	YearSpan stumpage.YearRange
	YearMin  int
	YearMax  int
	Errors   map[string][]string

	Unavailable  bool
	Notice       string
	Chart        template.HTML
	Count        int
	DownloadURL  string
	DownloadText string

	ShowVisits bool
	Visits     int64
}

func (webUI *WebUI) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context()).With(slog.String("component", "webui"))

	page := dashboardPage{
		Title:        PageTitle,
		ContactName:  ContactName,
		ContactEmail: ContactEmail,
		ContactPhone: ContactPhone,
		ExtensionURL: ExtensionURL,
		DownloadText: DownloadLabel,
	}
	page.Visits, page.ShowVisits = webUI.countVisit(r, logger)

	var dataset stumpage.Dataset
	if webUI.Manager != nil {
		dataset = webUI.Manager.Dataset()
	}
	if len(dataset) == 0 {
		page.Unavailable = true
		page.Notice = unavailableMsg
		webUI.render(w, logger, http.StatusServiceUnavailable, page)
		return
	}

	criteria, fieldErrors := utils.ParseCriteria(r.URL.Query())
	if len(fieldErrors) > 0 {
		// the page stays usable; the form shows what was rejected
		page.Errors = fieldErrors
		criteria = stumpage.Criteria{}
	}
	criteria, result := webUI.Manager.Query(criteria)

	page.YearSpan, _ = dataset.YearSpan()
	page.YearMin = criteria.YearRange.Min
	page.YearMax = criteria.YearRange.Max
	page.Metrics = metricOptions(criteria.Metric)
	page.Types = typeOptions(dataset.Types(), criteria.Types)
	page.Quarters = quarterOptions(criteria.Quarters)
	page.Count = result.Len()

	if result.Empty() {
		page.Notice = chart.EmptyMessage
	} else {
		// LineChart escapes every label it writes
		page.Chart = template.HTML(chart.LineChart(result, criteria.Metric, chart.DefaultConfig()))
		page.DownloadURL = "/api/prices.csv?" + criteriaQuery(criteria).Encode()
	}

	webUI.render(w, logger, http.StatusOK, page)
}

// countVisit records the page view. The count is hidden when no counter is
// configured or the increment fails.
func (webUI *WebUI) countVisit(r *http.Request, logger *slog.Logger) (int64, bool) {
	if webUI.Visits == nil {
		return 0, false
	}
	count, err := webUI.Visits.IncrementVisits(r.Context())
	if err != nil {
		logging.LogError(logger, "failed to record visit", err)
		return 0, false
	}
	return count, true
}

func (webUI *WebUI) render(w http.ResponseWriter, logger *slog.Logger, status int, page dashboardPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := dashboardTemplate.Execute(w, page); err != nil {
		logging.LogError(logger, "failed to render dashboard", err)
	}
}

func metricOptions(selected stumpage.Metric) []option {
	options := make([]option, 0, len(stumpage.Metrics))
	for _, m := range stumpage.Metrics {
		options = append(options, option{Value: string(m), Selected: m == selected})
	}
	return options
}

func typeOptions(types, selected []string) []option {
	options := make([]option, 0, len(types))
	for _, t := range types {
		options = append(options, option{Value: t, Selected: slices.Contains(selected, t)})
	}
	return options
}

func quarterOptions(selected []stumpage.Quarter) []option {
	options := make([]option, 0, len(stumpage.Quarters))
	for _, q := range stumpage.Quarters {
		options = append(options, option{Value: string(q), Selected: slices.Contains(selected, q)})
	}
	return options
}

// criteriaQuery encodes c in the query parameters the API understands.
func criteriaQuery(c stumpage.Criteria) url.Values {
	values := url.Values{}
	values.Set(utils.ParamMetric, string(c.Metric))
	for _, t := range c.Types {
		values.Add(utils.ParamType, t)
	}
	for _, q := range c.Quarters {
		values.Add(utils.ParamQuarter, string(q))
	}
	values.Set(utils.ParamYearMin, strconv.Itoa(c.YearRange.Min))
	values.Set(utils.ParamYearMax, strconv.Itoa(c.YearRange.Max))
	return values
}
