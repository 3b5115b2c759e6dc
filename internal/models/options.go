package models

import "timberprices.msstate.edu/internal/stumpage"

// OptionsData lists the values each dashboard widget can take.
type OptionsData struct {
	Types         []string           `json:"types"`
	Quarters      []stumpage.Quarter `json:"quarters"`
	Metrics       []stumpage.Metric  `json:"metrics"`
	DefaultMetric stumpage.Metric    `json:"defaultMetric"`
	YearRange     stumpage.YearRange `json:"yearRange"`
}

func NewOptionsData(dataset stumpage.Dataset) OptionsData {
	span, _ := dataset.YearSpan()
	return OptionsData{
		Types:         dataset.Types(),
		Quarters:      stumpage.Quarters,
		Metrics:       stumpage.Metrics,
		DefaultMetric: stumpage.DefaultMetric,
		YearRange:     span,
	}
}
