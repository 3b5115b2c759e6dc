package models

import (
	"math"

	"github.com/shopspring/decimal"

	"timberprices.msstate.edu/internal/chart"
	"timberprices.msstate.edu/internal/stumpage"
)

// PriceRow is one filtered record as served by the API. Missing prices are
// null; Value repeats the price of the selected metric.
type PriceRow struct {
	Year    int                 `json:"year"`
	Quarter string              `json:"quarter"`
	Type    string              `json:"type"`
	Time    string              `json:"time"`
	Minimum decimal.NullDecimal `json:"minimum"`
	Average decimal.NullDecimal `json:"average"`
	Maximum decimal.NullDecimal `json:"maximum"`
	Value   decimal.NullDecimal `json:"value"`
}

func NewPriceRow(r stumpage.Record, metric stumpage.Metric) PriceRow {
	return PriceRow{
		Year:    r.Year,
		Quarter: string(r.Quarter),
		Type:    r.Type,
		Time:    r.Time(),
		Minimum: r.Minimum,
		Average: r.Average,
		Maximum: r.Maximum,
		Value:   r.Price(metric),
	}
}

func NewPriceRows(records []stumpage.Record, metric stumpage.Metric) []PriceRow {
	rows := make([]PriceRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, NewPriceRow(r, metric))
	}
	return rows
}

// PricesData is the body of a prices query.
type PricesData struct {
	Criteria stumpage.Criteria `json:"criteria"`
	Count    int               `json:"count"`
	Empty    bool              `json:"empty"`
	List     []PriceRow        `json:"list"`
}

func NewPricesData(criteria stumpage.Criteria, result stumpage.Result) PricesData {
	return PricesData{
		Criteria: criteria,
		Count:    result.Len(),
		Empty:    result.Empty(),
		List:     NewPriceRows(result.Records, criteria.Metric),
	}
}

// SeriesEntry is one timber type's line for client-side charting; nil marks
// a period without a price. Present is false for periods the type has no
// record for; lines connect across those and break only at missing prices.
type SeriesEntry struct {
	Name    string     `json:"name"`
	Color   string     `json:"color"`
	Values  []*float64 `json:"values"`
	Present []bool     `json:"present"`
}

// SeriesData is the chart data of a prices query.
type SeriesData struct {
	Metric     stumpage.Metric `json:"metric"`
	Categories []string        `json:"categories"`
	Series     []SeriesEntry   `json:"series"`
	Empty      bool            `json:"empty"`
}

func NewSeriesData(result stumpage.Result, metric stumpage.Metric) SeriesData {
	categories, series := chart.BuildSeries(result, metric)

	entries := make([]SeriesEntry, 0, len(series))
	for _, s := range series {
		values := make([]*float64, len(s.Values))
		for i, v := range s.Values {
			if !math.IsNaN(v) {
				values[i] = &v
			}
		}
		entries = append(entries, SeriesEntry{Name: s.Name, Color: s.Color, Values: values, Present: s.Present})
	}

	if categories == nil {
		categories = []string{}
	}
	return SeriesData{
		Metric:     metric,
		Categories: categories,
		Series:     entries,
		Empty:      result.Empty(),
	}
}
