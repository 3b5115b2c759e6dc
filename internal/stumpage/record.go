// Package stumpage loads the Mississippi stumpage price dataset and answers
// filter queries over it.
package stumpage

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

type Quarter string

const (
	Q1 Quarter = "Q1"
	Q2 Quarter = "Q2"
	Q3 Quarter = "Q3"
	Q4 Quarter = "Q4"
)

// Quarters lists every valid quarter in calendar order.
var Quarters = []Quarter{Q1, Q2, Q3, Q4}

// ParseQuarter accepts Q1..Q4, ignoring case and surrounding space.
func ParseQuarter(s string) (Quarter, error) {
	q := Quarter(strings.ToUpper(strings.TrimSpace(s)))
	switch q {
	case Q1, Q2, Q3, Q4:
		return q, nil
	}
	return "", fmt.Errorf("invalid quarter %q (expected Q1, Q2, Q3 or Q4)", s)
}

// Metric selects which price column is charted.
type Metric string

const (
	Minimum Metric = "Minimum"
	Average Metric = "Average"
	Maximum Metric = "Maximum"
)

var Metrics = []Metric{Minimum, Average, Maximum}

// DefaultMetric is the metric selected when none is given.
const DefaultMetric = Average

// ParseMetric is case-insensitive. An empty string yields DefaultMetric.
func ParseMetric(s string) (Metric, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultMetric, nil
	}
	for _, m := range Metrics {
		if strings.EqualFold(s, string(m)) {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid metric %q (expected Minimum, Average or Maximum)", s)
}

// Record is one row of the dataset. Prices are in $/ton; a blank cell in the
// source is an invalid NullDecimal.
type Record struct {
	Year    int
	Quarter Quarter
	Type    string
	Minimum decimal.NullDecimal
	Average decimal.NullDecimal
	Maximum decimal.NullDecimal
}

// Time is the "<Year> <Quarter>" label used on the chart's x axis.
func (r Record) Time() string {
	return strconv.Itoa(r.Year) + " " + string(r.Quarter)
}

// Price returns the column selected by m.
func (r Record) Price(m Metric) decimal.NullDecimal {
	switch m {
	case Minimum:
		return r.Minimum
	case Maximum:
		return r.Maximum
	default:
		return r.Average
	}
}

// YearRange is an inclusive [Min, Max] interval of years.
type YearRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (yr YearRange) Contains(year int) bool {
	return year >= yr.Min && year <= yr.Max
}

// Dataset is the ordered, load-once collection of records.
type Dataset []Record

// Types returns the distinct product types in order of first appearance.
func (d Dataset) Types() []string {
	seen := make(map[string]bool)
	types := make([]string, 0)
	for _, r := range d {
		if !seen[r.Type] {
			seen[r.Type] = true
			types = append(types, r.Type)
		}
	}
	return types
}

// YearSpan returns the smallest and largest year present. ok is false for an
// empty dataset.
func (d Dataset) YearSpan() (span YearRange, ok bool) {
	if len(d) == 0 {
		return YearRange{}, false
	}
	span = YearRange{Min: d[0].Year, Max: d[0].Year}
	for _, r := range d[1:] {
		if r.Year < span.Min {
			span.Min = r.Year
		}
		if r.Year > span.Max {
			span.Max = r.Year
		}
	}
	return span, true
}
