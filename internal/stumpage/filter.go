package stumpage

import "fmt"

// Criteria is the set of user-chosen filter values. An empty Types or
// Quarters slice means "no restriction", not "exclude everything".
type Criteria struct {
	Metric    Metric    `json:"metric"`
	Types     []string  `json:"types"`
	Quarters  []Quarter `json:"quarters"`
	YearRange YearRange `json:"yearRange"`
}

// DefaultCriteria selects the average price over the whole dataset.
func DefaultCriteria(d Dataset) Criteria {
	span, _ := d.YearSpan()
	return Criteria{
		Metric:    DefaultMetric,
		Types:     []string{},
		Quarters:  []Quarter{},
		YearRange: span,
	}
}

// Normalize fills unset fields from the dataset: a zero year bound becomes
// the matching end of the dataset span and an empty metric becomes
// DefaultMetric.
func (c Criteria) Normalize(d Dataset) Criteria {
	span, _ := d.YearSpan()
	if c.Metric == "" {
		c.Metric = DefaultMetric
	}
	if c.YearRange.Min == 0 {
		c.YearRange.Min = span.Min
	}
	if c.YearRange.Max == 0 {
		c.YearRange.Max = span.Max
	}
	if c.Types == nil {
		c.Types = []string{}
	}
	if c.Quarters == nil {
		c.Quarters = []Quarter{}
	}
	return c
}

// Validate rejects values no widget could produce.
func (c Criteria) Validate() error {
	if _, err := ParseMetric(string(c.Metric)); err != nil {
		return err
	}
	for _, q := range c.Quarters {
		if _, err := ParseQuarter(string(q)); err != nil {
			return err
		}
	}
	if c.YearRange.Min > c.YearRange.Max {
		return fmt.Errorf("year range minimum %d is greater than maximum %d", c.YearRange.Min, c.YearRange.Max)
	}
	return nil
}

// Result is the ordered subset produced by Apply.
type Result struct {
	Records []Record
}

// Empty reports the "no data for the selected filters" outcome. It is an
// expected state, not an error.
func (r Result) Empty() bool {
	return len(r.Records) == 0
}

func (r Result) Len() int {
	return len(r.Records)
}

// Apply returns the records matching every active criterion, in their
// original order. The input is never modified.
func Apply(records []Record, c Criteria) Result {
	var types map[string]bool
	if len(c.Types) > 0 {
		types = make(map[string]bool, len(c.Types))
		for _, t := range c.Types {
			types[t] = true
		}
	}

	var quarters map[Quarter]bool
	if len(c.Quarters) > 0 {
		quarters = make(map[Quarter]bool, len(c.Quarters))
		for _, q := range c.Quarters {
			quarters[q] = true
		}
	}

	matched := make([]Record, 0)
	for _, r := range records {
		if types != nil && !types[r.Type] {
			continue
		}
		if quarters != nil && !quarters[r.Quarter] {
			continue
		}
		if !c.YearRange.Contains(r.Year) {
			continue
		}
		matched = append(matched, r)
	}

	return Result{Records: matched}
}
