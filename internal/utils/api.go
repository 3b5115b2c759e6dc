package utils

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"timberprices.msstate.edu/internal/stumpage"
)

// Query parameter names shared by the API and the dashboard form.
const (
	ParamMetric  = "metric"
	ParamType    = "type"
	ParamQuarter = "quarter"
	ParamYearMin = "yearMin"
	ParamYearMax = "yearMax"
)

// ParseIntParam retrieves an int value from the provided URL query parameters.
// If the key is not present it returns 0; if the value is invalid, it returns 0
// and updates the fieldErrors map.
func ParseIntParam(params url.Values, key string, fieldErrors map[string][]string) (int, map[string][]string) {
	if fieldErrors == nil {
		fieldErrors = make(map[string][]string)
	}

	val := strings.TrimSpace(params.Get(key))
	if val == "" {
		return 0, fieldErrors
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		fieldErrors[key] = append(fieldErrors[key], fmt.Sprintf("Invalid field value for field %q.", key))
		return 0, fieldErrors
	}
	return i, fieldErrors
}

// ParseCriteria reads filter criteria from query parameters. Types are
// repeated, one literal name per value; quarters may also be comma separated.
// Unset fields are left zero for
// Criteria.Normalize to fill. The returned map is empty when every value is
// valid.
func ParseCriteria(params url.Values) (stumpage.Criteria, map[string][]string) {
	fieldErrors := make(map[string][]string)
	var criteria stumpage.Criteria

	metric, err := stumpage.ParseMetric(params.Get(ParamMetric))
	if err != nil {
		fieldErrors[ParamMetric] = append(fieldErrors[ParamMetric], err.Error())
	}
	criteria.Metric = metric

	types := typeValues(params[ParamType])
	if len(types) > MaxSelections {
		fieldErrors[ParamType] = append(fieldErrors[ParamType], fmt.Sprintf("too many types (max %d)", MaxSelections))
	}
	for _, t := range types {
		if err := ValidateTypeName(t); err != nil {
			fieldErrors[ParamType] = append(fieldErrors[ParamType], err.Error())
			continue
		}
		criteria.Types = append(criteria.Types, t)
	}

	for _, raw := range splitValues(params[ParamQuarter]) {
		q, err := stumpage.ParseQuarter(raw)
		if err != nil {
			fieldErrors[ParamQuarter] = append(fieldErrors[ParamQuarter], err.Error())
			continue
		}
		criteria.Quarters = append(criteria.Quarters, q)
	}

	criteria.YearRange.Min, fieldErrors = ParseIntParam(params, ParamYearMin, fieldErrors)
	criteria.YearRange.Max, fieldErrors = ParseIntParam(params, ParamYearMax, fieldErrors)
	for key, year := range map[string]int{ParamYearMin: criteria.YearRange.Min, ParamYearMax: criteria.YearRange.Max} {
		if year == 0 || len(fieldErrors[key]) > 0 {
			continue
		}
		if err := ValidateYear(year); err != nil {
			fieldErrors[key] = append(fieldErrors[key], err.Error())
		}
	}

	if criteria.YearRange.Min != 0 && criteria.YearRange.Max != 0 && criteria.YearRange.Min > criteria.YearRange.Max {
		fieldErrors[ParamYearMin] = append(fieldErrors[ParamYearMin],
			fmt.Sprintf("%s must not be greater than %s", ParamYearMin, ParamYearMax))
	}

	return criteria, fieldErrors
}

// typeValues keeps each repeated value as one literal type name, since names
// may contain commas. Surrounding space is trimmed as the loader does and
// blanks are dropped.
func typeValues(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// splitValues flattens repeated and comma separated values, dropping blanks.
func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
