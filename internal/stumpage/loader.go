package stumpage

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"timberprices.msstate.edu/internal/logging"
)

// Column names required in the source CSV, in export order.
const (
	ColumnYear    = "Year"
	ColumnQuarter = "Quarter"
	ColumnType    = "Type"
	ColumnMinimum = "Minimum"
	ColumnAverage = "Average"
	ColumnMaximum = "Maximum"
	ColumnTime    = "Time"
)

var requiredColumns = []string{ColumnYear, ColumnQuarter, ColumnType, ColumnMinimum, ColumnAverage, ColumnMaximum}

// maxSourceBytes bounds how much of a remote source is read.
const maxSourceBytes = 32 << 20

// Cells treated as a missing price, as pandas does when reading the file.
var missingValues = map[string]bool{
	"":    true,
	"na":  true,
	"n/a": true,
	"nan": true,
}

// IsRemoteSource reports whether source is fetched over HTTP rather than read
// from the local filesystem.
func IsRemoteSource(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Fetch returns the raw bytes of source, which is either an http(s) URL or a
// local file path. Every failure is a *RetrievalError.
func Fetch(ctx context.Context, client *http.Client, source string) ([]byte, error) {
	if !IsRemoteSource(source) {
		b, err := os.ReadFile(source)
		if err != nil {
			return nil, &RetrievalError{Source: source, Err: fmt.Errorf("error reading local file: %w", err)}
		}
		return b, nil
	}

	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, &RetrievalError{Source: source, Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &RetrievalError{Source: source, Err: fmt.Errorf("error downloading data: %w", err)}
	}
	defer logging.SafeCloseWithLogging(resp.Body,
		logging.FromContext(ctx).With(slog.String("component", "stumpage_loader")),
		"source_response_body")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RetrievalError{Source: source, Err: fmt.Errorf("unexpected HTTP status %s", resp.Status)}
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxSourceBytes+1))
	if err != nil {
		return nil, &RetrievalError{Source: source, Err: fmt.Errorf("error reading response body: %w", err)}
	}
	if len(b) > maxSourceBytes {
		return nil, &RetrievalError{Source: source, Err: fmt.Errorf("response exceeds %d bytes", maxSourceBytes)}
	}
	return b, nil
}

// Load fetches and parses source.
func Load(ctx context.Context, client *http.Client, source string) (Dataset, error) {
	b, err := Fetch(ctx, client, source)
	if err != nil {
		return nil, err
	}

	dataset, err := Parse(bytes.NewReader(b))
	if err != nil {
		var retrievalErr *RetrievalError
		if errors.As(err, &retrievalErr) && retrievalErr.Source == "" {
			retrievalErr.Source = source
		}
		return nil, err
	}
	return dataset, nil
}

// Parse reads a stumpage CSV. The header must name every required column;
// extra columns are ignored and column order is free. A missing column is a
// *SchemaError, any malformed row a *RetrievalError.
func Parse(r io.Reader) (Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &RetrievalError{Err: errors.New("empty CSV document")}
	}
	if err != nil {
		return nil, &RetrievalError{Line: 1, Err: fmt.Errorf("error reading header: %w", err)}
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var dataset Dataset
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// csv.ParseError already carries the line number
			return nil, &RetrievalError{Err: err}
		}
		line, _ := reader.FieldPos(0)

		record, err := parseRow(row, index)
		if err != nil {
			return nil, &RetrievalError{Line: line, Err: err}
		}
		dataset = append(dataset, record)
	}

	if len(dataset) == 0 {
		return nil, &RetrievalError{Err: errors.New("CSV contains no records")}
	}
	return dataset, nil
}

func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}
	return index, nil
}

func parseRow(row []string, index map[string]int) (Record, error) {
	var record Record
	var err error

	if record.Year, err = parseYear(row[index[ColumnYear]]); err != nil {
		return Record{}, err
	}
	if record.Quarter, err = ParseQuarter(row[index[ColumnQuarter]]); err != nil {
		return Record{}, err
	}
	record.Type = strings.TrimSpace(row[index[ColumnType]])

	if record.Minimum, err = parsePrice(ColumnMinimum, row[index[ColumnMinimum]]); err != nil {
		return Record{}, err
	}
	if record.Average, err = parsePrice(ColumnAverage, row[index[ColumnAverage]]); err != nil {
		return Record{}, err
	}
	if record.Maximum, err = parsePrice(ColumnMaximum, row[index[ColumnMaximum]]); err != nil {
		return Record{}, err
	}
	return record, nil
}

// parseYear also accepts integral floats such as "2020.0".
func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("missing Year")
	}
	if year, err := strconv.Atoi(s); err == nil {
		return year, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid Year %q", s)
	}
	return int(f), nil
}

func parsePrice(column, s string) (decimal.NullDecimal, error) {
	s = strings.TrimSpace(s)
	if missingValues[strings.ToLower(s)] {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("invalid %s %q", column, s)
	}
	return decimal.NewNullDecimal(d), nil
}
