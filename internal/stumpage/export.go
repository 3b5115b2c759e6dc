package stumpage

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
)

// ExportColumns is the header written by WriteCSV.
var ExportColumns = []string{ColumnYear, ColumnQuarter, ColumnType, ColumnMinimum, ColumnAverage, ColumnMaximum, ColumnTime}

// ExportFileName is the suggested name for downloads of filtered rows.
const ExportFileName = "filtered_timber_data.csv"

// CSVRow renders r in ExportColumns order.
func (r Record) CSVRow() []string {
	return []string{
		strconv.Itoa(r.Year),
		string(r.Quarter),
		r.Type,
		formatPrice(r.Minimum),
		formatPrice(r.Average),
		formatPrice(r.Maximum),
		r.Time(),
	}
}

// WriteCSV writes a header line and one line per record. Output depends only
// on the records, so identical input always yields identical bytes.
func WriteCSV(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(ExportColumns); err != nil {
		return fmt.Errorf("error writing CSV header: %w", err)
	}
	for _, r := range records {
		if err := writer.Write(r.CSVRow()); err != nil {
			return fmt.Errorf("error writing CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ToCSV is WriteCSV into a byte slice.
func ToCSV(records []Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatPrice(p decimal.NullDecimal) string {
	if !p.Valid {
		return ""
	}
	return p.Decimal.String()
}
