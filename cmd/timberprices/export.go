package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"timberprices.msstate.edu/internal/stumpage"
	"timberprices.msstate.edu/internal/utils"
)

const defaultFetchTimeout = 30 * time.Second

// errNoData is returned when the filters match nothing.
var errNoData = errors.New("no data available for the selected filters")

type exportOptions struct {
	Source   string
	Types    []string
	Quarters []string
	YearMin  int
	YearMax  int
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the filtered stumpage data as CSV",
	Example: `  timberprices export --type "Pine Sawtimber" --quarter Q1 --year-min 2020
  timberprices export --out filtered_timber_data.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts exportOptions
		opts.Source, _ = cmd.Flags().GetString("source")
		opts.Types, _ = cmd.Flags().GetStringArray("type")
		opts.Quarters, _ = cmd.Flags().GetStringSlice("quarter")
		opts.YearMin, _ = cmd.Flags().GetInt("year-min")
		opts.YearMax, _ = cmd.Flags().GetInt("year-max")
		if opts.Source == "" {
			opts.Source = cfg.Data.SourceURL
		}

		timeout := cfg.Data.FetchTimeout
		if timeout <= 0 {
			timeout = defaultFetchTimeout
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		var buf bytes.Buffer
		n, err := runExport(ctx, &http.Client{}, opts, &buf)
		if err != nil {
			return err
		}

		path, _ := cmd.Flags().GetString("out")
		if err := writeOutput(path, cmd.OutOrStdout(), buf.Bytes()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "exported %d records\n", n)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("source", "", "CSV URL or local path (default: data.source_url)")
	exportCmd.Flags().StringArray("type", nil, "product type to include (repeatable)")
	exportCmd.Flags().StringSlice("quarter", nil, "quarters to include, e.g. Q1,Q3")
	exportCmd.Flags().Int("year-min", 0, "first year to include (default: earliest in the data)")
	exportCmd.Flags().Int("year-max", 0, "last year to include (default: latest in the data)")
	exportCmd.Flags().String("out", "", "output file (default: stdout)")
}

// runExport loads opts.Source, filters it and writes the matching records to
// w. It returns errNoData, writing nothing, when no record matches.
func runExport(ctx context.Context, client *http.Client, opts exportOptions, w io.Writer) (int, error) {
	criteria, fieldErrors := utils.ParseCriteria(opts.queryValues())
	if len(fieldErrors) > 0 {
		return 0, fieldErrorsToError(fieldErrors)
	}

	dataset, err := stumpage.Load(ctx, client, opts.Source)
	if err != nil {
		return 0, err
	}

	result := stumpage.Apply(dataset, criteria.Normalize(dataset))
	if result.Empty() {
		return 0, errNoData
	}
	if err := stumpage.WriteCSV(w, result.Records); err != nil {
		return 0, err
	}
	return result.Len(), nil
}

// writeOutput writes data to the file at path, or to stdout when path is
// empty or "-". The file is only created once there is something to write.
func writeOutput(path string, stdout io.Writer, data []byte) (err error) {
	if path == "" || path == "-" {
		_, err = stdout.Write(data)
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("error closing %s: %w", path, closeErr)
		}
	}()

	_, err = f.Write(data)
	return err
}

// queryValues maps the flags onto the API's query parameters so both share
// one validator.
func (opts exportOptions) queryValues() url.Values {
	values := url.Values{}
	values[utils.ParamType] = opts.Types
	values[utils.ParamQuarter] = opts.Quarters
	if opts.YearMin != 0 {
		values.Set(utils.ParamYearMin, strconv.Itoa(opts.YearMin))
	}
	if opts.YearMax != 0 {
		values.Set(utils.ParamYearMax, strconv.Itoa(opts.YearMax))
	}
	return values
}

func fieldErrorsToError(fieldErrors map[string][]string) error {
	fields := make([]string, 0, len(fieldErrors))
	for field := range fieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var msgs []string
	for _, field := range fields {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, strings.Join(fieldErrors[field], "; ")))
	}
	return fmt.Errorf("invalid filters: %s", strings.Join(msgs, ", "))
}
