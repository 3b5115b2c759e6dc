package stumpage

import (
	"fmt"
	"strings"
)

// RetrievalError reports a dataset that could not be fetched or whose content
// is malformed. Line is the 1-based CSV line, or 0 when not line specific.
type RetrievalError struct {
	Source string
	Line   int
	Err    error
}

func (e *RetrievalError) Error() string {
	var b strings.Builder
	b.WriteString("stumpage data unavailable")
	if e.Source != "" {
		fmt.Fprintf(&b, " from %s", e.Source)
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", e.Line)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *RetrievalError) Unwrap() error {
	return e.Err
}

// SchemaError reports required columns absent from the CSV header.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("stumpage data is missing required columns: %s", strings.Join(e.Missing, ", "))
}
