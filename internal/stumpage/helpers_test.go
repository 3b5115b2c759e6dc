package stumpage

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testDataPath(t *testing.T, name string) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("..", "..", "testdata", name))
	require.NoError(t, err, "Failed to get test data path")
	return path
}

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func record(year int, quarter Quarter, typ string, average string) Record {
	return Record{Year: year, Quarter: quarter, Type: typ, Average: price(average)}
}
