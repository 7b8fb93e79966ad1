package dataset

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		`member,member_name,zip,risk_full`,
		`M1,"Ortiz, Dana",06103,2.5`,
		`,,,`,
		`M2,Kim Lee`,
		``,
	}, "\n")

	rows, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2, "all-blank rows are dropped")

	assert.Equal(t, "Ortiz, Dana", rows[0]["member_name"])
	assert.Equal(t, "06103", rows[0]["zip"])

	// short rows are padded so every header resolves
	assert.Equal(t, "M2", rows[1]["member"])
	assert.Equal(t, "", rows[1]["zip"])
	assert.Equal(t, "", rows[1]["risk_full"])
}

func TestReadCSV_Empty(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestReadJSONRows_BareArray(t *testing.T) {
	rows, err := ReadJSONRows([]byte(`[{"member":"M1","risk_full":2.5,"flag":true,"note":null}]`))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "M1", rows[0]["member"])
	assert.Equal(t, "2.5", rows[0]["risk_full"])
	assert.Equal(t, "true", rows[0]["flag"])
	assert.Equal(t, "", rows[0]["note"])
}

func TestReadJSONRows_Envelope(t *testing.T) {
	rows, err := ReadJSONRows([]byte(`{"rows":[{"member":"M1"},{"member":"M2"}]}`))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "M2", rows[1]["member"])
}

func TestReadJSONRows_NumericPrecision(t *testing.T) {
	rows, err := ReadJSONRows([]byte(`[{"big":9007199254740993,"frac":0.1}]`))
	require.NoError(t, err)

	// values pass through as written, not via float64
	assert.Equal(t, "9007199254740993", rows[0]["big"])
	assert.Equal(t, "0.1", rows[0]["frac"])
}

func TestReadJSONRows_BadShapes(t *testing.T) {
	_, err := ReadJSONRows([]byte(`{"data":[]}`))
	assert.Error(t, err)

	_, err = ReadJSONRows([]byte(`[1, 2]`))
	assert.Error(t, err)

	_, err = ReadJSONRows([]byte(`"rows"`))
	assert.Error(t, err)
}
