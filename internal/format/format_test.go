package format

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vectordb/internal/dataset"
	"vectordb/internal/schema"
	"vectordb/internal/value"
)

func sampleRows(t *testing.T) (*schema.Schema, []dataset.Tuple) {
	t.Helper()
	sch := schema.MustNew([]schema.Field{
		{Name: "region", Type: value.TypeString()},
		{Name: "amount", Type: value.TypeInt()},
	})
	tup, err := dataset.NewTuple(sch, []value.Value{value.String("N"), value.Int(100)})
	require.NoError(t, err)
	return sch, []dataset.Tuple{tup}
}

func TestNewDefaultsToTable(t *testing.T) {
	f, err := New("")
	require.NoError(t, err)
	_, ok := f.(tableFormatter)
	assert.True(t, ok)
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	_, err := New("yaml")
	assert.Error(t, err)
}

func TestTableFormatterAlignsColumns(t *testing.T) {
	f, err := New("table")
	require.NoError(t, err)
	sch, rows := sampleRows(t)
	out, err := f.FormatRows(sch, rows)
	require.NoError(t, err)
	assert.Contains(t, out, "region")
	assert.Contains(t, out, "amount")
	assert.Contains(t, out, "N")
	assert.Contains(t, out, "100")
	assert.True(t, strings.Contains(out, "----"))
}

func TestJSONFormatterRoundTrippable(t *testing.T) {
	f, err := New("json")
	require.NoError(t, err)
	sch, rows := sampleRows(t)
	out, err := f.FormatRows(sch, rows)
	require.NoError(t, err)
	assert.Contains(t, out, `"region": "N"`)
	assert.Contains(t, out, `"amount": 100`)
}

func TestFormatError(t *testing.T) {
	f, err := New("table")
	require.NoError(t, err)
	assert.Equal(t, "error: boom", f.FormatError(errors.New("boom")))

	jf, err := New("json")
	require.NoError(t, err)
	assert.Contains(t, jf.FormatError(errors.New("boom")), "boom")
}
