package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)
	assert.Equal(t, "application/pdf", f.ContentType())

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestRenderCSVPadsShortRows(t *testing.T) {
	out, err := Render(FormatCSV, Table{
		Columns: []string{"Start", "End", "Title"},
		Rows:    [][]string{{"09:00", "10:00"}, {"10:00", "11:00", "Algebra"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Start,End,Title\n09:00,10:00,\n10:00,11:00,Algebra\n", string(out))
}

func TestRenderPDF(t *testing.T) {
	out, err := Render(FormatPDF, Table{
		Title:   "Calendar",
		Columns: []string{"Start", "End"},
		Rows:    [][]string{{"09:00", "10:00"}},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestRenderRequiresColumns(t *testing.T) {
	_, err := Render(FormatCSV, Table{})
	assert.Error(t, err)
}
