package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)

	format, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, format)
	assert.Equal(t, "application/pdf", format.ContentType())

	_, err = ParseFormat("xlsx")
	require.Error(t, err)
}

func TestRenderCSVQuotesFields(t *testing.T) {
	data := Dataset{
		Headers: []string{"Course", "Room"},
		Rows:    []map[string]string{{"Course": "Art, Design", "Room": "B2"}},
	}
	out, err := Render(FormatCSV, data, "")
	require.NoError(t, err)
	assert.Equal(t, "Course,Room\n\"Art, Design\",B2\n", string(out))
}

func TestRenderPDFManyRows(t *testing.T) {
	data := Dataset{Headers: []string{"Day", "Course"}}
	for i := 0; i < 120; i++ {
		data.Rows = append(data.Rows, map[string]string{"Day": "MON", "Course": "Biologie générale"})
	}
	out, err := Render(FormatPDF, data, "Timetable")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), "%PDF"))
}

func TestRenderRequiresHeaders(t *testing.T) {
	_, err := Render(FormatCSV, Dataset{}, "")
	require.Error(t, err)
}
