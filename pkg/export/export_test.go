package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVRenderEscapesAndOrders(t *testing.T) {
	data := Dataset{
		Headers: []string{"Student", "Amount"},
		Rows: [][]string{
			{"Ruiz, Ana", "150.00"},
			{"Diaz \"Pepe\" Luis", "75.50"},
		},
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "Student,Amount", lines[0])
	require.Contains(t, lines[1], `"Ruiz, Ana"`)
	require.Contains(t, lines[2], `"Diaz ""Pepe"" Luis"`)
}

func TestCSVRenderRejectsRaggedRows(t *testing.T) {
	data := Dataset{
		Headers: []string{"A", "B"},
		Rows:    [][]string{{"only-one"}},
	}
	_, err := NewCSVExporter().Render(data)
	require.Error(t, err)
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFRenderProducesDocument(t *testing.T) {
	data := Dataset{
		Headers: []string{"Student", "Debt"},
		Rows:    [][]string{{"Ana Ruiz", "300.00"}},
	}
	out, err := NewPDFExporter().Render(data, "Debtors Report")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(out), "%PDF"))
}
