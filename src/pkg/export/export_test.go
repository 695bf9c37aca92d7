package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erp-dashboard/src/pkg/erp"
	"erp-dashboard/src/pkg/report"
)

var generatedAt = time.Date(2025, 4, 2, 9, 30, 0, 0, time.UTC)

func sampleData() Data {
	bundle := &erp.Bundle{
		ProfitAndLoss: &erp.Report{Result: []erp.Row{
			{Cells: []any{"Sales", 1500.0, 75.0}},
			{Cells: []any{"Rent, Office", -500.0, 25.0}},
		}},
	}
	return Data{
		Company:     "Acme Ltd",
		StartDate:   "2025-01-01",
		EndDate:     "2025-03-31",
		Bundle:      bundle,
		Reports:     report.NormalizeAll(bundle, "Acme Ltd"),
		Insights:    "## Risk Alerts\n- \"Cash\" is low",
		GeneratedAt: generatedAt,
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "financial-report-Acme Ltd-2025-04-02.csv", Filename("Acme Ltd", FormatCSV, generatedAt))
	assert.Equal(t, "financial-report-A-B-2025-04-02.json", Filename("A/B", FormatJSON, generatedAt))
}

func TestParseFormat(t *testing.T) {
	for input, want := range map[string]Format{"csv": FormatCSV, "JSON": FormatJSON, "txt": FormatTXT, "pdf": FormatTXT} {
		got, ok := ParseFormat(input)
		assert.True(t, ok, input)
		assert.Equal(t, want, got, input)
	}
	_, ok := ParseFormat("xlsx")
	assert.False(t, ok)
}

func TestCSV(t *testing.T) {
	content, e := Render(FormatCSV, sampleData())
	require.Nil(t, e)

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"Financial Report Export"}, records[0])
	assert.Equal(t, []string{"Company", "Acme Ltd"}, records[1])
	assert.Equal(t, []string{"Period", "2025-01-01 to 2025-03-31"}, records[2])
	assert.Equal(t, []string{"Generated", "2025-04-02T09:30:00Z"}, records[3])

	// csv.Reader skips empty lines
	assert.Equal(t, []string{"Profit & Loss Statement"}, records[4])
	assert.Equal(t, []string{"Account", "Amount", "%"}, records[5])
	assert.Equal(t, []string{"Sales", "1500.00", "75.00"}, records[6])
	assert.Equal(t, []string{"Rent, Office", "-500.00", "25.00"}, records[7])
	assert.Equal(t, []string{"AI Insights"}, records[8])
	assert.Equal(t, "## Risk Alerts\n- \"Cash\" is low", records[9][0])
}

func TestJSON(t *testing.T) {
	content, e := Render(FormatJSON, sampleData())
	require.Nil(t, e)

	var document map[string]map[string]any
	require.NoError(t, json.Unmarshal(content, &document))

	assert.Equal(t, "Acme Ltd", document["metadata"]["company"])
	assert.Equal(t, "2025-04-02T09:30:00Z", document["metadata"]["exportDate"])
	assert.Equal(t, map[string]any{"start": "2025-01-01", "end": "2025-03-31"}, document["metadata"]["dateRange"])

	assert.NotNil(t, document["report"]["profitAndLoss"])
	assert.NotContains(t, document["report"], "balanceSheet")
	normalized := document["report"]["normalized"].(map[string]any)["pl"].(map[string]any)
	assert.Nil(t, normalized["rawReport"])
	assert.True(t, strings.HasPrefix(string(content), "{\n  \"metadata\""))
}

func TestTXT(t *testing.T) {
	content, e := Render(FormatTXT, sampleData())
	require.Nil(t, e)
	text := string(content)

	assert.True(t, strings.HasPrefix(text, "FINANCIAL REPORT\nCompany: Acme Ltd\nPeriod: 2025-01-01 to 2025-03-31\n"))
	assert.Contains(t, text, "PROFIT & LOSS\n")
	assert.Contains(t, text, "1500.00")
	assert.Contains(t, text, "BALANCE SHEET\nNo data available\n")
	assert.Contains(t, text, "AI INSIGHTS\n## Risk Alerts")

	data := sampleData()
	data.Insights = ""
	content, e = Render(FormatTXT, data)
	require.Nil(t, e)
	assert.True(t, strings.HasSuffix(string(content), "AI INSIGHTS\nNo insights available\n"))
}

func TestRenderUnknownFormat(t *testing.T) {
	_, e := Render(Format("xlsx"), sampleData())
	assert.NotNil(t, e)
}
