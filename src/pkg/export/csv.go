package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"erp-dashboard/src/pkg/report"
)

/*
WriteCSV writes a metadata block, then one block per available report
(title, column header, rows) and finally the AI insights when present.
Blocks are separated by an empty record.
*/
func WriteCSV(w io.Writer, data Data) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	records := [][]string{
		{"Financial Report Export"},
		{"Company", data.Company},
		{"Period", period(data)},
		{"Generated", data.GeneratedAt.UTC().Format(time.RFC3339)},
		{},
	}
	for _, id := range report.DataIDs {
		normalized := data.Reports[id]
		if normalized == nil {
			continue
		}
		records = append(records, []string{normalized.Title})

		header := make([]string, 0, len(normalized.Columns))
		for _, column := range normalized.Columns {
			header = append(header, column.Label)
		}
		records = append(records, header)

		for _, row := range normalized.Rows {
			record := make([]string, 0, len(normalized.Columns))
			for _, column := range normalized.Columns {
				record = append(record, cell(row[column.Key], column.IsNumeric))
			}
			records = append(records, record)
		}
		records = append(records, []string{})
	}
	if data.Insights != "" {
		records = append(records, []string{"AI Insights"}, []string{data.Insights})
	}

	for i, record := range records {
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing record %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
