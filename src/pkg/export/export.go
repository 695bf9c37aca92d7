/*
Package export writes a company's financial reports as CSV, JSON or plain
text downloads.
*/
package export

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tuumbleweed/xerr"

	"erp-dashboard/src/pkg/erp"
	"erp-dashboard/src/pkg/report"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatTXT  Format = "txt"
)

func ParseFormat(s string) (Format, bool) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatTXT:
		return f, true
	case "pdf", "text":
		// the old dashboard called the text download "pdf"
		return FormatTXT, true
	}
	return "", false
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatJSON:
		return "application/json; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

// Data is everything one export contains.
type Data struct {
	Company     string
	StartDate   string
	EndDate     string
	Bundle      *erp.Bundle
	Reports     map[report.ID]*report.Normalized
	Insights    string
	GeneratedAt time.Time
}

// Filename is financial-report-<company>-<YYYY-MM-DD>.<ext>.
func Filename(company string, format Format, at time.Time) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', '\n', '\r':
			return '-'
		}
		return r
	}, company)
	return fmt.Sprintf("financial-report-%s-%s.%s", safe, at.Format(time.DateOnly), format)
}

// Render writes data in format.
func Render(format Format, data Data) (content []byte, e *xerr.Error) {
	var buffer bytes.Buffer
	var err error
	switch format {
	case FormatCSV:
		err = WriteCSV(&buffer, data)
	case FormatJSON:
		err = WriteJSON(&buffer, data)
	case FormatTXT:
		err = WriteTXT(&buffer, data)
	default:
		err = fmt.Errorf("unsupported export format '%s'", format)
	}
	if err != nil {
		return nil, xerr.NewError(err, "render export", format)
	}
	return buffer.Bytes(), nil
}

// cell renders one normalized value; amounts get two decimals.
func cell(value any, numeric bool) string {
	switch v := value.(type) {
	case nil:
		return ""
	case float64:
		if numeric {
			return decimal.NewFromFloat(v).StringFixed(2)
		}
		return decimal.NewFromFloat(v).String()
	case string:
		return v
	}
	return fmt.Sprint(value)
}

func period(data Data) string {
	return fmt.Sprintf("%s to %s", data.StartDate, data.EndDate)
}
