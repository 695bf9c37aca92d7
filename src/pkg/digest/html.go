package digest

import (
	"bytes"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tuumbleweed/xerr"

	"erp-dashboard/src/pkg/insights"
)

var sectionColors = map[insights.SectionType]string{
	insights.SectionPositive: "#16A34A",
	insights.SectionWarning:  "#DC2626",
	insights.SectionInsight:  "#4F46E5",
}

/*
RenderHTML renders d as a single email-safe HTML document: tables and
inline styles only, no external CSS or scripts.
*/
func RenderHTML(d Digest) (htmlText string, e *xerr.Error) {
	var buffer bytes.Buffer

	buffer.WriteString(`<!doctype html><html><head><meta charset="utf-8">`)
	buffer.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	buffer.WriteString(`<title>` + html.EscapeString(d.Subject()) + `</title></head>`)
	buffer.WriteString(`<body style="margin:0;padding:0;background-color:#F3F4F6;font-family:Arial,Helvetica,sans-serif;">`)

	buffer.WriteString(`<table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="background-color:#F3F4F6;">`)
	buffer.WriteString(`<tr><td align="center" style="padding:24px 12px;">`)
	buffer.WriteString(`<table role="presentation" width="640" cellpadding="0" cellspacing="0" style="max-width:640px;width:100%;">`)
	buffer.WriteString(`<tr><td>`)

	// Header.
	buffer.WriteString(`<div style="padding:0 0 18px 0;">`)
	buffer.WriteString(`<div style="font-size:22px;font-weight:900;color:#111827;">` + html.EscapeString(d.Company) + `</div>`)
	buffer.WriteString(`<div style="margin-top:4px;font-size:13px;color:#6B7280;">Financial digest, ` + html.EscapeString(d.StartDate) + ` to ` + html.EscapeString(d.EndDate) + `</div>`)
	buffer.WriteString(`</div>`)

	// Summary card.
	buffer.WriteString(`<div style="padding:0 0 18px 0;">`)
	buffer.WriteString(cardOpen())
	buffer.WriteString(`<div style="padding:16px 18px;">`)
	buffer.WriteString(`<div style="font-size:13px;font-weight:900;color:#111827;">Executive summary</div>`)
	buffer.WriteString(`<div style="margin-top:10px;font-size:14px;line-height:1.6;color:#374151;">` + html.EscapeString(d.Summary) + `</div>`)
	buffer.WriteString(`</div>`)
	buffer.WriteString(cardClose())
	buffer.WriteString(`</div>`)

	// One card per report.
	for _, b := range d.Blocks {
		buffer.WriteString(`<div style="padding:0 0 18px 0;">`)
		buffer.WriteString(cardOpen())
		buffer.WriteString(`<div style="padding:16px 18px;">`)
		buffer.WriteString(`<div style="font-size:13px;font-weight:900;color:#111827;">` + html.EscapeString(b.Title) + `</div>`)

		switch {
		case b.Missing:
			buffer.WriteString(`<div style="margin-top:10px;font-size:12px;color:#9CA3AF;">Not available</div>`)
		case len(b.Lines) == 0:
			buffer.WriteString(`<div style="margin-top:10px;font-size:12px;color:#9CA3AF;">No data available</div>`)
		default:
			buffer.WriteString(`<table role="presentation" width="100%" cellpadding="0" cellspacing="0" style="margin-top:10px;">`)
			for _, line := range b.Lines {
				barColor := "#6366F1"
				if line.Amount < 0 {
					barColor = "#F472B6"
				}
				buffer.WriteString(`<tr><td style="padding:6px 0;">`)
				buffer.WriteString(`<table role="presentation" width="100%" cellpadding="0" cellspacing="0">`)
				buffer.WriteString(`<tr>`)
				buffer.WriteString(`<td style="font-size:13px;color:#111827;">` + html.EscapeString(line.Name) + `</td>`)
				buffer.WriteString(`<td align="right" style="font-size:13px;font-weight:700;color:#111827;white-space:nowrap;">` + html.EscapeString(formatMoney(line.Amount, b.Currency)) + `</td>`)
				buffer.WriteString(`</tr>`)
				buffer.WriteString(`<tr><td colspan="2" style="padding-top:6px;">`)
				buffer.WriteString(`<div style="width:100%;height:8px;border-radius:999px;background-color:#EEF2FF;overflow:hidden;">`)
				buffer.WriteString(`<div style="height:8px;width:` + strconv.Itoa(line.BarPercent) + `%;background-color:` + barColor + `;border-radius:999px;"></div>`)
				buffer.WriteString(`</div>`)
				buffer.WriteString(`</td></tr>`)
				buffer.WriteString(`</table>`)
				buffer.WriteString(`</td></tr>`)
			}
			buffer.WriteString(`</table>`)
		}

		buffer.WriteString(`</div>`)
		buffer.WriteString(cardClose())
		buffer.WriteString(`</div>`)
	}

	// Insight sections.
	if len(d.Sections) > 0 {
		buffer.WriteString(`<div style="padding:0 0 18px 0;">`)
		buffer.WriteString(cardOpen())
		buffer.WriteString(`<div style="padding:16px 18px;">`)
		buffer.WriteString(`<div style="font-size:13px;font-weight:900;color:#111827;">AI insights</div>`)
		for _, section := range d.Sections {
			color := sectionColors[section.Type]
			if color == "" {
				color = sectionColors[insights.SectionInsight]
			}
			buffer.WriteString(`<div style="margin-top:12px;padding-left:10px;border-left:3px solid ` + color + `;">`)
			buffer.WriteString(`<div style="font-size:13px;font-weight:700;color:` + color + `;">` + html.EscapeString(section.Title) + `</div>`)
			if section.Body != "" {
				buffer.WriteString(`<div style="margin-top:4px;font-size:12px;line-height:1.6;color:#374151;">` + html.EscapeString(section.Body) + `</div>`)
			}
			if len(section.Bullets) > 0 {
				buffer.WriteString(`<div style="margin-top:4px;font-size:12px;line-height:1.7;color:#374151;">`)
				for _, bullet := range section.Bullets {
					buffer.WriteString(`• ` + html.EscapeString(bullet) + `<br>`)
				}
				buffer.WriteString(`</div>`)
			}
			buffer.WriteString(`</div>`)
		}
		buffer.WriteString(`</div>`)
		buffer.WriteString(cardClose())
		buffer.WriteString(`</div>`)
	}

	// Notes card.
	buffer.WriteString(`<div style="padding:0 0 18px 0;">`)
	buffer.WriteString(cardOpen())
	buffer.WriteString(`<div style="padding:16px 18px;">`)
	if len(d.Failures) > 0 {
		buffer.WriteString(`<div style="font-size:12px;line-height:1.7;color:#B45309;">`)
		for _, failure := range d.Failures {
			buffer.WriteString(`• ` + html.EscapeString(failure) + `<br>`)
		}
		buffer.WriteString(`</div>`)
	}
	buffer.WriteString(`<div style="margin-top:6px;font-size:11px;color:#9CA3AF;">Generated ` + html.EscapeString(d.GeneratedAt.Format("2006-01-02 15:04:05")) + `</div>`)
	buffer.WriteString(`</div>`)
	buffer.WriteString(cardClose())
	buffer.WriteString(`</div>`)

	buffer.WriteString(`</td></tr>`)
	buffer.WriteString(`</table>`)
	buffer.WriteString(`</td></tr>`)
	buffer.WriteString(`</table>`)
	buffer.WriteString(`</body></html>`)

	htmlText = buffer.String()
	return htmlText, e
}

/*
cardOpen returns the opening HTML for a card-like container (email-safe).
*/
func cardOpen() string {
	return `<div style="background-color:#FFFFFF;border:1px solid #E5E7EB;border-radius:16px;box-shadow:0 8px 24px rgba(17,24,39,0.06);overflow:hidden;">`
}

func cardClose() string {
	return `</div>`
}

/*
formatMoney formats an amount with two decimals and comma thousand separators.

Example:

	-71630.5, "USD" -> "-USD 71,630.50"
*/
func formatMoney(amount float64, currency string) string {
	fixed := decimal.NewFromFloat(amount).StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign = "-"
		fixed = fixed[1:]
	}
	whole, fraction, _ := strings.Cut(fixed, ".")
	if currency == "" {
		return fmt.Sprintf("%s%s.%s", sign, groupThousands(whole, ","), fraction)
	}
	return fmt.Sprintf("%s%s %s.%s", sign, currency, groupThousands(whole, ","), fraction)
}

/*
groupThousands groups digits in a base-10 string using the provided separator.
*/
func groupThousands(raw string, sep string) string {
	if len(raw) <= 3 {
		return raw
	}

	var builder strings.Builder
	firstGroupLen := len(raw) % 3
	if firstGroupLen == 0 {
		firstGroupLen = 3
	}

	builder.WriteString(raw[:firstGroupLen])

	for index := firstGroupLen; index < len(raw); index += 3 {
		builder.WriteString(sep)
		builder.WriteString(raw[index : index+3])
	}

	return builder.String()
}
