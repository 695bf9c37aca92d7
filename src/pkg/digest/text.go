package digest

import (
	"strings"
)

// RenderText is the plain text part of the digest email.
func RenderText(d Digest) string {
	var builder strings.Builder

	builder.WriteString("Financial digest for " + d.Company + "\n")
	builder.WriteString("Period: " + d.StartDate + " to " + d.EndDate + "\n\n")

	builder.WriteString("SUMMARY\n")
	builder.WriteString(d.Summary + "\n")

	for _, b := range d.Blocks {
		builder.WriteString("\n" + strings.ToUpper(b.Title) + "\n")
		if b.Missing {
			builder.WriteString("  Not available\n")
			continue
		}
		if len(b.Lines) == 0 {
			builder.WriteString("  No data available\n")
			continue
		}
		for _, line := range b.Lines {
			builder.WriteString("  " + line.Name + ": " + formatMoney(line.Amount, b.Currency) + "\n")
		}
	}

	if len(d.Failures) > 0 {
		builder.WriteString("\nNOT LOADED\n")
		for _, failure := range d.Failures {
			builder.WriteString("  - " + failure + "\n")
		}
	}

	if len(d.Sections) > 0 {
		builder.WriteString("\nAI INSIGHTS\n")
		for _, section := range d.Sections {
			builder.WriteString("\n" + section.Title + "\n")
			if section.Body != "" {
				builder.WriteString(section.Body + "\n")
			}
			for _, bullet := range section.Bullets {
				builder.WriteString("  - " + bullet + "\n")
			}
		}
	}

	builder.WriteString("\nGenerated " + d.GeneratedAt.Format("2006-01-02 15:04:05") + "\n")
	return builder.String()
}
