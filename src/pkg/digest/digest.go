/*
Package digest builds the emailed financial digest: an executive summary,
the top rows of every report and the AI insight sections, rendered as plain
text and as email-safe HTML, with the CSV export and chart images attached.
*/
package digest

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"math"
	"slices"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"

	"erp-dashboard/src/pkg/chartimg"
	"erp-dashboard/src/pkg/dashboard"
	"erp-dashboard/src/pkg/email"
	"erp-dashboard/src/pkg/export"
	"erp-dashboard/src/pkg/insights"
	"erp-dashboard/src/pkg/report"
	"erp-dashboard/src/pkg/util"
)

type Digest struct {
	Company     string
	StartDate   string
	EndDate     string
	Summary     string
	Blocks      []Block
	Failures    []string
	Insights    string
	Sections    []insights.Section
	GeneratedAt time.Time

	view *dashboard.View
}

// Block is one report cut down to its largest lines.
type Block struct {
	ID       report.ID
	Title    string
	Currency string
	Lines    []Line
	Missing  bool
}

type Line struct {
	Name       string
	Amount     float64
	Share      float64 // percentage column, 0 for aging reports
	BarPercent int     // width of the bar relative to the block's largest line
}

/*
Build assembles a digest from a loaded view. The executive summary always
has text (the fallback sentence when the model fails); the full insights are
skipped when withInsights is false or generation fails.
*/
func Build(ctx context.Context, view *dashboard.View, service *insights.Service, withInsights bool) Digest {
	d := Digest{
		Company:     view.Query.Company,
		StartDate:   view.Query.StartDate,
		EndDate:     view.Query.EndDate,
		GeneratedAt: time.Now(),
		view:        view,
	}

	for _, id := range report.DataIDs {
		d.Blocks = append(d.Blocks, block(id, view.Reports[id], Cfg.TopRows))
	}
	for _, kindKey := range slices.Sorted(maps.Keys(view.Errors)) {
		d.Failures = append(d.Failures, view.Errors[kindKey])
	}

	if service == nil {
		d.Summary = insights.FallbackSummary
		return d
	}
	d.Summary = service.ExecutiveSummary(ctx, view.Bundle)

	if withInsights {
		text, e := service.FinancialInsights(ctx, d.Company, view.Bundle)
		if e != nil {
			tl.Log(tl.Warning, palette.Yellow, "Digest insights %s: %s", "skipped", e)
		} else {
			d.Insights = text
			d.Sections = insights.ParseSections(text)
		}
	}
	return d
}

func block(id report.ID, normalized *report.Normalized, topRows int) Block {
	b := Block{ID: id, Title: id.Title(), Missing: normalized == nil}
	if normalized == nil {
		return b
	}
	b.Currency = normalized.Currency

	nameKey := "account_name"
	if id == report.IDReceivables || id == report.IDPayables {
		nameKey = "name"
	}

	maxAbs := 0.0
	for _, row := range normalized.Rows {
		if len(b.Lines) == topRows {
			break
		}
		name, _ := row[nameKey].(string)
		amount, _ := row["amount"].(float64)
		share, _ := row["percentage"].(float64)
		b.Lines = append(b.Lines, Line{Name: name, Amount: amount, Share: share})
		maxAbs = math.Max(maxAbs, math.Abs(amount))
	}
	if maxAbs > 0 {
		for i := range b.Lines {
			b.Lines[i].BarPercent = util.Clamp(int(math.Round(math.Abs(b.Lines[i].Amount)/maxAbs*100)), 0, 100)
		}
	}
	return b
}

func (d Digest) Subject() string {
	subject := fmt.Sprintf("Financial digest: %s (%s to %s)", d.Company, d.StartDate, d.EndDate)
	if email.Cfg.SubjectPrefix != "" {
		subject = email.Cfg.SubjectPrefix + " " + subject
	}
	return subject
}

/*
Attachments returns the CSV export and, when charts are enabled, one PNG per
report that has chart data.
*/
func (d Digest) Attachments(attachCharts bool) (attachments []email.Attachment, e *xerr.Error) {
	data := export.Data{
		Company:     d.Company,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		Insights:    d.Insights,
		GeneratedAt: d.GeneratedAt,
	}
	if d.view != nil {
		data.Bundle = d.view.Bundle
		data.Reports = d.view.Reports
	}
	csvBytes, e := export.Render(export.FormatCSV, data)
	if e != nil {
		return nil, e
	}
	attachments = append(attachments, email.Attachment{
		Filename:    export.Filename(d.Company, export.FormatCSV, d.GeneratedAt),
		ContentType: export.FormatCSV.ContentType(),
		Data:        csvBytes,
	})

	if !attachCharts || d.view == nil {
		return attachments, nil
	}
	for _, id := range report.DataIDs {
		normalized := d.view.Reports[id]
		if normalized == nil || len(normalized.Chart2DData) == 0 {
			continue
		}
		var buffer bytes.Buffer
		if e = chartimg.WritePNG(&buffer, normalized.Chart2DData, chartimg.DefaultOptions()); e != nil {
			return nil, e
		}
		attachments = append(attachments, email.Attachment{
			Filename:    fmt.Sprintf("%s-chart.png", id),
			ContentType: "image/png",
			Data:        buffer.Bytes(),
		})
	}
	return attachments, nil
}

/*
Send renders d and hands it to the email package. send=false previews the
message in the log.
*/
func Send(ctx context.Context, d Digest, provider email.Provider, send *bool, sender string, recipients []string) (e *xerr.Error) {
	htmlText, e := RenderHTML(d)
	if e != nil {
		return e
	}
	attachments, e := d.Attachments(enabled(Cfg.AttachCharts))
	if e != nil {
		return e
	}
	return email.SendMessageContext(ctx, provider, send, sender, recipients, d.Subject(), RenderText(d), htmlText, attachments)
}
