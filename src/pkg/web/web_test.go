package web

import (
	"bytes"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erp-dashboard/src/pkg/report"
)

func TestRenderPages(t *testing.T) {
	renderer, e := NewRenderer()
	require.Nil(t, e)

	var login bytes.Buffer
	require.NoError(t, renderer.Render(&login, PageLogin, PageData{Title: "Acme <Finance>"}, nil))
	assert.Contains(t, login.String(), "Acme &lt;Finance&gt;")
	assert.Contains(t, login.String(), "Dashboard.initLogin()")

	var dashboard bytes.Buffer
	data := PageData{
		Title:          "ERP Dashboard",
		User:           "admin",
		RefreshMinutes: 5,
		DefaultStart:   "2026-01-01",
		DefaultEnd:     "2026-03-31",
		Nav:            Navigation(),
		ConfigProblems: []string{"ERP_API_KEY is not set"},
	}
	require.NoError(t, renderer.Render(&dashboard, PageDashboard, data, nil))
	html := dashboard.String()
	assert.Contains(t, html, `data-view="receivables"`)
	assert.Contains(t, html, "Accounts Receivable Aging")
	assert.Contains(t, html, `value="2026-01-01"`)
	assert.Contains(t, html, "ERP_API_KEY is not set")
	assert.Regexp(t, `refreshMinutes:\s*5\s*}`, html)
}

func TestNavigation(t *testing.T) {
	items := Navigation()
	require.Len(t, items, len(report.IDs))
	assert.Equal(t, report.IDOverview, items[0].ID)
	assert.Equal(t, "AI Insights", items[len(items)-1].Title)
}

func TestStaticFiles(t *testing.T) {
	for _, name := range []string{"app.js", "style.css"} {
		content, err := fs.ReadFile(Static(), name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, content)
	}
}
