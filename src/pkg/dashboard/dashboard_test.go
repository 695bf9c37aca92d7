package dashboard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuumbleweed/xerr"
	"go.uber.org/goleak"

	"erp-dashboard/src/pkg/erp"
	"erp-dashboard/src/pkg/report"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeFetcher struct {
	calls   atomic.Int32
	failing map[erp.Kind]bool
	gate    chan struct{} // when set, every fetch waits for it to close
}

func (f *fakeFetcher) Fetch(ctx context.Context, kind erp.Kind, q erp.Query) (*erp.Report, *xerr.Error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.failing[kind] {
		return nil, xerr.NewError(errors.New("ERPNext API error: 500"), "fetch", kind)
	}
	return &erp.Report{Kind: kind, Source: erp.SourceQueryReport, Result: []erp.Row{{Cells: []any{"Sales", 100.0, 100.0}}}}, nil
}

func TestLoadAllReports(t *testing.T) {
	fetcher := &fakeFetcher{}
	service := NewService(fetcher, DefaultValueConfig())

	result := service.Load(context.Background(), erp.Query{Company: "Acme", StartDate: "2025-01-01", EndDate: "2025-03-31"})
	require.NotNil(t, result)
	assert.Empty(t, result.Errors)
	for _, kind := range erp.Kinds {
		require.NotNil(t, result.Bundle.Get(kind), kind)
		assert.Equal(t, kind, result.Bundle.Get(kind).Kind)
	}
	assert.Equal(t, int32(5), fetcher.calls.Load())
	assert.False(t, result.LoadedAt.IsZero())
}

func TestLoadNullsOutFailures(t *testing.T) {
	fetcher := &fakeFetcher{failing: map[erp.Kind]bool{erp.KindBalanceSheet: true, erp.KindPayables: true}}
	service := NewService(fetcher, DefaultValueConfig())

	result := service.Load(context.Background(), erp.Query{Company: "Acme"})
	assert.Nil(t, result.Bundle.BalanceSheet)
	assert.Nil(t, result.Bundle.Payables)
	assert.NotNil(t, result.Bundle.ProfitAndLoss)
	assert.Equal(t, map[string]string{
		"balanceSheet": "Failed to fetch Balance Sheet data",
		"payables":     "Failed to fetch payables data",
	}, result.Errors)
}

func TestConcurrentLoadsShareOneFetch(t *testing.T) {
	fetcher := &fakeFetcher{gate: make(chan struct{})}
	service := NewService(fetcher, DefaultValueConfig())
	q := erp.Query{Company: "Acme", StartDate: "2025-01-01", EndDate: "2025-03-31"}

	var wg sync.WaitGroup
	results := make([]*Result, 4)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = service.Load(context.Background(), q)
		}()
	}

	// let every caller join the in-flight load before releasing it
	require.Eventually(t, func() bool { return fetcher.calls.Load() == 5 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(fetcher.gate)
	wg.Wait()

	assert.Equal(t, int32(5), fetcher.calls.Load())
	for _, result := range results[1:] {
		assert.Same(t, results[0], result)
	}
}

func TestCancelledCallerDoesNotCancelLoad(t *testing.T) {
	fetcher := &fakeFetcher{}
	service := NewService(fetcher, DefaultValueConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := service.Load(ctx, erp.Query{Company: "Acme"})
	assert.Empty(t, result.Errors)
}

func TestLoadView(t *testing.T) {
	service := NewService(&fakeFetcher{failing: map[erp.Kind]bool{erp.KindCashFlow: true}}, DefaultValueConfig())
	view := service.LoadView(context.Background(), erp.Query{Company: "Acme"})

	assert.Len(t, view.Reports, 4)
	assert.NotContains(t, view.Reports, report.IDCashFlow)
	assert.Equal(t, "Sales", view.Reports[report.IDPL].Rows[0]["account_name"])
	assert.Len(t, view.Overview, 5)
	assert.Contains(t, view.Errors, "cashFlow")
}

func TestDefaultQuery(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	q := DefaultQuery("Acme", "", "", now)
	assert.Equal(t, erp.Query{Company: "Acme", StartDate: "2025-03-15", EndDate: "2025-06-15"}, q)

	q = DefaultQuery("Acme", "", "2025-01-31", now)
	assert.Equal(t, "2024-10-31", q.StartDate)

	q = DefaultQuery("Acme", "2025-01-01", "2025-02-01", now)
	assert.Equal(t, "2025-01-01", q.StartDate)
}
