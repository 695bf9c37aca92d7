/*
Package dashboard loads everything one dashboard screen needs: the five ERP
reports fetched in parallel, their normalized views and the overview cards.
*/
package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	tl "github.com/tuumbleweed/tintlog/logger"
	"github.com/tuumbleweed/tintlog/palette"
	"github.com/tuumbleweed/xerr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"erp-dashboard/src/pkg/erp"
	"erp-dashboard/src/pkg/report"
)

// Fetcher is the part of erp.Client the loader uses.
type Fetcher interface {
	Fetch(ctx context.Context, kind erp.Kind, q erp.Query) (*erp.Report, *xerr.Error)
}

// Result of one load. A report that failed is nil in Bundle and has a message in Errors.
type Result struct {
	Query    erp.Query         `json:"query"`
	Bundle   *erp.Bundle       `json:"financialData"`
	Errors   map[string]string `json:"errors"`
	LoadedAt time.Time         `json:"loadedAt"`
}

// View is Result plus what the browser draws.
type View struct {
	*Result
	Reports  map[report.ID]*report.Normalized `json:"reports"`
	Overview []report.Card                    `json:"overview"`
}

type Service struct {
	fetcher     Fetcher
	maxParallel int
	group       singleflight.Group
	now         func() time.Time
}

func NewService(fetcher Fetcher, cfg Config) *Service {
	return &Service{fetcher: fetcher, maxParallel: cfg.MaxParallel, now: time.Now}
}

/*
Load fetches all five reports for q at once. It never fails as a whole:
each report that errors is logged, left nil and recorded in Errors. Callers
asking for the same query while a load is running share its result.
*/
func (s *Service) Load(ctx context.Context, q erp.Query) *Result {
	value, _, shared := s.group.Do(q.CacheKey(), func() (any, error) {
		// the first caller going away must not cancel the others
		return s.load(context.WithoutCancel(ctx), q), nil
	})
	if shared {
		tl.Log(tl.Verbose, palette.Cyan, "Shared in-flight load for '%s'", q.CacheKey())
	}
	return value.(*Result)
}

func (s *Service) load(ctx context.Context, q erp.Query) *Result {
	startTime := s.now()
	tl.Log(tl.Info, palette.Blue, "%s for '%s' (%s to %s)", "Loading dashboard", q.Company, q.StartDate, q.EndDate)

	result := &Result{Query: q, Bundle: &erp.Bundle{}, Errors: map[string]string{}}
	var mu sync.Mutex

	var group errgroup.Group
	if s.maxParallel > 0 {
		group.SetLimit(s.maxParallel)
	}
	for _, kind := range erp.Kinds {
		group.Go(func() error {
			fetched, e := s.fetcher.Fetch(ctx, kind, q)

			mu.Lock()
			defer mu.Unlock()
			if e != nil {
				tl.Log(tl.Warning, palette.Yellow, "Failed to fetch %s data: %s", kind.Label(), e)
				result.Errors[kind.BundleKey()] = fmt.Sprintf("Failed to fetch %s data", kind.Label())
				return nil
			}
			result.Bundle.Set(kind, fetched)
			return nil
		})
	}
	_ = group.Wait() // goroutines only ever return nil

	result.LoadedAt = s.now()
	tl.Log(
		tl.Info1, palette.Green, "%s in %s: %s of %s reports",
		"Loaded dashboard", result.LoadedAt.Sub(startTime), len(erp.Kinds)-len(result.Errors), len(erp.Kinds),
	)
	return result
}

// LoadView is Load followed by normalization of every report.
func (s *Service) LoadView(ctx context.Context, q erp.Query) *View {
	result := s.Load(ctx, q)
	return &View{
		Result:   result,
		Reports:  report.NormalizeAll(result.Bundle, q.Company),
		Overview: report.Overview(result.Bundle),
	}
}

/*
DefaultQuery fills missing dates: the end defaults to today and the start to
Cfg.DefaultRangeMonths before the end.
*/
func DefaultQuery(company, startDate, endDate string, now time.Time) erp.Query {
	if endDate == "" {
		endDate = now.Format(time.DateOnly)
	}
	if startDate == "" {
		end, err := time.Parse(time.DateOnly, endDate)
		if err != nil {
			end = now
		}
		startDate = end.AddDate(0, -Cfg.DefaultRangeMonths, 0).Format(time.DateOnly)
	}
	return erp.Query{Company: company, StartDate: startDate, EndDate: endDate}
}
