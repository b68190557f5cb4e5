package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/laxmi-pos/laxmi-pos/internal/inventory"
	"github.com/laxmi-pos/laxmi-pos/internal/shared"
)

// RepositoryPort abstracts the aggregate queries.
type RepositoryPort interface {
	SalesBetween(ctx context.Context, from, to time.Time) (SalesWindow, error)
	Counts(ctx context.Context) (Counts, error)
}

// StockPort lists SKUs needing replenishment.
type StockPort interface {
	ListLowStock(ctx context.Context) ([]inventory.RecordView, error)
}

// TokenPort lists tokens by activity.
type TokenPort interface {
	ListTokensWithHoldings(ctx context.Context) ([]string, error)
	ListEmptyAssigned(ctx context.Context) ([]string, error)
}

// Cache stores rendered summaries.
type Cache interface {
	BuildKey(ctx context.Context, parts ...string) (string, error)
	FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error
	Bump(ctx context.Context) error
}

// Service assembles dashboard data.
type Service struct {
	repo   RepositoryPort
	stock  StockPort
	tokens TokenPort
	cache  Cache
	loc    *time.Location
}

// NewService builds Service. cache may be nil.
func NewService(repo RepositoryPort, stock StockPort, tokens TokenPort, cache Cache, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, stock: stock, tokens: tokens, cache: cache, loc: loc}
}

// Summary returns the dashboard snapshot for the day containing now.
func (s *Service) Summary(ctx context.Context, now time.Time) (Summary, error) {
	if s.cache == nil {
		return s.compute(ctx, now)
	}
	key, err := s.cache.BuildKey(ctx, "summary", now.In(s.loc).Format("2006-01-02"))
	if err != nil {
		return s.compute(ctx, now)
	}
	var out Summary
	err = s.cache.FetchJSON(ctx, key, &out, func(ctx context.Context) (any, error) {
		return s.compute(ctx, now)
	})
	if err != nil {
		return s.compute(ctx, now)
	}
	return out, nil
}

// Refresh drops cached summaries and rebuilds the one for now.
func (s *Service) Refresh(ctx context.Context, now time.Time) (Summary, error) {
	if s.cache != nil {
		if err := s.cache.Bump(ctx); err != nil {
			return Summary{}, err
		}
	}
	return s.Summary(ctx, now)
}

func (s *Service) compute(ctx context.Context, now time.Time) (Summary, error) {
	todayStart, tomorrow := shared.DayRange(now, s.loc)
	out := Summary{AsOf: now.UTC()}

	windows := []struct {
		dest *SalesWindow
		from time.Time
		to   time.Time
	}{
		{&out.Today, todayStart, tomorrow},
		{&out.Yesterday, todayStart.AddDate(0, 0, -1), todayStart},
		{&out.Last7Days, todayStart.AddDate(0, 0, -7), tomorrow},
		{&out.Last30Days, todayStart.AddDate(0, 0, -30), tomorrow},
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, w := range windows {
		g.Go(func() error {
			sales, err := s.repo.SalesBetween(ctx, w.from, w.to)
			if err != nil {
				return err
			}
			*w.dest = sales
			return nil
		})
	}
	g.Go(func() error {
		counts, err := s.repo.Counts(ctx)
		if err != nil {
			return err
		}
		out.Counts = counts
		return nil
	})
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}
	return out, nil
}

// LowStock lists SKUs at or below their threshold.
func (s *Service) LowStock(ctx context.Context) ([]inventory.RecordView, error) {
	return s.stock.ListLowStock(ctx)
}

// PendingTokens lists tokens holding products awaiting billing.
func (s *Service) PendingTokens(ctx context.Context) ([]string, error) {
	return s.tokens.ListTokensWithHoldings(ctx)
}

// EmptyTokens lists assigned tokens that hold nothing.
func (s *Service) EmptyTokens(ctx context.Context) ([]string, error) {
	return s.tokens.ListEmptyAssigned(ctx)
}
