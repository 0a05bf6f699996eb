package resilient

import (
	"context"

	"socialdash/internal/domain"
	apperrors "socialdash/internal/errors"
	"socialdash/internal/localstore"
	"socialdash/internal/service"
)

// Metrics reads social metrics and follower growth.
type Metrics struct {
	c *Client
}

func (m *Metrics) cache() collection[domain.SocialMetrics] {
	return collection[domain.SocialMetrics]{
		store: m.c.store,
		key:   localstore.KeyMetrics,
		id:    func(v *domain.SocialMetrics) string { return v.ID },
	}
}

// Get returns the current user's metrics matching filter.
func (m *Metrics) Get(ctx context.Context, filter domain.MetricsFilter) ([]domain.SocialMetrics, error) {
	cache := m.cache()
	chain := Chain[[]domain.SocialMetrics]{
		Op: "metrics.get",
		Local: func(ctx context.Context) ([]domain.SocialMetrics, error) {
			cached, err := cache.load(ctx)
			if err != nil {
				return nil, err
			}
			out := []domain.SocialMetrics{}
			for _, rec := range cached {
				if matchMetrics(rec, filter) {
					out = append(out, rec)
				}
			}
			return out, nil
		},
		Mirror: func(ctx context.Context, v []domain.SocialMetrics) error {
			if isZeroMetricsFilter(filter) {
				return cache.replace(ctx, v)
			}
			return cache.merge(ctx, v...)
		},
	}
	if m.c.remote != nil {
		chain.Remote = func(ctx context.Context) ([]domain.SocialMetrics, error) {
			return m.c.remote.ListMetrics(ctx, filter)
		}
	}
	if svc := m.c.direct.Metrics; svc != nil {
		chain.Direct = func(ctx context.Context, userID string) ([]domain.SocialMetrics, error) {
			return svc.GetMetricsByUserID(ctx, userID, filter)
		}
	}
	return Run(ctx, m.c.runner, chain)
}

func isZeroMetricsFilter(f domain.MetricsFilter) bool {
	return f.Platform == "" && f.ProfileID == "" && f.StartDate == nil && f.EndDate == nil
}

func matchMetrics(rec domain.SocialMetrics, f domain.MetricsFilter) bool {
	if f.Platform != "" && rec.Platform != f.Platform {
		return false
	}
	if f.ProfileID != "" && (rec.ProfileID == nil || *rec.ProfileID != f.ProfileID) {
		return false
	}
	if f.StartDate != nil && rec.Date.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && rec.Date.After(*f.EndDate) {
		return false
	}
	return true
}

// FollowerGrowth returns follower counts over the last days days. An empty
// platform covers every platform.
func (m *Metrics) FollowerGrowth(ctx context.Context, days int, platform domain.Platform) ([]domain.FollowerGrowthPoint, error) {
	if !service.ValidGrowthWindow(days) {
		return nil, apperrors.Validation("timeRange must be one of %v days", service.GrowthWindows)
	}
	cache := m.cache()
	chain := Chain[[]domain.FollowerGrowthPoint]{
		Op: "metrics.follower_growth",
		Local: func(ctx context.Context) ([]domain.FollowerGrowthPoint, error) {
			cached, err := cache.load(ctx)
			if err != nil {
				return nil, err
			}
			return service.FollowerGrowth(cached, days, platform, m.c.now()), nil
		},
	}
	if m.c.remote != nil {
		chain.Remote = func(ctx context.Context) ([]domain.FollowerGrowthPoint, error) {
			return m.c.remote.FollowerGrowth(ctx, days, platform)
		}
	}
	if svc := m.c.direct.Metrics; svc != nil {
		chain.Direct = func(ctx context.Context, userID string) ([]domain.FollowerGrowthPoint, error) {
			return svc.GetFollowerGrowth(ctx, userID, days, platform)
		}
	}
	return Run(ctx, m.c.runner, chain)
}
