package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"socialdash/internal/domain"
	apperrors "socialdash/internal/errors"
	"socialdash/internal/model"
	"socialdash/internal/repository"
)

// GrowthWindows are the accepted follower-growth ranges, in days.
var GrowthWindows = []int{7, 30, 90, 365}

// MetricsService reads and records social metrics.
type MetricsService interface {
	GetMetricsByUserID(ctx context.Context, userID string, filter domain.MetricsFilter) ([]domain.SocialMetrics, error)
	GetFollowerGrowth(ctx context.Context, userID string, days int, platform domain.Platform) ([]domain.FollowerGrowthPoint, error)
	UpsertMetrics(ctx context.Context, in MetricsInput) (*domain.SocialMetrics, error)
	AppendDailySnapshot(ctx context.Context, userID string, platform domain.Platform, snap domain.DailyMetric) (*domain.SocialMetrics, error)
}

// MetricsInput is one refresh of the aggregate counters for (UserID, Platform).
// Date defaults to now.
type MetricsInput struct {
	UserID      string          `json:"userId"`
	ProfileID   *string         `json:"profileId,omitempty"`
	Platform    domain.Platform `json:"platform"`
	Date        time.Time       `json:"date"`
	Followers   int64           `json:"followers"`
	Following   int64           `json:"following"`
	Posts       int64           `json:"posts"`
	Likes       int64           `json:"likes"`
	Comments    int64           `json:"comments"`
	Shares      int64           `json:"shares"`
	Impressions int64           `json:"impressions"`
	Reach       int64           `json:"reach"`
}

type metricsService struct {
	store repository.Store[model.SocialMetrics]
	now   Clock
}

// NewMetricsService builds a MetricsService over store.
func NewMetricsService(store repository.Store[model.SocialMetrics], now Clock) MetricsService {
	return &metricsService{store: store, now: orNow(now)}
}

func (s *metricsService) GetMetricsByUserID(ctx context.Context, userID string, filter domain.MetricsFilter) ([]domain.SocialMetrics, error) {
	uid, err := parseID("userId", userID)
	if err != nil {
		return nil, err
	}
	q := repository.Where(repository.Eq("user_id", uid.String()))
	if filter.Platform != "" {
		q = q.And(repository.Eq("platform", string(filter.Platform)))
	}
	if filter.ProfileID != "" {
		pid, err := parseID("profileId", filter.ProfileID)
		if err != nil {
			return nil, err
		}
		q = q.And(repository.Eq("profile_id", pid.String()))
	}
	if filter.StartDate != nil {
		q = q.And(repository.Gte("date", *filter.StartDate))
	}
	if filter.EndDate != nil {
		q = q.And(repository.Lte("date", *filter.EndDate))
	}

	docs, err := s.store.Find(ctx, q.Order("date", true))
	if err != nil {
		return nil, err
	}
	out := make([]domain.SocialMetrics, 0, len(docs))
	for i := range docs {
		out = append(out, toMetrics(&docs[i]))
	}
	return out, nil
}

// GetFollowerGrowth returns follower counts dated within [now-days, now],
// both ends inclusive, ordered by date.
func (s *metricsService) GetFollowerGrowth(ctx context.Context, userID string, days int, platform domain.Platform) ([]domain.FollowerGrowthPoint, error) {
	if !ValidGrowthWindow(days) {
		return nil, apperrors.Validation("timeRange must be one of %v days", GrowthWindows)
	}
	uid, err := parseID("userId", userID)
	if err != nil {
		return nil, err
	}
	q := repository.Where(repository.Eq("user_id", uid.String()))
	if platform != "" {
		q = q.And(repository.Eq("platform", string(platform)))
	}
	docs, err := s.store.Find(ctx, q)
	if err != nil {
		return nil, err
	}

	records := make([]domain.SocialMetrics, 0, len(docs))
	for i := range docs {
		records = append(records, toMetrics(&docs[i]))
	}
	return FollowerGrowth(records, days, platform, s.now()), nil
}

// FollowerGrowth projects the follower counts of records dated within
// [now-days, now] onto growth points ordered by date. Records with a daily
// history contribute each day; others contribute their own date.
func FollowerGrowth(records []domain.SocialMetrics, days int, platform domain.Platform, now time.Time) []domain.FollowerGrowthPoint {
	from := now.AddDate(0, 0, -days)
	inWindow := func(t time.Time) bool {
		return !t.Before(from) && !t.After(now)
	}

	points := []domain.FollowerGrowthPoint{}
	for _, m := range records {
		if platform != "" && m.Platform != platform {
			continue
		}
		if len(m.Daily) == 0 {
			if inWindow(m.Date) {
				points = append(points, domain.FollowerGrowthPoint{Date: m.Date, Followers: m.Followers, Platform: m.Platform})
			}
			continue
		}
		for _, d := range m.Daily {
			if inWindow(d.Date) {
				points = append(points, domain.FollowerGrowthPoint{Date: d.Date, Followers: d.Followers, Platform: m.Platform})
			}
		}
	}
	sort.SliceStable(points, func(i, j int) bool {
		if points[i].Date.Equal(points[j].Date) {
			return points[i].Platform < points[j].Platform
		}
		return points[i].Date.Before(points[j].Date)
	})
	return points
}

// UpsertMetrics creates the aggregate record for (userId, platform) or
// overwrites its counters. Daily history is kept.
func (s *metricsService) UpsertMetrics(ctx context.Context, in MetricsInput) (*domain.SocialMetrics, error) {
	if !in.Platform.IsProfilePlatform() {
		return nil, apperrors.Validation("unsupported platform %q", in.Platform)
	}
	for name, v := range map[string]int64{
		"followers": in.Followers, "following": in.Following, "posts": in.Posts,
		"likes": in.Likes, "comments": in.Comments, "shares": in.Shares,
		"impressions": in.Impressions, "reach": in.Reach,
	} {
		if v < 0 {
			return nil, apperrors.Validation("%s must not be negative", name)
		}
	}
	uid, err := parseID("userId", in.UserID)
	if err != nil {
		return nil, err
	}
	if in.Date.IsZero() {
		in.Date = s.now()
	}

	doc, err := s.store.FindOne(ctx, repository.Where(
		repository.Eq("user_id", uid.String()),
		repository.Eq("platform", string(in.Platform)),
	))
	if err != nil {
		return nil, err
	}
	m := domain.SocialMetrics{
		UserID:         in.UserID,
		ProfileID:      in.ProfileID,
		Platform:       in.Platform,
		Date:           in.Date,
		Followers:      in.Followers,
		Following:      in.Following,
		Posts:          in.Posts,
		Likes:          in.Likes,
		Comments:       in.Comments,
		Shares:         in.Shares,
		Impressions:    in.Impressions,
		Reach:          in.Reach,
		EngagementRate: EngagementRate(in.Likes, in.Comments, in.Shares, in.Impressions),
	}
	if doc != nil {
		m.ID = doc.ID.String()
		m.Daily = toDailyMetrics(doc.Daily)
		if m.ProfileID == nil && doc.ProfileID != nil {
			pid := doc.ProfileID.String()
			m.ProfileID = &pid
		}
	}
	next, err := fromMetrics(m)
	if err != nil {
		return nil, err
	}

	if doc == nil {
		err = s.store.Create(ctx, next)
	} else {
		next.CreatedAt = doc.CreatedAt
		err = s.store.Save(ctx, next)
	}
	if err != nil {
		return nil, err
	}
	out := toMetrics(next)
	return &out, nil
}

// AppendDailySnapshot adds one day to the record's history. Dates must be
// strictly increasing.
func (s *metricsService) AppendDailySnapshot(ctx context.Context, userID string, platform domain.Platform, snap domain.DailyMetric) (*domain.SocialMetrics, error) {
	uid, err := parseID("userId", userID)
	if err != nil {
		return nil, err
	}
	if snap.Date.IsZero() {
		return nil, apperrors.Validation("date is required")
	}
	doc, err := s.store.FindOne(ctx, repository.Where(
		repository.Eq("user_id", uid.String()),
		repository.Eq("platform", string(platform)),
	))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: no %s metrics for user", apperrors.ErrNotFound, platform)
	}
	if n := len(doc.Daily); n > 0 && !snap.Date.After(doc.Daily[n-1].Date) {
		return nil, apperrors.Validation("snapshot date %s is not after %s",
			snap.Date.Format(time.DateOnly), doc.Daily[n-1].Date.Format(time.DateOnly))
	}
	if snap.EngagementRate == 0 {
		snap.EngagementRate = EngagementRate(snap.Likes, snap.Comments, snap.Shares, snap.Impressions)
	}
	doc.Daily = append(doc.Daily, fromDailyMetric(snap))
	if err := s.store.Save(ctx, doc); err != nil {
		return nil, err
	}
	out := toMetrics(doc)
	return &out, nil
}

// EngagementRate is (likes+comments+shares)/impressions rounded to four
// places, or zero without impressions.
func EngagementRate(likes, comments, shares, impressions int64) float64 {
	if impressions <= 0 {
		return 0
	}
	interactions := decimal.NewFromInt(likes + comments + shares)
	return interactions.Div(decimal.NewFromInt(impressions)).Round(4).InexactFloat64()
}

// ValidGrowthWindow reports whether days is one of GrowthWindows.
func ValidGrowthWindow(days int) bool {
	for _, w := range GrowthWindows {
		if days == w {
			return true
		}
	}
	return false
}

func toMetrics(doc *model.SocialMetrics) domain.SocialMetrics {
	m := domain.SocialMetrics{
		ID:             doc.ID.String(),
		UserID:         doc.UserID.String(),
		Platform:       domain.Platform(doc.Platform),
		Date:           doc.Date,
		Followers:      doc.Followers,
		Following:      doc.Following,
		Posts:          doc.Posts,
		Likes:          doc.Likes,
		Comments:       doc.Comments,
		Shares:         doc.Shares,
		Impressions:    doc.Impressions,
		Reach:          doc.Reach,
		EngagementRate: doc.EngagementRate,
		Daily:          toDailyMetrics(doc.Daily),
	}
	if doc.ProfileID != nil {
		pid := doc.ProfileID.String()
		m.ProfileID = &pid
	}
	return m
}

func fromMetrics(m domain.SocialMetrics) (*model.SocialMetrics, error) {
	uid, err := parseID("userId", m.UserID)
	if err != nil {
		return nil, err
	}
	doc := &model.SocialMetrics{
		UserID:         uid,
		Platform:       string(m.Platform),
		Date:           m.Date,
		Followers:      m.Followers,
		Following:      m.Following,
		Posts:          m.Posts,
		Likes:          m.Likes,
		Comments:       m.Comments,
		Shares:         m.Shares,
		Impressions:    m.Impressions,
		Reach:          m.Reach,
		EngagementRate: m.EngagementRate,
	}
	for _, d := range m.Daily {
		doc.Daily = append(doc.Daily, fromDailyMetric(d))
	}
	if m.ID != "" {
		if doc.ID, err = uuid.Parse(m.ID); err != nil {
			return nil, fmt.Errorf("%w: id %q", apperrors.ErrInvalidID, m.ID)
		}
	}
	if m.ProfileID != nil && *m.ProfileID != "" {
		pid, err := parseID("profileId", *m.ProfileID)
		if err != nil {
			return nil, err
		}
		doc.ProfileID = &pid
	}
	return doc, nil
}

func toDailyMetrics(in []model.DailySnapshot) []domain.DailyMetric {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.DailyMetric, len(in))
	for i, d := range in {
		out[i] = domain.DailyMetric{
			Date:           d.Date,
			Followers:      d.Followers,
			Likes:          d.Likes,
			Comments:       d.Comments,
			Shares:         d.Shares,
			Impressions:    d.Impressions,
			Reach:          d.Reach,
			EngagementRate: d.EngagementRate,
		}
	}
	return out
}

func fromDailyMetric(d domain.DailyMetric) model.DailySnapshot {
	return model.DailySnapshot{
		Date:           d.Date,
		Followers:      d.Followers,
		Likes:          d.Likes,
		Comments:       d.Comments,
		Shares:         d.Shares,
		Impressions:    d.Impressions,
		Reach:          d.Reach,
		EngagementRate: d.EngagementRate,
	}
}
