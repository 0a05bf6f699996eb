// Package mockdata generates synthetic dashboard data for offline use and
// seeds it into the local cache or the database.
package mockdata

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"socialdash/internal/domain"
	"socialdash/internal/service"
)

// HistoryDays is the length of the daily metrics history of every profile.
const HistoryDays = 90

// Options controls the generated dataset.
type Options struct {
	UserName  string
	UserEmail string
	// Profiles is the number of linked platforms, capped at the number of
	// profile platforms.
	Profiles int
	// Seed makes the dataset reproducible. Zero seeds from the clock.
	Seed uint64
	Now  service.Clock
}

// Dataset is one complete, internally consistent set of dashboard data.
type Dataset struct {
	User        domain.User                `json:"user"`
	Profiles    []domain.SocialProfile     `json:"profiles"`
	Metrics     []domain.SocialMetrics     `json:"metrics"`
	Suggestions []domain.ContentSuggestion `json:"suggestions"`
}

// CalendarEntry is one planned or past post on the content calendar.
type CalendarEntry struct {
	Date      time.Time               `json:"date"`
	Title     string                  `json:"title"`
	Platform  domain.Platform         `json:"platform"`
	MediaType domain.MediaType        `json:"mediaType"`
	Status    domain.SuggestionStatus `json:"status"`
}

// Session owns the mock data of one process. All returns the same dataset
// on every call.
type Session struct {
	opts Options

	once sync.Once
	data *Dataset

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSession returns a Session with opts, filling defaults.
func NewSession(opts Options) *Session {
	if opts.UserName == "" {
		opts.UserName = "Demo User"
	}
	if opts.UserEmail == "" {
		opts.UserEmail = "demo@socialdash.local"
	}
	if opts.Profiles <= 0 {
		opts.Profiles = 4
	}
	if opts.Profiles > len(domain.ProfilePlatforms) {
		opts.Profiles = len(domain.ProfilePlatforms)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(opts.Now().UnixNano())
	}
	return &Session{
		opts: opts,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// All returns the session dataset, generating it on first use.
func (s *Session) All() *Dataset {
	s.once.Do(func() {
		s.data = s.generate()
	})
	return s.data
}

func (s *Session) generate() *Dataset {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.Now().UTC()
	user := domain.User{
		ID:        uuid.NewString(),
		Name:      s.opts.UserName,
		Email:     strings.ToLower(s.opts.UserEmail),
		Role:      domain.RoleUser,
		Accounts:  []domain.LinkedAccount{},
		CreatedAt: now.AddDate(0, 0, -HistoryDays),
		UpdatedAt: now,
	}
	handle := strings.ToLower(strings.ReplaceAll(s.opts.UserName, " ", ""))

	ds := &Dataset{User: user}
	for _, platform := range domain.ProfilePlatforms[:s.opts.Profiles] {
		daily := s.history(now)
		latest := daily[len(daily)-1]
		profile := domain.SocialProfile{
			ID:          uuid.NewString(),
			UserID:      user.ID,
			Platform:    platform,
			Username:    handle,
			ProfileURL:  profileURL(platform, handle),
			Connected:   true,
			Followers:   latest.Followers,
			LastUpdated: now,
		}
		ds.Profiles = append(ds.Profiles, profile)
		ds.Metrics = append(ds.Metrics, s.aggregate(user.ID, profile, daily))
	}
	ds.Suggestions = s.suggestions(user.ID, now)
	return ds
}

// history builds HistoryDays of daily metrics ending today. Followers never
// decrease.
func (s *Session) history(now time.Time) []domain.DailyMetric {
	today := now.Truncate(24 * time.Hour)
	followers := int64(500 + s.rng.IntN(9500))
	daily := make([]domain.DailyMetric, 0, HistoryDays)
	for i := HistoryDays - 1; i >= 0; i-- {
		followers += int64(s.rng.IntN(40))
		impressions := int64(1000 + s.rng.IntN(9000))
		reach := impressions * int64(50+s.rng.IntN(50)) / 100
		rate := s.engagementRate()
		interactions := decimal.NewFromFloat(rate).Mul(decimal.NewFromInt(impressions)).IntPart()
		likes := interactions * 8 / 10
		comments := interactions / 10
		daily = append(daily, domain.DailyMetric{
			Date:           today.AddDate(0, 0, -i),
			Followers:      followers,
			Likes:          likes,
			Comments:       comments,
			Shares:         interactions - likes - comments,
			Impressions:    impressions,
			Reach:          reach,
			EngagementRate: rate,
		})
	}
	return daily
}

// engagementRate is uniform in [0, 0.1).
func (s *Session) engagementRate() float64 {
	rate := decimal.NewFromFloat(s.rng.Float64() * 0.1).Truncate(4)
	return rate.InexactFloat64()
}

func (s *Session) aggregate(userID string, profile domain.SocialProfile, daily []domain.DailyMetric) domain.SocialMetrics {
	latest := daily[len(daily)-1]
	m := domain.SocialMetrics{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProfileID: &profile.ID,
		Platform:  profile.Platform,
		Date:      latest.Date,
		Followers: latest.Followers,
		Following: int64(50 + s.rng.IntN(450)),
		Posts:     int64(20 + s.rng.IntN(300)),
		Daily:     daily,
	}
	for _, d := range daily {
		m.Likes += d.Likes
		m.Comments += d.Comments
		m.Shares += d.Shares
		m.Impressions += d.Impressions
		m.Reach += d.Reach
	}
	m.EngagementRate = service.EngagementRate(m.Likes, m.Comments, m.Shares, m.Impressions)
	return m
}

type suggestionTemplate struct {
	title     string
	content   string
	platform  domain.Platform
	media     domain.MediaType
	tags      []string
	score     int
	status    domain.SuggestionStatus
	dayOffset int
}

var catalog = []suggestionTemplate{
	{"Behind the scenes", "Take followers through a day at the studio.", domain.PlatformInstagram, domain.MediaStory, []string{"bts", "studio"}, 86, domain.StatusPending, 1},
	{"Weekly tips thread", "Five quick tips your audience can use today.", domain.PlatformTwitter, domain.MediaText, []string{"tips", "thread"}, 78, domain.StatusApproved, 2},
	{"Customer spotlight", "Share a short story from a happy customer.", domain.PlatformFacebook, domain.MediaImage, []string{"community", "customers"}, 72, domain.StatusPublished, -3},
	{"Industry insight", "Post a chart on this quarter's trends with your take.", domain.PlatformLinkedIn, domain.MediaCarousel, []string{"insights", "industry"}, 91, domain.StatusPending, 3},
	{"Quick tutorial", "A 30 second how-to on your most asked question.", domain.PlatformTikTok, domain.MediaVideo, []string{"howto", "tutorial"}, 88, domain.StatusApproved, 4},
	{"Product deep dive", "Walk through one feature end to end.", domain.PlatformYouTube, domain.MediaVideo, []string{"product", "demo"}, 67, domain.StatusRejected, 5},
	{"Poll your audience", "Ask followers which topic to cover next.", domain.PlatformAll, domain.MediaText, []string{"poll", "engagement"}, 59, domain.StatusPending, 6},
	{"Milestone celebration", "Thank followers for reaching a new milestone.", domain.PlatformAll, domain.MediaImage, []string{"milestone", "thanks"}, 81, domain.StatusPublished, -7},
}

func (s *Session) suggestions(userID string, now time.Time) []domain.ContentSuggestion {
	out := make([]domain.ContentSuggestion, 0, len(catalog))
	for _, tpl := range catalog {
		best := bestTime(now, tpl.dayOffset, 9+s.rng.IntN(12))
		sg := domain.ContentSuggestion{
			ID:               uuid.NewString(),
			UserID:           userID,
			Title:            tpl.title,
			Content:          tpl.content,
			Platform:         tpl.platform,
			MediaType:        tpl.media,
			Tags:             service.NormalizeTags(tpl.tags),
			BestTimeToPost:   &best,
			AIGeneratedScore: tpl.score,
			Status:           tpl.status,
			CreatedAt:        now.AddDate(0, 0, -10),
			UpdatedAt:        now,
		}
		if tpl.status == domain.StatusPublished {
			published := best
			impressions := int64(2000 + s.rng.IntN(18000))
			sg.Engagement = &domain.Engagement{
				Likes:       impressions * int64(s.rng.IntN(8)) / 100,
				Comments:    impressions * int64(s.rng.IntN(2)) / 100,
				Shares:      impressions * int64(s.rng.IntN(2)) / 100,
				Impressions: impressions,
				PublishedAt: &published,
			}
		}
		out = append(out, sg)
	}
	return out
}

// Calendar lays out catalog posts over every day of month. It is generated
// afresh on each call.
func (s *Session) Calendar(month time.Month, year int) ([]CalendarEntry, error) {
	if month < time.January || month > time.December {
		return nil, fmt.Errorf("month %d out of range", month)
	}
	if year < 1970 || year > 9999 {
		return nil, fmt.Errorf("year %d out of range", year)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.opts.Now().UTC()
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	entries := []CalendarEntry{}
	for day := first; day.Month() == month; day = day.AddDate(0, 0, 1) {
		for n := s.rng.IntN(3); n > 0; n-- {
			tpl := catalog[s.rng.IntN(len(catalog))]
			at := day.Add(time.Duration(9+s.rng.IntN(12)) * time.Hour)
			status := domain.StatusApproved
			if at.Before(now) {
				status = domain.StatusPublished
			}
			entries = append(entries, CalendarEntry{
				Date:      at,
				Title:     tpl.title,
				Platform:  tpl.platform,
				MediaType: tpl.media,
				Status:    status,
			})
		}
	}
	return entries, nil
}

func bestTime(now time.Time, dayOffset, hour int) time.Time {
	d := now.AddDate(0, 0, dayOffset)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, time.UTC)
}

func profileURL(platform domain.Platform, handle string) string {
	switch platform {
	case domain.PlatformTwitter:
		return "https://twitter.com/" + handle
	case domain.PlatformFacebook:
		return "https://facebook.com/" + handle
	case domain.PlatformLinkedIn:
		return "https://linkedin.com/in/" + handle
	case domain.PlatformTikTok:
		return "https://tiktok.com/@" + handle
	case domain.PlatformYouTube:
		return "https://youtube.com/@" + handle
	default:
		return "https://instagram.com/" + handle
	}
}
