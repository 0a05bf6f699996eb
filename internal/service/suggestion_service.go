package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"socialdash/internal/domain"
	apperrors "socialdash/internal/errors"
	"socialdash/internal/model"
	"socialdash/internal/repository"
)

// SuggestionService manages content suggestions and their review status.
type SuggestionService interface {
	GetSuggestionsByUserID(ctx context.Context, userID string, filter domain.SuggestionFilter) ([]domain.ContentSuggestion, error)
	GetSuggestion(ctx context.Context, id string) (*domain.ContentSuggestion, error)
	AddSuggestion(ctx context.Context, in NewSuggestion) (*domain.ContentSuggestion, error)
	UpdateSuggestion(ctx context.Context, id string, patch SuggestionPatch) (*domain.ContentSuggestion, error)
	UpdateSuggestionStatus(ctx context.Context, id string, status domain.SuggestionStatus) (*domain.ContentSuggestion, error)
	RecordEngagement(ctx context.Context, id string, engagement domain.Engagement) (*domain.ContentSuggestion, error)
	DeleteSuggestion(ctx context.Context, id string) (*domain.ContentSuggestion, error)
}

// NewSuggestion is the input of AddSuggestion. Suggestions always start pending.
type NewSuggestion struct {
	UserID           string            `json:"userId"`
	Title            string            `json:"title"`
	Content          string            `json:"content"`
	Platform         domain.Platform   `json:"platform"`
	MediaType        domain.MediaType  `json:"mediaType"`
	Tags             []string          `json:"tags"`
	BestTimeToPost   *time.Time        `json:"bestTimeToPost,omitempty"`
	AIGeneratedScore int               `json:"aiGeneratedScore"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// SuggestionPatch lists the editable suggestion fields. Status has its own
// operation.
type SuggestionPatch struct {
	Title            *string           `json:"title,omitempty"`
	Content          *string           `json:"content,omitempty"`
	Platform         *domain.Platform  `json:"platform,omitempty"`
	MediaType        *domain.MediaType `json:"mediaType,omitempty"`
	Tags             []string          `json:"tags,omitempty"`
	BestTimeToPost   *time.Time        `json:"bestTimeToPost,omitempty"`
	AIGeneratedScore *int              `json:"aiGeneratedScore,omitempty"`
	Metadata         map[string]string `json:"metadata,omitempty"`
}

// Validate checks the suggestion fields. UserID is left to the service.
func (in NewSuggestion) Validate() error {
	return validateSuggestion(domain.ContentSuggestion{
		Title:            strings.TrimSpace(in.Title),
		Content:          strings.TrimSpace(in.Content),
		Platform:         in.Platform,
		MediaType:        in.MediaType,
		AIGeneratedScore: in.AIGeneratedScore,
	})
}

type suggestionService struct {
	store repository.Store[model.ContentSuggestion]
	now   Clock
}

// NewSuggestionService builds a SuggestionService over store.
func NewSuggestionService(store repository.Store[model.ContentSuggestion], now Clock) SuggestionService {
	return &suggestionService{store: store, now: orNow(now)}
}

func (s *suggestionService) GetSuggestionsByUserID(ctx context.Context, userID string, filter domain.SuggestionFilter) ([]domain.ContentSuggestion, error) {
	uid, err := parseID("userId", userID)
	if err != nil {
		return nil, err
	}
	q := repository.Where(repository.Eq("user_id", uid.String()))
	if filter.Status != "" {
		if !filter.Status.Valid() {
			return nil, apperrors.Validation("unknown status %q", filter.Status)
		}
		q = q.And(repository.Eq("status", string(filter.Status)))
	}
	if filter.Platform != "" {
		q = q.And(repository.Eq("platform", string(filter.Platform)))
	}
	docs, err := s.store.Find(ctx, q.Order("created_at", true))
	if err != nil {
		return nil, err
	}
	out := make([]domain.ContentSuggestion, 0, len(docs))
	for i := range docs {
		out = append(out, toSuggestion(&docs[i]))
	}
	return out, nil
}

func (s *suggestionService) GetSuggestion(ctx context.Context, id string) (*domain.ContentSuggestion, error) {
	doc, err := s.store.FindByID(ctx, id)
	if err != nil || doc == nil {
		return nil, err
	}
	out := toSuggestion(doc)
	return &out, nil
}

func (s *suggestionService) AddSuggestion(ctx context.Context, in NewSuggestion) (*domain.ContentSuggestion, error) {
	sg := domain.ContentSuggestion{
		UserID:           in.UserID,
		Title:            strings.TrimSpace(in.Title),
		Content:          strings.TrimSpace(in.Content),
		Platform:         in.Platform,
		MediaType:        in.MediaType,
		Tags:             NormalizeTags(in.Tags),
		BestTimeToPost:   in.BestTimeToPost,
		AIGeneratedScore: in.AIGeneratedScore,
		Status:           domain.StatusPending,
		Metadata:         in.Metadata,
	}
	if sg.UserID == "" {
		return nil, apperrors.Validation("userId is required")
	}
	if err := validateSuggestion(sg); err != nil {
		return nil, err
	}
	doc, err := fromSuggestion(sg)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, doc); err != nil {
		return nil, err
	}
	out := toSuggestion(doc)
	return &out, nil
}

func (s *suggestionService) UpdateSuggestion(ctx context.Context, id string, patch SuggestionPatch) (*domain.ContentSuggestion, error) {
	doc, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.ErrNotFound
	}
	sg := toSuggestion(doc)
	if patch.Title != nil {
		sg.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Content != nil {
		sg.Content = strings.TrimSpace(*patch.Content)
	}
	if patch.Platform != nil {
		sg.Platform = *patch.Platform
	}
	if patch.MediaType != nil {
		sg.MediaType = *patch.MediaType
	}
	if patch.Tags != nil {
		sg.Tags = NormalizeTags(patch.Tags)
	}
	if patch.BestTimeToPost != nil {
		sg.BestTimeToPost = patch.BestTimeToPost
	}
	if patch.AIGeneratedScore != nil {
		sg.AIGeneratedScore = *patch.AIGeneratedScore
	}
	if patch.Metadata != nil {
		sg.Metadata = patch.Metadata
	}
	if err := validateSuggestion(sg); err != nil {
		return nil, err
	}
	next, err := fromSuggestion(sg)
	if err != nil {
		return nil, err
	}
	next.CreatedAt = doc.CreatedAt
	if err := s.store.Save(ctx, next); err != nil {
		return nil, err
	}
	out := toSuggestion(next)
	return &out, nil
}

// UpdateSuggestionStatus moves a suggestion along pending -> approved|rejected
// and approved -> published. Writing the current status again returns the
// suggestion unchanged.
func (s *suggestionService) UpdateSuggestionStatus(ctx context.Context, id string, status domain.SuggestionStatus) (*domain.ContentSuggestion, error) {
	if !status.Valid() {
		return nil, apperrors.Validation("unknown status %q", status)
	}
	doc, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.ErrNotFound
	}
	current := domain.SuggestionStatus(doc.Status)
	if current == status {
		out := toSuggestion(doc)
		return &out, nil
	}
	if !current.CanTransition(status) {
		return nil, fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, current, status)
	}

	if status == domain.StatusPublished {
		publishedAt := s.now()
		doc.Status = string(status)
		if doc.Engagement == nil {
			doc.Engagement = &model.EngagementOutcome{}
		}
		doc.Engagement.PublishedAt = &publishedAt
		if err := s.store.Save(ctx, doc); err != nil {
			return nil, err
		}
		out := toSuggestion(doc)
		return &out, nil
	}

	updated, err := s.store.UpdateByID(ctx, id, map[string]interface{}{"status": string(status)})
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, apperrors.ErrNotFound
	}
	out := toSuggestion(updated)
	return &out, nil
}

// RecordEngagement stores the outcome of a published suggestion.
func (s *suggestionService) RecordEngagement(ctx context.Context, id string, engagement domain.Engagement) (*domain.ContentSuggestion, error) {
	if engagement.Likes < 0 || engagement.Comments < 0 || engagement.Shares < 0 || engagement.Impressions < 0 {
		return nil, apperrors.Validation("engagement counters must not be negative")
	}
	doc, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.ErrNotFound
	}
	if domain.SuggestionStatus(doc.Status) != domain.StatusPublished {
		return nil, fmt.Errorf("%w: engagement requires a published suggestion, got %s", apperrors.ErrInvalidTransition, doc.Status)
	}
	publishedAt := engagement.PublishedAt
	if publishedAt == nil && doc.Engagement != nil {
		publishedAt = doc.Engagement.PublishedAt
	}
	doc.Engagement = &model.EngagementOutcome{
		Likes:       engagement.Likes,
		Comments:    engagement.Comments,
		Shares:      engagement.Shares,
		Impressions: engagement.Impressions,
		PublishedAt: publishedAt,
	}
	if err := s.store.Save(ctx, doc); err != nil {
		return nil, err
	}
	out := toSuggestion(doc)
	return &out, nil
}

func (s *suggestionService) DeleteSuggestion(ctx context.Context, id string) (*domain.ContentSuggestion, error) {
	doc, err := s.store.DeleteByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.ErrNotFound
	}
	out := toSuggestion(doc)
	return &out, nil
}

// NormalizeTags trims, lowercases, deduplicates and sorts tags.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "#")))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func validateSuggestion(sg domain.ContentSuggestion) error {
	switch {
	case sg.Title == "":
		return apperrors.Validation("title is required")
	case sg.Content == "":
		return apperrors.Validation("content is required")
	case !sg.Platform.IsSuggestionPlatform():
		return apperrors.Validation("unsupported platform %q", sg.Platform)
	case !sg.MediaType.Valid():
		return apperrors.Validation("unsupported mediaType %q", sg.MediaType)
	case sg.AIGeneratedScore < 0 || sg.AIGeneratedScore > 100:
		return apperrors.Validation("aiGeneratedScore must be between 0 and 100, got %d", sg.AIGeneratedScore)
	}
	return nil
}

func toSuggestion(doc *model.ContentSuggestion) domain.ContentSuggestion {
	sg := domain.ContentSuggestion{
		ID:               doc.ID.String(),
		UserID:           doc.UserID.String(),
		Title:            doc.Title,
		Content:          doc.Content,
		Platform:         domain.Platform(doc.Platform),
		MediaType:        domain.MediaType(doc.MediaType),
		Tags:             append([]string{}, doc.Tags...),
		BestTimeToPost:   doc.BestTimeToPost,
		AIGeneratedScore: doc.AIGeneratedScore,
		Status:           domain.SuggestionStatus(doc.Status),
		Metadata:         copyMetadata(doc.Metadata),
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
	if e := doc.Engagement; e != nil {
		sg.Engagement = &domain.Engagement{
			Likes:       e.Likes,
			Comments:    e.Comments,
			Shares:      e.Shares,
			Impressions: e.Impressions,
			PublishedAt: e.PublishedAt,
		}
	}
	return sg
}

func fromSuggestion(sg domain.ContentSuggestion) (*model.ContentSuggestion, error) {
	uid, err := parseID("userId", sg.UserID)
	if err != nil {
		return nil, err
	}
	doc := &model.ContentSuggestion{
		UserID:           uid,
		Title:            sg.Title,
		Content:          sg.Content,
		Platform:         string(sg.Platform),
		MediaType:        string(sg.MediaType),
		Tags:             append([]string{}, sg.Tags...),
		BestTimeToPost:   sg.BestTimeToPost,
		AIGeneratedScore: sg.AIGeneratedScore,
		Status:           string(sg.Status),
		Metadata:         copyMetadata(sg.Metadata),
	}
	if e := sg.Engagement; e != nil {
		doc.Engagement = &model.EngagementOutcome{
			Likes:       e.Likes,
			Comments:    e.Comments,
			Shares:      e.Shares,
			Impressions: e.Impressions,
			PublishedAt: e.PublishedAt,
		}
	}
	if sg.ID != "" {
		if doc.ID, err = uuid.Parse(sg.ID); err != nil {
			return nil, fmt.Errorf("%w: id %q", apperrors.ErrInvalidID, sg.ID)
		}
	}
	return doc, nil
}
