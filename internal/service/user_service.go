package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"socialdash/internal/cache"
	"socialdash/internal/domain"
	apperrors "socialdash/internal/errors"
	"socialdash/internal/model"
	"socialdash/internal/repository"
)

const (
	userCacheTTL = 5 * time.Minute
	bcryptCost   = 10
)

// UserService exposes user operations. Returned users never carry the
// password hash.
type UserService interface {
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
	CreateUser(ctx context.Context, in NewUser) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, patch UserPatch) (*domain.User, error)
	AddUserAccount(ctx context.Context, id string, account domain.LinkedAccount) (*domain.User, error)
}

// NewUser is the input of CreateUser. Password may be empty for users
// created by mock login.
type NewUser struct {
	Name     string
	Email    string
	Image    *string
	Password string
	Role     domain.Role
}

// UserPatch lists the fields a user may change on their own profile.
type UserPatch struct {
	Name  *string `json:"name,omitempty"`
	Image *string `json:"image,omitempty"`
}

type userService struct {
	repo  repository.Store[model.User]
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.Store[model.User], cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) cacheKey(id string) string {
	return fmt.Sprintf("user:%s", id)
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	doc, err := s.repo.FindOne(ctx, repository.Where(repository.Eq("email", normalizeEmail(email))))
	if err != nil || doc == nil {
		return nil, err
	}
	u := toUser(doc)
	return &u, nil
}

func (s *userService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached domain.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	doc, err := s.repo.FindByID(ctx, id)
	if err != nil || doc == nil {
		return nil, err
	}
	u := toUser(doc)
	if payload, err := json.Marshal(u); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return &u, nil
}

func (s *userService) CreateUser(ctx context.Context, in NewUser) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.Validation("a valid email is required")
	}
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, apperrors.Validation("unknown role %q", role)
	}

	existing, err := s.repo.FindOne(ctx, repository.Where(repository.Eq("email", email)))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: email %s is taken", apperrors.ErrDuplicate, email)
	}

	doc, err := fromUser(domain.User{Name: name, Email: email, Image: in.Image, Role: role})
	if err != nil {
		return nil, err
	}
	if in.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		doc.PasswordHash = string(hashed)
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, err
	}
	u := toUser(doc)
	return &u, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id string, patch UserPatch) (*domain.User, error) {
	values := map[string]interface{}{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, apperrors.Validation("name must not be empty")
		}
		values["name"] = name
	}
	if patch.Image != nil {
		values["image"] = *patch.Image
	}
	doc, err := s.repo.UpdateByID(ctx, id, values)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.ErrNotFound
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	u := toUser(doc)
	return &u, nil
}

// AddUserAccount links a provider account, replacing an earlier link with the
// same provider and provider account id. The user document is saved whole.
func (s *userService) AddUserAccount(ctx context.Context, id string, account domain.LinkedAccount) (*domain.User, error) {
	if account.Provider == "" || account.ProviderAccountID == "" {
		return nil, apperrors.Validation("provider and providerAccountId are required")
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.ErrNotFound
	}

	linked := model.LinkedAccount{
		Provider:          account.Provider,
		ProviderAccountID: account.ProviderAccountID,
		AccessToken:       account.AccessToken,
		RefreshToken:      account.RefreshToken,
		ExpiresAt:         account.ExpiresAt,
	}
	replaced := false
	for i, a := range doc.Accounts {
		if a.Provider == linked.Provider && a.ProviderAccountID == linked.ProviderAccountID {
			doc.Accounts[i] = linked
			replaced = true
		}
	}
	if !replaced {
		doc.Accounts = append(doc.Accounts, linked)
	}
	if err := s.repo.Save(ctx, doc); err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	u := toUser(doc)
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUser(doc *model.User) domain.User {
	u := domain.User{
		ID:        doc.ID.String(),
		Name:      doc.Name,
		Email:     doc.Email,
		Image:     doc.Image,
		Role:      domain.Role(doc.Role),
		Accounts:  make([]domain.LinkedAccount, 0, len(doc.Accounts)),
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}
	for _, a := range doc.Accounts {
		u.Accounts = append(u.Accounts, domain.LinkedAccount{
			Provider:          a.Provider,
			ProviderAccountID: a.ProviderAccountID,
			AccessToken:       a.AccessToken,
			RefreshToken:      a.RefreshToken,
			ExpiresAt:         a.ExpiresAt,
		})
	}
	return u
}

func fromUser(u domain.User) (*model.User, error) {
	doc := &model.User{
		Name:  u.Name,
		Email: normalizeEmail(u.Email),
		Image: u.Image,
		Role:  string(u.Role),
	}
	for _, a := range u.Accounts {
		doc.Accounts = append(doc.Accounts, model.LinkedAccount{
			Provider:          a.Provider,
			ProviderAccountID: a.ProviderAccountID,
			AccessToken:       a.AccessToken,
			RefreshToken:      a.RefreshToken,
			ExpiresAt:         a.ExpiresAt,
		})
	}
	if u.ID != "" {
		id, err := uuid.Parse(u.ID)
		if err != nil {
			return nil, fmt.Errorf("%w: id %q", apperrors.ErrInvalidID, u.ID)
		}
		doc.ID = id
	}
	return doc, nil
}
