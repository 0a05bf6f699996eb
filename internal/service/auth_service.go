package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"socialdash/internal/auth"
	"socialdash/internal/domain"
	"socialdash/internal/model"
	"socialdash/internal/repository"
)

var (
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidRefreshToken is returned when refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")
)

// Session is the result of a successful login.
type Session struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken,omitempty"`
	User         *domain.User `json:"user,omitempty"`
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, email, password, name string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	MockLogin(ctx context.Context, email, name string) (*Session, error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken, accessTokenID string) error
}

type authService struct {
	users      UserService
	userRepo   repository.Store[model.User]
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(users UserService, userRepo repository.Store[model.User], jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) AuthService {
	return &authService{
		users:      users,
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

// Register creates a user with a hashed password.
func (s *authService) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	return s.users.CreateUser(ctx, NewUser{Email: email, Password: password, Name: name, Role: domain.RoleUser})
}

// Login authenticates a user and returns access and refresh tokens.
func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	doc, err := s.userRepo.FindOne(ctx, repository.Where(repository.Eq("email", normalizeEmail(email))))
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(doc.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	u := toUser(doc)
	return s.issue(ctx, &u)
}

// MockLogin signs in by email alone, creating the user on first use. It is
// only routed when the server runs in mock mode.
func (s *authService) MockLogin(ctx context.Context, email, name string) (*Session, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		if strings.TrimSpace(name) == "" {
			name = strings.SplitN(normalizeEmail(email), "@", 2)[0]
		}
		if u, err = s.users.CreateUser(ctx, NewUser{Email: email, Name: name, Role: domain.RoleUser}); err != nil {
			return nil, err
		}
	}
	return s.issue(ctx, u)
}

func (s *authService) issue(ctx context.Context, u *domain.User) (*Session, error) {
	id := auth.Identity{UserID: u.ID, Email: u.Email, Role: string(u.Role)}
	accessToken, err := s.jwtService.GenerateAccessToken(id)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(id)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, id, auth.RefreshTokenExpiry); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &Session{AccessToken: accessToken, RefreshToken: refreshToken, User: u}, nil
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil || claims.ID == "" {
		return "", ErrInvalidRefreshToken
	}

	stored, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil {
		return "", ErrInvalidRefreshToken
	}
	if stored != claims.Identity {
		return "", ErrInvalidRefreshToken
	}

	accessToken, err := s.jwtService.GenerateAccessToken(claims.Identity)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout invalidates a refresh token and, when given, revokes the access
// token the request was made with.
func (s *authService) Logout(ctx context.Context, refreshToken, accessTokenID string) error {
	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return ErrInvalidRefreshToken
	}
	if err := s.tokenStore.DeleteRefreshToken(ctx, tokenID); err != nil {
		return err
	}
	if accessTokenID != "" {
		return s.tokenStore.BlacklistAccessToken(ctx, accessTokenID, auth.AccessTokenExpiry)
	}
	return nil
}
