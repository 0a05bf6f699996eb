package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// AccessTokenExpiry is the duration for which access tokens are valid.
	AccessTokenExpiry = 15 * time.Minute
	// RefreshTokenExpiry is the duration for which refresh tokens are valid.
	RefreshTokenExpiry = 7 * 24 * time.Hour
)

// Identity is the authenticated subject carried by every token.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the subject may act on other users' data.
func (i Identity) IsAdmin() bool {
	return i.Role == "admin"
}

// Claims represents JWT claims.
type Claims struct {
	Identity
	jwt.RegisteredClaims
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret []byte
}

// NewJWTService creates a new JWT service with the given secret.
func NewJWTService(secret string) *JWTService {
	return &JWTService{
		secret: []byte(secret),
	}
}

// GenerateAccessToken generates a new access token for the subject.
// Each access token carries its own ID so it can be revoked on logout.
func (s *JWTService) GenerateAccessToken(id Identity) (string, error) {
	return s.sign(id, generateTokenID(), AccessTokenExpiry)
}

// GenerateRefreshToken generates a new refresh token for the subject.
// The refresh token ID is returned separately for storage in Redis.
func (s *JWTService) GenerateRefreshToken(id Identity) (tokenID string, token string, err error) {
	tokenID = generateTokenID()
	token, err = s.sign(id, tokenID, RefreshTokenExpiry)
	return tokenID, token, err
}

func (s *JWTService) sign(id Identity, tokenID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Identity: id,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   id.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ValidateToken validates a JWT token and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})

	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// ExtractTokenID extracts the token ID (JTI) from a token.
func (s *JWTService) ExtractTokenID(tokenString string) (string, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	if claims.ID == "" {
		return "", errors.New("token ID not found")
	}
	return claims.ID, nil
}

// Secret returns the signing key, for the echo JWT middleware.
func (s *JWTService) Secret() []byte {
	return s.secret
}

func generateTokenID() string {
	return uuid.New().String()
}
