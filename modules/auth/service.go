package auth

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/workspace-chat/domain/chat"
	domain "github.com/example/workspace-chat/domain/user"
)

var (
	// ErrInvalidCredentials is returned when login credentials are invalid.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidUsername is returned when the username format is invalid.
	ErrInvalidUsername = errors.New("username must be 3-50 characters of letters, digits, dots, dashes, or underscores")
	// ErrWeakPassword is returned when the password is too weak.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	// ErrPasswordTooLong is returned when the password exceeds bcrypt's 72-byte limit.
	ErrPasswordTooLong = errors.New("password must be at most 72 characters")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]{3,50}$`)

// AuthService handles account registration, login, and token validation.
type AuthService struct {
	repo   *UserRepository
	hasher *PasswordHasher
	jwt    *JWTManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(repo *UserRepository, hasher *PasswordHasher, jwt *JWTManager) *AuthService {
	return &AuthService{
		repo:   repo,
		hasher: hasher,
		jwt:    jwt,
	}
}

// Register creates a new user account. The display name defaults to the
// username when blank.
func (s *AuthService) Register(_ context.Context, username, displayName, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if !usernamePattern.MatchString(username) {
		return nil, ErrInvalidUsername
	}
	if len(password) < 8 {
		return nil, ErrWeakPassword
	}
	if len(password) > 72 {
		return nil, ErrPasswordTooLong
	}

	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = username
	}

	exists, err := s.repo.UsernameExists(username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username existence: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     username,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login authenticates a user and returns an access token.
func (s *AuthService) Login(_ context.Context, username, password string) (*domain.TokenPair, error) {
	user, err := s.repo.FindByUsername(strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.jwt.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return &domain.TokenPair{
		AccessToken: accessToken,
		ExpiresIn:   s.jwt.AccessTokenDuration(),
		TokenType:   "Bearer",
	}, nil
}

// ValidateToken validates an access token and returns the identity claims.
func (s *AuthService) ValidateToken(_ context.Context, token string) (*domain.Claims, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return &domain.Claims{
		UserID:   claims.UserID,
		Username: claims.Username,
	}, nil
}

// Resolve extracts and validates the bearer token from an Authorization
// header value, returning the authenticated username.
func (s *AuthService) Resolve(ctx context.Context, authorization string) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(authorization, prefix) {
		return "", ErrInvalidToken
	}
	claims, err := s.ValidateToken(ctx, strings.TrimPrefix(authorization, prefix))
	if err != nil {
		return "", err
	}
	return claims.Username, nil
}

// FindDisplayNames resolves display names for the given usernames.
func (s *AuthService) FindDisplayNames(_ context.Context, usernames []string) ([]chat.RosterEntry, error) {
	return s.repo.FindDisplayNames(usernames)
}
