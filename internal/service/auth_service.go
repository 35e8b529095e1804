package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pigmemento/internal/models"
	"pigmemento/internal/repository"
	"pigmemento/internal/security"
	"pigmemento/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrTokenNotFound      = errors.New("refresh token not found")
	ErrTokenExpired       = errors.New("refresh token expired or revoked")
)

// TokenPair is what a successful login or refresh hands back
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService handles registration, login and the refresh token lifecycle
type AuthService struct {
	userRepo        *repository.UserRepository
	tokenRepo       *repository.TokenRepository
	tokens          *security.TokenManager
	refreshTokenTTL time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, tokenRepo *repository.TokenRepository, tokens *security.TokenManager, refreshTokenTTL time.Duration) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		tokenRepo:       tokenRepo,
		tokens:          tokens,
		refreshTokenTTL: refreshTokenTTL,
	}
}

// Register creates a new user account. The first account on a fresh
// database becomes the admin.
func (s *AuthService) Register(email, password, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	count, err := s.userRepo.CountUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	role := models.RoleUser
	if count == 0 {
		role = models.RoleAdmin
	}

	return s.userRepo.CreateUser(email, passwordHash, name, role)
}

// Login verifies credentials and issues a fresh token pair
func (s *AuthService) Login(email, password string) (*models.User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !security.CheckPassword(user.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	pair, err := s.issueTokens(user, now)
	if err != nil {
		return nil, nil, err
	}
	if err := s.userRepo.UpdateLastLogin(user.ID, now); err != nil {
		return nil, nil, err
	}
	user.LastLoginAt = &now

	return user, pair, nil
}

// Refresh rotates a refresh token: the old token is revoked and a new
// pair is issued, so a stolen token is only good once.
func (s *AuthService) Refresh(refreshToken string) (*TokenPair, error) {
	stored, err := s.tokenRepo.GetToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("failed to get refresh token: %w", err)
	}
	if stored == nil {
		return nil, ErrTokenNotFound
	}

	now := time.Now().UTC()
	if !stored.Active(now) {
		return nil, ErrTokenExpired
	}

	user, err := s.userRepo.GetUserByID(stored.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrTokenExpired
	}

	if err := s.tokenRepo.RevokeToken(refreshToken, now); err != nil {
		return nil, err
	}
	return s.issueTokens(user, now)
}

// Logout revokes a refresh token. Unknown tokens are not an error.
func (s *AuthService) Logout(refreshToken string) error {
	return s.tokenRepo.RevokeToken(refreshToken, time.Now().UTC())
}

// GetUser loads an account by ID. Returns nil, nil when absent.
func (s *AuthService) GetUser(id uuid.UUID) (*models.User, error) {
	return s.userRepo.GetUserByID(id)
}

// CleanupExpiredTokens removes refresh tokens past their expiry
func (s *AuthService) CleanupExpiredTokens() (int64, error) {
	return s.tokenRepo.DeleteExpiredTokens(time.Now().UTC())
}

func (s *AuthService) issueTokens(user *models.User, now time.Time) (*TokenPair, error) {
	access, err := s.tokens.Issue(user.ID, user.Role, now)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}

	refresh, err := security.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	err = s.tokenRepo.CreateToken(&models.RefreshToken{
		Token:     refresh,
		UserID:    user.ID,
		ExpiresAt: now.Add(s.refreshTokenTTL),
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
