package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/storefront/internal/auth"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// GoogleProfiler resolves an OAuth authorization code to the account profile.
type GoogleProfiler interface {
	AuthCodeURL(state string) string
	Profile(ctx context.Context, code string) (auth.GoogleProfile, error)
}

type LoginResult struct {
	User         *domain.User
	AccessToken  string
	RefreshToken string
}

type AuthService struct {
	users  repository.UserRepository
	tokens *auth.TokenManager
	google GoogleProfiler
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, google GoogleProfiler) *AuthService {
	return &AuthService{users: users, tokens: tokens, google: google}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnknownEmail
		}
		return nil, err
	}
	if user.Password == "" || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	return s.issue(user)
}

// Refresh issues a new access token for a valid refresh token. The role is
// read from the stored user, so demotions take effect on refresh.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", fmt.Errorf("%w: refresh token is required", ErrValidation)
	}
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return "", auth.ErrInvalidToken
	}
	id, err := primitive.ObjectIDFromHex(claims.ID)
	if err != nil {
		return "", auth.ErrInvalidToken
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", auth.ErrInvalidToken
		}
		return "", err
	}

	access, err := s.tokens.IssueAccess(user.Identity())
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenIssue, err)
	}
	return access, nil
}

func (s *AuthService) DecodeToken(token string) (*auth.Claims, error) {
	return s.tokens.ParseAccess(strings.TrimSpace(token))
}

func (s *AuthService) GoogleAuthURL(state string) string {
	return s.google.AuthCodeURL(state)
}

// GoogleLogin signs in the Google account behind code, creating a GOOGLE
// user on first login.
func (s *AuthService) GoogleLogin(ctx context.Context, code string) (*LoginResult, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: authorization code is required", ErrValidation)
	}
	profile, err := s.google.Profile(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGoogleLogin, err)
	}
	if profile.Email == "" {
		return nil, fmt.Errorf("%w: google account has no email", ErrGoogleLogin)
	}

	user, err := s.users.UpsertSocial(ctx, domain.AccountGoogle, profile.Email, profile.Name)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *domain.User) (*LoginResult, error) {
	identity := user.Identity()
	access, err := s.tokens.IssueAccess(identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenIssue, err)
	}
	refresh, err := s.tokens.IssueRefresh(identity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenIssue, err)
	}
	return &LoginResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}
