package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"extranet/internal/auth"
	"extranet/internal/model"
	"extranet/internal/repository"
)

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(userID int64, role string) (string, time.Time, error)
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

type AuthService interface {
	// Login returns ErrInvalidCredentials for an unknown email or a wrong password.
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

type authService struct {
	users  repository.UserRepository
	issuer TokenIssuer
}

func NewAuthService(users repository.UserRepository, issuer TokenIssuer) AuthService {
	return &authService{users: users, issuer: issuer}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !auth.CheckPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	token, exp, err := s.issuer.Issue(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}
