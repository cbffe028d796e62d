package service

import (
	"context"
	"errors"
	"log/slog"

	"tripsplit/internal/apperr"
	"tripsplit/internal/auth"
)

// AuthService wraps an Authenticator and a JWT manager into the
// sign-up/sign-in flows exposed over HTTP.
type AuthService struct {
	authenticator auth.Authenticator
	tokens        *auth.JWTManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(authenticator auth.Authenticator, tokens *auth.JWTManager) *AuthService {
	return &AuthService{authenticator: authenticator, tokens: tokens}
}

// Session is the result of a successful sign-up or sign-in.
type Session struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// SignUp registers a new account and returns a session for it.
func (s *AuthService) SignUp(ctx context.Context, name, email, phone, password string) (*Session, error) {
	user, err := s.authenticator.Register(ctx, name, email, phone, password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrWeakPassword):
			return nil, apperr.Invalid(err.Error())
		case errors.Is(err, auth.ErrEmailExists):
			return nil, apperr.Invalid(err.Error())
		default:
			slog.Error("Sign up failed", "email", email, "error", err)
			return nil, apperr.Internal(err)
		}
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		slog.Error("Token generation failed", "user_id", user.ID, "error", err)
		return nil, apperr.Internal(err)
	}

	slog.Info("User registered", "user_id", user.ID)
	return &Session{UserID: user.ID, Name: user.Name, Email: user.Email, Token: token}, nil
}

// SignIn authenticates credentials and returns a fresh session.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return nil, apperr.Unauthorized(err.Error())
		}
		slog.Error("Sign in failed", "email", email, "error", err)
		return nil, apperr.Internal(err)
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		slog.Error("Token generation failed", "user_id", user.ID, "error", err)
		return nil, apperr.Internal(err)
	}

	return &Session{UserID: user.ID, Name: user.Name, Email: user.Email, Token: token}, nil
}
