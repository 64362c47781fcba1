package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/frahmantamala/campus-resources/internal"
)

// API is the slice of the REST transport the auth flow needs.
type API interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	DoAnonymous(ctx context.Context, method, path string, body, out any) error
}

// TokenStore is written only by sign-in and sign-out.
type TokenStore interface {
	Save(token string) error
	Purge() error
}

// Service runs the user-serialized sign-in, sign-out and verify flows.
type Service struct {
	api    API
	tokens TokenStore
	logger *slog.Logger
}

func NewService(api API, tokens TokenStore, logger *slog.Logger) *Service {
	return &Service{api: api, tokens: tokens, logger: logger}
}

// Login exchanges credentials for a token, stores it and verifies it. A token
// that fails verification is not kept.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (Identity, error) {
	if err := dto.Validate(); err != nil {
		return Identity{}, err
	}

	var resp TokenResponse
	if err := s.api.DoAnonymous(ctx, http.MethodPost, "/api/auth/login", dto, &resp); err != nil {
		s.logger.Warn("login failed", "email", dto.Email, "error", err)
		return Identity{}, err
	}
	if resp.AccessToken == "" {
		return Identity{}, internal.NewInternalError("login response carried no access token", nil)
	}

	if err := s.tokens.Save(resp.AccessToken); err != nil {
		return Identity{}, internal.NewInternalError("failed to store session", err)
	}

	identity, err := s.Verify(ctx)
	if err != nil {
		if purgeErr := s.tokens.Purge(); purgeErr != nil {
			s.logger.Warn("failed to clear unverified session", "error", purgeErr)
		}
		return Identity{}, err
	}

	s.logger.Info("signed in", "user_id", identity.UserID, "role", identity.Role)
	return identity, nil
}

func (s *Service) Logout() error {
	if err := s.tokens.Purge(); err != nil {
		return internal.NewInternalError("failed to clear session", err)
	}
	s.logger.Info("signed out")
	return nil
}

// Verify asks the backend who the stored token belongs to. A 401 purges
// the token inside the transport.
func (s *Service) Verify(ctx context.Context) (Identity, error) {
	var identity Identity
	if err := s.api.Get(ctx, "/api/auth/verify", nil, &identity); err != nil {
		if !errors.Is(err, internal.ErrMissingToken) {
			s.logger.Warn("session verification failed", "error", err)
		}
		return Identity{}, err
	}
	return identity, nil
}
