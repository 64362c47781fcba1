package baas

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/frahmantamala/campus-resources/internal"
	"github.com/frahmantamala/campus-resources/internal/auth"
	"github.com/frahmantamala/campus-resources/internal/session"
)

// AuthAPI is the transport pointed at the BaaS project URL with its anon key header.
type AuthAPI interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	DoAnonymous(ctx context.Context, method, path string, body, out any) error
}

// Auth is the session mechanism of the hosted service. It shares the token
// store with the REST path but never calls the REST backend.
type Auth struct {
	api    AuthAPI
	store  *session.Store
	logger *slog.Logger
}

func NewAuth(api AuthAPI, store *session.Store, logger *slog.Logger) *Auth {
	return &Auth{api: api, store: store, logger: logger}
}

type sessionUser struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	Role         string         `json:"role"`
	UserMetadata map[string]any `json:"user_metadata"`
}

type passwordGrant struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// SignIn uses the password grant and stores the resulting access token.
func (a *Auth) SignIn(ctx context.Context, dto auth.LoginDTO) (auth.Identity, error) {
	if err := dto.Validate(); err != nil {
		return auth.Identity{}, err
	}

	var grant passwordGrant
	if err := a.api.DoAnonymous(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", dto, &grant); err != nil {
		return auth.Identity{}, err
	}
	if err := a.store.Save(grant.AccessToken); err != nil {
		return auth.Identity{}, internal.NewInternalError("failed to store session", err)
	}
	return a.GetSession(ctx)
}

// GetSession reports the user behind the stored token.
func (a *Auth) GetSession(ctx context.Context) (auth.Identity, error) {
	var user sessionUser
	if err := a.api.Get(ctx, "/auth/v1/user", nil, &user); err != nil {
		return auth.Identity{}, err
	}

	role := user.Role
	if r, ok := user.UserMetadata["role"].(string); ok && r != "" {
		role = r
	}
	return auth.Identity{Email: user.Email, Role: role}, nil
}

func (a *Auth) SignOut() error {
	return a.store.Purge()
}

// OnAuthStateChange registers fn for sign-in and sign-out events.
func (a *Auth) OnAuthStateChange(fn func(session.Event)) func() {
	return a.store.Subscribe(fn)
}
