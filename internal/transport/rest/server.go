package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/campus-resources/internal/auth"
	"github.com/frahmantamala/campus-resources/internal/backendstub"
	"github.com/frahmantamala/campus-resources/internal/transport"
	"github.com/frahmantamala/campus-resources/internal/transport/middleware"
)

type StubOptions struct {
	Secret   string
	TokenTTL time.Duration
	Metrics  bool
	Logger   *slog.Logger
}

// StubServer is the in-memory REST backend with its test hooks exposed.
type StubServer struct {
	Store    *backendstub.Store
	Issuer   *auth.TokenIssuer
	Recorder *backendstub.Recorder
	Faults   *backendstub.Faults
	Metrics  *middleware.Metrics
	Router   *chi.Mux
}

func NewStubServer(opts StubOptions) *StubServer {
	s := &StubServer{
		Store:    backendstub.NewStore(backendstub.Resources...),
		Issuer:   auth.NewTokenIssuer(opts.Secret, opts.TokenTTL),
		Recorder: &backendstub.Recorder{},
		Faults:   &backendstub.Faults{},
		Router:   chi.NewRouter(),
	}
	if opts.Metrics {
		s.Metrics = middleware.NewMetrics()
	}

	handler := backendstub.NewHandler(transport.NewBaseHandler(opts.Logger), s.Store, s.Issuer)
	RegisterAllRoutes(s.Router, handler, s.Store, s.Issuer, s.Metrics,
		Hooks{Recorder: s.Recorder, Faults: s.Faults}, opts.Logger)
	return s
}

func (s *StubServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
