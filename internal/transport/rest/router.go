package rest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/campus-resources/internal/auth"
	"github.com/frahmantamala/campus-resources/internal/backendstub"
	"github.com/frahmantamala/campus-resources/internal/transport/middleware"
)

// Hooks lets tests observe and break the stub.
type Hooks struct {
	Recorder *backendstub.Recorder
	Faults   *backendstub.Faults
}

func RegisterAllRoutes(router *chi.Mux, h *backendstub.Handler, store *backendstub.Store, issuer *auth.TokenIssuer, metrics *middleware.Metrics, hooks Hooks, logger *slog.Logger) {
	healthHandler := NewHealthHandler(map[string]Check{
		"store": func(ctx context.Context) error {
			if !store.Has("equipment") {
				return fmt.Errorf("store not initialised")
			}
			return nil
		},
	})

	router.Use(middleware.ContextLogger(logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware())
	if metrics != nil {
		router.Use(metrics.Middleware())
	}
	if hooks.Recorder != nil {
		router.Use(hooks.Recorder.Middleware)
	}
	if hooks.Faults != nil {
		router.Use(hooks.Faults.Middleware)
	}

	if metrics != nil {
		router.Handle("/metrics", metrics.Handler())
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)
		r.Post("/auth/login", h.Login)

		r.Group(func(pr chi.Router) {
			pr.Use(middleware.Authenticate(issuer))
			admin := middleware.RequireRole("admin")

			pr.Get("/auth/verify", h.Verify)

			for _, name := range backendstub.Resources {
				name := name
				pr.Route("/"+name, func(rr chi.Router) {
					rr.Get("/", h.List(name))
					rr.With(admin).Post("/", h.Create(name))
					rr.With(admin).Put("/{id}", h.Update(name))
					rr.With(admin).Delete("/bulk-delete", h.BulkDelete(name))
					rr.With(admin).Put("/bulk-update-status", h.BulkUpdateStatus(name))
					rr.With(admin).Post("/bulk-create", h.BulkCreate(name))

					switch name {
					case "borrowing":
						rr.With(admin).Post("/mark-returned", h.MarkReturned)
						rr.With(admin).Post("/confirm-return", h.ConfirmReturn)
						rr.With(admin).Post("/revert-return", h.RevertReturn)
					case "booking", "acquiring":
						rr.With(admin).Post("/mark-done", h.MarkDone(name))
						rr.With(admin).Post("/confirm-done", h.ConfirmDone(name))
					case "account-requests":
						rr.With(admin).Post("/approve", h.ApproveAccounts)
						rr.With(admin).Post("/reject", h.RejectAccounts)
					case "notifications":
						rr.With(admin).Put("/{id}/status", h.NotificationStatus)
					}
				})
			}
		})
	})
}
