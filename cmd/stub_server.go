package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/campus-resources/internal/account"
	"github.com/frahmantamala/campus-resources/internal/transport/rest"
	"github.com/frahmantamala/campus-resources/pkg/logger"
)

var (
	stubAdminEmail    string
	stubAdminPassword string
	stubPort          int
	stubNoSeed        bool
)

var stubServerCmd = &cobra.Command{
	Use:   "stub-server",
	Short: "Serve an in-memory REST backend for local development",
	Long:  `Serve an in-memory implementation of the backend endpoints, seeded with demo data and one administrator account.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		log := logger.New(cmd.ErrOrStderr(), cfg.Observability.Env, cfg.Observability.Logging.Level)

		stub := rest.NewStubServer(rest.StubOptions{
			Secret:   cfg.StubServer.JWTSecret,
			TokenTTL: cfg.StubServer.TokenTTL,
			Metrics:  cfg.Observability.Metrics.Enabled,
			Logger:   log,
		})
		if !stubNoSeed {
			if err := stub.Store.SeedDemo(); err != nil {
				return fmt.Errorf("failed to seed demo data: %w", err)
			}
		}
		if err := stub.Store.AddUser(stubAdminEmail, stubAdminPassword, account.RoleAdmin, bcrypt.DefaultCost); err != nil {
			return fmt.Errorf("failed to add admin user: %w", err)
		}

		port := cfg.StubServer.Port
		if stubPort > 0 {
			port = stubPort
		}
		server := &http.Server{
			Addr:         fmt.Sprintf(":%d", port),
			Handler:      stub,
			ReadTimeout:  cfg.StubServer.ReadTimeout,
			WriteTimeout: cfg.StubServer.WriteTimeout,
		}

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		serverErrChan := make(chan error, 1)
		go func() {
			serverErrChan <- server.ListenAndServe()
		}()
		log.Info("stub server listening", "address", server.Addr, "admin", stubAdminEmail)

		select {
		case sig := <-sigChan:
			log.Info("received signal, shutting down", "signal", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				log.Error("server shutdown error", "error", err)
			}
		case err := <-serverErrChan:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
		}

		log.Info("stub server stopped")
		return nil
	},
}

func init() {
	stubServerCmd.Flags().StringVar(&stubAdminEmail, "admin-email", "admin@campus.edu", "administrator account email")
	stubServerCmd.Flags().StringVar(&stubAdminPassword, "admin-password", "admin123", "administrator account password")
	stubServerCmd.Flags().IntVar(&stubPort, "port", 0, "listen port, config default when 0")
	stubServerCmd.Flags().BoolVar(&stubNoSeed, "no-seed", false, "start with empty resources")
}
