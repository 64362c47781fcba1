package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/frahmantamala/campus-resources/internal"
	"github.com/frahmantamala/campus-resources/internal/core/events"
	"github.com/frahmantamala/campus-resources/internal/listview"
	"github.com/frahmantamala/campus-resources/internal/notification"
)

var (
	watchInterval time.Duration
	metricsAddr   string
)

var notificationColumns = []string{"id", "kind", "request_type", "request_id", "message", "created_at"}

func printNotifications(w io.Writer, pending []notification.Notification) error {
	table := listview.NewTable[notification.Notification](len(pending), listview.ScopePage)
	table.SetItems(pending)
	fmt.Fprintf(w, "%d pending notification(s)\n", len(pending))
	if len(pending) == 0 {
		return nil
	}
	return renderTable(w, table, notificationColumns)
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Watch and decide requester notifications",
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show pending notifications once",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(app *App) error {
			app.Feed.Refresh(cmd.Context())
			return printNotifications(cmd.OutOrStdout(), app.Feed.Pending())
		})
	},
}

var notificationsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll pending notifications until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if watchInterval > 0 {
			configOverrides = append(configOverrides, func(cfg *internal.Config) {
				cfg.Notifications.PollInterval = watchInterval
			})
		}
		return withApp(cmd, func(app *App) error {
			w := cmd.OutOrStdout()
			app.Bus.Subscribe(events.EventTypeNotificationsUpdated, func(_ context.Context, e events.Event) error {
				return printNotifications(w, app.Feed.Pending())
			})

			addr := metricsAddr
			if addr == "" && app.Config.Observability.Metrics.Enabled {
				addr = app.Config.Observability.Metrics.Addr
			}

			var server *http.Server
			if addr != "" {
				server = &http.Server{
					Addr:              addr,
					Handler:           promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{}),
					ReadHeaderTimeout: 5 * time.Second,
				}
				go func() {
					if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						app.Logger.Error("metrics server failed", "error", err)
					}
				}()
				app.Logger.Info("serving metrics", "address", addr)
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			app.Feed.Start(ctx)

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			app.Logger.Info("watching notifications, press Ctrl+C to stop")
			select {
			case sig := <-sigChan:
				app.Logger.Info("received signal, stopping", "signal", sig)
			case <-ctx.Done():
			}

			app.Feed.Stop()
			if server != nil {
				shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
				defer stop()
				if err := server.Shutdown(shutdownCtx); err != nil {
					app.Logger.Error("metrics server shutdown error", "error", err)
				}
			}
			return nil
		})
	},
}

// decideNotification reloads the feed, finds id and hands it to decide.
func decideNotification(cmd *cobra.Command, arg, verb string, decide func(*notification.Service) func(context.Context, notification.Notification) error) error {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", arg)
	}
	return withApp(cmd, func(app *App) error {
		ctx, w := cmd.Context(), cmd.OutOrStdout()
		app.Feed.Refresh(ctx)

		n, ok := app.Feed.Find(id)
		if !ok {
			return internal.NewNotFoundError(fmt.Sprintf("no pending notification %d", id), internal.ErrCodeRecordNotFound)
		}

		err := decide(app.Notifications)(ctx, n)
		var partial *notification.PartialWriteError
		if errors.As(err, &partial) && partial.RequestApplied() {
			fmt.Fprintf(w, "request updated but notification %d was not marked %s\n", id, verb)
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "notification %d %s\n", id, verb)
		return printNotifications(w, app.Feed.Pending())
	})
}

var notificationsConfirmCmd = &cobra.Command{
	Use:   "confirm <id>",
	Short: "Apply the reported request change and mark the notification confirmed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return decideNotification(cmd, args[0], "confirmed", func(s *notification.Service) func(context.Context, notification.Notification) error {
			return s.Confirm
		})
	},
}

var notificationsDismissCmd = &cobra.Command{
	Use:   "dismiss <id>",
	Short: "Hide the notification without touching the request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return decideNotification(cmd, args[0], "dismissed", func(s *notification.Service) func(context.Context, notification.Notification) error {
			return s.Dismiss
		})
	},
}

var notificationsRejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject the reported change",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return decideNotification(cmd, args[0], "rejected", func(s *notification.Service) func(context.Context, notification.Notification) error {
			return s.Reject
		})
	},
}

func init() {
	notificationsWatchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "poll interval, config default when 0")
	notificationsWatchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, overrides observability.metrics")

	notificationsCmd.AddCommand(notificationsListCmd, notificationsWatchCmd, notificationsConfirmCmd, notificationsDismissCmd, notificationsRejectCmd)
}
