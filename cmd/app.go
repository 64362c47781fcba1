package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/campus-resources/internal"
	"github.com/frahmantamala/campus-resources/internal/account"
	"github.com/frahmantamala/campus-resources/internal/apiclient"
	"github.com/frahmantamala/campus-resources/internal/auth"
	"github.com/frahmantamala/campus-resources/internal/core/events"
	"github.com/frahmantamala/campus-resources/internal/notification"
	notificationbaas "github.com/frahmantamala/campus-resources/internal/notification/baas"
	notificationrest "github.com/frahmantamala/campus-resources/internal/notification/rest"
	"github.com/frahmantamala/campus-resources/internal/request"
	"github.com/frahmantamala/campus-resources/internal/resource"
	"github.com/frahmantamala/campus-resources/internal/resource/baas"
	"github.com/frahmantamala/campus-resources/internal/resource/rest"
	"github.com/frahmantamala/campus-resources/internal/session"
	"github.com/frahmantamala/campus-resources/pkg/logger"
)

// Authenticator is the sign-in mechanism of whichever integration is active.
type Authenticator interface {
	Login(ctx context.Context, dto auth.LoginDTO) (auth.Identity, error)
	Logout() error
	Verify(ctx context.Context) (auth.Identity, error)
}

// App holds every long-lived component. Construction does no I/O; Init
// loads the session and Teardown releases what Init and the commands opened.
type App struct {
	Config   *internal.Config
	Logger   *slog.Logger
	Session  *session.Store
	API      *apiclient.Client
	DB       *gorm.DB
	Bus      *events.EventBus
	Registry *prometheus.Registry
	Auth     Authenticator

	Equipment   *resource.Client[resource.Equipment]
	Facilities  *resource.Client[resource.Facility]
	Supplies    *resource.Client[resource.Supply]
	Maintenance *resource.Client[resource.MaintenanceChecklist]

	Borrowing       *resource.Client[request.Borrowing]
	Booking         *resource.Client[request.Booking]
	Acquiring       *resource.Client[request.Acquiring]
	Users           *resource.Client[account.User]
	AccountRequests *resource.Client[account.AccountRequest]

	Transitions   *request.Transitions
	Approvals     *account.Approvals
	Loader        *request.Loader
	Notifications *notification.Service
	Feed          *notification.Feed

	unsubscribe func()
}

func newApp(cfg *internal.Config, alerts io.Writer) (*App, error) {
	env := cfg.Observability.Env
	if cfg.Observability.Logging.Format == "json" {
		env = "production"
	}
	log := logger.New(os.Stderr, env, cfg.Observability.Logging.Level)

	app := &App{
		Config:   cfg,
		Logger:   log,
		Session:  session.NewStore(session.NewFilePersister(cfg.Session.Path), log),
		Bus:      events.NewEventBus(log),
		Registry: prometheus.NewRegistry(),
	}

	opts := []apiclient.Option{
		apiclient.WithTimeout(cfg.API.RequestTimeout),
		apiclient.WithMetrics(apiclient.NewMetrics(app.Registry)),
	}
	app.API = apiclient.New(cfg.API.BaseURL, app.Session, log, opts...)

	alert := resource.WithAlert(func(_ context.Context, name, op string, err error) {
		fmt.Fprintf(alerts, "%s %s failed: %s\n", name, op, describe(err))
	})
	pageSize := resource.WithDefaultPageSize(cfg.API.PageSize)

	app.Borrowing = resource.NewClient[request.Borrowing]("borrowing", rest.New[request.Borrowing](app.API, request.KindBorrowing.Path()), log, alert, pageSize)
	app.Booking = resource.NewClient[request.Booking]("booking", rest.New[request.Booking](app.API, request.KindBooking.Path()), log, alert, pageSize)
	app.Acquiring = resource.NewClient[request.Acquiring]("acquiring", rest.New[request.Acquiring](app.API, request.KindAcquiring.Path()), log, alert, pageSize)
	app.Users = resource.NewClient[account.User]("users", rest.New[account.User](app.API, "/api/users"), log, alert, pageSize)
	app.AccountRequests = resource.NewClient[account.AccountRequest]("account-requests", rest.New[account.AccountRequest](app.API, "/api/account-requests"), log, alert, pageSize)
	app.Transitions = request.NewTransitions(app.API, log)
	app.Approvals = account.NewApprovals(app.API, log)

	var (
		store    notification.Store
		requests notification.RequestWriter = app.Transitions
	)

	switch cfg.API.Integration {
	case internal.IntegrationBaaS:
		db, err := openDB(cfg.Database, cfg.Observability.Logging.Level)
		if err != nil {
			return nil, err
		}
		app.DB = db

		baasAPI := apiclient.New(cfg.BaaS.URL, app.Session, log,
			append(opts, apiclient.WithHeader("apikey", cfg.BaaS.AnonKey))...)
		app.Auth = &baasAuthenticator{auth: baas.NewAuth(baasAPI, app.Session, log)}

		if err := app.wireBaaSInventory(alert, pageSize); err != nil {
			return nil, err
		}
		store = notificationbaas.NewStore(db, app.Session, log)
		requests = notificationbaas.NewRequests(db, app.Session, log)
	default:
		app.Auth = auth.NewService(app.API, app.Session, log)
		app.Equipment = resource.NewClient[resource.Equipment]("equipment", rest.New[resource.Equipment](app.API, "/api/equipment"), log, alert, pageSize)
		app.Facilities = resource.NewClient[resource.Facility]("facilities", rest.New[resource.Facility](app.API, "/api/facilities"), log, alert, pageSize)
		app.Supplies = resource.NewClient[resource.Supply]("supplies", rest.New[resource.Supply](app.API, "/api/supplies"), log, alert, pageSize)
		app.Maintenance = resource.NewClient[resource.MaintenanceChecklist]("maintenance-checklists", rest.New[resource.MaintenanceChecklist](app.API, "/api/maintenance-checklists"), log, alert, pageSize)
		store = notificationrest.NewStore(app.API)
	}

	app.Loader = request.NewLoader(app.Auth, app.Borrowing, app.Booking, app.Acquiring, log)
	app.Feed = notification.NewFeed(store, log,
		notification.WithInterval(cfg.Notifications.PollInterval),
		notification.WithPublisher(app.Bus))
	app.Notifications = notification.NewService(store, requests, log)
	app.Notifications.SetRefresher(app.Feed)

	return app, nil
}

func (a *App) wireBaaSInventory(alert, pageSize resource.ClientOption) error {
	equipment, err := baas.NewEquipmentTable(a.DB, a.Session, a.Logger)
	if err != nil {
		return err
	}
	facilities, err := baas.NewFacilityTable(a.DB, a.Session, a.Logger)
	if err != nil {
		return err
	}
	supplies, err := baas.NewSupplyTable(a.DB, a.Session, a.Logger)
	if err != nil {
		return err
	}
	maintenance, err := baas.NewMaintenanceTable(a.DB, a.Session, a.Logger)
	if err != nil {
		return err
	}

	a.Equipment = resource.NewClient[resource.Equipment]("equipment", equipment, a.Logger, alert, pageSize)
	a.Facilities = resource.NewClient[resource.Facility]("facilities", facilities, a.Logger, alert, pageSize)
	a.Supplies = resource.NewClient[resource.Supply]("supplies", supplies, a.Logger, alert, pageSize)
	a.Maintenance = resource.NewClient[resource.MaintenanceChecklist]("maintenance-checklists", maintenance, a.Logger, alert, pageSize)
	return nil
}

// Init loads the stored session and stops polling once it is purged.
func (a *App) Init() error {
	if err := a.Session.Init(); err != nil {
		return err
	}
	a.unsubscribe = a.Session.Subscribe(func(evt session.Event) {
		if evt.Kind == session.EventSignedOut {
			a.Feed.Halt()
		}
	})
	return nil
}

func (a *App) Teardown() error {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	a.Feed.Stop()
	if err := a.Session.Teardown(); err != nil {
		return err
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			return sqlDB.Close()
		}
	}
	return nil
}

func openDB(cfg internal.DatabaseConfig, level string) (*gorm.DB, error) {
	if cfg.Source == "" {
		return nil, fmt.Errorf("database source is required")
	}

	logLevel := gormlogger.Silent
	if level == "debug" {
		logLevel = gormlogger.Info
	}
	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{Logger: gormlogger.Default.LogMode(logLevel)})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	return db, nil
}

type baasAuthenticator struct {
	auth *baas.Auth
}

func (b *baasAuthenticator) Login(ctx context.Context, dto auth.LoginDTO) (auth.Identity, error) {
	return b.auth.SignIn(ctx, dto)
}

func (b *baasAuthenticator) Logout() error {
	return b.auth.SignOut()
}

func (b *baasAuthenticator) Verify(ctx context.Context) (auth.Identity, error) {
	return b.auth.GetSession(ctx)
}

// configOverrides let flags win over the loaded config.
var configOverrides []func(cfg *internal.Config)

// withApp loads config, builds and initialises the app, runs fn, and tears down.
func withApp(cmd interface{ ErrOrStderr() io.Writer }, fn func(app *App) error) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	for _, override := range configOverrides {
		override(cfg)
	}
	app, err := newApp(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if err := app.Init(); err != nil {
		return err
	}
	defer func() {
		if err := app.Teardown(); err != nil {
			app.Logger.Warn("teardown failed", "error", err)
		}
	}()
	return fn(app)
}
