// Package app assembles repositories, services and event listeners from configuration.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"library-lending-backend/internal/config"
	"library-lending-backend/internal/jobs"
	"library-lending-backend/internal/logger"
	"library-lending-backend/internal/repository"
	"library-lending-backend/internal/repository/memory"
	"library-lending-backend/internal/repository/postgres"
	"library-lending-backend/internal/service"
	"library-lending-backend/internal/strategy"
)

// App holds every wired component of the lending system.
type App struct {
	Config *config.Config
	DB     *sql.DB
	Store  *repository.Store

	Catalog         service.CatalogService
	Patrons         service.PatronService
	Lending         service.LendingService
	Reservations    service.ReservationService
	Recommendations service.RecommendationService
	Branches        service.BranchService
	Transfers       service.TransferService
	Email           service.EmailService
	Push            service.PushService

	Jobs *jobs.JobRunner
}

// New opens the configured store and wires the services on top of it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg.Store.Type != config.StorePostgres {
		logger.Info("Using in-memory store")
		return build(ctx, cfg, nil, memory.NewStore(), time.Now)
	}

	logger.Info("Connecting to database...", "host", cfg.Database.Host, "port", cfg.Database.Port, "database", cfg.Database.Database)
	db, err := sql.Open("postgres", cfg.GetDatabaseConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	logger.Info("Database connection established")

	a, err := NewWithDB(ctx, cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

// NewWithDB wires the services over an already opened PostgreSQL handle.
func NewWithDB(ctx context.Context, cfg *config.Config, db *sql.DB) (*App, error) {
	return build(ctx, cfg, db, postgres.NewStore(db), time.Now)
}

func build(ctx context.Context, cfg *config.Config, db *sql.DB, store *repository.Store, clock service.Clock) (*App, error) {
	a := &App{Config: cfg, DB: db, Store: store}

	a.Catalog = service.NewCatalogService(store.Books)
	a.Patrons = service.NewPatronService(store.Patrons)
	a.Branches = service.NewBranchService(store.Branches)
	a.Transfers = service.NewTransferService(store.Transfers, store.Books, store.Branches, clock)
	a.Lending = service.NewLendingService(store.Books, store.Patrons, store.Lendings, clock)
	a.Reservations = service.NewReservationService(store.Reservations, store.Books, store.Patrons, clock)

	author := strategy.AuthorBased{}
	popularity := strategy.NewPopularityBased()
	if cfg.Recommendation.DefaultStrategy == popularity.Name() {
		a.Recommendations = service.NewRecommendationService(store.Books, store.Patrons, popularity, cfg.Recommendation.DefaultLimit, author)
	} else {
		a.Recommendations = service.NewRecommendationService(store.Books, store.Patrons, author, cfg.Recommendation.DefaultLimit, popularity)
	}

	switch cfg.Email.Provider {
	case config.EmailProviderSendGrid:
		logger.Info("Using SendGrid email", "from", cfg.Email.FromEmail)
		a.Email = service.NewSendGridEmailService(cfg.Email.APIKey, cfg.Email.FromEmail, cfg.Email.FromName)
	default:
		a.Email = service.NewLogEmailService()
	}

	if cfg.Push.Enabled {
		push, err := service.NewFirebasePushService(ctx, cfg.Push.ProjectID, cfg.Push.CredentialsFile)
		if err != nil {
			return nil, err
		}
		a.Push = push
	}

	// Returns drive the reservation queue; borrows close pickup holds.
	a.Lending.SetReturnProcessor(a.Reservations)
	a.Lending.AddListener(service.NewFulfillmentListener(a.Reservations))

	events := service.NewLoggingListener()
	a.Lending.AddListener(events)
	a.Reservations.AddListener(events)

	mailer := service.NewEmailNotifier(store.Patrons, a.Email)
	a.Lending.AddListener(mailer)
	a.Reservations.AddListener(mailer)

	if a.Push != nil {
		a.Reservations.AddListener(service.NewPushNotifier(a.Push))
	}

	if err := a.Recommendations.RefreshPopularity(ctx); err != nil {
		logger.Warn("Initial popularity refresh failed", "error", err)
	}

	a.Jobs = jobs.NewJobRunner(&jobs.Services{
		Lending:         a.Lending,
		Reservations:    a.Reservations,
		Recommendations: a.Recommendations,
		Patrons:         a.Patrons,
		Email:           a.Email,
	}, cfg)

	return a, nil
}

// Close releases the database handle, if any.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
