// Package app builds a running pagebot from a loaded configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dfryer1193/pagebot/internal/config"
	"github.com/dfryer1193/pagebot/internal/middleware"
	"github.com/dfryer1193/pagebot/internal/rest"
	"github.com/dfryer1193/pagebot/pages/application"
	"github.com/dfryer1193/pagebot/pages/domain"
	"github.com/dfryer1193/pagebot/pages/persistence"
	"github.com/dfryer1193/pagebot/shared/db"
	"github.com/dfryer1193/pagebot/shared/db/sqlite"
	gh "github.com/dfryer1193/pagebot/shared/github"
	webhook "github.com/dfryer1193/pagebot/webhook/http"
	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v75/github"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	Config  *config.Config
	Store   domain.ContentRepository
	Service *application.EditService

	// Local is set when Store is the SQLite content store.
	Local *persistence.SQLiteContentRepository

	closers []func() error
}

// New opens the configured content store and builds the edit service on top of it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	a := &App{Config: cfg}

	switch cfg.Store {
	case config.StoreSQLite:
		var database db.Database = sqlite.NewSQLiteDB(&sqlite.SQLiteConfig{Path: cfg.SQLite.Path})
		if err := database.Connect(); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.closers = append(a.closers, database.Close)
		a.Local = persistence.NewContentRepository(database.DB(), cfg.SQLite.BaseURL)
		a.Store = a.Local
		log.Info().Str("path", cfg.SQLite.Path).Msg("Using SQLite content store")

	case config.StoreGithub:
		store, err := newGithubStore(ctx, cfg.Github)
		if err != nil {
			return nil, err
		}
		a.Store = store
	}

	a.Service = application.NewEditService(a.Store, cfg.ServiceOptions())
	return a, nil
}

func newGithubStore(ctx context.Context, cfg config.GithubConfig) (*gh.GithubContentRepository, error) {
	client := github.NewClient(nil)
	if cfg.Token != "" {
		client = client.WithAuthToken(cfg.Token)
	}

	branch := cfg.Branch
	if branch == "" {
		var err error
		branch, err = gh.NewGithubContentRepository(client, cfg.Owner, cfg.Repo, "").GetDefaultBranchName(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get default branch name: %w", err)
		}
	}

	store := gh.NewGithubContentRepository(client, cfg.Owner, cfg.Repo, branch)
	log.Info().
		Str("repo", store.GetRepoFullName()).
		Str("branch", branch).
		Msg("Using GitHub content store")
	return store, nil
}

// Router returns the HTTP API, plus the push webhook when a secret is configured.
func (a *App) Router() *gin.Engine {
	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))

	rest.NewApi(router, rest.NewPagesHandler(a.Service), a.Config.HTTP.APIToken)

	if a.Config.WebhookSecret != "" {
		webhook.NewWebhookHandler(a.Config.WebhookSecret, a.Config.Github.Branch, a.Service).RegisterRoutes(router)
	} else {
		log.Warn().Msg("webhook.secret is not set, push webhook disabled")
	}

	return router
}

// Serve runs the HTTP server until ctx is cancelled, then shuts it down gracefully.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:    a.Config.HTTP.Addr,
		Handler: a.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Msg("Starting server on " + a.Config.HTTP.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	log.Info().Msg("Server stopped")
	return nil
}

// Close releases the content store.
func (a *App) Close() error {
	var errs []error
	for _, closeFn := range a.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}
