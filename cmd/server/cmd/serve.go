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

	"github.com/gatherly/server/internal/api"
	"github.com/gatherly/server/internal/auth"
	"github.com/gatherly/server/internal/config"
	"github.com/gatherly/server/internal/domain/accounts"
	"github.com/gatherly/server/internal/domain/events"
	"github.com/gatherly/server/internal/metrics"
	"github.com/gatherly/server/internal/storage/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Server flags (override config/env)
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Gatherly HTTP server",
	Long: `Start the Gatherly HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables (or --config file if provided)
- Ensure seed accounts exist if SEED_* env vars are set
- Serve the event API and the OAuth2 token endpoint
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Msg("starting gatherly server")

	metrics.Init(Version, GitCommit, BuildDate)

	poolCfg, err := poolConfig(cfg.Database)
	if err != nil {
		return fmt.Errorf("database config error: %w", err)
	}

	poolCtx, poolCancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := pgxpool.NewWithConfig(poolCtx, poolCfg)
	poolCancel()
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer pool.Close()

	store, err := postgres.NewRepository(pool)
	if err != nil {
		return fmt.Errorf("repository init failed: %w", err)
	}

	accountsSvc := accounts.NewService(store.Accounts())
	eventsSvc := events.NewService(store.Events())

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := seedAccounts(seedCtx, cfg.Seed, accountsSvc, logger); err != nil {
		logger.Error().Err(err).Msg("seed accounts failed")
	}
	seedCancel()

	router := api.NewRouter(api.Deps{
		Config:    cfg,
		Logger:    logger,
		Events:    eventsSvc,
		Accounts:  accountsSvc,
		JWT:       auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessValidity, cfg.Auth.Issuer),
		Refresh:   auth.NewRefreshStore(cfg.Auth.RefreshValidity),
		DB:        store,
		Version:   Version,
		GitCommit: GitCommit,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	return gracefulShutdown(server, logger)
}

// poolConfig translates the database settings into a pgx pool configuration.
// MaxConnections of zero keeps the driver default.
func poolConfig(db config.DatabaseConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(db.URL)
	if err != nil {
		return nil, err
	}
	if db.MaxConnections > 0 {
		poolCfg.MaxConns = int32(db.MaxConnections)
	}
	return poolCfg, nil
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}

	// Override logging from flags if provided
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	return cfg, nil
}

// seedAccounts ensures the configured bootstrap accounts exist. Already
// existing accounts are left untouched, so the seed is safe to run on every
// start.
func seedAccounts(ctx context.Context, seed config.SeedConfig, svc *accounts.Service, logger zerolog.Logger) error {
	entries := []struct {
		email    string
		password string
		roles    []accounts.Role
	}{
		{seed.AdminEmail, seed.AdminPassword, []accounts.Role{accounts.RoleAdmin, accounts.RoleUser}},
		{seed.UserEmail, seed.UserPassword, []accounts.Role{accounts.RoleUser}},
	}

	for _, entry := range entries {
		if entry.email == "" || entry.password == "" {
			continue
		}
		_, err := svc.Register(ctx, entry.email, entry.password, entry.roles)
		if err != nil {
			if errors.Is(err, accounts.ErrEmailTaken) {
				continue
			}
			return fmt.Errorf("seed %s: %w", entry.email, err)
		}
		logger.Info().Str("email", entry.email).Msg("seeded account")
	}
	return nil
}

func gracefulShutdown(server *http.Server, logger zerolog.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}
