// Package app wires the commerce server runtime: config, logging, secrets,
// session and nonce stores, and the HTTP surface.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	api "commerce/cmd/internal/auth/api"
	"commerce/cmd/internal/auth/nonce"
	"commerce/cmd/internal/auth/session"
	"commerce/cmd/internal/catalog"
	"commerce/cmd/internal/identity"
	"commerce/cmd/security/secrets"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is a small app-level lifecycle abstraction.
// It exists to allow DB-backed resources to be closed gracefully.
type Store interface {
	Close(ctx context.Context) error
}

// nopStore is used for in-memory store mode.
type nopStore struct{}

func (nopStore) Close(_ context.Context) error { return nil }

// App is the commerce server runtime: it owns the HTTP server wiring and the
// store dependencies behind the auth handler.
type App struct {
	cfg Config
	log Logger

	store Store

	dbPool    *pgxpool.Pool
	dbEnabled bool

	auth *api.Handler
}

// New constructs a fully wired App instance from config and logger.
// Secrets are loaded from the environment; missing secrets are a fatal
// configuration error.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}

	sec, err := secrets.FromEnv()
	if err != nil {
		return nil, err
	}

	sessCfg := session.DefaultConfig(sec.Session)
	sessCfg.CookieDomain = cfg.CookieDomain
	sessCfg.CookieSecure = cfg.CookieSecure

	authCfg := api.LoadConfigFromEnv()

	st, dbPool, dbEnabled, stores, err := newStores(context.Background(), cfg, log, sessCfg, authCfg)
	if err != nil {
		return nil, err
	}

	engine, err := nonce.NewEngine(stores.nonces, sec.Nonce)
	if err != nil {
		_ = st.Close(context.Background())
		return nil, err
	}

	authHandler, err := api.NewHandler(log, authCfg, sessCfg, stores.sessions, engine, stores.users, stores.deals, sec.JWT)
	if err != nil {
		_ = st.Close(context.Background())
		return nil, err
	}

	return &App{
		cfg:       cfg,
		log:       log,
		store:     st,
		dbPool:    dbPool,
		dbEnabled: dbEnabled,
		auth:      authHandler,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal
// server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()

	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.auth)

	handler := WithRequestMetrics(mux)
	handler = WithRequestLogging(handler, a.log)
	handler = WithRequestID(handler)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	if err := a.store.Close(shutdownCtx); err != nil {
		a.log.Error("store.close.fail", "err", err)
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// appStores bundles the store dependencies handed to the auth handler.
type appStores struct {
	sessions session.Store
	nonces   nonce.Store
	users    identity.Store
	deals    catalog.Store
}

// newStores decides between Postgres-backed persistence and the in-memory dev
// stores. The in-memory mode exists for local development and tests; it keeps
// nothing across restarts.
func newStores(
	ctx context.Context,
	cfg Config,
	log Logger,
	sessCfg session.Config,
	authCfg api.Config,
) (Store, *pgxpool.Pool, bool, appStores, error) {
	if cfg.DatabaseURL == "" {
		log.Warn("db.disabled.inmemory_store")

		sessions, err := session.NewMemoryStore(sessCfg)
		if err != nil {
			return nil, nil, false, appStores{}, err
		}

		return nopStore{}, nil, false, appStores{
			sessions: sessions,
			nonces:   nonce.NewMemoryStore(sessions),
			users:    identity.NewMemoryStore(authCfg.DefaultRole),
			deals:    catalog.NewMemoryStore(),
		}, nil
	}

	pool, err := NewDBPool(ctx, cfg)
	if err != nil {
		return nil, nil, false, appStores{}, err
	}

	log.Info("db.enabled.postgres_store")

	sessions, err := session.NewPostgresStore(pool, sessCfg)
	if err != nil {
		pool.Close()
		return nil, nil, false, appStores{}, err
	}

	// Ownership model: app owns the pool lifecycle, stores borrow it.
	return dbStore{pool: pool}, pool, true, appStores{
		sessions: sessions,
		nonces:   nonce.NewPostgresStore(pool, sessions),
		users:    identity.NewPostgresStore(pool, authCfg.DefaultRole),
		deals:    catalog.NewPostgresStore(pool),
	}, nil
}

type dbStore struct {
	pool *pgxpool.Pool
}

func (s dbStore) Close(_ context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
