package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gridironhq/fantasy-dashboard/external/espn"
	"github.com/gridironhq/fantasy-dashboard/external/sleeper"
	"github.com/gridironhq/fantasy-dashboard/internal/config"
	"github.com/gridironhq/fantasy-dashboard/internal/domain/leaguelink"
	"github.com/gridironhq/fantasy-dashboard/internal/infrastructure/account/authproxy"
	"github.com/gridironhq/fantasy-dashboard/internal/infrastructure/repository/memory"
	"github.com/gridironhq/fantasy-dashboard/internal/infrastructure/repository/postgres"
	"github.com/gridironhq/fantasy-dashboard/internal/interfaces/httpapi"
	"github.com/gridironhq/fantasy-dashboard/internal/platform/cache"
	idgen "github.com/gridironhq/fantasy-dashboard/internal/platform/id"
	"github.com/gridironhq/fantasy-dashboard/internal/platform/logging"
	"github.com/gridironhq/fantasy-dashboard/internal/platform/resilience"
	"github.com/gridironhq/fantasy-dashboard/internal/usecase"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"
)

// NewHTTPServer assembles the full service. The returned cleanup
// releases the database handle and must run after server shutdown.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	linkRepo, closeDB, err := newLeagueLinkRepository(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	espnClient := espn.NewClient(espn.ClientConfig{
		BaseURL:    cfg.ESPNBaseURL,
		SWID:       cfg.ESPNSWID,
		ESPNS2:     cfg.ESPNS2,
		Timeout:    cfg.ESPNTimeout,
		MaxRetries: cfg.ESPNMaxRetries,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.ESPNCircuitEnabled,
			FailureThreshold: cfg.ESPNCircuitFailureCount,
			OpenTimeout:      cfg.ESPNCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.ESPNCircuitHalfOpenMax,
		},
	})

	sleeperClient := sleeper.NewClient(sleeper.ClientConfig{
		BaseURL:             cfg.SleeperBaseURL,
		Timeout:             cfg.SleeperTimeout,
		MaxRetries:          cfg.SleeperMaxRetries,
		TrendingLookbackHrs: cfg.SleeperTrendingLookbackHrs,
		TrendingLimit:       cfg.SleeperTrendingLimit,
		Logger:              logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SleeperCircuitEnabled,
			FailureThreshold: cfg.SleeperCircuitFailureCount,
			OpenTimeout:      cfg.SleeperCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SleeperCircuitHalfOpenMax,
		},
	})

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheTTL)
	}

	linkSvc := usecase.NewLeagueLinkService(linkRepo, espnClient, idgen.NewRandomGenerator())
	dashboardSvc := usecase.NewDashboardService(linkRepo, espnClient)
	waiverSvc := usecase.NewWaiverService(linkRepo, espnClient, sleeperClient, store, logger)
	tradeSvc := usecase.NewTradeService(linkRepo, espnClient)

	authClient := authproxy.NewClient(authproxy.ClientConfig{
		BaseURL:        cfg.AuthProxyBaseURL,
		IntrospectPath: cfg.AuthProxyIntrospectURL,
		AdminKey:       cfg.AuthProxyAdminKey,
		Timeout:        cfg.AuthProxyTimeout,
		Logger:         logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.AuthProxyCircuitEnabled,
			FailureThreshold: cfg.AuthProxyCircuitFailureCount,
			OpenTimeout:      cfg.AuthProxyCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.AuthProxyCircuitHalfOpenMax,
		},
	})

	handler := httpapi.NewHandler(linkSvc, dashboardSvc, waiverSvc, tradeSvc, logger)
	router := httpapi.NewRouter(handler, authClient, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		_ = closeDB(context.Background())
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, closeDB, nil
}

// newLeagueLinkRepository picks the persistence backend. An empty
// DB_URL keeps everything in process memory, which is enough for local
// development against live upstreams.
func newLeagueLinkRepository(cfg config.Config, logger *logging.Logger) (leaguelink.Repository, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	if cfg.DBURL == "" {
		logger.Info("using in-memory league link repository", "reason", "DB_URL empty")
		return memory.NewLeagueLinkRepository(), noop, nil
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	return postgres.NewLeagueLinkRepository(db), func(context.Context) error { return db.Close() }, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dbURL := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dbURL,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(dbURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	return db, nil
}
