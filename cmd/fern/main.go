package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Gobusters/ectolinq"
	"github.com/Gobusters/ectologger"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/Ramsey-B/fern/config"
	"github.com/Ramsey-B/fern/internal/repositories/connection"
	"github.com/Ramsey-B/fern/internal/repositories/event"
	"github.com/Ramsey-B/fern/internal/repositories/group"
	"github.com/Ramsey-B/fern/internal/repositories/knowledge"
	"github.com/Ramsey-B/fern/internal/repositories/thing"
	"github.com/Ramsey-B/fern/internal/store"
	"github.com/Ramsey-B/fern/pkg/database"
	"github.com/Ramsey-B/fern/pkg/health"
	"github.com/Ramsey-B/fern/pkg/httpclient"
	"github.com/Ramsey-B/fern/pkg/kafka"
	"github.com/Ramsey-B/fern/pkg/logging"
	"github.com/Ramsey-B/fern/pkg/middleware"
	"github.com/Ramsey-B/fern/pkg/openai"
	"github.com/Ramsey-B/fern/pkg/provider"
	"github.com/Ramsey-B/fern/pkg/provider/factory"
	"github.com/Ramsey-B/fern/pkg/provider/httpapi"
	"github.com/Ramsey-B/fern/pkg/provider/markdown"
	"github.com/Ramsey-B/fern/pkg/redis"
	connectionroutes "github.com/Ramsey-B/fern/pkg/routes/connections"
	eventroutes "github.com/Ramsey-B/fern/pkg/routes/events"
	grouproutes "github.com/Ramsey-B/fern/pkg/routes/groups"
	knowledgeroutes "github.com/Ramsey-B/fern/pkg/routes/knowledge"
	"github.com/Ramsey-B/fern/pkg/routes/ontology"
	peopleroutes "github.com/Ramsey-B/fern/pkg/routes/people"
	thingroutes "github.com/Ramsey-B/fern/pkg/routes/things"
	"github.com/Ramsey-B/fern/pkg/startup"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/tracing/exporters"
)

// version is stamped by the build.
var version = "dev"

// dependency adapts a pair of funcs to the startup graph.
type dependency struct {
	name      string
	dependsOn []string
	start     func(ctx context.Context) error
	stop      func(ctx context.Context) error
}

func (d *dependency) GetName() string     { return d.name }
func (d *dependency) DependsOn() []string { return d.dependsOn }

func (d *dependency) Start(ctx context.Context) error {
	if d.start == nil {
		return nil
	}
	return d.start(ctx)
}

func (d *dependency) Stop(ctx context.Context) error {
	if d.stop == nil {
		return nil
	}
	return d.stop(ctx)
}

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := logging.NewLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("service exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger ectologger.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := initTracing(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	var (
		db          database.DB
		sqlxDB      *sqlx.DB
		producer    *kafka.Producer
		redisClient *redis.Client
		prov        provider.Provider
		checker     *health.Checker
		server      *echo.Echo
	)

	s := startup.NewStartup(logger, cfg.StartupMaxAttempts)

	providerDeps := []string{}

	if cfg.ProviderKind == factory.KindPostgres || ectolinq.Contains(cfg.ProviderChain, factory.KindPostgres) {
		s.AddDependency(&dependency{
			name: "database",
			start: func(ctx context.Context) error {
				db, sqlxDB, err = database.Connect(ctx, database.Config{
					Host:            cfg.DatabaseHost,
					Port:            cfg.DatabasePort,
					User:            cfg.DatabaseUserName,
					Password:        cfg.DatabasePassword,
					Name:            cfg.DatabaseName,
					SSLMode:         cfg.DatabaseSSLMode,
					MaxOpenConns:    cfg.DatabaseMaxOpenConns,
					MaxIdleConns:    cfg.DatabaseMaxIdleConns,
					ConnMaxLifetime: cfg.DatabaseConnMaxLifetime,
				}, logger)
				return err
			},
			stop: func(context.Context) error {
				if sqlxDB == nil {
					return nil
				}
				return sqlxDB.Close()
			},
		})

		s.AddDependency(&dependency{
			name:      "migrations",
			dependsOn: []string{"database"},
			start: func(context.Context) error {
				driver, err := migratepg.WithInstance(sqlxDB.DB, &migratepg.Config{})
				if err != nil {
					return fmt.Errorf("failed to build migration driver: %w", err)
				}
				ms := database.NewMigrationService(logger, &database.MigrationConfig{
					MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
					Version:             uint(cfg.DatabaseMigrationVersion),
					Force:               cfg.DatabaseMigrationForce,
				})
				return ms.Migrate(cfg.DatabaseName, driver)
			},
		})

		providerDeps = append(providerDeps, "database", "migrations")
	}

	if cfg.KafkaEnabled {
		s.AddDependency(&dependency{
			name: "kafka",
			start: func(context.Context) error {
				producer = kafka.NewProducer(kafka.ProducerConfig{
					Brokers:      cfg.KafkaBrokers,
					Topic:        cfg.KafkaOutputTopic,
					BatchSize:    cfg.KafkaBatchSize,
					BatchTimeout: time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
					RequiredAcks: cfg.KafkaRequiredAcks,
				}, logger)
				return nil
			},
			stop: func(context.Context) error {
				if producer == nil {
					return nil
				}
				return producer.Close()
			},
		})
		providerDeps = append(providerDeps, "kafka")
	}

	if cfg.RedisEnabled {
		s.AddDependency(&dependency{
			name: "redis",
			start: func(context.Context) error {
				redisClient, err = redis.NewClient(redis.Config{
					Host:     cfg.RedisHost,
					Port:     cfg.RedisPort,
					Password: cfg.RedisPassword,
					DB:       cfg.RedisDB,
				}, logger)
				return err
			},
			stop: func(context.Context) error {
				if redisClient == nil {
					return nil
				}
				return redisClient.Close()
			},
		})
		providerDeps = append(providerDeps, "redis")
	}

	s.AddDependency(&dependency{
		name:      "provider",
		dependsOn: providerDeps,
		start: func(context.Context) error {
			prov, err = factory.Configure(factory.Settings{
				Kind:  cfg.ProviderKind,
				Chain: cfg.ProviderChain,
				HTTP: httpapi.Config{
					BaseURL:  cfg.ProviderBaseURL,
					APIKey:   cfg.ProviderAPIKey,
					CacheTTL: cfg.ProviderCacheTTL,
				},
				Markdown:   markdown.Config{ContentDir: cfg.ProviderContentDir},
				Postgres:   buildStore(cfg, db, producer, logger),
				HTTPClient: httpclient.NewClient(httpclient.DefaultConfig(), logger),
				Cache:      redisClient,
				Logger:     logger,
			})
			return err
		},
	})

	s.AddDependency(&dependency{
		name:      "http-server",
		dependsOn: []string{"provider"},
		start: func(context.Context) error {
			checker = health.NewChecker(sqlxDB, redisClient, prov, version)
			server, err = buildServer(cfg, logger, prov, checker)
			if err != nil {
				return err
			}
			go func() {
				if err := server.Start(fmt.Sprintf(":%d", cfg.Port)); err != nil && err != http.ErrServerClosed {
					logger.WithError(err).Error("http server stopped unexpectedly")
					cancel()
				}
			}()
			return nil
		},
		stop: func(ctx context.Context) error {
			if server == nil {
				return nil
			}
			return server.Shutdown(ctx)
		},
	})

	if err := s.Start(ctx); err != nil {
		return fmt.Errorf("startup failed: %w", err)
	}
	checker.SetReady(true)
	logger.WithFields(map[string]any{
		"port":     cfg.Port,
		"provider": prov.Name(),
		"version":  version,
	}).Info("fern is ready")

	<-ctx.Done()
	logger.Info("shutting down")
	checker.SetReady(false)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()

	if err := s.Stop(stopCtx); err != nil {
		logger.WithError(err).Error("shutdown finished with errors")
	}
	return shutdownTracing(stopCtx)
}

// buildStore assembles the postgres provider. It returns nil when the
// database was never connected, which the factory reports as a
// configuration error if the postgres backend is actually selected.
func buildStore(cfg *config.Config, db database.DB, producer *kafka.Producer, logger ectologger.Logger) provider.Provider {
	if db == nil {
		return nil
	}

	var publisher store.Publisher
	if producer != nil {
		publisher = producer
	}

	var embedder store.Embedder
	if cfg.OpenAIAPIKey != "" {
		e, err := openai.NewEmbedder(openai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			BaseURL: cfg.OpenAIBaseURL,
			Model:   cfg.OpenAIEmbeddingModel,
		}, logger)
		if err != nil {
			logger.WithError(err).Warn("embedder disabled")
		} else {
			embedder = e
		}
	}

	return store.New(
		db,
		group.NewRepository(db, logger),
		thing.NewRepository(db, logger),
		connection.NewRepository(db, logger),
		event.NewRepository(db, logger),
		knowledge.NewRepository(db, logger),
		publisher,
		embedder,
		logger,
		store.Config{PermissionsEnabled: cfg.PermissionsEnabled},
	)
}

func buildServer(cfg *config.Config, logger ectologger.Logger, prov provider.Provider, checker *health.Checker) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = time.Duration(cfg.HttpServerReadTimeoutSeconds) * time.Second
	e.Server.WriteTimeout = time.Duration(cfg.HttpServerWriteTimeoutSeconds) * time.Second
	e.Server.IdleTimeout = time.Duration(cfg.HttpServerIdleTimeoutSeconds) * time.Second
	e.HTTPErrorHandler = middleware.Error(logger)

	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: cfg.AllowMethods,
	}))
	if cfg.TracingEnabled {
		e.Use(otelecho.Middleware(cfg.AppName))
	}
	e.Use(middleware.Metrics())
	e.Use(middleware.Context())
	e.Use(middleware.Logger(logger))

	e.GET("/healthz", checker.LivenessHandler)
	e.GET("/readyz", checker.ReadinessHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	auth := middleware.TestAuth()
	if cfg.AuthEnabled {
		var err error
		auth, err = middleware.Authentication(logger, cfg.AuthIssuerURL, cfg.AuthClientID)
		if err != nil {
			return nil, fmt.Errorf("failed to build authentication middleware: %w", err)
		}
	}

	api := e.Group("/api/v1", auth)
	grouproutes.NewHandler(prov, logger).RegisterRoutes(api.Group("/groups"))
	peopleroutes.NewHandler(prov, logger).RegisterRoutes(api.Group("/people"))
	thingroutes.NewHandler(prov, logger).RegisterRoutes(api.Group("/things"))
	connectionroutes.NewHandler(prov, logger).RegisterRoutes(api.Group("/connections"))
	eventroutes.NewHandler(prov, logger).RegisterRoutes(api.Group("/events"))
	knowledgeroutes.NewHandler(prov, logger).RegisterRoutes(api.Group("/knowledge"))
	ontology.NewHandler().RegisterRoutes(api.Group("/ontology"))

	return e, nil
}

func initTracing(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	exporter := "none"
	if cfg.TracingEnabled {
		exporter = cfg.TracingExporter
	}

	otlp := exporters.DefaultOTLPConfig()
	if cfg.TracingEndpoint != "" {
		otlp.Endpoint = cfg.TracingEndpoint
	}

	return tracing.Init(ctx, tracing.Config{
		ServiceName: cfg.AppName,
		Exporter:    exporter,
		OTLP:        otlp,
	})
}
