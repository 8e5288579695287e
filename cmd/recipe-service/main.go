package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mealforge/recipe-service/internal/analytics"
	"github.com/mealforge/recipe-service/internal/api"
	"github.com/mealforge/recipe-service/internal/events"
	"github.com/mealforge/recipe-service/internal/repository"
	"github.com/mealforge/recipe-service/migrations"
	"github.com/mealforge/recipe-service/pkg/configx"
	"github.com/mealforge/recipe-service/pkg/dbx"
	"github.com/mealforge/recipe-service/pkg/dbx/pgxdb"
	"github.com/mealforge/recipe-service/pkg/logx"
	"github.com/mealforge/recipe-service/pkg/messaging/pubsub"
	"github.com/mealforge/recipe-service/pkg/migratex"
	"github.com/mealforge/recipe-service/pkg/profiling"
	"github.com/mealforge/recipe-service/pkg/serverx/fibersrv"
	"github.com/mealforge/recipe-service/pkg/shutdown"
	"github.com/mealforge/recipe-service/pkg/startupx"
)

const eventsBatchSize = 50

type ServiceConfig struct {
	configx.BaseConfig `mapstructure:",squash"`
}

func main() {
	rootCtx := context.Background()

	config := loadConfiguration()

	logx.SetupLogger(config)

	if profilePath := os.Getenv("CPU_PROFILE"); profilePath != "" {
		stopProfile := profiling.StartCPUProfile(profilePath)
		defer stopProfile()
	}

	dbConf := buildConnConfig(config)

	// The server must not accept traffic before the database answers and the
	// schema is current: wait-for-db, then migrate, then serve.
	dbPinger := pgxdb.NewPinger(dbConf)
	runStartupSequence(rootCtx, config, dbConf, dbPinger)

	db := pgxdb.SetupPostgresDbManager(rootCtx, dbConf)

	publisher := setupEventPublisher(rootCtx, config)

	handlers := api.Handlers{
		Users:   api.NewUserHandler(repository.NewUserRepository(db), repository.NewTokenRepository(db)),
		Recipes: api.NewRecipeHandler(repository.NewRecipeRepository(db), publisher),
		Catalog: api.NewCatalogHandler(repository.NewCatalogRepository(db)),
		Health:  api.NewHealthHandler(dbPinger),
		Tokens:  repository.NewTokenRepository(db),
	}

	serverManager := fibersrv.NewFiberServer(config)

	serverManager.Setup(rootCtx, func(appServer *fiber.App) {
		api.RegisterRoutes(appServer, handlers)
	})

	serverManager.RunAsync()

	logx.GetLogger().LogInfo(rootCtx, "Startup sequence complete, serving on port "+config.GetServerConfig().Port)

	shutdown.WaitForShutdown(rootCtx, config.GetStartupConfig().ShutdownTimeoutMilli, func(timeoutCtx context.Context) {
		serverManager.Shutdown(timeoutCtx)
		publisher.Close(timeoutCtx)
		db.CloseDbConnPool()
	})
}

func loadConfiguration() *ServiceConfig {
	var cfg ServiceConfig

	err := configx.LoadConfigFromPathForEnv("./config", &cfg)
	if err != nil {
		log.Panicf("error loading property files: %+v", err)
	}

	return &cfg
}

func buildConnConfig(config *ServiceConfig) dbx.ConnConfig {
	dbConfig := config.GetDatabaseConfig()

	return dbx.ConnConfig{
		IsLocalEnv: config.IsLocalEnvironment(),
		Host:       dbConfig.Host,
		Port:       dbConfig.Port,
		DBName:     dbConfig.Name,
		User:       dbConfig.User,
		Password:   dbConfig.Password,
		MaxConn:    dbConfig.MaxConn,
	}
}

// runStartupSequence - gate on database readiness, then apply migrations.
// Any failure is fatal: serving with an unreachable database or a stale
// schema is worse than not starting.
func runStartupSequence(ctx context.Context, config *ServiceConfig, dbConf dbx.ConnConfig, dbPinger startupx.Pinger) {
	startupConfig := config.GetStartupConfig()

	gate := startupx.NewGate("postgres", dbPinger, startupx.RetryPolicy{
		Interval:    time.Duration(startupConfig.RetryIntervalMilli) * time.Millisecond,
		MaxAttempts: startupConfig.MaxAttempts,
	})

	migrator := migratex.NewRunner(dbConf, migrations.FS, ".")

	sequence := startupx.NewSequence("startup",
		startupx.Step{Name: "wait-for-db", Run: gate.Wait},
		migrator.Step(),
	)

	if err := sequence.Run(ctx); err != nil {
		logx.GetLogger().LogFatal(ctx, "Startup sequence failed", err)
	}
}

// setupEventPublisher - build the event fan-out from configuration. With
// events disabled the publisher has no sinks and every emit is a no-op.
func setupEventPublisher(ctx context.Context, config *ServiceConfig) *events.Publisher {
	eventsConfig := config.GetEventsConfig()
	if eventsConfig == nil || !eventsConfig.Enabled {
		return events.NewPublisher()
	}

	gcpConfig := config.GetGcpConfig()

	buffered, err := pubsub.NewBufferedPublisherWithRetryFactory(ctx, gcpConfig.ProjectId, eventsBatchSize, nil, 3, nil)
	if err != nil {
		logx.GetLogger().LogFatal(ctx, "Error initializing event publisher", err)
	}

	sinks := []events.Sink{events.NewPubsubSink(buffered, eventsConfig.Topic)}

	if eventsConfig.ArchiveDataset != "" && eventsConfig.ArchiveTable != "" {
		archive, err := analytics.NewBigQuerySink(ctx, gcpConfig.ProjectId, eventsConfig.ArchiveDataset, eventsConfig.ArchiveTable)
		if err != nil {
			logx.GetLogger().LogFatal(ctx, "Error initializing analytics sink", err)
		}

		sinks = append(sinks, archive)
	}

	return events.NewPublisher(sinks...)
}
