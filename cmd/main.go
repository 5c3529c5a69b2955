package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/suteetoe/tenantgate/internal/events"
	"github.com/suteetoe/tenantgate/internal/repository"
	"github.com/suteetoe/tenantgate/internal/routegen"
	"github.com/suteetoe/tenantgate/internal/seed"
	"github.com/suteetoe/tenantgate/internal/server"
	"github.com/suteetoe/tenantgate/pkg/config"
	"github.com/suteetoe/tenantgate/pkg/database"
	"github.com/suteetoe/tenantgate/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	conf, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	err = logger.InitLogger(&logger.LogConfig{
		Level:       conf.Log.Level,
		Environment: conf.Server.Env,
		ServiceName: conf.ServiceName,
	})
	if err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting tenantgate", conf.LogConfig()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connection
	db, err := database.InitDB(ctx, &conf.DB)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	tenants := repository.NewGormTenantRepository(db)
	logs := repository.NewGormLogRepository(db)
	metaUsers := repository.NewGormMetaUserRepository(db)

	// Seeding and the first route generation are best effort; the server
	// still starts so operators can fix data through the meta-admin API
	seeder := seed.NewSeeder(tenants, logs, metaUsers)
	if err := seeder.Run(ctx, conf.Routes.BaseDomain, conf.Auth.MetaAdmin); err != nil {
		log.Error("Failed to seed database", zap.Error(err))
	}

	generator := routegen.NewGenerator(tenants, conf.Routes, conf.IsProduction())
	if err := generator.Generate(ctx); err != nil {
		log.Error("Failed to generate proxy routes", zap.Error(err))
	}

	// Tenant events feed the single route file writer. It outlives the
	// signal context so mutations drained during shutdown still reach it.
	bus := events.NewBus(log)
	regenCtx, cancelRegen := context.WithCancel(context.Background())
	defer cancelRegen()

	messages, err := bus.Subscribe(regenCtx)
	if err != nil {
		log.Fatal("Failed to subscribe to tenant events", zap.Error(err))
	}
	regenerator := routegen.NewRegenerator(generator, conf.Routes.Debounce)
	regenDone := make(chan struct{})
	go func() {
		defer close(regenDone)
		regenerator.Run(regenCtx, messages)
	}()

	e := server.New(server.Deps{
		Config:    conf,
		Tenants:   tenants,
		Logs:      logs,
		Publisher: bus,
	})

	go func() {
		log.Info("Starting tenantgate on port " + conf.Server.Port)
		if err := e.Start(":" + conf.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("Failed to shut down HTTP server", zap.Error(err))
	}

	// Closing the bus closes the subscription; Run flushes and returns
	if err := bus.Close(); err != nil {
		log.Error("Failed to close event bus", zap.Error(err))
	}
	<-regenDone
}
