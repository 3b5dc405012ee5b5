package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/config"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/database"
	httpapi "github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/http"
	applog "github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/logger"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/repository"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/service"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/store"
	"github.com/Icefuse-Networks/ifn-app-kits-sub006/internal/stream"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := applog.NewLogger(cfg.Log.Level, cfg.Log.Format, "kits-data")
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		logger.Fatal("connect postgres failed", zap.Error(err))
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()
	kv := store.NewRedisKV(redisClient)

	// repositories
	configsRepo := repository.NewPostgresConfigsRepository(db)
	versionsRepo := repository.NewPostgresVersionsRepository(db)
	mappingsRepo := repository.NewPostgresMappingsRepository(db)
	serversRepo := repository.NewPostgresServersRepository(db)
	wipesRepo := repository.NewPostgresWipesRepository(db)
	schedulesRepo := repository.NewPostgresSchedulesRepository(db)
	authRepo := repository.NewPostgresAuthRepository(db)
	auditRepo := repository.NewPostgresAuditRepository(db)

	// Dev bootstrap: 保证后台有一个可用的 SystemAdmin 登录
	if os.Getenv("SEED_SYSADMIN") != "false" {
		seedCtx, seedCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := authRepo.UpsertUser(seedCtx, "sysadmin", service.HashPassword("ChangeMe123!"), "SystemAdmin"); err != nil {
			logger.Warn("seed sysadmin failed", zap.Error(err))
		}
		seedCancel()
	}

	// services
	var events *stream.Publisher
	if cfg.Events.StreamEnabled {
		events = stream.NewPublisher(redisClient, cfg.Events.StreamName, logger)
	} else {
		events = stream.NewPublisher(nil, cfg.Events.StreamName, logger)
	}
	notifier := service.NewWebhookNotifier(cfg.Events.WebhookURL, logger)
	audit := service.NewAuditService(auditRepo, logger)
	cache := service.NewResolveCache(kv, time.Duration(cfg.Resolver.CacheTTL)*time.Second, logger)

	versionSvc := service.NewVersionService(configsRepo, versionsRepo, cache, events, notifier, audit, cfg.Retention.MaxVersions, logger)
	resolverSvc := service.NewResolverService(serversRepo, mappingsRepo, versionsRepo, wipesRepo, cache, logger)
	mappingSvc := service.NewMappingService(mappingsRepo, serversRepo, cache, audit, logger)
	serverSvc := service.NewServerService(serversRepo, audit, logger)
	wipeSvc := service.NewWipeService(wipesRepo, serversRepo, cache, events, notifier, audit, logger)
	scheduler := service.NewWipeScheduler(schedulesRepo, serversRepo, audit, logger)
	authSvc := service.NewAuthService(authRepo, []byte(cfg.Auth.JWTSecret), time.Duration(cfg.Auth.TokenTTL)*time.Minute)

	// router
	router := httpapi.NewRouter(logger)
	router.RegisterDownloadRoutes(httpapi.NewDownloadHandler(resolverSvc, logger))
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(authSvc, logger))
	router.RegisterAdminRoutes(
		authSvc,
		httpapi.NewConfigHandler(versionSvc, logger),
		httpapi.NewMappingHandler(mappingSvc, logger),
		httpapi.NewServerHandler(serverSvc, wipeSvc, scheduler, logger),
	)

	srv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("kits-data listening", zap.String("addr", cfg.HTTP.Addr))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("http server stopped", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
