package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cp_tracker/internal/api"
	"cp_tracker/internal/app/service"
	"cp_tracker/internal/common/security"
	"cp_tracker/internal/domain/repository"
	"cp_tracker/internal/platform/config"
	"cp_tracker/internal/platform/database"
	"cp_tracker/internal/platform/judge"
	"cp_tracker/internal/platform/kv"
	"cp_tracker/internal/platform/logger"

	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	config.Load()

	log, err := logger.New(config.AppConfig.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("configuration loaded", zap.String("port", config.AppConfig.APIPort))

	// 2. Initialize JWT
	security.InitJWT()

	// 3. Initialize Database
	if err := database.Connect(); err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer database.Close()

	migrateCtx, migrateCancel := context.WithTimeout(context.Background(), 30*time.Second)
	err = database.Migrate(migrateCtx, database.DB)
	migrateCancel()
	if err != nil {
		log.Fatal("schema migration failed", zap.Error(err))
	}
	log.Info("database ready")

	// 4. Initialize Redis
	if err := kv.ConnectRedis(); err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}
	defer kv.CloseRedis()
	log.Info("redis connected")

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	problemRepo := repository.NewPgProblemRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)
	sessionRepo := repository.NewRedisSessionRepository(kv.RDB)
	lockRepo := repository.NewRedisLockRepository(kv.RDB)

	// 6. Initialize Services
	cf := judge.NewClient(
		config.AppConfig.CodeforcesAPIURL,
		config.AppConfig.CodeforcesTimeout,
		config.AppConfig.CodeforcesMinInterval,
		log.Named("codeforces"),
	)
	authService := service.NewAuthService(userRepo, sessionRepo, log.Named("auth"))
	services := api.Services{
		Auth:        authService,
		Problems:    service.NewProblemService(problemRepo, database.DB, log.Named("problems")),
		Submissions: service.NewSubmissionService(submissionRepo, problemRepo, database.DB, log.Named("submissions")),
		Sync: service.NewSyncService(database.DB, userRepo, problemRepo, submissionRepo, lockRepo, cf,
			config.AppConfig.SyncLockTTL, log.Named("sync")),
		Leaderboard: service.NewLeaderboardService(submissionRepo),
		Judge:       cf,
	}

	// 7. Seed the administrator account
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	_, err = authService.EnsureAdmin(seedCtx, config.AppConfig.AdminUsername, config.AppConfig.AdminPassword)
	seedCancel()
	if err != nil {
		log.Fatal("admin bootstrap failed", zap.Error(err))
	}

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(log, sessionRepo, services)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("could not listen", zap.String("addr", server.Addr), zap.Error(err))
		}
	}()

	<-stop

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
		return
	}
	log.Info("server stopped gracefully")
}
