// @title Tournament Portal API
// @version 1.0
// @description Публичный портал турнира: расписание, таблицы групп и турнира, статистика игроков.
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Dosada05/tournament-portal/brackets"
	"github.com/Dosada05/tournament-portal/config"
	"github.com/Dosada05/tournament-portal/db"
	_ "github.com/Dosada05/tournament-portal/docs"
	"github.com/Dosada05/tournament-portal/handlers"
	"github.com/Dosada05/tournament-portal/live"
	"github.com/Dosada05/tournament-portal/middleware"
	"github.com/Dosada05/tournament-portal/repositories"
	api "github.com/Dosada05/tournament-portal/routes"
	"github.com/Dosada05/tournament-portal/services"
	"github.com/Dosada05/tournament-portal/standings"
	"github.com/Dosada05/tournament-portal/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("live_mode", cfg.LiveMode),
		slog.String("standings_mode", cfg.StandingsMode),
	)

	eligibility, err := standings.ParseEligibility(cfg.StandingsEligibility)
	if err != nil {
		logger.Error("invalid standings eligibility", slog.Any("error", err))
		os.Exit(1)
	}

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Архив итоговых таблиц (Cloudflare R2) опционален
	var archiveStore storage.ObjectStore
	if cfg.ArchiveEnabled() {
		archiveStore, err = storage.NewCloudflareR2Store(ctx, storage.CloudflareR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 store", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 archive store initialized")
	} else {
		logger.Info("standings archive disabled: R2 is not configured")
	}

	// Инициализация репозиториев
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	stageRepo := repositories.NewPostgresStageRepository(dbConn)
	groupRepo := repositories.NewPostgresGroupRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	lineupRepo := repositories.NewPostgresLineupRepository(dbConn)
	statRepo := repositories.NewPostgresPlayerStatRepository(dbConn)
	standingsRepo := repositories.NewPostgresStandingsRepository(dbConn)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	standingsService := services.NewStandingsService(standingsRepo, services.StandingsConfig{
		Derived:     cfg.StandingsMode == config.StandingsModeDerived,
		Eligibility: eligibility,
	}, logger)
	tournamentService := services.NewTournamentService(tournamentRepo, stageRepo)
	stageService := services.NewStageService(stageRepo, groupRepo, matchRepo)
	groupService := services.NewGroupService(groupRepo, stageRepo, matchRepo, brackets.NewRoundRobinGenerator(), logger)
	teamService := services.NewTeamService(teamRepo, playerRepo)
	playerService := services.NewPlayerService(playerRepo)
	playerStatsService := services.NewPlayerStatsService(statRepo)
	matchService := services.NewMatchService(matchRepo, lineupRepo, statRepo, playerRepo, standingsService, logger)
	archiveService := services.NewArchiveService(archiveStore, standingsService, standingsRepo, logger)
	logger.Info("services initialized")

	// Живое обновление таблиц
	hub := live.NewHub(logger)
	go hub.Run(ctx)

	var source live.ChangeSource
	if cfg.LiveMode == config.LiveModeNotify {
		notify := live.NewNotifySource(cfg.DatabaseURL, logger)
		go func() {
			if err := notify.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("change notifications stopped", slog.Any("error", err))
			}
		}()
		source = notify
	}
	manager := live.NewManager(hub, standingsService, live.ManagerConfig{
		Source:       source,
		PollInterval: cfg.PollInterval,
	}, logger)
	logger.Info("live standings started", slog.String("mode", cfg.LiveMode), slog.Duration("poll_interval", cfg.PollInterval))

	// Инициализация обработчиков HTTP
	router := chi.NewRouter()
	api.SetupRoutes(router, api.Handlers{
		Tournament: handlers.NewTournamentHandler(tournamentService, stageService),
		Stage:      handlers.NewStageHandler(stageService, groupService),
		Group:      handlers.NewGroupHandler(groupService),
		Team:       handlers.NewTeamHandler(teamService, playerService),
		Player:     handlers.NewPlayerHandler(playerService, playerStatsService),
		Match:      handlers.NewMatchHandler(matchService),
		Standings:  handlers.NewStandingsHandler(standingsService, archiveService),
		WebSocket:  handlers.NewWebSocketHandler(hub, cfg.CORSAllowedOrigins, logger),
		Health:     handlers.NewHealthHandler(dbConn, cfg.LiveMode),
	}, api.Options{
		JWTSecret:      []byte(cfg.JWTSecretKey),
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimiter:    middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst),
	})
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			manager.Close()
			cancel()
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
		} else {
			logger.Info("server shutdown complete")
		}
	}

	// Контроллеры останавливаются до хаба, чтобы не писать в закрытые комнаты
	manager.Close()
	cancel()
	logger.Info("application exited")
}
