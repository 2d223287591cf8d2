package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeclash/internal/api"
	"codeclash/internal/api/middleware"
	"codeclash/internal/app/service"
	"codeclash/internal/common/security"
	"codeclash/internal/domain/repository"
	"codeclash/internal/platform/cache"
	"codeclash/internal/platform/config"
	"codeclash/internal/platform/database"
	"codeclash/internal/platform/judge"
	"codeclash/internal/platform/openrouter"

	log "github.com/sirupsen/logrus"
)

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	config.Load()
	security.InitJWT()

	db := database.Connect()
	defer database.Close(db)

	redisClient := cache.Connect()
	defer cache.Close(redisClient)

	cfg := config.AppConfig

	userRepo := repository.NewPgUserRepository(db)
	problemRepo := repository.NewPgProblemRepository(db)
	contestRepo := repository.NewPgContestRepository(db)
	teamRepo := repository.NewPgTeamRepository(db)
	submissionRepo := repository.NewPgSubmissionRepository(db)
	reviewRepo := repository.NewPgReviewRepository(db)
	participantRepo := repository.NewPgParticipantRepository(db)
	chatRepo := repository.NewPgChatRepository(db)
	statsRepo := repository.NewPgStatsRepository(db)

	judgeClient := judge.NewClient(cfg.Judge0URL, cfg.Judge0Key, cfg.Judge0Host,
		cfg.Judge0Timeout, cfg.Judge0MockFallback)
	completionClient := openrouter.NewClient(cfg.OpenRouterKey, cfg.OpenRouterModel, cfg.OpenRouterTimeout)

	services := api.Services{
		Auth:        service.NewAuthService(userRepo),
		User:        service.NewUserService(userRepo, submissionRepo),
		Problem:     service.NewProblemService(problemRepo),
		Contest:     service.NewContestService(contestRepo, problemRepo, participantRepo),
		Team:        service.NewTeamService(db, teamRepo, cfg.TeamMaxSize),
		Submission:  service.NewSubmissionService(submissionRepo),
		Execution:   service.NewExecutionService(judgeClient),
		Review:      service.NewReviewService(reviewRepo),
		Participant: service.NewParticipantService(participantRepo, contestRepo),
		Chat:        service.NewChatService(chatRepo, completionClient, cfg.ChatMessageCap),
		Admin:       service.NewAdminService(statsRepo),
	}

	proxyLimiter := middleware.NewRateLimiter(redisClient, cfg.ProxyRateLimit, cfg.ProxyRateWindow)
	router := api.NewRouter(services, proxyLimiter)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Infof("server starting on port %s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("could not listen on %s: %v", cfg.APIPort, err)
		}
	}()

	<-stop

	log.Info("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server shutdown failed: %v", err)
	}
	log.Info("server stopped gracefully")
}
