package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/scoutlabs/venturescout-backend/internal/data/cache"
	"github.com/scoutlabs/venturescout-backend/internal/data/db"
	"github.com/scoutlabs/venturescout-backend/internal/data/repos"
	"github.com/scoutlabs/venturescout-backend/internal/handlers"
	"github.com/scoutlabs/venturescout-backend/internal/middleware"
	discovery "github.com/scoutlabs/venturescout-backend/internal/modules/discovery"
	"github.com/scoutlabs/venturescout-backend/internal/platform/envutil"
	"github.com/scoutlabs/venturescout-backend/internal/platform/gemini"
	"github.com/scoutlabs/venturescout-backend/internal/platform/logger"
	"github.com/scoutlabs/venturescout-backend/internal/platform/modelcfg"
	"github.com/scoutlabs/venturescout-backend/internal/server"
)

func main() {
	_ = godotenv.Load()

	logMode := envutil.String("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos...")
	sessionRepo := repos.NewSessionRepo(thePG, log)
	solutionRepo := repos.NewSolutionRepo(thePG, log)
	tagRepo := repos.NewTagRepo(thePG, log)
	documentRepo := repos.NewDocumentRepo(thePG, log)

	// Wall cache, optional
	var wall cache.WallCache
	wall, err = cache.NewRedisWallCache(log)
	if err != nil {
		log.Warn("Redis unavailable, wall served straight from Postgres", "error", err)
		wall = cache.NoopWallCache{}
	}

	// Model client and tiers
	ai, err := gemini.NewClient(log)
	if err != nil {
		log.Error("Could not init Gemini client", "error", err)
		os.Exit(1)
	}
	tiers, err := modelcfg.FromEnv()
	if err != nil {
		log.Error("Could not load model tiers", "error", err)
		os.Exit(1)
	}
	log.Info("Model tiers loaded",
		"discovery", tiers.Discovery,
		"suggestion", tiers.Suggestion,
		"documents", tiers.Documents)

	// Usecases
	uc := discovery.New(discovery.UsecasesDeps{
		DB:        thePG,
		Log:       log,
		AI:        ai,
		Tiers:     tiers,
		Sessions:  sessionRepo,
		Solutions: solutionRepo,
		Tags:      tagRepo,
		Documents: documentRepo,
	})

	// Handlers and middleware
	log.Info("Setting up handlers...")
	chatHandler := handlers.NewChatHandler(log, uc, wall)
	sessionHandler := handlers.NewSessionHandler(log, uc, sessionRepo, documentRepo, wall)
	authMiddleware := middleware.NewAuthMiddleware(log)

	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware: authMiddleware,
		ChatHandler:    chatHandler,
		SessionHandler: sessionHandler,
	})

	port := envutil.String("PORT", "8080")
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server listening", "port", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
	log.Info("Server stopped")
}
