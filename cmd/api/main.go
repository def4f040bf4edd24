package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"merch-forecast/internal/artifact"
	"merch-forecast/internal/config"
	"merch-forecast/internal/handler"
	"merch-forecast/internal/logging"
	"merch-forecast/internal/middleware"
	"merch-forecast/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Init(cfg.Logger)

	// The bundle loads exactly once, before the listener opens. A request
	// can never observe a half-loaded model.
	store := artifact.NewStore(artifact.StoreConfig{
		CacheDir:      cfg.Model.CacheDir,
		Timeout:       cfg.Model.FetchTimeout,
		MaxRetries:    uint64(cfg.Model.FetchRetries),
		RetryInterval: cfg.Model.RetryInterval,
	})
	bundle, err := artifact.NewLoader(store).Load(context.Background(), cfg.Model.ManifestURI)
	if err != nil {
		log.Fatalf("load model bundle: %v", err)
	}

	predictUC := usecase.NewPredictUseCase(bundle)
	infoUC := usecase.NewModelInfoUseCase(bundle)
	h := handler.New(predictUC, infoUC)

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	api := router.Group("/api/v1")
	h.RegisterRoutes(api)

	router.GET("/healthz", h.Health)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting prediction api on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}
