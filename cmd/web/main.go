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

	"merch-forecast/internal/config"
	"merch-forecast/internal/logging"
	"merch-forecast/internal/middleware"
	"merch-forecast/internal/scratch"
	"merch-forecast/internal/tourdata"
	"merch-forecast/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Init(cfg.Logger)

	store, err := scratch.New(cfg.Web.ScratchDir)
	if err != nil {
		log.Fatalf("open scratch store: %v", err)
	}
	defer store.Close()

	sweepScratch(store, cfg.Web.ScratchMaxAge)
	stopSweep := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sweepScratch(store, cfg.Web.ScratchMaxAge)
			case <-stopSweep:
				return
			}
		}
	}()

	client := web.NewClient(cfg.Web.APIBaseURL, cfg.Web.Timeout, cfg.Web.RetryAttempts, cfg.Web.RetryInterval)

	// Tour data feed (optional - based on config)
	var tours *tourdata.Client
	if cfg.Web.TourDataURL != "" {
		genres := map[string]string{}
		if cfg.Web.GenreMapPath != "" {
			f, err := os.Open(cfg.Web.GenreMapPath)
			if err != nil {
				log.Fatalf("open genre map: %v", err)
			}
			genres, err = tourdata.LoadGenreMap(f)
			f.Close()
			if err != nil {
				log.Fatalf("read genre map: %v", err)
			}
		}
		tours = tourdata.NewClient(cfg.Web.TourDataURL, genres, cfg.Web.Timeout, cfg.Web.TourCacheTTL)
		log.Info("tour data feed enabled")
	} else {
		log.Info("tour data feed disabled")
	}

	srv := web.NewServer(client, store, tours)

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())
	srv.Register(router)

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	httpSrv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting frontend on %s", addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")
	close(stopSweep)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

// sweepScratch drops staged result files older than maxAge. Runs once at
// startup and then hourly for as long as the process lives.
func sweepScratch(store *scratch.Store, maxAge time.Duration) {
	if n, err := store.Sweep(context.Background(), maxAge); err != nil {
		log.WithError(err).Warn("sweep scratch store")
	} else if n > 0 {
		log.Infof("swept %d stale result files", n)
	}
}
