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

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "wellness-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	l, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger = l
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openLocalStore(ctx, cfg.LocalDBPath)
	if err != nil {
		return err
	}
	defer store.Close()
	logger.Info("local store ready", zap.String("path", cfg.LocalDBPath))

	var cloud cloudMirror = offlineCloud{}
	if cfg.CloudURL != "" {
		pool, err := getCloudPool(ctx, cfg.CloudURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		cloud = &pgCloud{pool: pool}
		logger.Info("cloud mirror pool ready")
	} else {
		logger.Warn("DB_URL not set, running without a cloud mirror")
	}

	h := newHandler(store, cloud, cfg.CloudSyncTimeout)
	defer h.reconciler.wait()

	// A device that is already signed in decides local-vs-cloud before the
	// first request is served.
	uid, _, err := store.session(ctx)
	if err != nil {
		return err
	}
	if uid != "" {
		rctx, cancel := context.WithTimeout(ctx, cfg.CloudSyncTimeout)
		_, err := h.reconciler.resolve(rctx, uid)
		cancel()
		if err != nil {
			return err
		}
	}

	router := gin.New()
	router.ContextWithFallback = true
	router.Use(gin.Recovery(), requestLogger())
	router.SetTrustedProxies(nil)
	h.registerRoutes(router)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
