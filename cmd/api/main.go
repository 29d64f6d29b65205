package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"amarka/internal/analytics"
	"amarka/internal/config"
	"amarka/internal/db"
	"amarka/internal/httpserver"
	cartrepo "amarka/internal/repository/cart"
	productrepo "amarka/internal/repository/product"
	promorepo "amarka/internal/repository/promo"
	settingsrepo "amarka/internal/repository/settings"
	cartsvc "amarka/internal/service/cart"
	promosvc "amarka/internal/service/promo"
	sessionsvc "amarka/internal/service/session"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	cartRepo := cartrepo.NewPostgres(dbpool, logger)
	productRepo := productrepo.NewPostgres(dbpool, logger)
	promoRepo := promorepo.NewPostgres(dbpool, logger)
	settingsRepo := settingsrepo.NewPostgres(dbpool, logger)

	dispatcher := analytics.NewDispatcher(analytics.NewPostgresRecorder(dbpool), logger, cfg.AnalyticsBuffer)
	defer dispatcher.Close()

	promoService := promosvc.New(promoRepo)
	sessionService := sessionsvc.New()
	cartService, err := cartsvc.New(cartRepo, productRepo, settingsRepo, promoService, dispatcher, logger, cfg.DefaultCurrency)
	if err != nil {
		logger.Fatalf("init cart service: %v", err)
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Carts:    cartService,
		Products: productRepo,
		Sessions: sessionService,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
