// Command provider runs fake upstream APIs for local development:
// lodging (hotels1, hotels2), flights (amadeus), places and directions
// (google) and encyclopedia summaries (wikipedia).
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

	"go.uber.org/zap"
)

func main() {
	port := getEnv("PORT", "9001")
	providerType := getEnv("PROVIDER_TYPE", "hotels1")

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	mux, err := newMux(providerType, logger)
	if err != nil {
		logger.Fatal("unknown provider type", zap.String("type", providerType))
	}
	logger.Info("starting provider", zap.String("type", providerType), zap.String("port", port))

	addr := ":" + port
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}

// newMux returns the routes of one fake provider plus /healthz.
func newMux(providerType string, logger *zap.Logger) (*http.ServeMux, error) {
	mux := http.NewServeMux()
	switch providerType {
	case "hotels1":
		mux.Handle("GET /search", newHotels1(logger))
	case "hotels2":
		mux.Handle("GET /search", newHotels2(logger))
	case "amadeus":
		newAmadeus(logger).routes(mux)
	case "google":
		newGoogle(logger).routes(mux)
	case "wikipedia":
		newWikipedia(logger).routes(mux)
	default:
		return nil, fmt.Errorf("unknown provider type %q", providerType)
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.Error("failed to write healthz response", zap.Error(err))
		}
	})
	return mux, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
