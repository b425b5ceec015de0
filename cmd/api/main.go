package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/yjlabs/mimic/backend/internal/config"
	"github.com/yjlabs/mimic/backend/internal/handler"
	"github.com/yjlabs/mimic/backend/internal/service/ai"
	"github.com/yjlabs/mimic/backend/internal/service/chat"
	"github.com/yjlabs/mimic/backend/internal/service/events"
	"github.com/yjlabs/mimic/backend/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	kv, cleanup, err := newStore(cfg.Store)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer cleanup()

	generator, err := ai.New(ctx, cfg.AI)
	if err != nil {
		log.Printf("warning: failed to initialize generation client: %v", err)
		generator = nil
	}
	if generator == nil {
		log.Println("generation client unconfigured, sends will answer with the fallback message")
	} else {
		log.Printf("generation client initialized, provider=%s", cfg.AI.Provider)
	}

	hub := events.NewHub()
	controller := chat.NewController(kv, generator, hub)

	router := handler.NewRouter(controller, hub)

	startServer(ctx, cfg.Server, router)
}

func newStore(cfg config.StoreConfig) (store.Store, func(), error) {
	if cfg.Driver == config.StoreDriverMemory {
		return store.NewMemoryStore(), func() {}, nil
	}

	s, err := store.NewSQLiteStore(cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	return s, func() { _ = s.Close() }, nil
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("MIMIC backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
