package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/inkveil/engine/internal/api"
	"github.com/inkveil/engine/internal/config"
	"github.com/inkveil/engine/internal/content"
	"github.com/inkveil/engine/internal/policystore"
	"github.com/inkveil/engine/internal/store"
)

func main() {
	logger := log.New(os.Stdout, "[SERVER] ", log.LstdFlags)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("config: %v", err)
	}

	db, err := store.NewSQLiteDB(cfg.DatabasePath)
	if err != nil {
		logger.Fatalf("open database %s: %v", cfg.DatabasePath, err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatalf("migrate: %v", err)
	}

	policies, err := policystore.New(cfg.DatabasePath)
	if err != nil {
		logger.Fatalf("open policy store %s: %v", cfg.DatabasePath, err)
	}
	defer policies.Close()

	if err := policies.Migrate(); err != nil {
		logger.Fatalf("migrate policies: %v", err)
	}

	server := api.NewServer(db, policies, content.Default())
	httpServer := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.Routes(),
	}

	go func() {
		logger.Printf("listening addr=%s db=%s version=%s", cfg.ListenAddr, cfg.DatabasePath, api.EngineVersion)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("serve: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Printf("shutting down timeout=%s", cfg.ShutdownTimeout)
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Printf("shutdown: %v", err)
	}
}
