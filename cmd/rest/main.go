package main

import (
	"context"
	"log"

	"github.com/on-par/vemorable-sub000/internal/bootstrap"
	"github.com/on-par/vemorable-sub000/internal/config"
	"github.com/on-par/vemorable-sub000/internal/server"
	"github.com/on-par/vemorable-sub000/internal/tracer"
	"github.com/on-par/vemorable-sub000/pkg/database"
)

func main() {
	cfg := config.Load()

	shutdownTracer := tracer.InitTracer()
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Warning: tracer shutdown failed: %v", err)
		}
	}()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	container := bootstrap.NewContainer(db, cfg)
	defer container.Logger.Sync()

	srv := server.New(cfg, container)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}
