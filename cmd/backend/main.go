package main

import (
	"log"

	"docscan-backend/internal/bootstrap"
	"docscan-backend/internal/ingest/server"
	"docscan-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.BuildBackend(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	addr := server.Addr(cfg.BackendPort)
	log.Printf("Starting ingestion backend on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
