package main

import (
	"log"

	"docscan-backend/internal/bootstrap"
	"docscan-backend/internal/gateway"
	"docscan-backend/internal/shared/config"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.BuildGateway(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	addr := gateway.Addr(cfg.GatewayPort)
	log.Printf("Starting API gateway on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
