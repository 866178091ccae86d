package main

import (
	"log"

	"github.com/spergel/translation-stuff-sub001/internal/bootstrap"
	"github.com/spergel/translation-stuff-sub001/internal/shared/config"
	"github.com/spergel/translation-stuff-sub001/internal/shared/server"
)

func main() {
	cfg := config.Load()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap build: %v", err)
	}

	addr := server.Addr(cfg.Port)
	log.Printf("Starting API server on %s", addr)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
