// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/hexfall/hexfall/internal/game"
	"github.com/hexfall/hexfall/internal/handlers"
	"github.com/hexfall/hexfall/internal/session"
	"github.com/hexfall/hexfall/internal/store"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	dataDir := os.Getenv("HEXFALL_DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	st, err := store.Open(dataDir, logger)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}

	registry := session.NewRegistry()
	coord := game.NewCoordinator(game.DefaultConfig(), registry, st, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	coord.Run(ctx)

	srv := handlers.NewServer(logger, registry, coord, st)

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, srv.Routes()); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
