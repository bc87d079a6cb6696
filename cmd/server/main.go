package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/mandaditos/internal/buildinfo"
	"github.com/dmitrijs2005/mandaditos/internal/logging"
	"github.com/dmitrijs2005/mandaditos/internal/server"
	"github.com/dmitrijs2005/mandaditos/internal/server/config"
)

func main() {

	buildinfo.Print(os.Stdout)

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := logging.NewJSONLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
