package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/mandaditos/internal/buildinfo"
	"github.com/dmitrijs2005/mandaditos/internal/client/cli"
	"github.com/dmitrijs2005/mandaditos/internal/client/config"
	"github.com/dmitrijs2005/mandaditos/internal/logging"
)

func main() {

	buildinfo.Print(os.Stdout)

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, closer := logging.NewFileLogger(logging.FileOptions{
		Path:       cfg.LogFile,
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 28,
		Level:      cfg.LogLevel,
	})
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
