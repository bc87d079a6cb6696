package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/mandaditos/internal/flagx"
)

// parseFlags populates Config fields from the flags it owns; see the
// package doc for the list.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-u", "-t", "-i", "-s", "-d", "-n", "-log", "-level"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.ServerURL, "u", cfg.ServerURL, "base URL of the HTTP document API")
	fs.StringVar(&cfg.Transport, "t", cfg.Transport, "transport: grpc or http")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	syncTimeout := fs.Int("s", int(cfg.SyncTimeout.Seconds()), "timeout of a single remote call (in seconds)")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database file")
	fs.StringVar(&cfg.DeviceName, "n", cfg.DeviceName, "device name")
	fs.StringVar(&cfg.LogFile, "log", cfg.LogFile, "log file")
	fs.StringVar(&cfg.LogLevel, "level", cfg.LogLevel, "log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
		case "s":
			cfg.SyncTimeout = time.Duration(*syncTimeout) * time.Second
		}
	})
}
