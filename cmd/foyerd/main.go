// Command foyerd runs the foyer kiosk process in the foreground, for use
// under a process supervisor such as systemd.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"foyer/internal/config"
	"foyer/internal/kioskrun"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	logLevel := flag.String("log-level", "", "override the configured log level")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	if err := kioskrun.Run(context.Background(), cfg, kioskrun.Options{LogLevel: *logLevel}); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
