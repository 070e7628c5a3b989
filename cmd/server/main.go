package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/MrRookie-AIR/PushupsbyArduino/custom_errors"
	"github.com/MrRookie-AIR/PushupsbyArduino/jobmanager"
	"github.com/MrRookie-AIR/PushupsbyArduino/types/config"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if custom_errors.IsValidation(err) {
			log.Printf("[config] %v", err)
			flag.Usage()
			os.Exit(2)
		}
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := jobmanager.RunServer(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}
