package main

import (
	"flag"
	"log"
	"os"

	"AlertSlope/internal/di"
	"AlertSlope/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s band=%s min_hist_length=%d kafka=%t",
		cfg.Environment, cfg.Slope.TargetBand, cfg.Slope.MinHistLength, cfg.Kafka.Enabled)

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
