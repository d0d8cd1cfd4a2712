package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/vertiport_gps/internal/app"
	"github.com/relabs-tech/vertiport_gps/internal/config"
)

func main() {
	configPath := flag.String("config", "./config.yaml", "path to configuration file")
	flag.Parse()

	log.Println("starting vertiport-gps OLED display (MQTT subscriber)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunDisplay(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
