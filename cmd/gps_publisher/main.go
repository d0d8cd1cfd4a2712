package main

import (
	"flag"
	"log"

	"github.com/relabs-tech/vertiport_gps/internal/app"
	"github.com/relabs-tech/vertiport_gps/internal/config"
)

func main() {
	configPath := flag.String("config", "./config.yaml", "path to configuration file")
	mock := flag.Bool("mock", false, "use the simulated NMEA source instead of the serial port")
	flag.Parse()

	log.Println("starting vertiport-gps publisher (NMEA → MQTT)")

	// Load configuration
	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.RunGPSPublisher(*mock); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
