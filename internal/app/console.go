package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/vertiport_gps/internal/config"
	"github.com/relabs-tech/vertiport_gps/internal/gps"
)

// RunConsole subscribes to the GPS topics and prints each message as one
// line, for watching a receiver from a shell.
func RunConsole() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTT.Broker).
		SetClientID(cfg.MQTT.ClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTT.Broker)

	// Subscribe to the fix topic
	fixToken := client.Subscribe(cfg.Topics.Position, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var f gps.Fix
		if err := json.Unmarshal(msg.Payload(), &f); err != nil {
			log.Printf("console: fix unmarshal error: %v", err)
			return
		}

		speed, course := 0.0, 0.0
		if f.SpeedKnots != nil {
			speed = *f.SpeedKnots
		}
		if f.CourseDeg != nil {
			course = *f.CourseDeg
		}

		fmt.Printf(
			"[GPS ]  %s  %s  speed=%.1fkn course=%.1f° status=%s\n",
			f.PositionString(), f.StatusString(), speed, course, f.Status,
		)
	})
	fixToken.Wait()
	if fixToken.Error() != nil {
		return fixToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.Topics.Position)

	// Subscribe to the satellite topic
	satToken := client.Subscribe(cfg.Topics.Satellites, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var r SatelliteReport
		if err := json.Unmarshal(msg.Payload(), &r); err != nil {
			log.Printf("console: satellite unmarshal error: %v", err)
			return
		}

		inView := 0
		if r.InView != nil {
			inView = *r.InView
		}
		fmt.Printf("[SATS]  in_view=%d tracked=%d\n", inView, r.Tracked)
	})
	satToken.Wait()
	if satToken.Error() != nil {
		return satToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.Topics.Satellites)

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}
