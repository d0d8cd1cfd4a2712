package app

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	serial "github.com/jacobsa/go-serial/serial"

	"github.com/relabs-tech/vertiport_gps/internal/config"
	"github.com/relabs-tech/vertiport_gps/internal/gps"
	"github.com/relabs-tech/vertiport_gps/internal/nmea"
)

// RunGPSPublisher opens the GPS serial port, feeds each NMEA line through
// the decoder into the fix aggregator, and publishes the reconciled fix as
// JSON whenever it is valid and the position actually moved.
//
// When mock is true the serial port is replaced with the simulated receiver
// so the whole pipeline can run on a bench without hardware.
func RunGPSPublisher(mock bool) error {
	cfg := config.Get()

	// ---- 1) Connect to MQTT broker ----
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTT.Broker).
		SetClientID(cfg.MQTT.ClientIDPublisher)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("publisher: connected to MQTT broker at %s", cfg.MQTT.Broker)

	if mock {
		log.Println("publisher: using mock NMEA source")
		return publishLoop(client, gps.NewMockSource(), cfg)
	}

	// ---- 2) Open GPS serial port ----
	serialOpts := serial.OpenOptions{
		PortName:              cfg.GPS.SerialPort,
		BaudRate:              cfg.GPS.BaudRate,
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return fmt.Errorf("failed to open GPS serial port: %w", err)
	}
	defer port.Close()
	log.Printf("publisher: GPS serial port opened on %s at %d baud", cfg.GPS.SerialPort, cfg.GPS.BaudRate)

	return publishLoop(client, lineSource{bufio.NewReader(port)}, cfg)
}

// lineSource adapts a buffered reader to the gps.Source interface.
type lineSource struct {
	r *bufio.Reader
}

func (s lineSource) Next() (string, error) {
	return s.r.ReadString('\n')
}

func publishLoop(client mqtt.Client, src gps.Source, cfg *config.Config) error {
	agg := gps.NewAggregator()
	rejected := 0

	// Last published position, formatted the way it is displayed. Keeps a
	// stationary receiver from republishing the same fix once a second.
	var lastLat, lastLon string

	for {
		line, err := src.Next()
		if err != nil {
			return fmt.Errorf("GPS read error: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		sentence, err := nmea.Decode(line)
		if err != nil {
			// Receivers emit plenty of types we don't track; that's not noise.
			if errors.Is(err, nmea.ErrUnsupportedType) {
				continue
			}
			rejected++
			if rejected%100 == 1 {
				log.Printf("publisher: rejected sentence (%d so far): %v", rejected, err)
			}
			continue
		}

		agg.Apply(sentence, time.Now())

		if g, ok := sentence.(nmea.GSV); ok {
			// Publish the satellite table once per completed group.
			if g.TotalMessages > 0 && g.MessageNumber == g.TotalMessages {
				publishSatellites(client, agg.Snapshot(), cfg)
			}
			continue
		}

		snap := agg.Snapshot()
		if !snap.IsValid() || !agg.HasChangedPosition(cfg.GPS.ChangeThresholdDeg) {
			continue
		}

		latStr := fmt.Sprintf("%.5f", *snap.Latitude)
		lonStr := fmt.Sprintf("%.5f", *snap.Longitude)
		if latStr == lastLat && lonStr == lastLon {
			continue
		}

		payload, err := json.Marshal(snap)
		if err != nil {
			log.Printf("publisher: fix marshal error: %v", err)
			continue
		}

		token := client.Publish(cfg.Topics.Position, 0, true, payload)
		token.Wait()
		if token.Error() != nil {
			log.Printf("publisher: publish error: %v", token.Error())
			continue
		}

		lastLat, lastLon = latStr, lonStr
		log.Printf("publisher: published fix %s", snap.PositionString())
	}
}

// SatelliteReport is the payload published on the satellites topic after
// each completed GSV group.
type SatelliteReport struct {
	InView     *int             `json:"in_view,omitempty"`
	Tracked    int              `json:"tracked"`
	Satellites []nmea.Satellite `json:"satellites,omitempty"`
}

func publishSatellites(client mqtt.Client, snap gps.Fix, cfg *config.Config) {
	report := SatelliteReport{
		InView:     snap.SatellitesInView,
		Tracked:    len(snap.Satellites),
		Satellites: snap.Satellites,
	}

	payload, err := json.Marshal(report)
	if err != nil {
		log.Printf("publisher: satellite marshal error: %v", err)
		return
	}

	token := client.Publish(cfg.Topics.Satellites, 0, true, payload)
	token.Wait()
	if token.Error() != nil {
		log.Printf("publisher: satellite publish error: %v", token.Error())
	}
}
