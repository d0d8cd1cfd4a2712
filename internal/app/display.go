package app

import (
	"encoding/json"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/vertiport_gps/internal/config"
	"github.com/relabs-tech/vertiport_gps/internal/gps"
)

// displayData holds the latest fix for the render loop.
type displayData struct {
	mu      sync.RWMutex
	fix     gps.Fix
	haveFix bool
}

// RunDisplay subscribes to the GPS fix topic and renders it on the SSD1306
// OLED. Until the first fix arrives it shows the splash screen.
func RunDisplay() error {
	cfg := config.Get()

	// Initialize periph
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	// Open I2C bus
	bus, err := i2creg.Open("")
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}
	defer bus.Close()

	// The ssd1306 driver answers at the usual 0x3C.
	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Println("display: SSD1306 initialized")

	if err := showSplash(dev); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	data := &displayData{}

	// Connect to MQTT
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTT.Broker).
		SetClientID(cfg.MQTT.ClientIDDisplay)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: connected to MQTT broker at %s", cfg.MQTT.Broker)

	token := client.Subscribe(cfg.Topics.Position, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var f gps.Fix
		if err := json.Unmarshal(msg.Payload(), &f); err != nil {
			log.Printf("display: fix unmarshal error: %v", err)
			return
		}
		data.mu.Lock()
		data.fix = f
		data.haveFix = true
		data.mu.Unlock()
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("display: subscribed to %s", cfg.Topics.Position)

	// Display update loop
	ticker := time.NewTicker(time.Duration(cfg.Display.UpdateIntervalMs) * time.Millisecond)
	defer ticker.Stop()

	log.Println("display: starting update loop")

	for range ticker.C {
		data.mu.RLock()
		fix := data.fix
		haveFix := data.haveFix
		data.mu.RUnlock()

		if !haveFix {
			continue
		}
		if err := updateFixDisplay(dev, &fix); err != nil {
			log.Printf("display: error updating display: %v", err)
		}
	}

	return nil
}

func newDrawer(img *image1bit.VerticalLSB) *font.Drawer {
	// Blank image
	for i := range img.Pix {
		img.Pix[i] = 0
	}
	return &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}
}

func updateFixDisplay(dev *ssd1306.Dev, fix *gps.Fix) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := newDrawer(img)

	header := "GPS: NO FIX"
	if fix.IsValid() {
		header = "GPS: FIX"
	}
	drawer.Dot = fixed.P(0, 13)
	drawer.DrawBytes([]byte(header))

	if fix.Latitude != nil && fix.Longitude != nil {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte(fmt.Sprintf("Lat: %.5f", *fix.Latitude)))
		drawer.Dot = fixed.P(0, 39)
		drawer.DrawBytes([]byte(fmt.Sprintf("Lon: %.5f", *fix.Longitude)))
	} else {
		drawer.Dot = fixed.P(0, 26)
		drawer.DrawBytes([]byte("Searching..."))
	}

	drawer.Dot = fixed.P(0, 52)
	drawer.DrawBytes([]byte(fix.StatusString()))

	return dev.Draw(dev.Bounds(), img, image.Point{})
}

func showSplash(dev *ssd1306.Dev) error {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, 128, 64))
	drawer := newDrawer(img)

	drawer.Dot = fixed.P(10, 26)
	drawer.DrawBytes([]byte("Vertiport GPS"))

	drawer.Dot = fixed.P(5, 43)
	drawer.DrawBytes([]byte("Looking for"))

	drawer.Dot = fixed.P(25, 56)
	drawer.DrawBytes([]byte("sats"))

	return dev.Draw(dev.Bounds(), img, image.Point{})
}
