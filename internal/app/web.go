package app

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/vertiport_gps/internal/config"
	"github.com/relabs-tech/vertiport_gps/internal/gps"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// fixHub stores the latest fix and fans it out to websocket subscribers.
type fixHub struct {
	mu      sync.RWMutex
	last    gps.Fix
	haveFix bool
	subs    map[chan []byte]struct{}
}

func newFixHub() *fixHub {
	return &fixHub{subs: make(map[chan []byte]struct{})}
}

func (h *fixHub) publish(fix gps.Fix, raw []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = fix
	h.haveFix = true
	for ch := range h.subs {
		select {
		case ch <- raw:
		default:
			// Slow subscriber; drop this update rather than block the hub.
		}
	}
}

func (h *fixHub) subscribe() chan []byte {
	ch := make(chan []byte, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *fixHub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.subs, ch)
	h.mu.Unlock()
}

// RunWeb serves the latest fix as JSON under /api/gps, streams fixes over a
// websocket at /ws, and serves the static frontend from the configured
// directory.
func RunWeb() error {
	cfg := config.Get()
	hub := newFixHub()

	// 1) Connect to MQTT broker on the Pi
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTT.Broker).
		SetClientID(cfg.MQTT.ClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTT.Broker)

	// 2) Subscribe to the fix topic and feed the hub
	token := client.Subscribe(cfg.Topics.Position, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var f gps.Fix
		if err := json.Unmarshal(msg.Payload(), &f); err != nil {
			log.Printf("web: fix unmarshal error: %v", err)
			return
		}
		hub.publish(f, msg.Payload())
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("web: subscribed to %s", cfg.Topics.Position)

	// 3) JSON API endpoint: latest fix
	http.HandleFunc("/api/gps", func(w http.ResponseWriter, r *http.Request) {
		hub.mu.RLock()
		defer hub.mu.RUnlock()

		if !hub.haveFix {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(hub.last); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	// 4) Websocket: push each new fix as it arrives
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade error: %v", err)
			return
		}
		defer conn.Close()

		ch := hub.subscribe()
		defer hub.unsubscribe(ch)

		for raw := range ch {
			if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				log.Printf("web: websocket write error: %v", err)
				return
			}
		}
	})

	// 5) Static files as the root
	fs := http.FileServer(http.Dir(cfg.Web.StaticDir))
	http.Handle("/", fs)

	addr := fmt.Sprintf(":%d", cfg.Web.Port)
	log.Printf("web: server listening on %s", addr)
	return http.ListenAndServe(addr, nil)
}
