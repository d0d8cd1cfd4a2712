package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
mqtt:
  broker: tcp://localhost:1883
  client_id_publisher: test-publisher
topics:
  position: test/gps
gps:
  serial_port: /dev/ttyUSB0
  baud_rate: 115200
  change_threshold_deg: 0.0005
web:
  port: 9090
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, "test/gps", cfg.Topics.Position)
	assert.Equal(t, "/dev/ttyUSB0", cfg.GPS.SerialPort)
	assert.Equal(t, uint(115200), cfg.GPS.BaudRate)
	assert.InDelta(t, 0.0005, cfg.GPS.ChangeThresholdDeg, 1e-12)
	assert.Equal(t, 9090, cfg.Web.Port)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
mqtt:
  broker: tcp://localhost:1883
gps:
  serial_port: /dev/serial0
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint(9600), cfg.GPS.BaudRate)
	assert.InDelta(t, 0.00001, cfg.GPS.ChangeThresholdDeg, 1e-12)
	assert.Equal(t, "vertiport/gps", cfg.Topics.Position)
	assert.Equal(t, "vertiport/gps/satellites", cfg.Topics.Satellites)
	assert.Equal(t, 250, cfg.Display.UpdateIntervalMs)
	assert.Equal(t, 8080, cfg.Web.Port)
}

func TestLoad_MissingBroker(t *testing.T) {
	path := writeConfig(t, `
gps:
  serial_port: /dev/serial0
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mqtt.broker")
}

func TestLoad_MissingSerialPort(t *testing.T) {
	path := writeConfig(t, `
mqtt:
  broker: tcp://localhost:1883
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gps.serial_port")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_BadYAML(t *testing.T) {
	path := writeConfig(t, "mqtt: [broker\n")
	_, err := Load(path)
	require.Error(t, err)
}
