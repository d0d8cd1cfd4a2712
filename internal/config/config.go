package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration values, loaded from one YAML
// file shared by every binary.
type Config struct {
	MQTT struct {
		Broker            string `yaml:"broker"`
		ClientIDPublisher string `yaml:"client_id_publisher"`
		ClientIDConsole   string `yaml:"client_id_console"`
		ClientIDDisplay   string `yaml:"client_id_display"`
		ClientIDWeb       string `yaml:"client_id_web"`
	} `yaml:"mqtt"`

	Topics struct {
		Position   string `yaml:"position"`
		Satellites string `yaml:"satellites"`
	} `yaml:"topics"`

	GPS struct {
		SerialPort string `yaml:"serial_port"`
		BaudRate   uint   `yaml:"baud_rate"`
		// ChangeThresholdDeg gates publishing: a fix is only published when
		// it is valid and moved more than this many degrees on either axis.
		ChangeThresholdDeg float64 `yaml:"change_threshold_deg"`
	} `yaml:"gps"`

	Display struct {
		UpdateIntervalMs int `yaml:"update_interval_ms"`
	} `yaml:"display"`

	Web struct {
		Port      int    `yaml:"port"`
		StaticDir string `yaml:"static_dir"`
	} `yaml:"web"`
}

// Package-level unexported variables for the singleton pattern: external
// code must use InitGlobal() to set the config and Get() to read it, so all
// binaries see one immutable configuration after startup.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	b, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.GPS.BaudRate == 0 {
		c.GPS.BaudRate = 9600
	}
	if c.GPS.ChangeThresholdDeg == 0 {
		c.GPS.ChangeThresholdDeg = 0.00001
	}
	if c.Display.UpdateIntervalMs == 0 {
		c.Display.UpdateIntervalMs = 250
	}
	if c.Topics.Position == "" {
		c.Topics.Position = "vertiport/gps"
	}
	if c.Topics.Satellites == "" {
		c.Topics.Satellites = "vertiport/gps/satellites"
	}
	if c.Web.Port == 0 {
		c.Web.Port = 8080
	}
	if c.Web.StaticDir == "" {
		c.Web.StaticDir = "web"
	}
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required")
	}
	if c.GPS.SerialPort == "" {
		return fmt.Errorf("gps.serial_port is required")
	}
	if c.GPS.ChangeThresholdDeg < 0 {
		return fmt.Errorf("gps.change_threshold_deg must not be negative")
	}
	return nil
}

// InitGlobal initializes the global configuration from file. Uses sync.Once
// so repeated calls are harmless.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance. InitGlobal must be called
// first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
