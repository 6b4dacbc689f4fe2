package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the gateway configuration file layout.
type Config struct {
	// Transport selects the backend: "hid", "serial", or "ws".
	Transport string `yaml:"transport"`

	HID struct {
		// VendorID and ProductID are hex strings, e.g. "1234".
		VendorID  string `yaml:"vendor_id"`
		ProductID string `yaml:"product_id"`
		Serial    string `yaml:"serial"`
		Path      string `yaml:"path"`
	} `yaml:"hid"`

	Serial struct {
		Device   string `yaml:"device"`
		BaudRate int    `yaml:"baud_rate"`
	} `yaml:"serial"`

	WS struct {
		URL string `yaml:"url"`
	} `yaml:"ws"`

	Upload struct {
		// URI and Authorization override the values the device
		// reports, when set.
		URI           string        `yaml:"uri"`
		Authorization string        `yaml:"authorization"`
		Timeout       time.Duration `yaml:"timeout"`
		MaxRetries    int           `yaml:"max_retries"`
	} `yaml:"upload"`

	Log struct {
		Level string `yaml:"level"`
		// File receives CBOR protocol events when set.
		File string `yaml:"file"`
	} `yaml:"log"`

	// PollTimeout bounds each stream read; the loop checks for
	// shutdown between reads.
	PollTimeout time.Duration `yaml:"poll_timeout"`
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Transport {
	case "hid":
		if c.HID.Path == "" && (c.HID.VendorID == "" || c.HID.ProductID == "") {
			return fmt.Errorf("hid transport needs hid.path or hid.vendor_id and hid.product_id")
		}
	case "serial":
		if c.Serial.Device == "" {
			return fmt.Errorf("serial transport needs serial.device")
		}
	case "ws":
		if c.WS.URL == "" {
			return fmt.Errorf("ws transport needs ws.url")
		}
	case "":
		return fmt.Errorf("transport is required: hid, serial, or ws")
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.PollTimeout <= 0 {
		c.PollTimeout = time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
