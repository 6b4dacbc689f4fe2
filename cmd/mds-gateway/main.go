// Command mds-gateway bridges an MDS device to the cloud.
//
// It opens the configured transport, reads the device configuration,
// enables streaming, and forwards every diagnostic chunk to the
// device's data URI (or a configured override) until interrupted.
//
// Usage:
//
//	mds-gateway -config gateway.yaml
//
// Example configuration:
//
//	transport: hid
//	hid:
//	  vendor_id: "1234"
//	  product_id: "5678"
//	upload:
//	  max_retries: 3
//	log:
//	  level: info
//	  file: /var/log/mds-gateway.mdslog
//
// A serial device instead:
//
//	transport: serial
//	serial:
//	  device: /dev/ttyACM0
//	  baud_rate: 115200
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/mds-protocol/mds-go/pkg/backend"
	"github.com/mds-protocol/mds-go/pkg/backend/serialport"
	"github.com/mds-protocol/mds-go/pkg/backend/usbhid"
	"github.com/mds-protocol/mds-go/pkg/backend/wsbridge"
	"github.com/mds-protocol/mds-go/pkg/log"
	"github.com/mds-protocol/mds-go/pkg/session"
	"github.com/mds-protocol/mds-go/pkg/uploader"
)

func main() {
	configPath := flag.String("config", "", "path to YAML configuration file")
	flag.Parse()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "mds-gateway: -config is required")
		os.Exit(2)
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mds-gateway: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "mds-gateway: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *Config) error {
	slogger := newLogger(cfg.Log.Level)

	protoLogger, closeLogger, err := newProtocolLogger(cfg, slogger)
	if err != nil {
		return err
	}
	defer closeLogger()

	b, err := openBackend(cfg)
	if err != nil {
		return err
	}

	sess := session.New(b)
	sess.SetLogger(protoLogger)
	defer sess.Close()

	deviceCfg, err := sess.ReadDeviceConfig()
	if err != nil {
		return fmt.Errorf("reading device config: %w", err)
	}
	slogger.Info("device configured",
		"device_id", deviceCfg.DeviceID,
		"data_uri", deviceCfg.DataURI,
		"features", deviceCfg.SupportedFeatures)

	if cfg.Upload.URI != "" {
		deviceCfg.DataURI = cfg.Upload.URI
	}
	if cfg.Upload.Authorization != "" {
		deviceCfg.Authorization = cfg.Upload.Authorization
	}

	up := uploader.NewWithConfig(uploader.Config{
		Timeout:    cfg.Upload.Timeout,
		MaxRetries: cfg.Upload.MaxRetries,
	})
	sess.SetUploadCallback(up.Upload)

	if err := sess.EnableStreaming(); err != nil {
		return fmt.Errorf("enabling streaming: %w", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	slogger.Info("forwarding chunks", "poll_timeout", cfg.PollTimeout)
loop:
	for {
		select {
		case <-stop:
			break loop
		default:
		}

		_, err := sess.ProcessFromBackend(deviceCfg, cfg.PollTimeout)
		switch {
		case err == nil:
		case errors.Is(err, backend.ErrTimeout):
			// No data this interval; keep polling.
		case errors.Is(err, backend.ErrClosed):
			slogger.Error("transport closed, stopping")
			break loop
		default:
			// Upload failures are already logged through the event
			// logger; chunks are forwarded best-effort.
			slogger.Warn("processing error", "err", err)
		}
	}

	stats := up.Stats()
	slogger.Info("shutting down",
		"chunks_uploaded", stats.ChunksUploaded,
		"bytes_uploaded", stats.BytesUploaded,
		"upload_failures", stats.UploadFailures,
		"last_http_status", stats.LastHTTPStatus)
	return nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// newProtocolLogger builds the session event logger: console always,
// plus the CBOR event file when configured.
func newProtocolLogger(cfg *Config, slogger *slog.Logger) (log.Logger, func(), error) {
	console := log.NewSlogAdapter(slogger)
	if cfg.Log.File == "" {
		return console, func() {}, nil
	}

	file, err := log.NewFileLogger(cfg.Log.File)
	if err != nil {
		return nil, nil, fmt.Errorf("opening event log: %w", err)
	}
	return log.NewMultiLogger(console, file), func() { file.Close() }, nil
}

func openBackend(cfg *Config) (backend.Backend, error) {
	switch cfg.Transport {
	case "hid":
		if cfg.HID.Path != "" {
			return usbhid.OpenPath(cfg.HID.Path)
		}
		vid, err := strconv.ParseUint(cfg.HID.VendorID, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("bad hid.vendor_id %q: %w", cfg.HID.VendorID, err)
		}
		pid, err := strconv.ParseUint(cfg.HID.ProductID, 16, 16)
		if err != nil {
			return nil, fmt.Errorf("bad hid.product_id %q: %w", cfg.HID.ProductID, err)
		}
		return usbhid.Open(uint16(vid), uint16(pid), cfg.HID.Serial)
	case "serial":
		return serialport.Open(serialport.Config{
			Device:   cfg.Serial.Device,
			BaudRate: cfg.Serial.BaudRate,
		})
	case "ws":
		return wsbridge.Dial(cfg.WS.URL)
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Transport)
	}
}
