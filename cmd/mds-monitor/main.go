// Command mds-monitor inspects MDS devices over USB HID.
//
// It can enumerate attached devices, dump a device's configuration,
// and stream diagnostic chunk packets to the console without
// uploading them anywhere.
//
// Usage:
//
//	mds-monitor [flags]
//
// Flags:
//
//	-list               List attached HID devices and exit
//	-vid string         USB vendor ID, hex (e.g. 1234)
//	-pid string         USB product ID, hex (e.g. 5678)
//	-serial string      Device serial number (default: any)
//	-path string        Device path from -list (overrides vid/pid)
//	-interactive        Interactive command mode
//	-timeout duration   Stream read poll timeout (default 1s)
//	-log-level string   Log level: debug, info, warn, error (default "info")
//
// Examples:
//
//	# Find the device
//	mds-monitor -list
//
//	# Stream packets from a specific device
//	mds-monitor -vid 1234 -pid 5678
//
//	# Drive the session by hand
//	mds-monitor -path /dev/hidraw3 -interactive
package main

import (
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mds-protocol/mds-go/pkg/backend"
	"github.com/mds-protocol/mds-go/pkg/backend/usbhid"
	"github.com/mds-protocol/mds-go/pkg/log"
	"github.com/mds-protocol/mds-go/pkg/session"
	"github.com/mds-protocol/mds-go/pkg/wire"
)

func main() {
	var (
		list        = flag.Bool("list", false, "list attached HID devices and exit")
		vidFlag     = flag.String("vid", "", "USB vendor ID, hex")
		pidFlag     = flag.String("pid", "", "USB product ID, hex")
		serial      = flag.String("serial", "", "device serial number")
		path        = flag.String("path", "", "device path (overrides vid/pid)")
		interactive = flag.Bool("interactive", false, "interactive command mode")
		timeout     = flag.Duration("timeout", time.Second, "stream read poll timeout")
		logLevel    = flag.String("log-level", "info", "log level: debug, info, warn, error")
	)
	flag.Parse()

	logger := newLogger(*logLevel)

	if *list {
		listDevices()
		return
	}

	b, err := openBackend(*path, *vidFlag, *pidFlag, *serial)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mds-monitor: %v\n", err)
		os.Exit(1)
	}

	sess := session.New(b)
	sess.SetLogger(log.NewSlogAdapter(logger))
	defer sess.Close()

	if *interactive {
		if err := runInteractive(sess); err != nil {
			fmt.Fprintf(os.Stderr, "mds-monitor: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := monitor(sess, *timeout); err != nil {
		fmt.Fprintf(os.Stderr, "mds-monitor: %v\n", err)
		os.Exit(1)
	}
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

func listDevices() {
	devices := usbhid.Enumerate(0, 0)
	if len(devices) == 0 {
		fmt.Println("no HID devices found")
		return
	}
	for _, d := range devices {
		fmt.Printf("%04x:%04x  %-24s %-24s serial=%s\n  path: %s\n",
			d.VendorID, d.ProductID, d.Manufacturer, d.Product, d.Serial, d.Path)
	}
}

func openBackend(path, vidFlag, pidFlag, serial string) (backend.Backend, error) {
	if path != "" {
		return usbhid.OpenPath(path)
	}
	if vidFlag == "" || pidFlag == "" {
		return nil, errors.New("need -path or both -vid and -pid (try -list)")
	}
	vid, err := strconv.ParseUint(vidFlag, 16, 16)
	if err != nil {
		return nil, fmt.Errorf("bad vendor ID %q: %w", vidFlag, err)
	}
	pid, err := strconv.ParseUint(pidFlag, 16, 16)
	if err != nil {
		return nil, fmt.Errorf("bad product ID %q: %w", pidFlag, err)
	}
	return usbhid.Open(uint16(vid), uint16(pid), serial)
}

// monitor dumps the device config and then streams packets until
// interrupted.
func monitor(sess *session.Session, timeout time.Duration) error {
	cfg, err := sess.ReadDeviceConfig()
	if err != nil {
		return fmt.Errorf("reading device config: %w", err)
	}
	printConfig(cfg)

	if err := sess.EnableStreaming(); err != nil {
		return fmt.Errorf("enabling streaming: %w", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	packets := 0
	fmt.Println("\nstreaming (Ctrl-C to stop)...")
	for {
		select {
		case <-stop:
			fmt.Printf("\n%d packets received\n", packets)
			return nil
		default:
		}

		pkt, err := sess.ProcessFromBackend(cfg, timeout)
		if err != nil {
			if errors.Is(err, backend.ErrTimeout) {
				continue
			}
			return fmt.Errorf("processing stream: %w", err)
		}
		packets++
		fmt.Printf("seq=%-2d len=%d\n%s", pkt.Sequence, len(pkt.Data), hex.Dump(pkt.Data))
	}
}

func printConfig(cfg *wire.DeviceConfig) {
	fmt.Printf("supported features: 0x%08x\n", cfg.SupportedFeatures)
	fmt.Printf("device identifier:  %s\n", cfg.DeviceID)
	fmt.Printf("data URI:           %s\n", cfg.DataURI)
	fmt.Printf("authorization:      %s\n", cfg.Authorization)
}
