package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/mds-protocol/mds-go/pkg/backend"
	"github.com/mds-protocol/mds-go/pkg/session"
	"github.com/mds-protocol/mds-go/pkg/wire"
)

// runInteractive drives a session from a readline command loop.
func runInteractive(sess *session.Session) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "mds> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	var cfg *wire.DeviceConfig
	packets := 0

	printInteractiveHelp()
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}

		parts := strings.Fields(strings.TrimSpace(line))
		if len(parts) == 0 {
			continue
		}

		switch strings.ToLower(parts[0]) {
		case "help", "?":
			printInteractiveHelp()

		case "config":
			cfg, err = sess.ReadDeviceConfig()
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			printConfig(cfg)

		case "enable":
			if err := sess.EnableStreaming(); err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Println("streaming enabled")

		case "disable":
			if err := sess.DisableStreaming(); err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Println("streaming disabled")

		case "read":
			if cfg == nil {
				fmt.Println("read the device config first (config)")
				continue
			}
			timeout := time.Second
			if len(parts) > 1 {
				if d, err := time.ParseDuration(parts[1]); err == nil {
					timeout = d
				}
			}
			pkt, err := sess.ProcessFromBackend(cfg, timeout)
			if errors.Is(err, backend.ErrTimeout) {
				fmt.Println("no data")
				continue
			}
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			packets++
			fmt.Printf("seq=%-2d len=%d\n%s", pkt.Sequence, len(pkt.Data), hex.Dump(pkt.Data))

		case "stats":
			fmt.Printf("packets read:  %d\n", packets)
			fmt.Printf("streaming:     %v\n", sess.Streaming())
			fmt.Printf("last sequence: %d\n", sess.LastSequence())

		case "quit", "exit":
			return nil

		default:
			fmt.Printf("unknown command %q (try help)\n", parts[0])
		}
	}
}

func printInteractiveHelp() {
	fmt.Println(`commands:
  config          read and print the device configuration
  enable          enable streaming
  disable         disable streaming
  read [timeout]  read one stream packet (default timeout 1s)
  stats           show session counters
  quit            exit`)
}
