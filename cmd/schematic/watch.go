package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/nerrad567/schematic-core/internal/infrastructure/config"
	"github.com/nerrad567/schematic-core/internal/infrastructure/logging"
	"github.com/nerrad567/schematic-core/internal/infrastructure/mqtt"
)

func newWatchCmd(configPath func() string) *cobra.Command {
	var qos int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print circuit change events and project saves from MQTT",
		Long: `Connect to the configured MQTT broker and print every circuit change event
and project save published by a running server, one line per message.
The broker is used even when mqtt.enabled is false for the server.

Examples:
  schematic watch
  SCHEMATIC_MQTT_HOST=broker.lan schematic watch --qos 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath())
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			mqttCfg := cfg.MQTT
			mqttCfg.Broker.ClientID += "-watch"

			client, err := mqtt.Connect(mqttCfg)
			if err != nil {
				return fmt.Errorf("connecting to MQTT: %w", err)
			}
			defer client.Close() //nolint:errcheck // Best-effort disconnect on exit
			client.SetLogger(logging.New(cfg.Logging, version).Component("watch"))

			printer := &linePrinter{out: cmd.OutOrStdout()}
			topics := client.Topics()
			for _, topic := range []string{topics.AllCircuitEvents(), topics.AllProjectSaves()} {
				if err := client.Subscribe(topic, byte(qos), printer.handle); err != nil {
					return fmt.Errorf("subscribing to %s: %w", topic, err)
				}
			}

			<-cmd.Context().Done()
			return nil
		},
	}

	cmd.Flags().IntVar(&qos, "qos", 1, "subscription QoS (0, 1 or 2)")
	return cmd
}

// linePrinter writes each received message as "topic payload".
// Paho delivers from its own goroutines, so writes are serialised.
type linePrinter struct {
	mu  sync.Mutex
	out io.Writer
}

func (p *linePrinter) handle(topic string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintf(p.out, "%s %s\n", topic, payload)
	return err
}
