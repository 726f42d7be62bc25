package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	_ "github.com/nerrad567/schematic-core/migrations"

	"github.com/nerrad567/schematic-core/internal/api"
	"github.com/nerrad567/schematic-core/internal/audit"
	"github.com/nerrad567/schematic-core/internal/editor"
	"github.com/nerrad567/schematic-core/internal/infrastructure/config"
	"github.com/nerrad567/schematic-core/internal/infrastructure/database"
	"github.com/nerrad567/schematic-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/schematic-core/internal/infrastructure/logging"
	"github.com/nerrad567/schematic-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/schematic-core/internal/notify"
	"github.com/nerrad567/schematic-core/internal/project"
)

func newServeCmd(configPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the editing API until interrupted",
		Long: `Serve opens the project database, applies pending migrations, connects
the optional MQTT and InfluxDB integrations and hosts the editing API.
On interrupt the API stops first, queued notifications are delivered and
then every connection is closed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath())
		},
	}
}

// healthChecker is implemented by every component checked at startup.
type healthChecker interface {
	HealthCheck(ctx context.Context) error
}

type namedCheck struct {
	name    string
	checker healthChecker
}

type closer struct {
	name  string
	close func() error
}

// service holds what serve has started so it can be torn down in reverse.
type service struct {
	cfg     *config.Config
	log     *logging.Logger
	sinks   []notify.Sink
	checks  []namedCheck
	closers []closer
}

func (s *service) onShutdown(name string, fn func() error) {
	s.closers = append(s.closers, closer{name, fn})
}

func (s *service) shutdown() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		c := s.closers[i]
		s.log.Info("stopping", "component", c.name)
		if err := c.close(); err != nil {
			s.log.Error("stop failed", "component", c.name, "error", err)
		}
	}
	s.closers = nil
}

// healthCheck runs every registered check and joins the failures.
func (s *service) healthCheck(ctx context.Context) error {
	var errs []error
	for _, c := range s.checks {
		if err := c.checker.HealthCheck(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}
	return errors.Join(errs...)
}

// run is the serve lifecycle. It returns nil after a clean shutdown.
func run(ctx context.Context, configPath string) error {
	logging.Default().Info("starting Schematic Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	s := &service{cfg: cfg, log: logging.New(cfg.Logging, version)}
	defer s.shutdown()
	s.log.Info("configuration loaded", "path", configPath, "log_level", cfg.Logging.Level)

	db, err := s.openDatabase(ctx)
	if err != nil {
		return err
	}
	if err := s.connectMQTT(); err != nil {
		return err
	}
	if err := s.connectInfluxDB(); err != nil {
		return err
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	// The hub is shared by the API server and the notification relay.
	hub := api.NewHub(cfg.WebSocket, s.log.Component("websocket"))
	go hub.Run(runCtx)
	s.sinks = append(s.sinks, notify.NewHubSink(hub))

	relay := notify.NewRelay(cfg.Notify, s.sinks...)
	relay.SetLogger(s.log.Component("notify"))
	relayDone := make(chan struct{})
	go func() {
		defer close(relayDone)
		relay.Run(runCtx)
	}()
	s.onShutdown("notify", func() error {
		stop()
		<-relayDone
		if n := relay.Dropped(); n > 0 {
			s.log.Warn("notifications dropped during run", "count", n)
		}
		return nil
	})

	session := editor.NewSession(cfg.Editor, project.NewSQLiteRepository(db.DB))
	session.SetLogger(s.log.Component("editor"))
	session.SetSaveHook(relay.ProjectSaved)
	session.Subscribe(relay)

	server, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Logger:   s.log.Component("api"),
		Session:  session,
		Audit:    audit.NewSQLiteRepository(db.DB),
		Hub:      hub,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(runCtx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	s.onShutdown("api", server.Close)
	s.checks = append(s.checks, namedCheck{"api", server})

	if err := s.healthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	s.log.Info("ready", "address", server.Addr(), "checks", len(s.checks))

	<-ctx.Done()
	s.log.Info("shutdown signal received")
	s.shutdown()
	s.log.Info("Schematic Core stopped")
	return nil
}

func (s *service) openDatabase(ctx context.Context) (*database.DB, error) {
	db, err := database.Open(s.cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	s.onShutdown("database", db.Close)
	s.checks = append(s.checks, namedCheck{"database", db})

	if err := db.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	s.log.Info("database ready", "path", db.Path())
	return db, nil
}

// connectMQTT adds the broker sink when mqtt.enabled is set.
func (s *service) connectMQTT() error {
	cfg := s.cfg.MQTT
	if !cfg.Enabled {
		s.log.Info("MQTT disabled")
		return nil
	}

	client, err := mqtt.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	s.onShutdown("mqtt", client.Close)
	s.checks = append(s.checks, namedCheck{"mqtt", client})

	log := s.log.Component("mqtt")
	client.SetLogger(log)
	client.SetOnConnect(func() { log.Info("MQTT connected") })
	client.SetOnDisconnect(func(err error) { log.Warn("MQTT connection lost", "error", err) })
	log.Info("MQTT ready",
		"broker", net.JoinHostPort(cfg.Broker.Host, strconv.Itoa(cfg.Broker.Port)),
		"client_id", cfg.Broker.ClientID,
		"prefix", client.Topics().Prefix(),
	)

	s.sinks = append(s.sinks, notify.NewMQTTSink(client, client.Topics()))
	return nil
}

// connectInfluxDB adds the telemetry sink when influxdb.enabled is set.
func (s *service) connectInfluxDB() error {
	cfg := s.cfg.InfluxDB
	if !cfg.Enabled {
		s.log.Info("InfluxDB disabled")
		return nil
	}

	client, err := influxdb.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	}
	s.onShutdown("influxdb", client.Close)
	s.checks = append(s.checks, namedCheck{"influxdb", client})

	log := s.log.Component("influxdb")
	client.SetOnError(func(err error) { log.Error("InfluxDB write failed", "error", err) })
	log.Info("InfluxDB ready", "url", cfg.URL, "org", cfg.Org, "bucket", cfg.Bucket)

	s.sinks = append(s.sinks, notify.NewTelemetrySink(client))
	return nil
}
