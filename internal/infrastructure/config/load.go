package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// EnvPrefix starts every environment override.
const EnvPrefix = "SCHEMATIC_"

// Load builds the configuration in three layers: built-in defaults, the
// YAML file at path, then SCHEMATIC_* environment variables. The result is
// validated. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg, os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration. It is not valid on its own:
// the JWT secret has no default.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{Snap: true, ElementWidth: 60, HitAura: 10},
		Database: DatabaseConfig{
			Path:        "./data/schematic.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker:      MQTTBrokerConfig{Host: "localhost", Port: 1883, ClientID: "schematic-core"},
			QoS:         1,
			TopicPrefix: "schematic",
			Reconnect:   MQTTReconnectConfig{InitialDelay: 1, MaxDelay: 60},
		},
		API: APIConfig{
			Host:     "0.0.0.0",
			Port:     8080,
			Timeouts: APITimeoutConfig{Read: 30, Write: 30, Idle: 60},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		InfluxDB: InfluxDBConfig{Bucket: "schematic", BatchSize: 100, FlushInterval: 10},
		Notify:   NotifyConfig{BufferSize: 256, DeliveryTimeout: 5},
		Logging:  LoggingConfig{Level: "info", Format: "json", Output: "stdout"},
		Security: SecurityConfig{JWT: JWTConfig{AccessTokenTTL: 60}},
	}
}

// envVar binds one environment variable, named without EnvPrefix, to a
// field. set reports malformed values.
type envVar struct {
	name string
	set  func(cfg *Config, value string) error
}

var envVars = []envVar{
	{"DATABASE_PATH", str(func(c *Config) *string { return &c.Database.Path })},
	{"API_HOST", str(func(c *Config) *string { return &c.API.Host })},
	{"API_PORT", integer(func(c *Config) *int { return &c.API.Port })},
	{"MQTT_ENABLED", boolean(func(c *Config) *bool { return &c.MQTT.Enabled })},
	{"MQTT_HOST", str(func(c *Config) *string { return &c.MQTT.Broker.Host })},
	{"MQTT_USERNAME", str(func(c *Config) *string { return &c.MQTT.Auth.Username })},
	{"MQTT_PASSWORD", str(func(c *Config) *string { return &c.MQTT.Auth.Password })},
	{"INFLUXDB_ENABLED", boolean(func(c *Config) *bool { return &c.InfluxDB.Enabled })},
	{"INFLUXDB_URL", str(func(c *Config) *string { return &c.InfluxDB.URL })},
	{"INFLUXDB_TOKEN", str(func(c *Config) *string { return &c.InfluxDB.Token })},
	{"LOG_LEVEL", str(func(c *Config) *string { return &c.Logging.Level })},
	{"JWT_SECRET", str(func(c *Config) *string { return &c.Security.JWT.Secret })},
}

// applyEnv applies every non-empty override returned by getenv.
func applyEnv(cfg *Config, getenv func(string) string) error {
	for _, v := range envVars {
		value := getenv(EnvPrefix + v.name)
		if value == "" {
			continue
		}
		if err := v.set(cfg, value); err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, v.name, err)
		}
	}
	return nil
}

func str(field func(*Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*field(c) = v
		return nil
	}
}

func integer(field func(*Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*field(c) = n
		return nil
	}
}

func boolean(field func(*Config) *bool) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*field(c) = b
		return nil
	}
}
