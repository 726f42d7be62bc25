package config

import "time"

// Seconds is a duration written as a whole number of seconds in YAML.
type Seconds int

// Duration converts s to a time.Duration.
func (s Seconds) Duration() time.Duration {
	return time.Duration(s) * time.Second
}

// Config is the schematic server configuration.
type Config struct {
	Editor    EditorConfig    `yaml:"editor"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Notify    NotifyConfig    `yaml:"notify"`
	Logging   LoggingConfig   `yaml:"logging"`
	Security  SecurityConfig  `yaml:"security"`
}

// EditorConfig tunes the editing session.
type EditorConfig struct {
	// Snap moves placed and moved nodes onto the grid.
	Snap bool `yaml:"snap"`

	// ElementWidth is the pixel span of a newly placed two-terminal element.
	ElementWidth float64 `yaml:"element_width"`

	// HistoryLimit caps the undo depth. 0 keeps every snapshot.
	HistoryLimit int `yaml:"history_limit"`

	// HitAura is the selection tolerance in pixels.
	HitAura float64 `yaml:"hit_aura"`
}

// DatabaseConfig locates the SQLite project store.
type DatabaseConfig struct {
	Path        string  `yaml:"path"`
	WALMode     bool    `yaml:"wal_mode"`
	BusyTimeout Seconds `yaml:"busy_timeout"`
}

// MQTTConfig configures change-event publishing to a broker.
type MQTTConfig struct {
	Enabled     bool                `yaml:"enabled"`
	Broker      MQTTBrokerConfig    `yaml:"broker"`
	Auth        MQTTAuthConfig      `yaml:"auth"`
	QoS         int                 `yaml:"qos"`
	TopicPrefix string              `yaml:"topic_prefix"`
	Reconnect   MQTTReconnectConfig `yaml:"reconnect"`
}

type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig bounds the reconnect backoff.
type MQTTReconnectConfig struct {
	InitialDelay Seconds `yaml:"initial_delay"`
	MaxDelay     Seconds `yaml:"max_delay"`
}

// APIConfig configures the HTTP server.
type APIConfig struct {
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	TLS      TLSConfig        `yaml:"tls"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

type TLSConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

type APITimeoutConfig struct {
	Read  Seconds `yaml:"read"`
	Write Seconds `yaml:"write"`
	Idle  Seconds `yaml:"idle"`
}

// CORSConfig lists what browsers on other origins may do. An empty
// AllowedOrigins list sends no CORS headers.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// WebSocketConfig configures the change-event socket.
type WebSocketConfig struct {
	Path           string  `yaml:"path"`
	MaxMessageSize int     `yaml:"max_message_size"`
	PingInterval   Seconds `yaml:"ping_interval"`
	PongTimeout    Seconds `yaml:"pong_timeout"`
}

// InfluxDBConfig configures edit telemetry.
type InfluxDBConfig struct {
	Enabled       bool    `yaml:"enabled"`
	URL           string  `yaml:"url"`
	Token         string  `yaml:"token"`
	Org           string  `yaml:"org"`
	Bucket        string  `yaml:"bucket"`
	BatchSize     int     `yaml:"batch_size"`
	FlushInterval Seconds `yaml:"flush_interval"`
}

// NotifyConfig configures the change-event relay.
type NotifyConfig struct {
	// BufferSize is how many messages may wait for delivery before new
	// ones are dropped.
	BufferSize int `yaml:"buffer_size"`

	// DeliveryTimeout bounds one delivery to one sink.
	DeliveryTimeout Seconds `yaml:"delivery_timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig signs API tokens. AccessTokenTTL is in minutes.
type JWTConfig struct {
	Secret         string `yaml:"secret"`
	AccessTokenTTL int    `yaml:"access_token_ttl"`
}
