package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// MinJWTSecretLength is the shortest accepted token signing secret.
const MinJWTSecretLength = 32

// Validate reports every problem in c at once.
func (c *Config) Validate() error {
	var p problems

	p.require(c.Editor.ElementWidth > 0, "editor.element_width must be positive")
	p.require(c.Editor.HistoryLimit >= 0, "editor.history_limit cannot be negative")
	p.require(c.Editor.HitAura >= 0, "editor.hit_aura cannot be negative")

	p.require(c.Database.Path != "", "database.path is required")
	p.require(c.Database.BusyTimeout >= 0, "database.busy_timeout cannot be negative")

	p.require(c.MQTT.QoS >= 0 && c.MQTT.QoS <= 2, "mqtt.qos must be 0, 1 or 2")
	if c.MQTT.Enabled {
		p.require(c.MQTT.TopicPrefix != "", "mqtt.topic_prefix is required when mqtt is enabled")
		p.require(c.MQTT.Broker.Host != "", "mqtt.broker.host is required when mqtt is enabled")
	}

	p.require(c.API.Port >= 1 && c.API.Port <= 65535, "api.port must be between 1 and 65535")
	if c.API.TLS.Enabled {
		p.require(c.API.TLS.CertFile != "" && c.API.TLS.KeyFile != "", "api.tls needs cert_file and key_file")
	}

	if c.InfluxDB.Enabled {
		p.require(c.InfluxDB.URL != "", "influxdb.url is required when influxdb is enabled")
		p.require(c.InfluxDB.Org != "" && c.InfluxDB.Bucket != "", "influxdb.org and influxdb.bucket are required when influxdb is enabled")
	}

	p.require(c.Notify.BufferSize >= 0, "notify.buffer_size cannot be negative")

	if c.Logging.Level != "" {
		p.require(slices.Contains([]string{"debug", "info", "warn", "warning", "error"}, strings.ToLower(c.Logging.Level)),
			fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	if c.Logging.Format != "" {
		p.require(slices.Contains([]string{"json", "text"}, strings.ToLower(c.Logging.Format)),
			fmt.Sprintf("logging.format %q is not json or text", c.Logging.Format))
	}

	switch secret := c.Security.JWT.Secret; {
	case secret == "":
		p.add("security.jwt.secret is required (set " + EnvPrefix + "JWT_SECRET)")
	case len(secret) < MinJWTSecretLength:
		p.add(fmt.Sprintf("security.jwt.secret must be at least %d characters", MinJWTSecretLength))
	}

	return p.err()
}

type problems []string

func (p *problems) add(msg string) { *p = append(*p, msg) }

func (p *problems) require(ok bool, msg string) {
	if !ok {
		p.add(msg)
	}
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(p, "; "))
}
