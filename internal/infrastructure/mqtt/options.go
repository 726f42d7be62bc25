package mqtt

import (
	"crypto/tls"
	"encoding/json"
	"strconv"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/schematic-core/internal/infrastructure/config"
)

const (
	connectTimeout = 10 * time.Second
	ackTimeout     = 5 * time.Second
	keepAlive      = 60 * time.Second

	// quiesceMillis is how long Disconnect lets in-flight work finish.
	quiesceMillis = 500

	highestQoS     = 2
	maxPayloadSize = 1 << 20
)

// Values of the retained presence message on Topics.SystemStatus(client id).
const (
	presenceOnline  = "online"
	presenceOffline = "offline"

	reasonLost     = "connection_lost"
	reasonShutdown = "shutdown"
)

// presence is the retained message announcing whether the service is up.
type presence struct {
	State    string    `json:"state"`
	ClientID string    `json:"client_id"`
	Reason   string    `json:"reason,omitempty"`
	At       time.Time `json:"at"`
}

func presenceMessage(state, clientID, reason string) []byte {
	b, _ := json.Marshal(presence{ //nolint:errcheck // plain struct
		State:    state,
		ClientID: clientID,
		Reason:   reason,
		At:       time.Now().UTC().Truncate(time.Second),
	})
	return b
}

// brokerURL returns the paho server address, ssl:// when TLS is enabled.
func brokerURL(b config.MQTTBrokerConfig) string {
	scheme := "tcp://"
	if b.TLS {
		scheme = "ssl://"
	}
	return scheme + b.Host + ":" + strconv.Itoa(b.Port)
}

// newOptions translates cfg into paho options. The will marks the service
// offline when the broker loses it without a clean disconnect.
func newOptions(cfg config.MQTTConfig, topics Topics) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions().
		AddBroker(brokerURL(cfg.Broker)).
		SetClientID(cfg.Broker.ClientID).
		SetCleanSession(true).
		SetKeepAlive(keepAlive).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(cfg.Reconnect.InitialDelay.Duration()).
		SetMaxReconnectInterval(cfg.Reconnect.MaxDelay.Duration()).
		SetBinaryWill(topics.SystemStatus(cfg.Broker.ClientID), presenceMessage(presenceOffline, cfg.Broker.ClientID, reasonLost), 1, true)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username).SetPassword(cfg.Auth.Password)
	}
	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{MinVersion: tls.VersionTLS12})
	}
	return opts
}
