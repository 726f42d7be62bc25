package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/schematic-core/internal/infrastructure/config"
)

// Logger receives handler failures. *logging.Logger satisfies it.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Error(string, ...any) {}
func (noopLogger) Warn(string, ...any) {}

// MessageHandler handles one received message. It runs on a paho goroutine
// and must not block; a returned error is logged.
type MessageHandler func(topic string, payload []byte) error

type route struct {
	qos     byte
	handler MessageHandler
}

// Client publishes schematic events and serves topic subscriptions. Routes
// are replayed after every reconnect. Safe for concurrent use.
type Client struct {
	paho   pahomqtt.Client
	cfg    config.MQTTConfig
	topics Topics
	online atomic.Bool

	mu           sync.Mutex
	routes       map[string]route
	logger       Logger
	onConnect    func()
	onDisconnect func(error)
}

func newClient(cfg config.MQTTConfig) *Client {
	return &Client{
		cfg:    cfg,
		topics: NewTopics(cfg.TopicPrefix),
		routes: make(map[string]route),
		logger: noopLogger{},
	}
}

// Connect dials the broker described by cfg and waits for the first
// connection. The retained presence message is set online on every connect.
func Connect(cfg config.MQTTConfig) (*Client, error) {
	c := newClient(cfg)

	opts := newOptions(cfg, c.topics).
		SetOnConnectHandler(func(pahomqtt.Client) { c.connected() }).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) { c.lost(err) })
	c.paho = pahomqtt.NewClient(opts)

	if err := await(c.paho.Connect(), connectTimeout); err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrConnectionFailed, brokerURL(cfg.Broker), err)
	}
	c.online.Store(true)
	return c, nil
}

// Topics returns the topic builder for the configured prefix.
func (c *Client) Topics() Topics { return c.topics }

// SetLogger replaces the handler failure logger. nil silences it.
func (c *Client) SetLogger(l Logger) {
	if l == nil {
		l = noopLogger{}
	}
	c.mu.Lock()
	c.logger = l
	c.mu.Unlock()
}

// SetOnConnect registers fn to run after every connect and reconnect.
func (c *Client) SetOnConnect(fn func()) {
	c.mu.Lock()
	c.onConnect = fn
	c.mu.Unlock()
}

// SetOnDisconnect registers fn to run when the connection drops.
func (c *Client) SetOnDisconnect(fn func(error)) {
	c.mu.Lock()
	c.onDisconnect = fn
	c.mu.Unlock()
}

func (c *Client) connected() {
	c.online.Store(true)

	c.mu.Lock()
	replay := make(map[string]byte, len(c.routes))
	for filter, r := range c.routes {
		replay[filter] = r.qos
	}
	fn := c.onConnect
	c.mu.Unlock()

	for filter, qos := range replay {
		c.paho.Subscribe(filter, qos, c.deliver(filter))
	}
	c.paho.Publish(c.topics.SystemStatus(c.cfg.Broker.ClientID), 1, true, presenceMessage(presenceOnline, c.cfg.Broker.ClientID, ""))
	if fn != nil {
		fn()
	}
}

func (c *Client) lost(err error) {
	c.online.Store(false)

	c.mu.Lock()
	fn := c.onDisconnect
	c.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// IsConnected reports whether the broker connection is currently up.
func (c *Client) IsConnected() bool {
	return c.paho != nil && c.online.Load() && c.paho.IsConnected()
}

// HealthCheck returns ErrNotConnected while the connection is down.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mqtt health check: %w", err)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// Close marks the service offline and disconnects. It is a no-op on a
// client that never connected.
func (c *Client) Close() error {
	if c.paho == nil {
		return nil
	}
	if c.IsConnected() {
		bye := presenceMessage(presenceOffline, c.cfg.Broker.ClientID, reasonShutdown)
		c.paho.Publish(c.topics.SystemStatus(c.cfg.Broker.ClientID), 1, true, bye).WaitTimeout(ackTimeout)
	}
	c.paho.Disconnect(quiesceMillis)
	c.online.Store(false)
	return nil
}

// Publish sends payload to topic and waits for the acknowledgment qos asks for.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := checkRequest(topic, qos); err != nil {
		return err
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w %s: %d byte payload over the %d limit", ErrPublishFailed, topic, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	if err := await(c.paho.Publish(topic, qos, retained, payload), ackTimeout); err != nil {
		return fmt.Errorf("%w %s: %w", ErrPublishFailed, topic, err)
	}
	return nil
}

// PublishJSON encodes v and publishes it unretained at the configured QoS.
func (c *Client) PublishJSON(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w %s: %w", ErrPublishFailed, topic, err)
	}
	return c.Publish(topic, payload, byte(c.cfg.QoS), false)
}

// Subscribe routes messages matching topic, which may use the + and #
// wildcards, to handler.
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if err := checkRequest(topic, qos); err != nil {
		return err
	}
	if handler == nil {
		return fmt.Errorf("%w %s: nil handler", ErrSubscribeFailed, topic)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.mu.Lock()
	c.routes[topic] = route{qos: qos, handler: handler}
	c.mu.Unlock()

	if err := await(c.paho.Subscribe(topic, qos, c.deliver(topic)), ackTimeout); err != nil {
		c.mu.Lock()
		delete(c.routes, topic)
		c.mu.Unlock()
		return fmt.Errorf("%w %s: %w", ErrSubscribeFailed, topic, err)
	}
	return nil
}

// Unsubscribe drops the route for topic. Messages already in flight may
// still be delivered.
func (c *Client) Unsubscribe(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	c.mu.Lock()
	delete(c.routes, topic)
	c.mu.Unlock()

	if !c.IsConnected() {
		return ErrNotConnected
	}
	if err := await(c.paho.Unsubscribe(topic), ackTimeout); err != nil {
		return fmt.Errorf("%w %s: %w", ErrSubscribeFailed, topic, err)
	}
	return nil
}

// Subscriptions returns the routed topic filters in sorted order.
func (c *Client) Subscriptions() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	topics := make([]string, 0, len(c.routes))
	for t := range c.routes {
		topics = append(topics, t)
	}
	slices.Sort(topics)
	return topics
}

// deliver returns the paho callback for filter. The handler is looked up
// per message so a replaced route takes effect immediately.
func (c *Client) deliver(filter string) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		c.mu.Lock()
		r, ok := c.routes[filter]
		log := c.logger
		c.mu.Unlock()
		if !ok {
			return
		}

		defer func() {
			if p := recover(); p != nil {
				log.Error("mqtt handler panicked", "filter", filter, "topic", msg.Topic(), "panic", p)
			}
		}()
		if err := r.handler(msg.Topic(), msg.Payload()); err != nil {
			log.Warn("mqtt handler failed", "filter", filter, "topic", msg.Topic(), "error", err)
		}
	}
}

func checkRequest(topic string, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > highestQoS {
		return ErrInvalidQoS
	}
	return nil
}

// await blocks until tok completes or timeout passes.
func await(tok pahomqtt.Token, timeout time.Duration) error {
	if !tok.WaitTimeout(timeout) {
		return ErrTimeout
	}
	return tok.Error()
}
