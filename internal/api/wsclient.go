package api

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/schematic-core/internal/auth"
	"github.com/nerrad567/schematic-core/internal/infrastructure/config"
)

// WSClient is one connected renderer.
type WSClient struct {
	hub     *Hub
	conn    *websocket.Conn
	subject string
	role    auth.Role

	// mu guards send, closed and channels. send is closed exactly once,
	// under mu, so enqueue never writes to a closed channel.
	mu       sync.Mutex
	send     chan []byte
	closed   bool
	channels map[string]struct{}
}

func newWSClient(h *Hub, conn *websocket.Conn, subject string, role auth.Role) *WSClient {
	return &WSClient{
		hub:      h,
		conn:     conn,
		subject:  subject,
		role:     role,
		send:     make(chan []byte, wsSendBufferSize),
		channels: make(map[string]struct{}),
	}
}

// enqueue queues data without blocking. It reports false when the queue is
// full; a closed client silently discards.
func (c *WSClient) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// close stops the write pump. It is safe to call more than once.
func (c *WSClient) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *WSClient) subscribed(channel string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.channels[ChannelAll]; ok {
		return true
	}
	_, ok := c.channels[channel]
	return ok
}

func (c *WSClient) setChannels(channels []string, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, ch := range channels {
		if on {
			c.channels[ch] = struct{}{}
		} else {
			delete(c.channels, ch)
		}
	}
}

// readPump handles client requests until the connection fails or the peer
// stops answering pings.
func (c *WSClient) readPump(cfg config.WebSocketConfig) {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	deadline := (cfg.PingInterval + cfg.PongTimeout).Duration()
	extend := func() error { return c.conn.SetReadDeadline(time.Now().Add(deadline)) }

	c.conn.SetReadLimit(int64(cfg.MaxMessageSize))
	extend() //nolint:errcheck // a failed deadline surfaces as a read error
	c.conn.SetPongHandler(func(string) error { return extend() })

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read failed", "subject", c.subject, "error", err)
			}
			return
		}
		// Application traffic counts as liveness too.
		extend() //nolint:errcheck // as above
		c.handle(data)
	}
}

// writePump drains the queue and pings the peer.
func (c *WSClient) writePump(cfg config.WebSocketConfig) {
	ticker := time.NewTicker(cfg.PingInterval.Duration())
	writeWait := cfg.PongTimeout.Duration()
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	write := func(kind int, data []byte) error {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck // write reports it
		return c.conn.WriteMessage(kind, data)
	}

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				write(websocket.CloseMessage, nil) //nolint:errcheck // closing anyway
				return
			}
			if err := write(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *WSClient) handle(data []byte) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.reply("", WSTypeError, errorPayload("invalid JSON message"))
		return
	}

	switch msg.Type {
	case WSTypeSubscribe, WSTypeUnsubscribe:
		channels, ok := decodeChannels(msg.Payload)
		if !ok {
			c.reply(msg.ID, WSTypeError, errorPayload("payload must list channels"))
			return
		}
		on := msg.Type == WSTypeSubscribe
		c.setChannels(channels, on)
		key := "unsubscribed"
		if on {
			key = "subscribed"
			c.hub.logger.Debug("websocket client subscribed", "subject", c.subject, "channels", channels)
		}
		c.reply(msg.ID, WSTypeResponse, map[string]any{key: channels})

	case WSTypeSync:
		snap, ok := c.hub.currentSnapshot()
		if !ok {
			c.reply(msg.ID, WSTypeError, errorPayload("sync is not available"))
			return
		}
		c.reply(msg.ID, WSTypeResponse, snap)

	case WSTypePing:
		c.reply(msg.ID, WSTypePong, nil)

	default:
		c.reply(msg.ID, WSTypeError, errorPayload("unknown message type: "+msg.Type))
	}
}

// decodeChannels reads a WSSubscribePayload from a generically decoded
// payload.
func decodeChannels(payload any) ([]string, bool) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, false
	}
	var sub WSSubscribePayload
	if err := json.Unmarshal(raw, &sub); err != nil || len(sub.Channels) == 0 {
		return nil, false
	}
	return sub.Channels, true
}

func (c *WSClient) reply(id, msgType string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      msgType,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Payload:   payload,
	})
	if err != nil {
		c.hub.logger.Error("encoding websocket reply failed", "type", msgType, "error", err)
		return
	}
	c.enqueue(data)
}

func errorPayload(message string) map[string]string {
	return map[string]string{"message": message}
}
