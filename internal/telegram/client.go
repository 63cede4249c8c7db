// Package telegram connects the radar to a Telegram MTProto gateway over
// websocket. The gateway owns the user session; this client authenticates,
// streams incoming messages, and sends alerts to the user's self chat.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sugawarayuuta/sonnet"

	"alpha-radar/internal/domain"
)

// Config configures the gateway connection.
type Config struct {
	URL     string
	APIID   int
	APIHash string
	Phone   string
	Session string

	// ReconnectDelay is the initial delay before a reconnect attempt; it
	// doubles up to MaxReconnectDelay.
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
	// ConnectionRetries bounds consecutive failed reconnect attempts.
	ConnectionRetries int
	WriteTimeout      time.Duration
}

// DefaultConfig returns the default gateway configuration for the given URL.
func DefaultConfig(url string) Config {
	return Config{
		URL:               url,
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		ConnectionRetries: 10,
		WriteTimeout:      10 * time.Second,
	}
}

// frame is the gateway wire format, a tagged union over Type.
type frame struct {
	Type string `json:"type"`

	// auth
	APIID   int    `json:"api_id,omitempty"`
	APIHash string `json:"api_hash,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Session string `json:"session,omitempty"`

	// message
	ChatID    int64  `json:"chat_id,omitempty"`
	MessageID int64  `json:"message_id,omitempty"`
	Text      string `json:"text,omitempty"`
	Forwarded bool   `json:"forwarded,omitempty"`

	// flood_wait
	Seconds int `json:"seconds,omitempty"`

	// send
	Peer string `json:"peer,omitempty"`
}

// MessageHandler receives each incoming chat message. All mention records
// triggered by one message complete before the handler returns, so a slow
// repository naturally slows message delivery instead of dropping it.
type MessageHandler func(domain.MessageEvent)

// Client is the gateway websocket client. It reconnects with capped
// exponential backoff and honors flood_wait frames by sleeping.
type Client struct {
	cfg     Config
	logger  *slog.Logger
	handler MessageHandler

	conn      *websocket.Conn
	connMu    sync.Mutex
	connected atomic.Bool
	closed    atomic.Bool

	done  chan struct{}
	fatal chan error
	wg    sync.WaitGroup
}

// NewClient creates a gateway client. Register a handler with OnMessage
// before calling Start.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		cfg:    cfg,
		logger: logger.With("component", "telegram"),
		done:   make(chan struct{}),
		fatal:  make(chan error, 1),
	}
}

// OnMessage registers the incoming-message handler. Must be called before
// Start; the handler is invoked from the read loop, one message at a time.
func (c *Client) OnMessage(h MessageHandler) {
	c.handler = h
}

// Start dials the gateway, authenticates, and begins streaming messages.
func (c *Client) Start(ctx context.Context) error {
	if err := c.connect(ctx); err != nil {
		return err
	}

	c.wg.Add(1)
	go c.readLoop(ctx)
	return nil
}

// Fatal delivers the error that ended the stream after reconnect retries
// were exhausted.
func (c *Client) Fatal() <-chan error {
	return c.fatal
}

// Connected reports whether the gateway stream is currently up.
func (c *Client) Connected() bool {
	return c.connected.Load()
}

// connect dials and authenticates one websocket session.
func (c *Client) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}

	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return fmt.Errorf("dial gateway: %w", err)
	}

	auth := frame{
		Type:    "auth",
		APIID:   c.cfg.APIID,
		APIHash: c.cfg.APIHash,
		Phone:   c.cfg.Phone,
		Session: c.cfg.Session,
	}
	conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	if err := conn.WriteJSON(auth); err != nil {
		conn.Close()
		return fmt.Errorf("send auth: %w", err)
	}

	conn.SetReadDeadline(time.Now().Add(30 * time.Second))
	var ready frame
	if err := readFrame(conn, &ready); err != nil {
		conn.Close()
		return fmt.Errorf("await auth confirmation: %w", err)
	}
	if ready.Type != "ready" {
		conn.Close()
		return fmt.Errorf("gateway refused auth: %q", ready.Type)
	}
	conn.SetReadDeadline(time.Time{})

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
	c.connected.Store(true)

	c.logger.Info("gateway connected", "url", c.cfg.URL)
	return nil
}

// readFrame reads and decodes one frame.
func readFrame(conn *websocket.Conn, f *frame) error {
	_, data, err := conn.ReadMessage()
	if err != nil {
		return err
	}
	return sonnet.Unmarshal(data, f)
}

// readLoop streams frames until the client is closed or reconnects are
// exhausted.
func (c *Client) readLoop(ctx context.Context) {
	defer c.wg.Done()

	for {
		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()

		var f frame
		err := readFrame(conn, &f)
		if err != nil {
			if c.closed.Load() {
				return
			}
			c.connected.Store(false)
			c.logger.Warn("gateway stream broken", "error", err)
			if !c.reconnect(ctx) {
				return
			}
			continue
		}

		switch f.Type {
		case "message":
			if f.Text == "" || c.handler == nil {
				continue
			}
			c.handler(domain.MessageEvent{
				Text:      f.Text,
				ChatID:    f.ChatID,
				MessageID: f.MessageID,
				Forwarded: f.Forwarded,
			})
		case "flood_wait":
			// Rate limit is surfaced by sleeping, never by erroring.
			c.logger.Warn("flood wait", "seconds", f.Seconds)
			select {
			case <-time.After(time.Duration(f.Seconds) * time.Second):
			case <-c.done:
				return
			case <-ctx.Done():
				return
			}
		case "ping":
			c.writeFrame(frame{Type: "pong"})
		default:
			c.logger.Debug("ignoring gateway frame", "type", f.Type)
		}
	}
}

// reconnect retries the connection with capped exponential backoff.
// Returns false when retries are exhausted or the client is shutting down,
// after delivering the terminal error on Fatal.
func (c *Client) reconnect(ctx context.Context) bool {
	delay := c.cfg.ReconnectDelay

	for attempt := 1; attempt <= c.cfg.ConnectionRetries; attempt++ {
		select {
		case <-time.After(delay):
		case <-c.done:
			return false
		case <-ctx.Done():
			return false
		}

		if err := c.connect(ctx); err != nil {
			c.logger.Warn("reconnect failed", "attempt", attempt, "error", err)
			delay *= 2
			if delay > c.cfg.MaxReconnectDelay {
				delay = c.cfg.MaxReconnectDelay
			}
			continue
		}
		return true
	}

	select {
	case c.fatal <- fmt.Errorf("gateway reconnect retries exhausted (%d)", c.cfg.ConnectionRetries):
	default:
	}
	return false
}

// writeFrame sends one frame with the configured write deadline.
func (c *Client) writeFrame(f frame) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return c.conn.WriteJSON(f)
}

// SendSelf delivers text to the authenticated user's self chat.
func (c *Client) SendSelf(_ context.Context, text string) error {
	if !c.connected.Load() {
		return fmt.Errorf("gateway disconnected")
	}
	if err := c.writeFrame(frame{Type: "send", Peer: "me", Text: text}); err != nil {
		return fmt.Errorf("send to self chat: %w", err)
	}
	return nil
}

// Close shuts the client down. Idempotent.
func (c *Client) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
	}
	c.connMu.Unlock()
	c.connected.Store(false)

	c.wg.Wait()
	return nil
}
