package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
)

// ErrConnectionLost is returned once the transport to the relay is gone and
// the reconnect policy has been exhausted
var ErrConnectionLost = errors.New("connection to relay lost")

// ErrChannelClosed is returned when sending on a closed channel
var ErrChannelClosed = errors.New("channel closed")

// Incoming is one item delivered by a NetworkChannel. Reconnected items carry
// no data and mark that the transport was re-established, so any relay-side
// state tied to the old connection is gone.
type Incoming struct {
	Data        []byte
	Reconnected bool
}

// NetworkChannel is the peer's ordered, bidirectional link to the relay
type NetworkChannel interface {
	// Send writes one message. Messages are delivered in call order.
	Send(ctx context.Context, data []byte) error
	// Inbound yields received messages in arrival order. It is closed when
	// the channel is permanently lost or closed.
	Inbound() <-chan Incoming
	// Err reports why Inbound was closed, nil after a local Close
	Err() error
	Close() error
}

// ChannelConfig holds the websocket channel settings
type ChannelConfig struct {
	URL string
	// MaxRetries bounds reconnect attempts after the link drops
	MaxRetries int
	// RetryInterval is the fixed wait between attempts
	RetryInterval time.Duration
	// HandshakeTimeout bounds each dial
	HandshakeTimeout time.Duration
}

// DefaultChannelConfig returns the default reconnect policy for url
func DefaultChannelConfig(url string) ChannelConfig {
	return ChannelConfig{
		URL:              url,
		MaxRetries:       5,
		RetryInterval:    time.Second,
		HandshakeTimeout: 10 * time.Second,
	}
}

// WebsocketChannel is a NetworkChannel over gorilla/websocket that redials
// with a constant backoff when the link drops
type WebsocketChannel struct {
	cfg    ChannelConfig
	dialer *websocket.Dialer
	logger *slog.Logger

	writeMu sync.Mutex
	ws      *websocket.Conn

	inbound   chan Incoming
	err       error
	closed    chan struct{}
	closeOnce sync.Once
}

var _ NetworkChannel = (*WebsocketChannel)(nil)

// DialWebsocket connects to the relay, retrying under the configured policy
func DialWebsocket(ctx context.Context, cfg ChannelConfig, logger *slog.Logger) (*WebsocketChannel, error) {
	c := &WebsocketChannel{
		cfg: cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		logger:  logger.With(slog.String("component", "channel")),
		inbound: make(chan Incoming, 64),
		closed:  make(chan struct{}),
	}

	ws, err := c.dial(ctx)
	if err != nil {
		return nil, err
	}
	c.ws = ws

	go c.readLoop(ctx)
	return c, nil
}

func (c *WebsocketChannel) policy(ctx context.Context) backoff.BackOff {
	b := backoff.WithMaxRetries(backoff.NewConstantBackOff(c.cfg.RetryInterval), uint64(max(c.cfg.MaxRetries, 0)))
	return backoff.WithContext(b, ctx)
}

func (c *WebsocketChannel) dial(ctx context.Context) (*websocket.Conn, error) {
	var ws *websocket.Conn
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		select {
		case <-c.closed:
			return backoff.Permanent(ErrChannelClosed)
		default:
		}
		conn, _, err := c.dialer.DialContext(ctx, c.cfg.URL, nil)
		if err != nil {
			c.logger.Warn("dial failed",
				slog.String("url", c.cfg.URL),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			return err
		}
		ws = conn
		return nil
	}, c.policy(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnectionLost, err)
	}
	return ws, nil
}

func (c *WebsocketChannel) readLoop(ctx context.Context) {
	defer close(c.inbound)

	ws := c.ws
	for {
		_, data, err := ws.ReadMessage()
		if err == nil {
			if !c.push(Incoming{Data: data}) {
				return
			}
			continue
		}

		select {
		case <-c.closed:
			return
		default:
		}
		c.logger.Warn("relay link dropped, reconnecting", slog.String("error", err.Error()))

		next, err := c.dial(ctx)
		if err != nil {
			c.err = err
			c.logger.Error("giving up on relay", slog.String("error", err.Error()))
			return
		}

		c.writeMu.Lock()
		_ = c.ws.Close()
		c.ws = next
		c.writeMu.Unlock()
		ws = next

		c.logger.Info("relay link re-established")
		if !c.push(Incoming{Reconnected: true}) {
			return
		}
	}
}

func (c *WebsocketChannel) push(in Incoming) bool {
	select {
	case c.inbound <- in:
		return true
	case <-c.closed:
		return false
	}
}

// Send writes one text frame
func (c *WebsocketChannel) Send(ctx context.Context, data []byte) error {
	select {
	case <-c.closed:
		return ErrChannelClosed
	default:
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.ws.SetWriteDeadline(deadline)
	} else {
		_ = c.ws.SetWriteDeadline(time.Time{})
	}
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

// Inbound returns the receive side of the channel
func (c *WebsocketChannel) Inbound() <-chan Incoming {
	return c.inbound
}

// Err returns ErrConnectionLost once reconnecting has failed
func (c *WebsocketChannel) Err() error {
	return c.err
}

// Close sends a close frame and tears the link down
func (c *WebsocketChannel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		c.writeMu.Lock()
		defer c.writeMu.Unlock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		err = c.ws.Close()
	})
	return err
}
