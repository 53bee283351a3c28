package realtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"PetPal/pkg/services"
)

type ClientOptions struct {
	ReadLimit    int64
	PingInterval time.Duration
	PongWait     time.Duration
	WriteWait    time.Duration
	SendBuffer   int
}

func (o ClientOptions) withDefaults() ClientOptions {
	if o.ReadLimit <= 0 {
		o.ReadLimit = 64 << 10
	}
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingInterval <= 0 || o.PingInterval >= o.PongWait {
		o.PingInterval = o.PongWait * 9 / 10
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 64
	}
	return o
}

// Client wraps one upgraded connection. Reads happen on the goroutine that
// calls Run; writes happen on a dedicated writer goroutine fed by a bounded
// queue.
type Client struct {
	id   string
	user services.ParticipantView
	conn *websocket.Conn
	opts ClientOptions
	log  *slog.Logger

	send chan []byte
	done chan struct{}
	once sync.Once
}

func NewClient(conn *websocket.Conn, user services.ParticipantView, opts ClientOptions, log *slog.Logger) *Client {
	opts = opts.withDefaults()
	id := uuid.NewString()
	return &Client{
		id:   id,
		user: user,
		conn: conn,
		opts: opts,
		log:  log.With("session", id, "user_id", user.ID),
		send: make(chan []byte, opts.SendBuffer),
		done: make(chan struct{}),
	}
}

func (c *Client) ID() string                     { return c.id }
func (c *Client) UserID() uint                   { return c.user.ID }
func (c *Client) User() services.ParticipantView { return c.user }

func (c *Client) Send(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- payload:
		return true
	default:
		c.log.Warn("realtime - send - queue full, frame dropped")
		return false
	}
}

func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		_ = c.conn.Close()
	})
}

// Run starts the writer and then reads frames until the connection fails,
// handing each text frame to handle in arrival order.
func (c *Client) Run(ctx context.Context, handle func(raw []byte)) {
	go c.writeLoop()
	defer c.Close()

	c.conn.SetReadLimit(c.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	})

	for {
		mt, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				c.log.Debug("realtime - read - connection lost", "error", err)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		handle(raw)
		if ctx.Err() != nil {
			return
		}
	}
}

func (c *Client) writeLoop() {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.log.Debug("realtime - write - failed", "error", err)
				c.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.opts.WriteWait)); err != nil {
				c.Close()
				return
			}
		}
	}
}
