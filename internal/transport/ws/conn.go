package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cwrk-planet/underbyte/internal/domain"

	"github.com/gorilla/websocket"
)

var (
	ErrConnClosed    = errors.New("connection closed")
	ErrSendQueueFull = errors.New("send queue full")
)

// Conn is a live connection as seen by the registry. Send must not block:
// implementations queue the event and return.
type Conn interface {
	Send(ev domain.Event) error
	Close() error
}

// Peer is a Conn whose inbound side can be waited on. Receive blocks until
// the next inbound frame and returns an error once the transport is closed.
type Peer interface {
	Conn
	Receive() error
}

type ConnOptions struct {
	SendQueue    int
	WriteTimeout time.Duration
	PingEvery    time.Duration // 0 disables keepalive pings
	ReadLimit    int64
}

func (o ConnOptions) withDefaults() ConnOptions {
	if o.SendQueue <= 0 {
		o.SendQueue = 64
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 5 * time.Second
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = 1 << 20
	}
	return o
}

// wsConn is a gorilla websocket with a bounded outbound queue drained by its
// own writer goroutine, so a slow client never stalls a broadcast.
type wsConn struct {
	conn     *websocket.Conn
	roomCode string
	username string
	opts     ConnOptions

	send      chan []byte
	closed    chan struct{}
	closeOnce sync.Once
	done      chan struct{} // writer exited
}

func newWsConn(c *websocket.Conn, roomCode, username string, opts ConnOptions) *wsConn {
	opts = opts.withDefaults()
	wc := &wsConn{
		conn:     c,
		roomCode: roomCode,
		username: username,
		opts:     opts,
		send:     make(chan []byte, opts.SendQueue),
		closed:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	c.SetReadLimit(opts.ReadLimit)
	if opts.PingEvery > 0 {
		_ = c.SetReadDeadline(time.Now().Add(2 * opts.PingEvery))
		c.SetPongHandler(func(string) error {
			return c.SetReadDeadline(time.Now().Add(2 * opts.PingEvery))
		})
	}
	go wc.writeLoop()
	return wc
}

func (c *wsConn) Send(ev domain.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ev.Type, err)
	}
	select {
	case <-c.closed:
		return ErrConnClosed
	case <-c.done:
		return ErrConnClosed
	default:
	}
	select {
	case c.send <- b:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Receive discards inbound frames; the stream carries no commands.
func (c *wsConn) Receive() error {
	_, _, err := c.conn.ReadMessage()
	return err
}

func (c *wsConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		<-c.done
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
			time.Now().Add(time.Second))
		err = c.conn.Close()
	})
	return err
}

func (c *wsConn) writeLoop() {
	defer close(c.done)

	var tick <-chan time.Time
	if c.opts.PingEvery > 0 {
		t := time.NewTicker(c.opts.PingEvery)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case b := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				slog.Debug("ws write failed", "room", c.roomCode, "user", c.username, "err", err)
				// unblocks the reader so the lifecycle can leave
				_ = c.conn.Close()
				return
			}
		case <-tick:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.opts.WriteTimeout)); err != nil {
				_ = c.conn.Close()
				return
			}
		case <-c.closed:
			return
		}
	}
}
