package signaling

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mossy-p/rendezvous/internal/models"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. 64 KB covers any SDP.
	maxMessageSize = 64 * 1024

	// Outbound queue depth per connection.
	sendBuffer = 256
)

// Client wraps a single websocket connection and implements Conn. A
// read pump decodes inbound frames and feeds them to the hub; a write
// pump serializes all outbound writes so the hub never blocks on I/O.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	log  zerolog.Logger

	send chan []byte
	done chan struct{}
	once sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn, log zerolog.Logger) *Client {
	id := uuid.New().String()
	return &Client{
		id:   id,
		hub:  hub,
		conn: conn,
		log:  log.With().Str("conn", id).Logger(),
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
}

func (c *Client) ID() string { return c.id }

// Deliver queues msg for the write pump. It never blocks; if the
// connection is gone or its queue is full the message is dropped,
// which is fine because signaling is superseded by the next message or
// by a membership notification.
func (c *Client) Deliver(msg *models.SignalMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to marshal outbound message")
		return
	}
	select {
	case c.send <- data:
	default:
		c.log.Warn().Str("type", string(msg.Type)).Msg("send queue full, dropping message")
	}
}

// Close asks the write pump to flush what is queued, emit a close
// frame and drop the transport. The read pump then exits and reports
// the disconnect to the hub exactly once.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
	})
}

// ReadPump pumps frames from the websocket into the hub. It is the
// only reader of the connection and must run in its own goroutine.
// Malformed frames are dropped without ending the connection: a buggy
// peer must not be able to terminate the session for the other party.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Disconnect(c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.log.Debug().Err(err).Msg("websocket read error")
			}
			break
		}

		msg, err := models.DecodeSignal(data)
		if err != nil {
			c.log.Debug().Err(err).Msg("dropping malformed frame")
			continue
		}
		c.hub.Dispatch(c, msg)
	}
}

// WritePump pumps queued messages to the websocket and keeps the
// connection alive with pings. It is the only writer of the connection
// and must run in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			// Flush anything queued ahead of the close, notably the
			// eviction notice on the overflow path.
			for {
				select {
				case data := <-c.send:
					c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
						return
					}
				default:
					c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					c.conn.WriteMessage(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
					return
				}
			}
		}
	}
}
