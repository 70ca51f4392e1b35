package server

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Client is one websocket connection with its outbound queue. The read pump
// feeds the gateway; the write pump drains send.
type Client struct {
	gateway   *Gateway
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
	logger    *zap.Logger

	mu    sync.Mutex
	runID string
}

func newClient(gw *Gateway, conn *websocket.Conn, sessionID string) *Client {
	return &Client{
		gateway:   gw,
		conn:      conn,
		send:      make(chan []byte, sendBuffer),
		sessionID: sessionID,
		logger:    gw.logger.With(zap.String("session_id", sessionID)),
	}
}

// RunID returns the run this client currently owns, or "".
func (c *Client) RunID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runID
}

func (c *Client) setRunID(runID string) {
	c.mu.Lock()
	c.runID = runID
	c.mu.Unlock()
}

// enqueue serializes and queues a message. A client whose queue is full
// drops the message rather than stalling the run.
func (c *Client) enqueue(msg ServerMessage) {
	raw, err := encodeServerMessage(msg)
	if err != nil {
		c.logger.Error("failed to encode message", zap.Error(err))
		return
	}
	select {
	case c.send <- raw:
	default:
		c.logger.Warn("send queue full, dropping message",
			zap.String("type", msg.Type))
	}
}

func (c *Client) readPump() {
	defer func() {
		c.gateway.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug("websocket closed unexpectedly", zap.Error(err))
			}
			return
		}

		msg, err := ParseClientMessage(raw)
		if err != nil {
			c.logger.Warn("rejecting malformed message", zap.Error(err))
			c.enqueue(errorMessage("", err.Error()))
			continue
		}

		c.gateway.handleMessage(c, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case raw, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
