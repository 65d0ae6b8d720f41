package websocket

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/dom/broadcast-overlay/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024
)

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
	id   uuid.UUID
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
		id:   uuid.New(),
	}
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
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
				log.Printf("websocket error: %v", err)
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("failed to unmarshal message: %v", err)
			continue
		}

		c.handleMessage(&msg)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
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

func (c *Client) handleMessage(msg *Message) {
	ctx := context.Background()
	store := c.hub.store

	switch msg.Type {
	case MessageTypeGetState:
		c.sendState(store.State())

	case MessageTypeSetState:
		if _, err := store.SetState(ctx, msg.Payload); err != nil {
			c.sendError("INVALID_STATE", "State document could not be parsed")
			return
		}

	case MessageTypeReplacePlayer1:
		var player domain.PlayerState
		if err := json.Unmarshal(msg.Payload, &player); err != nil {
			c.sendError("INVALID_PAYLOAD", "Invalid player payload")
			return
		}
		store.ReplacePlayer1(ctx, player)

	case MessageTypeReplacePlayer2:
		var player domain.PlayerState
		if err := json.Unmarshal(msg.Payload, &player); err != nil {
			c.sendError("INVALID_PAYLOAD", "Invalid player payload")
			return
		}
		store.ReplacePlayer2(ctx, player)

	case MessageTypeReplaceMeta:
		var meta domain.Meta
		if err := json.Unmarshal(msg.Payload, &meta); err != nil {
			c.sendError("INVALID_PAYLOAD", "Invalid meta payload")
			return
		}
		store.ReplaceMeta(ctx, meta)

	case MessageTypeReplaceColors:
		var colors ColorsPayload
		if err := json.Unmarshal(msg.Payload, &colors); err != nil {
			c.sendError("INVALID_PAYLOAD", "Invalid colors payload")
			return
		}
		store.ReplaceColors(ctx, colors)

	case MessageTypeReplaceTextConfig:
		var textConfig TextConfigPayload
		if err := json.Unmarshal(msg.Payload, &textConfig); err != nil {
			c.sendError("INVALID_PAYLOAD", "Invalid text config payload")
			return
		}
		store.ReplaceTextConfig(ctx, textConfig)

	case MessageTypeReplaceLayout:
		var layout LayoutPayload
		if err := json.Unmarshal(msg.Payload, &layout); err != nil {
			c.sendError("INVALID_PAYLOAD", "Invalid layout payload")
			return
		}
		store.ReplaceLayout(ctx, layout)

	case MessageTypeSetVisibility:
		var payload VisibilityPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError("INVALID_PAYLOAD", "Invalid visibility payload")
			return
		}
		store.SetVisibility(ctx, payload.Visible)

	case MessageTypeSetAnimationDuration:
		var payload AnimationDurationPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError("INVALID_PAYLOAD", "Invalid animation duration payload")
			return
		}
		store.SetAnimationDuration(ctx, payload.DurationMs)

	case MessageTypeSetShowBorders:
		var payload ShowBordersPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			c.sendError("INVALID_PAYLOAD", "Invalid show borders payload")
			return
		}
		store.SetShowBorders(ctx, payload.Show)

	case MessageTypeReset:
		store.Reset(ctx)

	default:
		c.sendError("UNKNOWN_TYPE", "Unknown message type")
	}
}

func (c *Client) sendState(state *domain.BroadcastState) {
	msg, err := NewMessage(MessageTypeState, state)
	if err != nil {
		log.Printf("failed to build state message: %v", err)
		return
	}
	c.Send(msg)
}

func (c *Client) sendError(code, message string) {
	msg, _ := NewMessage(MessageTypeError, ErrorPayload{
		Code:    code,
		Message: message,
	})
	c.Send(msg)
}

func (c *Client) Send(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("failed to marshal message: %v", err)
		return
	}

	select {
	case c.send <- data:
	default:
		// Buffer full, drop rather than block the caller. The client will
		// catch up on the next broadcast or an explicit GET_STATE.
	}
}

func (c *Client) Close() {
	close(c.send)
}
