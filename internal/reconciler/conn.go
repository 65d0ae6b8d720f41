package reconciler

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/dom/broadcast-overlay/internal/domain"
	ws "github.com/dom/broadcast-overlay/internal/websocket"
	gorillaWS "github.com/gorilla/websocket"
)

// Conn is the operator-side WebSocket transport. It implements Sender for
// outbound edits and feeds inbound STATE broadcasts into a Reconciler.
type Conn struct {
	mu   sync.Mutex
	conn *gorillaWS.Conn
}

func Dial(url string) (*Conn, error) {
	conn, _, err := gorillaWS.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	return &Conn{conn: conn}, nil
}

func (c *Conn) Close() error {
	return c.conn.Close()
}

var groupMessageTypes = map[Group]ws.MessageType{
	GroupPlayer1:    ws.MessageTypeReplacePlayer1,
	GroupPlayer2:    ws.MessageTypeReplacePlayer2,
	GroupMeta:       ws.MessageTypeReplaceMeta,
	GroupColors:     ws.MessageTypeReplaceColors,
	GroupTextConfig: ws.MessageTypeReplaceTextConfig,
	GroupLayout:     ws.MessageTypeReplaceLayout,
}

func (c *Conn) SendReplace(group Group, value interface{}) error {
	msgType, ok := groupMessageTypes[group]
	if !ok {
		return fmt.Errorf("unknown field group %q", group)
	}
	return c.write(msgType, value)
}

func (c *Conn) SendGlobal(field string, value interface{}) error {
	switch field {
	case "visibility":
		return c.write(ws.MessageTypeSetVisibility, ws.VisibilityPayload{Visible: value.(bool)})
	case "animationDuration":
		return c.write(ws.MessageTypeSetAnimationDuration, ws.AnimationDurationPayload{DurationMs: value.(int)})
	case "showBorders":
		return c.write(ws.MessageTypeSetShowBorders, ws.ShowBordersPayload{Show: value.(bool)})
	}
	return fmt.Errorf("unknown global field %q", field)
}

// RequestState asks the server to push the current snapshot, the pull
// fallback for a client that suspects it missed a broadcast.
func (c *Conn) RequestState() error {
	return c.write(ws.MessageTypeGetState, nil)
}

func (c *Conn) Reset() error {
	return c.write(ws.MessageTypeReset, nil)
}

func (c *Conn) write(msgType ws.MessageType, payload interface{}) error {
	msg, err := ws.NewMessage(msgType, payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// ReadLoop feeds every STATE broadcast into the reconciler until the
// connection closes. onState, when non-nil, observes each merged snapshot.
func (c *Conn) ReadLoop(rec *Reconciler, onState func(*domain.BroadcastState)) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			log.Printf("reconciler: connection closed: %v", err)
			return
		}

		var msg ws.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("reconciler: failed to unmarshal message: %v", err)
			continue
		}

		switch msg.Type {
		case ws.MessageTypeState:
			var state domain.BroadcastState
			if err := json.Unmarshal(msg.Payload, &state); err != nil {
				log.Printf("reconciler: failed to unmarshal state: %v", err)
				continue
			}
			state.Normalize()
			rec.ApplyRemote(&state)
			if onState != nil {
				onState(rec.State())
			}

		case ws.MessageTypeError:
			var errPayload ws.ErrorPayload
			json.Unmarshal(msg.Payload, &errPayload)
			log.Printf("reconciler: server error %s: %s", errPayload.Code, errPayload.Message)
		}
	}
}
