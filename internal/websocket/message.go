package websocket

import (
	"encoding/json"
	"time"

	"github.com/dom/broadcast-overlay/internal/domain"
)

type MessageType string

const (
	// Client to Server
	MessageTypeGetState             MessageType = "GET_STATE"
	MessageTypeSetState             MessageType = "SET_STATE"
	MessageTypeReplacePlayer1       MessageType = "REPLACE_PLAYER1"
	MessageTypeReplacePlayer2       MessageType = "REPLACE_PLAYER2"
	MessageTypeReplaceMeta          MessageType = "REPLACE_META"
	MessageTypeReplaceColors        MessageType = "REPLACE_COLORS"
	MessageTypeReplaceTextConfig    MessageType = "REPLACE_TEXT_CONFIG"
	MessageTypeReplaceLayout        MessageType = "REPLACE_LAYOUT"
	MessageTypeSetVisibility        MessageType = "SET_VISIBILITY"
	MessageTypeSetAnimationDuration MessageType = "SET_ANIMATION_DURATION"
	MessageTypeSetShowBorders       MessageType = "SET_SHOW_BORDERS"
	MessageTypeReset                MessageType = "RESET"

	// Server to Client
	MessageTypeState MessageType = "STATE"
	MessageTypeError MessageType = "ERROR"
)

type Message struct {
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

func NewMessage(msgType MessageType, payload interface{}) (*Message, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Message{
		Type:      msgType,
		Payload:   payloadBytes,
		Timestamp: time.Now().UnixMilli(),
	}, nil
}

// Client to Server payloads

type VisibilityPayload struct {
	Visible bool `json:"visible"`
}

type AnimationDurationPayload struct {
	DurationMs int `json:"durationMs"`
}

type ShowBordersPayload struct {
	Show bool `json:"show"`
}

// ColorsPayload and the other replace payloads reuse the domain shapes
// directly; the envelope carries them as raw JSON.

type ColorsPayload map[string]string

type TextConfigPayload map[string]string

type LayoutPayload map[domain.Slot]domain.SlotLayout

// Server to Client payloads

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
