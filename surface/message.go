package surface

import (
	"encoding/json"
	"log/slog"
)

// Outbound message types, sent to displays.
const (
	MsgLoading     = "loading"
	MsgHideLoading = "hideLoading"
	MsgError       = "error"
	MsgFadeOut     = "fadeOut"
	MsgFadeIn      = "fadeIn"
	MsgSlide       = "slide"
	MsgImage       = "image"
	MsgInfo        = "info"
	MsgFitMode     = "fitMode"
	MsgFullscreen  = "fullscreen"
	MsgPreload     = "preload"
)

// Inbound message types, sent by displays.
const (
	InKey        = "key"
	InSwipe      = "swipe"
	InResize     = "resize"
	InImageError = "imageError"
	InPointer    = "pointer"
	InInfoClick  = "infoClick"
	InFitMode    = "fitMode"
	InFullscreen = "fullscreen"

	PointerEnter = "enter"
	PointerLeave = "leave"
)

type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`

	// to picks the displays that receive the message, nil means all.
	to func(*Client) bool
}

// Input is a message from a display. Only the fields of its type are set.
type Input struct {
	Type   string  `json:"type"`
	Key    string  `json:"key,omitempty"`
	DX     float64 `json:"dx,omitempty"`
	DY     float64 `json:"dy,omitempty"`
	Width  int     `json:"width,omitempty"`
	Action string  `json:"action,omitempty"`
}

func newMessage(msgType string, data any) *Message {
	msg := &Message{Type: msgType}
	if data == nil {
		return msg
	}
	raw, err := json.Marshal(data)
	if err != nil {
		slog.Error("failed to marshal message data", "type", msgType, "error", err)
		return msg
	}
	msg.Data = raw
	return msg
}
