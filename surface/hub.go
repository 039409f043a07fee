// Package surface attaches browser displays to a slideshow over websockets.
// The Hub is the slideshow's renderer: every render call becomes a message
// to the connected displays, and display input is handed to the Controller.
// Each display carries the switches it was opened with, which decide the
// transition messages it receives and the input it may send.
package surface

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aouyang1/flickrframe/slideshow"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const broadcastBuffer = 256

// Controller receives input from the displays.
type Controller interface {
	HandleKey(key string) error
	Swipe(dx, dy float64) error
	Resize(width int) error
	ImageFailed() error
	PointerEnter() error
	PointerLeave() error
	ToggleInfo() error
	ToggleFitMode() error
}

// Client is one connected display.
type Client struct {
	ID   string
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte

	// Params are the switches the display page was opened with.
	Params slideshow.Params
}

// view is what a newly connected display needs to catch up.
type view struct {
	loading bool
	errMsg  string
	slide   *slideshow.Slide
	fitMode slideshow.FitMode
}

type Hub struct {
	Broadcast  chan *Message
	Register   chan *Client
	Unregister chan *Client

	mu         sync.RWMutex
	clients    map[*Client]bool
	controller Controller
	view       view

	quit chan struct{}
	once sync.Once
}

func NewHub() *Hub {
	return &Hub{
		Broadcast:  make(chan *Message, broadcastBuffer),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		quit:       make(chan struct{}),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, params slideshow.Params) *Client {
	return &Client{
		ID:     uuid.NewString(),
		Hub:    hub,
		Conn:   conn,
		Send:   make(chan []byte, broadcastBuffer),
		Params: params,
	}
}

// instant displays skip transitions.
func instant(c *Client) bool { return c.Params.DisableTransitions }

func animated(c *Client) bool { return !c.Params.DisableTransitions }

// SetController routes display input to c. A nil controller drops input, as
// between slideshow sessions.
func (h *Hub) SetController(c Controller) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.controller = c
}

func (h *Hub) getController() Controller {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.controller
}

// ClientCount is the number of connected displays.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run processes registrations and broadcasts until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			replay := h.replayLocked()
			h.mu.Unlock()

			for _, msg := range replay {
				client.Send <- msg
			}
			slog.Info("display connected", "client", client.ID, "params", client.Params, "displays", h.ClientCount())

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			slog.Info("display disconnected", "client", client.ID, "displays", h.ClientCount())

		case message := <-h.Broadcast:
			data := mustMarshal(message)

			h.mu.Lock()
			for client := range h.clients {
				if message.to != nil && !message.to(client) {
					continue
				}
				select {
				case client.Send <- data:
				default:
					slog.Warn("display too slow, disconnecting", "client", client.ID)
					close(client.Send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Stop disconnects every display and ends Run.
func (h *Hub) Stop() {
	h.once.Do(func() { close(h.quit) })
}

// replayLocked catches a display up. The fit mode is only replayed once the
// session has set one, so a display opened with fillImage keeps its own
// until then.
func (h *Hub) replayLocked() [][]byte {
	var msgs [][]byte
	v := h.view
	if v.fitMode != "" {
		msgs = append(msgs, mustMarshal(newMessage(MsgFitMode, v.fitMode)))
	}
	if v.slide != nil {
		msgs = append(msgs, mustMarshal(newMessage(MsgSlide, v.slide)))
		msgs = append(msgs, mustMarshal(newMessage(MsgFadeIn, nil)))
	}
	if v.loading {
		msgs = append(msgs, mustMarshal(newMessage(MsgLoading, nil)))
	}
	if v.errMsg != "" {
		msgs = append(msgs, mustMarshal(newMessage(MsgError, v.errMsg)))
	}
	return msgs
}

func (h *Hub) publish(msgType string, data any) {
	h.publishTo(msgType, data, nil)
}

// publishTo queues a message for the displays that to accepts. A nil to
// sends it to every display.
func (h *Hub) publishTo(msgType string, data any, to func(*Client) bool) {
	msg := newMessage(msgType, data)
	msg.to = to
	select {
	case h.Broadcast <- msg:
	default:
		slog.Warn("display broadcast queue full, dropping message", "type", msgType)
	}
}

func (h *Hub) updateView(fn func(*view)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fn(&h.view)
}

// Reset clears the replay state before a new slideshow session starts.
func (h *Hub) Reset() {
	h.updateView(func(v *view) {
		*v = view{}
	})
}

func (h *Hub) ShowLoading() {
	h.updateView(func(v *view) {
		v.loading = true
		v.errMsg = ""
	})
	h.publish(MsgLoading, nil)
}

func (h *Hub) HideLoading() {
	h.updateView(func(v *view) { v.loading = false })
	h.publish(MsgHideLoading, nil)
}

func (h *Hub) ShowError(message string) {
	h.updateView(func(v *view) { v.errMsg = message })
	h.publish(MsgError, message)
}

func (h *Hub) FadeOut() {
	h.publishTo(MsgFadeOut, nil, animated)
}

func (h *Hub) FadeIn() {
	h.publish(MsgFadeIn, nil)
}

func (h *Hub) ShowSlide(slide slideshow.Slide) {
	h.updateView(func(v *view) { v.slide = &slide })
	h.publish(MsgSlide, slide)
}

// UpcomingSlide shows the slide right away on displays that skip
// transitions. The others get it from ShowSlide once the delay is over.
func (h *Hub) UpcomingSlide(slide slideshow.Slide) {
	h.publishTo(MsgSlide, slide, instant)
	h.publishTo(MsgFadeIn, nil, instant)
}

func (h *Hub) SetImage(url string) {
	h.updateView(func(v *view) {
		if v.slide != nil {
			s := *v.slide
			s.ImageURL = url
			v.slide = &s
		}
	})
	h.publish(MsgImage, url)
}

func (h *Hub) SetInfo(info slideshow.Info) {
	h.updateView(func(v *view) {
		if v.slide != nil {
			s := *v.slide
			s.Info = info
			v.slide = &s
		}
	})
	h.publish(MsgInfo, info)
}

func (h *Hub) SetFitMode(mode slideshow.FitMode) {
	h.updateView(func(v *view) { v.fitMode = mode })
	h.publish(MsgFitMode, mode)
}

func (h *Hub) ToggleFullscreen() {
	h.publish(MsgFullscreen, nil)
}

// fullscreen toggles fullscreen on one display only.
func (h *Hub) fullscreen(client *Client) {
	h.publishTo(MsgFullscreen, nil, func(c *Client) bool { return c == client })
}

func (h *Hub) Preload(url string) {
	h.publish(MsgPreload, url)
}

// dispatch hands one display input message to the controller. Fullscreen is
// answered by the hub to the sending display only. A display opened with
// hideInfo has no info or fullscreen input.
func (h *Hub) dispatch(client *Client, in *Input) {
	if !client.accepts(in) {
		slog.Debug("input not accepted from display", "client", client.ID, "type", in.Type, "key", in.Key)
		return
	}
	if in.Type == InFullscreen || (in.Type == InKey && in.Key == slideshow.KeyFullscreen) {
		h.fullscreen(client)
		return
	}

	ctrl := h.getController()
	if ctrl == nil {
		slog.Debug("no slideshow running, input dropped", "client", client.ID, "type", in.Type)
		return
	}

	var err error
	switch in.Type {
	case InKey:
		err = ctrl.HandleKey(in.Key)
	case InSwipe:
		err = ctrl.Swipe(in.DX, in.DY)
	case InResize:
		err = ctrl.Resize(in.Width)
	case InImageError:
		err = ctrl.ImageFailed()
	case InPointer:
		switch in.Action {
		case PointerEnter:
			err = ctrl.PointerEnter()
		case PointerLeave:
			err = ctrl.PointerLeave()
		}
	case InInfoClick:
		err = ctrl.ToggleInfo()
	case InFitMode:
		err = ctrl.ToggleFitMode()
	default:
		slog.Warn("unknown display message", "client", client.ID, "type", in.Type)
		return
	}
	if err != nil {
		slog.Debug("display input not applied", "client", client.ID, "type", in.Type, "error", err)
	}
}

func (c *Client) accepts(in *Input) bool {
	switch in.Type {
	case InKey:
		return c.Params.AcceptsKey(in.Key)
	case InPointer, InInfoClick, InFullscreen:
		return !c.Params.HideInfo
	}
	return true
}

func mustMarshal(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal display message", "error", err)
		return []byte("{}")
	}
	return b
}
