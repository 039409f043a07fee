package surface

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aouyang1/flickrframe/slideshow"
	"github.com/gorilla/websocket"
)

type fakeController struct {
	calls chan string
}

func newFakeController() *fakeController {
	return &fakeController{calls: make(chan string, 16)}
}

func (f *fakeController) record(call string) error {
	f.calls <- call
	return nil
}

func (f *fakeController) HandleKey(key string) error { return f.record("key:" + key) }
func (f *fakeController) Swipe(dx, dy float64) error {
	return f.record(fmt.Sprintf("swipe:%v,%v", dx, dy))
}
func (f *fakeController) Resize(width int) error { return f.record(fmt.Sprintf("resize:%d", width)) }
func (f *fakeController) ImageFailed() error { return f.record("imageError") }
func (f *fakeController) PointerEnter() error { return f.record("enter") }
func (f *fakeController) PointerLeave() error { return f.record("leave") }
func (f *fakeController) ToggleInfo() error { return f.record("info") }
func (f *fakeController) ToggleFitMode() error { return f.record("fitMode") }

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub()
	go hub.Run()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := hub.ServeWS(w, r); err != nil {
			t.Logf("serve ws: %v", err)
		}
	}))
	t.Cleanup(func() {
		srv.Close()
		hub.Stop()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, hub *Hub, url string) *websocket.Conn {
	t.Helper()
	before := hub.ClientCount()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	waitFor(t, "display registration", func() bool { return hub.ClientCount() > before })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("failed to read message: %v", err)
	}
	return msg
}

// readUntil reads messages until one of msgType arrives and returns the types
// seen before it.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) (Message, []string) {
	t.Helper()
	var seen []string
	for range 20 {
		msg := readMessage(t, conn)
		if msg.Type == msgType {
			return msg, seen
		}
		seen = append(seen, msg.Type)
	}
	t.Fatalf("no %s message received, saw %v", msgType, seen)
	return Message{}, nil
}

func TestHub_BroadcastsRenderCalls(t *testing.T) {
	hub, url := startHub(t)
	a := dial(t, hub, url)
	b := dial(t, hub, url)

	slide := slideshow.Slide{Index: 2, Total: 5, PhotoID: "p2", ImageURL: "https://img/p2_b.jpg"}
	hub.ShowSlide(slide)

	for _, conn := range []*websocket.Conn{a, b} {
		msg, _ := readUntil(t, conn, MsgSlide)
		var got slideshow.Slide
		if err := json.Unmarshal(msg.Data, &got); err != nil {
			t.Fatalf("failed to decode slide: %v", err)
		}
		if got.PhotoID != "p2" || got.Index != 2 || got.ImageURL != slide.ImageURL {
			t.Errorf("unexpected slide: %+v", got)
		}
	}

	hub.Preload("https://img/p3_b.jpg")
	msg, _ := readUntil(t, a, MsgPreload)
	var url2 string
	if err := json.Unmarshal(msg.Data, &url2); err != nil || url2 != "https://img/p3_b.jpg" {
		t.Errorf("unexpected preload payload %s: %v", msg.Data, err)
	}
}

func TestHub_ReplaysViewToNewDisplay(t *testing.T) {
	hub, url := startHub(t)

	hub.ShowLoading()
	hub.SetFitMode(slideshow.FitWidth)
	hub.ShowSlide(slideshow.Slide{PhotoID: "p1", ImageURL: "https://img/p1_b.jpg"})
	hub.HideLoading()
	hub.SetImage("https://img/p1_k.jpg")
	waitFor(t, "broadcast queue to drain", func() bool { return len(hub.Broadcast) == 0 })

	conn := dial(t, hub, url)

	first := readMessage(t, conn)
	if first.Type != MsgFitMode || string(first.Data) != `"width"` {
		t.Errorf("expected fit mode replay first, got %s %s", first.Type, first.Data)
	}
	msg, _ := readUntil(t, conn, MsgSlide)
	var slide slideshow.Slide
	if err := json.Unmarshal(msg.Data, &slide); err != nil {
		t.Fatalf("failed to decode slide: %v", err)
	}
	if slide.PhotoID != "p1" || slide.ImageURL != "https://img/p1_k.jpg" {
		t.Errorf("replayed slide should carry the latest image: %+v", slide)
	}
	if next := readMessage(t, conn); next.Type != MsgFadeIn {
		t.Errorf("expected fade in after the replayed slide, got %s", next.Type)
	}
}

func TestHub_ReplaysError(t *testing.T) {
	hub, url := startHub(t)

	hub.ShowLoading()
	hub.ShowError("Error loading carousel. Please try again later.")
	waitFor(t, "broadcast queue to drain", func() bool { return len(hub.Broadcast) == 0 })

	conn := dial(t, hub, url)
	msg, seen := readUntil(t, conn, MsgError)
	if !strings.Contains(string(msg.Data), "Error loading carousel") {
		t.Errorf("unexpected error payload %s", msg.Data)
	}
	if len(seen) != 1 || seen[0] != MsgLoading {
		t.Errorf("expected loading before the error, saw %v", seen)
	}
}

func TestHub_DispatchesInput(t *testing.T) {
	hub, url := startHub(t)
	ctrl := newFakeController()
	hub.SetController(ctrl)
	conn := dial(t, hub, url)

	inputs := []struct {
		in   Input
		want string
	}{
		{Input{Type: InKey, Key: "n"}, "key:n"},
		{Input{Type: InSwipe, DX: 120, DY: 4}, "swipe:120,4"},
		{Input{Type: InResize, Width: 1280}, "resize:1280"},
		{Input{Type: InImageError}, "imageError"},
		{Input{Type: InPointer, Action: PointerEnter}, "enter"},
		{Input{Type: InPointer, Action: PointerLeave}, "leave"},
		{Input{Type: InInfoClick}, "info"},
		{Input{Type: InFitMode}, "fitMode"},
	}

	for _, tt := range inputs {
		if err := conn.WriteJSON(tt.in); err != nil {
			t.Fatalf("failed to write input: %v", err)
		}
		select {
		case got := <-ctrl.calls:
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("input %+v was not dispatched", tt.in)
		}
	}
}

func TestHub_InputWithoutController(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, hub, url)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"key","key":"n"}`)); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`not json`)); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if hub.ClientCount() != 1 {
		t.Fatal("connection should survive dropped and invalid input")
	}
	hub.FadeOut()
	if msg, _ := readUntil(t, conn, MsgFadeOut); msg.Type != MsgFadeOut {
		t.Errorf("expected fade out, got %s", msg.Type)
	}
}

func TestHub_UnregistersOnClose(t *testing.T) {
	hub, url := startHub(t)
	conn := dial(t, hub, url)

	conn.Close()
	waitFor(t, "display to unregister", func() bool { return hub.ClientCount() == 0 })
}

func TestHub_NoFitModeReplayUntilSet(t *testing.T) {
	hub, url := startHub(t)

	hub.ShowSlide(slideshow.Slide{PhotoID: "p1", ImageURL: "https://img/p1_b.jpg"})
	waitFor(t, "broadcast queue to drain", func() bool { return len(hub.Broadcast) == 0 })

	conn := dial(t, hub, url+"?fillImage")
	if first := readMessage(t, conn); first.Type != MsgSlide {
		t.Errorf("a fill image display should keep its fit mode, got %s %s first", first.Type, first.Data)
	}

	hub.SetFitMode(slideshow.FitWidth)
	hub.Reset()
	hub.ShowSlide(slideshow.Slide{PhotoID: "p2", ImageURL: "https://img/p2_b.jpg"})
	waitFor(t, "broadcast queue to drain", func() bool { return len(hub.Broadcast) == 0 })

	next := dial(t, hub, url)
	if first := readMessage(t, next); first.Type != MsgSlide {
		t.Errorf("reset should forget the fit mode, got %s first", first.Type)
	}
}

func TestHub_FullscreenOnlyToSender(t *testing.T) {
	hub, url := startHub(t)
	ctrl := newFakeController()
	hub.SetController(ctrl)
	a := dial(t, hub, url)
	b := dial(t, hub, url)

	if err := a.WriteJSON(Input{Type: InKey, Key: "f"}); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	if msg, _ := readUntil(t, a, MsgFullscreen); msg.Type != MsgFullscreen {
		t.Fatalf("expected fullscreen on the sending display, got %s", msg.Type)
	}
	if err := a.WriteJSON(Input{Type: InFullscreen}); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	readUntil(t, a, MsgFullscreen)

	hub.FadeIn()
	if _, seen := readUntil(t, b, MsgFadeIn); len(seen) != 0 {
		t.Errorf("other displays should not toggle fullscreen, saw %v", seen)
	}
	select {
	case got := <-ctrl.calls:
		t.Errorf("fullscreen should not reach the slideshow, got %q", got)
	default:
	}
}

func TestHub_HideInfoDropsInfoInput(t *testing.T) {
	hub, url := startHub(t)
	ctrl := newFakeController()
	hub.SetController(ctrl)
	conn := dial(t, hub, url+"?hideInfo")

	dropped := []Input{
		{Type: InKey, Key: "i"},
		{Type: InKey, Key: "f"},
		{Type: InInfoClick},
		{Type: InPointer, Action: PointerEnter},
		{Type: InFullscreen},
	}
	for _, in := range dropped {
		if err := conn.WriteJSON(in); err != nil {
			t.Fatalf("failed to write input: %v", err)
		}
	}
	if err := conn.WriteJSON(Input{Type: InKey, Key: "n"}); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}

	select {
	case got := <-ctrl.calls:
		if got != "key:n" {
			t.Errorf("expected only navigation to pass, got %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("navigation key was not dispatched")
	}

	hub.FadeIn()
	if _, seen := readUntil(t, conn, MsgFadeIn); len(seen) != 0 {
		t.Errorf("expected no fullscreen for a display without info, saw %v", seen)
	}
}

func TestHub_DisableTransitionsShowsUpcomingSlide(t *testing.T) {
	hub, url := startHub(t)
	fading := dial(t, hub, url)
	direct := dial(t, hub, url+"?disableTransitions")

	slide := slideshow.Slide{Index: 1, Total: 3, PhotoID: "p2", ImageURL: "https://img/p2_b.jpg"}
	hub.FadeOut()
	hub.UpcomingSlide(slide)

	msg := readMessage(t, direct)
	if msg.Type != MsgSlide {
		t.Fatalf("expected the slide at once without a fade out, got %s", msg.Type)
	}
	var got slideshow.Slide
	if err := json.Unmarshal(msg.Data, &got); err != nil || got.PhotoID != "p2" {
		t.Errorf("unexpected slide %s: %v", msg.Data, err)
	}
	if next := readMessage(t, direct); next.Type != MsgFadeIn {
		t.Errorf("expected fade in after the slide, got %s", next.Type)
	}

	if first := readMessage(t, fading); first.Type != MsgFadeOut {
		t.Fatalf("expected fade out first, got %s", first.Type)
	}
	hub.ShowSlide(slide)
	if _, seen := readUntil(t, fading, MsgSlide); len(seen) != 0 {
		t.Errorf("animated displays should wait for the swap, saw %v", seen)
	}
}
