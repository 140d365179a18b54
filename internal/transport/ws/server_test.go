package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cwrk-planet/underbyte/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type wsFixture struct {
	reg  *Registry
	disp *Dispatcher
	srv  *Server
	http *httptest.Server
}

func newWSFixture(t *testing.T, rooms RoomState) *wsFixture {
	t.Helper()
	reg := NewRegistry()
	disp := NewDispatcher(reg)
	srv := NewServer(NewLifecycle(reg, disp, rooms), ConnOptions{})

	r := chi.NewRouter()
	r.Get("/ws/{roomCode}/{username}", srv.HandleWS)
	hs := httptest.NewServer(r)
	t.Cleanup(hs.Close)

	return &wsFixture{reg: reg, disp: disp, srv: srv, http: hs}
}

func (f *wsFixture) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.http.URL, "http") + path
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func readEvent(t *testing.T, c *websocket.Conn) map[string]any {
	t.Helper()
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("decode %s: %v", data, err)
	}
	return m
}

func TestServer_HydrateBroadcastDisconnect(t *testing.T) {
	room := &domain.Room{Code: "R1", HostName: "Alice", Status: domain.RoomWaiting}
	f := newWSFixture(t, stubRooms{room: room})

	c1 := f.dial(t, "/ws/R1/alice")
	hello := readEvent(t, c1)
	if hello["type"] != "room_update" {
		t.Fatalf("expected hydration room_update, got %v", hello)
	}
	data := hello["data"].(map[string]any)
	if data["roomCode"] != "R1" || data["hostName"] != "Alice" {
		t.Fatalf("unexpected hydration data %v", data)
	}

	c2 := f.dial(t, "/ws/R1/bob")
	_ = readEvent(t, c2)
	waitFor(t, "two members", func() bool { return len(f.reg.MembersOf("R1")) == 2 })

	f.disp.Broadcast("R1", domain.Event{Type: domain.EventNewMessage, Data: map[string]any{"content": "hi"}})
	for _, c := range []*websocket.Conn{c1, c2} {
		ev := readEvent(t, c)
		if ev["type"] != "new_message" {
			t.Fatalf("expected new_message, got %v", ev)
		}
	}

	_ = c1.Close()
	waitFor(t, "one member", func() bool { return len(f.reg.MembersOf("R1")) == 1 })

	_ = c2.Close()
	waitFor(t, "room dropped", func() bool { return f.reg.Rooms() == 0 })
}

func TestServer_ShutdownEndsSessions(t *testing.T) {
	f := newWSFixture(t, nil)

	c := f.dial(t, "/ws/R1/alice")
	waitFor(t, "joined", func() bool { return f.reg.Len() == 1 })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := f.srv.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if f.reg.Len() != 0 {
		t.Fatalf("sessions should have left, conns=%d", f.reg.Len())
	}

	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := c.ReadMessage(); err == nil {
		t.Fatalf("expected closed connection after shutdown")
	}

	resp, err := http.Get(f.http.URL + "/ws/R1/late")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 after shutdown, got %d", resp.StatusCode)
	}
}
