package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cwrk-planet/underbyte/internal/service"
	"github.com/cwrk-planet/underbyte/internal/sqlite"
	"github.com/cwrk-planet/underbyte/internal/storage"
	"github.com/cwrk-planet/underbyte/internal/transport/ws"

	"github.com/gorilla/websocket"
)

type apiFixture struct {
	srv *httptest.Server
	reg *ws.Registry
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	st, err := sqlite.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	reg := ws.NewRegistry()
	disp := ws.NewDispatcher(reg)
	roomSvc := service.NewRoomService(st, disp)
	wsServer := ws.NewServer(ws.NewLifecycle(reg, disp, roomSvc), ws.ConnOptions{})

	uploadDir := filepath.Join(t.TempDir(), "uploads")
	h := NewHandler(roomSvc, service.NewMemberService(st, disp), service.NewChatService(st, st, disp),
		&storage.Local{Dir: uploadDir, PublicPrefix: "/uploads", MaxBytes: 1 << 20})

	srv := httptest.NewServer(NewRouter(h, wsServer, RouterOptions{UploadDir: uploadDir}))
	t.Cleanup(srv.Close)
	return &apiFixture{srv: srv, reg: reg}
}

func (f *apiFixture) do(t *testing.T, method, path, body string) (int, map[string]any) {
	t.Helper()
	req, _ := http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var m map[string]any
	_ = json.Unmarshal(raw, &m)
	return resp.StatusCode, m
}

func (f *apiFixture) dial(t *testing.T, path string) *websocket.Conn {
	t.Helper()
	c, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(f.srv.URL, "http")+path, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func next(t *testing.T, c *websocket.Conn) map[string]any {
	t.Helper()
	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	var m map[string]any
	if err := c.ReadJSON(&m); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return m
}

func waitMembers(t *testing.T, reg *ws.Registry, room string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for len(reg.MembersOf(room)) != n {
		if time.Now().After(deadline) {
			t.Fatalf("room %s: expected %d members, have %d", room, n, len(reg.MembersOf(room)))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

const createR1 = `{"roomCode":"R1","hostName":"Alice","roomTimeout":"30m","messageTimer":"off"}`

func TestRooms_CreateGetDuplicate(t *testing.T) {
	f := newAPI(t)

	code, body := f.do(t, http.MethodPost, "/rooms", createR1)
	if code != http.StatusOK || body["roomCode"] != "R1" || body["status"] != "waiting" || body["guestName"] != nil {
		t.Fatalf("create: %d %v", code, body)
	}

	code, body = f.do(t, http.MethodPost, "/rooms", createR1)
	if code != http.StatusBadRequest || body["detail"] != "Room already exists" {
		t.Fatalf("duplicate: %d %v", code, body)
	}

	code, body = f.do(t, http.MethodGet, "/rooms/R1", "")
	if code != http.StatusOK || body["hostName"] != "Alice" {
		t.Fatalf("get: %d %v", code, body)
	}

	code, body = f.do(t, http.MethodGet, "/rooms/nope", "")
	if code != http.StatusNotFound || body["detail"] != "Room not found" {
		t.Fatalf("get missing: %d %v", code, body)
	}

	code, _ = f.do(t, http.MethodPost, "/rooms", `{bad`)
	if code != http.StatusBadRequest {
		t.Fatalf("bad json: %d", code)
	}
}

func TestRooms_EventsReachSockets(t *testing.T) {
	f := newAPI(t)
	if code, _ := f.do(t, http.MethodPost, "/rooms", createR1); code != http.StatusOK {
		t.Fatalf("create failed: %d", code)
	}

	host := f.dial(t, "/ws/R1/Alice")
	hello := next(t, host)
	if hello["type"] != "room_update" || hello["data"].(map[string]any)["hostName"] != "Alice" {
		t.Fatalf("hydration: %v", hello)
	}
	outsider := f.dial(t, "/ws/R2/Mallory")
	waitMembers(t, f.reg, "R1", 1)
	waitMembers(t, f.reg, "R2", 1)

	code, body := f.do(t, http.MethodPost, "/rooms/R1/join?guest_name=Bob", "")
	if code != http.StatusOK || body["ok"] != true {
		t.Fatalf("join: %d %v", code, body)
	}
	upd := next(t, host)
	data := upd["data"].(map[string]any)
	if upd["type"] != "room_update" || data["guestName"] != "Bob" || data["status"] != "active" {
		t.Fatalf("room_update: %v", upd)
	}

	code, body = f.do(t, http.MethodPost, "/rooms/R1/messages", `{"senderName":"Bob","content":"hi"}`)
	if code != http.StatusOK || body["content"] != "hi" || body["roomCode"] != "R1" {
		t.Fatalf("send: %d %v", code, body)
	}
	msg := next(t, host)
	if msg["type"] != "new_message" || msg["data"].(map[string]any)["content"] != "hi" {
		t.Fatalf("new_message: %v", msg)
	}

	code, body = f.do(t, http.MethodDelete, "/rooms/R1", "")
	if code != http.StatusOK || body["ok"] != true {
		t.Fatalf("delete: %d %v", code, body)
	}
	del := next(t, host)
	if del["type"] != "room_deleted" {
		t.Fatalf("room_deleted: %v", del)
	}

	_ = outsider.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := outsider.ReadMessage(); err == nil {
		t.Fatalf("member of R2 received an R1 event")
	}

	_ = host.Close()
	waitMembers(t, f.reg, "R1", 0)
}

func TestMessages_History(t *testing.T) {
	f := newAPI(t)
	f.do(t, http.MethodPost, "/rooms", createR1)
	f.do(t, http.MethodPost, "/rooms/R1/messages", `{"senderName":"Bob","content":"b","timestamp":20}`)
	f.do(t, http.MethodPost, "/rooms/R1/messages", `{"senderName":"Alice","content":"a","timestamp":10}`)

	resp, err := http.Get(f.srv.URL + "/rooms/R1/messages")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var list []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list) != 2 || list[0]["content"] != "a" || list[1]["content"] != "b" {
		t.Fatalf("unexpected history %v", list)
	}

	code, body := f.do(t, http.MethodPost, "/rooms/R404/messages", `{"senderName":"Bob","content":"x"}`)
	if code != http.StatusNotFound || body["detail"] != "Room not found" {
		t.Fatalf("send to missing room: %d %v", code, body)
	}
	code, _ = f.do(t, http.MethodPost, "/rooms/R1/join", "")
	if code != http.StatusBadRequest {
		t.Fatalf("join without guest_name: %d", code)
	}
	code, _ = f.do(t, http.MethodDelete, "/rooms/R404", "")
	if code != http.StatusNotFound {
		t.Fatalf("delete missing: %d", code)
	}
}

func TestUpload_StoresAndServes(t *testing.T) {
	f := newAPI(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "note.txt")
	_, _ = fw.Write([]byte("hello upload"))
	_ = mw.Close()

	resp, err := http.Post(f.srv.URL+"/upload", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	defer resp.Body.Close()
	var up UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&up); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.StatusCode != http.StatusOK || up.Filename != "note.txt" || !strings.HasPrefix(up.URL, "/uploads/") {
		t.Fatalf("unexpected upload response %d %+v", resp.StatusCode, up)
	}

	got, err := http.Get(f.srv.URL + up.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	defer got.Body.Close()
	b, _ := io.ReadAll(got.Body)
	if string(b) != "hello upload" {
		t.Fatalf("served content mismatch: %q", b)
	}

	resp2, err := http.Post(f.srv.URL+"/upload", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("bad upload: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without file, got %d", resp2.StatusCode)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	f := newAPI(t)
	for _, p := range []string{"/healthz", "/metrics"} {
		resp, err := http.Get(f.srv.URL + p)
		if err != nil {
			t.Fatalf("%s: %v", p, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: status %d", p, resp.StatusCode)
		}
	}
}
