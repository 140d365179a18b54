package ws

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

type Server struct {
	upgrader  websocket.Upgrader
	lifecycle *Lifecycle
	opts      ConnOptions

	// base is cancelled by Shutdown and ends every live session.
	base    context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

func NewServer(lifecycle *Lifecycle, opts ConnOptions) *Server {
	base, cancel := context.WithCancel(context.Background())
	return &Server{
		lifecycle: lifecycle,
		opts:      opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		base:   base,
		cancel: cancel,
	}
}

// WS endpoint: GET /ws/{roomCode}/{username}
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	roomCode := strings.TrimSpace(chi.URLParam(r, "roomCode"))
	username := strings.TrimSpace(chi.URLParam(r, "username"))
	if roomCode == "" {
		http.Error(w, "missing room code", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "room", roomCode, "err", err)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	stop := context.AfterFunc(s.base, cancel)
	defer stop()

	c := newWsConn(conn, roomCode, username, s.opts)
	slog.Info("ws connected", "room", roomCode, "user", username)

	s.lifecycle.Serve(ctx, roomCode, c)

	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "room", roomCode, "user", username, "err", err)
	}
	slog.Info("ws disconnected", "room", roomCode, "user", username)
}

// Shutdown ends all live sessions and waits for them to leave their rooms.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
