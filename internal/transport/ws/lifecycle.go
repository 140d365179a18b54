package ws

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/cwrk-planet/underbyte/internal/domain"
)

// RoomState supplies the current room record used to hydrate new members.
type RoomState interface {
	GetRoom(ctx context.Context, roomCode string) (*domain.Room, error)
}

type State int

const (
	StateAccepted State = iota
	StateJoined
	StateActive
	StateLeft
)

func (s State) String() string {
	switch s {
	case StateAccepted:
		return "accepted"
	case StateJoined:
		return "joined"
	case StateActive:
		return "active"
	case StateLeft:
		return "left"
	default:
		return "unknown"
	}
}

// Lifecycle drives one connection from accept to leave.
type Lifecycle struct {
	registry   *Registry
	dispatcher *Dispatcher
	rooms      RoomState
}

func NewLifecycle(registry *Registry, dispatcher *Dispatcher, rooms RoomState) *Lifecycle {
	return &Lifecycle{registry: registry, dispatcher: dispatcher, rooms: rooms}
}

type session struct {
	roomCode string
	peer     Peer

	mu    sync.Mutex
	state State
}

func (s *session) set(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	slog.Debug("ws session", "room", s.roomCode, "state", st.String())
}

func (s *session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Serve joins p to roomCode, hydrates it, then blocks until the transport
// closes or ctx is cancelled. The membership is always removed before Serve
// returns, whatever the exit path.
func (l *Lifecycle) Serve(ctx context.Context, roomCode string, p Peer) {
	l.serve(ctx, &session{roomCode: roomCode, peer: p})
}

func (l *Lifecycle) serve(ctx context.Context, s *session) {
	l.registry.Join(s.roomCode, s.peer)
	s.set(StateJoined)

	stop := make(chan struct{})
	defer func() {
		close(stop)
		l.registry.Leave(s.roomCode, s.peer)
		s.set(StateLeft)
	}()

	// Cancellation closes the transport, which ends Receive below.
	go func() {
		select {
		case <-ctx.Done():
			_ = s.peer.Close()
		case <-stop:
		}
	}()

	l.hydrate(ctx, s)

	s.set(StateActive)
	for {
		if err := s.peer.Receive(); err != nil {
			slog.Debug("ws receive ended", "room", s.roomCode, "err", err)
			return
		}
	}
}

// hydrate runs after Join and outside the registry lock, so a room_update
// broadcast in between may reach the peer before this older snapshot. Every
// room_update carries the full room, so the next one corrects it.
func (l *Lifecycle) hydrate(ctx context.Context, s *session) {
	if l.rooms == nil {
		return
	}
	room, err := l.rooms.GetRoom(ctx, s.roomCode)
	if err != nil {
		if !errors.Is(err, domain.ErrRoomNotFound) {
			slog.Warn("ws hydrate lookup failed", "room", s.roomCode, "err", err)
		}
		return
	}
	// failure is logged by Send; the connection stays joined
	_ = l.dispatcher.Send(s.roomCode, s.peer, domain.RoomUpdateEvent(*room))
}
