package ws

import (
	"sync"

	"github.com/cwrk-planet/underbyte/pkg/metrics"
)

// Registry maps room codes to the set of connections joined to them.
//
// All mutation and iteration happens under mu, so a broadcast never sees a
// membership set that is being changed and a connection is never counted as
// both present and absent. Critical sections only touch maps and enqueue
// frames, Conn.Send is required not to block.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]map[Conn]struct{} // roomCode -> set of connections
	conns int
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]map[Conn]struct{})}
}

// Join adds c to roomCode, creating the room entry if needed. Joining twice is a no-op.
func (r *Registry) Join(roomCode string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs, ok := r.rooms[roomCode]
	if !ok {
		rs = make(map[Conn]struct{})
		r.rooms[roomCode] = rs
	}
	if _, dup := rs[c]; dup {
		return
	}
	rs[c] = struct{}{}
	r.conns++
	r.observe()
}

// Leave removes c from roomCode and drops the room entry once it is empty.
// Leaving a room the connection is not in is a no-op.
func (r *Registry) Leave(roomCode string, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs, ok := r.rooms[roomCode]
	if !ok {
		return
	}
	if _, in := rs[c]; !in {
		return
	}
	delete(rs, c)
	r.conns--
	if len(rs) == 0 {
		delete(r.rooms, roomCode)
	}
	r.observe()
}

// MembersOf returns a copy of the current members of roomCode.
func (r *Registry) MembersOf(roomCode string) []Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs := r.rooms[roomCode]
	out := make([]Conn, 0, len(rs))
	for c := range rs {
		out = append(out, c)
	}
	return out
}

// Rooms reports how many room entries exist.
func (r *Registry) Rooms() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// Len reports how many connections are joined across all rooms.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conns
}

// each calls fn for every member of roomCode while holding the lock.
func (r *Registry) each(roomCode string, fn func(Conn)) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	rs := r.rooms[roomCode]
	for c := range rs {
		fn(c)
	}
	return len(rs)
}

func (r *Registry) observe() {
	metrics.RoomsActive.Set(float64(len(r.rooms)))
	metrics.ConnectionsActive.Set(float64(r.conns))
}
