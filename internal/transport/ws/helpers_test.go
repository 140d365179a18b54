package ws

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/cwrk-planet/underbyte/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	events []domain.Event
	err    error
	panics bool

	recv chan struct{}
	once sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{recv: make(chan struct{})}
}

func (f *fakeConn) Send(ev domain.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panics {
		panic("boom")
	}
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeConn) Close() error {
	f.once.Do(func() { close(f.recv) })
	return nil
}

func (f *fakeConn) Receive() error {
	<-f.recv
	return io.EOF
}

func (f *fakeConn) got() []domain.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Event(nil), f.events...)
}

func (f *fakeConn) failWith(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

var errBrokenPipe = errors.New("broken pipe")

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func contains(cs []Conn, c Conn) bool {
	for _, x := range cs {
		if x == c {
			return true
		}
	}
	return false
}
