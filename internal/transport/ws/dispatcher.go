package ws

import (
	"fmt"
	"log/slog"

	"github.com/cwrk-planet/underbyte/internal/domain"
	"github.com/cwrk-planet/underbyte/pkg/metrics"
)

// Dispatcher fans events out to the members of a room. Delivery is
// best-effort: a failed send is logged and the remaining members still get
// the event. Nothing is retried and nothing is reported to the caller.
type Dispatcher struct {
	registry *Registry
}

func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Broadcast delivers ev to every connection currently joined to roomCode.
// Sequential calls reach each member in call order.
func (d *Dispatcher) Broadcast(roomCode string, ev domain.Event) {
	metrics.EventsBroadcast.WithLabelValues(string(ev.Type)).Inc()

	failed := 0
	n := d.registry.each(roomCode, func(c Conn) {
		if err := deliver(c, ev); err != nil {
			failed++
			metrics.DeliveryFailures.WithLabelValues(string(ev.Type)).Inc()
			slog.Warn("ws broadcast send failed", "room", roomCode, "type", ev.Type, "err", err)
		}
	})
	slog.Debug("ws broadcast", "room", roomCode, "type", ev.Type, "members", n, "failed", failed)
}

// Send delivers ev to one member of roomCode, outside of any room fan-out.
func (d *Dispatcher) Send(roomCode string, c Conn, ev domain.Event) error {
	if err := deliver(c, ev); err != nil {
		metrics.DeliveryFailures.WithLabelValues(string(ev.Type)).Inc()
		slog.Warn("ws direct send failed", "room", roomCode, "type", ev.Type, "err", err)
		return err
	}
	return nil
}

// deliver isolates one member: errors and panics stay with that member.
func deliver(c Conn, ev domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("send panic: %v", r)
		}
	}()
	return c.Send(ev)
}
