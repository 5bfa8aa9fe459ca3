package runtime

import (
	"code-lab/contract"
	"code-lab/domain"
	"code-lab/domain/event"
	"code-lab/observability"
	"context"
	"log/slog"
	"time"
)

// Dispatcher delivers outbound events to room members through their
// registered sinks. Delivery is a synchronous Consume call per target,
// so for any single connection events arrive in dispatch order; the sink
// is the transport's ordered channel and introduces no reordering.
//
// A sink that blocks past sinkTimeout is skipped for that event, not
// retried. The dispatcher is not a message broker.
type Dispatcher struct {
	log         *slog.Logger
	registry    contract.IRegistry
	monitoring  *observability.Monitor
	sinkTimeout time.Duration
}

var _ contract.IDispatcher = (*Dispatcher)(nil)

func NewDispatcher(log *slog.Logger, registry contract.IRegistry,
	monitoring *observability.Monitor, sinkTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		log:         log,
		registry:    registry,
		monitoring:  monitoring,
		sinkTimeout: sinkTimeout,
	}
}

func (d *Dispatcher) ToRoom(roomID domain.RoomID, e event.Event) {
	d.deliver(d.registry.RoomSinks(roomID, ""), e)
}

func (d *Dispatcher) ToRoomExcept(roomID domain.RoomID, senderConnID string, e event.Event) {
	d.deliver(d.registry.RoomSinks(roomID, senderConnID), e)
}

func (d *Dispatcher) ToConnection(connID string, e event.Event) {
	sink, ok := d.registry.SinkFor(connID)
	if !ok {
		d.log.Debug("No sink registered, dropping event", "conn", connID, "kind", e.Kind())
		d.monitoring.IncrDroppedEvents()
		return
	}
	d.deliver([]contract.EventSink{sink}, e)
}

func (d *Dispatcher) deliver(sinks []contract.EventSink, e event.Event) {
	for _, sink := range sinks {
		ctx, cancel := context.WithTimeout(context.Background(), d.sinkTimeout)
		if err := sink.Consume(ctx, e); err != nil {
			d.log.Warn("Sink refused event", "kind", e.Kind(), "error", err)
			d.monitoring.IncrDroppedEvents()
		} else {
			d.monitoring.IncrBroadcasts()
		}
		cancel()
	}
}
