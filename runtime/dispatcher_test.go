package runtime

import (
	"code-lab/domain/event"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

// recordingSink keeps everything it consumed, in order. Shared by the
// dispatcher, typing, and orchestrator tests.
type recordingSink struct {
	mu     sync.Mutex
	events []event.Event
}

func (s *recordingSink) Consume(_ context.Context, e event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) all() []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]event.Event, len(s.events))
	copy(out, s.events)
	return out
}

func (s *recordingSink) ofKind(kind string) []event.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []event.Event
	for _, e := range s.events {
		if e.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}

func (s *recordingSink) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

func newTestDispatcher(registry *Registry) *Dispatcher {
	log := logs.GetLoggerFromString("ERROR")
	return NewDispatcher(log, registry, nil, time.Second)
}

func TestDispatcher_ToRoomReachesEveryMember(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	dispatcher := newTestDispatcher(registry)

	a, b := &recordingSink{}, &recordingSink{}
	registry.Register("conn-a", a)
	registry.Register("conn-b", b)
	registry.Enter("conn-a", "r1")
	registry.Enter("conn-b", "r1")

	dispatcher.ToRoom("r1", event.Toast{Message: "hello"})

	req.Len(a.all(), 1)
	req.Len(b.all(), 1)
}

func TestDispatcher_ToRoomExceptSkipsSender(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	dispatcher := newTestDispatcher(registry)

	a, b := &recordingSink{}, &recordingSink{}
	registry.Register("conn-a", a)
	registry.Register("conn-b", b)
	registry.Enter("conn-a", "r1")
	registry.Enter("conn-b", "r1")

	dispatcher.ToRoomExcept("r1", "conn-a", event.CodeUpdate{Code: "print(1)"})

	req.Empty(a.all())
	req.Len(b.all(), 1)
}

func TestDispatcher_ToConnectionWithoutSinkIsDropped(t *testing.T) {
	registry := NewRegistry()
	dispatcher := newTestDispatcher(registry)

	// Must not panic or block
	dispatcher.ToConnection("ghost", event.Toast{Message: "anyone?"})
}

func TestDispatcher_PerConnectionOrderIsDispatchOrder(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	dispatcher := newTestDispatcher(registry)

	sink := &recordingSink{}
	registry.Register("conn-a", sink)
	registry.Enter("conn-a", "r1")

	dispatcher.ToRoom("r1", event.CodeUpdate{Code: "v1"})
	dispatcher.ToConnection("conn-a", event.LanguageUpdate{Language: "go"})
	dispatcher.ToRoom("r1", event.CodeUpdate{Code: "v2"})

	got := sink.all()
	req.Len(got, 3)
	req.Equal(event.CodeUpdate{Code: "v1"}, got[0])
	req.Equal(event.LanguageUpdate{Language: "go"}, got[1])
	req.Equal(event.CodeUpdate{Code: "v2"}, got[2])
}

func TestDispatcher_NoCrossRoomLeak(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	dispatcher := newTestDispatcher(registry)

	a, b := &recordingSink{}, &recordingSink{}
	registry.Register("conn-a", a)
	registry.Register("conn-b", b)
	registry.Enter("conn-a", "r1")
	registry.Enter("conn-b", "r2")

	dispatcher.ToRoom("r1", event.Toast{Message: "only r1"})

	req.Len(a.all(), 1)
	req.Empty(b.all())
}
