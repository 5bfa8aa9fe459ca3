package ws

import (
	"code-lab/contract"
	"code-lab/domain/event"
	"context"
	"sync"

	"github.com/coder/websocket"
)

// connSink adapts one websocket connection to contract.EventSink.
// The mutex keeps concurrent dispatches from interleaving writes, so
// events leave in the order Consume accepted them.
type connSink struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

var _ contract.EventSink = (*connSink)(nil)

func newConnSink(conn *websocket.Conn) *connSink {
	return &connSink{conn: conn}
}

func (s *connSink) Consume(ctx context.Context, e event.Event) error {
	data, err := encodeEvent(e)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.Write(ctx, websocket.MessageText, data)
}
