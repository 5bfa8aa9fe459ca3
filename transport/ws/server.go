// Package ws is the websocket shell around the coordination core. It
// only translates frames to commands and events to frames; every rule
// about rooms, ordering, and failure lives behind the orchestrator.
package ws

import (
	"code-lab/domain"
	"code-lab/runtime"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

type Handler struct {
	log  *slog.Logger
	orch *runtime.Orchestrator
}

func NewHandler(log *slog.Logger, orch *runtime.Orchestrator) *Handler {
	return &Handler{log: log, orch: orch}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The editor page is served from another origin in development.
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.log.Debug("Websocket upgrade failed", "error", err)
		return
	}

	connID := uuid.NewString()
	ctx := r.Context()

	h.orch.Connect(connID, newConnSink(conn))
	defer func() {
		// Disconnect cleanup is synchronous: membership, session,
		// rate-limit entry, and typing timers are gone before the
		// handler returns.
		h.orch.Handle(ctx, domain.DisconnectCommand{Conn: connID})
		conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			h.log.Debug("Connection closed", "conn", connID, "error", err)
			return
		}
		cmd, err := decodeCommand(connID, data)
		if err != nil {
			h.log.Debug("Dropping undecodable frame", "conn", connID, "error", err)
			continue
		}
		h.orch.Handle(ctx, cmd)
	}
}
