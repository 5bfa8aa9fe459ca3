// Package runtime owns the live coordination state: sessions, rooms,
// sinks, typing markers, and the lifecycle handling that keeps them
// consistent. It contains no transport and no provider logic.
package runtime

import (
	"code-lab/contract"
	"code-lab/domain"
	"code-lab/domain/event"
	"code-lab/moderation"
	"code-lab/observability"
	"context"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
)

// Orchestrator is the top-level lifecycle controller. Every inbound
// command for a connection goes through Handle, one invocation per
// event; handlers never block, the provider call being the only
// operation allowed to suspend and it runs in its own goroutine.
type Orchestrator struct {
	log        *slog.Logger
	sessions   *SessionRegistry
	rooms      *RoomRegistry
	registry   contract.IRegistry
	dispatcher contract.IDispatcher
	typing     *TypingTracker
	gateway    contract.IGateway
	moderator  *moderation.Moderator
	validate   *validator.Validate
	monitoring *observability.Monitor
	toastMs    int
}

func NewOrchestrator(
	log *slog.Logger,
	sessions *SessionRegistry,
	rooms *RoomRegistry,
	registry contract.IRegistry,
	dispatcher contract.IDispatcher,
	typing *TypingTracker,
	gateway contract.IGateway,
	moderator *moderation.Moderator,
	monitoring *observability.Monitor,
	toastMs int,
) *Orchestrator {
	return &Orchestrator{
		log:        log,
		sessions:   sessions,
		rooms:      rooms,
		registry:   registry,
		dispatcher: dispatcher,
		typing:     typing,
		gateway:    gateway,
		moderator:  moderator,
		validate:   validator.New(),
		monitoring: monitoring,
		toastMs:    toastMs,
	}
}

// Connect registers a freshly accepted connection and its outbound sink.
// The transport calls this once before handing any command over.
func (o *Orchestrator) Connect(connID string, sink contract.EventSink) {
	o.registry.Register(connID, sink)
	o.sessions.Connect(connID)
	o.monitoring.IncrConnections()
	o.log.Debug("Connection established", "conn", connID)
}

// Handle processes one inbound command. Unknown or malformed commands
// are dropped without any state change.
func (o *Orchestrator) Handle(ctx context.Context, cmd domain.Command) {
	switch c := cmd.(type) {
	case domain.JoinCommand:
		o.handleJoin(c)
	case domain.CodeChangeCommand:
		o.handleCodeChange(c)
	case domain.TypingCommand:
		o.handleTyping(c)
	case domain.LanguageChangeCommand:
		o.handleLanguageChange(c)
	case domain.CompileCommand:
		o.handleCompile(ctx, c)
	case domain.LeaveCommand:
		o.handleLeave(c)
	case domain.DisconnectCommand:
		o.handleDisconnect(c)
	default:
		o.log.Warn(fmt.Sprintf("Unknown command %T, dropping", cmd))
	}
}

func (o *Orchestrator) handleJoin(cmd domain.JoinCommand) {
	if err := o.validate.Struct(cmd); err != nil {
		o.log.Debug("Ignoring join with missing fields", "conn", cmd.Conn, "error", err)
		return
	}

	sess, known := o.sessions.Lookup(cmd.Conn)
	if !known {
		// Tolerate a join arriving before the transport announced the
		// connection; the session is created on the fly.
		o.sessions.Connect(cmd.Conn)
	}

	name := cmd.UserName
	if o.moderator != nil {
		name = o.moderator.Censor(name)
	}

	// Never present in two rooms at once: a re-join performs the full
	// leave of the previous room before the new membership appears.
	if sess.Joined() {
		o.leaveRoom(sess, sess.Name+" left the room")
	}

	// GetOrCreate and AddMember can race with a concurrent last-leave
	// deleting the room in between; retry until the membership sticks.
	for {
		o.rooms.GetOrCreate(cmd.Room)
		if o.rooms.AddMember(cmd.Room, name) {
			break
		}
	}
	o.registry.Enter(cmd.Conn, cmd.Room)
	o.sessions.Bind(cmd.Conn, cmd.Room, name)

	if snap, ok := o.rooms.Snapshot(cmd.Room); ok {
		o.dispatcher.ToConnection(cmd.Conn, event.CodeUpdate{Code: snap.Document})
		o.dispatcher.ToConnection(cmd.Conn, event.LanguageUpdate{Language: snap.Language})
		if snap.LastOutput != "" {
			o.dispatcher.ToConnection(cmd.Conn, event.CodeResponse{Output: snap.LastOutput})
		}
	}

	o.dispatcher.ToRoom(cmd.Room, event.UserJoined{Members: o.rooms.Members(cmd.Room)})
	o.toast(cmd.Room, name+" joined the room")
	o.monitoring.IncrJoins()
	o.log.Info("Member joined", "room", cmd.Room, "name", name)
}

func (o *Orchestrator) handleCodeChange(cmd domain.CodeChangeCommand) {
	if err := o.validate.Struct(cmd); err != nil {
		return
	}
	changed, ok := o.rooms.SetDocument(cmd.Room, cmd.Code)
	if !ok {
		// Late event against a just-emptied room.
		o.log.Debug("Dropping edit for absent room", "room", cmd.Room)
		return
	}
	if !changed {
		return
	}
	// The sender already holds the authoritative text; echoing it back
	// would only cause visible cursor jumps.
	o.dispatcher.ToRoomExcept(cmd.Room, cmd.Conn, event.CodeUpdate{Code: cmd.Code})
}

func (o *Orchestrator) handleTyping(cmd domain.TypingCommand) {
	if err := o.validate.Struct(cmd); err != nil {
		return
	}
	if !o.rooms.Exists(cmd.Room) {
		return
	}
	o.typing.MarkTyping(cmd.Room, cmd.UserName)
	o.dispatcher.ToRoomExcept(cmd.Room, cmd.Conn, event.UserTyping{UserName: cmd.UserName})
}

func (o *Orchestrator) handleLanguageChange(cmd domain.LanguageChangeCommand) {
	if err := o.validate.Struct(cmd); err != nil {
		return
	}
	if !o.rooms.SetLanguage(cmd.Room, cmd.Language) {
		return
	}
	// Everyone including the sender, so every language selector stays in
	// sync with what the room will actually run.
	o.dispatcher.ToRoom(cmd.Room, event.LanguageUpdate{Language: cmd.Language})
}

func (o *Orchestrator) handleCompile(ctx context.Context, cmd domain.CompileCommand) {
	if err := o.validate.Struct(cmd); err != nil {
		return
	}
	if !o.rooms.Exists(cmd.Room) {
		return
	}
	// The provider call is the only suspending operation in the system.
	// It runs detached so other rooms and connections keep making
	// progress, and detached from the handler's cancellation so a
	// finished run still reaches the room.
	go o.gateway.Submit(context.WithoutCancel(ctx), cmd.Conn, cmd.Room, cmd.Code, cmd.Language)
}

func (o *Orchestrator) handleLeave(cmd domain.LeaveCommand) {
	sess, ok := o.sessions.Lookup(cmd.Conn)
	if !ok || !sess.Joined() {
		return
	}
	o.leaveRoom(sess, sess.Name+" left the room")
	o.sessions.Bind(cmd.Conn, "", "")
}

func (o *Orchestrator) handleDisconnect(cmd domain.DisconnectCommand) {
	sess, had := o.sessions.Unbind(cmd.Conn)
	if had && sess.Joined() {
		o.leaveRoom(sess, sess.Name+" disconnected")
	}
	// Rate-limit entries never outlive their owning connection.
	o.gateway.ClearRateLimit(cmd.Conn)
	o.registry.Deregister(cmd.Conn)
	o.log.Debug("Connection closed", "conn", cmd.Conn)
}

// leaveRoom removes the session's membership and notifies the remaining
// members. All cleanup is synchronous with the caller, so no timer or
// rate-limit entry survives a gone connection.
func (o *Orchestrator) leaveRoom(sess domain.Session, notice string) {
	o.typing.Clear(sess.Room, sess.Name)
	remaining, ok := o.rooms.RemoveMember(sess.Room, sess.Name)
	o.registry.Exit(sess.ConnID, sess.Room)
	if !ok || remaining == 0 {
		// The room died with its last member; nobody is left to notify.
		return
	}
	o.dispatcher.ToRoom(sess.Room, event.UserJoined{Members: o.rooms.Members(sess.Room)})
	o.toast(sess.Room, notice)
}

func (o *Orchestrator) toast(roomID domain.RoomID, message string) {
	o.dispatcher.ToRoom(roomID, event.Toast{Message: message, DurationMs: o.toastMs})
}
