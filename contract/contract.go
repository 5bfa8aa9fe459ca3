//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"code-lab/domain"
	"code-lab/domain/event"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker,
// for logging and supervision purposes, avoiding the need for manual
// naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink is one connection's ordered outbound channel. The transport
// guarantees per-connection FIFO delivery of whatever Consume accepts.
type EventSink interface {
	Consume(ctx context.Context, e event.Event) error
}

// IRegistry maps live connections to their sinks and rooms to their
// connected members, so the dispatcher can resolve recipients.
type IRegistry interface {
	Register(connID string, sink EventSink)
	Deregister(connID string)
	Enter(connID string, roomID domain.RoomID)
	Exit(connID string, roomID domain.RoomID)
	SinkFor(connID string) (EventSink, bool)
	RoomSinks(roomID domain.RoomID, exceptConnID string) []EventSink
}

// IDispatcher fans an outbound event out to its recipients. For a single
// target connection events are delivered in dispatch order; no ordering
// is promised across connections.
type IDispatcher interface {
	ToRoom(roomID domain.RoomID, e event.Event)
	ToRoomExcept(roomID domain.RoomID, senderConnID string, e event.Event)
	ToConnection(connID string, e event.Event)
}

// RoomWriter is the slice of the room registry the execution gateway
// needs: recording a run's output on a room that may no longer exist.
type RoomWriter interface {
	SetLastOutput(roomID domain.RoomID, output string) bool
}

// Executor is the capability boundary toward the external execution
// provider. The call must honor ctx for its bound.
type Executor interface {
	Execute(ctx context.Context, source string, target domain.ExecTarget) (domain.RunResult, error)
}

// IGateway mediates rate-limited, retried submissions to the Executor.
type IGateway interface {
	Submit(ctx context.Context, connID string, roomID domain.RoomID, source, language string)
	ClearRateLimit(connID string)
}
