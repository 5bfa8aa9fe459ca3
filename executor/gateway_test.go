package executor

import (
	"code-lab/domain"
	"code-lab/domain/event"
	"code-lab/errors"
	"context"
	goerrors "errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"code-lab/mocks"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	events []event.Event
}

func (d *recordingDispatcher) ToRoom(_ domain.RoomID, e event.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
}

func (d *recordingDispatcher) ToRoomExcept(roomID domain.RoomID, _ string, e event.Event) {
	d.ToRoom(roomID, e)
}

func (d *recordingDispatcher) ToConnection(_ string, e event.Event) {
	d.ToRoom("", e)
}

func (d *recordingDispatcher) ofKind(kind string) []event.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []event.Event
	for _, e := range d.events {
		if e.Kind() == kind {
			out = append(out, e)
		}
	}
	return out
}

type recordingRooms struct {
	mu      sync.Mutex
	outputs map[domain.RoomID]string
}

func (r *recordingRooms) SetLastOutput(roomID domain.RoomID, output string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.outputs == nil {
		r.outputs = make(map[domain.RoomID]string)
	}
	r.outputs[roomID] = output
	return true
}

func (r *recordingRooms) lastOutput(roomID domain.RoomID) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.outputs[roomID]
}

type gatewayFixture struct {
	gateway    *Gateway
	exec       *mocks.MockExecutor
	dispatcher *recordingDispatcher
	rooms      *recordingRooms
}

func newGatewayFixture(t *testing.T, cfg GatewayConfig) gatewayFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	dispatcher := &recordingDispatcher{}
	rooms := &recordingRooms{}
	languages := LanguageTable{
		"python3": {Language: "python3", Version: "4"},
		"go":      {Language: "go", Version: "4"},
	}
	gateway := NewGateway(logs.GetLoggerFromString("ERROR"), exec, dispatcher,
		rooms, languages, nil, cfg)
	return gatewayFixture{gateway: gateway, exec: exec, dispatcher: dispatcher, rooms: rooms}
}

// quickRetries keeps the attempt loop fast without touching the attempt
// count itself.
var quickRetries = GatewayConfig{RetryDelay: 5 * time.Millisecond}

func TestGateway_SuccessBroadcastsNormalizedOutput(t *testing.T) {
	req := require.New(t)
	f := newGatewayFixture(t, quickRetries)

	// Given a provider that answers on the first attempt
	f.exec.EXPECT().
		Execute(gomock.Any(), "print(1)", domain.ExecTarget{Language: "python3", Version: "4"}).
		Return(domain.RunResult{Succeeded: true, Output: "1"}, nil)

	// When the room submits a run
	f.gateway.Submit(context.Background(), "conn-a", "r1", "print(1)", "python3")

	// Then the whole room gets the result and the room remembers it
	responses := f.dispatcher.ofKind("codeResponse")
	req.Len(responses, 1)
	req.Equal("1", responses[0].(event.CodeResponse).Output)
	req.Equal("1", f.rooms.lastOutput("r1"))
}

func TestGateway_CooldownRejectsWithToast(t *testing.T) {
	req := require.New(t)
	cfg := quickRetries
	cfg.Cooldown = 5 * time.Second
	f := newGatewayFixture(t, cfg)

	// Exactly one provider call for two rapid submissions
	f.exec.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.RunResult{Succeeded: true, Output: "ok"}, nil).
		Times(1)

	f.gateway.Submit(context.Background(), "conn-a", "r1", "x", "python3")
	f.gateway.Submit(context.Background(), "conn-a", "r1", "x", "python3")

	toasts := f.dispatcher.ofKind("toast")
	req.Len(toasts, 1)
	req.Equal("Please wait 5 seconds before running code again",
		toasts[0].(event.Toast).Message)
}

func TestGateway_CooldownIsPerConnection(t *testing.T) {
	req := require.New(t)
	cfg := quickRetries
	cfg.Cooldown = 5 * time.Second
	f := newGatewayFixture(t, cfg)

	f.exec.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.RunResult{Succeeded: true, Output: "ok"}, nil).
		Times(2)

	// Two different connections inside the same window both run
	f.gateway.Submit(context.Background(), "conn-a", "r1", "x", "python3")
	f.gateway.Submit(context.Background(), "conn-b", "r1", "x", "python3")

	req.Empty(f.dispatcher.ofKind("toast"))
}

func TestGateway_TransientFailuresAreRetried(t *testing.T) {
	req := require.New(t)
	f := newGatewayFixture(t, quickRetries)

	// Given two timeouts before the provider recovers
	gomock.InOrder(
		f.exec.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(domain.RunResult{}, context.DeadlineExceeded),
		f.exec.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(domain.RunResult{}, context.DeadlineExceeded),
		f.exec.EXPECT().Execute(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(domain.RunResult{Succeeded: true, Output: "late"}, nil),
	)

	f.gateway.Submit(context.Background(), "conn-a", "r1", "x", "python3")

	responses := f.dispatcher.ofKind("codeResponse")
	req.Len(responses, 1)
	req.Equal("late", responses[0].(event.CodeResponse).Output)
}

func TestGateway_NonTransientFailureStopsImmediately(t *testing.T) {
	req := require.New(t)
	f := newGatewayFixture(t, quickRetries)

	// A 401 style failure must not be retried
	f.exec.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.RunResult{}, fmt.Errorf("provider returned status 401")).
		Times(1)
	// And the failed run must not count against the cooldown
	f.exec.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.RunResult{Succeeded: true, Output: "ok"}, nil).
		Times(1)

	f.gateway.Submit(context.Background(), "conn-a", "r1", "x", "python3")

	responses := f.dispatcher.ofKind("codeResponse")
	req.Len(responses, 1)
	req.Contains(responses[0].(event.CodeResponse).Output, "Code execution failed:")

	// Immediate resubmission goes straight through
	f.gateway.Submit(context.Background(), "conn-a", "r1", "x", "python3")
	req.Empty(f.dispatcher.ofKind("toast"))
}

func TestGateway_RetriesExhausted(t *testing.T) {
	req := require.New(t)
	f := newGatewayFixture(t, quickRetries)

	f.exec.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(domain.RunResult{}, context.DeadlineExceeded).
		Times(3)

	f.gateway.Submit(context.Background(), "conn-a", "r1", "x", "python3")

	responses := f.dispatcher.ofKind("codeResponse")
	req.Len(responses, 1)
	req.Contains(responses[0].(event.CodeResponse).Output, errors.ErrRetriesExhausted.Error())
}

func TestGateway_UnsupportedLanguageSkipsProvider(t *testing.T) {
	req := require.New(t)
	f := newGatewayFixture(t, quickRetries)

	// No Execute expectation: a call would fail the test
	f.gateway.Submit(context.Background(), "conn-a", "r1", "x", "cobol")

	responses := f.dispatcher.ofKind("codeResponse")
	req.Len(responses, 1)
	req.Equal("Unsupported language: cobol", responses[0].(event.CodeResponse).Output)
}

func TestGateway_CancelledContextStopsRetryWait(t *testing.T) {
	req := require.New(t)
	cfg := GatewayConfig{RetryDelay: 10 * time.Second}
	f := newGatewayFixture(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	f.exec.EXPECT().
		Execute(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, string, domain.ExecTarget) (domain.RunResult, error) {
			cancel()
			return domain.RunResult{}, context.DeadlineExceeded
		}).
		Times(1)

	done := make(chan struct{})
	go func() {
		f.gateway.Submit(ctx, "conn-a", "r1", "x", "python3")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		req.FailNow("submit kept waiting through a cancelled context")
	}
	req.True(goerrors.Is(ctx.Err(), context.Canceled))
}

func TestNormalize(t *testing.T) {
	req := require.New(t)

	cases := []struct {
		name     string
		result   domain.RunResult
		expected string
	}{
		{
			name:     "all three sections",
			result:   domain.RunResult{Diagnostics: "warn", Output: "out", ErrorText: "boom"},
			expected: "warn\nout\nboom",
		},
		{
			name:     "output only",
			result:   domain.RunResult{Succeeded: true, Output: "42"},
			expected: "42",
		},
		{
			name:     "empty success",
			result:   domain.RunResult{Succeeded: true},
			expected: "no output",
		},
		{
			name:     "empty failure",
			result:   domain.RunResult{},
			expected: "compilation/runtime error",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req.Equal(tc.expected, Normalize(tc.result))
		})
	}
}
