// The tester drives a scripted multi-connection session against the
// real orchestrator, with a stubbed execution provider, and renders the
// resulting room and event state. Useful for eyeballing coordination
// behavior without a browser.
package main

import (
	"code-lab/contract"
	"code-lab/domain"
	"code-lab/domain/event"
	"code-lab/executor"
	"code-lab/observability"
	"code-lab/runtime"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
)

type Config struct {
	// TESTER_COLOURS enables colorized section headers
	Colours bool `envconfig:"TESTER_COLOURS" default:"true"`
	// TESTER_COOLDOWN shortens the execution cooldown for quick runs
	Cooldown time.Duration `envconfig:"TESTER_COOLDOWN" default:"500ms"`
}

// recordingSink keeps every event a connection received, in order.
type recordingSink struct {
	mu     sync.Mutex
	name   string
	events []event.Event
}

func (s *recordingSink) Consume(_ context.Context, e event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) kinds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var kinds []string
	for _, e := range s.events {
		kinds = append(kinds, e.Kind())
	}
	return kinds
}

// stubExecutor stands in for the remote provider.
type stubExecutor struct{}

func (stubExecutor) Execute(_ context.Context, _ string, _ domain.ExecTarget) (domain.RunResult, error) {
	return domain.RunResult{Succeeded: true, Output: "42"}, nil
}

func main() {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	logger := logs.GetLoggerFromLevel(slog.LevelWarn)
	monitoring := observability.NewMonitor()
	sessions := runtime.NewSessionRegistry()
	rooms := runtime.NewRoomRegistry()
	registry := runtime.NewRegistry()
	dispatcher := runtime.NewDispatcher(logger, registry, monitoring, time.Second)
	typing := runtime.NewTypingTracker(logger, dispatcher, 1500*time.Millisecond)

	languages, err := executor.LoadLanguages("")
	if err != nil {
		log.Fatalf("Language table error: %v", err)
	}
	gateway := executor.NewGateway(logger, stubExecutor{}, dispatcher, rooms, languages,
		monitoring, executor.GatewayConfig{Cooldown: config.Cooldown})

	orch := runtime.NewOrchestrator(logger, sessions, rooms, registry, dispatcher,
		typing, gateway, nil, monitoring, 4000)

	ctx := context.Background()
	alice := &recordingSink{name: "alice"}
	bob := &recordingSink{name: "bob"}

	header(config, "Scenario: two members, one room")

	orch.Connect("conn-a", alice)
	orch.Connect("conn-b", bob)
	orch.Handle(ctx, domain.JoinCommand{Conn: "conn-a", Room: "r1", UserName: "alice"})
	orch.Handle(ctx, domain.JoinCommand{Conn: "conn-b", Room: "r1", UserName: "bob"})
	orch.Handle(ctx, domain.CodeChangeCommand{Conn: "conn-a", Room: "r1", Code: "print(42)"})
	orch.Handle(ctx, domain.TypingCommand{Conn: "conn-b", Room: "r1", UserName: "bob"})
	orch.Handle(ctx, domain.LanguageChangeCommand{Conn: "conn-b", Room: "r1", Language: "python3"})
	orch.Handle(ctx, domain.CompileCommand{Conn: "conn-a", Room: "r1", Code: "print(42)", Language: "python3"})

	// Let the detached execution and the typing expiry land.
	time.Sleep(2 * time.Second)

	orch.Handle(ctx, domain.DisconnectCommand{Conn: "conn-b"})

	header(config, "Rooms")
	printRooms(rooms)

	header(config, "Events per connection")
	printEvents(map[string]*recordingSink{"conn-a": alice, "conn-b": bob})

	header(config, "Counters")
	stats := monitoring.Snapshot()
	fmt.Printf("joins=%d broadcasts=%d executions=%d dropped=%d\n",
		stats.Joins, stats.Broadcasts, stats.Executions, stats.DroppedEvents)
}

func header(config Config, title string) {
	text := fmt.Sprintf("  ====== %s ======", title)
	if config.Colours {
		text = color.New(color.BgBlack, color.FgGreen).Render(text)
	}
	fmt.Println(text)
}

func printRooms(rooms *runtime.RoomRegistry) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Room", "Members", "Document", "Language", "Last output"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, snap := range rooms.Snapshots() {
		table.Append([]string{
			string(snap.ID),
			strings.Join(snap.Members, ", "),
			snap.Document,
			snap.Language,
			snap.LastOutput,
		})
	}
	table.Render()
}

func printEvents(sinks map[string]*recordingSink) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Conn", "Received"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for connID, sink := range sinks {
		table.Append([]string{connID, strings.Join(sink.kinds(), ", ")})
	}
	table.Render()
}

var _ contract.EventSink = (*recordingSink)(nil)
var _ contract.Executor = stubExecutor{}
