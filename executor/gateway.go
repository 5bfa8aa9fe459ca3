// Package executor mediates access to the external code-execution
// provider: per-connection cooldowns, bounded retried calls, and
// normalization of whatever the provider sends back.
package executor

import (
	"code-lab/contract"
	"code-lab/domain"
	"code-lab/domain/event"
	"code-lab/errors"
	"code-lab/observability"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"math"
	"net"
	"strings"
	"sync"
	"syscall"
	"time"
)

// GatewayConfig carries the tunables; zero values fall back to the
// defaults below.
type GatewayConfig struct {
	Cooldown    time.Duration
	CallTimeout time.Duration
	RetryDelay  time.Duration
	MaxAttempts int
	ToastMs     int
}

const (
	defaultCooldown    = 3000 * time.Millisecond
	defaultCallTimeout = 20 * time.Second
	defaultRetryDelay  = 1 * time.Second
	defaultMaxAttempts = 3
	defaultToastMs     = 4000
)

func (c GatewayConfig) withDefaults() GatewayConfig {
	if c.Cooldown <= 0 {
		c.Cooldown = defaultCooldown
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = defaultCallTimeout
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = defaultRetryDelay
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = defaultMaxAttempts
	}
	if c.ToastMs <= 0 {
		c.ToastMs = defaultToastMs
	}
	return c
}

// Gateway serializes access to the execution provider. One accepted
// submission costs one provider call plus up to MaxAttempts-1 retries,
// one room field write, and one room-wide broadcast.
type Gateway struct {
	log        *slog.Logger
	exec       contract.Executor
	dispatcher contract.IDispatcher
	rooms      contract.RoomWriter
	languages  LanguageTable
	monitoring *observability.Monitor
	cfg        GatewayConfig

	mu      sync.Mutex
	lastRun map[string]time.Time // connID -> last accepted submission
}

var _ contract.IGateway = (*Gateway)(nil)

func NewGateway(
	log *slog.Logger,
	exec contract.Executor,
	dispatcher contract.IDispatcher,
	rooms contract.RoomWriter,
	languages LanguageTable,
	monitoring *observability.Monitor,
	cfg GatewayConfig,
) *Gateway {
	return &Gateway{
		log:        log,
		exec:       exec,
		dispatcher: dispatcher,
		rooms:      rooms,
		languages:  languages,
		monitoring: monitoring,
		cfg:        cfg.withDefaults(),
		lastRun:    make(map[string]time.Time),
	}
}

// Submit runs one execution round-trip for the room. It blocks for the
// duration of the provider call, so callers run it off the dispatch
// loop.
func (g *Gateway) Submit(ctx context.Context, connID string, roomID domain.RoomID, source, language string) {
	if wait, limited := g.reserve(connID); limited {
		g.monitoring.IncrRateLimited()
		g.toast(roomID, fmt.Sprintf("Please wait %d seconds before running code again", wait))
		return
	}

	target, ok := g.languages.Resolve(language)
	if !ok {
		// Resolved before any network call; the user is not penalized
		// for a run that never happened.
		g.ClearRateLimit(connID)
		g.respond(roomID, "Unsupported language: "+language)
		return
	}

	g.monitoring.IncrExecutions()
	result, err := g.callWithRetry(ctx, source, target)
	if err != nil {
		g.monitoring.IncrExecFailures()
		g.ClearRateLimit(connID)
		g.log.Warn("Execution failed", "room", roomID, "language", language, "error", err)
		g.respond(roomID, fmt.Sprintf("Code execution failed: %v", err))
		return
	}

	g.respond(roomID, Normalize(result))
}

// ClearRateLimit forgets the connection's cooldown entry. Called on
// disconnect and after runs that never completed.
func (g *Gateway) ClearRateLimit(connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.lastRun, connID)
}

// reserve claims the cooldown slot for connID. When the prior run is
// still inside the window it returns the remaining wait in whole
// seconds and leaves the slot untouched.
func (g *Gateway) reserve(connID string) (waitSeconds int, limited bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now()
	if last, ok := g.lastRun[connID]; ok {
		if elapsed := now.Sub(last); elapsed < g.cfg.Cooldown {
			remaining := g.cfg.Cooldown - elapsed
			return int(math.Ceil(remaining.Seconds())), true
		}
	}
	g.lastRun[connID] = now
	return 0, false
}

// callWithRetry invokes the provider with a bounded timeout, retrying
// transient failures with a fixed delay. Non-transient failures surface
// immediately.
func (g *Gateway) callWithRetry(ctx context.Context, source string, target domain.ExecTarget) (domain.RunResult, error) {
	var lastErr error
	for attempt := 0; attempt < g.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			g.monitoring.IncrExecRetries()
			select {
			case <-ctx.Done():
				return domain.RunResult{}, ctx.Err()
			case <-time.After(g.cfg.RetryDelay):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, g.cfg.CallTimeout)
		result, err := g.exec.Execute(callCtx, source, target)
		cancel()
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !isTransient(err) {
			return domain.RunResult{}, err
		}
		g.log.Debug("Transient provider failure, retrying", "attempt", attempt+1, "error", err)
	}
	return domain.RunResult{}, fmt.Errorf("%w after %d attempts: %v",
		errors.ErrRetriesExhausted, g.cfg.MaxAttempts, lastErr)
}

// isTransient classifies failures worth retrying: timeouts and reset
// connections. Everything else stops the attempt loop.
func isTransient(err error) bool {
	if goerrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if goerrors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return goerrors.Is(err, syscall.ECONNRESET)
}

// Normalize flattens a provider result into the single text clients
// display: diagnostics, then program output, then program error text,
// each on its own line when present.
func Normalize(result domain.RunResult) string {
	var parts []string
	for _, s := range []string{result.Diagnostics, result.Output, result.ErrorText} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		if result.Succeeded {
			return "no output"
		}
		return "compilation/runtime error"
	}
	return strings.Join(parts, "\n")
}

func (g *Gateway) respond(roomID domain.RoomID, output string) {
	// Spectators see run results too: the write and the broadcast both
	// target the whole room, not only the requester.
	g.rooms.SetLastOutput(roomID, output)
	g.dispatcher.ToRoom(roomID, event.CodeResponse{Output: output})
}

func (g *Gateway) toast(roomID domain.RoomID, message string) {
	g.dispatcher.ToRoom(roomID, event.Toast{Message: message, DurationMs: g.cfg.ToastMs})
}
