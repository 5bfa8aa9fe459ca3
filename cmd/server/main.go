package main

import (
	"code-lab/executor"
	"code-lab/internal"
	"code-lab/moderation"
	"code-lab/observability"
	"code-lab/runtime"
	"code-lab/runtime/workers"
	"code-lab/transport/ws"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or
// service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function acts as a thin wrapper.
	// Its only responsibility is to call run() and handle the OS exit code.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting, so 'defer' statements execute before the
// process exits and the wiring stays testable.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}

	charReplacement, err := internal.CharacterRune(config.CharReplacement)
	if err != nil {
		return exitConfig, err
	}

	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Moderation
	words, err := moderation.LoadWords()
	if err != nil {
		return exitRuntime, fmt.Errorf("loading censored words: %w", err)
	}
	moderator, err := moderation.NewModerator(words, charReplacement)
	if err != nil {
		return exitRuntime, fmt.Errorf("building moderator: %w", err)
	}
	logger.Info(fmt.Sprintf("%d censored words loaded", len(words)))

	// 3. Execution gateway
	languages, err := executor.LoadLanguages(config.LanguagesPath)
	if err != nil {
		return exitConfig, fmt.Errorf("loading language table: %w", err)
	}
	logger.Info(fmt.Sprintf("%d execution languages configured", len(languages)))

	monitoring := observability.NewMonitor()
	sessions := runtime.NewSessionRegistry()
	rooms := runtime.NewRoomRegistry()
	registry := runtime.NewRegistry()
	dispatcher := runtime.NewDispatcher(logger, registry, monitoring, config.SinkTimeout)
	typing := runtime.NewTypingTracker(logger, dispatcher, config.TypingExpiry)

	provider := executor.NewHTTPProvider(config.ProviderURL, config.ProviderToken)
	gateway := executor.NewGateway(logger, provider, dispatcher, rooms, languages, monitoring,
		executor.GatewayConfig{
			Cooldown:    config.ExecCooldown,
			CallTimeout: config.ExecTimeout,
			RetryDelay:  config.ExecRetryDelay,
			MaxAttempts: config.ExecMaxAttempts,
			ToastMs:     config.ToastDurationMs,
		})

	orchestrator := runtime.NewOrchestrator(logger, sessions, rooms, registry, dispatcher,
		typing, gateway, moderator, monitoring, config.ToastDurationMs)

	// 4. Background workers
	supervisor := workers.NewSupervisor(logger)
	supervisor.Add(workers.NewTelemetryWorker(logger, monitoring, config.MetricInterval))

	// 5. Debug inspector
	internal.StartDebugServer(logger, config.DebugPort, func() map[string]any {
		return map[string]any{
			"stats":    monitoring.Snapshot(),
			"rooms":    rooms.Snapshots(),
			"sessions": sessions.Count(),
		}
	})

	// 6. Websocket endpoint
	mux := http.NewServeMux()
	mux.Handle("/ws", ws.NewHandler(logger, orchestrator))
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go supervisor.Run(ctx)

	select {
	case err := <-errCh:
		return exitRuntime, err
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	supervisor.Stop()
	return exitOK, nil
}
