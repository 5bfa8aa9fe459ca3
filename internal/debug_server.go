package internal

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// StatsProvider supplies whatever the inspect endpoint should expose.
type StatsProvider func() map[string]any

// StartDebugServer serves a read-only JSON view of the live coordination
// state on /inspect. It runs in its own goroutine and is best-effort:
// a failure here never touches the coordinating process.
func StartDebugServer(log *slog.Logger, port int, statsProvider StatsProvider) {
	mux := http.NewServeMux()
	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		payload := statsProvider()
		payload["time"] = time.Now().Format(time.RFC3339)
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Warn("Failed to encode inspect payload", "error", err)
		}
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn("Debug server stopped", "error", err)
		}
	}()

	log.Info("Debug inspector available", "url", fmt.Sprintf("http://localhost:%d/inspect", port))
}
