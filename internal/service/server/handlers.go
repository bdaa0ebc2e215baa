package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/vertextoedge/node-disk-monitor/internal/port"
	"github.com/vertextoedge/node-disk-monitor/internal/service/monitor"
)

// DirsHandler serves the current directory classification
type DirsHandler struct {
	dirs   monitor.Collection
	logger *zap.Logger
}

// NewDirsHandler creates a new DirsHandler
func NewDirsHandler(dirs monitor.Collection, logger *zap.Logger) *DirsHandler {
	return &DirsHandler{
		dirs:   dirs,
		logger: logger,
	}
}

// dirDiagnostic is the JSON form of a directory's failure diagnostic
type dirDiagnostic struct {
	Cause   string `json:"cause"`
	Message string `json:"message"`
}

// HandleHealth reports node disk health. The node is degraded when any
// directory is failed and unhealthy when no good directory remains; an
// empty good set is a reportable state, not an error.
func (h *DirsHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	good := h.dirs.GoodDirs()
	full := h.dirs.FullDirs()
	errored := h.dirs.ErroredDirs()

	status := "healthy"
	switch {
	case len(good) == 0:
		status = "unhealthy"
	case len(full)+len(errored) > 0:
		status = "degraded"
	}

	response := map[string]interface{}{
		"status":              status,
		"good_dirs":           len(good),
		"full_dirs":           len(full),
		"errored_dirs":        len(errored),
		"failures_total":      h.dirs.NumFailures(),
		"utilization_percent": h.dirs.GoodDirsDiskUtilizationPercentage(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleDirs returns the full classification with per-directory diagnostics
func (h *DirsHandler) HandleDirs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	good := h.dirs.GoodDirs()
	full := h.dirs.FullDirs()
	errored := h.dirs.ErroredDirs()

	diagnostics := make(map[string]dirDiagnostic, len(full)+len(errored))
	for _, dir := range append(append([]string(nil), full...), errored...) {
		if info, ok := h.dirs.DirectoryErrorInfo(dir); ok {
			diagnostics[dir] = dirDiagnostic{
				Cause:   info.Cause.String(),
				Message: info.Message,
			}
		}
	}

	response := map[string]interface{}{
		"good":                good,
		"full":                full,
		"errored":             errored,
		"diagnostics":         diagnostics,
		"failures_total":      h.dirs.NumFailures(),
		"utilization_percent": h.dirs.GoodDirsDiskUtilizationPercentage(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HistoryHandler serves the persisted transition history
type HistoryHandler struct {
	history port.HistoryRepository
	logger  *zap.Logger
}

// NewHistoryHandler creates a new HistoryHandler
func NewHistoryHandler(history port.HistoryRepository, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{
		history: history,
		logger:  logger,
	}
}

// HandleHistory returns recent directory state transitions, newest first
func (h *HistoryHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.history == nil {
		http.Error(w, "History persistence is disabled", http.StatusNotFound)
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	transitions, err := h.history.RecentTransitions(limit)
	if err != nil {
		h.logger.Error("failed to load transition history", zap.Error(err))
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	type transitionJSON struct {
		Dir       string `json:"dir"`
		From      string `json:"from"`
		To        string `json:"to"`
		Cause     string `json:"cause,omitempty"`
		Message   string `json:"message,omitempty"`
		CheckedAt string `json:"checked_at"`
	}
	out := make([]transitionJSON, 0, len(transitions))
	for _, t := range transitions {
		out = append(out, transitionJSON{
			Dir:       t.Dir,
			From:      t.FromState,
			To:        t.ToState,
			Cause:     t.Cause,
			Message:   t.Message,
			CheckedAt: t.CheckedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"transitions": out})
}
