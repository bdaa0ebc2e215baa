package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/node-disk-monitor/internal/dircollection"
	"github.com/vertextoedge/node-disk-monitor/internal/port"
)

// fakeCollection implements monitor.Collection for handler tests
type fakeCollection struct {
	good        []string
	full        []string
	errored     []string
	diagnostics map[string]*dircollection.DiskErrorInformation
	failures    int
	utilization int
}

func (f *fakeCollection) CheckDirs() bool { return false }

func (f *fakeCollection) CreateNonExistentDirs(create func(dir string) error) bool { return true }

func (f *fakeCollection) GoodDirs() []string { return f.good }

func (f *fakeCollection) FullDirs() []string { return f.full }

func (f *fakeCollection) ErroredDirs() []string { return f.errored }

func (f *fakeCollection) GoodDirsDiskUtilizationPercentage() int { return f.utilization }

func (f *fakeCollection) NumFailures() int { return f.failures }

func (f *fakeCollection) DirectoryErrorInfo(dir string) (*dircollection.DiskErrorInformation, bool) {
	info, ok := f.diagnostics[dir]
	return info, ok
}

// fakeHistory implements port.HistoryRepository for handler tests
type fakeHistory struct {
	transitions []port.DirTransition
	err         error
	gotLimit    int
}

func (f *fakeHistory) RecordTransitions(transitions []port.DirTransition) error { return nil }

func (f *fakeHistory) RecentTransitions(limit int) ([]port.DirTransition, error) {
	f.gotLimit = limit
	return f.transitions, f.err
}

func TestHandleHealth(t *testing.T) {
	tests := []struct {
		name       string
		dirs       *fakeCollection
		wantStatus string
	}{
		{
			name:       "all good",
			dirs:       &fakeCollection{good: []string{"/d1", "/d2"}},
			wantStatus: "healthy",
		},
		{
			name:       "some failed",
			dirs:       &fakeCollection{good: []string{"/d1"}, full: []string{"/d2"}},
			wantStatus: "degraded",
		},
		{
			name:       "no good dirs left",
			dirs:       &fakeCollection{errored: []string{"/d1"}},
			wantStatus: "unhealthy",
		},
		{
			name:       "no dirs configured",
			dirs:       &fakeCollection{},
			wantStatus: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewDirsHandler(tt.dirs, zap.NewNop())
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()

			h.HandleHealth(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			var body map[string]interface{}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON response: %v", err)
			}
			if body["status"] != tt.wantStatus {
				t.Errorf("status = %v, want %s", body["status"], tt.wantStatus)
			}
		})
	}
}

func TestHandleHealth_MethodNotAllowed(t *testing.T) {
	h := NewDirsHandler(&fakeCollection{}, zap.NewNop())
	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	w := httptest.NewRecorder()

	h.HandleHealth(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", w.Code)
	}
}

func TestHandleDirs(t *testing.T) {
	dirs := &fakeCollection{
		good:    []string{"/d1"},
		full:    []string{"/d2"},
		errored: []string{"/d3"},
		diagnostics: map[string]*dircollection.DiskErrorInformation{
			"/d2": {Cause: dircollection.DiskErrorCauseDiskFull, Message: "used space above threshold"},
			"/d3": {Cause: dircollection.DiskErrorCauseOther, Message: "permission denied"},
		},
		failures:    3,
		utilization: 42,
	}
	h := NewDirsHandler(dirs, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/v1/dirs", nil)
	w := httptest.NewRecorder()

	h.HandleDirs(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body struct {
		Good        []string `json:"good"`
		Full        []string `json:"full"`
		Errored     []string `json:"errored"`
		Diagnostics map[string]struct {
			Cause   string `json:"cause"`
			Message string `json:"message"`
		} `json:"diagnostics"`
		FailuresTotal      int `json:"failures_total"`
		UtilizationPercent int `json:"utilization_percent"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(body.Good) != 1 || body.Good[0] != "/d1" {
		t.Errorf("good = %v, want [/d1]", body.Good)
	}
	if len(body.Diagnostics) != 2 {
		t.Fatalf("diagnostics = %v, want entries for /d2 and /d3", body.Diagnostics)
	}
	if body.Diagnostics["/d2"].Cause != "DISK_FULL" {
		t.Errorf("diagnostics[/d2].cause = %s, want DISK_FULL", body.Diagnostics["/d2"].Cause)
	}
	if body.Diagnostics["/d3"].Cause != "OTHER" {
		t.Errorf("diagnostics[/d3].cause = %s, want OTHER", body.Diagnostics["/d3"].Cause)
	}
	if body.FailuresTotal != 3 || body.UtilizationPercent != 42 {
		t.Errorf("failures/utilization = %d/%d, want 3/42", body.FailuresTotal, body.UtilizationPercent)
	}
}

func TestHandleHistory(t *testing.T) {
	checkedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	history := &fakeHistory{
		transitions: []port.DirTransition{
			{Dir: "/d1", FromState: "good", ToState: "full", Cause: "DISK_FULL", CheckedAt: checkedAt},
		},
	}
	h := NewHistoryHandler(history, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/v1/history?limit=5", nil)
	w := httptest.NewRecorder()

	h.HandleHistory(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if history.gotLimit != 5 {
		t.Errorf("limit = %d, want 5", history.gotLimit)
	}
	var body struct {
		Transitions []struct {
			Dir       string `json:"dir"`
			From      string `json:"from"`
			To        string `json:"to"`
			Cause     string `json:"cause"`
			CheckedAt string `json:"checked_at"`
		} `json:"transitions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(body.Transitions) != 1 {
		t.Fatalf("got %d transitions, want 1", len(body.Transitions))
	}
	got := body.Transitions[0]
	if got.Dir != "/d1" || got.From != "good" || got.To != "full" {
		t.Errorf("transition = %+v", got)
	}
	if got.CheckedAt != "2025-03-01T12:00:00Z" {
		t.Errorf("checked_at = %s", got.CheckedAt)
	}
}

func TestHandleHistory_Errors(t *testing.T) {
	t.Run("invalid limit", func(t *testing.T) {
		h := NewHistoryHandler(&fakeHistory{}, zap.NewNop())
		req := httptest.NewRequest(http.MethodGet, "/v1/history?limit=abc", nil)
		w := httptest.NewRecorder()
		h.HandleHistory(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", w.Code)
		}
	})

	t.Run("persistence disabled", func(t *testing.T) {
		h := NewHistoryHandler(nil, zap.NewNop())
		req := httptest.NewRequest(http.MethodGet, "/v1/history", nil)
		w := httptest.NewRecorder()
		h.HandleHistory(w, req)
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		h := NewHistoryHandler(&fakeHistory{err: errors.New("db locked")}, zap.NewNop())
		req := httptest.NewRequest(http.MethodGet, "/v1/history", nil)
		w := httptest.NewRecorder()
		h.HandleHistory(w, req)
		if w.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", w.Code)
		}
	})
}
