package port

import "time"

// DirTransition records one directory moving between health states
type DirTransition struct {
	ID        int64
	Dir       string
	FromState string
	ToState   string
	Cause     string
	Message   string
	CheckedAt time.Time
}

// HistoryRepository persists directory state transitions for operator diagnostics.
// The in-memory classification state stays authoritative; history is derived.
type HistoryRepository interface {
	// RecordTransitions stores a batch of transitions from one check cycle
	RecordTransitions(transitions []DirTransition) error

	// RecentTransitions returns up to limit transitions, newest first
	RecentTransitions(limit int) ([]DirTransition, error)
}
