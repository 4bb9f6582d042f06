package store

import "fmt"

// ScheduleLogStatus values. Completion is the only lifecycle state a log has.
const ScheduleLogStatusCompleted = "completed"

// ScheduleLog records a completed study block occurrence.
//
// The document id is derived from the scheduled occurrence
// ("{YYYY-MM-DD}_{HH:MM}"), so repeated completions of the same
// occurrence merge idempotently instead of duplicating.
type ScheduleLog struct {
	ID            string
	UserID        string
	UpdatedTs     int64
	ScheduledDate string // "2006-01-02"
	ScheduledTime string // 24-hour "HH:MM"
	Type          string // "chat" or "lesson"
	// DurationMinutes mirrors the declared block duration.
	DurationMinutes int
	Status          string
	// SessionID is the session whose start matched this occurrence.
	SessionID              string
	ToleranceWindowMinutes int
}

// ScheduleLogID derives the deterministic log id for an occurrence.
// The format is persisted and must stay bit-exact.
func ScheduleLogID(scheduledDate, scheduledTime string) string {
	return fmt.Sprintf("%s_%s", scheduledDate, scheduledTime)
}

// AlertReasonOutsideToleranceWindow is emitted when no declared block is
// within the tolerance window of a session start.
const AlertReasonOutsideToleranceWindow = "outside_tolerance_window"

// ScheduleAlert records a session start with no matching declared block.
// Purely diagnostic; append-only.
type ScheduleAlert struct {
	ID          string
	UserID      string
	SessionID   string
	SessionType string
	Reason      string
	// NearestDiffMinutes is the distance to the closest declared block.
	NearestDiffMinutes     int
	ToleranceWindowMinutes int
	StartedTs              int64
}
