package store

import "fmt"

// DispatchPhase distinguishes the two reminder deliveries per occurrence.
type DispatchPhase string

const (
	// DispatchPhasePre is the "starts in 5 minutes" reminder.
	DispatchPhasePre DispatchPhase = "pre"
	// DispatchPhaseNow is the "starts now" reminder.
	DispatchPhaseNow DispatchPhase = "now"
)

// NotificationDispatch is the idempotency marker for a sent reminder.
// Existence of the id is the sole de-duplication mechanism: once the
// marker exists the occurrence/phase pair must never be redelivered.
type NotificationDispatch struct {
	ID            string
	UserID        string
	CreatedTs     int64
	ScheduledDate string // "2006-01-02"
	ScheduledTime string // 24-hour "HH:MM"
	Phase         DispatchPhase
}

// DispatchID derives the deterministic marker id for an occurrence/phase.
// The format is persisted and must stay bit-exact.
func DispatchID(isoDate, hhmm string, phase DispatchPhase) string {
	return fmt.Sprintf("%s_%s_%s", isoDate, hhmm, phase)
}
