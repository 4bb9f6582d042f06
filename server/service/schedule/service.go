package schedule

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/hablaai/habla/internal/errors"
	"github.com/hablaai/habla/server/timezone"
	"github.com/hablaai/habla/store"
)

// Service records session outcomes against declared weekly schedules.
type Service struct {
	store     *store.Store
	tolerance int
}

// NewService creates a schedule service with the default tolerance window.
func NewService(s *store.Store) *Service {
	return NewServiceWithTolerance(s, DefaultToleranceWindowMinutes)
}

// NewServiceWithTolerance creates a schedule service with a custom
// tolerance window in minutes.
func NewServiceWithTolerance(s *store.Store, toleranceMinutes int) *Service {
	if toleranceMinutes <= 0 {
		toleranceMinutes = DefaultToleranceWindowMinutes
	}
	return &Service{store: s, tolerance: toleranceMinutes}
}

// SessionOutcome describes a completed session to match against the
// user's declared blocks.
type SessionOutcome struct {
	UserID    string
	SessionID string
	Type      BlockType
	StartedAt time.Time
}

// RecordSessionOutcome finds the nearest declared block occurrence for
// the session start and records the outcome exactly once.
//
// Within tolerance, a completion log is merge-upserted under the
// occurrence-derived id, so re-running the same completion converges on
// one document. Outside tolerance an alert is appended and no log is
// written. A user with no declared blocks of the session's type is never
// penalized: the call is a no-op.
func (s *Service) RecordSessionOutcome(ctx context.Context, outcome *SessionOutcome) error {
	user, err := s.store.GetUser(ctx, outcome.UserID)
	if err != nil {
		return apperrors.Unavailable("failed to load user", err)
	}
	if user == nil || len(user.WeeklySchedule) == 0 {
		return nil
	}

	blocks, dropped := ParseWeeklyBlocks(user.WeeklySchedule)
	if dropped > 0 {
		slog.Warn("dropped malformed weekly blocks",
			"user_id", outcome.UserID,
			"dropped", dropped,
			"kept", len(blocks),
		)
	}

	loc := timezone.UserLocation(user.Timezone)
	match, found := NearestOccurrence(blocks, outcome.Type, outcome.StartedAt, loc)
	if !found {
		return nil
	}

	if match.DiffMinutes > s.tolerance {
		_, err := s.store.CreateScheduleAlert(ctx, &store.ScheduleAlert{
			UserID:                 outcome.UserID,
			SessionID:              outcome.SessionID,
			SessionType:            string(outcome.Type),
			Reason:                 store.AlertReasonOutsideToleranceWindow,
			NearestDiffMinutes:     match.DiffMinutes,
			ToleranceWindowMinutes: s.tolerance,
			StartedTs:              outcome.StartedAt.Unix(),
		})
		if err != nil {
			return apperrors.Unavailable("failed to record schedule alert", err)
		}
		slog.Info("session outside tolerance window",
			"user_id", outcome.UserID,
			"session_id", outcome.SessionID,
			"nearest_diff_minutes", match.DiffMinutes,
		)
		return nil
	}

	scheduledDate := match.OccursAt.Format("2006-01-02")
	scheduledTime := match.Block.Time
	_, err = s.store.UpsertScheduleLog(ctx, &store.ScheduleLog{
		ID:                     store.ScheduleLogID(scheduledDate, scheduledTime),
		UserID:                 outcome.UserID,
		UpdatedTs:              outcome.StartedAt.Unix(),
		ScheduledDate:          scheduledDate,
		ScheduledTime:          scheduledTime,
		Type:                   string(match.Block.Type),
		DurationMinutes:        match.Block.DurationMinutes,
		Status:                 store.ScheduleLogStatusCompleted,
		SessionID:              outcome.SessionID,
		ToleranceWindowMinutes: s.tolerance,
	})
	if err != nil {
		return apperrors.Unavailable("failed to record schedule log", err)
	}

	slog.Info("schedule block completed",
		"user_id", outcome.UserID,
		"session_id", outcome.SessionID,
		"scheduled_date", scheduledDate,
		"scheduled_time", scheduledTime,
		"diff_minutes", match.DiffMinutes,
	)
	return nil
}
