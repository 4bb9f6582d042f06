package srs

import (
	"context"
	"log/slog"

	"github.com/hablaai/habla/internal/clock"
	apperrors "github.com/hablaai/habla/internal/errors"
	"github.com/hablaai/habla/store"
)

// Service applies review progressions to homework documents.
type Service struct {
	store *store.Store
	clock clock.Clock
}

// NewService creates a spaced-repetition service.
func NewService(s *store.Store, c clock.Clock) *Service {
	return &Service{store: s, clock: c}
}

// RecordHomeworkResult advances (or resets) the homework item after an
// evaluated review and merges the fresh progression into its document.
func (s *Service) RecordHomeworkResult(ctx context.Context, userID, homeworkID string, score float64) (*store.Homework, error) {
	hw, err := s.store.GetHomework(ctx, userID, homeworkID)
	if err != nil {
		return nil, apperrors.Unavailable("failed to load homework", err)
	}
	if hw == nil {
		return nil, apperrors.NotFound("homework not found: %s", homeworkID)
	}

	now := s.clock.Now()
	progression := Process(hw.RepetitionCount, score, now)

	hw.Status = string(progression.Status)
	hw.Interval = string(progression.Interval)
	hw.RepetitionCount = progression.RepetitionCount
	hw.Step = progression.Step
	hw.UpdatedTs = now.Unix()
	hw.NextReviewTs = nil
	if progression.NextReviewAt != nil {
		ts := progression.NextReviewAt.Unix()
		hw.NextReviewTs = &ts
	}

	updated, err := s.store.UpsertHomework(ctx, hw)
	if err != nil {
		return nil, apperrors.Unavailable("failed to save homework progression", err)
	}

	slog.Info("homework progression recorded",
		"user_id", userID,
		"homework_id", homeworkID,
		"score", score,
		"status", hw.Status,
		"interval", hw.Interval,
		"repetition_count", hw.RepetitionCount,
	)
	return updated, nil
}
