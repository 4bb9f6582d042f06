// Package session manages the practice-session lifecycle: start, turn
// accumulation and the completion workflow that fans out into
// evaluation, spaced repetition and schedule matching.
package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hablaai/habla/internal/clock"
	"github.com/hablaai/habla/plugin/ai"
	apperrors "github.com/hablaai/habla/internal/errors"
	"github.com/hablaai/habla/server/service/schedule"
	"github.com/hablaai/habla/server/service/srs"
	"github.com/hablaai/habla/store"
)

// Service orchestrates session start and completion.
type Service struct {
	store     *store.Store
	clock     clock.Clock
	evaluator ai.Evaluator
	srs       *srs.Service
	schedule  *schedule.Service
}

// NewService creates a session service.
func NewService(s *store.Store, c clock.Clock, evaluator ai.Evaluator, srsService *srs.Service, scheduleService *schedule.Service) *Service {
	return &Service{
		store:     s,
		clock:     c,
		evaluator: evaluator,
		srs:       srsService,
		schedule:  scheduleService,
	}
}

// StartRequest describes a session to open.
type StartRequest struct {
	UserID string
	Type   store.SessionType
	// HomeworkID links the session to a homework item under review. Optional.
	HomeworkID string
}

// Start opens a new active session for the user.
func (s *Service) Start(ctx context.Context, req *StartRequest) (*store.Session, error) {
	if !req.Type.IsValid() {
		return nil, apperrors.InvalidArgument("unknown session type: %s", req.Type)
	}

	user, err := s.store.GetUser(ctx, req.UserID)
	if err != nil {
		return nil, apperrors.Unavailable("failed to load user", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user not found: %s", req.UserID)
	}

	return s.store.CreateSession(ctx, &store.Session{
		ID:         uuid.NewString(),
		UserID:     req.UserID,
		Type:       req.Type,
		Status:     store.SessionStatusActive,
		StartedTs:  s.clock.Now().Unix(),
		HomeworkID: req.HomeworkID,
	})
}

// AddTurn appends one transcript turn to an active session.
func (s *Service) AddTurn(ctx context.Context, userID, sessionID string, turn store.Turn) error {
	session, err := s.loadActive(ctx, userID, sessionID)
	if err != nil {
		return err
	}

	transcript := append(session.Transcript, turn)
	if err := s.store.UpdateSession(ctx, &store.UpdateSession{
		ID:         sessionID,
		UserID:     userID,
		Transcript: &transcript,
	}); err != nil {
		return apperrors.Unavailable("failed to save transcript turn", err)
	}
	return nil
}

// CompleteRequest carries the client's view of the finished session.
type CompleteRequest struct {
	UserID    string
	SessionID string
	// ReportedUserTurns is the learner-turn count the client observed.
	// It must agree with the stored transcript.
	ReportedUserTurns int
}

// Complete finishes an active session: verifies the client-reported
// learner-turn count against the stored transcript, obtains an AI
// evaluation, persists it, then advances the linked homework item and
// records the session against the user's weekly schedule.
//
// The turn-count check is all-or-nothing: on disagreement nothing is
// persisted and the session stays active. Schedule recording is best
// effort; its failure is logged but does not fail the completion.
func (s *Service) Complete(ctx context.Context, req *CompleteRequest) (*store.Session, error) {
	session, err := s.loadActive(ctx, req.UserID, req.SessionID)
	if err != nil {
		return nil, err
	}

	if stored := session.UserTurnCount(); stored != req.ReportedUserTurns {
		return nil, apperrors.IntegrityMismatch(
			"reported %d learner turns, transcript has %d", req.ReportedUserTurns, stored)
	}

	evaluation, err := s.evaluator.Evaluate(ctx, session.Transcript)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().Unix()
	completed := store.SessionStatusCompleted
	if err := s.store.UpdateSession(ctx, &store.UpdateSession{
		ID:          req.SessionID,
		UserID:      req.UserID,
		Status:      &completed,
		CompletedTs: &now,
		Evaluation:  evaluation,
	}); err != nil {
		return nil, apperrors.Unavailable("failed to save session completion", err)
	}
	session.Status = completed
	session.CompletedTs = &now
	session.Evaluation = evaluation

	if session.HomeworkID != "" {
		if _, err := s.srs.RecordHomeworkResult(ctx, req.UserID, session.HomeworkID, evaluation.Score); err != nil {
			return nil, err
		}
	}

	if err := s.schedule.RecordSessionOutcome(ctx, &schedule.SessionOutcome{
		UserID:    req.UserID,
		SessionID: req.SessionID,
		Type:      schedule.BlockType(session.Type),
		StartedAt: time.Unix(session.StartedTs, 0),
	}); err != nil {
		slog.Warn("failed to record session against schedule",
			"user_id", req.UserID,
			"session_id", req.SessionID,
			"error", err,
		)
	}

	slog.Info("session completed",
		"user_id", req.UserID,
		"session_id", req.SessionID,
		"score", evaluation.Score,
		"homework_id", session.HomeworkID,
	)
	return session, nil
}

func (s *Service) loadActive(ctx context.Context, userID, sessionID string) (*store.Session, error) {
	session, err := s.store.GetSession(ctx, userID, sessionID)
	if err != nil {
		return nil, apperrors.Unavailable("failed to load session", err)
	}
	if session == nil {
		return nil, apperrors.NotFound("session not found: %s", sessionID)
	}
	if session.Status != store.SessionStatusActive {
		return nil, apperrors.FailedPrecondition("session %s is not active", sessionID)
	}
	return session, nil
}
