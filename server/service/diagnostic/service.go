package diagnostic

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hablaai/habla/internal/clock"
	apperrors "github.com/hablaai/habla/internal/errors"
	"github.com/hablaai/habla/store"
)

// Service runs the diagnostic assessment workflow.
type Service struct {
	store *store.Store
	clock clock.Clock
}

// NewService creates a diagnostic service.
func NewService(s *store.Store, c clock.Clock) *Service {
	return &Service{store: s, clock: c}
}

// Start creates a new active diagnostic for the user.
func (s *Service) Start(ctx context.Context, userID string) (*store.Diagnostic, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Unavailable("failed to load user", err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user not found: %s", userID)
	}

	return s.store.CreateDiagnostic(ctx, &store.Diagnostic{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    store.DiagnosticStatusActive,
		CreatedTs: s.clock.Now().Unix(),
	})
}

// CompleteRequest carries the raw sub-scores of a finished assessment.
// Scores are assumed range-validated ([0,100]) by the caller.
type CompleteRequest struct {
	UserID             string
	DiagnosticID       string
	GrammarScore       float64
	ListeningScore     float64
	PronunciationScore float64
}

// Complete scores the assessment, writes the result into the diagnostic
// record and merges the assigned level into the user profile.
func (s *Service) Complete(ctx context.Context, req *CompleteRequest) (*store.DiagnosticResult, error) {
	diag, err := s.store.GetDiagnostic(ctx, req.UserID, req.DiagnosticID)
	if err != nil {
		return nil, apperrors.Unavailable("failed to load diagnostic", err)
	}
	if diag == nil {
		return nil, apperrors.NotFound("diagnostic not found: %s", req.DiagnosticID)
	}
	if diag.Status != store.DiagnosticStatusActive {
		return nil, apperrors.FailedPrecondition("diagnostic %s is not active", req.DiagnosticID)
	}

	overall := CalculateOverallScore(req.GrammarScore, req.ListeningScore, req.PronunciationScore)
	result := &store.DiagnosticResult{
		OverallScore:  overall,
		LevelAssigned: string(ScoreToLevel(overall)),
		Strengths:     DeriveStrengths(req.GrammarScore, req.ListeningScore, req.PronunciationScore),
		Weaknesses:    DeriveWeaknesses(req.GrammarScore, req.ListeningScore, req.PronunciationScore),
	}

	now := s.clock.Now().Unix()
	completed := store.DiagnosticStatusCompleted
	if err := s.store.UpdateDiagnostic(ctx, &store.UpdateDiagnostic{
		ID:          req.DiagnosticID,
		UserID:      req.UserID,
		Status:      &completed,
		CompletedTs: &now,
		Result:      result,
	}); err != nil {
		return nil, apperrors.Unavailable("failed to save diagnostic result", err)
	}

	if err := s.store.UpdateUser(ctx, &store.UpdateUser{
		ID:          req.UserID,
		UpdatedTs:   &now,
		Level:       &result.LevelAssigned,
		PlacementTs: &now,
	}); err != nil {
		return nil, apperrors.Unavailable("failed to save user level", err)
	}

	slog.Info("diagnostic completed",
		"user_id", req.UserID,
		"diagnostic_id", req.DiagnosticID,
		"overall_score", overall,
		"level", result.LevelAssigned,
	)
	return result, nil
}
