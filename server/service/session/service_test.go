package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hablaai/habla/internal/clock"
	"github.com/hablaai/habla/plugin/ai"
	apperrors "github.com/hablaai/habla/internal/errors"
	"github.com/hablaai/habla/server/service/schedule"
	"github.com/hablaai/habla/server/service/srs"
	"github.com/hablaai/habla/store"
	"github.com/hablaai/habla/store/db/memstore"
)

type fixture struct {
	svc       *Service
	store     *store.Store
	clock     *clock.Fake
	evaluator *ai.MockEvaluator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.New(memstore.NewDriver())
	t.Cleanup(func() { _ = st.Close() })

	c := clock.NewFake(time.Date(2026, 3, 2, 21, 10, 0, 0, time.UTC))
	evaluator := &ai.MockEvaluator{Result: &store.Evaluation{Score: 85, Feedback: "Muito bem"}}
	svc := NewService(st, c, evaluator, srs.NewService(st, c), schedule.NewService(st))
	return &fixture{svc: svc, store: st, clock: c, evaluator: evaluator}
}

func (f *fixture) seedUser(t *testing.T, schedule []map[string]any) {
	t.Helper()
	_, err := f.store.UpsertUser(context.Background(), &store.User{
		ID:             "user-1",
		DisplayName:    "Ana",
		Timezone:       "America/Sao_Paulo",
		WeeklySchedule: schedule,
	})
	require.NoError(t, err)
}

func (f *fixture) startSession(t *testing.T, homeworkID string) *store.Session {
	t.Helper()
	session, err := f.svc.Start(context.Background(), &StartRequest{
		UserID:     "user-1",
		Type:       store.SessionTypeChat,
		HomeworkID: homeworkID,
	})
	require.NoError(t, err)
	return session
}

func TestStart(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, nil)

	session := f.startSession(t, "")
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, store.SessionStatusActive, session.Status)
	assert.Equal(t, f.clock.Now().Unix(), session.StartedTs)

	_, err := f.svc.Start(ctx, &StartRequest{UserID: "ghost", Type: store.SessionTypeChat})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	_, err = f.svc.Start(ctx, &StartRequest{UserID: "user-1", Type: "exam"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInvalidArgument))
}

func TestAddTurn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, nil)
	session := f.startSession(t, "")

	require.NoError(t, f.svc.AddTurn(ctx, "user-1", session.ID, store.Turn{Role: "tutor", Content: "Hola"}))
	require.NoError(t, f.svc.AddTurn(ctx, "user-1", session.ID, store.Turn{Role: "user", Content: "Hola, profe"}))

	stored, err := f.store.GetSession(ctx, "user-1", session.ID)
	require.NoError(t, err)
	require.Len(t, stored.Transcript, 2)
	assert.Equal(t, 1, stored.UserTurnCount())

	err = f.svc.AddTurn(ctx, "user-1", "missing", store.Turn{Role: "user", Content: "x"})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestComplete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, nil)
	session := f.startSession(t, "")
	require.NoError(t, f.svc.AddTurn(ctx, "user-1", session.ID, store.Turn{Role: "user", Content: "Hola"}))

	f.clock.Advance(20 * time.Minute)
	completed, err := f.svc.Complete(ctx, &CompleteRequest{
		UserID:            "user-1",
		SessionID:         session.ID,
		ReportedUserTurns: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, store.SessionStatusCompleted, completed.Status)
	require.NotNil(t, completed.CompletedTs)
	assert.Equal(t, f.clock.Now().Unix(), *completed.CompletedTs)
	require.NotNil(t, completed.Evaluation)
	assert.Equal(t, 85.0, completed.Evaluation.Score)
	require.Len(t, f.evaluator.Calls, 1)

	// A completed session cannot be completed again.
	_, err = f.svc.Complete(ctx, &CompleteRequest{UserID: "user-1", SessionID: session.ID, ReportedUserTurns: 1})
	assert.True(t, apperrors.IsCode(err, apperrors.CodeFailedPrecondition))
}

func TestComplete_TurnCountMismatch(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, nil)
	session := f.startSession(t, "")
	require.NoError(t, f.svc.AddTurn(ctx, "user-1", session.ID, store.Turn{Role: "user", Content: "Hola"}))

	_, err := f.svc.Complete(ctx, &CompleteRequest{
		UserID:            "user-1",
		SessionID:         session.ID,
		ReportedUserTurns: 3,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeIntegrityMismatch))

	// Nothing was persisted: the session stays active and unevaluated.
	stored, storeErr := f.store.GetSession(ctx, "user-1", session.ID)
	require.NoError(t, storeErr)
	assert.Equal(t, store.SessionStatusActive, stored.Status)
	assert.Nil(t, stored.Evaluation)
	assert.Empty(t, f.evaluator.Calls)
}

func TestComplete_EvaluationFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, nil)
	session := f.startSession(t, "")

	f.evaluator.Err = apperrors.EvaluationFailed("model unavailable", nil)
	_, err := f.svc.Complete(ctx, &CompleteRequest{UserID: "user-1", SessionID: session.ID})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeEvaluationFailed))

	stored, storeErr := f.store.GetSession(ctx, "user-1", session.ID)
	require.NoError(t, storeErr)
	assert.Equal(t, store.SessionStatusActive, stored.Status)
}

func TestComplete_AdvancesHomework(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, nil)

	_, err := f.store.UpsertHomework(ctx, &store.Homework{
		ID:              "hw-1",
		UserID:          "user-1",
		Topic:           "pretérito indefinido",
		Status:          "pending",
		RepetitionCount: 1,
	})
	require.NoError(t, err)

	session := f.startSession(t, "hw-1")
	_, err = f.svc.Complete(ctx, &CompleteRequest{UserID: "user-1", SessionID: session.ID})
	require.NoError(t, err)

	hw, err := f.store.GetHomework(ctx, "user-1", "hw-1")
	require.NoError(t, err)
	assert.Equal(t, string(srs.StatusCompleted), hw.Status)
	assert.Equal(t, string(srs.IntervalDay), hw.Interval)
	assert.Equal(t, 2, hw.RepetitionCount)
}

func TestComplete_RecordsScheduleOutcome(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seedUser(t, []map[string]any{
		{"day": "mon", "time": "18:00", "type": "chat", "durationMinutes": 30},
	})

	// 21:10 UTC Monday is 18:10 in Sao Paulo, 10 minutes from the block.
	session := f.startSession(t, "")
	_, err := f.svc.Complete(ctx, &CompleteRequest{UserID: "user-1", SessionID: session.ID})
	require.NoError(t, err)

	log, err := f.store.GetScheduleLog(ctx, "user-1", store.ScheduleLogID("2026-03-02", "18:00"))
	require.NoError(t, err)
	require.NotNil(t, log)
	assert.Equal(t, session.ID, log.SessionID)
}
