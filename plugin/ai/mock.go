package ai

import (
	"context"

	"github.com/hablaai/habla/store"
)

// MockEvaluator is an in-memory Evaluator for tests.
type MockEvaluator struct {
	// Result is returned on every Evaluate call when Err is nil.
	Result *store.Evaluation
	// Err, when set, is returned instead of Result.
	Err error
	// Calls records every transcript passed in.
	Calls [][]store.Turn
}

// Evaluate implements Evaluator.
func (m *MockEvaluator) Evaluate(_ context.Context, transcript []store.Turn) (*store.Evaluation, error) {
	m.Calls = append(m.Calls, transcript)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Result, nil
}
