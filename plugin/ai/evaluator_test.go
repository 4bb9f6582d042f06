package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/hablaai/habla/internal/errors"
	"github.com/hablaai/habla/store"
)

func TestConfigValidate(t *testing.T) {
	t.Run("gemini defaults", func(t *testing.T) {
		cfg := &Config{APIKey: "k"}
		require.NoError(t, cfg.Validate())
		assert.Equal(t, ProviderGemini, cfg.Provider)
		assert.Equal(t, geminiOpenAIBaseURL, cfg.BaseURL)
		assert.NotEmpty(t, cfg.Model)
	})

	t.Run("openai keeps default endpoint", func(t *testing.T) {
		cfg := &Config{Provider: ProviderOpenAI, APIKey: "k"}
		require.NoError(t, cfg.Validate())
		assert.Empty(t, cfg.BaseURL)
	})

	t.Run("missing key", func(t *testing.T) {
		cfg := &Config{Provider: ProviderOpenAI}
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown provider", func(t *testing.T) {
		cfg := &Config{Provider: "llama-at-home", APIKey: "k"}
		assert.Error(t, cfg.Validate())
	})
}

func TestParseEvaluation(t *testing.T) {
	eval, err := parseEvaluation(`{"score": 82, "feedback": "Bom trabalho", "strengths": ["vocabulário"], "corrections": ["concordância verbal"]}`)
	require.NoError(t, err)
	assert.Equal(t, 82.0, eval.Score)
	assert.Equal(t, "Bom trabalho", eval.Feedback)
	assert.Equal(t, []string{"vocabulário"}, eval.Strengths)
	assert.Equal(t, []string{"concordância verbal"}, eval.Corrections)

	_, err = parseEvaluation(`not json`)
	assert.Error(t, err)

	_, err = parseEvaluation(`{"score": 120, "feedback": "x"}`)
	assert.Error(t, err, "out-of-range score is rejected")
}

func chatCompletionStub(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func TestEvaluate(t *testing.T) {
	ctx := context.Background()
	transcript := []store.Turn{
		{Role: "assistant", Content: "¿Cómo estuvo tu fin de semana?"},
		{Role: "user", Content: "Fue muy bueno, gracias."},
	}

	t.Run("success", func(t *testing.T) {
		srv := chatCompletionStub(t, `{"score": 75, "feedback": "Boa fluência"}`, http.StatusOK)
		defer srv.Close()

		ev, err := NewEvaluator(&Config{Provider: ProviderOpenAI, APIKey: "k", BaseURL: srv.URL})
		require.NoError(t, err)

		eval, err := ev.Evaluate(ctx, transcript)
		require.NoError(t, err)
		assert.Equal(t, 75.0, eval.Score)
		assert.Equal(t, "Boa fluência", eval.Feedback)
	})

	t.Run("upstream failure", func(t *testing.T) {
		srv := chatCompletionStub(t, "", http.StatusInternalServerError)
		defer srv.Close()

		ev, err := NewEvaluator(&Config{Provider: ProviderOpenAI, APIKey: "k", BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = ev.Evaluate(ctx, transcript)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeEvaluationFailed))
	})

	t.Run("unparseable verdict", func(t *testing.T) {
		srv := chatCompletionStub(t, "sorry, I cannot help with that", http.StatusOK)
		defer srv.Close()

		ev, err := NewEvaluator(&Config{Provider: ProviderOpenAI, APIKey: "k", BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = ev.Evaluate(ctx, transcript)
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeEvaluationFailed))
	})
}

func TestFormatTranscript(t *testing.T) {
	got := formatTranscript([]store.Turn{
		{Role: "assistant", Content: "Hola"},
		{Role: "user", Content: "Hola, profe"},
	})
	assert.Equal(t, "Tutor: Hola\nAluno: Hola, profe\n", got)
}
