// Package ai evaluates completed tutoring sessions with an LLM.
//
// The evaluator is the only component that talks to an external model
// API. It is called once per session completion and never retried here;
// callers surface the failure and let the client retry the completion.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	apperrors "github.com/hablaai/habla/internal/errors"
	"github.com/hablaai/habla/store"
)

// Evaluator scores a session transcript.
type Evaluator interface {
	Evaluate(ctx context.Context, transcript []store.Turn) (*store.Evaluation, error)
}

const systemPrompt = `Você é um avaliador de sessões de tutoria de espanhol para falantes de português brasileiro.
Avalie o desempenho do aluno na transcrição a seguir. Considere gramática, vocabulário e fluência.
Responda APENAS com um objeto JSON neste formato:
{"score": <número de 0 a 100>, "feedback": "<resumo em português>", "strengths": ["<ponto forte>"], "corrections": ["<correção sugerida>"]}`

type evaluator struct {
	client *openai.Client
	model  string
}

// NewEvaluator creates an Evaluator backed by an OpenAI-compatible API.
func NewEvaluator(cfg *Config) (Evaluator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &evaluator{
		client: openai.NewClientWithConfig(clientCfg),
		model:  cfg.Model,
	}, nil
}

// Evaluate sends the transcript to the model and parses its verdict.
// Any upstream failure or unparseable response maps to EVALUATION_FAILED.
func (e *evaluator) Evaluate(ctx context.Context, transcript []store.Turn) (*store.Evaluation, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: formatTranscript(transcript)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, apperrors.EvaluationFailed("evaluation request failed", err)
	}
	if len(resp.Choices) == 0 {
		return nil, apperrors.EvaluationFailed("evaluation returned no choices", nil)
	}

	raw := resp.Choices[0].Message.Content
	eval, err := parseEvaluation(raw)
	if err != nil {
		slog.Error("unparseable evaluation response", "raw", raw, "error", err)
		return nil, apperrors.EvaluationFailed("unparseable evaluation response", err)
	}
	return eval, nil
}

// parseEvaluation decodes the model's JSON verdict and validates its
// score range.
func parseEvaluation(raw string) (*store.Evaluation, error) {
	var eval store.Evaluation
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &eval); err != nil {
		return nil, err
	}
	if eval.Score < 0 || eval.Score > 100 {
		return nil, fmt.Errorf("score %v out of range [0,100]", eval.Score)
	}
	return &eval, nil
}

func formatTranscript(transcript []store.Turn) string {
	var b strings.Builder
	for _, turn := range transcript {
		role := "Tutor"
		if turn.Role == "user" {
			role = "Aluno"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, turn.Content)
	}
	return b.String()
}
