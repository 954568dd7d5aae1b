package agent

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/trugen/triage-service/internal/config"
)

// OpenAICollaborator implements Collaborator over the OpenAI chat API.
type OpenAICollaborator struct {
	client      *openai.Client
	logger      *zap.Logger
	model       string
	temperature float32
}

// NewOpenAICollaborator builds a collaborator from config. The request
// timeout lives on the HTTP transport; callers impose no timeout of their own.
func NewOpenAICollaborator(cfg config.OpenAIConfig, logger *zap.Logger) *OpenAICollaborator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.RequestTimeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout}
	}

	model := cfg.Model
	if model == "" {
		model = openai.GPT4o
	}

	return &OpenAICollaborator{
		client:      openai.NewClientWithConfig(clientCfg),
		logger:      logger,
		model:       model,
		temperature: cfg.Temperature,
	}
}

// Invoke performs a single chat completion for the given persona and task.
func (c *OpenAICollaborator) Invoke(ctx context.Context, persona Persona, task string, prior []StageOutput) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt(persona),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: userPrompt(task, prior),
			},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model %s", c.model)
	}

	output := resp.Choices[0].Message.Content
	c.logger.Debug("collaborator responded",
		zap.String("role", persona.Role),
		zap.Int("output_chars", len(output)))
	return output, nil
}

func systemPrompt(persona Persona) string {
	var sb strings.Builder
	sb.WriteString("You are the " + persona.Role + ".\n")
	sb.WriteString("Goal: " + persona.Goal + "\n\n")
	sb.WriteString(persona.Backstory)
	return sb.String()
}

func userPrompt(task string, prior []StageOutput) string {
	if len(prior) == 0 {
		return task
	}
	var sb strings.Builder
	sb.WriteString(task)
	sb.WriteString("\n\nContext from earlier analysis, in order:\n")
	for _, out := range prior {
		sb.WriteString("\n--- " + out.Role + " ---\n")
		sb.WriteString(out.Output)
		sb.WriteString("\n")
	}
	return sb.String()
}
