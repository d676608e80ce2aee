package ai

import (
	"context"
	"fmt"
	"log"

	openai "github.com/sashabaranov/go-openai"

	"github.com/nmburu/supportprobe/internal/config"
	"github.com/nmburu/supportprobe/internal/model/convo"
)

// GroqGenerator produces replies through Groq's OpenAI-compatible chat
// completion endpoint.
type GroqGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
	topP        float32
	maxTokens   int
}

// NewGroqGenerator builds the client against the configured base URL.
func NewGroqGenerator(cfg config.AIConfig) *GroqGenerator {
	clientCfg := openai.DefaultConfig(cfg.GroqAPIKey)
	clientCfg.BaseURL = cfg.GroqBaseURL

	return &GroqGenerator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.GroqModel,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
		maxTokens:   cfg.MaxTokens,
	}
}

// Reply sends the full conversation history as-is; roles already follow
// the chat completion convention.
func (g *GroqGenerator) Reply(ctx context.Context, history []convo.Message) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(history))
	for _, msg := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		Temperature: g.temperature,
		TopP:        g.topP,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	reply := resp.Choices[0].Message.Content
	log.Printf("[ai] groq generated reply, length=%d", len(reply))
	return reply, nil
}
