package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/nmburu/supportprobe/internal/config"
	"github.com/nmburu/supportprobe/internal/model/convo"
)

// ArkGenerator produces replies through an Ark chat model behind a
// compiled eino chain.
type ArkGenerator struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewArkGenerator builds the chat model and compiles the prompt chain.
func NewArkGenerator(ctx context.Context, cfg config.AIConfig) (*ArkGenerator, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &ArkGenerator{chatModel: chatModel, chain: runnable}, nil
}

// Reply runs the chain over the supplied conversation history.
func (g *ArkGenerator) Reply(ctx context.Context, history []convo.Message) (string, error) {
	response, err := g.chain.Invoke(ctx, buildChainInput(history))
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	log.Printf("[ai] ark generated reply, length=%d", len(response.Content))
	return response.Content, nil
}

// buildChainInput splits a history into the template slots: the leading
// system prompt, the newest user message as the query, and everything in
// between as placeholder history.
func buildChainInput(history []convo.Message) map[string]any {
	system := ""
	query := ""
	rest := history

	if len(rest) > 0 && rest[0].Role == convo.RoleSystem {
		system = rest[0].Content
		rest = rest[1:]
	}
	if n := len(rest); n > 0 && rest[n-1].Role == convo.RoleUser {
		query = rest[n-1].Content
		rest = rest[:n-1]
	}

	middle := make([]*schema.Message, 0, len(rest))
	for _, msg := range rest {
		switch msg.Role {
		case convo.RoleUser:
			middle = append(middle, schema.UserMessage(msg.Content))
		case convo.RoleAssistant:
			middle = append(middle, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return map[string]any{
		"system":  system,
		"history": middle,
		"query":   query,
	}
}
