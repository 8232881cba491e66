package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/marketloop/negotiator/internal/config"
	"github.com/marketloop/negotiator/internal/model/negotiation"
)

// Service generates negotiation utterances through a compiled eino chain:
// prompt template -> chat model. It implements negotiation.Generator.
type Service struct {
	chatModel model.ChatModel
	cfg       config.AIConfig
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewService creates the AI service and compiles its chain once.
func NewService(ctx context.Context, cfg config.AIConfig) (*Service, error) {
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

	return &Service{
		chatModel: chatModel,
		cfg:       cfg,
		chain:     runnable,
	}, nil
}

// Generate produces one utterance for the acting role.
func (s *Service) Generate(ctx context.Context, input negotiation.PromptInput, history []negotiation.Turn) (string, error) {
	chainInput := map[string]any{
		"system":  BuildSystemPrompt(input),
		"history": s.buildHistoryMessages(input.Role, history),
		"query":   BuildQuery(input),
	}

	response, err := s.chain.Invoke(ctx, chainInput)
	if err != nil {
		return "", fmt.Errorf("failed to run AI chain: %w", err)
	}

	log.Printf("[ai] generated %s utterance for stage=%s round=%d, length=%d",
		input.Role, input.Stage, input.Round, len(response.Content))
	return response.Content, nil
}

// buildHistoryMessages maps transcript turns onto chat messages from the
// acting role's perspective: its own prior turns become assistant messages,
// the counter-party's become user messages.
func (s *Service) buildHistoryMessages(actor negotiation.Role, turns []negotiation.Turn) []*schema.Message {
	const historyLimit = 10

	if len(turns) == 0 {
		return nil
	}

	startIdx := 0
	if len(turns) > historyLimit {
		startIdx = len(turns) - historyLimit
	}

	history := make([]*schema.Message, 0, len(turns)-startIdx)
	for _, turn := range turns[startIdx:] {
		if turn.Sender == actor {
			history = append(history, schema.AssistantMessage(turn.Content, nil))
		} else {
			history = append(history, schema.UserMessage(turn.Content))
		}
	}
	return history
}
