package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/ebarney/aibarney/internal/config"
	chatmodel "github.com/ebarney/aibarney/internal/model/chat"
	"github.com/ebarney/aibarney/internal/model/persona"
	"github.com/ebarney/aibarney/pkg/logger"
)

// historyLimit bounds how many prior turns are forwarded to the model.
const historyLimit = 20

// ErrEmptyHistory is returned when there is nothing to answer.
var ErrEmptyHistory = errors.New("conversation history is empty")

// Service wraps the persona prompt and the chat model in one eino chain.
type Service struct {
	persona persona.Persona
	chain   compose.Runnable[map[string]any, *schema.Message]
}

// NewService builds the Ark model from cfg and compiles the chain around it.
func NewService(ctx context.Context, cfg config.AIConfig, p persona.Persona) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewServiceWithModel(ctx, chatModel, p)
}

// NewServiceWithModel compiles the chain around an existing model.
func NewServiceWithModel(ctx context.Context, chatModel model.BaseChatModel, p persona.Persona) (*Service, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", false),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &Service{persona: p, chain: runnable}, nil
}

// Persona returns the assistant the service speaks as.
func (s *Service) Persona() persona.Persona {
	return s.persona
}

// StreamReply streams the assistant's answer to the last message of history.
// The caller must close the returned reader.
func (s *Service) StreamReply(ctx context.Context, history []chatmodel.HistoryEntry) (*schema.StreamReader[*schema.Message], error) {
	messages := buildHistoryMessages(history)
	if len(messages) == 0 {
		return nil, ErrEmptyHistory
	}

	input := map[string]any{
		"system":  BuildSystemPrompt(s.persona),
		"history": messages,
	}

	stream, err := s.chain.Stream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to stream AI chain output: %w", err)
	}
	logger.Infof("[ai] streaming reply, history=%d", len(messages))
	return stream, nil
}

// buildHistoryMessages keeps the last historyLimit user/assistant entries;
// anything else (system, tool) is dropped.
func buildHistoryMessages(history []chatmodel.HistoryEntry) []*schema.Message {
	if len(history) == 0 {
		return nil
	}

	startIdx := 0
	if len(history) > historyLimit {
		startIdx = len(history) - historyLimit
	}

	messages := make([]*schema.Message, 0, len(history)-startIdx)
	for _, entry := range history[startIdx:] {
		role, ok := chatmodel.RoleFromWire(entry.Role)
		if !ok {
			continue
		}
		switch role {
		case chatmodel.RoleUser:
			messages = append(messages, schema.UserMessage(entry.Content))
		case chatmodel.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(entry.Content, nil))
		}
	}
	return messages
}
