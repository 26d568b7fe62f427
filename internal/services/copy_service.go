package services

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	openaiOption "github.com/openai/openai-go/option"
	"go.uber.org/zap"

	"pulsedash/internal/apierrors"
)

const reviseCopySystemPrompt = "You are a marketing copywriter. Revise the provided copy " +
	"according to the revision notes. Return only the revised copy, no commentary."

// CopyService forwards marketing copy plus revision notes to the AI
// collaborator and returns the revised text.
type CopyService interface {
	ReviseCopy(ctx context.Context, copyText, notes string) (string, error)
}

type copyService struct {
	apiKey string
	logger *zap.Logger
}

func NewCopyService(apiKey string, logger *zap.Logger) CopyService {
	return &copyService{apiKey: apiKey, logger: logger}
}

func (s *copyService) ReviseCopy(ctx context.Context, copyText, notes string) (string, error) {
	if s.apiKey == "" {
		return "", apierrors.Upstream("copy revision is not configured", nil)
	}

	client := openai.NewClient(openaiOption.WithAPIKey(s.apiKey))

	completion, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModelGPT4o,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(reviseCopySystemPrompt),
			openai.UserMessage(fmt.Sprintf("Copy:\n%s\n\nRevision notes:\n%s", copyText, notes)),
		},
	})
	if err != nil {
		s.logger.Error("copy revision request failed", zap.Error(err))
		return "", apierrors.Upstream("copy revision failed", err)
	}
	if len(completion.Choices) == 0 {
		return "", apierrors.Upstream("copy revision returned no choices", nil)
	}
	return completion.Choices[0].Message.Content, nil
}
