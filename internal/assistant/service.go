// Package assistant drives provider-side assistant runs: create a thread,
// start a run, poll it to completion, read back the reply.
package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// Client is the slice of the OpenAI client the service uses.
type Client interface {
	RunFetcher
	CreateThread(ctx context.Context, request openai.ThreadRequest) (openai.Thread, error)
	CreateRun(ctx context.Context, threadID string, request openai.RunRequest) (openai.Run, error)
	ListMessage(ctx context.Context, threadID string, limit *int, order *string, after *string, before *string, runID *string) (openai.MessagesList, error)
}

// Service answers one-shot prompts through the configured assistant. The
// assistant carries the vector store with all stored transactions, so
// replies may contain citation markers; callers normalize before sending.
type Service struct {
	client      Client
	assistantID string
	interval    time.Duration
	maxAttempts int
	log         zerolog.Logger
}

func NewService(client Client, assistantID string, interval time.Duration, maxAttempts int, log zerolog.Logger) *Service {
	return &Service{
		client:      client,
		assistantID: assistantID,
		interval:    interval,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

// Ask runs prompt on a fresh thread and returns the newest reply message.
// Threads are single-use; the handle is discarded once the reply is read.
func (s *Service) Ask(ctx context.Context, prompt string) (string, error) {
	thread, err := s.client.CreateThread(ctx, openai.ThreadRequest{
		Messages: []openai.ThreadMessage{
			{Role: openai.ThreadMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("assistant: create thread: %w", err)
	}

	run, err := s.client.CreateRun(ctx, thread.ID, openai.RunRequest{AssistantID: s.assistantID})
	if err != nil {
		return "", fmt.Errorf("assistant: create run: %w", err)
	}

	run, err = WaitForRun(ctx, s.client, thread.ID, run.ID, s.interval, s.maxAttempts, s.log)
	if err != nil {
		return "", err
	}
	if run.Status != openai.RunStatusCompleted {
		return "", fmt.Errorf("assistant: run %s ended with status %s", run.ID, run.Status)
	}

	limit := 1
	order := "desc"
	list, err := s.client.ListMessage(ctx, thread.ID, &limit, &order, nil, nil, &run.ID)
	if err != nil {
		return "", fmt.Errorf("assistant: list messages: %w", err)
	}
	for _, msg := range list.Messages {
		for _, part := range msg.Content {
			if part.Text != nil && part.Text.Value != "" {
				return part.Text.Value, nil
			}
		}
	}
	return "", fmt.Errorf("assistant: run %s produced no reply text", run.ID)
}
