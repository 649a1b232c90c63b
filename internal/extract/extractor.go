// Package extract turns unstructured text (email bodies, OCR output, typed
// notes) into structured transaction records via a single completion call.
package extract

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// CompletionClient is the slice of the OpenAI client the extractor uses.
type CompletionClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Extractor classifies payloads with exactly one completion round trip per
// call. It never retries; transport failures propagate to the caller.
type Extractor struct {
	client       CompletionClient
	model        string
	systemPrompt string
	userPrompt   string
	log          zerolog.Logger
}

func New(client CompletionClient, model, systemPrompt, userPrompt string, log zerolog.Logger) *Extractor {
	return &Extractor{
		client:       client,
		model:        model,
		systemPrompt: systemPrompt,
		userPrompt:   userPrompt,
		log:          log,
	}
}

// Extract submits payload under the configured prompt pair and parses the
// reply. A reply the model declined or garbled is a non-match, not an
// error: the invocation ends normally and nothing downstream runs.
func (e *Extractor) Extract(ctx context.Context, payload string) (Result, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: e.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: e.userPrompt + "\n\n" + payload},
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("extract: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		e.log.Warn().Msg("extractor reply has no choices")
		return Result{Outcome: OutcomeParseError}, nil
	}

	content := resp.Choices[0].Message.Content
	clean := cleanModelJSON(content)
	if clean == "" {
		e.log.Warn().Msg("extractor reply is empty")
		return Result{Outcome: OutcomeParseError, Raw: content}, nil
	}

	var rec Record
	if err := json.Unmarshal([]byte(clean), &rec); err != nil {
		e.log.Warn().Str("raw", content).Msg("extractor reply is not valid JSON")
		return Result{Outcome: OutcomeParseError, Raw: content}, nil
	}

	if rec.Result == "failed" {
		return Result{Outcome: OutcomeNotTransaction}, nil
	}
	return Result{Outcome: OutcomeTransaction, Record: &rec}, nil
}

const receiptPrompt = "You are reading a photo of a payment receipt or a banking app screenshot. " +
	"List the fields you can see as plain text lines: bank name, amount, currency, " +
	"date and time, payment description. " +
	"If the image is not a receipt or payment screen, reply with exactly: not a receipt."

// DescribeReceipt runs one image-understanding completion over a chat photo
// and returns the receipt fields as text, ready for Extract.
func (e *Extractor) DescribeReceipt(ctx context.Context, image []byte, mimeType string) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: receiptPrompt},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("extract: vision completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("extract: empty vision reply")
	}
	return resp.Choices[0].Message.Content, nil
}

// cleanModelJSON strips the code-fence noise models sometimes wrap around
// JSON replies: all backticks plus a leading "json" language tag.
func cleanModelJSON(raw string) string {
	s := strings.ReplaceAll(raw, "`", "")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "json")
	return strings.TrimSpace(s)
}
