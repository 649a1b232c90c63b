package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"finbot/internal/extract"
)

// Intent names double as the function names offered to the model.
type Intent string

const (
	IntentAskQuestion       Intent = "query_transactions"
	IntentProcessImage      Intent = "extract_receipt_image"
	IntentRecordTransaction Intent = "record_transaction"
)

// Decision is the intent the model selected plus the argument it passed.
type Decision struct {
	Intent Intent
	Query  string
}

const intentSystemPrompt = "You route messages for a personal finance bot. " +
	"Pick the function that matches what the user wants. " +
	"If nothing matches, answer without calling a function."

var intentTools = []openai.Tool{
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        string(IntentAskQuestion),
			Description: "Answer a question about the stored transaction history, like totals, recent purchases or spending by period.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"question": {Type: jsonschema.String, Description: "The user's question, verbatim."},
				},
				Required: []string{"question"},
			},
		},
	},
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        string(IntentProcessImage),
			Description: "Read a receipt photo the user wants to log as a transaction.",
			Parameters: jsonschema.Definition{
				Type:       jsonschema.Object,
				Properties: map[string]jsonschema.Definition{},
			},
		},
	},
	{
		Type: openai.ToolTypeFunction,
		Function: &openai.FunctionDefinition{
			Name:        string(IntentRecordTransaction),
			Description: "Record a transaction the user typed out by hand, like '50k coffee at Highlands'.",
			Parameters: jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"note": {Type: jsonschema.String, Description: "The transaction description, verbatim."},
				},
				Required: []string{"note"},
			},
		},
	},
}

// IntentRouter selects a bot intent with one tool-augmented completion:
// the model picks the function, the dispatcher runs it.
type IntentRouter struct {
	client extract.CompletionClient
	model  string
}

func NewIntentRouter(client extract.CompletionClient, model string) *IntentRouter {
	return &IntentRouter{client: client, model: model}
}

// Classify returns the intent the model selected for text. A reply without
// a recognizable tool call reports false, which the dispatcher answers
// with a plain acknowledgment.
func (r *IntentRouter) Classify(ctx context.Context, text string) (Decision, bool, error) {
	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: r.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: intentSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Tools: intentTools,
	})
	if err != nil {
		return Decision{}, false, fmt.Errorf("intent: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Decision{}, false, nil
	}

	for _, call := range resp.Choices[0].Message.ToolCalls {
		switch Intent(call.Function.Name) {
		case IntentAskQuestion, IntentProcessImage, IntentRecordTransaction:
			var args struct {
				Question string `json:"question"`
				Note     string `json:"note"`
			}
			// Malformed arguments fall back to the original text.
			_ = json.Unmarshal([]byte(call.Function.Arguments), &args)
			query := args.Question
			if query == "" {
				query = args.Note
			}
			if query == "" {
				query = text
			}
			return Decision{Intent: Intent(call.Function.Name), Query: query}, true, nil
		}
	}
	return Decision{}, false, nil
}
