package assistant

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// fakeClient records the assistant API calls Ask makes.
type fakeClient struct {
	runStatus   openai.RunStatus
	reply       string
	prompt      string
	assistantID string
	listedRunID string
}

func (f *fakeClient) CreateThread(ctx context.Context, req openai.ThreadRequest) (openai.Thread, error) {
	if len(req.Messages) > 0 {
		f.prompt = req.Messages[0].Content
	}
	return openai.Thread{ID: "thread_1"}, nil
}

func (f *fakeClient) CreateRun(ctx context.Context, threadID string, req openai.RunRequest) (openai.Run, error) {
	f.assistantID = req.AssistantID
	return openai.Run{ID: "run_1", ThreadID: threadID, Status: openai.RunStatusQueued}, nil
}

func (f *fakeClient) RetrieveRun(ctx context.Context, threadID, runID string) (openai.Run, error) {
	return openai.Run{ID: runID, ThreadID: threadID, Status: f.runStatus}, nil
}

func (f *fakeClient) ListMessage(ctx context.Context, threadID string, limit *int, order *string, after *string, before *string, runID *string) (openai.MessagesList, error) {
	if runID != nil {
		f.listedRunID = *runID
	}
	return openai.MessagesList{
		Messages: []openai.Message{
			{Content: []openai.MessageContent{{Type: "text", Text: &openai.MessageText{Value: f.reply}}}},
		},
	}, nil
}

func TestAsk(t *testing.T) {
	fake := &fakeClient{runStatus: openai.RunStatusCompleted, reply: "You spent 50.000 VNĐ【4:0†source】"}
	svc := NewService(fake, "asst_42", time.Millisecond, 5, zerolog.Nop())

	answer, err := svc.Ask(context.Background(), "how much did I spend?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if !strings.Contains(answer, "50.000") {
		t.Errorf("Ask() = %q, want the assistant reply", answer)
	}
	if fake.prompt != "how much did I spend?" {
		t.Errorf("thread prompt = %q", fake.prompt)
	}
	if fake.assistantID != "asst_42" {
		t.Errorf("assistant id = %q, want asst_42", fake.assistantID)
	}
	if fake.listedRunID != "run_1" {
		t.Errorf("listed run id = %q, want run_1", fake.listedRunID)
	}
}

func TestAsk_FailedRun(t *testing.T) {
	fake := &fakeClient{runStatus: openai.RunStatusFailed, reply: "ignored"}
	svc := NewService(fake, "asst_42", time.Millisecond, 5, zerolog.Nop())

	if _, err := svc.Ask(context.Background(), "question"); err == nil {
		t.Fatal("Ask() succeeded on a failed run")
	}
}

func TestAsk_EmptyReply(t *testing.T) {
	fake := &fakeClient{runStatus: openai.RunStatusCompleted, reply: ""}
	svc := NewService(fake, "asst_42", time.Millisecond, 5, zerolog.Nop())

	if _, err := svc.Ask(context.Background(), "question"); err == nil {
		t.Fatal("Ask() succeeded with no reply text")
	}
}
