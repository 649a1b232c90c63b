package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// ErrRunTimeout reports that a run stayed queued or in progress for the
// whole polling budget. It is distinct from a transport failure so callers
// can tell a stuck job from a broken API.
var ErrRunTimeout = errors.New("assistant: run did not finish within the polling budget")

// RunFetcher is the slice of the OpenAI client the poller uses.
type RunFetcher interface {
	RetrieveRun(ctx context.Context, threadID, runID string) (openai.Run, error)
}

// WaitForRun fetches the run status until it leaves the pending set
// (queued, in_progress), sleeping interval between fetches. The first fetch
// happens before the loop condition is evaluated, so a run that finished
// between creation and the first poll costs one fetch and no sleep. The
// wait gives up with ErrRunTimeout after maxAttempts fetches and honors
// context cancellation between fetches.
func WaitForRun(ctx context.Context, client RunFetcher, threadID, runID string, interval time.Duration, maxAttempts int, log zerolog.Logger) (openai.Run, error) {
	for attempt := 1; ; attempt++ {
		run, err := client.RetrieveRun(ctx, threadID, runID)
		if err != nil {
			return openai.Run{}, fmt.Errorf("assistant: retrieve run %s: %w", runID, err)
		}
		if run.Status != openai.RunStatusQueued && run.Status != openai.RunStatusInProgress {
			return run, nil
		}
		if attempt >= maxAttempts {
			return run, fmt.Errorf("%w: run %s still %s after %d attempts", ErrRunTimeout, runID, run.Status, attempt)
		}

		log.Debug().
			Str("run_id", runID).
			Str("status", string(run.Status)).
			Int("attempt", attempt).
			Msg("Waiting for run")

		select {
		case <-ctx.Done():
			return run, ctx.Err()
		case <-time.After(interval):
		}
	}
}
