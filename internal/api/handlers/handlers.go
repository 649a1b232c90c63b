// Package handlers wires the inbound triggers (chat webhook, mail delivery,
// cron ticks) to the extraction, storage and notification components.
package handlers

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"

	"finbot/internal/api/middleware"
	"finbot/internal/extract"
	"finbot/internal/logger"
)

// Extractor classifies free text and receipt images.
type Extractor interface {
	Extract(ctx context.Context, payload string) (extract.Result, error)
	DescribeReceipt(ctx context.Context, image []byte, mimeType string) (string, error)
}

// Store persists confirmed transaction records.
type Store interface {
	Store(ctx context.Context, rec *extract.Record) error
}

// Notifier delivers bot output to the owner chat.
type Notifier interface {
	Transaction(rec *extract.Record) error
	Error(cause error) error
	Text(text string) error
}

// Assistant answers free-form prompts over the stored transactions.
type Assistant interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// IntentClassifier picks the bot intent for a free-text chat message.
type IntentClassifier interface {
	Classify(ctx context.Context, text string) (Decision, bool, error)
}

// PhotoFetcher downloads chat photos.
type PhotoFetcher interface {
	Download(ctx context.Context, fileID string) ([]byte, string, error)
}

// Options carries the scalar settings the dispatcher needs.
type Options struct {
	// WebhookSecret must match the X-Telegram-Bot-Api-Secret-Token header.
	WebhookSecret string
	// OwnerID is the single allow-listed sender.
	OwnerID int64
	// ReportPrompt is the scheduled-report template with the %DATETIME%
	// placeholder still in place.
	ReportPrompt string
}

// Dispatcher owns the trigger endpoints and sequences one trigger at a
// time: no internal workers, every remote call awaited.
type Dispatcher struct {
	opts      Options
	extractor Extractor
	sink      Store
	notifier  Notifier
	assistant Assistant
	intents   IntentClassifier
	photos    PhotoFetcher
}

func NewDispatcher(opts Options, extractor Extractor, sink Store, notifier Notifier, assistant Assistant, intents IntentClassifier, photos PhotoFetcher) *Dispatcher {
	return &Dispatcher{
		opts:      opts,
		extractor: extractor,
		sink:      sink,
		notifier:  notifier,
		assistant: assistant,
		intents:   intents,
		photos:    photos,
	}
}

// finishExtraction runs the shared tail of the photo, manual and mail
// paths: extract, then store and notify.
func (d *Dispatcher) finishExtraction(ctx context.Context, w http.ResponseWriter, payload string) {
	res, err := d.extractor.Extract(ctx, payload)
	if err != nil {
		d.fail(ctx, w, err)
		return
	}
	if !res.Found() {
		log := logger.FromContext(ctx)
		log.Info().Int("outcome", int(res.Outcome)).Msg("No transaction in payload")
		middleware.WriteText(w, http.StatusOK, "No transaction found")
		return
	}
	if err := d.storeAndNotify(ctx, res.Record); err != nil {
		d.fail(ctx, w, err)
		return
	}
	middleware.WriteText(w, http.StatusOK, "Transaction recorded")
}

// storeAndNotify issues both remote calls together and waits for both.
// Either failure fails the trigger; the sibling call is already in flight
// and is not rolled back.
func (d *Dispatcher) storeAndNotify(ctx context.Context, rec *extract.Record) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return d.sink.Store(gctx, rec) })
	g.Go(func() error { return d.notifier.Transaction(rec) })
	return g.Wait()
}

// fail reports a trigger failure to the webhook caller and the owner chat.
func (d *Dispatcher) fail(ctx context.Context, w http.ResponseWriter, err error) {
	log := logger.FromContext(ctx)
	log.Error().Err(err).Msg("Trigger failed")
	if nerr := d.notifier.Error(err); nerr != nil {
		log.Error().Err(nerr).Msg("Error notice delivery failed")
	}
	middleware.WriteText(w, http.StatusInternalServerError, "Request failed")
}
