package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"finbot/internal/api/middleware"
	"finbot/internal/logger"
	"finbot/internal/markup"
	"finbot/internal/telegram"
)

const secretHeader = "X-Telegram-Bot-Api-Secret-Token"

// Webhook handles POST /assistant, the chat platform's update callback.
// The HTTP body is always a text acknowledgment; chat notifications are
// side effects, never the response.
func (d *Dispatcher) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	if subtle.ConstantTimeCompare([]byte(r.Header.Get(secretHeader)), []byte(d.opts.WebhookSecret)) != 1 {
		log.Warn().Msg("Webhook secret mismatch")
		middleware.WriteText(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		middleware.WriteText(w, http.StatusBadRequest, "Bad request")
		return
	}
	msg := update.Message
	if msg == nil {
		middleware.WriteText(w, http.StatusOK, "Ignored")
		return
	}

	if msg.From == nil || msg.From.ID != d.opts.OwnerID {
		// One trusted owner; the rejection notice goes to the owner chat,
		// not back to the stranger.
		log.Warn().Int64("sender_id", senderID(msg)).Msg("Message from unknown sender rejected")
		if err := d.notifier.Text(markup.Escape(fmt.Sprintf("Rejected message from unknown sender %d", senderID(msg)))); err != nil {
			log.Error().Err(err).Msg("Rejection notice delivery failed")
		}
		middleware.WriteText(w, http.StatusOK, "Unauthorized user")
		return
	}

	switch {
	case msg.Text == "" && len(msg.Photo) > 0:
		d.handlePhoto(ctx, w, msg)
	case msg.Text != "":
		d.handleText(ctx, w, msg.Text)
	default:
		middleware.WriteText(w, http.StatusOK, "Ignored")
	}
}

func senderID(msg *tgbotapi.Message) int64 {
	if msg.From == nil {
		return 0
	}
	return msg.From.ID
}

// handlePhoto is the OCR path: download the photo, read the receipt with a
// vision completion, then run the regular extraction tail.
func (d *Dispatcher) handlePhoto(ctx context.Context, w http.ResponseWriter, msg *tgbotapi.Message) {
	fileID, ok := telegram.Largest(msg.Photo)
	if !ok {
		middleware.WriteText(w, http.StatusOK, "Ignored")
		return
	}

	image, mimeType, err := d.photos.Download(ctx, fileID)
	if err != nil {
		d.fail(ctx, w, err)
		return
	}

	receipt, err := d.extractor.DescribeReceipt(ctx, image, mimeType)
	if err != nil {
		d.fail(ctx, w, err)
		return
	}

	log := logger.FromContext(ctx)
	log.Info().Str("file_id", fileID).Msg("Receipt photo read")
	d.finishExtraction(ctx, w, receipt)
}

// handleText routes a text message to one of the three intents the model
// may select, defaulting to a plain acknowledgment.
func (d *Dispatcher) handleText(ctx context.Context, w http.ResponseWriter, text string) {
	decision, ok, err := d.intents.Classify(ctx, text)
	if err != nil {
		d.fail(ctx, w, err)
		return
	}
	if !ok {
		middleware.WriteText(w, http.StatusOK, "Request completed")
		return
	}

	switch decision.Intent {
	case IntentAskQuestion:
		answer, err := d.assistant.Ask(ctx, decision.Query)
		if err != nil {
			d.fail(ctx, w, err)
			return
		}
		if err := d.notifier.Text(markup.Clean(answer)); err != nil {
			d.fail(ctx, w, err)
			return
		}
		middleware.WriteText(w, http.StatusOK, "Question answered")
	case IntentRecordTransaction:
		d.finishExtraction(ctx, w, decision.Query)
	case IntentProcessImage:
		// The photo arrives as its own update and is handled there.
		middleware.WriteText(w, http.StatusOK, "Send the receipt photo")
	default:
		middleware.WriteText(w, http.StatusOK, "Request completed")
	}
}
