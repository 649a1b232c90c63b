package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jhillyerd/enmime"

	"finbot/internal/api/middleware"
	"finbot/internal/logger"
)

// ErrEmptyMail reports a delivered message with no usable body.
var ErrEmptyMail = errors.New("mail: message has no text or HTML body")

// Mail handles POST /mail, a raw MIME message forwarded by the mail
// collaborator. MIME decoding is fully delegated to enmime; only the
// textual body is consumed.
func (d *Dispatcher) Mail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	env, err := enmime.ReadEnvelope(r.Body)
	if err != nil {
		log.Error().Err(err).Msg("Mail decoding failed")
		middleware.WriteText(w, http.StatusBadRequest, "Bad message")
		return
	}

	body := env.Text
	if strings.TrimSpace(body) == "" {
		body = env.HTML
	}
	if strings.TrimSpace(body) == "" {
		// Fatal for this trigger, and no partial notification goes out.
		log.Error().Err(ErrEmptyMail).Str("from", env.GetHeader("From")).Msg("Mail rejected")
		middleware.WriteText(w, http.StatusBadRequest, "Empty message")
		return
	}

	payload := fmt.Sprintf("Date: %s\nFrom: %s\nSubject: %s\n\n%s",
		env.GetHeader("Date"), env.GetHeader("From"), env.GetHeader("Subject"), body)

	log.Info().Str("from", env.GetHeader("From")).Str("subject", env.GetHeader("Subject")).Msg("Mail received")
	d.finishExtraction(ctx, w, payload)
}
