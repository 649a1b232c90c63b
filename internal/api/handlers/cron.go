package handlers

import (
	"net/http"
	"strings"
	"time"

	"finbot/internal/api/middleware"
	"finbot/internal/config"
	"finbot/internal/logger"
	"finbot/internal/markup"
	"finbot/internal/report"
)

// Cron handles POST /cron/<identity>, the scheduled report triggers. An
// unrecognized identity is a no-op so stray schedules cannot fail loudly.
func (d *Dispatcher) Cron(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	identity := strings.TrimPrefix(r.URL.Path, "/cron/")
	granularity, ok := report.FromCronIdentity(identity)
	if !ok {
		log.Info().Str("identity", identity).Msg("Unknown cron identity ignored")
		middleware.WriteText(w, http.StatusOK, "Ignored")
		return
	}

	expr := report.DateExpression(granularity, time.Now())
	prompt := strings.ReplaceAll(d.opts.ReportPrompt, config.DatetimePlaceholder, expr)

	answer, err := d.assistant.Ask(ctx, prompt)
	if err != nil {
		d.fail(ctx, w, err)
		return
	}
	if err := d.notifier.Text("🎉 " + markup.Clean(answer)); err != nil {
		d.fail(ctx, w, err)
		return
	}

	log.Info().Str("granularity", string(granularity)).Str("period", expr).Msg("Scheduled report sent")
	middleware.WriteText(w, http.StatusOK, "Report sent")
}
