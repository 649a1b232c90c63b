package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"finbot/internal/report"
)

func TestCron_UnknownIdentityIsNoOp(t *testing.T) {
	env := newTestEnv()
	rec := httptest.NewRecorder()

	env.dispatcher.Cron(rec, quietRequest(http.MethodPost, "/cron/report-yearly", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if got := rec.Body.String(); got != "Ignored" {
		t.Errorf("body = %q, want Ignored", got)
	}
	if len(env.assistant.prompts) != 0 {
		t.Errorf("assistant called for an unknown identity: %v", env.assistant.prompts)
	}
}

func TestCron_DailyReport(t *testing.T) {
	env := newTestEnv()
	env.assistant.answer = "Today you spent 200.000 VNĐ."
	rec := httptest.NewRecorder()

	env.dispatcher.Cron(rec, quietRequest(http.MethodPost, "/cron/report-daily", nil))

	if got := rec.Body.String(); got != "Report sent" {
		t.Fatalf("body = %q, want Report sent", got)
	}
	if len(env.assistant.prompts) != 1 {
		t.Fatalf("assistant prompts = %v", env.assistant.prompts)
	}
	want := "Summarize my spending for " + report.DateExpression(report.Day, time.Now()) + "."
	if env.assistant.prompts[0] != want {
		t.Errorf("prompt = %q, want %q", env.assistant.prompts[0], want)
	}
	if strings.Contains(env.assistant.prompts[0], "%DATETIME%") {
		t.Error("placeholder survived substitution")
	}
	if len(env.notifier.texts) != 1 || !strings.HasPrefix(env.notifier.texts[0], "🎉 ") {
		t.Errorf("report notification = %v", env.notifier.texts)
	}
}

func TestCron_AssistantFailureNotifiesChat(t *testing.T) {
	env := newTestEnv()
	env.assistant.err = errors.New("run timed out")
	rec := httptest.NewRecorder()

	env.dispatcher.Cron(rec, quietRequest(http.MethodPost, "/cron/report-weekly", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if len(env.notifier.errs) != 1 {
		t.Errorf("error notifications = %v", env.notifier.errs)
	}
	if len(env.notifier.texts) != 0 {
		t.Errorf("report went out despite the failure: %v", env.notifier.texts)
	}
}
