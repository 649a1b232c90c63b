package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finbot/internal/extract"
)

const plainMail = "From: Vietcombank <noreply@vietcombank.com.vn>\r\n" +
	"To: owner@example.com\r\n" +
	"Subject: Bien dong so du\r\n" +
	"Date: Mon, 6 Jan 2025 08:00:00 +0700\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n" +
	"So du TK VCB 0123 -50,000 VND luc 06-01-2025 08:00:00. So du 1,000,000 VND.\r\n"

const emptyMail = "From: Vietcombank <noreply@vietcombank.com.vn>\r\n" +
	"Subject: Bien dong so du\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n" +
	"\r\n"

func TestMail_ExtractsAndRecords(t *testing.T) {
	env := newTestEnv()
	env.extractor.result = confirmedResult()
	rec := httptest.NewRecorder()

	env.dispatcher.Mail(rec, quietRequest(http.MethodPost, "/mail", []byte(plainMail)))

	if got := rec.Body.String(); got != "Transaction recorded" {
		t.Fatalf("body = %q, want Transaction recorded", got)
	}
	payload := env.extractor.lastPayload
	for _, want := range []string{
		"From: Vietcombank <noreply@vietcombank.com.vn>",
		"Subject: Bien dong so du",
		"So du TK VCB 0123 -50,000 VND",
	} {
		if !strings.Contains(payload, want) {
			t.Errorf("payload missing %q:\n%s", want, payload)
		}
	}
	if len(env.store.stored) != 1 || len(env.notifier.records) != 1 {
		t.Errorf("stored=%d notified=%d, want 1 and 1", len(env.store.stored), len(env.notifier.records))
	}
}

func TestMail_EmptyBodyRejected(t *testing.T) {
	env := newTestEnv()
	rec := httptest.NewRecorder()

	env.dispatcher.Mail(rec, quietRequest(http.MethodPost, "/mail", []byte(emptyMail)))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if env.extractor.extractCalls != 0 {
		t.Error("extraction ran on an empty message")
	}
	if len(env.notifier.errs) != 0 || len(env.notifier.texts) != 0 {
		t.Error("chat notification went out for an empty message")
	}
}

func TestMail_NotATransaction(t *testing.T) {
	env := newTestEnv()
	env.extractor.result = extract.Result{Outcome: extract.OutcomeNotTransaction}
	rec := httptest.NewRecorder()

	env.dispatcher.Mail(rec, quietRequest(http.MethodPost, "/mail", []byte(plainMail)))

	if got := rec.Body.String(); got != "No transaction found" {
		t.Errorf("body = %q, want No transaction found", got)
	}
	if len(env.store.stored) != 0 {
		t.Error("non-transaction was stored")
	}
}
