package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	openai "github.com/sashabaranov/go-openai"

	"finbot/internal/api/handlers"
	"finbot/internal/api/middleware"
	"finbot/internal/assistant"
	"finbot/internal/config"
	"finbot/internal/extract"
	"finbot/internal/logger"
	"finbot/internal/notify"
	"finbot/internal/sink"
	"finbot/internal/telegram"
)

// projectTransport adds the OpenAI-Project header to every API call when a
// project id is configured.
type projectTransport struct {
	base    http.RoundTripper
	project string
}

func (t *projectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("OpenAI-Project", t.project)
	return t.base.RoundTrip(req)
}

func newOpenAIClient(cfg *config.Config) *openai.Client {
	clientConfig := openai.DefaultConfig(cfg.OpenAIKey)
	if cfg.OpenAIBaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAIBaseURL
	}
	if cfg.OpenAIProject != "" {
		clientConfig.HTTPClient = &http.Client{
			Transport: &projectTransport{base: http.DefaultTransport, project: cfg.OpenAIProject},
		}
	}
	return openai.NewClientWithConfig(clientConfig)
}

func main() {
	port := flag.String("port", "", "HTTP server port (overrides PORT env)")
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if *port != "" {
		cfg.Port = *port
	}

	ctx := context.Background()

	bot, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot client")
	}
	log.Info().Str("bot", bot.Self.UserName).Msg("Bot client ready")

	ai := newOpenAIClient(cfg)

	var archive sink.Archiver
	if cfg.ArchiveBucket != "" {
		gcs, err := storage.NewClient(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create storage client")
		}
		defer gcs.Close()
		archive = sink.NewGCSArchive(gcs, cfg.ArchiveBucket)
		log.Info().Str("bucket", cfg.ArchiveBucket).Msg("Transaction archive enabled")
	} else {
		log.Warn().Msg("No archive bucket configured - transaction copies will not be archived")
	}

	extractor := extract.New(ai, cfg.ExtractModel, cfg.ExtractSystemPrompt, cfg.ExtractUserPrompt, log)
	records := sink.New(ai, cfg.VectorStoreID, archive, log)
	notifier := notify.New(bot, cfg.TelegramChatID, log)
	answers := assistant.NewService(ai, cfg.AssistantID, cfg.PollInterval, cfg.PollMaxAttempts, log)
	intents := handlers.NewIntentRouter(ai, cfg.ExtractModel)
	photos := telegram.NewPhotos(bot, cfg.TelegramBotToken)

	dispatcher := handlers.NewDispatcher(handlers.Options{
		WebhookSecret: cfg.WebhookSecret,
		OwnerID:       cfg.TelegramChatID,
		ReportPrompt:  cfg.ReportPrompt,
	}, extractor, records, notifier, answers, intents, photos)

	mux := http.NewServeMux()

	mux.HandleFunc("/assistant", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			dispatcher.Webhook(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/mail", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			dispatcher.Mail(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/cron/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			dispatcher.Cron(w, r)
		} else {
			middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		}
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	handler := middleware.RequestID(log)(
		middleware.Recovery(
			middleware.Logger(mux),
		),
	)

	// WriteTimeout must cover the worst-case assistant poll budget plus the
	// surrounding API calls.
	pollBudget := cfg.PollInterval * time.Duration(cfg.PollMaxAttempts)
	server := &http.Server{
		Addr:         ":" + strings.TrimPrefix(cfg.Port, ":"),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: pollBudget + 60*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting bot server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
