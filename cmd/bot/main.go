package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/rmeeraws/phuketer/internal/analytics"
	"github.com/rmeeraws/phuketer/internal/bot"
	"github.com/rmeeraws/phuketer/internal/config"
	"github.com/rmeeraws/phuketer/internal/heartbeat"
	"github.com/rmeeraws/phuketer/internal/llm"
	"github.com/rmeeraws/phuketer/internal/openai"
	"github.com/rmeeraws/phuketer/internal/search"
	"github.com/rmeeraws/phuketer/internal/session"
	"github.com/rmeeraws/phuketer/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[bot] %v", err)
	}

	stats, err := analytics.Open(cfg.StatsDBPath)
	if err != nil {
		log.Fatalf("[bot] %v", err)
	}
	defer stats.Close()

	tg := telegram.NewClient(
		cfg.TelegramAPIBase,
		cfg.TelegramFileAPIBase,
		time.Duration(cfg.PollTimeout+20)*time.Second,
	)

	var primary, secondary llm.ChatBackend
	var transcriber llm.AudioTranscriber
	if cfg.DeepSeekAPIKey != "" {
		primary = openai.NewClient(cfg.DeepSeekAPIKey, cfg.DeepSeekChatURL, cfg.DeepSeekModel, 120*time.Second)
	}
	if cfg.OpenAIAPIKey != "" {
		secondary = openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIChatURL, cfg.OpenAIModel, 120*time.Second)
		transcriber = openai.NewTranscriber(cfg.OpenAIAPIKey, cfg.WhisperURL, cfg.WhisperModel, 120*time.Second)
	}

	var searcher llm.Searcher
	if cfg.GoogleSearchAPIKey != "" && cfg.SearchEngineID != "" {
		searcher = search.NewClient(cfg.GoogleSearchAPIKey, cfg.SearchEngineID, cfg.SearchURL, 15*time.Second)
	}

	manager, err := llm.NewManager(primary, secondary, searcher, transcriber, stats, cfg.SystemPromptFile, cfg.SearchResultCount)
	if err != nil {
		log.Fatalf("[bot] %v", err)
	}

	b := bot.New(tg, manager, stats, session.NewStore(), bot.Options{
		MaxMessageLength: cfg.MaxMessageLength,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.HealthchecksPingURL != "" {
		beacon := heartbeat.NewBeacon(
			cfg.HealthchecksPingURL,
			time.Duration(cfg.HeartbeatIntervalSeconds)*time.Second,
			10*time.Second,
		)
		go beacon.Run(ctx)
		log.Printf("[bot] heartbeat started (%ds)", cfg.HeartbeatIntervalSeconds)
	}

	if err := tg.DeleteWebhook(cfg.DropPending); err != nil {
		log.Printf("[bot] failed to delete webhook: %v", err)
	}
	log.Printf("[bot] running")

	var offset int64
	for {
		select {
		case <-ctx.Done():
			log.Printf("[bot] shutdown complete")
			return
		default:
		}

		updates, err := tg.GetUpdates(offset, cfg.PollTimeout)
		if err != nil {
			log.Printf("[bot] getUpdates error: %v", err)
			time.Sleep(time.Second)
			continue
		}
		for _, update := range updates {
			offset = update.UpdateID + 1
			go b.HandleUpdate(update)
		}
	}
}
