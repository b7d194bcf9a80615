package bot

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/rmeeraws/phuketer/internal/session"
	"github.com/rmeeraws/phuketer/internal/transport"
)

const welcomeText = "Привет! 👋\n" +
	"Я твой персональный нейро-эксперт по Пхукету! 🏝️\n\n" +
	"Я могу помочь тебе с:\n" +
	"📍 Поиском интересных мест (пляжи, храмы, кафе)\n" +
	"💎 Рекомендациями по ресторанам и развлечениям\n" +
	"🚗 Практическими советами (транспорт, аренда, обмен валюты)\n" +
	"🗺️ И многим другим!\n\n" +
	"Просто спроси меня о чём-нибудь, связанным с Пхукетом! 😉\n\n" +
	"<i>Команды для админа:</i>\n" +
	"/stats - статистика использования\n" +
	"/topusers - топ активных пользователей"

// Natural-language time questions are answered deterministically without
// calling the model.
var timeQuestionRe = regexp.MustCompile(
	`(?i)(скол(ь|ъ)ко.*врем|како(е|й).*врем|сейчас.*врем|time.*phuket|current.*time.*phuket|время.*пхукет)`,
)

// handleCommand intercepts commands and deterministic questions. Returns
// true when the message was fully handled.
func (b *Bot) handleCommand(msg *transport.Message) bool {
	text := msg.Text
	switch {
	case strings.HasPrefix(text, "/start"):
		b.handleStart(msg)
	case strings.HasPrefix(text, "/stats"):
		b.handleStats(msg)
	case strings.HasPrefix(text, "/topusers"):
		b.handleTopUsers(msg)
	case isTimeCommand(text) || timeQuestionRe.MatchString(text):
		b.handleTime(msg)
	default:
		return false
	}
	return true
}

func (b *Bot) handleStart(msg *transport.Message) {
	b.sessions.Reset(session.Key{UserID: msg.From.ID, ChatID: msg.Chat.ID})
	b.reply(msg, welcomeText, transport.ModeHTML)
}

func (b *Bot) handleStats(msg *transport.Message) {
	summary, err := b.stats.Summary()
	if err != nil {
		log.Printf("[bot] failed to build stats summary: %v", err)
		b.reply(msg, replyApology, transport.ModeNone)
		return
	}
	b.reply(msg, summary, transport.ModeHTML)
}

func (b *Bot) handleTopUsers(msg *transport.Message) {
	top, err := b.stats.TopUsers(defaultTopUsersLimit)
	if err != nil {
		log.Printf("[bot] failed to build top users: %v", err)
		b.reply(msg, replyApology, transport.ModeNone)
		return
	}
	b.reply(msg, top, transport.ModeHTML)
}

func (b *Bot) handleTime(msg *transport.Message) {
	b.reply(msg, fmt.Sprintf("Сейчас на Пхукете: <b>%s</b>", phuketNow()), transport.ModeHTML)
}

func isTimeCommand(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "/time", "time", "время":
		return true
	}
	return false
}

// phuketNow formats the current Phuket time. Phuket shares the Bangkok
// timezone; without tzdata a fixed UTC+7 offset is close enough.
func phuketNow() string {
	loc, err := time.LoadLocation("Asia/Bangkok")
	if err != nil {
		loc = time.FixedZone("UTC+7", 7*60*60)
	}
	return time.Now().In(loc).Format("02.01.2006 • 15:04 (UTC+7)")
}
