package bot

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/rmeeraws/phuketer/internal/llm"
	"github.com/rmeeraws/phuketer/internal/openai"
	"github.com/rmeeraws/phuketer/internal/session"
	"github.com/rmeeraws/phuketer/internal/transport"
)

// Fixed user-facing replies. Every turn ends with exactly one terminal
// response: a real answer, one of these, or the apology.
const (
	replyNoAnswer          = "🙈 Не смог получить ответ, попробуй ещё раз."
	replyCouldNotHear      = "Извини, не удалось распознать твою речь. Попробуй, пожалуйста, еще раз."
	replyVoiceUnavailable  = "Не удалось получить голосовое сообщение."
	replyApology           = "Извини, произошла какая-то ошибка. Попробуй ещё раз позже."
	placeholderDoneMarker  = "✅ Готово"
	defaultMaxMessageLen   = 4000
	defaultProgressStep    = time.Second
	defaultTopUsersLimit   = 10
)

// Completer is the LLM collaborator contract.
type Completer interface {
	Complete(history []openai.Message, pref llm.ModelPreference, userID int64) (string, error)
	Transcribe(audioPath string) string
}

// Stats is the usage statistics collaborator. All calls are fire-and-forget
// from the bot's point of view: failures are logged, never surfaced.
type Stats interface {
	RecordMessage(userID int64, username string, isVoice bool) error
	Summary() (string, error)
	TopUsers(limit int) (string, error)
}

// Options tunes bot behavior; zero values select defaults.
type Options struct {
	MaxMessageLength int
	ProgressInterval time.Duration
	ModelPreference  llm.ModelPreference
	VoiceDir         string
}

// Bot is the response orchestrator: it resolves one inbound update into
// exactly one terminal user-visible response, maintaining session history
// and the progress placeholder along the way.
type Bot struct {
	transport     transport.Transport
	llm           Completer
	stats         Stats
	sessions      *session.Store
	maxMessageLen int
	progressStep  time.Duration
	modelPref     llm.ModelPreference
	voiceDir      string
}

// New creates a bot.
func New(tr transport.Transport, completer Completer, stats Stats, sessions *session.Store, opts Options) *Bot {
	if opts.MaxMessageLength <= 0 {
		opts.MaxMessageLength = defaultMaxMessageLen
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = defaultProgressStep
	}
	if opts.ModelPreference == "" {
		opts.ModelPreference = llm.ModelDeepSeek
	}
	if opts.VoiceDir == "" {
		opts.VoiceDir = os.TempDir()
	}
	return &Bot{
		transport:     tr,
		llm:           completer,
		stats:         stats,
		sessions:      sessions,
		maxMessageLen: opts.MaxMessageLength,
		progressStep:  opts.ProgressInterval,
		modelPref:     opts.ModelPreference,
		voiceDir:      opts.VoiceDir,
	}
}

// HandleUpdate processes one inbound update to completion. Safe to run
// concurrently for independent updates; a panic is contained here and
// surfaced to the user as the fixed apology.
func (b *Bot) HandleUpdate(update transport.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[bot] panic handling update %d: %v", update.UpdateID, r)
			b.reply(msg, replyApology, transport.ModeNone)
		}
	}()

	switch {
	case msg.Voice != nil:
		b.handleVoice(msg)
	case msg.Text != "":
		b.handleText(msg)
	}
}

func (b *Bot) handleText(msg *transport.Message) {
	if handled := b.handleCommand(msg); handled {
		return
	}

	log.Printf("[bot] message from %s in chat %d: %s", username(msg), msg.Chat.ID, msg.Text)
	if err := b.stats.RecordMessage(msg.From.ID, username(msg), false); err != nil {
		log.Printf("[bot] failed to record message: %v", err)
	}

	t, err := b.beginTurn(msg.Chat.ID)
	if err != nil {
		log.Printf("[bot] %v", err)
		b.reply(msg, replyApology, transport.ModeNone)
		return
	}
	defer t.finish()

	b.converse(t, msg, msg.Text)
}

func (b *Bot) handleVoice(msg *transport.Message) {
	log.Printf("[bot] voice message from %s in chat %d", username(msg), msg.Chat.ID)
	if err := b.stats.RecordMessage(msg.From.ID, username(msg), true); err != nil {
		log.Printf("[bot] failed to record message: %v", err)
	}

	t, err := b.beginTurn(msg.Chat.ID)
	if err != nil {
		log.Printf("[bot] %v", err)
		b.reply(msg, replyApology, transport.ModeNone)
		return
	}
	defer t.finish()

	recognized, ok := b.fetchTranscript(msg)
	if !ok {
		b.reply(msg, replyVoiceUnavailable, transport.ModeNone)
		return
	}
	if recognized == "" {
		b.reply(msg, replyCouldNotHear, transport.ModeNone)
		return
	}
	b.converse(t, msg, recognized)
}

// converse runs the LLM round trip for one resolved user text: append the
// user turn, ask the collaborator, deliver on success. On total failure the
// history keeps the user turn but gains no assistant turn, and the
// placeholder becomes the fixed failure message.
func (b *Bot) converse(t *activeTurn, msg *transport.Message, userText string) {
	key := session.Key{UserID: msg.From.ID, ChatID: msg.Chat.ID}
	b.sessions.Append(key, session.Turn{Role: session.RoleUser, Content: userText})

	reply, err := b.llm.Complete(chatMessages(b.sessions.History(key)), b.modelPref, msg.From.ID)
	if err != nil {
		log.Printf("[bot] no answer for chat %d: %v", msg.Chat.ID, err)
		t.fail(replyNoAnswer)
		return
	}

	b.sessions.Append(key, session.Turn{Role: session.RoleAssistant, Content: reply})
	if err := b.sendLongMessage(msg, reply); err != nil {
		log.Printf("[bot] delivery failed for chat %d: %v", msg.Chat.ID, err)
		b.reply(msg, replyApology, transport.ModeNone)
	}
}

// fetchTranscript downloads the voice note to a temp file and transcribes
// it. The empty string with ok=true means the speech was not recognized.
func (b *Bot) fetchTranscript(msg *transport.Message) (string, bool) {
	file, err := b.transport.GetFile(msg.Voice.FileID)
	if err != nil {
		log.Printf("[bot] failed to resolve voice file: %v", err)
		return "", false
	}
	if file.FilePath == "" {
		log.Printf("[bot] voice file %s has no path", msg.Voice.FileID)
		return "", false
	}

	dest := filepath.Join(b.voiceDir, fmt.Sprintf("voice_%d.oga", msg.From.ID))
	if err := b.transport.DownloadFile(file.FilePath, dest); err != nil {
		log.Printf("[bot] failed to download voice file: %v", err)
		return "", false
	}
	defer os.Remove(dest)

	return b.llm.Transcribe(dest), true
}

// activeTurn owns the placeholder message and the progress indicator for
// one in-flight response.
type activeTurn struct {
	bot       *Bot
	chatID    int64
	messageID int64
	prog      *progress
	finalText string
}

// beginTurn sends the placeholder and starts the progress indicator.
func (b *Bot) beginTurn(chatID int64) (*activeTurn, error) {
	placeholder, err := b.transport.SendMessage(chatID, progressFrames[0], transport.ModeHTML, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to send placeholder: %w", err)
	}
	return &activeTurn{
		bot:       b,
		chatID:    chatID,
		messageID: placeholder.MessageID,
		prog:      startProgress(b.transport, chatID, placeholder.MessageID, b.progressStep),
	}, nil
}

// fail makes the placeholder the terminal response with the given text
// instead of deleting it.
func (t *activeTurn) fail(text string) {
	t.finalText = text
}

// finish stops the progress indicator, awaits its exit, and finalizes the
// placeholder. It runs on every exit path of the enclosing handler.
func (t *activeTurn) finish() {
	t.prog.stop()

	if t.finalText != "" {
		if err := t.bot.transport.EditMessageText(t.chatID, t.messageID, t.finalText, transport.ModeNone); err != nil {
			log.Printf("[bot] failed to edit placeholder: %v", err)
			if _, sendErr := t.bot.transport.SendMessage(t.chatID, t.finalText, transport.ModeNone, 0); sendErr != nil {
				log.Printf("[bot] failed to send failure notice: %v", sendErr)
			}
		}
		return
	}

	if err := t.bot.transport.DeleteMessage(t.chatID, t.messageID); err != nil {
		if editErr := t.bot.transport.EditMessageText(t.chatID, t.messageID, placeholderDoneMarker, transport.ModeNone); editErr != nil {
			log.Printf("[bot] failed to finalize placeholder: %v", editErr)
		}
	}
}

func (b *Bot) reply(msg *transport.Message, text, parseMode string) {
	if _, err := b.transport.SendMessage(msg.Chat.ID, text, parseMode, msg.MessageID); err != nil {
		log.Printf("[bot] failed to reply in chat %d: %v", msg.Chat.ID, err)
	}
}

func chatMessages(history []session.Turn) []openai.Message {
	out := make([]openai.Message, 0, len(history))
	for _, turn := range history {
		out = append(out, openai.Message{Role: turn.Role, Content: turn.Content})
	}
	return out
}

func username(msg *transport.Message) string {
	if msg.From != nil && msg.From.Username != "" {
		return msg.From.Username
	}
	return "Unknown"
}
