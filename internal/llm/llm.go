package llm

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/rmeeraws/phuketer/internal/markup"
	"github.com/rmeeraws/phuketer/internal/openai"
	"github.com/rmeeraws/phuketer/internal/search"
)

// ModelPreference selects which chat backend is tried first.
type ModelPreference string

const (
	// ModelDeepSeek prefers the DeepSeek backend (the default).
	ModelDeepSeek ModelPreference = "deepseek"
	// ModelOpenAI prefers the OpenAI backend.
	ModelOpenAI ModelPreference = "openai"
)

// ChatBackend is one chat completion backend.
type ChatBackend interface {
	ChatCompletion(messages []openai.Message) (string, error)
	Model() string
}

// Searcher provides web search results; an empty list means no augmentation.
type Searcher interface {
	Query(query string, num int) []search.Result
}

// AudioTranscriber converts an audio file into text.
type AudioTranscriber interface {
	Transcribe(audioPath string) (string, error)
}

// SearchRecorder receives fire-and-forget search usage events.
type SearchRecorder interface {
	RecordSearch(userID int64, query string) error
}

const defaultSystemPrompt = "Ты - эксперт по Пхукету, дружелюбный и знающий местный житель. " +
	"Отвечай кратко, без \"воды\", всегда давай только полезные советы. Используй emojis. " +
	"Используй HTML-разметку (теги <b>, <i>) для выделения важных моментов."

// Keywords hinting that the question needs live data: currency, prices,
// schedules, opening hours, weather, exchange rates, reviews.
var searchKeywords = []string{
	"актуальн", "сейчас", "сегодня", "вчера", "завтра", "недавно",
	"новости", "цены", "расписание", "работает", "открыт", "закрыт",
	"время работы", "курс", "валют", "обмен", "погода", "отзывы",
}

// Manager coordinates the chat backends, the search collaborator and the
// transcription collaborator. Backends, searcher, transcriber and recorder
// may each be nil when unconfigured.
type Manager struct {
	primary     ChatBackend
	secondary   ChatBackend
	searcher    Searcher
	transcriber AudioTranscriber
	recorder    SearchRecorder
	promptFile  string
	resultCount int
}

// NewManager creates a manager. At least one of primary/secondary must be
// non-nil.
func NewManager(primary, secondary ChatBackend, searcher Searcher, transcriber AudioTranscriber, recorder SearchRecorder, promptFile string, resultCount int) (*Manager, error) {
	if primary == nil && secondary == nil {
		return nil, fmt.Errorf("llm manager requires at least one chat backend")
	}
	if resultCount <= 0 {
		resultCount = 5
	}
	return &Manager{
		primary:     primary,
		secondary:   secondary,
		searcher:    searcher,
		transcriber: transcriber,
		recorder:    recorder,
		promptFile:  promptFile,
		resultCount: resultCount,
	}, nil
}

// NeedsSearch reports whether the prompt matches the freshness heuristic.
// Keywords are matched case-insensitively as substrings.
func NeedsSearch(prompt string) bool {
	lower := strings.ToLower(prompt)
	for _, keyword := range searchKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// Complete asks the preferred backend for a reply to the given history,
// falling back to the other backend on failure. When the latest user turn
// matches the freshness heuristic, search results are injected into the
// system prompt first. The reply is returned as Telegram HTML.
func (m *Manager) Complete(history []openai.Message, pref ModelPreference, userID int64) (string, error) {
	system := m.systemPrompt()

	if m.searcher != nil && len(history) > 0 {
		lastPrompt := history[len(history)-1].Content
		if NeedsSearch(lastPrompt) {
			query := lastPrompt
			// Raw review queries surface aggregator spam; recommendations
			// search better.
			if strings.Contains(strings.ToLower(lastPrompt), "отзывы") {
				query = strings.ReplaceAll(lastPrompt, "отзывы", "рекомендации")
			}
			log.Printf("[llm] searching: %s", query)
			if m.recorder != nil && userID != 0 {
				if err := m.recorder.RecordSearch(userID, query); err != nil {
					log.Printf("[llm] failed to record search: %v", err)
				}
			}
			if block := formatResults(m.searcher.Query(query, m.resultCount)); block != "" {
				system += "\n\nАктуальная информация из поиска:\n" + block
			}
		}
	}

	messages := make([]openai.Message, 0, len(history)+1)
	messages = append(messages, openai.Message{Role: "system", Content: system})
	messages = append(messages, history...)

	var lastErr error
	for _, backend := range m.order(pref) {
		content, err := backend.ChatCompletion(messages)
		if err != nil {
			log.Printf("[llm] %s completion failed: %v", backend.Model(), err)
			lastErr = err
			continue
		}
		return markup.ToHTML(content), nil
	}
	return "", fmt.Errorf("all chat backends failed: %w", lastErr)
}

// Transcribe converts the audio file into text, returning "" on failure or
// when no transcription backend is configured.
func (m *Manager) Transcribe(audioPath string) string {
	if m.transcriber == nil {
		log.Printf("[llm] no transcription backend configured")
		return ""
	}
	text, err := m.transcriber.Transcribe(audioPath)
	if err != nil {
		log.Printf("[llm] transcription failed: %v", err)
		return ""
	}
	return text
}

func (m *Manager) order(pref ModelPreference) []ChatBackend {
	first, second := m.primary, m.secondary
	if pref == ModelOpenAI {
		first, second = m.secondary, m.primary
	}
	var order []ChatBackend
	if first != nil {
		order = append(order, first)
	}
	if second != nil {
		order = append(order, second)
	}
	return order
}

func (m *Manager) systemPrompt() string {
	if m.promptFile != "" {
		if data, err := os.ReadFile(m.promptFile); err == nil {
			return string(data)
		}
	}
	return defaultSystemPrompt
}

func formatResults(results []search.Result) string {
	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "Заголовок: %s\n", r.Title)
		fmt.Fprintf(&b, "Ссылка: %s\n", r.Link)
		fmt.Fprintf(&b, "Описание: %s\n\n", r.Snippet)
	}
	return b.String()
}
