package llm

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmeeraws/phuketer/internal/openai"
	"github.com/rmeeraws/phuketer/internal/search"
)

type fakeBackend struct {
	name  string
	reply string
	err   error
	calls int
	last  []openai.Message
}

func (f *fakeBackend) ChatCompletion(messages []openai.Message) (string, error) {
	f.calls++
	f.last = messages
	return f.reply, f.err
}

func (f *fakeBackend) Model() string { return f.name }

type fakeSearcher struct {
	queries []string
	results []search.Result
}

func (f *fakeSearcher) Query(query string, num int) []search.Result {
	f.queries = append(f.queries, query)
	return f.results
}

type fakeRecorder struct {
	userIDs []int64
	queries []string
}

func (f *fakeRecorder) RecordSearch(userID int64, query string) error {
	f.userIDs = append(f.userIDs, userID)
	f.queries = append(f.queries, query)
	return nil
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(audioPath string) (string, error) {
	return f.text, f.err
}

func TestNeedsSearch(t *testing.T) {
	tests := []struct {
		prompt string
		want   bool
	}{
		{"какая погода сегодня?", true},
		{"какой курс бата?", true},
		{"отзывы о ресторанах на Камале", true},
		{"РАСПИСАНИЕ автобусов", true},
		{"расскажи про историю острова", false},
		{"привет!", false},
	}
	for _, tt := range tests {
		if got := NeedsSearch(tt.prompt); got != tt.want {
			t.Errorf("NeedsSearch(%q) = %v, want %v", tt.prompt, got, tt.want)
		}
	}
}

func TestNewManager_RequiresBackend(t *testing.T) {
	if _, err := NewManager(nil, nil, nil, nil, nil, "", 5); err == nil {
		t.Fatal("expected error when no backend is configured")
	}
}

func TestComplete_PrefersPrimary(t *testing.T) {
	primary := &fakeBackend{name: "deepseek-chat", reply: "ответ primary"}
	secondary := &fakeBackend{name: "gpt-3.5-turbo", reply: "ответ secondary"}
	m, err := NewManager(primary, secondary, nil, nil, nil, "", 5)
	if err != nil {
		t.Fatal(err)
	}

	got, err := m.Complete([]openai.Message{{Role: "user", Content: "привет"}}, ModelDeepSeek, 1)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "ответ primary" {
		t.Fatalf("reply = %q", got)
	}
	if secondary.calls != 0 {
		t.Fatal("secondary must not be called when primary succeeds")
	}
}

func TestComplete_FallsBackToSecondary(t *testing.T) {
	primary := &fakeBackend{name: "deepseek-chat", err: errors.New("rate limited")}
	secondary := &fakeBackend{name: "gpt-3.5-turbo", reply: "запасной ответ"}
	m, err := NewManager(primary, secondary, nil, nil, nil, "", 5)
	if err != nil {
		t.Fatal(err)
	}

	got, err := m.Complete([]openai.Message{{Role: "user", Content: "привет"}}, ModelDeepSeek, 1)
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got != "запасной ответ" {
		t.Fatalf("reply = %q", got)
	}
	if primary.calls != 1 || secondary.calls != 1 {
		t.Fatalf("calls primary=%d secondary=%d, want 1/1", primary.calls, secondary.calls)
	}
}

func TestComplete_AllBackendsFail(t *testing.T) {
	primary := &fakeBackend{name: "a", err: errors.New("down")}
	secondary := &fakeBackend{name: "b", err: errors.New("also down")}
	m, err := NewManager(primary, secondary, nil, nil, nil, "", 5)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.Complete([]openai.Message{{Role: "user", Content: "привет"}}, ModelDeepSeek, 1); err == nil {
		t.Fatal("expected error when every backend fails")
	}
}

func TestComplete_OpenAIPreferenceFlipsOrder(t *testing.T) {
	primary := &fakeBackend{name: "deepseek-chat", reply: "primary"}
	secondary := &fakeBackend{name: "gpt-3.5-turbo", reply: "secondary"}
	m, err := NewManager(primary, secondary, nil, nil, nil, "", 5)
	if err != nil {
		t.Fatal(err)
	}

	got, err := m.Complete([]openai.Message{{Role: "user", Content: "привет"}}, ModelOpenAI, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got != "secondary" {
		t.Fatalf("reply = %q, want secondary first", got)
	}
	if primary.calls != 0 {
		t.Fatal("primary must not be called when preference is openai and secondary succeeds")
	}
}

func TestComplete_ConvertsMarkdownToHTML(t *testing.T) {
	primary := &fakeBackend{name: "deepseek-chat", reply: "это **важно**"}
	m, err := NewManager(primary, nil, nil, nil, nil, "", 5)
	if err != nil {
		t.Fatal(err)
	}

	got, err := m.Complete([]openai.Message{{Role: "user", Content: "что важно?"}}, ModelDeepSeek, 1)
	if err != nil {
		t.Fatal(err)
	}
	if got != "это <b>важно</b>" {
		t.Fatalf("reply = %q", got)
	}
}

func TestComplete_InjectsSearchResultsForFreshQuery(t *testing.T) {
	backend := &fakeBackend{name: "deepseek-chat", reply: "солнечно"}
	searcher := &fakeSearcher{results: []search.Result{
		{Title: "Погода", Link: "http://w.example", Snippet: "+31"},
	}}
	recorder := &fakeRecorder{}
	m, err := NewManager(backend, nil, searcher, nil, recorder, "", 3)
	if err != nil {
		t.Fatal(err)
	}

	history := []openai.Message{{Role: "user", Content: "какая погода сегодня?"}}
	if _, err := m.Complete(history, ModelDeepSeek, 77); err != nil {
		t.Fatal(err)
	}

	if len(searcher.queries) != 1 || searcher.queries[0] != "какая погода сегодня?" {
		t.Fatalf("searcher queries = %v", searcher.queries)
	}
	if len(backend.last) == 0 || backend.last[0].Role != "system" {
		t.Fatalf("first message must be system, got %+v", backend.last)
	}
	system := backend.last[0].Content
	if !strings.Contains(system, "Актуальная информация из поиска") {
		t.Fatalf("system prompt missing search block: %q", system)
	}
	if !strings.Contains(system, "Погода") || !strings.Contains(system, "http://w.example") {
		t.Fatalf("system prompt missing result fields: %q", system)
	}
	if len(recorder.userIDs) != 1 || recorder.userIDs[0] != 77 {
		t.Fatalf("recorder userIDs = %v", recorder.userIDs)
	}
}

func TestComplete_RewritesReviewQueries(t *testing.T) {
	backend := &fakeBackend{name: "deepseek-chat", reply: "ок"}
	searcher := &fakeSearcher{}
	m, err := NewManager(backend, nil, searcher, nil, nil, "", 5)
	if err != nil {
		t.Fatal(err)
	}

	history := []openai.Message{{Role: "user", Content: "отзывы о ресторанах на Карон"}}
	if _, err := m.Complete(history, ModelDeepSeek, 1); err != nil {
		t.Fatal(err)
	}
	if len(searcher.queries) != 1 {
		t.Fatalf("queries = %v", searcher.queries)
	}
	if got := searcher.queries[0]; !strings.Contains(got, "рекомендации") || strings.Contains(got, "отзывы") {
		t.Fatalf("query not rewritten: %q", got)
	}
}

func TestComplete_NoSearchForPlainQuery(t *testing.T) {
	backend := &fakeBackend{name: "deepseek-chat", reply: "ок"}
	searcher := &fakeSearcher{}
	m, err := NewManager(backend, nil, searcher, nil, nil, "", 5)
	if err != nil {
		t.Fatal(err)
	}

	history := []openai.Message{{Role: "user", Content: "расскажи про пляжи"}}
	if _, err := m.Complete(history, ModelDeepSeek, 1); err != nil {
		t.Fatal(err)
	}
	if len(searcher.queries) != 0 {
		t.Fatalf("searcher must not run, queries = %v", searcher.queries)
	}
	if strings.Contains(backend.last[0].Content, "Актуальная информация") {
		t.Fatal("system prompt must not carry a search block")
	}
}

func TestComplete_SystemPromptFromFile(t *testing.T) {
	promptFile := filepath.Join(t.TempDir(), "knowledge.md")
	if err := os.WriteFile(promptFile, []byte("Ты гид по острову."), 0o644); err != nil {
		t.Fatal(err)
	}
	backend := &fakeBackend{name: "deepseek-chat", reply: "ок"}
	m, err := NewManager(backend, nil, nil, nil, nil, promptFile, 5)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.Complete([]openai.Message{{Role: "user", Content: "привет"}}, ModelDeepSeek, 1); err != nil {
		t.Fatal(err)
	}
	if got := backend.last[0].Content; got != "Ты гид по острову." {
		t.Fatalf("system prompt = %q", got)
	}
}

func TestComplete_MissingPromptFileUsesDefault(t *testing.T) {
	backend := &fakeBackend{name: "deepseek-chat", reply: "ок"}
	m, err := NewManager(backend, nil, nil, nil, nil, filepath.Join(t.TempDir(), "absent.md"), 5)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.Complete([]openai.Message{{Role: "user", Content: "привет"}}, ModelDeepSeek, 1); err != nil {
		t.Fatal(err)
	}
	if got := backend.last[0].Content; !strings.Contains(got, "Пхукету") {
		t.Fatalf("expected default system prompt, got %q", got)
	}
}

func TestTranscribe(t *testing.T) {
	backend := &fakeBackend{name: "deepseek-chat", reply: "ок"}

	m, _ := NewManager(backend, nil, nil, &fakeTranscriber{text: "привет"}, nil, "", 5)
	if got := m.Transcribe("voice.oga"); got != "привет" {
		t.Fatalf("Transcribe = %q", got)
	}

	m, _ = NewManager(backend, nil, nil, &fakeTranscriber{err: errors.New("bad audio")}, nil, "", 5)
	if got := m.Transcribe("voice.oga"); got != "" {
		t.Fatalf("Transcribe on failure = %q, want empty", got)
	}

	m, _ = NewManager(backend, nil, nil, nil, nil, "", 5)
	if got := m.Transcribe("voice.oga"); got != "" {
		t.Fatalf("Transcribe without backend = %q, want empty", got)
	}
}
