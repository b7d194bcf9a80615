package analytics

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store persists bot usage statistics in SQLite: aggregate counters per
// user, per calendar day (with distinct users seen that day) and a log of
// search queries. Writes are fire-and-forget from the caller's point of
// view; a failed write never fails a user-facing turn.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the statistics database at the given path,
// ensuring that the parent directory exists.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create stats directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open stats db at %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping stats db at %s: %w", path, err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init stats schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			user_id INTEGER PRIMARY KEY,
			username TEXT NOT NULL DEFAULT '',
			first_seen INTEGER NOT NULL DEFAULT (unixepoch()),
			last_seen INTEGER NOT NULL DEFAULT (unixepoch()),
			messages INTEGER NOT NULL DEFAULT 0,
			voice_messages INTEGER NOT NULL DEFAULT 0,
			searches INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS daily (
			day TEXT PRIMARY KEY,
			messages INTEGER NOT NULL DEFAULT 0,
			voice_messages INTEGER NOT NULL DEFAULT 0,
			searches INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS daily_users (
			day TEXT NOT NULL,
			user_id INTEGER NOT NULL,
			PRIMARY KEY (day, user_id)
		);

		CREATE TABLE IF NOT EXISTS searches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			query TEXT NOT NULL,
			created_at INTEGER NOT NULL DEFAULT (unixepoch())
		);
	`)
	return err
}

// RecordMessage counts one inbound message for the user and the current day.
func (s *Store) RecordMessage(userID int64, username string, isVoice bool) error {
	voice := 0
	if isVoice {
		voice = 1
	}
	day := today()

	_, err := s.db.Exec(
		`INSERT INTO users (user_id, username, messages, voice_messages)
		 VALUES (?, ?, 1, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			messages = messages + 1,
			voice_messages = voice_messages + excluded.voice_messages,
			last_seen = unixepoch(),
			username = CASE WHEN excluded.username != '' THEN excluded.username ELSE username END`,
		userID, username, voice,
	)
	if err != nil {
		return fmt.Errorf("failed to record user message: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO daily (day, messages, voice_messages)
		 VALUES (?, 1, ?)
		 ON CONFLICT(day) DO UPDATE SET
			messages = messages + 1,
			voice_messages = voice_messages + excluded.voice_messages`,
		day, voice,
	)
	if err != nil {
		return fmt.Errorf("failed to record daily message: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT OR IGNORE INTO daily_users (day, user_id) VALUES (?, ?)`,
		day, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to record daily user: %w", err)
	}
	return nil
}

// RecordSearch counts one triggered web search for the user and the current
// day and logs the query.
func (s *Store) RecordSearch(userID int64, query string) error {
	day := today()

	if _, err := s.db.Exec(
		`UPDATE users SET searches = searches + 1 WHERE user_id = ?`, userID,
	); err != nil {
		return fmt.Errorf("failed to record user search: %w", err)
	}
	if _, err := s.db.Exec(
		`INSERT INTO daily (day, searches) VALUES (?, 1)
		 ON CONFLICT(day) DO UPDATE SET searches = searches + 1`,
		day,
	); err != nil {
		return fmt.Errorf("failed to record daily search: %w", err)
	}
	if _, err := s.db.Exec(
		`INSERT INTO searches (user_id, query) VALUES (?, ?)`, userID, query,
	); err != nil {
		return fmt.Errorf("failed to log search query: %w", err)
	}
	return nil
}

// Summary returns the admin statistics report: aggregate totals plus
// today's counters.
func (s *Store) Summary() (string, error) {
	var totalUsers, totalMessages, totalVoice, totalSearches int64
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(messages), 0), COALESCE(SUM(voice_messages), 0), COALESCE(SUM(searches), 0) FROM users`,
	).Scan(&totalUsers, &totalMessages, &totalVoice, &totalSearches)
	if err != nil {
		return "", fmt.Errorf("failed to read totals: %w", err)
	}

	day := today()
	var dayMessages, daySearches int64
	err = s.db.QueryRow(
		`SELECT messages, searches FROM daily WHERE day = ?`, day,
	).Scan(&dayMessages, &daySearches)
	if err != nil && err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to read daily stats: %w", err)
	}
	var dayUsers int64
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM daily_users WHERE day = ?`, day,
	).Scan(&dayUsers); err != nil {
		return "", fmt.Errorf("failed to read daily users: %w", err)
	}

	return fmt.Sprintf(`📊 Статистика бота:

👥 Всего пользователей: %d
💬 Всего сообщений: %d
🎤 Голосовых сообщений: %d
🔍 Поисковых запросов: %d

📅 Сегодня (%s):
💬 Сообщений: %d
👥 Уникальных пользователей: %d
🔍 Поисков: %d
`, totalUsers, totalMessages, totalVoice, totalSearches, day, dayMessages, dayUsers, daySearches), nil
}

// TopUsers returns a report of the most active users by message count.
func (s *Store) TopUsers(limit int) (string, error) {
	rows, err := s.db.Query(
		`SELECT username, messages, voice_messages, searches FROM users
		 ORDER BY messages DESC, user_id LIMIT ?`, limit,
	)
	if err != nil {
		return "", fmt.Errorf("failed to read top users: %w", err)
	}
	defer rows.Close()

	type userRow struct {
		username                  string
		messages, voice, searches int64
	}
	var users []userRow
	for rows.Next() {
		var u userRow
		if err := rows.Scan(&u.username, &u.messages, &u.voice, &u.searches); err != nil {
			continue
		}
		users = append(users, u)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏆 Топ %d активных пользователей:\n\n", len(users))
	for i, u := range users {
		name := u.username
		if name == "" {
			name = "Unknown"
		}
		fmt.Fprintf(&b, "%d. @%s: %d сообщений (%d голосовых, %d поисков)\n", i+1, name, u.messages, u.voice, u.searches)
	}
	return b.String(), nil
}

func today() string {
	return time.Now().Format("2006-01-02")
}
