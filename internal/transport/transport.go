package transport

import "errors"

// ErrBadRequest indicates the transport rejected the request payload,
// typically because the message markup could not be parsed. Callers fall
// back to plain text on this error; network failures never map to it.
var ErrBadRequest = errors.New("transport: bad request")

// Parse modes for outgoing messages. ModeNone sends plain text.
const (
	ModeNone = ""
	ModeHTML = "HTML"
)

// Transport is the messaging boundary used by the bot.
type Transport interface {
	GetUpdates(offset int64, timeout int) ([]Update, error)
	SendMessage(chatID int64, text, parseMode string, replyTo int64) (*Message, error)
	EditMessageText(chatID, messageID int64, text, parseMode string) error
	DeleteMessage(chatID, messageID int64) error
	GetFile(fileID string) (*File, error)
	DownloadFile(filePath, dest string) error
}

// Update represents one incoming update.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

// Message represents a chat message, incoming or sent.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Date      int64  `json:"date"`
	Text      string `json:"text,omitempty"`
	Voice     *Voice `json:"voice,omitempty"`
}

// User identifies a message sender.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username,omitempty"`
}

// Chat identifies a conversation.
type Chat struct {
	ID int64 `json:"id"`
}

// Voice describes a voice note attached to a message.
type Voice struct {
	FileID   string `json:"file_id"`
	Duration int    `json:"duration,omitempty"`
}

// File is the download handle returned by getFile.
type File struct {
	FileID   string `json:"file_id"`
	FilePath string `json:"file_path,omitempty"`
}
