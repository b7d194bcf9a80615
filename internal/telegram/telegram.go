package telegram

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rmeeraws/phuketer/internal/transport"
)

// Client is a minimal Telegram Bot API client.
type Client struct {
	apiBase    string
	fileBase   string
	httpClient *http.Client
}

// NewClient creates a Telegram client for the given bot API base URLs
// (e.g. "https://api.telegram.org/bot<token>" and
// "https://api.telegram.org/file/bot<token>").
func NewClient(apiBase, fileBase string, requestTimeout time.Duration) *Client {
	return &Client{
		apiBase:  apiBase,
		fileBase: fileBase,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// Response is the generic Telegram API response wrapper.
type Response struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code,omitempty"`
	Description string          `json:"description,omitempty"`
}

// GetUpdates calls the getUpdates API with long polling.
func (c *Client) GetUpdates(offset int64, timeout int) ([]transport.Update, error) {
	params := url.Values{}
	params.Set("offset", strconv.FormatInt(offset, 10))
	params.Set("timeout", strconv.Itoa(timeout))

	resp, err := c.httpClient.Get(c.apiBase + "/getUpdates?" + params.Encode())
	if err != nil {
		return nil, fmt.Errorf("telegram getUpdates request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read getUpdates response: %w", err)
	}

	var tgResp Response
	if err := json.Unmarshal(body, &tgResp); err != nil {
		return nil, fmt.Errorf("failed to parse getUpdates response: %w", err)
	}

	if !tgResp.OK {
		return nil, nil
	}

	var updates []transport.Update
	if err := json.Unmarshal(tgResp.Result, &updates); err != nil {
		return nil, fmt.Errorf("failed to parse getUpdates result: %w", err)
	}
	return updates, nil
}

// SendMessage sends a text message to the given chat and returns the sent
// message. A 400 response maps to transport.ErrBadRequest so callers can
// retry with plain text.
func (c *Client) SendMessage(chatID int64, text, parseMode string, replyTo int64) (*transport.Message, error) {
	payload := fmt.Sprintf(`{"chat_id":%d,"text":%s`, chatID, jsonString(text))
	if parseMode != "" {
		payload += fmt.Sprintf(`,"parse_mode":%s`, jsonString(parseMode))
	}
	if replyTo != 0 {
		payload += fmt.Sprintf(`,"reply_to_message_id":%d`, replyTo)
	}
	payload += "}"

	result, err := c.post("sendMessage", payload)
	if err != nil {
		return nil, err
	}

	var msg transport.Message
	if err := json.Unmarshal(result, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse sendMessage result: %w", err)
	}
	return &msg, nil
}

// EditMessageText replaces the text of a previously sent message.
func (c *Client) EditMessageText(chatID, messageID int64, text, parseMode string) error {
	payload := fmt.Sprintf(`{"chat_id":%d,"message_id":%d,"text":%s`, chatID, messageID, jsonString(text))
	if parseMode != "" {
		payload += fmt.Sprintf(`,"parse_mode":%s`, jsonString(parseMode))
	}
	payload += "}"
	_, err := c.post("editMessageText", payload)
	return err
}

// DeleteMessage removes a previously sent message.
func (c *Client) DeleteMessage(chatID, messageID int64) error {
	payload := fmt.Sprintf(`{"chat_id":%d,"message_id":%d}`, chatID, messageID)
	_, err := c.post("deleteMessage", payload)
	return err
}

// GetFile resolves a file_id into a downloadable file path.
func (c *Client) GetFile(fileID string) (*transport.File, error) {
	payload := fmt.Sprintf(`{"file_id":%s}`, jsonString(fileID))
	result, err := c.post("getFile", payload)
	if err != nil {
		return nil, err
	}
	var file transport.File
	if err := json.Unmarshal(result, &file); err != nil {
		return nil, fmt.Errorf("failed to parse getFile result: %w", err)
	}
	return &file, nil
}

// DownloadFile fetches the file at the given Bot API file path and writes it
// to dest.
func (c *Client) DownloadFile(filePath, dest string) error {
	resp, err := c.httpClient.Get(c.fileBase + "/" + strings.TrimPrefix(filePath, "/"))
	if err != nil {
		return fmt.Errorf("telegram file download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("telegram file download status=%d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create download file %s: %w", dest, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("failed to write download file %s: %w", dest, err)
	}
	return nil
}

// DeleteWebhook removes any configured webhook so long polling can run.
func (c *Client) DeleteWebhook(dropPending bool) error {
	payload := fmt.Sprintf(`{"drop_pending_updates":%t}`, dropPending)
	_, err := c.post("deleteWebhook", payload)
	return err
}

func (c *Client) post(method, payload string) (json.RawMessage, error) {
	resp, err := c.httpClient.Post(
		c.apiBase+"/"+method,
		"application/json",
		strings.NewReader(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("telegram %s request failed: %w", method, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", method, err)
	}

	var tgResp Response
	if err := json.Unmarshal(body, &tgResp); err != nil {
		return nil, fmt.Errorf("failed to parse %s response: %w", method, err)
	}
	if !tgResp.OK {
		if tgResp.ErrorCode == http.StatusBadRequest {
			return nil, fmt.Errorf("telegram %s rejected: %s: %w", method, tgResp.Description, transport.ErrBadRequest)
		}
		return nil, fmt.Errorf("telegram %s failed: code=%d description=%s", method, tgResp.ErrorCode, tgResp.Description)
	}
	return tgResp.Result, nil
}

func jsonString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}
