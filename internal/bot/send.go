package bot

import (
	"errors"

	"github.com/rmeeraws/phuketer/internal/markup"
	"github.com/rmeeraws/phuketer/internal/transport"
)

const (
	continuationPrefix = "...продолжение:\n"
	continuationSuffix = "\n\n📄 <i>Продолжение следует...</i>"
)

// sendLongMessage delivers a reply as ordered chunks: every chunk except the
// first gets a continuation prefix, every chunk except the last a "more
// follows" suffix. Chunks go out strictly sequentially. When Telegram
// rejects the HTML markup of a chunk, that one chunk is converted to plain
// text and resent; later chunks still attempt HTML.
func (b *Bot) sendLongMessage(msg *transport.Message, text string) error {
	text = markup.StripHeaders(text)
	parts := markup.Split(text, b.maxMessageLen)

	for i, part := range parts {
		out := part
		if i > 0 {
			out = continuationPrefix + out
		}
		if i < len(parts)-1 {
			out += continuationSuffix
		}

		_, err := b.transport.SendMessage(msg.Chat.ID, out, transport.ModeHTML, msg.MessageID)
		if err == nil {
			continue
		}
		if !errors.Is(err, transport.ErrBadRequest) {
			return err
		}
		if _, plainErr := b.transport.SendMessage(msg.Chat.ID, markup.ToPlain(out), transport.ModeNone, msg.MessageID); plainErr != nil {
			return plainErr
		}
	}
	return nil
}
