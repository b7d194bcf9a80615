package markup

import (
	"regexp"
	"strings"
)

// The bot speaks a tiny markdown dialect to the model and HTML to Telegram.
// Links are converted before bold/italic so that brackets inside link labels
// are never mistaken for emphasis markers.
var (
	linkRe   = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
	boldRe   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicRe = regexp.MustCompile(`\*(.*?)\*`)

	headerRe = regexp.MustCompile(`(?m)^\s*#{1,6}\s*`)

	anchorRe    = regexp.MustCompile(`(?is)<a\s+href="([^"]+)">(.*?)</a>`)
	brRe        = regexp.MustCompile(`(?i)<br\s*/?>`)
	pCloseRe    = regexp.MustCompile(`(?i)</p\s*>`)
	pOpenRe     = regexp.MustCompile(`(?i)<p\s*>`)
	inlineTagRe = regexp.MustCompile(`(?i)</?(?:b|i|u|em|strong|span|code|pre|blockquote|tt)>`)
	anyTagRe    = regexp.MustCompile(`</?[^>]+>`)
	newlinesRe  = regexp.MustCompile(`\n{3,}`)
)

// ToHTML converts the recognized markdown subset (links, bold, italic) to
// Telegram HTML tags. Anything else passes through literally.
func ToHTML(text string) string {
	text = linkRe.ReplaceAllString(text, `<a href="$2">$1</a>`)
	text = boldRe.ReplaceAllString(text, "<b>$1</b>")
	text = italicRe.ReplaceAllString(text, "<i>$1</i>")
	return text
}

// ToPlain rewrites HTML into a plain-text rendering: anchors become
// "label (url)", line-break and paragraph tags become newlines, every other
// tag is stripped. Runs of three or more newlines collapse to two.
// Idempotent once no tags remain.
func ToPlain(text string) string {
	text = anchorRe.ReplaceAllString(text, "$2 ($1)")
	text = brRe.ReplaceAllString(text, "\n")
	text = pCloseRe.ReplaceAllString(text, "\n\n")
	text = pOpenRe.ReplaceAllString(text, "")
	text = inlineTagRe.ReplaceAllString(text, "")
	text = anyTagRe.ReplaceAllString(text, "")
	text = newlinesRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// StripHeaders removes markdown heading markers ("# ", "## ", ...) at the
// start of lines. Headings render as noise in Telegram messages.
func StripHeaders(text string) string {
	return headerRe.ReplaceAllString(text, "")
}
