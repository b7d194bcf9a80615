package markup

import (
	"strings"
	"unicode"
)

// Split breaks text into ordered chunks of at most maxLength runes each,
// preferring paragraph boundaries, then sentence boundaries. A single
// sentence longer than maxLength is hard-cut into maxLength slices, which is
// lossy on word boundaries. Rejoining the chunks with their original
// separators reconstructs the text.
func Split(text string, maxLength int) []string {
	if runeLen(text) <= maxLength {
		return []string{text}
	}

	var parts []string
	current := ""

	for _, paragraph := range strings.Split(text, "\n") {
		if runeLen(paragraph) > maxLength {
			for _, sent := range splitSentences(paragraph) {
				if sent == "" {
					continue
				}
				for runeLen(sent) > maxLength {
					if current != "" {
						parts = append(parts, current)
						current = ""
					}
					runes := []rune(sent)
					parts = append(parts, string(runes[:maxLength]))
					sent = string(runes[maxLength:])
				}
				if runeLen(current)+runeLen(sent)+1 > maxLength {
					if current != "" {
						parts = append(parts, current)
					}
					current = sent
				} else {
					current = strings.TrimSpace(current + " " + sent)
				}
			}
			continue
		}

		addition := paragraph
		if current != "" {
			addition = "\n" + paragraph
		}
		if runeLen(current)+runeLen(addition) > maxLength {
			if current != "" {
				parts = append(parts, current)
			}
			current = paragraph
		} else {
			current += addition
		}
	}

	if current != "" {
		parts = append(parts, current)
	}
	return parts
}

// splitSentences splits a paragraph after '.', '!' or '?' followed by
// whitespace; the whitespace run between sentences is consumed.
func splitSentences(text string) []string {
	runes := []rune(text)
	var out []string
	start := 0
	i := 0
	for i < len(runes) {
		r := runes[i]
		if (r == '.' || r == '!' || r == '?') && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			out = append(out, string(runes[start:i+1]))
			i++
			for i < len(runes) && unicode.IsSpace(runes[i]) {
				i++
			}
			start = i
			continue
		}
		i++
	}
	if start < len(runes) {
		out = append(out, string(runes[start:]))
	}
	if len(out) == 0 {
		out = append(out, text)
	}
	return out
}

func runeLen(s string) int {
	return len([]rune(s))
}
