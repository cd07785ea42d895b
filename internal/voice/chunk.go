package voice

import "strings"

// Chunk splits text into pieces of at most size runes, preferring sentence
// boundaries and falling back to word boundaries for long sentences.
// A single word longer than size is kept whole.
func Chunk(text string, size int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}
	var chunks []string
	var cur strings.Builder
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			chunks = append(chunks, s)
		}
		cur.Reset()
	}
	add := func(piece string) {
		if cur.Len() > 0 && runeLen(cur.String())+1+runeLen(piece) > size {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(piece)
	}

	for _, sentence := range splitSentences(text) {
		if runeLen(sentence) <= size {
			add(sentence)
			continue
		}
		for _, w := range strings.Fields(sentence) {
			add(w)
		}
	}
	flush()
	return chunks
}

func splitSentences(text string) []string {
	parts := strings.Split(text, ". ")
	out := make([]string, 0, len(parts))
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if i < len(parts)-1 {
			p += "."
		}
		out = append(out, p)
	}
	return out
}

func runeLen(s string) int { return len([]rune(s)) }
