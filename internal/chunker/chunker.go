// Package chunker splits input that is too long for a model's window into
// pieces that end on paragraph, sentence or word boundaries, and puts the
// translated pieces back together with the original separators.
package chunker

import (
	"strings"
	"unicode"
)

// DefaultMaxChars keeps a piece comfortably below a 512 token window.
const DefaultMaxChars = 900

// Piece is one unit of text sent to a model. Sep is the separator that
// followed it in the original ("\n\n" for paragraph breaks, "\n" or " "
// otherwise, "" for the last piece).
type Piece struct {
	Text string
	Sep  string
}

// Split breaks text into pieces of at most maxChars runes. Preferred split
// points, in order: blank line, line break, sentence end, whitespace, hard cut.
// maxChars <= 0 disables splitting.
func Split(text string, maxChars int) []Piece {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if maxChars <= 0 {
		return []Piece{{Text: text}}
	}

	var pieces []Piece
	remaining := []rune(text)

	for len(remaining) > maxChars {
		cut, sep := findSplit(remaining, maxChars)
		chunk := strings.TrimSpace(string(remaining[:cut]))
		remaining = []rune(strings.TrimLeftFunc(string(remaining[cut:]), unicode.IsSpace))
		if chunk == "" {
			continue
		}
		pieces = append(pieces, Piece{Text: chunk, Sep: sep})
	}

	if rest := strings.TrimSpace(string(remaining)); rest != "" {
		pieces = append(pieces, Piece{Text: rest})
	}
	return pieces
}

// findSplit returns the rune index to cut at and the separator to restore.
func findSplit(runes []rune, maxChars int) (int, string) {
	window := runes[:maxChars]

	// 1. paragraph, 2. line break
	for i := len(window) - 1; i > 0; i-- {
		if window[i] == '\n' && window[i-1] == '\n' {
			return i + 1, "\n\n"
		}
	}
	for i := len(window) - 1; i > 0; i-- {
		if window[i] == '\n' {
			return i + 1, "\n"
		}
	}

	// 3. sentence end followed by whitespace (looks one rune past the window)
	for i := len(window) - 1; i > 0; i-- {
		if isSentenceEnd(window[i]) && i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
			return i + 1, " "
		}
	}

	// 4. word boundary
	for i := len(window) - 1; i > 0; i-- {
		if unicode.IsSpace(window[i]) {
			return i, " "
		}
	}

	// 5. hard cut; scripts without spaces (zh, ja) land here
	return maxChars, ""
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '。', '！', '？', '؟', '।':
		return true
	}
	return false
}

// Join reassembles translated pieces using the separators recorded by Split.
// outputs must be index-aligned with pieces.
func Join(pieces []Piece, outputs []string) string {
	var sb strings.Builder
	for i, out := range outputs {
		if i > 0 && i-1 < len(pieces) {
			sb.WriteString(pieces[i-1].Sep)
		}
		sb.WriteString(strings.TrimSpace(out))
	}
	return sb.String()
}
