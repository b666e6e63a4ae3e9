// Package placeholder shields spans that translation models tend to mangle
// (URLs, e-mail addresses, HTML tags) by swapping them for numbered markers
// ([PH0], [PH1], ...) before inference and restoring them afterwards.
//
// Bracketed template fields such as [Date] are not touched.
package placeholder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	reURL     = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"]+[^\s<>".,;:!?)\]]`)
	reEmail   = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	reHTMLTag = regexp.MustCompile(`</?[A-Za-z][^<>]*>`)
	reMarker  = regexp.MustCompile(`\[\s*PH\s*(\d+)\s*\]`)
)

// Protect replaces protected spans with markers in order of appearance and
// returns the captured originals.
func Protect(text string) (string, []string) {
	var originals []string

	replace := func(match string) string {
		id := fmt.Sprintf("[PH%d]", len(originals))
		originals = append(originals, match)
		return id
	}

	// text that already looks like a marker is shielded too, so Restore
	// gives it back verbatim
	text = reMarker.ReplaceAllStringFunc(text, replace)
	// URLs before e-mails so user@host inside a URL stays with the URL
	text = reURL.ReplaceAllStringFunc(text, replace)
	text = reEmail.ReplaceAllStringFunc(text, replace)
	text = reHTMLTag.ReplaceAllStringFunc(text, replace)

	return text, originals
}

// Restore puts the originals back. Models sometimes add spaces inside the
// brackets ([ PH0 ]), which is tolerated. Originals whose marker was dropped
// are appended at the end so no link or address is lost.
func Restore(text string, originals []string) string {
	if len(originals) == 0 {
		return text
	}

	seen := make([]bool, len(originals))
	text = reMarker.ReplaceAllStringFunc(text, func(match string) string {
		sub := reMarker.FindStringSubmatch(match)
		idx, err := strconv.Atoi(sub[1])
		if err != nil || idx < 0 || idx >= len(originals) {
			return match
		}
		seen[idx] = true
		return originals[idx]
	})

	var missing []string
	for i, ok := range seen {
		if !ok {
			missing = append(missing, originals[i])
		}
	}
	if len(missing) > 0 {
		text = strings.TrimRight(text, " ") + " " + strings.Join(missing, " ")
	}
	return text
}
