// Package postprocess tidies raw model output before it reaches users.
//
// CleanNMT handles sequence-to-sequence models, which leak special tokens.
// CleanLLM handles chat models, which wrap the translation in reasoning
// blocks, preambles and quotes.
package postprocess

import (
	"regexp"
	"strings"
)

var (
	// special tokens emitted by Marian / NLLB / M2M tokenizers
	specialTokenRe = regexp.MustCompile(`</?s>|<pad>|<unk>|__[a-z]{2,3}(?:_[A-Za-z]{4})?__|\b[a-z]{3}_[A-Z][a-z]{3}\b`)

	horizontalSpaceRe = regexp.MustCompile(`[ \t]+`)
)

// CleanNMT strips tokenizer artifacts and collapses runs of spaces while
// keeping line breaks.
func CleanNMT(text string) string {
	text = specialTokenRe.ReplaceAllString(text, "")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(horizontalSpaceRe.ReplaceAllString(l, " "))
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// CleanLLM removes reasoning blocks, instruction echoes and wrapping quotes.
func CleanLLM(text string) string {
	text = removeThinkingBlocks(text)
	text = removeInstructionEchoes(text)
	text = removeQuoteWrapping(text)
	return strings.TrimSpace(text)
}

// RE2 has no backreferences, so each tag pair is spelled out.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>`,
)

// an opened block whose closing tag never came
var truncatedThinkingRe = regexp.MustCompile(`(?is)(?:<thinking>|<think>|<reasoning>).*$`)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Anchored at the start and requiring a colon, so real content that merely
// mentions a translation survives.
var echoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:(?:certainly|sure|of course)[,.!]?\s+)?here(?:'s| is)(?: the| your)? (?:\w+ )?(?:translation|translated text|text)(?: in \w+)?\s*:`),
	regexp.MustCompile(`(?i)^(?:the )?(?:\w+ )?(?:translation|translated text)(?: in \w+)?\s*:`),
}

func removeInstructionEchoes(text string) string {
	for _, re := range echoPatterns {
		if loc := re.FindStringIndex(text); loc != nil {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

var quotePairs = map[rune]rune{
	'"':      '"',
	'\'':     '\'',
	'\u00AB': '\u00BB', // « »
	'\u201C': '\u201D', // “ ”
	'\u2018': '\u2019', // ‘ ’
	'\u300C': '\u300D', // 「 」
}

func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	if closing, ok := quotePairs[runes[0]]; ok && runes[n-1] == closing {
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}
