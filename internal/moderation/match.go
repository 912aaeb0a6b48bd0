// Package moderation decides whether incoming question text should be muted, using the
// receiver's blocked words and the global muted-words dictionary.
package moderation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MatchOptions selects which checks MatchMutedDictionary runs.
type MatchOptions struct {
	// MatchBlocked runs the receiver's blocked words against the texts.
	MatchBlocked bool
	// MatchGlobalDictionary runs every token against the muted-words dictionary.
	MatchGlobalDictionary bool
}

const (
	wordStart = `(?:^|[^\p{L}\p{N}_])`
	wordEnd   = `(?:$|[^\p{L}\p{N}_])`
)

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// BlockedWordsPattern compiles words into a case-insensitive whole-word alternation.
// A word must not touch another letter, digit or underscore on a side where it itself
// ends in one; a side ending in punctuation or space needs no boundary. RE2's \b only
// knows ASCII word characters. Returns nil for an empty list.
func BlockedWordsPattern(words []string) *regexp.Regexp {
	alts := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		first, _ := utf8.DecodeRuneInString(w)
		last, _ := utf8.DecodeLastRuneInString(w)

		alt := regexp.QuoteMeta(w)
		if isWordRune(first) {
			alt = wordStart + alt
		}
		if isWordRune(last) {
			alt += wordEnd
		}
		alts = append(alts, alt)
	}
	if len(alts) == 0 {
		return nil
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(alts, "|") + `)`)
}

// MatchBlockedWords reports whether any text contains one of words as a whole word,
// ignoring case. An empty word list never matches.
func MatchBlockedWords(texts []string, words []string) bool {
	pattern := BlockedWordsPattern(words)
	if pattern == nil {
		return false
	}
	for _, text := range texts {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

// Tokenize splits text on Unicode punctuation and whitespace, dropping empty tokens.
func Tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
}

// MatchMutedDictionary runs the checks enabled by opts. Either check matching is enough.
func MatchMutedDictionary(texts []string, opts MatchOptions, blockedWords []string, dict *Dictionary) bool {
	if opts.MatchGlobalDictionary && dict != nil {
		for _, text := range texts {
			for _, token := range Tokenize(text) {
				if dict.MatchWord(token) {
					return true
				}
			}
		}
	}
	if opts.MatchBlocked {
		return MatchBlockedWords(texts, blockedWords)
	}
	return false
}
