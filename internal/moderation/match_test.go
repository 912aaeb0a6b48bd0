package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchBlockedWords(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		words []string
		want  bool
	}{
		{"WholeWord", []string{"I love potato"}, []string{"potato"}, true},
		{"CaseInsensitive", []string{"I love POTATO"}, []string{"potato"}, true},
		{"NotAPrefix", []string{"I love POTATOES"}, []string{"potato"}, false},
		{"SecondText", []string{"nothing here", "but a potato"}, []string{"potato"}, true},
		{"RegexpMetaIsLiteral", []string{"a+b is fine"}, []string{"a+b"}, true},
		{"RegexpMetaNoWildcard", []string{"axb"}, []string{"a.b"}, false},
		{"EmptyList", []string{"anything"}, nil, false},
		{"AccentedLastLetter", []string{"j'adore le café"}, []string{"café"}, true},
		{"AccentedNotAPrefix", []string{"cafés et thés"}, []string{"café"}, false},
		{"Cyrillic", []string{"Привет, как дела?"}, []string{"привет"}, true},
		{"CyrillicInsideWord", []string{"приветствие"}, []string{"привет"}, false},
		{"UppercaseUmlaut", []string{"Ünter uns"}, []string{"ünter"}, true},
		{"LetterBeforeUmlaut", []string{"xünter uns"}, []string{"ünter"}, false},
		{"TrailingDot", []string{"ok."}, []string{"ok."}, true},
		{"TrailingDotMidSentence", []string{"it is ok. thanks"}, []string{"ok."}, true},
		{"TrailingDotNeedsLeadingBoundary", []string{"book."}, []string{"ok."}, false},
		{"TrailingHyphen", []string{"anti-vax"}, []string{"anti-"}, true},
		{"PhraseWithSpace", []string{"he is Mr. Robot!"}, []string{"mr. robot"}, true},
		{"Underscore", []string{"snake_case"}, []string{"snake"}, false},
		{"NoTexts", nil, []string{"potato"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchBlockedWords(tt.texts, tt.words))
		})
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"Hello", "world", "ça", "va"}, Tokenize("Hello, world!  ça va?"))
	assert.Empty(t, Tokenize(" ... "))
}

func TestMatchMutedDictionary(t *testing.T) {
	dict := NewDictionary([]string{"Spam"})

	tests := []struct {
		name    string
		texts   []string
		opts    MatchOptions
		blocked []string
		want    bool
	}{
		{
			name:  "DictionaryToken",
			texts: []string{"this is spam!"},
			opts:  MatchOptions{MatchGlobalDictionary: true},
			want:  true,
		},
		{
			name:  "DictionaryDisabled",
			texts: []string{"this is spam!"},
			opts:  MatchOptions{MatchBlocked: true},
			want:  false,
		},
		{
			name:    "BlockedOnly",
			texts:   []string{"pineapple pizza"},
			opts:    MatchOptions{MatchBlocked: true},
			blocked: []string{"pizza"},
			want:    true,
		},
		{
			name:    "BlockedIgnoredWhenDisabled",
			texts:   []string{"pineapple pizza"},
			opts:    MatchOptions{MatchGlobalDictionary: true},
			blocked: []string{"pizza"},
			want:    false,
		},
		{
			name:  "PollOptionMatches",
			texts: []string{"which one?", "spam", "eggs"},
			opts:  MatchOptions{MatchGlobalDictionary: true},
			want:  true,
		},
		{
			name:  "NothingEnabled",
			texts: []string{"spam"},
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchMutedDictionary(tt.texts, tt.opts, tt.blocked, dict))
		})
	}
}
