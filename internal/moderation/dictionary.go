package moderation

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	apperrors "github.com/questionit/api/internal/errors"
)

// Dictionary is an immutable set of muted words indexed by their first rune.
type Dictionary struct {
	index map[rune][][]rune
	size  int
}

// NewDictionary lowercases words and indexes them. Empty entries are skipped.
func NewDictionary(words []string) *Dictionary {
	d := &Dictionary{index: make(map[rune][][]rune)}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		runes := []rune(w)
		d.index[runes[0]] = append(d.index[runes[0]], runes[1:])
		d.size++
	}
	return d
}

// Len returns the number of entries.
func (d *Dictionary) Len() int {
	return d.size
}

// MatchWord reports whether token is a dictionary entry, ignoring case.
//
// The first rune selects the candidate entries. Each following rune of the token must be
// the next rune of a candidate for it to stay in the running; the token matches when a
// remaining candidate is exhausted exactly where the token ends.
func (d *Dictionary) MatchWord(token string) bool {
	if token == "" {
		return false
	}
	token = strings.ToLower(token)

	first, size := utf8.DecodeRuneInString(token)
	candidates := d.index[first]
	if len(candidates) == 0 {
		return false
	}

	pos := 0
	alive := make([][]rune, len(candidates))
	copy(alive, candidates)

	for _, r := range token[size:] {
		next := alive[:0]
		for _, rest := range alive {
			if pos < len(rest) && rest[pos] == r {
				next = append(next, rest)
			}
		}
		alive = next
		if len(alive) == 0 {
			return false
		}
		pos++
	}

	for _, rest := range alive {
		if len(rest) == pos {
			return true
		}
	}
	return false
}

type dictionaryFile struct {
	Words []string `json:"words" yaml:"words"`
}

// ParseDictionary decodes a {words: [...]} document. YAML is used for .yaml and .yml
// paths, JSON with comments otherwise.
func ParseDictionary(path string, data []byte) (*Dictionary, error) {
	var file dictionaryFile

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, apperrors.Wrap(err, "failed to parse muted words")
		}
	default:
		if err := json.Unmarshal(jsonc.ToJSON(data), &file); err != nil {
			return nil, apperrors.Wrap(err, "failed to parse muted words")
		}
	}
	return NewDictionary(file.Words), nil
}

// LoadDictionary reads and parses the dictionary at path.
func LoadDictionary(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-provided path
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read muted words")
	}
	return ParseDictionary(path, data)
}

// DictionaryHolder serves the current dictionary and replaces it wholesale on reload.
// Matches in flight keep the snapshot they started with.
type DictionaryHolder struct {
	path     string
	logger   *slog.Logger
	snapshot atomic.Pointer[Dictionary]
}

// NewDictionaryHolder creates a holder serving an empty dictionary until the first reload.
func NewDictionaryHolder(path string, logger *slog.Logger) *DictionaryHolder {
	h := &DictionaryHolder{path: path, logger: logger}
	h.snapshot.Store(NewDictionary(nil))
	return h
}

// Current returns the active dictionary.
func (h *DictionaryHolder) Current() *Dictionary {
	return h.snapshot.Load()
}

// Store replaces the active dictionary.
func (h *DictionaryHolder) Store(d *Dictionary) {
	h.snapshot.Store(d)
}

// Reload reads the dictionary file again. On failure the active dictionary is kept.
func (h *DictionaryHolder) Reload(_ context.Context) error {
	d, err := LoadDictionary(h.path)
	if err != nil {
		return err
	}
	h.Store(d)

	if h.logger != nil {
		h.logger.Info("muted words loaded", slog.Int("words", d.Len()))
	}
	return nil
}
