package moderation

import (
	"context"
	"errors"
	"fmt"
)

// DictionarySource provides the active muted-words dictionary.
type DictionarySource interface {
	Current() *Dictionary
}

// Engine matches question text on the worker pool against the active dictionary.
type Engine struct {
	pool       *Pool
	dictionary DictionarySource
}

// NewEngine creates an Engine.
func NewEngine(pool *Pool, dictionary DictionarySource) *Engine {
	return &Engine{pool: pool, dictionary: dictionary}
}

// Match reports whether texts should be muted for a receiver with blockedWords.
//
// When the decision cannot be made the result is true together with an error wrapping
// ErrModerationUnavailable, so callers that ignore the error still mute.
func (e *Engine) Match(ctx context.Context, texts []string, blockedWords []string, opts MatchOptions) (bool, error) {
	if !opts.MatchBlocked && !opts.MatchGlobalDictionary {
		return false, nil
	}

	dict := e.dictionary.Current()

	var matched bool
	err := e.pool.Do(ctx, func() {
		matched = MatchMutedDictionary(texts, opts, blockedWords, dict)
	})
	if err != nil {
		if !errors.Is(err, ErrModerationUnavailable) {
			err = fmt.Errorf("%w: %w", ErrModerationUnavailable, err)
		}
		return true, err
	}
	return matched, nil
}
