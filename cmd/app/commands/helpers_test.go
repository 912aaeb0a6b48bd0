package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinter(t *testing.T) {
	fields := map[string]any{"slug": "alice", "sessions": 2}

	t.Run("text", func(t *testing.T) {
		var buf bytes.Buffer
		p, err := newPrinter(&buf, "text")
		require.NoError(t, err)

		require.NoError(t, p.print(fields, "deleted %d for %s\n", 2, "alice"))
		assert.Equal(t, "deleted 2 for alice\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		p, err := newPrinter(&buf, "json")
		require.NoError(t, err)

		require.NoError(t, p.print(fields, "ignored %d\n", 1))
		var got map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, "alice", got["slug"])
		assert.InDelta(t, 2, got["sessions"], 0)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := newPrinter(&bytes.Buffer{}, "yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid format: yaml")
	})
}
