package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("WritesToWriter", func(t *testing.T) {
		var buf bytes.Buffer
		lg := NewLogger(WithQuiet(), WithWriter(&buf))
		lg.Info("hello", "key", "value")
		assert.Contains(t, buf.String(), "hello")
		assert.Contains(t, buf.String(), "key=value")
	})
	t.Run("JSONFormat", func(t *testing.T) {
		var buf bytes.Buffer
		lg := NewLogger(WithQuiet(), WithWriter(&buf), WithFormat("json"))
		lg.Info("hello")
		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "hello", line["msg"])
	})
	t.Run("DebugSuppressedByDefault", func(t *testing.T) {
		var buf bytes.Buffer
		lg := NewLogger(WithQuiet(), WithWriter(&buf))
		lg.Debug("invisible")
		assert.Empty(t, buf.String())
	})
	t.Run("WithAttrs", func(t *testing.T) {
		var buf bytes.Buffer
		lg := NewLogger(WithQuiet(), WithWriter(&buf)).With("session", "abc")
		lg.Info("tagged")
		assert.Contains(t, buf.String(), "session=abc")
	})
}

func TestContext(t *testing.T) {
	var buf bytes.Buffer
	lg := NewLogger(WithQuiet(), WithWriter(&buf))
	ctx := WithLogger(context.Background(), lg)
	FromContext(ctx).Info("from context")
	assert.Contains(t, buf.String(), "from context")

	assert.NotNil(t, FromContext(context.Background()))
}
