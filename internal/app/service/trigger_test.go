package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tagsy/tagsy-backend/config"
)

func newTestScanner(t *testing.T, cfg *config.TriggerConfig) (*TriggerScanner, TagService) {
	_, svc := setupServiceTest(t)
	return NewTriggerScanner(svc, cfg), svc
}

func TestTriggerScanner_Extract(t *testing.T) {
	scanner, _ := newTestScanner(t, &config.TriggerConfig{
		Prefix:       "%",
		MinTagLength: 3,
	})

	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "Marker mid-sentence",
			text: "check %greet please",
			want: "greet",
		},
		{
			name: "Marker at start",
			text: "%greet",
			want: "greet",
		},
		{
			name: "Hyphenated token",
			text: "see %server-rules for details",
			want: "server-rules",
		},
		{
			name: "First of several tokens",
			text: "%first then %second",
			want: "first",
		},
		{
			name: "Token below minimum length",
			text: "50%no chance",
			want: "",
		},
		{
			name: "No marker",
			text: "just a normal message",
			want: "",
		},
		{
			name: "Marker with nothing after it",
			text: "100% done",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, scanner.Extract(tt.text))
		})
	}
}

func TestTriggerScanner_Extract_UnicodePrefix(t *testing.T) {
	scanner, _ := newTestScanner(t, &config.TriggerConfig{
		Prefix:       "§",
		MinTagLength: 3,
	})

	assert.Equal(t, "greet", scanner.Extract("see §greet"))
	assert.Equal(t, "", scanner.Extract("see %greet"))
}

func TestTriggerScanner_ScanAndResolve(t *testing.T) {
	scanner, svc := newTestScanner(t, &config.TriggerConfig{
		Prefix:       "%",
		MinTagLength: 3,
	})
	ctx := context.Background()

	_, err := svc.Add(ctx, "server-1", "greet", "hi there", "user-1")
	require.NoError(t, err)

	t.Run("Resolves like an explicit get", func(t *testing.T) {
		outcome, err := scanner.ScanAndResolve(ctx, "server-1", false, "check %greet please")
		require.NoError(t, err)
		require.NotNil(t, outcome)
		assert.Equal(t, OutcomeFound, outcome.Status)
		assert.Equal(t, "hi there", outcome.Record.Content)
	})

	t.Run("Unknown token resolves to a miss", func(t *testing.T) {
		outcome, err := scanner.ScanAndResolve(ctx, "server-1", false, "check %gree")
		require.NoError(t, err)
		require.NotNil(t, outcome)
		assert.Equal(t, OutcomeNotFoundSuggest, outcome.Status)
		assert.Contains(t, outcome.Suggestions, "greet")
	})

	t.Run("Bot author is ignored", func(t *testing.T) {
		outcome, err := scanner.ScanAndResolve(ctx, "server-1", true, "check %greet please")
		require.NoError(t, err)
		assert.Nil(t, outcome)
	})

	t.Run("No token is a no-op", func(t *testing.T) {
		outcome, err := scanner.ScanAndResolve(ctx, "server-1", false, "nothing to see")
		require.NoError(t, err)
		assert.Nil(t, outcome)
	})

	t.Run("Empty message is a no-op", func(t *testing.T) {
		outcome, err := scanner.ScanAndResolve(ctx, "server-1", false, "")
		require.NoError(t, err)
		assert.Nil(t, outcome)
	})
}

func TestTriggerScanner_RichOutput(t *testing.T) {
	scanner, _ := newTestScanner(t, &config.TriggerConfig{
		Prefix:       "%",
		MinTagLength: 3,
		RichOutput:   true,
	})
	assert.True(t, scanner.RichOutput())
}
