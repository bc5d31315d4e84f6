package service

import (
	"context"
	"regexp"

	"github.com/tagsy/tagsy-backend/config"
	"github.com/tagsy/tagsy-backend/pkg/logger"
)

// TriggerScanner inspects ordinary chat text for an embedded recall marker
// (e.g. "%greet" or "§greet") and resolves the first token it finds through
// the same path as an explicit get.
type TriggerScanner struct {
	tags       TagService
	pattern    *regexp.Regexp
	minLength  int
	richOutput bool
}

func NewTriggerScanner(tags TagService, cfg *config.TriggerConfig) *TriggerScanner {
	// Token grammar: one word character followed by word characters or
	// interior hyphens, immediately after the configured marker.
	pattern := regexp.MustCompile(regexp.QuoteMeta(cfg.Prefix) + `(\w[-\w]*)`)

	return &TriggerScanner{
		tags:       tags,
		pattern:    pattern,
		minLength:  cfg.MinTagLength,
		richOutput: cfg.RichOutput,
	}
}

// RichOutput reports whether matched triggers should be rendered as a full
// record rather than bare content. Rendering itself is the adapter's job.
func (t *TriggerScanner) RichOutput() bool {
	return t.richOutput
}

// Extract returns the first trigger token in the text, or "" when the text
// holds none worth resolving.
func (t *TriggerScanner) Extract(text string) string {
	match := t.pattern.FindStringSubmatch(text)
	if match == nil {
		return ""
	}
	token := match[1]
	if len(token) < t.minLength {
		return ""
	}
	return token
}

// ScanAndResolve runs on every chat message. Messages authored by the bot
// itself and messages without a qualifying token yield (nil, nil).
func (t *TriggerScanner) ScanAndResolve(ctx context.Context, serverID string, authorIsBot bool, text string) (*Outcome, error) {
	if authorIsBot || text == "" {
		return nil, nil
	}

	token := t.Extract(text)
	if token == "" {
		return nil, nil
	}

	logger.Debug("Trigger token found in message", map[string]interface{}{
		"server_id": serverID,
		"tag":       token,
	})
	return t.tags.Get(ctx, serverID, token)
}
