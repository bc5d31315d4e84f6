package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/tagsy/tagsy-backend/internal/app/service"
	"github.com/tagsy/tagsy-backend/pkg/logger"
)

// Event types on the gateway stream
const (
	EventMessageCreate = "message_create"
	EventTriggerResult = "trigger_result"
	EventError         = "error"
)

// GatewayEvent is what a shard pushes for every chat message it sees
type GatewayEvent struct {
	Type        string `json:"type"`
	ServerID    string `json:"server_id"`
	ChannelID   string `json:"channel_id,omitempty"`
	AuthorIsBot bool   `json:"author_is_bot"`
	Content     string `json:"content"`
}

// TriggerResult is pushed back when a message contained a resolvable trigger
type TriggerResult struct {
	Type      string           `json:"type"`
	ServerID  string           `json:"server_id"`
	ChannelID string           `json:"channel_id,omitempty"`
	Render    string           `json:"render"` // "plain" or "rich"
	Outcome   *service.Outcome `json:"outcome"`
}

// Hub tracks connected gateway shards and runs trigger resolution for the
// message events they push.
type Hub struct {
	scanner *service.TriggerScanner

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex
}

func NewHub(scanner *service.TriggerScanner) *Hub {
	return &Hub{
		scanner:    scanner,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
	}
}

// Run owns the client set. Start once at boot.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			logger.Info("Gateway shard connected", map[string]interface{}{
				"shard_id": client.ShardID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			logger.Info("Gateway shard disconnected", map[string]interface{}{
				"shard_id": client.ShardID,
			})
		}
	}
}

// handleEvent resolves one pushed gateway event and queues the reply, if any
func (h *Hub) handleEvent(ctx context.Context, client *Client, raw []byte) {
	var event GatewayEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		logger.Warn("Malformed gateway event", map[string]interface{}{
			"shard_id": client.ShardID,
			"error":    err.Error(),
		})
		return
	}

	if event.Type != EventMessageCreate {
		return
	}

	outcome, err := h.scanner.ScanAndResolve(ctx, event.ServerID, event.AuthorIsBot, event.Content)
	if err != nil {
		logger.Error("Trigger resolution failed on gateway stream", err, map[string]interface{}{
			"shard_id":  client.ShardID,
			"server_id": event.ServerID,
		})
		client.queue(&TriggerResult{
			Type:      EventError,
			ServerID:  event.ServerID,
			ChannelID: event.ChannelID,
		})
		return
	}
	if outcome == nil {
		return
	}

	render := "plain"
	if h.scanner.RichOutput() {
		render = "rich"
	}
	client.queue(&TriggerResult{
		Type:      EventTriggerResult,
		ServerID:  event.ServerID,
		ChannelID: event.ChannelID,
		Render:    render,
		Outcome:   outcome,
	})
}
