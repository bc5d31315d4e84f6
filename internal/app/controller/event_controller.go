package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tagsy/tagsy-backend/internal/app/service"
	apperrors "github.com/tagsy/tagsy-backend/internal/errors"
	"github.com/tagsy/tagsy-backend/internal/middleware"
)

// EventController receives chat message events from gateway shards and runs
// the inline trigger scan on them.
type EventController struct {
	scanner *service.TriggerScanner
}

func NewEventController(scanner *service.TriggerScanner) *EventController {
	return &EventController{
		scanner: scanner,
	}
}

type MessageEventRequest struct {
	ServerID    string `json:"server_id" binding:"required"`
	AuthorIsBot bool   `json:"author_is_bot"`
	Content     string `json:"content"`
}

type MessageEventResponse struct {
	Triggered bool             `json:"triggered"`
	Render    string           `json:"render,omitempty"` // "plain" or "rich"
	Outcome   *service.Outcome `json:"outcome,omitempty"`
}

// HandleMessage scans one chat message for an inline trigger
// POST /api/v1/events/message
func (ctrl *EventController) HandleMessage(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req MessageEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid message event", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	outcome, err := ctrl.scanner.ScanAndResolve(c.Request.Context(), req.ServerID, req.AuthorIsBot, req.Content)
	if err != nil {
		log.Error("Trigger resolution failed", err, map[string]interface{}{
			"server_id": req.ServerID,
		})
		apperrors.StorageError(c, err)
		return
	}

	if outcome == nil {
		c.JSON(http.StatusOK, MessageEventResponse{Triggered: false})
		return
	}

	render := "plain"
	if ctrl.scanner.RichOutput() {
		render = "rich"
	}
	c.JSON(http.StatusOK, MessageEventResponse{
		Triggered: true,
		Render:    render,
		Outcome:   outcome,
	})
}
