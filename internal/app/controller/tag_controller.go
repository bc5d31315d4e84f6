package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tagsy/tagsy-backend/internal/app/service"
	apperrors "github.com/tagsy/tagsy-backend/internal/errors"
	"github.com/tagsy/tagsy-backend/internal/middleware"
)

// TagController is the HTTP face of the resolution service. It translates
// outcomes to statuses and nothing else; tag semantics live in the service.
type TagController struct {
	tagService service.TagService
}

func NewTagController(tagService service.TagService) *TagController {
	return &TagController{
		tagService: tagService,
	}
}

// The 3-50 and 1024 bounds are adapter-level input limits, mirroring the
// original input dialog; the store itself only enforces uniqueness.
type AddTagRequest struct {
	Tag     string `json:"tag" binding:"required,min=3,max=50"`
	Content string `json:"content" binding:"required,max=1024"`
	ActorID string `json:"actor_id" binding:"required"`
}

type UpdateTagRequest struct {
	Content string `json:"content" binding:"required,max=1024"`
}

type CommitRequest struct {
	Tag     string `json:"tag" binding:"required,min=3,max=50"`
	Content string `json:"content" binding:"required,max=1024"`
	Action  string `json:"action" binding:"required,oneof=add update"`
	ActorID string `json:"actor_id" binding:"required"`
}

// outcomeStatusCode maps an outcome tag onto an HTTP status
func outcomeStatusCode(outcome *service.Outcome) int {
	switch outcome.Status {
	case service.OutcomeCreated:
		return http.StatusCreated
	case service.OutcomeAlreadyExists:
		return http.StatusConflict
	case service.OutcomeNotFound, service.OutcomeNotFoundSuggest:
		return http.StatusNotFound
	case service.OutcomePermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusOK
	}
}

// AddTag creates a tag
// POST /api/v1/servers/:server_id/tags
func (ctrl *TagController) AddTag(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	serverID := c.Param("server_id")

	var req AddTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add tag request", map[string]interface{}{
			"server_id": serverID,
			"error":     err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	outcome, err := ctrl.tagService.Add(c.Request.Context(), serverID, req.Tag, req.Content, req.ActorID)
	if err != nil {
		log.Error("Failed to add tag", err, map[string]interface{}{
			"server_id": serverID,
			"tag":       req.Tag,
		})
		apperrors.StorageError(c, err)
		return
	}

	c.JSON(outcomeStatusCode(outcome), outcome)
}

// GetTag resolves a tag and counts the use
// GET /api/v1/servers/:server_id/tags/:tag
func (ctrl *TagController) GetTag(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	serverID := c.Param("server_id")
	name := c.Param("tag")

	outcome, err := ctrl.tagService.Get(c.Request.Context(), serverID, name)
	if err != nil {
		log.Error("Failed to get tag", err, map[string]interface{}{
			"server_id": serverID,
			"tag":       name,
		})
		apperrors.StorageError(c, err)
		return
	}

	c.JSON(outcomeStatusCode(outcome), outcome)
}

// ListTags returns every tag for one server
// GET /api/v1/servers/:server_id/tags
func (ctrl *TagController) ListTags(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	serverID := c.Param("server_id")

	tags, err := ctrl.tagService.ListAll(serverID)
	if err != nil {
		log.Error("Failed to list tags", err, map[string]interface{}{
			"server_id": serverID,
		})
		apperrors.StorageError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tags":  tags,
		"count": len(tags),
	})
}

// UpdateTag replaces a tag's content
// PUT /api/v1/servers/:server_id/tags/:tag
func (ctrl *TagController) UpdateTag(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	serverID := c.Param("server_id")
	name := c.Param("tag")

	var req UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid update tag request", map[string]interface{}{
			"server_id": serverID,
			"tag":       name,
			"error":     err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	outcome, err := ctrl.tagService.Update(c.Request.Context(), serverID, name, req.Content)
	if err != nil {
		log.Error("Failed to update tag", err, map[string]interface{}{
			"server_id": serverID,
			"tag":       name,
		})
		apperrors.StorageError(c, err)
		return
	}

	c.JSON(outcomeStatusCode(outcome), outcome)
}

// RemoveTag deletes a tag. The gateway reports whether the acting member
// holds the manage-messages permission on that server.
// DELETE /api/v1/servers/:server_id/tags/:tag?can_manage_messages=true
func (ctrl *TagController) RemoveTag(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	serverID := c.Param("server_id")
	name := c.Param("tag")

	canManage, _ := strconv.ParseBool(c.DefaultQuery("can_manage_messages", "false"))

	outcome, err := ctrl.tagService.Remove(c.Request.Context(), serverID, name, canManage)
	if err != nil {
		log.Error("Failed to remove tag", err, map[string]interface{}{
			"server_id": serverID,
			"tag":       name,
		})
		apperrors.StorageError(c, err)
		return
	}

	c.JSON(outcomeStatusCode(outcome), outcome)
}

// ResetTag resets a tag's usage counter
// POST /api/v1/servers/:server_id/tags/:tag/reset
func (ctrl *TagController) ResetTag(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	serverID := c.Param("server_id")
	name := c.Param("tag")

	outcome, err := ctrl.tagService.Reset(c.Request.Context(), serverID, name)
	if err != nil {
		log.Error("Failed to reset tag", err, map[string]interface{}{
			"server_id": serverID,
			"tag":       name,
		})
		apperrors.StorageError(c, err)
		return
	}

	c.JSON(outcomeStatusCode(outcome), outcome)
}

// CommitTag is called when the adapter's confirmation dialog resolves
// POST /api/v1/servers/:server_id/tags/commit
func (ctrl *TagController) CommitTag(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	serverID := c.Param("server_id")

	var req CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid commit request", map[string]interface{}{
			"server_id": serverID,
			"error":     err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	outcome, err := ctrl.tagService.Commit(c.Request.Context(), serverID, req.Tag, req.Content, req.Action, req.ActorID)
	if err != nil {
		log.Error("Failed to commit tag", err, map[string]interface{}{
			"server_id": serverID,
			"tag":       req.Tag,
			"action":    req.Action,
		})
		apperrors.StorageError(c, err)
		return
	}

	c.JSON(outcomeStatusCode(outcome), outcome)
}
