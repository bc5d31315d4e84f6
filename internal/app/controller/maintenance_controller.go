package controller

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tagsy/tagsy-backend/internal/app/service"
	apperrors "github.com/tagsy/tagsy-backend/internal/errors"
	"github.com/tagsy/tagsy-backend/internal/middleware"
)

// MaintenanceController serves the owner-only export surface
type MaintenanceController struct {
	exportService service.ExportService
}

func NewMaintenanceController(exportService service.ExportService) *MaintenanceController {
	return &MaintenanceController{
		exportService: exportService,
	}
}

type ArchiveRequest struct {
	Format string `json:"format" binding:"required,oneof=csv xlsx"`
}

// Export streams the all-tenants dump
// GET /api/v1/maintenance/export?format=csv|xlsx
func (ctrl *MaintenanceController) Export(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	format := c.DefaultQuery("format", service.ExportFormatCSV)

	filename := fmt.Sprintf("tags_dump_%s.%s", time.Now().UTC().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename=%q`, filename))

	var rows int
	var err error
	switch format {
	case service.ExportFormatCSV:
		c.Header("Content-Type", "text/csv")
		rows, err = ctrl.exportService.WriteCSV(c.Writer)
	case service.ExportFormatXLSX:
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		rows, err = ctrl.exportService.WriteXLSX(c.Writer)
	default:
		apperrors.BadRequest(c, apperrors.ExportInvalidFormat, fmt.Sprintf("unknown export format %q", format))
		return
	}

	if err != nil {
		log.Error("Export failed", err, map[string]interface{}{
			"format": format,
		})
		// Headers may already be out; all we can do is abort the stream.
		c.Abort()
		return
	}

	log.Info("Export streamed", map[string]interface{}{
		"format": format,
		"rows":   rows,
	})
}

// Archive builds an export and uploads it to the configured bucket
// POST /api/v1/maintenance/export/archive
func (ctrl *MaintenanceController) Archive(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req ArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, err.Error())
		return
	}

	url, err := ctrl.exportService.Archive(c.Request.Context(), req.Format)
	if err != nil {
		log.Error("Export archival failed", err, map[string]interface{}{
			"format": req.Format,
		})
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.ExportArchiveFailed, err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url": url,
	})
}
