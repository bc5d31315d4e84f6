package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/tagsy/tagsy-backend/internal/app/repository"
	"github.com/tagsy/tagsy-backend/internal/storage"
	"github.com/tagsy/tagsy-backend/pkg/logger"
	"github.com/xuri/excelize/v2"
)

// Export formats for the all-tenants maintenance dump
const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"
)

var exportHeader = []string{"Server ID", "Tag", "Content", "Created By", "Created At", "Usage Count"}

const exportTimeFormat = "2006-01-02 15:04:05"

// ExportService renders the full cross-tenant dump. It is maintenance
// tooling; nothing in the normal command flow calls it.
type ExportService interface {
	WriteCSV(w io.Writer) (int, error)
	WriteXLSX(w io.Writer) (int, error)
	Archive(ctx context.Context, format string) (string, error)
}

type exportService struct {
	tagRepo repository.TagRepository
	archive *storage.S3Storage // nil disables archival
}

func NewExportService(tagRepo repository.TagRepository, archive *storage.S3Storage) ExportService {
	return &exportService{
		tagRepo: tagRepo,
		archive: archive,
	}
}

// WriteCSV streams every tag across every server as CSV rows and returns the
// number of data rows written.
func (s *exportService) WriteCSV(w io.Writer) (int, error) {
	tags, err := s.tagRepo.FindAllTenants()
	if err != nil {
		return 0, err
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return 0, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, tag := range tags {
		row := []string{
			tag.ServerID,
			tag.Tag,
			tag.Content,
			tag.CreatedBy,
			tag.CreatedAt.Format(exportTimeFormat),
			strconv.Itoa(tag.UsageCount),
		}
		if err := writer.Write(row); err != nil {
			return 0, fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush csv: %w", err)
	}

	logger.Info("CSV export written", map[string]interface{}{
		"rows": len(tags),
	})
	return len(tags), nil
}

// WriteXLSX renders the same dump as a single-sheet workbook
func (s *exportService) WriteXLSX(w io.Writer) (int, error) {
	tags, err := s.tagRepo.FindAllTenants()
	if err != nil {
		return 0, err
	}

	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)
	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, title); err != nil {
			return 0, fmt.Errorf("failed to write xlsx header: %w", err)
		}
	}

	for i, tag := range tags {
		values := []interface{}{
			tag.ServerID,
			tag.Tag,
			tag.Content,
			tag.CreatedBy,
			tag.CreatedAt.Format(exportTimeFormat),
			tag.UsageCount,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return 0, fmt.Errorf("failed to write xlsx row: %w", err)
			}
		}
	}

	if err := file.Write(w); err != nil {
		return 0, fmt.Errorf("failed to write xlsx: %w", err)
	}

	logger.Info("XLSX export written", map[string]interface{}{
		"rows": len(tags),
	})
	return len(tags), nil
}

// Archive builds an export in the given format and uploads it to S3,
// returning the object URL.
func (s *exportService) Archive(ctx context.Context, format string) (string, error) {
	if s.archive == nil {
		return "", fmt.Errorf("export archival is not configured")
	}

	var buf bytes.Buffer
	var contentType string
	var err error

	switch format {
	case ExportFormatXLSX:
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		_, err = s.WriteXLSX(&buf)
	case ExportFormatCSV:
		contentType = "text/csv"
		_, err = s.WriteCSV(&buf)
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("exports/%s-%s.%s", time.Now().UTC().Format("20060102T150405"), uuid.New().String(), format)
	url, err := s.archive.Upload(ctx, key, contentType, &buf)
	if err != nil {
		logger.Error("Failed to archive export", err, map[string]interface{}{
			"format": format,
			"key":    key,
		})
		return "", err
	}

	logger.Info("Export archived", map[string]interface{}{
		"format": format,
		"key":    key,
	})
	return url, nil
}
