package main

import (
	"flag"
	"os"

	"github.com/tagsy/tagsy-backend/config"
	"github.com/tagsy/tagsy-backend/internal/app/repository"
	"github.com/tagsy/tagsy-backend/internal/app/service"
	"github.com/tagsy/tagsy-backend/internal/db"
	"github.com/tagsy/tagsy-backend/pkg/logger"
)

// Owner-side dump tool: writes the full cross-tenant tag dump to a file or
// stdout, without going through the HTTP surface.
func main() {
	format := flag.String("format", service.ExportFormatCSV, "export format: csv or xlsx")
	out := flag.String("out", "", "output file (default stdout)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logger.Initialize(logger.Config{
		Level:  "warn",
		Format: "console",
	})

	database, err := db.Initialize(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer db.Close(database)

	tagRepo := repository.NewTagRepository(database)
	exportService := service.NewExportService(tagRepo, nil)

	var w *os.File = os.Stdout
	if *out != "" {
		w, err = os.Create(*out)
		if err != nil {
			logger.Fatal("Failed to create output file", err, map[string]interface{}{
				"path": *out,
			})
		}
		defer w.Close()
	}

	var rows int
	switch *format {
	case service.ExportFormatXLSX:
		rows, err = exportService.WriteXLSX(w)
	case service.ExportFormatCSV:
		rows, err = exportService.WriteCSV(w)
	default:
		logger.Fatal("Unknown export format", nil, map[string]interface{}{
			"format": *format,
		})
	}
	if err != nil {
		logger.Fatal("Export failed", err)
	}

	logger.Warn("Export complete", map[string]interface{}{
		"format": *format,
		"rows":   rows,
	})
}
