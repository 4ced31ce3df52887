// Package report writes the artifacts of a run: summary tables, the
// uncategorized list, the run report and the console rendering.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"fjacquet/txn-categorizer/internal/fileutils"
	"fjacquet/txn-categorizer/internal/logging"
	"fjacquet/txn-categorizer/internal/models"

	"gopkg.in/yaml.v3"
)

// ReportGenerator renders run reports in YAML or JSON.
type ReportGenerator struct {
	logger logging.Logger
}

// NewReportGenerator creates a new instance of ReportGenerator.
func NewReportGenerator(logger logging.Logger) *ReportGenerator {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &ReportGenerator{logger: logger.WithField(logging.FieldComponent, "report")}
}

// GenerateReport renders report as "yaml" or "json".
func (g *ReportGenerator) GenerateReport(report *models.RunReport, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return g.generateYAMLReport(report)
	case "json":
		return g.generateJSONReport(report)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *ReportGenerator) generateYAMLReport(report *models.RunReport) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		g.logger.WithError(err).Error("Failed to marshal YAML report")
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *ReportGenerator) generateJSONReport(report *models.RunReport) ([]byte, error) {
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return append(out, '\n'), nil
}

// WriteRunReport writes report to path, picking the format from the extension.
func (g *ReportGenerator) WriteRunReport(path string, report *models.RunReport) error {
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	data, err := g.GenerateReport(report, format)
	if err != nil {
		return err
	}
	if err := fileutils.WriteFileAtomic(path, data, models.PermissionDataFile); err != nil {
		return fmt.Errorf("report: write %s: %w", path, err)
	}
	g.logger.Info("Wrote run report", logging.Field{Key: logging.FieldFile, Value: path})
	return nil
}
