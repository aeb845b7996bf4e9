package reconciliation

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExporterConfig holds statement export configuration.
type ExporterConfig struct {
	OutputDir   string
	CompanyName string
	Currency    string
}

// StatementExporter writes float statements as Excel workbooks.
type StatementExporter struct {
	config     ExporterConfig
	aggregator *Aggregator
	logger     *zap.Logger
}

// NewStatementExporter creates a new StatementExporter.
func NewStatementExporter(config ExporterConfig, aggregator *Aggregator, logger *zap.Logger) *StatementExporter {
	if config.Currency == "" {
		config.Currency = "ZAR"
	}
	return &StatementExporter{config: config, aggregator: aggregator, logger: logger}
}

const statementSheet = "Statement"

// Export writes the float's statement workbook and returns its path.
func (ex *StatementExporter) Export(ctx context.Context, floatID string) (string, error) {
	stmt, err := ex.aggregator.Aggregate(ctx, floatID)
	if err != nil {
		return "", err
	}

	ex.logger.Info("Exporting float statement",
		zap.String("float_id", floatID),
		zap.Int("lines", len(stmt.Lines)))

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(statementSheet)
	if err != nil {
		return "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return "", fmt.Errorf("failed to remove default sheet: %w", err)
	}

	ex.setCell(f, "A1", ex.config.CompanyName)
	ex.setCell(f, "A2", "Driver float statement")
	ex.setCell(f, "A4", "Driver")
	ex.setCell(f, "B4", stmt.Float.DriverName)
	ex.setCell(f, "A5", "Float reference")
	ex.setCell(f, "B5", stmt.Float.ID)
	ex.setCell(f, "A6", "Issued")
	ex.setCell(f, "B6", stmt.Float.IssuedAt.Format("2006-01-02"))
	ex.setCell(f, "A7", "Status")
	ex.setCell(f, "B7", string(stmt.Float.Status))
	if stmt.Float.ClosedAt != nil {
		ex.setCell(f, "A8", "Closed")
		ex.setCell(f, "B8", stmt.Float.ClosedAt.Format("2006-01-02"))
	}

	header := 10
	ex.setCell(f, fmt.Sprintf("A%d", header), "Expense")
	ex.setCell(f, fmt.Sprintf("B%d", header), "Category")
	ex.setCell(f, fmt.Sprintf("C%d", header), "Description")
	ex.setCell(f, fmt.Sprintf("D%d", header), fmt.Sprintf("Amount (%s)", ex.config.Currency))
	ex.setCell(f, fmt.Sprintf("E%d", header), "Status")
	ex.setCell(f, fmt.Sprintf("F%d", header), "Decided")

	row := header + 1
	for _, line := range stmt.Lines {
		ex.setCell(f, fmt.Sprintf("A%d", row), line.ExpenseID)
		ex.setCell(f, fmt.Sprintf("B%d", row), line.Category)
		ex.setCell(f, fmt.Sprintf("C%d", row), line.Description)
		ex.setCell(f, fmt.Sprintf("D%d", row), formatCents(line.AmountCents))
		ex.setCell(f, fmt.Sprintf("E%d", row), string(line.Status))
		if line.DecidedAt != nil {
			ex.setCell(f, fmt.Sprintf("F%d", row), line.DecidedAt.Format("2006-01-02"))
		}
		row++
	}

	row++
	ex.setCell(f, fmt.Sprintf("C%d", row), "Issued amount")
	ex.setCell(f, fmt.Sprintf("D%d", row), formatCents(stmt.Float.OriginalCents))
	row++
	ex.setCell(f, fmt.Sprintf("C%d", row), "Approved total")
	ex.setCell(f, fmt.Sprintf("D%d", row), formatCents(stmt.ApprovedCents))
	if stmt.PendingCents > 0 {
		row++
		ex.setCell(f, fmt.Sprintf("C%d", row), "Pending (not deducted)")
		ex.setCell(f, fmt.Sprintf("D%d", row), formatCents(stmt.PendingCents))
	}
	row++
	ex.setCell(f, fmt.Sprintf("C%d", row), "Remaining balance")
	ex.setCell(f, fmt.Sprintf("D%d", row), formatCents(stmt.Float.RemainingCents))

	if err := os.MkdirAll(ex.config.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := fmt.Sprintf("float_%s_%s.xlsx", stmt.Float.ID, time.Now().UTC().Format("20060102T150405"))
	path := filepath.Join(ex.config.OutputDir, name)
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save statement: %w", err)
	}

	ex.logger.Info("Float statement written", zap.String("path", path))
	return path, nil
}

func (ex *StatementExporter) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(statementSheet, cell, value); err != nil {
		ex.logger.Warn("Failed to set cell",
			zap.String("cell", cell),
			zap.Error(err))
	}
}

// formatCents renders minor currency units as a decimal string. The
// ledger itself never leaves integer arithmetic.
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
