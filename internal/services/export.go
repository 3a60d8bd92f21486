package services

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"alfredoptarigan/cv-screener/internal/models"
)

const exportSheet = "Evaluations"

var exportHeader = []any{
	"Evaluation ID", "Status", "Match Rate", "CV Feedback",
	"Project Score", "Project Feedback", "Overall Summary", "Updated At",
}

// ExportEvaluations renders evaluations as an xlsx workbook, one row each.
func ExportEvaluations(evals []models.Evaluation) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetRow(exportSheet, "A1", &exportHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := f.SetCellStyle(exportSheet, "A1", "H1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, eval := range evals {
		row := []any{eval.EvaluationID, string(eval.Status), "", "", "", "", "", ""}
		if r := eval.Result; r != nil {
			row[2] = r.MatchRate
			row[3] = r.CVFeedback
			row[4] = r.ProjectScore
			row[5] = r.ProjectFeedback
			row[6] = r.OverallSummary
		}
		if !eval.UpdatedAt.IsZero() {
			row[7] = eval.UpdatedAt.UTC().Format("2006-01-02 15:04:05")
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 38)
	_ = f.SetColWidth(exportSheet, "D", "G", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
