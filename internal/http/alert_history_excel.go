package httpapi

import (
	"bytes"
	"fmt"

	"github.com/wilsondesouza/AlertSystem/internal/models"

	"github.com/xuri/excelize/v2"
)

const alertHistorySheet = "Alert History"

// AlertHistoryExportHeader column order of the export
var AlertHistoryExportHeader = []string{
	"ID",
	"Sent At",
	"Rule ID",
	"Sensor Type",
	"Metric",
	"Condition",
	"Threshold",
	"Sensor Value",
	"Recipient",
	"Email Status",
}

var alertHistoryColumnWidths = []float64{8, 20, 8, 20, 14, 14, 12, 14, 30, 14}

// GenerateAlertHistoryExport renders history rows into an xlsx workbook
func GenerateAlertHistoryExport(history []models.AlertHistoryView) ([]byte, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(alertHistorySheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#FDE9D9"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range AlertHistoryExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(alertHistorySheet, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(alertHistorySheet, cell, cell, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}

		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(alertHistorySheet, name, name, alertHistoryColumnWidths[col]); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, item := range history {
		row := []any{
			item.ID,
			item.SentAt,
			item.RuleID,
			item.SensorType,
			item.Metric,
			string(item.Condition),
			item.ThresholdValue,
			item.SensorValue,
			item.RecipientEmail,
			string(item.EmailStatus),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetSheetRow(alertHistorySheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(alertHistorySheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to freeze panes: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write to buffer: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to close file: %w", err)
	}

	return buf.Bytes(), nil
}
