package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"workforce-portal/gateway/internal/models"
)

const sheetName = "Tasks"

// WriteXLSX produces the same 10-column report as WriteCSV as a spreadsheet.
func WriteXLSX(w io.Writer, tasks []models.Task, projects []models.Project) error {
	if len(tasks) == 0 {
		return ErrNoTasks
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(csvHeader))
	for i, h := range csvHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, t := range tasks {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name for row %d: %w", i+2, err)
		}
		fields := taskRow(t, projects)
		row := make([]interface{}, len(fields))
		for j, v := range fields {
			row[j] = v
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func XLSXFileName() string {
	return "tasks_" + time.Now().Format("2006-01-02") + ".xlsx"
}
