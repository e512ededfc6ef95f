package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"

	"go-interview-scheduler/internal/domain"
	"go-interview-scheduler/pkg/apperror"

	"github.com/xuri/excelize/v2"
)

// Export caps the range to keep a single sheet manageable
const maxExportDays = 366

var exportColumns = []string{"DATE", "START", "END", "STATUS", "RESULT", "JOB", "JOB SEEKER", "APPLICATION", "MEETING LINK", "INTERVIEW ID"}

// Export renders the employer's interviews dated within [from, to].
// It returns the file content and a download filename.
func (uc *interviewUsecase) Export(ctx context.Context, actor domain.Actor, from, to domain.Date, format string) ([]byte, string, error) {
	if !actor.IsEmployer() {
		return nil, "", apperror.Forbidden("Only employers can export interview schedules")
	}
	if from.After(to) {
		return nil, "", apperror.Validation("'from' must not be after 'to'", nil)
	}
	if to.After(from.AddDays(maxExportDays)) {
		return nil, "", apperror.Validation(fmt.Sprintf("Export range is limited to %d days", maxExportDays), nil)
	}

	interviews, err := uc.interviewRepo.ListByEmployerInRange(ctx, actor.UserID, from, to)
	if err != nil {
		return nil, "", apperror.Internal(fmt.Errorf("failed to fetch interviews for export: %w", err))
	}

	rows := make([][]string, 0, len(interviews))
	for i := range interviews {
		rows = append(rows, exportRow(&interviews[i]))
	}

	base := fmt.Sprintf("interviews_%s_%s", from.Format("20060102"), to.Format("20060102"))
	switch format {
	case "csv":
		data, err := exportCSV(rows)
		if err != nil {
			return nil, "", apperror.Internal(err)
		}
		return data, base + ".csv", nil
	case "xlsx", "":
		data, err := exportExcel(rows)
		if err != nil {
			return nil, "", apperror.Internal(err)
		}
		return data, base + ".xlsx", nil
	default:
		return nil, "", apperror.Validation(fmt.Sprintf("Unsupported export format: %s", format), nil)
	}
}

func exportRow(iv *domain.Interview) []string {
	row := []string{"", iv.StartTime, iv.EndTime, string(iv.Status), string(iv.Result), "", iv.JobSeekerID,
		fmt.Sprintf("%d", iv.ApplicationID), "", iv.ID}
	if iv.Date != nil {
		row[0] = iv.Date.String()
	}
	if iv.JobTitle != nil {
		row[5] = *iv.JobTitle
	}
	if iv.MeetingLink != nil {
		row[8] = *iv.MeetingLink
	}
	return row
}

func exportExcel(rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Interviews"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, col)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, row := range rows {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range exportColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 18)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func exportCSV(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportColumns); err != nil {
		return nil, err
	}
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
