package report

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/face-attendance-go/internal/domain/report"
	"github.com/xuri/excelize/v2"
)

const summarySheet = "Rekap"

var summaryHeaders = []string{"No", "Employee ID", "Name", "Period", "Days Worked", "Total Hours", "Total (H:MM:SS)"}

func renderMonthlySummaryXLSX(rows []report.MonthlySummaryRow, period string, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	})
	if err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}
	hoursFormat := "0.00"
	hoursStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &hoursFormat})
	if err != nil {
		return nil, err
	}

	title := "MONTHLY WORKED HOURS"
	if period != "" {
		title += " " + period
	}
	f.SetCellValue(summarySheet, "A1", title)
	f.SetCellStyle(summarySheet, "A1", "A1", titleStyle)
	f.SetCellValue(summarySheet, "A2", "Generated: "+generatedAt.Format("2006-01-02 15:04:05 MST"))

	const headerRow = 4
	for i, h := range summaryHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, headerRow)
		f.SetCellValue(summarySheet, cell, h)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(summaryHeaders))
	f.SetCellStyle(summarySheet, "A4", fmt.Sprintf("%s%d", lastCol, headerRow), headerStyle)

	for i, row := range rows {
		r := headerRow + 1 + i
		hours, _ := row.TotalHours.Round(2).Float64()
		values := []interface{}{i + 1, row.EmployeeID, row.EmployeeName, row.Period, row.DaysWorked, hours, report.FormatHMS(row.TotalHours)}
		start, _ := excelize.CoordinatesToCellName(1, r)
		if err := f.SetSheetRow(summarySheet, start, &values); err != nil {
			return nil, err
		}
		f.SetCellStyle(summarySheet, fmt.Sprintf("F%d", r), fmt.Sprintf("F%d", r), hoursStyle)
	}

	f.SetColWidth(summarySheet, "A", "A", 6)
	f.SetColWidth(summarySheet, "B", "B", 14)
	f.SetColWidth(summarySheet, "C", "C", 28)
	f.SetColWidth(summarySheet, "D", "E", 12)
	f.SetColWidth(summarySheet, "F", "G", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
