package export

import (
	"bytes"
	"fmt"
	"time"

	"loan-underwriter/internal/domain/loan"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"
)

const (
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"

	dateLayout = "2006-01-02"
)

var scheduleHeaders = []string{"#", "Due date", "Amount", "Principal", "Interest", "Balance", "Status"}

// BuildSchedulePDF renders the amortization table of a request.
func BuildSchedulePDF(req *loan.LoanRequest, schedule []loan.Installment) ([]byte, error) {
	summary := loan.Summarize(schedule)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Amortization Schedule")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Request: %s", req.ID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s", req.Status))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Amount: %.2f", req.Amount))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Term: %d months at %.2f%% monthly", req.TermMonths, req.InterestRate))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Requested: %s", req.RequestedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Total payment: %.2f (interest %.2f)", summary.TotalPayment, summary.TotalInterest))
	pdf.Ln(8)

	widths := []float64{10, 28, 28, 28, 28, 32, 20}
	pdf.SetFont("Arial", "B", 9)
	for i, h := range scheduleHeaders {
		pdf.CellFormat(widths[i], 6, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, inst := range schedule {
		pdf.CellFormat(widths[0], 6, fmt.Sprintf("%d", inst.Number), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, inst.DueDate.Format(dateLayout), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 6, fmt.Sprintf("%.2f", inst.Amount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, fmt.Sprintf("%.2f", inst.Principal), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 6, fmt.Sprintf("%.2f", inst.Interest), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 6, fmt.Sprintf("%.2f", inst.RemainingBalance), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[6], 6, string(inst.Status), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildScheduleXLSX renders a workbook with a summary sheet and one row per installment.
func BuildScheduleXLSX(req *loan.LoanRequest, schedule []loan.Installment) ([]byte, error) {
	summary := loan.Summarize(schedule)

	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "summary"
	scheduleSheet := "schedule"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(scheduleSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Amortization Schedule")
	_ = f.SetCellValue(summarySheet, "A3", "Request")
	_ = f.SetCellValue(summarySheet, "B3", req.ID.String())
	_ = f.SetCellValue(summarySheet, "A4", "Status")
	_ = f.SetCellValue(summarySheet, "B4", string(req.Status))
	_ = f.SetCellValue(summarySheet, "A5", "Amount")
	_ = f.SetCellValue(summarySheet, "B5", req.Amount)
	_ = f.SetCellValue(summarySheet, "A6", "Term (months)")
	_ = f.SetCellValue(summarySheet, "B6", req.TermMonths)
	_ = f.SetCellValue(summarySheet, "A7", "Monthly rate (%)")
	_ = f.SetCellValue(summarySheet, "B7", req.InterestRate)
	_ = f.SetCellValue(summarySheet, "A8", "Monthly payment")
	_ = f.SetCellValue(summarySheet, "B8", summary.MonthlyPayment)
	_ = f.SetCellValue(summarySheet, "A9", "Total payment")
	_ = f.SetCellValue(summarySheet, "B9", summary.TotalPayment)
	_ = f.SetCellValue(summarySheet, "A10", "Total interest")
	_ = f.SetCellValue(summarySheet, "B10", summary.TotalInterest)

	for i, h := range scheduleHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		_ = f.SetCellValue(scheduleSheet, cell, h)
	}
	for i, inst := range schedule {
		row := i + 2
		_ = f.SetCellValue(scheduleSheet, fmt.Sprintf("A%d", row), inst.Number)
		_ = f.SetCellValue(scheduleSheet, fmt.Sprintf("B%d", row), inst.DueDate.Format(dateLayout))
		_ = f.SetCellValue(scheduleSheet, fmt.Sprintf("C%d", row), inst.Amount)
		_ = f.SetCellValue(scheduleSheet, fmt.Sprintf("D%d", row), inst.Principal)
		_ = f.SetCellValue(scheduleSheet, fmt.Sprintf("E%d", row), inst.Interest)
		_ = f.SetCellValue(scheduleSheet, fmt.Sprintf("F%d", row), inst.RemainingBalance)
		_ = f.SetCellValue(scheduleSheet, fmt.Sprintf("G%d", row), string(inst.Status))
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
