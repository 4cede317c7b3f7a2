package payrollhandler

import (
	"fmt"
	"io"

	"github.com/jung-kurt/gofpdf"

	"timekeep/internal/domain/payroll"
)

func writePayslip(w io.Writer, line *payroll.Line) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Payslip")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", line.EmployeeName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Position: %s, %s branch", line.Position, line.Branch))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s",
		line.PeriodStart.Format("2006-01-02"), line.PeriodEnd.Format("2006-01-02")))
	pdf.Ln(10)

	pdf.Cell(0, 8, fmt.Sprintf("Days worked: %d  Leave days: %d  Hours: %s",
		line.DaysWorked, line.LeaveDays, line.TotalHours.StringFixed(2)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Base gross pay: %s", line.BaseGrossPay.StringFixed(2)))
	pdf.Ln(7)
	for _, item := range line.Breakdown {
		pdf.Cell(0, 8, fmt.Sprintf("  %s: %s", item.Name, item.Amount.StringFixed(2)))
		pdf.Ln(7)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Total gross pay: %s", line.TotalGrossPay.StringFixed(2)))
	pdf.Ln(10)

	pdf.Cell(0, 8, fmt.Sprintf("Lateness deduction (%d min): %s",
		line.TotalMinutesLate, line.LatenessDeduction.StringFixed(2)))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Undertime deduction (%d min): %s",
		line.TotalMinutesUnderTime, line.UndertimeDeduction.StringFixed(2)))
	pdf.Ln(7)
	if !line.ManualDeduction.IsZero() {
		pdf.Cell(0, 8, fmt.Sprintf("Manual deduction: %s", line.ManualDeduction.StringFixed(2)))
		pdf.Ln(7)
	}
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, fmt.Sprintf("Net pay: %s", line.NetPay.StringFixed(2)))

	return pdf.Output(w)
}
