package payrolls

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	recordstore "github.com/dalemusser/hrms/internal/app/store/records"
	"github.com/dalemusser/hrms/internal/app/system/inputval"
	"github.com/dalemusser/hrms/internal/app/system/timeouts"
	"github.com/dalemusser/hrms/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"github.com/phpdave11/gofpdf"
	"go.uber.org/zap"
)

// ServePayslip handles GET /{id}/payslip.pdf.
func (h *Handler) ServePayslip(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "payslip")
	defer cancel()

	p, err := h.Res.Store.Get(ctx, chi.URLParam(r, "id"))
	if errors.Is(err, recordstore.ErrNotFound) {
		h.ErrLog.LogNotFound(w, r, "payslip: payroll not found", err, "The payroll was not found.")
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "payslip: load payroll", err, "A database error occurred.")
		return
	}

	// A missing employee still yields a payslip, labelled with the id.
	employee := "-"
	if u, err := h.Users.GetByID(ctx, p.UserID.Hex()); err == nil {
		if name := strings.TrimSpace(u.FirstName + " " + u.LastName); name != "" {
			employee = name
		} else {
			employee = u.Email
		}
	} else if !errors.Is(err, recordstore.ErrNotFound) {
		h.Log.Warn("payslip: load employee", zap.String("user_id", p.UserID.Hex()), zap.Error(err))
	}

	pdf, err := RenderPayslip(h.Meta.ApplicationName, employee, p)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "payslip: render", err, "The payslip could not be generated.")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`inline; filename="payslip-%s.pdf"`, p.ID.Hex()))
	_, _ = w.Write(pdf)
}

// RenderPayslip draws a one-page payslip for p.
func RenderPayslip(appName, employee string, p models.Payroll) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payslip", false)
	pdf.SetCreator(appName, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PAYSLIP")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	for _, line := range []string{
		"Employee   : " + employee,
		"Pay date   : " + p.PayDate.Format(inputval.DateLayout),
		"Reference  : " + p.ID.Hex(),
	} {
		pdf.Cell(0, 7, line)
		pdf.Ln(7)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(100, 8, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 12)
	row := func(label string, v float64) {
		pdf.CellFormat(100, 8, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 8, money(v), "", 1, "R", false, 0, "")
	}
	row("Gross salary", p.GrossSalary)
	row("Deductions", p.Deductions)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(100, 8, "Net salary", "T", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, money(p.NetSalary), "T", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render payslip: %w", err)
	}
	return buf.Bytes(), nil
}
