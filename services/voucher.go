package services

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"hostel-server/models"
)

// RenderVoucher writes a one-page A6 reservation voucher as PDF to w.
func RenderVoucher(w io.Writer, res *models.Reservation, hostelName string) error {
	pdf := fpdf.New("P", "mm", "A6", "")
	pdf.SetMargins(8, 8, 8)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 16

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, tr(hostelName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Reservation voucher N° %d", res.ID)), "", 1, "C", false, 0, "")
	pdf.Ln(3)
	pdf.Line(8, pdf.GetY(), pageW-8, pdf.GetY())
	pdf.Ln(3)

	labelW := contentW * 0.4
	valueW := contentW * 0.6
	row := func(label, value string) {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(labelW, 6, tr(label), "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(valueW, 6, tr(value), "", 1, "L", false, 0, "")
	}

	if res.Client != nil {
		row("Guest", res.Client.FullName())
		row("RUT", res.Client.RUT)
	} else {
		row("Guest", "-")
	}
	if res.Room != nil {
		row("Room", res.Room.Number)
		row("Nightly rate", "$"+res.Room.Price.StringFixed(0))
	}
	row("Check-in", res.CheckInDate.Format("02/01/2006 15:04"))
	row("Nights", fmt.Sprint(res.Nights))
	row("Status", string(res.Status))
	row("Registered", res.RegisteredAt.Format("02/01/2006 15:04"))
	if res.Worker != nil {
		row("Taken by", res.Worker.DisplayName())
	}

	pdf.Ln(2)
	pdf.Line(8, pdf.GetY(), pageW-8, pdf.GetY())
	pdf.Ln(2)

	total := res.TotalValue()
	if res.FinalPrice.Valid {
		total = res.FinalPrice.Decimal
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(labelW, 7, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(valueW, 7, "$"+total.StringFixed(0), "", 1, "R", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(contentW, 4, tr("Please show this voucher at check-in."), "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write voucher: %w", err)
	}
	return nil
}
