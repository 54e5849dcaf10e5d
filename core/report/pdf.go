package report

import (
	"io"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/pkg/errors"
)

const (
	pdfMargin     = 10.6 // 30pt
	pdfLineHeight = 6.0
)

var (
	titleColor  = [3]int{30, 58, 138}
	footerColor = [3]int{128, 128, 128}
)

// RenderPDF writes the report as a single A4 document. Page breaks are left to fpdf.
func RenderPDF(w io.Writer, v View, generatedAt time.Time) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetCreationDate(generatedAt)
	pdf.SetTitle(v.Title(), true)
	tr := pdf.UnicodeTranslatorFromDescriptor("") // cp1252

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(titleColor[0], titleColor[1], titleColor[2])
	pdf.MultiCell(0, 9, tr(v.Title()), "", "C", false)
	pdf.Ln(4)
	pdf.SetTextColor(0, 0, 0)

	summary := v.Analysis
	if summary == "" {
		summary = noSummaryText
	}
	pdfHeader(pdf, tr("AI Summary:"))
	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(0, pdfLineHeight, tr(summary), "", "L", false)
	pdf.Ln(4)

	for _, s := range []Section{v.Passed, v.Failed} {
		pdfHeader(pdf, tr(s.Header()))
		pdf.SetFont("Helvetica", "", 12)
		for _, item := range s.Items() {
			pdf.SetX(pdfMargin + 5)
			pdf.MultiCell(0, pdfLineHeight, tr(item), "", "L", false)
		}
		pdf.Ln(4)
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(footerColor[0], footerColor[1], footerColor[2])
	pdf.MultiCell(0, 5, tr("Generated on "+generatedAt.Format("Jan 2, 2006, 3:04:05 PM MST")), "", "C", false)

	if err := pdf.Error(); err != nil {
		return errors.Wrap(err, "laying out report pdf")
	}
	return errors.Wrap(pdf.Output(w), "writing report pdf")
}

func pdfHeader(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "BU", 14)
	pdf.MultiCell(0, 7, text, "", "L", false)
	pdf.Ln(1)
}
