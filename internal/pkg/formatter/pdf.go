package formatter

import (
	"bytes"
	"os"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfContentType   = "application/pdf"
	pdfFileExtension = ".pdf"

	// pdfFontName is the family name registered for the UTF-8 font.
	pdfFontName = "StudyHelperSans"
)

type PDFFormatter struct {
	fontPath string
}

func NewPDFFormatter(fontPath string) *PDFFormatter {
	return &PDFFormatter{fontPath: fontPath}
}

func (pf *PDFFormatter) Format(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title, true)
	pdf.AddPage()

	fontName := "Arial"
	translate := pdf.UnicodeTranslatorFromDescriptor("")
	if pf.fontPath != "" {
		if _, err := os.Stat(pf.fontPath); err == nil {
			pdf.AddUTF8Font(pdfFontName, "", pf.fontPath)
			pdf.AddUTF8Font(pdfFontName, "B", pf.fontPath)
			pdf.AddUTF8Font(pdfFontName, "I", pf.fontPath)
			fontName = pdfFontName
			translate = func(s string) string { return s }
		}
	}

	pdf.SetFont(fontName, "B", 18)
	pdf.MultiCell(0, 9, translate(doc.Title), "", "", false)
	pdf.Ln(2)

	if doc.Subtitle != "" {
		pdf.SetFont(fontName, "I", 10)
		pdf.MultiCell(0, 6, translate(doc.Subtitle), "", "", false)
		pdf.Ln(4)
	}

	pdf.SetFont(fontName, "", 12)
	_, fontSize := pdf.GetFontSize()
	lineHeight := fontSize * 1.5
	for _, line := range paragraphs(doc.Body) {
		text, bullet := bulletText(line)
		if bullet {
			pdf.SetX(pdf.GetX() + 4)
			text = "- " + text
		}
		pdf.MultiCell(0, lineHeight, translate(text), "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (pf *PDFFormatter) ContentType() string {
	return pdfContentType
}

func (pf *PDFFormatter) FileExtension() string {
	return pdfFileExtension
}
