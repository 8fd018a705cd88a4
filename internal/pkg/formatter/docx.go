package formatter

import (
	"bytes"

	"github.com/unidoc/unioffice/document"
)

const (
	docxContentType   = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	docxFileExtension = ".docx"
)

type DOCXFormatter struct{}

func NewDOCXFormatter() *DOCXFormatter {
	return &DOCXFormatter{}
}

func (df *DOCXFormatter) Format(doc Document) ([]byte, error) {
	d := document.New()
	defer d.Close()

	titlePar := d.AddParagraph()
	titlePar.SetStyle("Heading1")
	titlePar.AddRun().AddText(doc.Title)

	if doc.Subtitle != "" {
		sub := d.AddParagraph().AddRun()
		sub.Properties().SetItalic(true)
		sub.AddText(doc.Subtitle)
	}

	d.AddParagraph()

	for _, line := range paragraphs(doc.Body) {
		text, bullet := bulletText(line)
		par := d.AddParagraph()
		if bullet {
			par.SetStyle("ListBullet")
		}
		par.AddRun().AddText(text)
	}

	var buf bytes.Buffer
	if err := d.Save(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (df *DOCXFormatter) ContentType() string {
	return docxContentType
}

func (df *DOCXFormatter) FileExtension() string {
	return docxFileExtension
}
