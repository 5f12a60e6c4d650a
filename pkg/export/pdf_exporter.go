package export

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// SectionBlock is one titled block of an assembled document.
type SectionBlock struct {
	Label  string
	Status string
	Body   string
}

// Document carries everything needed to render a talking-points PDF.
type Document struct {
	Title    string
	Country  string
	Occasion string
	Deadline string
	Sections []SectionBlock
}

// PDFExporter renders an assembled document into a printable PDF.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF with a header page section followed by every section
// block in the order given.
func (e *PDFExporter) Render(doc Document) ([]byte, error) {
	if doc.Title == "" {
		return nil, fmt.Errorf("pdf requires a document title")
	}
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.MultiCell(0, 9, doc.Title, "", "C", false)

	sub := doc.Country
	if doc.Occasion != "" {
		sub += " - " + doc.Occasion
	}
	if doc.Deadline != "" {
		sub += " (" + doc.Deadline + ")"
	}
	if sub != "" {
		pdf.SetFont("Arial", "I", 11)
		pdf.MultiCell(0, 7, sub, "", "C", false)
	}
	pdf.Ln(4)

	for _, section := range doc.Sections {
		pdf.SetFont("Arial", "B", 12)
		pdf.MultiCell(0, 8, section.Label, "", "L", false)
		pdf.SetFont("Arial", "", 10)
		body := stripHTML(section.Body)
		if body == "" {
			body = "(no content)"
		}
		pdf.MultiCell(0, 6, body, "", "L", false)
		pdf.Ln(3)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

var (
	tagPattern   = regexp.MustCompile(`(?s)<[^>]*>`)
	breakPattern = regexp.MustCompile(`(?i)<(?:br\s*/?|/p|/div|/li|/h[1-6])>`)
)

// stripHTML flattens authored rich text into plain paragraphs. The editor
// stores HTML bodies; the PDF only needs readable text.
func stripHTML(raw string) string {
	if raw == "" {
		return ""
	}
	text := breakPattern.ReplaceAllString(raw, "\n")
	text = tagPattern.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "&nbsp;", " ")
	text = strings.ReplaceAll(text, "&amp;", "&")
	text = strings.ReplaceAll(text, "&lt;", "<")
	text = strings.ReplaceAll(text, "&gt;", ">")
	text = strings.ReplaceAll(text, "&quot;", `"`)

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return strings.Join(out, "\n")
}
