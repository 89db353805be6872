// Package pdf lays out analyzed ticket reports as PDF documents.
package pdf

import (
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/spec-kit/ticket-report-service/internal/domain"
)

// StyleConfig is the complete, immutable styling for rendered reports. It
// is constructed once at startup and passed by value, so rendering carries
// no hidden shared state and stays independently testable.
type StyleConfig struct {
	PageSize    string
	FontFamily  string
	TitleSize   float64
	HeadingSize float64
	BodySize    float64
	MarginMM    float64
	LineHeight  float64
}

// DefaultStyle returns the standard report styling.
func DefaultStyle() StyleConfig {
	return StyleConfig{
		PageSize:    "Letter",
		FontFamily:  "Helvetica",
		TitleSize:   16,
		HeadingSize: 12,
		BodySize:    10,
		MarginMM:    20,
		LineHeight:  5,
	}
}

// Renderer turns a report into a PDF file.
type Renderer struct {
	style StyleConfig
}

// NewRenderer constructs a renderer with the given style.
func NewRenderer(style StyleConfig) *Renderer {
	return &Renderer{style: style}
}

// Render writes the report as a PDF to path.
func (r *Renderer) Render(report *domain.Report, path string) error {
	doc := fpdf.New("P", "mm", r.style.PageSize, "")
	doc.SetMargins(r.style.MarginMM, r.style.MarginMM, r.style.MarginMM)
	doc.AddPage()
	tr := doc.UnicodeTranslatorFromDescriptor("")

	doc.SetFont(r.style.FontFamily, "B", r.style.TitleSize)
	doc.MultiCell(0, r.style.LineHeight*1.6, tr(report.Title), "", "L", false)
	doc.Ln(r.style.LineHeight)

	for _, section := range report.Sections {
		r.heading(doc, tr(section.Label))
		r.body(doc, tr(section.Body))
	}

	r.heading(doc, "Extracted Fields")
	for _, field := range domain.Fields() {
		doc.SetFont(r.style.FontFamily, "B", r.style.BodySize)
		doc.MultiCell(0, r.style.LineHeight, tr(field.Label()), "", "L", false)
		r.body(doc, tr(report.Extraction[field]))
	}

	r.heading(doc, "Source Information")
	for _, source := range report.Sources {
		r.body(doc, tr(fmt.Sprintf("Source ID: %d (%s)", source.SourceID, source.SourceType)))
	}

	if err := doc.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing pdf: %w", err)
	}
	return nil
}

func (r *Renderer) heading(doc *fpdf.Fpdf, text string) {
	doc.Ln(r.style.LineHeight / 2)
	doc.SetFont(r.style.FontFamily, "B", r.style.HeadingSize)
	doc.MultiCell(0, r.style.LineHeight*1.2, text, "", "L", false)
}

func (r *Renderer) body(doc *fpdf.Fpdf, text string) {
	doc.SetFont(r.style.FontFamily, "", r.style.BodySize)
	doc.MultiCell(0, r.style.LineHeight, text, "", "L", false)
	doc.Ln(r.style.LineHeight / 2)
}
