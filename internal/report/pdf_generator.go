package report

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/user/lotuslake_go/internal/lake"
)

const (
	pdfPageWidthLandscape  = 297.0 // A4 landscape, mm
	pdfPageHeightLandscape = 210.0
	pdfMargin              = 12.7
	pdfContentWidth        = pdfPageWidthLandscape - (2 * pdfMargin)
	maxTableColumns        = 12
)

// FigureImage is a rendered figure ready to be placed in a PDF.
type FigureImage struct {
	Name        string
	Caption     string
	PNG         []byte
	AspectRatio float64 // height / width
}

// Image renders a figure to a FigureImage.
func (f *Figure) Image(name, caption string) (FigureImage, error) {
	png, err := f.PNG()
	if err != nil {
		return FigureImage{}, err
	}
	return FigureImage{Name: name, Caption: caption, PNG: png, AspectRatio: f.AspectRatio()}, nil
}

// pdfStyler holds reusable styling and flow state for PDF generation.
type pdfStyler struct {
	pdf         *gofpdf.Fpdf
	styles      map[string]func()
	lineHeight  float64
	currentY    float64
	pageBottom  float64
	contentTopY float64
}

func newPDFStyler(pdf *gofpdf.Fpdf) *pdfStyler {
	s := &pdfStyler{
		pdf:         pdf,
		styles:      make(map[string]func()),
		lineHeight:  6,
		pageBottom:  pdfPageHeightLandscape - pdfMargin,
		contentTopY: pdfMargin,
	}
	s.currentY = s.contentTopY
	s.defineStyles()
	return s
}

func (s *pdfStyler) defineStyles() {
	s.styles["h1"] = func() {
		s.pdf.SetFont("Arial", "B", 16)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["h2"] = func() {
		s.pdf.SetFont("Arial", "B", 13)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["normal"] = func() {
		s.pdf.SetFont("Arial", "", 10)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["caption"] = func() {
		s.pdf.SetFont("Arial", "I", 9)
		s.pdf.SetTextColor(80, 80, 80)
	}
	s.styles["tableHeader"] = func() {
		s.pdf.SetFont("Arial", "B", 8)
		s.pdf.SetFillColor(200, 200, 200)
		s.pdf.SetTextColor(0, 0, 0)
	}
	s.styles["tableCell"] = func() {
		s.pdf.SetFont("Arial", "", 8)
		s.pdf.SetTextColor(50, 50, 50)
	}
	s.styles["tableCellMuted"] = func() { // rows never written
		s.pdf.SetFont("Arial", "I", 8)
		s.pdf.SetTextColor(160, 160, 160)
	}
}

func (s *pdfStyler) applyStyle(styleName string) {
	if fn, ok := s.styles[styleName]; ok {
		fn()
	} else {
		s.styles["normal"]()
	}
}

func (s *pdfStyler) newPage() {
	s.pdf.AddPage()
	s.currentY = s.contentTopY
}

func (s *pdfStyler) checkAddPage(neededHeight float64) {
	if s.currentY+neededHeight > s.pageBottom {
		s.newPage()
	}
}

func (s *pdfStyler) writeParagraph(text, styleName, align string) {
	s.applyStyle(styleName)
	s.checkAddPage(s.lineHeight * math.Ceil(float64(len(text)+1)/140))

	s.pdf.SetXY(pdfMargin, s.currentY)
	s.pdf.MultiCell(pdfContentWidth, s.lineHeight, text, "", align, false)
	s.currentY = s.pdf.GetY() + 1
}

func (s *pdfStyler) addSpacer(height float64) {
	s.checkAddPage(height)
	s.currentY += height
}

func (s *pdfStyler) addImage(img FigureImage, width float64) {
	if width > pdfContentWidth {
		width = pdfContentWidth
	}
	aspect := img.AspectRatio
	if aspect <= 0 {
		aspect = 0.75
	}
	height := width * aspect
	if maxHeight := s.pageBottom - s.contentTopY - 2*s.lineHeight; height > maxHeight {
		height = maxHeight
		width = height / aspect
	}

	captionHeight := 0.0
	if img.Caption != "" {
		captionHeight = s.lineHeight + 1
	}
	s.checkAddPage(height + captionHeight)

	s.pdf.RegisterImageOptionsReader(img.Name, gofpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(img.PNG))
	x := pdfMargin + (pdfContentWidth-width)/2
	s.pdf.ImageOptions(img.Name, x, s.currentY, width, height, false, gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	s.currentY += height

	if img.Caption != "" {
		s.addSpacer(1)
		s.writeParagraph(img.Caption, "caption", "C")
	}
	s.addSpacer(2)
}

// writeTable draws a bordered table; muted rows use the muted cell style.
func (s *pdfStyler) writeTable(headers []string, rows [][]string, muted []bool) {
	colWidth := pdfContentWidth / float64(len(headers))

	drawHeader := func() {
		s.applyStyle("tableHeader")
		x := pdfMargin
		for _, h := range headers {
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(colWidth, s.lineHeight, h, "1", 0, "C", true, 0, "")
			x += colWidth
		}
		s.currentY += s.lineHeight
	}

	s.checkAddPage(2 * s.lineHeight)
	drawHeader()
	for i, row := range rows {
		if s.currentY+s.lineHeight > s.pageBottom {
			s.newPage()
			drawHeader()
		}
		if i < len(muted) && muted[i] {
			s.applyStyle("tableCellMuted")
		} else {
			s.applyStyle("tableCell")
		}
		x := pdfMargin
		for _, cell := range row {
			s.pdf.SetXY(x, s.currentY)
			s.pdf.CellFormat(colWidth, s.lineHeight, cell, "1", 0, "C", false, 0, "")
			x += colWidth
		}
		s.currentY += s.lineHeight
	}
}

func newPDF() (*gofpdf.Fpdf, *pdfStyler) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	pdf.AddPage()
	return pdf, newPDFStyler(pdf)
}

func outputPDF(pdf *gofpdf.Fpdf, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write PDF %s: %w", path, err)
	}
	return nil
}

// SaveFiguresToPDF writes one figure per page under a common title.
func SaveFiguresToPDF(path, title string, figures []FigureImage) error {
	if len(figures) == 0 {
		return fmt.Errorf("no figures to save")
	}
	pdf, styler := newPDF()

	for i, fig := range figures {
		if i > 0 {
			styler.newPage()
		}
		styler.writeParagraph(title, "h2", "L")
		styler.addSpacer(2)
		styler.addImage(fig, pdfContentWidth*0.9)
	}
	return outputPDF(pdf, path)
}

// LakeReport is the content of the lake summary PDF.
type LakeReport struct {
	Descriptor  lake.Descriptor
	Table       *lake.Table
	Simulations []string // row labels, in table row order
	Figures     []FigureImage
}

// BuildLakeReport writes a summary PDF: lake metadata, the lake table and
// the study figures.
func BuildLakeReport(path string, r LakeReport) error {
	if r.Table == nil {
		return fmt.Errorf("no lake table for report")
	}
	pdf, styler := newPDF()
	desc := r.Descriptor

	styler.writeParagraph(desc.ProjectName, "h1", "C")
	styler.addSpacer(4)
	styler.writeParagraph(fmt.Sprintf("Simulations: %d (%d not processed)", r.Table.Rows(), len(r.Table.Unset())), "normal", "L")
	if len(desc.GridProps) > 0 {
		keys := make([]string, 0, len(desc.GridProps))
		for k := range desc.GridProps {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			styler.writeParagraph(fmt.Sprintf("%s: %s", k, formatValue(desc.GridProps[k])), "normal", "L")
		}
	}
	styler.addSpacer(4)

	styler.writeParagraph("Lake Table", "h2", "L")
	cols := r.Table.Columns()
	headers := []string{"simulation"}
	for _, c := range cols {
		headers = append(headers, c.Name)
	}
	if len(headers) > maxTableColumns {
		headers = headers[:maxTableColumns]
		styler.writeParagraph(fmt.Sprintf("Showing the first %d columns.", maxTableColumns-1), "caption", "L")
	}

	rows := make([][]string, 0, r.Table.Rows())
	muted := make([]bool, 0, r.Table.Rows())
	for i := 0; i < r.Table.Rows(); i++ {
		values, set, err := r.Table.Row(i)
		if err != nil {
			return err
		}
		label := strconv.Itoa(i)
		if i < len(r.Simulations) {
			label = r.Simulations[i]
		}
		row := []string{label}
		for j := 0; j < len(headers)-1; j++ {
			if set {
				row = append(row, fmt.Sprintf("%.4g", values[j]))
			} else {
				row = append(row, "-")
			}
		}
		rows = append(rows, row)
		muted = append(muted, !set)
	}
	styler.writeTable(headers, rows, muted)

	for _, fig := range r.Figures {
		styler.newPage()
		styler.writeParagraph(fig.Name, "h2", "L")
		styler.addImage(fig, pdfContentWidth*0.8)
	}

	return outputPDF(pdf, path)
}
