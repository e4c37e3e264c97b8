package pdf

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jung-kurt/gofpdf"

	"todoboard/internal/models"
)

const dateLayout = "2006/01/02 15:04"

// Generator is the export surface (handy to mock in handler tests).
type Generator interface {
	WriteTaskList(w io.Writer, data TaskListData) error
}

// DocumentGenerator renders with a TTF font when one is configured,
// otherwise with the built-in Helvetica (Latin-1 only).
type DocumentGenerator struct {
	FontPath string // e.g. "assets/fonts/DejaVuSans.ttf"
	fontName string
	utf8     bool
}

type TaskListData struct {
	Title       string
	Filter      string // human-readable filter line, empty when unfiltered
	Summary     models.Summary
	Tasks       []models.Task
	GeneratedAt time.Time
}

func NewDocumentGenerator(fontPath string) *DocumentGenerator {
	g := &DocumentGenerator{FontPath: fontPath, fontName: "Helvetica"}
	if fontPath != "" {
		if _, err := os.Stat(fontPath); err == nil {
			g.fontName, g.utf8 = "DejaVu", true
		}
	}
	return g
}

func (g *DocumentGenerator) WriteTaskList(w io.Writer, data TaskListData) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(data.Title, g.utf8)
	pdf.SetAuthor("todoboard", false)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	g.addFont(pdf)
	tr := g.translator(pdf)

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// ===== Header
	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, tr(data.Title), "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)
	pdf.CellFormat(0, 6, "Generated "+data.GeneratedAt.Format(dateLayout), "", 1, "C", false, 0, "")
	if data.Filter != "" {
		pdf.CellFormat(0, 6, tr(data.Filter), "", 1, "C", false, 0, "")
	}
	g.hr(pdf)

	// ===== Summary
	s := data.Summary
	g.kvLine(pdf, "Total", fmt.Sprint(s.Total))
	g.kvLine(pdf, models.StatusTodo.Label(), fmt.Sprint(s.Todo))
	g.kvLine(pdf, models.StatusDoing.Label(), fmt.Sprint(s.Doing))
	g.kvLine(pdf, models.StatusDone.Label(), fmt.Sprint(s.Done))
	g.hr(pdf)

	// ===== Tasks
	if len(data.Tasks) == 0 {
		pdf.SetFont(g.fontName, "", 11)
		pdf.CellFormat(0, 8, "No tasks.", "", 1, "L", false, 0, "")
	} else {
		g.tableHeader(pdf)
		pdf.SetFont(g.fontName, "", 10)
		for _, t := range data.Tasks {
			pdf.CellFormat(85, 7, tr(truncate(t.Title, 48)), "B", 0, "L", false, 0, "")
			pdf.CellFormat(25, 7, t.Status.Label(), "B", 0, "L", false, 0, "")
			pdf.CellFormat(30, 7, t.CreatedAt.Format(dateLayout), "B", 0, "L", false, 0, "")
			pdf.CellFormat(30, 7, t.UpdatedAt.Format(dateLayout), "B", 1, "L", false, 0, "")
			if t.Content != "" {
				pdf.SetFont(g.fontName, "", 9)
				pdf.MultiCell(0, 5, tr(t.Content), "", "L", false)
				pdf.SetFont(g.fontName, "", 10)
			}
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

// ===== helpers =====

func (g *DocumentGenerator) addFont(pdf *gofpdf.Fpdf) {
	if !g.utf8 {
		return
	}
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
}

// translator maps UTF-8 to cp1252 for the core fonts; TTF fonts take UTF-8 directly.
func (g *DocumentGenerator) translator(pdf *gofpdf.Fpdf) func(string) string {
	if g.utf8 {
		return func(s string) string { return s }
	}
	return pdf.UnicodeTranslatorFromDescriptor("")
}

func (g *DocumentGenerator) tableHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont(g.fontName, "B", 10)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(85, 7, "Title", "B", 0, "L", true, 0, "")
	pdf.CellFormat(25, 7, "Status", "B", 0, "L", true, 0, "")
	pdf.CellFormat(30, 7, "Created", "B", 0, "L", true, 0, "")
	pdf.CellFormat(30, 7, "Updated", "B", 1, "L", true, 0, "")
}

func (g *DocumentGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *DocumentGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
