package infra

// pdf.go — Presupuesto / Factura PDF generation using go-pdf/fpdf.
// A4 documents with the shop header, document number, client and vehicle
// block, item table, labor/discount lines and a bold total. Rendering
// produces bytes; persistence is the blob store's job.

import (
	"bytes"
	"fmt"
	"time"

	"github.com/badkluster/taller-backend-sub000/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// DocumentoPDF carries everything the renderer needs. Both Presupuesto and
// Factura map onto it; Titulo distinguishes them on paper.
type DocumentoPDF struct {
	Titulo    string // "PRESUPUESTO" | "FACTURA"
	Numero    string // P-0001 / A-0001
	Fecha     time.Time
	Taller    model.ShopSettings
	Cliente   string
	Telefono  string
	Vehiculo  string // "Ford Fiesta — AB123CD"
	Items     []model.DocumentoItem
	ManoObra  decimal.Decimal
	Descuento decimal.Decimal
	Total     decimal.Decimal
	Notas     string
}

// PdfRenderer renders financial documents to a binary buffer. Services depend
// on this interface so tests can substitute a fake.
type PdfRenderer interface {
	GenerarPresupuestoPDF(doc *DocumentoPDF) ([]byte, error)
	GenerarFacturaPDF(doc *DocumentoPDF) ([]byte, error)
}

type fpdfRenderer struct{}

func NewPdfRenderer() PdfRenderer { return &fpdfRenderer{} }

func (r *fpdfRenderer) GenerarPresupuestoPDF(doc *DocumentoPDF) ([]byte, error) {
	doc.Titulo = "PRESUPUESTO"
	return render(doc)
}

func (r *fpdfRenderer) GenerarFacturaPDF(doc *DocumentoPDF) ([]byte, error) {
	doc.Titulo = "FACTURA"
	return render(doc)
}

func render(doc *DocumentoPDF) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, doc.Taller.Nombre, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	if doc.Taller.Direccion != "" {
		pdf.CellFormat(contentW, 5, doc.Taller.Direccion, "", 1, "L", false, 0, "")
	}
	if doc.Taller.Telefono != "" {
		pdf.CellFormat(contentW, 5, "Tel: "+doc.Taller.Telefono, "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW/2, 8, doc.Titulo, "", 0, "L", false, 0, "")
	pdf.CellFormat(contentW/2, 8, doc.Numero, "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, doc.Fecha.Format("02/01/2006"), "", 1, "R", false, 0, "")
	pdf.Ln(2)

	// ── Cliente / vehiculo ───────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(25, 5, "Cliente:", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW-25, 5, doc.Cliente, "", 1, "L", false, 0, "")
	if doc.Telefono != "" {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(25, 5, "Telefono:", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(contentW-25, 5, doc.Telefono, "", 1, "L", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(25, 5, "Vehiculo:", "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW-25, 5, doc.Vehiculo, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	// ── Item table ───────────────────────────────────────────────────────────
	col1 := contentW * 0.52 // descripcion
	col2 := contentW * 0.12 // cantidad
	col3 := contentW * 0.18 // precio unitario
	col4 := contentW * 0.18 // total

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1, 6, "Descripcion", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 6, "Cant.", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 6, "P. Unit.", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 6, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range doc.Items {
		desc := item.Descripcion
		if len(desc) > 48 {
			desc = desc[:47] + "…"
		}
		pdf.CellFormat(col1, 6, desc, "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, fmt.Sprintf("x%d", item.Cantidad), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, 6, "$"+item.PrecioUnitario.StringFixed(2), "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, "$"+item.Total.StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 9)
	if !doc.ManoObra.IsZero() {
		pdf.CellFormat(col1+col2+col3, 6, "Mano de obra:", "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, "$"+doc.ManoObra.StringFixed(2), "", 1, "R", false, 0, "")
	}
	if !doc.Descuento.IsZero() {
		pdf.CellFormat(col1+col2+col3, 6, "Descuento:", "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, "-$"+doc.Descuento.StringFixed(2), "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(col1+col2+col3, 8, "TOTAL:", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 8, "$"+doc.Total.StringFixed(2), "", 1, "R", false, 0, "")

	if doc.Notas != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.MultiCell(contentW, 4, doc.Notas, "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render %s %s: %w", doc.Titulo, doc.Numero, err)
	}
	return buf.Bytes(), nil
}
