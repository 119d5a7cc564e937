package infra

import (
	"fmt"
	"io"

	"cobranzas/internal/dto"

	"github.com/go-pdf/fpdf"
)

// EscribirLiquidacionPDF renders a weekly payroll slip on an A4 page and writes it to w.
// Slips of ungenerated weeks carry a "preliminar" banner.
func EscribirLiquidacionPDF(w io.Writer, l *dto.LiquidacionResponse) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Liquidacion semanal", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, fmt.Sprintf("Semana del %s al %s", l.SemanaInicio, l.SemanaFin), "", 1, "C", false, 0, "")
	if !l.Generada {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetTextColor(180, 0, 0)
		pdf.CellFormat(contentW, 6, "PRELIMINAR - no generada", "", 1, "C", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	nombre := l.CobradorNombre
	if nombre == "" {
		nombre = l.CobradorID
	}
	pdf.CellFormat(contentW, 6, tr("Cobrador: "+nombre), "", 1, "L", false, 0, "")
	if l.GeneradaAt != nil {
		pdf.CellFormat(contentW, 6, "Generada: "+*l.GeneradaAt, "", 1, "L", false, 0, "")
	}
	pdf.Ln(3)

	// ── Credits ──────────────────────────────────────────────────────────────
	colFecha, colCliente, colProducto := contentW*0.18, contentW*0.30, contentW*0.22
	colMonto, colComision := contentW*0.15, contentW*0.15

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	pdf.CellFormat(colFecha, 7, "Fecha", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colCliente, 7, "Cliente", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colProducto, 7, "Producto", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colMonto, 7, "Monto", "1", 0, "R", true, 0, "")
	pdf.CellFormat(colComision, 7, "Comision", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	if len(l.Items) == 0 {
		pdf.CellFormat(contentW, 7, "Sin creditos otorgados en la semana", "1", 1, "C", false, 0, "")
	}
	for _, it := range l.Items {
		fecha := it.Fecha
		if len(fecha) >= 10 {
			fecha = fecha[:10]
		}
		pdf.CellFormat(colFecha, 6, fecha, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colCliente, 6, tr(recortar(it.ClienteNombre, 30)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colProducto, 6, tr(recortar(it.Producto, 22)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colMonto, 6, "$"+it.Monto.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colComision, 6, "$"+it.Comision.StringFixed(2), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(5)

	// ── Totals ───────────────────────────────────────────────────────────────
	etiqueta, valor := contentW*0.7, contentW*0.3
	fila := func(label, monto string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(etiqueta, 7, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(valor, 7, monto, "", 1, "R", false, 0, "")
	}
	comision := "Comision (" + l.ComisionTipo + " " + l.ComisionValor.StringFixed(2) + "):"
	fila("Sueldo semanal:", "$"+l.SueldoSemanal.StringFixed(2), false)
	fila(comision, "$"+l.TotalComision.StringFixed(2), false)
	fila("TOTAL A PAGAR:", "$"+l.TotalAPagar.StringFixed(2), true)
	pdf.Ln(2)
	fila("Cobrado en la semana:", "$"+l.TotalCobrado.StringFixed(2), false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: write: %w", err)
	}
	return nil
}

func recortar(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "."
}
