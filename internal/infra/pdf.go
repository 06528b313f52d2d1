package infra

// pdf.go renders the kitchen production sheet using go-pdf/fpdf.
// Layout (A4 portrait):
//   - event header (name, date, menu, portions, pricing mode)
//   - ingredient table (name, quantity, unit, stock status, unit price, cost)
//   - totals block (total cost, cost per person, unpriced lines)
//   - products without a recipe, when any
//
// The renderer reads only dto.ProductionReport, never models or services.

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/digitalhubmedia1-spec/proiect-chianti-sub001/internal/dto"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SheetFileName names the PDF for a report's controls.
func SheetFileName(r dto.ProductionReport) string {
	return fmt.Sprintf("productie_%s_%s_%d.pdf", r.MenuType, r.Pricing, r.Portions)
}

// RenderProductionSheet returns the PDF bytes for one production report.
func RenderProductionSheet(r dto.ProductionReport) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(true, 14)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-10)
		pdf.SetFont("Helvetica", "I", 7)
		pdf.CellFormat(0, 4, fmt.Sprintf("%s  |  pagina %d", r.GeneratedAt, pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 15)
	pdf.CellFormat(contentW, 8, latin("Fisa de productie"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(contentW, 6, latin(r.EventName), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, fmt.Sprintf("Data: %s   Meniu: %s   Portii: %d   Pret: %s",
		r.EventDate, menuLabel(r.MenuType), r.Portions, pricingLabel(r.Pricing)), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	// ── Ingredient table ─────────────────────────────────────────────────────
	cols := []struct {
		title string
		w     float64
		align string
	}{
		{"Ingredient", contentW * 0.30, "L"},
		{"Cantitate", contentW * 0.14, "R"},
		{"UM", contentW * 0.07, "C"},
		{"Stoc", contentW * 0.13, "C"},
		{"Pret unitar", contentW * 0.16, "R"},
		{"Cost", contentW * 0.20, "R"},
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetFillColor(235, 235, 235)
	for i, col := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		pdf.CellFormat(col.w, 6, col.title, "1", ln, col.align, true, 0, "")
	}

	pdf.SetFont("Helvetica", "", 8)
	for _, l := range r.Lines {
		price := "-"
		if l.UnitPrice != nil {
			price = l.UnitPrice.StringFixed(2)
		}
		cells := []string{
			truncate(latin(l.Name), 38),
			l.TotalQuantity.StringFixed(3),
			latin(l.Unit),
			statusLabel(l.Status),
			price,
			l.LineCost.StringFixed(2),
		}
		for i, col := range cols {
			ln := 0
			if i == len(cols)-1 {
				ln = 1
			}
			pdf.CellFormat(col.w, 5, cells[i], "1", ln, col.align, false, 0, "")
		}
	}

	// ── Totals ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	labelW := contentW * 0.80
	valueW := contentW * 0.20
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(labelW, 6, "Cost total:", "", 0, "R", false, 0, "")
	pdf.CellFormat(valueW, 6, r.Totals.TotalCost.StringFixed(2), "", 1, "R", false, 0, "")
	pdf.CellFormat(labelW, 6, "Cost per persoana:", "", 0, "R", false, 0, "")
	pdf.CellFormat(valueW, 6, r.Totals.CostPerPerson.StringFixed(2), "", 1, "R", false, 0, "")
	if r.Totals.UnpricedCount > 0 {
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(contentW, 5, fmt.Sprintf("%d ingrediente fara pret (calculate la 0)", r.Totals.UnpricedCount), "", 1, "R", false, 0, "")
	}

	// ── Products without recipe ──────────────────────────────────────────────
	if r.Totals.MissingRecipes > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 6, "Produse fara reteta", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		for _, p := range r.Products {
			if p.HasRecipe {
				continue
			}
			pdf.CellFormat(contentW, 5, "- "+latin(p.Name)+" ("+menuLabel(p.MenuType)+")", "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf: render production sheet: %w", err)
	}
	return buf.Bytes(), nil
}

// latin strips diacritics; the core PDF fonts only cover cp1252.
func latin(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// truncate caps s at n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-3])) + "..."
}

func menuLabel(t string) string {
	switch t {
	case "guests":
		return "invitati"
	case "staff":
		return "personal"
	case "all":
		return "invitati + personal"
	}
	return t
}

func pricingLabel(p string) string {
	if p == "latest_purchase" {
		return "ultima achizitie"
	}
	return "referinta"
}

func statusLabel(s string) string {
	switch s {
	case "sufficient":
		return "OK"
	case "partial":
		return "partial"
	case "missing":
		return "lipsa"
	}
	return s
}
