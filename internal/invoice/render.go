package invoice

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
)

const fontFamily = "Helvetica"

var (
	colorBrand     = RGB{22, 101, 52}
	colorBrandTint = RGB{220, 252, 231}
	colorText      = RGB{31, 41, 55}
	colorMuted     = RGB{107, 114, 128}
	colorRule      = RGB{209, 213, 219}
	colorWhite     = RGB{255, 255, 255}
)

// table columns: product, quantity, unit price, total
var tableColumns = []struct {
	title string
	width float64
	align string
}{
	{"Product", 86, "L"},
	{"Qty", 20, "C"},
	{"Unit Price (" + Currency + ")", 32, "R"},
	{"Total (" + Currency + ")", 32, "R"},
}

// PDFRenderer draws a Document with fpdf
type PDFRenderer struct{}

// NewPDFRenderer creates the default PDF backend
func NewPDFRenderer() *PDFRenderer {
	return &PDFRenderer{}
}

// Extension of the produced file
func (r *PDFRenderer) Extension() string { return "pdf" }

// ContentType of the produced file
func (r *PDFRenderer) ContentType() string { return ContentTypePDF }

// Render draws every page of doc. Output is byte-identical for identical
// documents: dates are pinned to the order creation time and catalogs sorted.
func (r *PDFRenderer) Render(doc *Document) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	stamp := doc.CreatedAt
	if stamp.IsZero() {
		stamp = time.Unix(0, 0).UTC()
	}
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	pdf.SetCatalogSort(true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(MarginX, MarginTop, MarginX)
	pdf.SetTitle(fmt.Sprintf("%s Invoice %s", doc.Header.Brand, doc.Header.InvoiceNumber), true)
	pdf.SetAuthor(doc.Header.Brand, true)
	pdf.SetCreator(doc.Header.Brand, true)

	d := &drawer{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor(""), doc: doc}
	for page := 0; page < doc.Layout.Pages; page++ {
		pdf.AddPage()
		if page == doc.Layout.Header.Page {
			d.header()
		}
		if page == doc.Layout.Customer.Page {
			d.customer()
		}
		for _, seg := range doc.Layout.Table {
			if seg.Page == page {
				d.table(seg)
			}
		}
		if page == doc.Layout.Summary.Page {
			d.summary()
		}
		if page == doc.Layout.Impact.Page {
			d.impact()
		}
		d.footer(page)
	}

	if err := pdf.Error(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type drawer struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
	doc *Document
}

func (d *drawer) text(c RGB, style string, size float64) {
	d.pdf.SetTextColor(c.R, c.G, c.B)
	d.pdf.SetFont(fontFamily, style, size)
}

func (d *drawer) fill(c RGB) {
	d.pdf.SetFillColor(c.R, c.G, c.B)
}

func (d *drawer) cell(x, y, w, h float64, s, align string, fill bool) {
	d.pdf.SetXY(x, y)
	d.pdf.CellFormat(w, h, d.tr(s), "", 0, align, fill, 0, "")
}

func (d *drawer) header() {
	h := d.doc.Header
	d.fill(colorBrand)
	d.pdf.Rect(0, 0, PageWidth, 40, "F")

	d.text(colorWhite, "B", 22)
	d.cell(MarginX, 10, 90, 10, h.Brand, "L", false)
	d.text(colorWhite, "", 10)
	d.cell(MarginX, 21, 90, 6, h.Tagline, "L", false)

	right := PageWidth - MarginX - 80
	d.text(colorWhite, "B", 20)
	d.cell(right, 8, 80, 10, h.Title, "R", false)
	d.text(colorWhite, "", 10)
	d.cell(right, 19, 80, 5, "#"+h.InvoiceNumber, "R", false)
	d.cell(right, 25, 80, 5, "Date: "+h.IssuedOn, "R", false)
	if h.DeliveredOn != "" {
		d.cell(right, 31, 80, 5, "Delivery: "+h.DeliveredOn, "R", false)
	}

	d.fill(h.StatusColor)
	d.text(colorWhite, "B", 9)
	d.cell(PageWidth-MarginX-36, 41.5, 36, 6, h.Status, "C", true)
}

func (d *drawer) customer() {
	p := d.doc.Layout.Customer
	y := p.Top
	d.text(colorBrand, "B", 11)
	d.cell(MarginX, y, ContentWidth, CustomerLineH, "BILL TO", "L", false)

	for i, line := range d.doc.Customer.Lines() {
		y += CustomerLineH
		style := ""
		if i == 0 {
			style = "B"
		}
		d.text(colorText, style, 10)
		d.cell(MarginX, y, ContentWidth, CustomerLineH, line, "L", false)
	}
}

func (d *drawer) table(seg TableSegment) {
	x, y := MarginX, seg.Top
	d.fill(colorBrand)
	d.text(colorWhite, "B", 10)
	for _, col := range tableColumns {
		d.cell(x, y, col.width, TableHeaderH, col.title, col.align, true)
		x += col.width
	}
	y += TableHeaderH

	d.pdf.SetDrawColor(colorRule.R, colorRule.G, colorRule.B)
	d.text(colorText, "", 10)
	for _, row := range d.doc.Rows[seg.FirstRow : seg.FirstRow+seg.RowCount] {
		x = MarginX
		for i, v := range []string{row.Product, row.Quantity, row.UnitPrice, row.Total} {
			col := tableColumns[i]
			d.cell(x, y, col.width, TableRowH, v, col.align, false)
			x += col.width
		}
		y += TableRowH
		d.pdf.Line(MarginX, y, PageWidth-MarginX, y)
	}
}

func (d *drawer) summary() {
	s := d.doc.Summary
	y := d.doc.Layout.Summary.Top
	x := PageWidth - MarginX - 80
	lines := []struct {
		label, value, style string
	}{
		{"Subtotal:", s.Currency + " " + s.Subtotal, ""},
		{"Tax (0%):", s.Currency + " " + s.Tax, ""},
		{"Total:", s.Currency + " " + s.Total, "B"},
	}
	for i, l := range lines {
		if i == len(lines)-1 {
			d.pdf.SetDrawColor(colorBrand.R, colorBrand.G, colorBrand.B)
			d.pdf.Line(x, y, PageWidth-MarginX, y)
		}
		d.text(colorText, l.style, 11)
		d.cell(x, y, 40, SummaryLineH, l.label, "L", false)
		d.cell(x+40, y, 40, SummaryLineH, l.value, "R", false)
		y += SummaryLineH
	}
}

func (d *drawer) impact() {
	im := d.doc.Impact
	p := d.doc.Layout.Impact
	d.fill(colorBrandTint)
	d.pdf.Rect(MarginX, p.Top, ContentWidth, p.Height(), "F")

	d.text(colorBrand, "B", 12)
	d.cell(MarginX+5, p.Top+3, ContentWidth-10, 7, "Environmental Impact", "L", false)

	figures := []struct{ value, label string }{
		{im.PlasticKg + " kg", "Plastic Saved"},
		{im.CO2Tons + " tons", "CO2 Reduced"},
		{im.WaterLiters + " L", "Water Saved"},
	}
	colW := (ContentWidth - 10) / float64(len(figures))
	for i, f := range figures {
		x := MarginX + 5 + float64(i)*colW
		d.text(colorBrand, "B", 14)
		d.cell(x, p.Top+12, colW, 7, f.value, "C", false)
		d.text(colorMuted, "", 9)
		d.cell(x, p.Top+19, colW, 5, f.label, "C", false)
	}

	d.text(colorMuted, "I", 9)
	d.cell(MarginX+5, p.Top+26, ContentWidth-10, 6, im.Caption, "C", false)
}

func (d *drawer) footer(page int) {
	d.pdf.SetDrawColor(colorRule.R, colorRule.G, colorRule.B)
	d.pdf.Line(MarginX, FooterTop, PageWidth-MarginX, FooterTop)

	y := FooterTop + 2
	for i, line := range d.doc.Footer.Lines {
		style := ""
		if i == 0 {
			style = "B"
		}
		d.text(colorMuted, style, 9)
		d.cell(MarginX, y, ContentWidth, 5, line, "C", false)
		y += 5
	}
	if d.doc.Layout.Pages > 1 {
		d.text(colorMuted, "", 8)
		d.cell(MarginX, y, ContentWidth, 5, fmt.Sprintf("Page %d of %d", page+1, d.doc.Layout.Pages), "R", false)
	}
}
