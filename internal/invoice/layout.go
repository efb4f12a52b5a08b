package invoice

// Page geometry in millimetres (A4 portrait)
const (
	PageWidth    = 210.0
	PageHeight   = 297.0
	MarginX      = 20.0
	MarginTop    = 20.0
	ContentWidth = PageWidth - 2*MarginX

	HeaderBottom  = 48.0
	CustomerTop   = 50.0
	CustomerLineH = 6.0
	TableMinTop   = 95.0
	BlockGap      = 10.0
	TableHeaderH  = 9.0
	TableRowH     = 8.0
	SummaryLineH  = 7.0
	SummaryLines  = 3
	ImpactHeight  = 34.0
	FooterTop     = 272.0
	ContentBottom = FooterTop - 4
)

// Block names a document block
type Block string

// Block constants
const (
	BlockHeader   Block = "header"
	BlockCustomer Block = "customer"
	BlockTable    Block = "table"
	BlockSummary  Block = "summary"
	BlockImpact   Block = "impact"
	BlockFooter   Block = "footer"
)

// Placement is where a block landed: page index (0-based) and vertical extent
type Placement struct {
	Block  Block   `json:"block"`
	Page   int     `json:"page"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Height of the placed block
func (p Placement) Height() float64 {
	return p.Bottom - p.Top
}

// TableSegment is the part of the line-item table drawn on one page. Every
// segment starts with its own header row.
type TableSegment struct {
	Placement
	FirstRow int `json:"first_row"`
	RowCount int `json:"row_count"`
}

// Layout is the result of flowing the blocks down the pages
type Layout struct {
	Pages    int            `json:"pages"`
	Header   Placement      `json:"header"`
	Customer Placement      `json:"customer"`
	Table    []TableSegment `json:"table"`
	Summary  Placement      `json:"summary"`
	Impact   Placement      `json:"impact"`
	Footer   Placement      `json:"footer"`
}

// TableTop is the top of the first table segment
func (l Layout) TableTop() float64 {
	if len(l.Table) == 0 {
		return 0
	}
	return l.Table[0].Top
}

// TableBottom is the bottom of the last table segment
func (l Layout) TableBottom() float64 {
	if len(l.Table) == 0 {
		return 0
	}
	return l.Table[len(l.Table)-1].Bottom
}

// cursor walks down the pages. place moves to a fresh page whenever the
// requested height does not fit above the footer.
type cursor struct {
	page int
	y    float64
}

func (c *cursor) fits(h float64) bool {
	return c.y+h <= ContentBottom
}

func (c *cursor) newPage() {
	c.page++
	c.y = MarginTop
}

func (c *cursor) place(block Block, h float64) Placement {
	if !c.fits(h) && c.y > MarginTop {
		c.newPage()
	}
	p := Placement{Block: block, Page: c.page, Top: c.y, Bottom: c.y + h}
	c.y = p.Bottom
	return p
}

// computeLayout flows the variable-height blocks. Header and footer are fixed;
// every other block starts from the previous block's actual bottom.
func computeLayout(customerLines, rowCount int) Layout {
	l := Layout{
		Header: Placement{Block: BlockHeader, Page: 0, Top: 0, Bottom: HeaderBottom},
	}

	c := &cursor{page: 0, y: CustomerTop}
	// heading plus one line per customer line
	l.Customer = c.place(BlockCustomer, float64(customerLines+1)*CustomerLineH)

	c.y = max(l.Customer.Bottom+BlockGap, TableMinTop)
	l.Table = flowTable(c, rowCount)

	c.y += BlockGap
	l.Summary = c.place(BlockSummary, SummaryLineH*SummaryLines)

	c.y += BlockGap
	l.Impact = c.place(BlockImpact, ImpactHeight)

	l.Pages = c.page + 1
	l.Footer = Placement{Block: BlockFooter, Page: l.Pages - 1, Top: FooterTop, Bottom: PageHeight}
	return l
}

func flowTable(c *cursor, rowCount int) []TableSegment {
	if !c.fits(TableHeaderH + TableRowH) {
		c.newPage()
	}

	seg := TableSegment{Placement: Placement{Block: BlockTable, Page: c.page, Top: c.y}}
	c.y += TableHeaderH

	var segments []TableSegment
	for i := 0; i < rowCount; i++ {
		if !c.fits(TableRowH) {
			seg.Bottom = c.y
			segments = append(segments, seg)

			c.newPage()
			seg = TableSegment{
				Placement: Placement{Block: BlockTable, Page: c.page, Top: c.y},
				FirstRow:  i,
			}
			c.y += TableHeaderH
		}
		c.y += TableRowH
		seg.RowCount++
	}
	seg.Bottom = c.y
	return append(segments, seg)
}
