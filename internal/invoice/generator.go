// Package invoice turns an order into a printable PDF invoice.
//
// Generation has two steps. Build resolves every field of the order through
// the contact fallback chains, formats the line items, totals and impact
// figures, and flows the blocks down the page. Render serializes the
// resulting Document. Build never fails and never touches the input order.
package invoice

import (
	"errors"
	"fmt"
	"time"

	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/metrics"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/models"
)

var (
	// ErrNilOrder is returned when Generate is called without an order
	ErrNilOrder = errors.New("invoice: nil order")
	// ErrGenerationFailed wraps any failure of the rendering backend
	ErrGenerationFailed = errors.New("invoice: generation failed")
)

// ContentTypePDF is the media type of rendered artifacts
const ContentTypePDF = "application/pdf"

// Brand is the fixed identity printed on every invoice
type Brand struct {
	Name          string
	Tagline       string
	ImpactCaption string
	FooterLines   []string
}

// DefaultBrand is the GreenVerse identity
var DefaultBrand = Brand{
	Name:          "GreenVerse",
	Tagline:       "Sustainable Tableware Solutions",
	ImpactCaption: "Thank you for choosing sustainable products and helping protect our planet!",
	FooterLines: []string{
		"Thank you for your business!",
		"GreenVerse | support@greenverse.in | +91 98765 43210",
		"This is a computer-generated invoice and does not require a signature.",
	},
}

// Renderer serializes a laid-out Document
type Renderer interface {
	Render(doc *Document) ([]byte, error)
	Extension() string
	ContentType() string
}

// Artifact is a rendered invoice ready to be handed to the user
type Artifact struct {
	OrderID       string
	InvoiceNumber string
	Filename      string
	ContentType   string
	Content       []byte
}

// Generator builds and renders invoices. It holds no per-order state and is
// safe for concurrent use.
type Generator struct {
	brand    Brand
	renderer Renderer
}

// Option configures a Generator
type Option func(*Generator)

// WithBrand overrides the printed identity
func WithBrand(b Brand) Option {
	return func(g *Generator) { g.brand = b }
}

// WithRenderer overrides the serialization backend
func WithRenderer(r Renderer) Option {
	return func(g *Generator) { g.renderer = r }
}

// NewGenerator creates a generator rendering PDFs with the default brand
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		brand:    DefaultBrand,
		renderer: NewPDFRenderer(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Filename returns the artifact name for an order:
// <Brand>_Invoice_<first 8 chars of id, upper-cased>.<ext>
func (g *Generator) Filename(order *models.Order) string {
	return fmt.Sprintf("%s_Invoice_%s.%s", g.brand.Name, InvoiceNumber(order.ID), g.renderer.Extension())
}

// Build resolves and lays out the invoice for order
func (g *Generator) Build(order *models.Order) *Document {
	doc := &Document{
		Filename:  g.Filename(order),
		CreatedAt: order.CreatedAt,
		Header:    buildHeader(order, g.brand),
		Customer:  buildCustomer(order),
		Rows:      buildRows(order),
		Summary:   buildSummary(order),
		Impact:    buildImpact(order, g.brand.ImpactCaption),
		Footer:    Footer{Lines: append([]string(nil), g.brand.FooterLines...)},
	}
	doc.Layout = computeLayout(len(doc.Customer.Lines()), len(doc.Rows))
	return doc
}

// Generate builds and renders the invoice for order
func (g *Generator) Generate(order *models.Order) (*Artifact, error) {
	if order == nil {
		return nil, ErrNilOrder
	}

	start := time.Now()
	doc := g.Build(order)

	content, err := g.renderer.Render(doc)
	metrics.InvoiceRenderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.InvoicesGenerated.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("%w: order %s: %v", ErrGenerationFailed, order.ID, err)
	}
	metrics.InvoicesGenerated.WithLabelValues("success").Inc()

	return &Artifact{
		OrderID:       order.ID,
		InvoiceNumber: doc.Header.InvoiceNumber,
		Filename:      doc.Filename,
		ContentType:   g.renderer.ContentType(),
		Content:       content,
	}, nil
}
