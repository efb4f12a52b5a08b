package invoice

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/models"
)

// Currency is the fixed label printed next to every monetary value
const Currency = "INR"

const (
	longDateLayout   = "January 2, 2006"
	invoiceNumberLen = 8
	addressWrapWidth = 60
)

// Per-unit impact factors
var (
	plasticKgPerUnit   = decimal.NewFromInt(2)
	co2TonsPerUnit     = decimal.RequireFromString("0.007")
	waterLitersPerUnit = decimal.NewFromInt(30)
)

// RGB is a color in 0-255 components
type RGB struct {
	R, G, B int
}

// Status label palette
var (
	ColorDelivered  = RGB{22, 163, 74}
	ColorShipped    = RGB{147, 51, 234}
	ColorProcessing = RGB{37, 99, 235}
	ColorDefault    = RGB{217, 119, 6}
)

// Header is the fixed block at the top of the first page
type Header struct {
	Brand         string `json:"brand"`
	Tagline       string `json:"tagline"`
	Title         string `json:"title"`
	InvoiceNumber string `json:"invoice_number"`
	IssuedOn      string `json:"issued_on"`
	DeliveredOn   string `json:"delivered_on,omitempty"`
	Status        string `json:"status"`
	StatusColor   RGB    `json:"status_color"`
}

// Customer is the bill-to block. Address holds the wrapped address lines and
// Location is empty when no city, district or state is known.
type Customer struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Address  []string `json:"address"`
	Location string   `json:"location,omitempty"`
}

// Lines returns the customer lines in drawing order
func (c Customer) Lines() []string {
	lines := make([]string, 0, 4+len(c.Address))
	lines = append(lines, c.Name, c.Email, "Phone: "+c.Phone)
	for i, l := range c.Address {
		if i == 0 {
			l = "Address: " + l
		}
		lines = append(lines, l)
	}
	if c.Location != "" {
		lines = append(lines, c.Location)
	}
	return lines
}

// LineRow is one row of the line-item table, already formatted
type LineRow struct {
	Product   string `json:"product"`
	Quantity  string `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Total     string `json:"total"`
}

// Summary holds the formatted money totals
type Summary struct {
	Currency string `json:"currency"`
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

// Impact holds the environmental figures derived from the total quantity
type Impact struct {
	Quantity    int    `json:"quantity"`
	PlasticKg   string `json:"plastic_kg"`
	CO2Tons     string `json:"co2_tons"`
	WaterLiters string `json:"water_liters"`
	Caption     string `json:"caption"`
}

// Footer is the static closing block drawn on every page
type Footer struct {
	Lines []string `json:"lines"`
}

// Document is the in-memory invoice: resolved content plus its layout.
// It is built fresh per order and discarded once rendered.
type Document struct {
	Filename  string    `json:"filename"`
	CreatedAt time.Time `json:"created_at"`
	Header    Header    `json:"header"`
	Customer  Customer  `json:"customer"`
	Rows      []LineRow `json:"rows"`
	Summary   Summary   `json:"summary"`
	Impact    Impact    `json:"impact"`
	Footer    Footer    `json:"footer"`
	Layout    Layout    `json:"layout"`
}

// InvoiceNumber is the first eight characters of the order id, upper-cased
func InvoiceNumber(orderID string) string {
	r := []rune(orderID)
	if len(r) > invoiceNumberLen {
		r = r[:invoiceNumberLen]
	}
	return strings.ToUpper(string(r))
}

// StatusColor maps an order status to its label color
func StatusColor(status models.OrderStatus) RGB {
	switch status {
	case models.OrderStatusDelivered:
		return ColorDelivered
	case models.OrderStatusShipped:
		return ColorShipped
	case models.OrderStatusProcessing:
		return ColorProcessing
	default:
		return ColorDefault
	}
}

func buildHeader(order *models.Order, brand Brand) Header {
	h := Header{
		Brand:         brand.Name,
		Tagline:       brand.Tagline,
		Title:         "INVOICE",
		InvoiceNumber: InvoiceNumber(order.ID),
		IssuedOn:      formatDate(order.CreatedAt),
		Status:        string(order.Status),
		StatusColor:   StatusColor(order.Status),
	}
	if h.Status == "" {
		h.Status = Placeholder
	}
	if order.DeliveryDate != nil && !order.DeliveryDate.IsZero() {
		h.DeliveredOn = formatDate(*order.DeliveryDate)
	}
	return h
}

func buildCustomer(order *models.Order) Customer {
	return Customer{
		Name:     resolveOrPlaceholder(order, FieldName),
		Email:    resolveOrPlaceholder(order, FieldEmail),
		Phone:    resolveOrPlaceholder(order, FieldPhone),
		Address:  wrapText(resolveOrPlaceholder(order, FieldAddress), addressWrapWidth),
		Location: resolveLocation(order),
	}
}

// buildRows produces one row per item, or a single synthesized row for
// legacy single-product orders. Line totals are not checked against Amount.
func buildRows(order *models.Order) []LineRow {
	if order.IsMultiItem() {
		rows := make([]LineRow, 0, len(order.Items))
		for _, item := range order.Items {
			rows = append(rows, LineRow{
				Product:   productName(item.Product),
				Quantity:  strconv.Itoa(item.Quantity),
				UnitPrice: formatMoney(item.UnitPrice),
				Total:     formatMoney(item.TotalPrice),
			})
		}
		return rows
	}

	unitPrice := Placeholder
	if order.Quantity > 0 {
		unitPrice = formatMoney(order.Amount.Div(decimal.NewFromInt(int64(order.Quantity))))
	}
	return []LineRow{{
		Product:   productName(order.Product),
		Quantity:  strconv.Itoa(order.Quantity),
		UnitPrice: unitPrice,
		Total:     formatMoney(order.Amount),
	}}
}

func buildSummary(order *models.Order) Summary {
	subtotal := order.Amount
	tax := decimal.Zero
	return Summary{
		Currency: Currency,
		Subtotal: formatMoney(subtotal),
		Tax:      formatMoney(tax),
		Total:    formatMoney(subtotal.Add(tax)),
	}
}

func buildImpact(order *models.Order, caption string) Impact {
	q := order.TotalQuantity()
	units := decimal.NewFromInt(int64(q))
	return Impact{
		Quantity:    q,
		PlasticKg:   units.Mul(plasticKgPerUnit).StringFixed(0),
		CO2Tons:     units.Mul(co2TonsPerUnit).StringFixed(2),
		WaterLiters: units.Mul(waterLitersPerUnit).StringFixed(0),
		Caption:     caption,
	}
}

func productName(p *models.ProductRef) string {
	if p == nil || strings.TrimSpace(p.Name) == "" {
		return Placeholder
	}
	return strings.TrimSpace(p.Name)
}

func formatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	return t.Format(longDateLayout)
}

// wrapText splits s on word boundaries into lines of at most width runes.
// Words longer than width are hard-split.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return []string{Placeholder}
	}

	var lines []string
	var current []rune
	for _, w := range words {
		word := []rune(w)
		for len(word) > width {
			if len(current) > 0 {
				lines = append(lines, string(current))
				current = nil
			}
			lines = append(lines, string(word[:width]))
			word = word[width:]
		}
		switch {
		case len(current) == 0:
			current = append(current, word...)
		case len(current)+1+len(word) <= width:
			current = append(current, ' ')
			current = append(current, word...)
		default:
			lines = append(lines, string(current))
			current = append([]rune(nil), word...)
		}
	}
	if len(current) > 0 {
		lines = append(lines, string(current))
	}
	return lines
}
