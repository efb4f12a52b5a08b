package invoice

import (
	"strings"

	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/models"
)

// Placeholder is rendered for any missing scalar value
const Placeholder = "N/A"

// Contact fields resolved through fallbackChains
const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPhone    = "phone"
	FieldAddress  = "address"
	FieldCity     = "city"
	FieldDistrict = "district"
	FieldState    = "state"
)

// fallbackChains lists, per contact field, the candidate paths probed in order.
// The first non-blank value wins.
var fallbackChains = map[string][]string{
	FieldName:  {"user.name"},
	FieldEmail: {"user.email"},
	FieldPhone: {
		"profile.phone",
		"profile.phone_number",
		"user.phone",
		"user.phone_number",
		"user.mobile",
		"profile.mobile",
	},
	FieldAddress: {
		"profile.address_line",
		"profile.address",
		"user.address_line",
		"user.address",
		"profile.street",
		"user.street",
	},
	FieldCity:     {"profile.city", "user.city"},
	FieldDistrict: {"profile.district", "user.district"},
	FieldState:    {"profile.state", "user.state"},
}

// locationParts are joined in this order to build the location line
var locationParts = []string{FieldCity, FieldDistrict, FieldState}

var contactAccessors = map[string]func(c *models.Contact) string{
	"name":         func(c *models.Contact) string { return c.Name },
	"email":        func(c *models.Contact) string { return c.Email },
	"phone":        func(c *models.Contact) string { return c.Phone },
	"phone_number": func(c *models.Contact) string { return c.PhoneNumber },
	"mobile":       func(c *models.Contact) string { return c.Mobile },
	"address":      func(c *models.Contact) string { return c.Address },
	"address_line": func(c *models.Contact) string { return c.AddressLine },
	"street":       func(c *models.Contact) string { return c.Street },
	"city":         func(c *models.Contact) string { return c.City },
	"district":     func(c *models.Contact) string { return c.District },
	"state":        func(c *models.Contact) string { return c.State },
}

// lookupPath reads a "source.field" path from the order. Missing records and
// unknown paths read as empty.
func lookupPath(order *models.Order, path string) string {
	source, field, ok := strings.Cut(path, ".")
	if !ok {
		return ""
	}

	var record *models.Contact
	switch source {
	case "user":
		record = order.User
	case "profile":
		record = order.Profile
	}
	if record == nil {
		return ""
	}

	get, ok := contactAccessors[field]
	if !ok {
		return ""
	}
	return strings.TrimSpace(get(record))
}

// resolveField returns the first non-blank candidate for field, and whether
// one was found.
func resolveField(order *models.Order, field string) (string, bool) {
	for _, path := range fallbackChains[field] {
		if v := lookupPath(order, path); v != "" {
			return v, true
		}
	}
	return "", false
}

// resolveOrPlaceholder is resolveField with the "N/A" default applied
func resolveOrPlaceholder(order *models.Order, field string) string {
	if v, ok := resolveField(order, field); ok {
		return v
	}
	return Placeholder
}

// resolveLocation joins the non-empty city, district and state. An empty
// result means the location line is not rendered at all.
func resolveLocation(order *models.Order) string {
	parts := make([]string, 0, len(locationParts))
	for _, field := range locationParts {
		if v, ok := resolveField(order, field); ok {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}
