package models

// Contact is a customer contact record. The order API returns it twice per
// order (as "user" and as "profile") and the two sources populate different,
// overlapping subsets of these fields.
type Contact struct {
	Name        string `json:"name,omitempty"`
	Email       string `json:"email,omitempty"`
	Phone       string `json:"phone,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Mobile      string `json:"mobile,omitempty"`
	Address     string `json:"address,omitempty"`
	AddressLine string `json:"address_line,omitempty"`
	Street      string `json:"street,omitempty"`
	City        string `json:"city,omitempty"`
	District    string `json:"district,omitempty"`
	State       string `json:"state,omitempty"`
}
