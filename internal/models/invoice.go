package models

// BatchInvoiceRequest represents a download-all request. Either Orders or
// OrderIDs is used; Orders wins when both are present.
type BatchInvoiceRequest struct {
	Orders   []Order  `json:"orders"`
	OrderIDs []string `json:"order_ids"`
}

// BatchInvoiceResponse represents the response after scheduling a batch
type BatchInvoiceResponse struct {
	RunID      string `json:"run_id,omitempty"`
	Status     string `json:"status"`
	Scheduled  int    `json:"scheduled"`
	IntervalMS int64  `json:"interval_ms"`
	Message    string `json:"message,omitempty"`
}

// Batch status constants
const (
	BatchStatusScheduled   = "scheduled"
	BatchStatusNothingToDo = "nothing_to_do"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
