package models

// CreditGrantPayload is the payload of a queued credit-grant notification.
type CreditGrantPayload struct {
	UserID        string  `json:"user_id"`
	Amount        float64 `json:"amount"`
	Kind          string  `json:"kind"`
	TransactionID string  `json:"transaction_id"`
}
