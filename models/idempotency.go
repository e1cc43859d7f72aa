package models

const (
	AttemptPending = "pending"
	AttemptDone    = "done"
	AttemptPartial = "partial"
)

// SaleAttempt is what is remembered about one idempotency key.
type SaleAttempt struct {
	State       string       `json:"state"`
	Fingerprint string       `json:"fingerprint"`
	Receipt     *SaleReceipt `json:"receipt,omitempty"`
	Detail      string       `json:"detail,omitempty"`
}
