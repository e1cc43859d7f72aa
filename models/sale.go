package models

import "time"

// TimestampLayout is the ISO-8601 form sales are stored with. It is fixed
// width in UTC so string comparison orders timestamps correctly.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Sale is an immutable ledger entry nested under its branch.
type Sale struct {
	ID        string  `json:"id" bson:"_id"`
	ProductID string  `json:"productId" bson:"productId"`
	Category  string  `json:"category" bson:"category"`
	BranchID  string  `json:"branchId" bson:"branchId"`
	WorkerID  string  `json:"workerId" bson:"workerId"`
	Price     float64 `json:"price" bson:"price"`
	Quantity  int     `json:"quantity" bson:"quantity"`
	Timestamp string  `json:"timestamp" bson:"timestamp"`
}

// Amount is the derived line total; it is never persisted.
func (s Sale) Amount() float64 {
	return s.Price * float64(s.Quantity)
}

// Time parses the stored timestamp. Older documents written with a
// different ISO-8601 precision are accepted too.
func (s Sale) Time() (time.Time, error) {
	if t, err := time.Parse(TimestampLayout, s.Timestamp); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s.Timestamp)
}

// FormatTimestamp renders t the way sales are stored.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// SaleFilter narrows a ledger read. Zero values mean no constraint.
type SaleFilter struct {
	WorkerID string
	From     time.Time // inclusive
	To       time.Time // exclusive
}

// RecordSaleRequest is the body of a sale submission
type RecordSaleRequest struct {
	Quantity int `json:"quantity"`
}

// SaleReceipt is returned once a sale is committed.
type SaleReceipt struct {
	SaleID string `json:"saleId"`
	Stock  int    `json:"stock"`
	Sale   Sale   `json:"sale"`
}

// SaleView is a sale joined with its item and worker at read time.
type SaleView struct {
	Sale
	Amount       float64  `json:"amount"`
	ProductBrand string   `json:"productBrand"`
	ProductModel string   `json:"productModel"`
	ProductPrice *float64 `json:"productPrice,omitempty"`
	WorkerName   string   `json:"workerName"`
	SoldBy       string   `json:"soldBy"`
}
