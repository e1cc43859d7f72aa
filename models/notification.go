package models

import "time"

// OwnerMessage is a note a worker leaves for the owners, e.g. a stock request.
type OwnerMessage struct {
	ID         string    `json:"id" bson:"_id"`
	WorkerID   string    `json:"workerId" bson:"workerId"`
	WorkerName string    `json:"workerName" bson:"workerName"`
	BranchID   string    `json:"branchId,omitempty" bson:"branchId,omitempty"`
	Body       string    `json:"body" bson:"body"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

type OwnerMessageRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}
