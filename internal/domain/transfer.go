package domain

import "time"

type TransferStatus string

const (
	TransferStatusPending   TransferStatus = "PENDING"
	TransferStatusCompleted TransferStatus = "COMPLETED"
	TransferStatusCancelled TransferStatus = "CANCELLED"
	TransferStatusRejected  TransferStatus = "REJECTED"
)

type TransferRequest struct {
	ID                  string         `json:"id"`
	ISBN                string         `json:"isbn"`
	SourceBranchID      string         `json:"source_branch_id"`
	DestinationBranchID string         `json:"destination_branch_id"`
	RequestDate         time.Time      `json:"request_date"`
	CompletionDate      *time.Time     `json:"completion_date,omitempty"`
	Status              TransferStatus `json:"status"`
	Remarks             string         `json:"remarks"`
}

// IsClosed reports whether the request can no longer change state.
func (t *TransferRequest) IsClosed() bool {
	return t.Status != TransferStatusPending
}
