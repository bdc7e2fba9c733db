package transport

import "encoding/json"

const (
	ResourceFood  = "food"
	ResourceOffer = "offer"

	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

type SyncOperation struct {
	IdempotencyKey string          `json:"idempotencyKey" validate:"required,max=64"`
	Resource       string          `json:"resource"       validate:"required,oneof=food offer"`
	Action         string          `json:"action"         validate:"required,oneof=create update delete"`
	ID             string          `json:"id"             validate:"required_unless=Action create"`
	Payload        json.RawMessage `json:"payload"`
}

type SyncRequest struct {
	Operations []SyncOperation `json:"operations" validate:"required,min=1,dive"`
}

// SyncResult is the outcome of one operation. Pending marks a key another
// request is still applying; the client should send it again later.
type SyncResult struct {
	IdempotencyKey string          `json:"idempotencyKey"`
	Status         int             `json:"status"`
	Replayed       bool            `json:"replayed"`
	Pending        bool            `json:"pending,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
	Message        string          `json:"message,omitempty"`
}
