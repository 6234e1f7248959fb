package payment

import (
	"context"
	"encoding/json"
)

// CaptureResult is the gateway's definitive answer to a capture request.
// Success=false is a decline, not a transport failure; transport failures
// come back as errors and are treated as internal.
type CaptureResult struct {
	Success       bool            `json:"success"`
	TransactionID string          `json:"transaction_id"`
	Message       string          `json:"message"`
	Raw           json.RawMessage `json:"-"`
}

type RefundResult struct {
	Success             bool   `json:"success"`
	RefundTransactionID string `json:"refund_transaction_id"`
	Message             string `json:"message"`
}

// Gateway is the external payment processor. Both calls are at-most-once
// from this engine's perspective: no retry on timeout, a timeout surfaces
// as a failure and is never assumed successful.
type Gateway interface {
	Capture(ctx context.Context, amount float64, method string) (*CaptureResult, error)
	Refund(ctx context.Context, transactionID string, amount float64) (*RefundResult, error)
}
