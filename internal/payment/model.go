package payment

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

const (
	MethodCreditCard = "credit_card"
	MethodDebitCard  = "debit_card"
	MethodUPI        = "upi"
	MethodNetBanking = "net_banking"
	MethodWallet     = "wallet"
	MethodCOD        = "cod"
)

// Payment is one settlement attempt against an order. Failed attempts are
// persisted too, for audit; only the COMPLETED record may move to REFUNDED.
type Payment struct {
	ID                  uuid.UUID       `json:"id"`
	OrderID             uuid.UUID       `json:"order_id"`
	TransactionID       string          `json:"transaction_id"`
	Amount              float64         `json:"amount"`
	Method              string          `json:"method"`
	Status              Status          `json:"status"`
	GatewayResponse     json.RawMessage `json:"gateway_response,omitempty"`
	RefundAmount        float64         `json:"refund_amount"`
	RefundTransactionID *string         `json:"refund_transaction_id,omitempty"`
	RefundedAt          *time.Time      `json:"refunded_at,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}
