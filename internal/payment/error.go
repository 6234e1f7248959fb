package payment

import "errors"

var (
	ErrAlreadyPaid     = errors.New("order is already paid")
	ErrPaymentFailed   = errors.New("payment failed")
	ErrNoPayment       = errors.New("no completed payment found for this order")
	ErrAlreadyRefunded = errors.New("payment already refunded")
	ErrRefundFailed    = errors.New("refund failed")
	ErrPaymentNotFound = errors.New("no payment found for this order")
	ErrForbidden       = errors.New("not authorized to settle this order")
)
