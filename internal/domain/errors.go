package domain

import (
	"errors"
	"fmt"
)

// Refund flow
var (
	ErrMissingOrderID           = errors.New("order id is required")
	ErrOrderNotFound            = errors.New("order not found")
	ErrMissingApprovalReference = errors.New("payment approval reference (pgCno) not available")
	ErrMissingRefundInfo        = errors.New("refund bank account is required for non-card payments")
	ErrInvalidAmount            = errors.New("invalid refund amount")
	ErrUnsupportedPath          = errors.New("operation not supported for this payment method")
	ErrOrderClosed              = errors.New("order is already cancelled")
	ErrRefundConflict           = errors.New("order was modified concurrently")
	ErrGatewayUnavailable       = errors.New("payment gateway request failed")
)

// Lead wizard
var (
	ErrSessionNotFound    = errors.New("lead session not found or expired")
	ErrUnknownStep        = errors.New("unknown lead step")
	ErrStepOutOfOrder     = errors.New("step is ahead of the current step")
	ErrLeadIncomplete     = errors.New("lead is missing required answers")
	ErrLeadNotFound       = errors.New("lead not found")
	ErrInvalidLeadStatus  = errors.New("invalid lead status")
	ErrTooManyReferences  = errors.New("too many reference images")
	ErrUploadsUnavailable = errors.New("image uploads are not configured")
)

// ValidationError wraps field errors from request validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// GatewayError is a revise the gateway answered with a result code other than 0000.
type GatewayError struct {
	ResCd  string
	ResMsg string
	Raw    RawJSON
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway rejected request: %s %s", e.ResCd, e.ResMsg)
}

// PersistAfterReviseError means the gateway accepted the revise but the local write failed.
// The order row no longer matches gateway truth until an operator reconciles it.
type PersistAfterReviseError struct {
	OrderID string
	Revise  *ReviseResult
	Err     error
}

func (e *PersistAfterReviseError) Error() string {
	return fmt.Sprintf("order %s: gateway revise succeeded but persist failed: %v", e.OrderID, e.Err)
}

func (e *PersistAfterReviseError) Unwrap() error {
	return e.Err
}
