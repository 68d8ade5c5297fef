package domain

import (
	"context"
	"strings"
)

// ReviseTypeCode is the gateway code selecting a cancel or refund operation.
type ReviseTypeCode string

const (
	ReviseFullCancel          ReviseTypeCode = "40"
	RevisePartialCancel       ReviseTypeCode = "32"
	RevisePartialCancelLegacy ReviseTypeCode = "33" // reserved partial cancel, only on explicit request
	ReviseFullRefund          ReviseTypeCode = "60"
	RevisePartialRefund       ReviseTypeCode = "62"
	ReviseImmediateRefund     ReviseTypeCode = "63"
)

// Sub-type codes
const (
	ReviseSubTypeImmediateFull    = "10"
	ReviseSubTypeImmediatePartial = "11"
	ReviseSubTypeDeferredDefault  = "RF01"
)

func (c ReviseTypeCode) IsCancel() bool {
	switch c {
	case ReviseFullCancel, RevisePartialCancel, RevisePartialCancelLegacy:
		return true
	}
	return false
}

func (c ReviseTypeCode) IsRefund() bool {
	switch c {
	case ReviseFullRefund, RevisePartialRefund, ReviseImmediateRefund:
		return true
	}
	return false
}

func (c ReviseTypeCode) IsKnown() bool {
	return c.IsCancel() || c.IsRefund()
}

// RefundMode picks the path for a refund request. Auto lets the payment method decide.
type RefundMode string

const (
	RefundModeAuto      RefundMode = "auto"
	RefundModeCancel    RefundMode = "cancel"
	RefundModeDeferred  RefundMode = "deferred_refund"
	RefundModeImmediate RefundMode = "immediate_refund"
)

func ParseRefundMode(s string) (RefundMode, bool) {
	switch m := RefundMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return RefundModeAuto, true
	case RefundModeAuto, RefundModeCancel, RefundModeDeferred, RefundModeImmediate:
		return m, true
	}
	return "", false
}

// RefundBankInfo is the destination account for non-card refunds.
type RefundBankInfo struct {
	BankCode    string `json:"refundBankCode"`
	AccountNo   string `json:"refundAccountNo"`
	DepositName string `json:"refundDepositName"`
}

func (b *RefundBankInfo) Complete() bool {
	return b != nil &&
		strings.TrimSpace(b.BankCode) != "" &&
		strings.TrimSpace(b.AccountNo) != "" &&
		strings.TrimSpace(b.DepositName) != ""
}

// RefundRequest is what the operator asked for. Amount 0 means the whole remainder.
type RefundRequest struct {
	Amount            int64
	Reason            string
	Mode              RefundMode
	ReviseTypeCode    ReviseTypeCode
	ReviseSubTypeCode string
	RefundInfo        *RefundBankInfo
	ActorID           *string
}

// ReviseCommand is one of FullCancel, PartialCancel, FullRefund, PartialRefund
// or ImmediateRefund. Each variant carries only the fields its code needs.
type ReviseCommand interface {
	TypeCode() ReviseTypeCode
	SubTypeCode() string
	// RefundAmount is the requested amount for partial variants and 0 for full ones.
	RefundAmount() int64
	IsPartial() bool
	isReviseCommand()
}

type FullCancel struct{}

func (FullCancel) TypeCode() ReviseTypeCode { return ReviseFullCancel }
func (FullCancel) SubTypeCode() string      { return "" }
func (FullCancel) RefundAmount() int64      { return 0 }
func (FullCancel) IsPartial() bool          { return false }
func (FullCancel) isReviseCommand()         {}

type PartialCancel struct {
	Code         ReviseTypeCode // 32, or 33 when overridden
	Amount       int64
	RemainAmount int64
}

func (c PartialCancel) TypeCode() ReviseTypeCode {
	if c.Code == RevisePartialCancelLegacy {
		return c.Code
	}
	return RevisePartialCancel
}
func (PartialCancel) SubTypeCode() string   { return "" }
func (c PartialCancel) RefundAmount() int64 { return c.Amount }
func (PartialCancel) IsPartial() bool       { return true }
func (PartialCancel) isReviseCommand()      {}

type FullRefund struct {
	SubType string
	Account RefundBankInfo
}

func (FullRefund) TypeCode() ReviseTypeCode { return ReviseFullRefund }
func (c FullRefund) SubTypeCode() string    { return c.SubType }
func (FullRefund) RefundAmount() int64      { return 0 }
func (FullRefund) IsPartial() bool          { return false }
func (FullRefund) isReviseCommand()         {}

type PartialRefund struct {
	SubType string
	Amount  int64
	Account RefundBankInfo
}

func (PartialRefund) TypeCode() ReviseTypeCode { return RevisePartialRefund }
func (c PartialRefund) SubTypeCode() string    { return c.SubType }
func (c PartialRefund) RefundAmount() int64    { return c.Amount }
func (PartialRefund) IsPartial() bool          { return true }
func (PartialRefund) isReviseCommand()         {}

// ImmediateRefund is code 63. Amount 0 means full.
type ImmediateRefund struct {
	Amount  int64
	Account RefundBankInfo
}

func (ImmediateRefund) TypeCode() ReviseTypeCode { return ReviseImmediateRefund }
func (c ImmediateRefund) SubTypeCode() string {
	if c.IsPartial() {
		return ReviseSubTypeImmediatePartial
	}
	return ReviseSubTypeImmediateFull
}
func (c ImmediateRefund) RefundAmount() int64 { return c.Amount }
func (c ImmediateRefund) IsPartial() bool     { return c.Amount > 0 }
func (ImmediateRefund) isReviseCommand()      {}

// ReviseRequest is the envelope sent to the gateway. It is never stored.
type ReviseRequest struct {
	MallID            string
	ShopTransactionID string
	PgCno             string
	CancelReqDate     string // yyyyMMdd, Asia/Seoul
	Message           string
	Command           ReviseCommand
}

// ReviseResult is a successful (0000) gateway answer.
type ReviseResult struct {
	ResCd  string  `json:"resCd"`
	ResMsg string  `json:"resMsg"`
	Raw    RawJSON `json:"-"`
}

type TransactionResult struct {
	ResCd  string  `json:"resCd"`
	ResMsg string  `json:"resMsg"`
	PgCno  string  `json:"pgCno"`
	Raw    RawJSON `json:"-"`
}

type PaymentGateway interface {
	Revise(ctx context.Context, req *ReviseRequest) (*ReviseResult, error)
	// RetrieveTransaction looks a payment up by the shop's own transaction id and its yyyyMMdd date.
	RetrieveTransaction(ctx context.Context, shopTransactionID, transactionDate string) (*TransactionResult, error)
}
