package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tkaykim/modoouniformshop-sub000/internal/domain"
)

// KST is the gateway's business timezone; request dates are KST calendar days.
var KST = time.FixedZone("KST", 9*60*60)

const gatewayDateLayout = "20060102"

// RefundBuilder turns an order and an operator request into a gateway revise request.
// It never touches storage.
type RefundBuilder struct {
	mallID string
	now    func() time.Time
	newTx  func(now time.Time) string
}

func NewRefundBuilder(mallID string) *RefundBuilder {
	return &RefundBuilder{
		mallID: mallID,
		now:    time.Now,
		newTx:  newShopTransactionID,
	}
}

// newShopTransactionID is date-prefixed so it stays unique within the gateway's daily window.
func newShopTransactionID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return now.In(KST).Format(gatewayDateLayout) + strings.ToUpper(suffix)
}

// Build selects the revise variant and wraps it in a request envelope.
func (b *RefundBuilder) Build(order *domain.Order, pgCno string, req domain.RefundRequest) (*domain.ReviseRequest, error) {
	if order.TotalAmount <= 0 {
		return nil, fmt.Errorf("order total %d: %w", order.TotalAmount, domain.ErrInvalidAmount)
	}
	if strings.TrimSpace(pgCno) == "" {
		return nil, domain.ErrMissingApprovalReference
	}

	cmd, err := SelectReviseCommand(order, req)
	if err != nil {
		return nil, err
	}
	return b.Envelope(pgCno, cmd, req.Reason), nil
}

// Envelope wraps an already selected command with the per-request fields.
func (b *RefundBuilder) Envelope(pgCno string, cmd domain.ReviseCommand, reason string) *domain.ReviseRequest {
	now := b.now()
	return &domain.ReviseRequest{
		MallID:            b.mallID,
		ShopTransactionID: b.newTx(now),
		PgCno:             pgCno,
		CancelReqDate:     now.In(KST).Format(gatewayDateLayout),
		Message:           reason,
		Command:           cmd,
	}
}

// SelectReviseCommand applies the cancel/refund decision rules.
// Card orders can only be cancelled; every other method can only be refunded to a bank account.
func SelectReviseCommand(order *domain.Order, req domain.RefundRequest) (domain.ReviseCommand, error) {
	if order.TotalAmount <= 0 {
		return nil, fmt.Errorf("order total %d: %w", order.TotalAmount, domain.ErrInvalidAmount)
	}

	amount := req.Amount
	switch {
	case amount < 0:
		return nil, fmt.Errorf("amount %d is negative: %w", amount, domain.ErrInvalidAmount)
	case amount >= order.TotalAmount:
		return nil, fmt.Errorf("partial amount %d must be below total %d: %w", amount, order.TotalAmount, domain.ErrInvalidAmount)
	case amount > order.RefundableAmount():
		return nil, fmt.Errorf("amount %d exceeds refundable %d: %w", amount, order.RefundableAmount(), domain.ErrInvalidAmount)
	case order.RefundableAmount() == 0:
		return nil, fmt.Errorf("nothing left to refund: %w", domain.ErrInvalidAmount)
	}
	partial := amount > 0

	mode := req.Mode
	if mode == "" {
		mode = domain.RefundModeAuto
	}
	override := domain.ReviseTypeCode(strings.TrimSpace(string(req.ReviseTypeCode)))
	if override != "" && !override.IsKnown() {
		return nil, fmt.Errorf("revise type code %q: %w", override, domain.ErrUnsupportedPath)
	}

	if order.IsCard() {
		return selectCardCancel(order, amount, partial, mode, override)
	}
	return selectBankRefund(amount, partial, mode, override, req)
}

func selectCardCancel(order *domain.Order, amount int64, partial bool, mode domain.RefundMode, override domain.ReviseTypeCode) (domain.ReviseCommand, error) {
	if mode != domain.RefundModeAuto && mode != domain.RefundModeCancel {
		return nil, fmt.Errorf("mode %s on card order: %w", mode, domain.ErrUnsupportedPath)
	}
	if override.IsRefund() {
		return nil, fmt.Errorf("revise type %s on card order: %w", override, domain.ErrUnsupportedPath)
	}

	if !partial {
		if override != "" && override != domain.ReviseFullCancel {
			return nil, fmt.Errorf("revise type %s needs an amount: %w", override, domain.ErrInvalidAmount)
		}
		return domain.FullCancel{}, nil
	}

	if override == domain.ReviseFullCancel {
		return nil, fmt.Errorf("full cancel takes no amount: %w", domain.ErrInvalidAmount)
	}
	remain := order.TotalAmount - order.RefundedAmount - amount
	if remain < 0 {
		remain = 0
	}
	return domain.PartialCancel{
		Code:         partialCancelCode(override),
		Amount:       amount,
		RemainAmount: remain,
	}, nil
}

func partialCancelCode(override domain.ReviseTypeCode) domain.ReviseTypeCode {
	if override == domain.RevisePartialCancelLegacy {
		return override
	}
	return domain.RevisePartialCancel
}

func selectBankRefund(amount int64, partial bool, mode domain.RefundMode, override domain.ReviseTypeCode, req domain.RefundRequest) (domain.ReviseCommand, error) {
	if mode == domain.RefundModeCancel || override.IsCancel() {
		return nil, fmt.Errorf("cancel on non-card order: %w", domain.ErrUnsupportedPath)
	}
	if !req.RefundInfo.Complete() {
		return nil, domain.ErrMissingRefundInfo
	}
	account := *req.RefundInfo

	immediate := mode == domain.RefundModeImmediate
	switch override {
	case domain.ReviseImmediateRefund:
		if mode == domain.RefundModeDeferred {
			return nil, fmt.Errorf("revise type 63 with deferred mode: %w", domain.ErrUnsupportedPath)
		}
		immediate = true
	case domain.ReviseFullRefund, domain.RevisePartialRefund:
		if immediate {
			return nil, fmt.Errorf("revise type %s with immediate mode: %w", override, domain.ErrUnsupportedPath)
		}
		if (override == domain.ReviseFullRefund) == partial {
			return nil, fmt.Errorf("revise type %s does not match amount %d: %w", override, amount, domain.ErrInvalidAmount)
		}
	}

	if immediate {
		return domain.ImmediateRefund{Amount: amount, Account: account}, nil
	}

	subType := strings.TrimSpace(req.ReviseSubTypeCode)
	if subType == "" {
		subType = domain.ReviseSubTypeDeferredDefault
	}
	if partial {
		return domain.PartialRefund{SubType: subType, Amount: amount, Account: account}, nil
	}
	return domain.FullRefund{SubType: subType, Account: account}, nil
}

// ApplyRevise computes the order columns after the gateway accepted cmd.
func ApplyRevise(order *domain.Order, cmd domain.ReviseCommand, reason string) domain.OrderRefundUpdate {
	refunded := order.TotalAmount
	if cmd.IsPartial() {
		refunded = order.RefundedAmount + cmd.RefundAmount()
		if refunded > order.TotalAmount {
			refunded = order.TotalAmount
		}
	}

	status := domain.OrderStatusRefund
	if cmd.TypeCode() == domain.ReviseFullCancel {
		status = domain.OrderStatusCancelled
	}

	return domain.OrderRefundUpdate{
		RefundedAmount: refunded,
		Status:         status,
		PaymentStatus:  status,
		RefundReason:   reason,
	}
}
