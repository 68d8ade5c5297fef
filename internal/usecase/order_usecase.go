package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tkaykim/modoouniformshop-sub000/internal/domain"
	"github.com/tkaykim/modoouniformshop-sub000/pkg/cache"
	"github.com/tkaykim/modoouniformshop-sub000/pkg/logger"
)

type OrderUsecase struct {
	orderRepo domain.OrderRepository
	gateway   domain.PaymentGateway
	txManager domain.TransactionManager
	cache     cache.CacheService
	builder   *RefundBuilder
	lookupTTL time.Duration
}

func NewOrderUsecase(repo domain.OrderRepository, gateway domain.PaymentGateway, txManager domain.TransactionManager, cache cache.CacheService, builder *RefundBuilder, lookupTTL time.Duration) *OrderUsecase {
	return &OrderUsecase{
		orderRepo: repo,
		gateway:   gateway,
		txManager: txManager,
		cache:     cache,
		builder:   builder,
		lookupTTL: lookupTTL,
	}
}

// RefundOutcome is what the operator gets back after an accepted revise.
type RefundOutcome struct {
	Order  *domain.Order        `json:"order"`
	Refund *domain.OrderRefund  `json:"refund"`
	Revise *domain.ReviseResult `json:"-"`
}

func (u *OrderUsecase) GetAllOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	return u.orderRepo.GetAll(ctx, filter)
}

func (u *OrderUsecase) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrMissingOrderID
	}
	return u.orderRepo.GetByID(ctx, id)
}

func (u *OrderUsecase) GetOrderHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	if _, err := u.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return u.orderRepo.GetOrderHistory(ctx, orderID)
}

func (u *OrderUsecase) GetRefunds(ctx context.Context, orderID string) ([]domain.OrderRefund, error) {
	if _, err := u.GetOrder(ctx, orderID); err != nil {
		return nil, err
	}
	return u.orderRepo.GetRefunds(ctx, orderID)
}

// GetPaymentTransaction reads the gateway's own record of the order's payment.
// Operators use it to reconcile after a persist failure.
func (u *OrderUsecase) GetPaymentTransaction(ctx context.Context, orderID string) (*domain.TransactionResult, error) {
	order, err := u.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ShopTransactionID == nil || *order.ShopTransactionID == "" {
		return nil, fmt.Errorf("order %s has no shop transaction id: %w", order.ID, domain.ErrMissingApprovalReference)
	}
	return u.gateway.RetrieveTransaction(ctx, *order.ShopTransactionID, transactionDate(order))
}

// RefundOrder cancels or refunds an order through the gateway and records the result.
// Nothing is written unless the gateway answers 0000.
func (u *OrderUsecase) RefundOrder(ctx context.Context, orderID string, req domain.RefundRequest) (*RefundOutcome, error) {
	log := logger.WithContext(ctx)

	order, err := u.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.IsClosed() {
		return nil, domain.ErrOrderClosed
	}

	// Validate before any remote call, including the approval lookup.
	cmd, err := SelectReviseCommand(order, req)
	if err != nil {
		return nil, err
	}

	pgCno, err := u.resolveApprovalReference(ctx, order)
	if err != nil {
		return nil, err
	}

	reviseReq := u.builder.Envelope(pgCno, cmd, req.Reason)
	result, err := u.gateway.Revise(ctx, reviseReq)
	if err != nil {
		log.Warn().Err(err).
			Str("order_id", order.ID).
			Str("revise_type_code", string(cmd.TypeCode())).
			Str("shop_transaction_id", reviseReq.ShopTransactionID).
			Msg("Revise not applied")
		return nil, err
	}

	update := ApplyRevise(order, cmd, req.Reason)
	refund := &domain.OrderRefund{
		OrderID:             order.ID,
		ReviseTypeCode:      string(cmd.TypeCode()),
		ReviseSubTypeCode:   optionalString(cmd.SubTypeCode()),
		Amount:              update.RefundedAmount - order.RefundedAmount,
		RefundedAmountAfter: update.RefundedAmount,
		Reason:              optionalString(req.Reason),
		ShopTransactionID:   reviseReq.ShopTransactionID,
		PgResponse:          result.Raw,
		CreatedBy:           req.ActorID,
	}

	err = u.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := u.orderRepo.ApplyRefund(txCtx, order.ID, order.RefundedAmount, update); err != nil {
			return err
		}
		if err := u.orderRepo.CreateRefund(txCtx, refund); err != nil {
			return err
		}

		prev := order.Status
		return u.orderRepo.CreateOrderHistory(txCtx, &domain.OrderHistory{
			OrderID:        order.ID,
			PreviousStatus: &prev,
			NewStatus:      update.Status,
			Reason:         optionalString(historyReason(cmd, refund.Amount, req.Reason)),
			CreatedBy:      req.ActorID,
		})
	})
	if err != nil {
		// The gateway already moved money. Everything needed to replay the write by hand goes to the log.
		log.Error().Err(err).
			Str("order_id", order.ID).
			Str("pg_cno", pgCno).
			Str("shop_transaction_id", reviseReq.ShopTransactionID).
			Str("revise_type_code", refund.ReviseTypeCode).
			Int64("expected_refunded_amount", order.RefundedAmount).
			Int64("refunded_amount", update.RefundedAmount).
			Str("status", update.Status).
			RawJSON("pg_response", result.Raw).
			Msg("Revise accepted by gateway but order update failed")
		return nil, &domain.PersistAfterReviseError{OrderID: order.ID, Revise: result, Err: err}
	}

	order.RefundedAmount = update.RefundedAmount
	order.Status = update.Status
	order.PaymentStatus = update.PaymentStatus
	// An empty reason keeps the stored one; the update query coalesces the same way.
	if update.RefundReason != "" {
		order.RefundReason = optionalString(update.RefundReason)
	}

	log.Info().
		Str("order_id", order.ID).
		Str("revise_type_code", refund.ReviseTypeCode).
		Int64("amount", refund.Amount).
		Int64("refunded_amount", order.RefundedAmount).
		Msg("Order revised")

	return &RefundOutcome{Order: order, Refund: refund, Revise: result}, nil
}

// resolveApprovalReference finds pgCno from the order row, then the payment payload,
// then a gateway lookup by shop transaction id. Lookups are cached; pgCno never changes.
func (u *OrderUsecase) resolveApprovalReference(ctx context.Context, order *domain.Order) (string, error) {
	if ref := order.StoredApprovalReference(); ref != "" {
		return ref, nil
	}

	key := "pgcno:" + order.ID
	if u.cache != nil {
		if v, ok := u.cache.Get(key); ok {
			if ref, ok := v.(string); ok && ref != "" {
				return ref, nil
			}
		}
	}

	if order.ShopTransactionID == nil || *order.ShopTransactionID == "" {
		return "", domain.ErrMissingApprovalReference
	}

	res, err := u.gateway.RetrieveTransaction(ctx, *order.ShopTransactionID, transactionDate(order))
	if err != nil {
		logger.WithContext(ctx).Warn().Err(err).Str("order_id", order.ID).Msg("Approval reference lookup failed")
		return "", fmt.Errorf("%w: lookup failed: %v", domain.ErrMissingApprovalReference, err)
	}
	if res.PgCno == "" {
		return "", domain.ErrMissingApprovalReference
	}

	if u.cache != nil {
		u.cache.Set(key, res.PgCno, u.lookupTTL)
	}
	return res.PgCno, nil
}

// transactionDate is the KST calendar day the payment was created.
func transactionDate(order *domain.Order) string {
	return order.CreatedAt.In(KST).Format(gatewayDateLayout)
}

func historyReason(cmd domain.ReviseCommand, amount int64, reason string) string {
	kind := "refund"
	if cmd.TypeCode().IsCancel() {
		kind = "cancel"
	}
	msg := fmt.Sprintf("%s %s (%d KRW)", kind, cmd.TypeCode(), amount)
	if reason != "" {
		msg += ": " + reason
	}
	return msg
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

