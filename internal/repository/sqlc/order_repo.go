package sqlcrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tkaykim/modoouniformshop-sub000/db/sqlc"
	"github.com/tkaykim/modoouniformshop-sub000/internal/domain"
	"github.com/tkaykim/modoouniformshop-sub000/pkg/logger"
)

type orderRepository struct {
	db      *pgxpool.Pool
	queries *sqlc.Queries
}

func NewOrderRepository(db *pgxpool.Pool) domain.OrderRepository {
	return &orderRepository{
		db:      db,
		queries: sqlc.New(db),
	}
}

// --- Mappers ---

func sqlcOrderToDomain(ctx context.Context, o sqlc.Order) *domain.Order {
	order := &domain.Order{
		ID:                uuidToString(o.ID),
		UserID:            uuidToStringPtr(o.UserID),
		CustomerName:      ptrString(o.CustomerName),
		CustomerPhone:     o.CustomerPhone,
		Status:            o.Status,
		PaymentStatus:     o.PaymentStatus,
		PaymentMethod:     o.PaymentMethod,
		TotalAmount:       o.TotalAmount,
		RefundedAmount:    o.RefundedAmount,
		PgCno:             o.PgCno,
		ShopTransactionID: o.ShopTransactionID,
		RefundReason:      o.RefundReason,
		CreatedAt:         pgtimeToTime(o.CreatedAt),
		UpdatedAt:         pgtimeToTime(o.UpdatedAt),
	}

	if len(o.PaymentDetails) > 0 {
		var details domain.JSONB
		if err := json.Unmarshal(o.PaymentDetails, &details); err != nil {
			// The order is still usable; only the pgCno fallback is lost.
			logger.WithContext(ctx).Warn().Err(err).Str("order_id", order.ID).Msg("Unreadable payment_details")
		} else {
			order.PaymentDetails = details
		}
	}
	return order
}

func sqlcRefundToDomain(r sqlc.OrderRefund) domain.OrderRefund {
	return domain.OrderRefund{
		ID:                  uuidToString(r.ID),
		OrderID:             uuidToString(r.OrderID),
		ReviseTypeCode:      r.ReviseTypeCode,
		ReviseSubTypeCode:   r.ReviseSubTypeCode,
		Amount:              r.Amount,
		RefundedAmountAfter: r.RefundedAmountAfter,
		Reason:              r.Reason,
		ShopTransactionID:   r.ShopTransactionID,
		PgResponse:          domain.RawJSON(r.PgResponse),
		CreatedBy:           uuidToStringPtr(r.CreatedBy),
		CreatedAt:           pgtimeToTime(r.CreatedAt),
	}
}

func sqlcHistoryToDomain(h sqlc.OrderHistory) domain.OrderHistory {
	return domain.OrderHistory{
		ID:             uuidToString(h.ID),
		OrderID:        uuidToString(h.OrderID),
		PreviousStatus: h.PreviousStatus,
		NewStatus:      h.NewStatus,
		Reason:         h.Reason,
		CreatedBy:      uuidToStringPtr(h.CreatedBy),
		CreatedAt:      pgtimeToTime(h.CreatedAt),
	}
}

// --- Order Methods ---

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	uid, ok := parseUUID(id)
	if !ok {
		return nil, domain.ErrOrderNotFound
	}

	q := GetQueriesFromContext(ctx, r.queries)
	o, err := q.GetOrderByID(ctx, uid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order %s: %w", id, err)
	}
	return sqlcOrderToDomain(ctx, o), nil
}

func (r *orderRepository) GetAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	q := GetQueriesFromContext(ctx, r.queries)
	limit, offset := pageOffset(filter.Page, filter.Limit)

	rows, err := q.ListOrders(ctx, sqlc.ListOrdersParams{
		Status:        filterPtr(filter.Status),
		PaymentStatus: filterPtr(filter.PaymentStatus),
		PaymentMethod: filterPtr(filter.PaymentMethod),
		Search:        filterPtr(filter.Search),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}

	total, err := q.CountOrders(ctx, sqlc.CountOrdersParams{
		Status:        filterPtr(filter.Status),
		PaymentStatus: filterPtr(filter.PaymentStatus),
		PaymentMethod: filterPtr(filter.PaymentMethod),
		Search:        filterPtr(filter.Search),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	orders := make([]domain.Order, len(rows))
	for i, row := range rows {
		orders[i] = *sqlcOrderToDomain(ctx, row)
	}
	return orders, total, nil
}

func (r *orderRepository) ApplyRefund(ctx context.Context, id string, expectedRefunded int64, update domain.OrderRefundUpdate) error {
	uid, ok := parseUUID(id)
	if !ok {
		return domain.ErrOrderNotFound
	}

	q := GetQueriesFromContext(ctx, r.queries)
	affected, err := q.ApplyOrderRefund(ctx, sqlc.ApplyOrderRefundParams{
		RefundedAmount:         update.RefundedAmount,
		Status:                 update.Status,
		PaymentStatus:          update.PaymentStatus,
		RefundReason:           strPtr(update.RefundReason),
		ID:                     uid,
		ExpectedRefundedAmount: expectedRefunded,
	})
	if err != nil {
		return fmt.Errorf("apply refund to order %s: %w", id, err)
	}
	if affected == 0 {
		return domain.ErrRefundConflict
	}
	return nil
}

// --- Refunds & History ---

func (r *orderRepository) CreateRefund(ctx context.Context, refund *domain.OrderRefund) error {
	uid, ok := parseUUID(refund.OrderID)
	if !ok {
		return domain.ErrOrderNotFound
	}

	q := GetQueriesFromContext(ctx, r.queries)
	row, err := q.CreateOrderRefund(ctx, sqlc.CreateOrderRefundParams{
		OrderID:             uid,
		ReviseTypeCode:      refund.ReviseTypeCode,
		ReviseSubTypeCode:   refund.ReviseSubTypeCode,
		Amount:              refund.Amount,
		RefundedAmountAfter: refund.RefundedAmountAfter,
		Reason:              refund.Reason,
		ShopTransactionID:   refund.ShopTransactionID,
		PgResponse:          []byte(refund.PgResponse),
		CreatedBy:           optionalUUID(refund.CreatedBy),
	})
	if err != nil {
		return fmt.Errorf("record refund for order %s: %w", refund.OrderID, err)
	}

	refund.ID = uuidToString(row.ID)
	refund.CreatedAt = pgtimeToTime(row.CreatedAt)
	return nil
}

func (r *orderRepository) GetRefunds(ctx context.Context, orderID string) ([]domain.OrderRefund, error) {
	uid, ok := parseUUID(orderID)
	if !ok {
		return nil, domain.ErrOrderNotFound
	}

	rows, err := GetQueriesFromContext(ctx, r.queries).ListOrderRefunds(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list refunds for order %s: %w", orderID, err)
	}

	refunds := make([]domain.OrderRefund, len(rows))
	for i, row := range rows {
		refunds[i] = sqlcRefundToDomain(row)
	}
	return refunds, nil
}

func (r *orderRepository) CreateOrderHistory(ctx context.Context, history *domain.OrderHistory) error {
	uid, ok := parseUUID(history.OrderID)
	if !ok {
		return domain.ErrOrderNotFound
	}

	q := GetQueriesFromContext(ctx, r.queries)
	row, err := q.CreateOrderHistory(ctx, sqlc.CreateOrderHistoryParams{
		OrderID:        uid,
		PreviousStatus: history.PreviousStatus,
		NewStatus:      history.NewStatus,
		Reason:         history.Reason,
		CreatedBy:      optionalUUID(history.CreatedBy),
	})
	if err != nil {
		return fmt.Errorf("record history for order %s: %w", history.OrderID, err)
	}

	history.ID = uuidToString(row.ID)
	history.CreatedAt = pgtimeToTime(row.CreatedAt)
	return nil
}

func (r *orderRepository) GetOrderHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	uid, ok := parseUUID(orderID)
	if !ok {
		return nil, domain.ErrOrderNotFound
	}

	rows, err := GetQueriesFromContext(ctx, r.queries).GetOrderHistory(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list history for order %s: %w", orderID, err)
	}

	history := make([]domain.OrderHistory, len(rows))
	for i, row := range rows {
		history[i] = sqlcHistoryToDomain(row)
	}
	return history, nil
}
