// Queries from db/query/orders.sql, laid out the way sqlc's pgx/v5 generator emits them.
// Maintained by hand: edit db/query/orders.sql and this file together.

package sqlc

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const applyOrderRefund = `-- name: ApplyOrderRefund :execrows
UPDATE orders
SET refunded_amount = $1,
    status = $2,
    payment_status = $3,
    refund_reason = COALESCE($4, refund_reason),
    updated_at = now()
WHERE id = $5
  AND refunded_amount = $6
`

type ApplyOrderRefundParams struct {
	RefundedAmount         int64       `json:"refunded_amount"`
	Status                 string      `json:"status"`
	PaymentStatus          string      `json:"payment_status"`
	RefundReason           *string     `json:"refund_reason"`
	ID                     pgtype.UUID `json:"id"`
	ExpectedRefundedAmount int64       `json:"expected_refunded_amount"`
}

func (q *Queries) ApplyOrderRefund(ctx context.Context, arg ApplyOrderRefundParams) (int64, error) {
	result, err := q.db.Exec(ctx, applyOrderRefund,
		arg.RefundedAmount,
		arg.Status,
		arg.PaymentStatus,
		arg.RefundReason,
		arg.ID,
		arg.ExpectedRefundedAmount,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const countOrders = `-- name: CountOrders :one
SELECT count(*)
FROM orders
WHERE ($1::text IS NULL OR status = $1)
  AND ($2::text IS NULL OR payment_status = $2)
  AND ($3::text IS NULL OR payment_method = $3)
  AND ($4::text IS NULL
       OR customer_name ILIKE '%' || $4 || '%'
       OR customer_phone ILIKE '%' || $4 || '%'
       OR id::text ILIKE $4 || '%')
`

type CountOrdersParams struct {
	Status        *string `json:"status"`
	PaymentStatus *string `json:"payment_status"`
	PaymentMethod *string `json:"payment_method"`
	Search        *string `json:"search"`
}

func (q *Queries) CountOrders(ctx context.Context, arg CountOrdersParams) (int64, error) {
	row := q.db.QueryRow(ctx, countOrders,
		arg.Status,
		arg.PaymentStatus,
		arg.PaymentMethod,
		arg.Search,
	)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createOrderHistory = `-- name: CreateOrderHistory :one
INSERT INTO order_history (order_id, previous_status, new_status, reason, created_by)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, order_id, previous_status, new_status, reason, created_by, created_at
`

type CreateOrderHistoryParams struct {
	OrderID        pgtype.UUID `json:"order_id"`
	PreviousStatus *string     `json:"previous_status"`
	NewStatus      string      `json:"new_status"`
	Reason         *string     `json:"reason"`
	CreatedBy      pgtype.UUID `json:"created_by"`
}

func (q *Queries) CreateOrderHistory(ctx context.Context, arg CreateOrderHistoryParams) (OrderHistory, error) {
	row := q.db.QueryRow(ctx, createOrderHistory,
		arg.OrderID,
		arg.PreviousStatus,
		arg.NewStatus,
		arg.Reason,
		arg.CreatedBy,
	)
	var i OrderHistory
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.PreviousStatus,
		&i.NewStatus,
		&i.Reason,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const createOrderRefund = `-- name: CreateOrderRefund :one
INSERT INTO order_refunds (order_id, revise_type_code, revise_sub_type_code, amount, refunded_amount_after,
                           reason, shop_transaction_id, pg_response, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, order_id, revise_type_code, revise_sub_type_code, amount, refunded_amount_after,
          reason, shop_transaction_id, pg_response, created_by, created_at
`

type CreateOrderRefundParams struct {
	OrderID             pgtype.UUID `json:"order_id"`
	ReviseTypeCode      string      `json:"revise_type_code"`
	ReviseSubTypeCode   *string     `json:"revise_sub_type_code"`
	Amount              int64       `json:"amount"`
	RefundedAmountAfter int64       `json:"refunded_amount_after"`
	Reason              *string     `json:"reason"`
	ShopTransactionID   string      `json:"shop_transaction_id"`
	PgResponse          []byte      `json:"pg_response"`
	CreatedBy           pgtype.UUID `json:"created_by"`
}

func (q *Queries) CreateOrderRefund(ctx context.Context, arg CreateOrderRefundParams) (OrderRefund, error) {
	row := q.db.QueryRow(ctx, createOrderRefund,
		arg.OrderID,
		arg.ReviseTypeCode,
		arg.ReviseSubTypeCode,
		arg.Amount,
		arg.RefundedAmountAfter,
		arg.Reason,
		arg.ShopTransactionID,
		arg.PgResponse,
		arg.CreatedBy,
	)
	var i OrderRefund
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.ReviseTypeCode,
		&i.ReviseSubTypeCode,
		&i.Amount,
		&i.RefundedAmountAfter,
		&i.Reason,
		&i.ShopTransactionID,
		&i.PgResponse,
		&i.CreatedBy,
		&i.CreatedAt,
	)
	return i, err
}

const getOrderByID = `-- name: GetOrderByID :one
SELECT id, user_id, customer_name, customer_phone, status, payment_status, payment_method,
       total_amount, refunded_amount, pg_cno, shop_transaction_id, payment_details, refund_reason,
       created_at, updated_at
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrderByID(ctx context.Context, id pgtype.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, getOrderByID, id)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.CustomerName,
		&i.CustomerPhone,
		&i.Status,
		&i.PaymentStatus,
		&i.PaymentMethod,
		&i.TotalAmount,
		&i.RefundedAmount,
		&i.PgCno,
		&i.ShopTransactionID,
		&i.PaymentDetails,
		&i.RefundReason,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getOrderHistory = `-- name: GetOrderHistory :many
SELECT id, order_id, previous_status, new_status, reason, created_by, created_at
FROM order_history
WHERE order_id = $1
ORDER BY created_at DESC
`

func (q *Queries) GetOrderHistory(ctx context.Context, orderID pgtype.UUID) ([]OrderHistory, error) {
	rows, err := q.db.Query(ctx, getOrderHistory, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderHistory
	for rows.Next() {
		var i OrderHistory
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.PreviousStatus,
			&i.NewStatus,
			&i.Reason,
			&i.CreatedBy,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrderRefunds = `-- name: ListOrderRefunds :many
SELECT id, order_id, revise_type_code, revise_sub_type_code, amount, refunded_amount_after,
       reason, shop_transaction_id, pg_response, created_by, created_at
FROM order_refunds
WHERE order_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListOrderRefunds(ctx context.Context, orderID pgtype.UUID) ([]OrderRefund, error) {
	rows, err := q.db.Query(ctx, listOrderRefunds, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderRefund
	for rows.Next() {
		var i OrderRefund
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ReviseTypeCode,
			&i.ReviseSubTypeCode,
			&i.Amount,
			&i.RefundedAmountAfter,
			&i.Reason,
			&i.ShopTransactionID,
			&i.PgResponse,
			&i.CreatedBy,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listOrders = `-- name: ListOrders :many
SELECT id, user_id, customer_name, customer_phone, status, payment_status, payment_method,
       total_amount, refunded_amount, pg_cno, shop_transaction_id, payment_details, refund_reason,
       created_at, updated_at
FROM orders
WHERE ($1::text IS NULL OR status = $1)
  AND ($2::text IS NULL OR payment_status = $2)
  AND ($3::text IS NULL OR payment_method = $3)
  AND ($4::text IS NULL
       OR customer_name ILIKE '%' || $4 || '%'
       OR customer_phone ILIKE '%' || $4 || '%'
       OR id::text ILIKE $4 || '%')
ORDER BY created_at DESC
LIMIT $5 OFFSET $6
`

type ListOrdersParams struct {
	Status        *string `json:"status"`
	PaymentStatus *string `json:"payment_status"`
	PaymentMethod *string `json:"payment_method"`
	Search        *string `json:"search"`
	Limit         int32   `json:"limit"`
	Offset        int32   `json:"offset"`
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrders,
		arg.Status,
		arg.PaymentStatus,
		arg.PaymentMethod,
		arg.Search,
		arg.Limit,
		arg.Offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		var i Order
		if err := rows.Scan(
			&i.ID,
			&i.UserID,
			&i.CustomerName,
			&i.CustomerPhone,
			&i.Status,
			&i.PaymentStatus,
			&i.PaymentMethod,
			&i.TotalAmount,
			&i.RefundedAmount,
			&i.PgCno,
			&i.ShopTransactionID,
			&i.PaymentDetails,
			&i.RefundReason,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
