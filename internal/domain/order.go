package domain

import (
	"context"
	"time"
)

type OrderFilter struct {
	Page          int
	Limit         int
	Status        string
	PaymentStatus string
	PaymentMethod string
	Search        string // customer name, phone or order id prefix
}

// Order amounts are whole KRW won.
type Order struct {
	ID                string    `json:"id"`
	UserID            *string   `json:"userId"`
	CustomerName      string    `json:"customerName"`
	CustomerPhone     *string   `json:"customerPhone"`
	Status            string    `json:"status"`
	PaymentStatus     string    `json:"paymentStatus"`
	PaymentMethod     string    `json:"paymentMethod"`
	TotalAmount       int64     `json:"totalAmount"`
	RefundedAmount    int64     `json:"refundedAmount"`
	PgCno             *string   `json:"pgCno"`
	ShopTransactionID *string   `json:"shopTransactionId"`
	PaymentDetails    JSONB     `json:"paymentDetails"`
	RefundReason      *string   `json:"refundReason"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (o *Order) IsCard() bool {
	return o.PaymentMethod == PaymentMethodCard
}

func (o *Order) IsClosed() bool {
	return o.Status == OrderStatusCancelled
}

// RefundableAmount is what is left to give back. Never negative.
func (o *Order) RefundableAmount() int64 {
	if rest := o.TotalAmount - o.RefundedAmount; rest > 0 {
		return rest
	}
	return 0
}

// StoredApprovalReference returns the gateway approval number from the column,
// falling back to the pgCno key of the raw payment payload.
func (o *Order) StoredApprovalReference() string {
	if o.PgCno != nil && *o.PgCno != "" {
		return *o.PgCno
	}
	return o.PaymentDetails.String("pgCno")
}

type OrderHistory struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"orderId"`
	PreviousStatus *string   `json:"previousStatus"`
	NewStatus      string    `json:"newStatus"`
	Reason         *string   `json:"reason"`
	CreatedBy      *string   `json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
}

// OrderRefund is one accepted cancel/refund, with the gateway response kept as sent.
type OrderRefund struct {
	ID                  string    `json:"id"`
	OrderID             string    `json:"orderId"`
	ReviseTypeCode      string    `json:"reviseTypeCode"`
	ReviseSubTypeCode   *string   `json:"reviseSubTypeCode"`
	Amount              int64     `json:"amount"`
	RefundedAmountAfter int64     `json:"refundedAmountAfter"`
	Reason              *string   `json:"reason"`
	ShopTransactionID   string    `json:"shopTransactionId"`
	PgResponse          RawJSON   `json:"pgResponse"`
	CreatedBy           *string   `json:"createdBy"`
	CreatedAt           time.Time `json:"createdAt"`
}

// OrderRefundUpdate is the column set written once the gateway accepted a revise.
type OrderRefundUpdate struct {
	RefundedAmount int64  `json:"refundedAmount"`
	Status         string `json:"status"`
	PaymentStatus  string `json:"paymentStatus"`
	RefundReason   string `json:"refundReason"`
}

type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

type OrderRepository interface {
	GetByID(ctx context.Context, id string) (*Order, error)
	GetAll(ctx context.Context, filter OrderFilter) ([]Order, int64, error)

	// ApplyRefund writes update only if refunded_amount still equals expectedRefunded.
	// A lost race returns ErrRefundConflict.
	ApplyRefund(ctx context.Context, id string, expectedRefunded int64, update OrderRefundUpdate) error

	// Refunds & History
	CreateRefund(ctx context.Context, refund *OrderRefund) error
	GetRefunds(ctx context.Context, orderID string) ([]OrderRefund, error)
	CreateOrderHistory(ctx context.Context, history *OrderHistory) error
	GetOrderHistory(ctx context.Context, orderID string) ([]OrderHistory, error)
}
