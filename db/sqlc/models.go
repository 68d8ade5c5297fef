// Row types for the tables in db/migrations. Maintained by hand.

package sqlc

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Lead struct {
	ID              pgtype.UUID        `json:"id"`
	SessionID       string             `json:"session_id"`
	ProductType     string             `json:"product_type"`
	Quantity        int32              `json:"quantity"`
	HasDesign       bool               `json:"has_design"`
	DesignNote      *string            `json:"design_note"`
	ReferenceImages []string           `json:"reference_images"`
	Deadline        pgtype.Date        `json:"deadline"`
	ContactName     string             `json:"contact_name"`
	ContactPhone    string             `json:"contact_phone"`
	ContactEmail    *string            `json:"contact_email"`
	Status          string             `json:"status"`
	CreatedAt       pgtype.Timestamptz `json:"created_at"`
	UpdatedAt       pgtype.Timestamptz `json:"updated_at"`
}

type Order struct {
	ID                pgtype.UUID        `json:"id"`
	UserID            pgtype.UUID        `json:"user_id"`
	CustomerName      *string            `json:"customer_name"`
	CustomerPhone     *string            `json:"customer_phone"`
	Status            string             `json:"status"`
	PaymentStatus     string             `json:"payment_status"`
	PaymentMethod     string             `json:"payment_method"`
	TotalAmount       int64              `json:"total_amount"`
	RefundedAmount    int64              `json:"refunded_amount"`
	PgCno             *string            `json:"pg_cno"`
	ShopTransactionID *string            `json:"shop_transaction_id"`
	PaymentDetails    []byte             `json:"payment_details"`
	RefundReason      *string            `json:"refund_reason"`
	CreatedAt         pgtype.Timestamptz `json:"created_at"`
	UpdatedAt         pgtype.Timestamptz `json:"updated_at"`
}

type OrderHistory struct {
	ID             pgtype.UUID        `json:"id"`
	OrderID        pgtype.UUID        `json:"order_id"`
	PreviousStatus *string            `json:"previous_status"`
	NewStatus      string             `json:"new_status"`
	Reason         *string            `json:"reason"`
	CreatedBy      pgtype.UUID        `json:"created_by"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
}

type OrderRefund struct {
	ID                  pgtype.UUID        `json:"id"`
	OrderID             pgtype.UUID        `json:"order_id"`
	ReviseTypeCode      string             `json:"revise_type_code"`
	ReviseSubTypeCode   *string            `json:"revise_sub_type_code"`
	Amount              int64              `json:"amount"`
	RefundedAmountAfter int64              `json:"refunded_amount_after"`
	Reason              *string            `json:"reason"`
	ShopTransactionID   string             `json:"shop_transaction_id"`
	PgResponse          []byte             `json:"pg_response"`
	CreatedBy           pgtype.UUID        `json:"created_by"`
	CreatedAt           pgtype.Timestamptz `json:"created_at"`
}
