package v1

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tkaykim/modoouniformshop-sub000/internal/delivery/http/middleware"
	"github.com/tkaykim/modoouniformshop-sub000/internal/domain"
	"github.com/tkaykim/modoouniformshop-sub000/internal/usecase"
	"github.com/tkaykim/modoouniformshop-sub000/pkg/logger"
	"github.com/tkaykim/modoouniformshop-sub000/pkg/utils"
	"github.com/tkaykim/modoouniformshop-sub000/pkg/validation"
)

// OrderService is the part of the order usecase the admin console uses.
type OrderService interface {
	GetAllOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	GetOrderHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error)
	GetRefunds(ctx context.Context, orderID string) ([]domain.OrderRefund, error)
	GetPaymentTransaction(ctx context.Context, orderID string) (*domain.TransactionResult, error)
	RefundOrder(ctx context.Context, orderID string, req domain.RefundRequest) (*usecase.RefundOutcome, error)
}

type AdminOrderHandler struct {
	orderUC  OrderService
	validate *validator.Validate
}

func NewAdminOrderHandler(uc OrderService) *AdminOrderHandler {
	return &AdminOrderHandler{orderUC: uc, validate: validation.New()}
}

type refundPayload struct {
	OrderID           string                 `json:"orderId"`
	Amount            int64                  `json:"amount"`
	Reason            string                 `json:"reason" validate:"max=500"`
	ReviseTypeCode    string                 `json:"reviseTypeCode" validate:"omitempty,len=2,numeric"`
	ReviseSubTypeCode string                 `json:"reviseSubTypeCode" validate:"max=10"`
	Mode              string                 `json:"mode"`
	RefundImmediate   bool                   `json:"refundImmediate"`
	RefundInfo        *domain.RefundBankInfo `json:"refundInfo"`
}

type refundResponse struct {
	Order  *domain.Order       `json:"order"`
	Refund *domain.OrderRefund `json:"refund"`
	Revise domain.RawJSON      `json:"revise"`
}

// Revise serves POST /admin/payments/revise, where the order id travels in the body.
func (h *AdminOrderHandler) Revise(w http.ResponseWriter, r *http.Request) {
	h.refund(w, r, "")
}

// RefundOrder serves POST /admin/orders/{id}/refund. The path id wins over the body.
func (h *AdminOrderHandler) RefundOrder(w http.ResponseWriter, r *http.Request) {
	h.refund(w, r, r.PathValue("id"))
}

func (h *AdminOrderHandler) refund(w http.ResponseWriter, r *http.Request, pathID string) {
	var payload refundPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		writeInvalidRequest(w, err)
		return
	}

	orderID := strings.TrimSpace(payload.OrderID)
	if pathID != "" {
		orderID = pathID
	}
	if orderID == "" {
		writeDomainError(w, r, domain.ErrMissingOrderID)
		return
	}

	mode, ok := domain.ParseRefundMode(payload.Mode)
	if !ok {
		utils.WriteFieldErrors(w, http.StatusBadRequest, "invalid_request", "Validation failed",
			map[string]string{"mode": "must be one of: auto cancel deferred_refund immediate_refund"})
		return
	}
	// Older admin builds send refundImmediate instead of a mode. Any other explicit mode contradicts it.
	if payload.RefundImmediate {
		switch mode {
		case domain.RefundModeAuto:
			mode = domain.RefundModeImmediate
		case domain.RefundModeImmediate:
		default:
			writeDomainError(w, r, fmt.Errorf("refundImmediate conflicts with mode %s: %w", mode, domain.ErrUnsupportedPath))
			return
		}
	}

	req := domain.RefundRequest{
		Amount:            payload.Amount,
		Reason:            payload.Reason,
		Mode:              mode,
		ReviseTypeCode:    domain.ReviseTypeCode(payload.ReviseTypeCode),
		ReviseSubTypeCode: strings.TrimSpace(payload.ReviseSubTypeCode),
		RefundInfo:        payload.RefundInfo,
	}
	if user := middleware.UserFromContext(r.Context()); user != nil {
		req.ActorID = &user.ID
	}

	outcome, err := h.orderUC.RefundOrder(r.Context(), orderID, req)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	logger.WithContext(r.Context()).Info().
		Str("order_id", orderID).
		Str("mode", string(mode)).
		Msg("Admin revise completed")

	resp := refundResponse{Order: outcome.Order, Refund: outcome.Refund}
	if outcome.Revise != nil {
		resp.Revise = outcome.Revise.Raw
	}
	writeData(w, http.StatusOK, resp)
}

func (h *AdminOrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	q := r.URL.Query()

	filter := domain.OrderFilter{
		Page:          page,
		Limit:         limit,
		Status:        q.Get("status"),
		PaymentStatus: q.Get("payment_status"),
		PaymentMethod: q.Get("payment_method"),
		Search:        strings.TrimSpace(q.Get("search")),
	}

	orders, total, err := h.orderUC.GetAllOrders(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	writeList(w, orders, domain.NewPagination(page, limit, total))
}

func (h *AdminOrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orderUC.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, order)
}

func (h *AdminOrderHandler) GetOrderHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.orderUC.GetOrderHistory(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if history == nil {
		history = []domain.OrderHistory{}
	}
	writeData(w, http.StatusOK, history)
}

func (h *AdminOrderHandler) GetRefunds(w http.ResponseWriter, r *http.Request) {
	refunds, err := h.orderUC.GetRefunds(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if refunds == nil {
		refunds = []domain.OrderRefund{}
	}
	writeData(w, http.StatusOK, refunds)
}

// GetPayment re-reads the transaction from the gateway so operators can reconcile a failed write.
func (h *AdminOrderHandler) GetPayment(w http.ResponseWriter, r *http.Request) {
	tx, err := h.orderUC.GetPaymentTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, struct {
		*domain.TransactionResult
		Raw domain.RawJSON `json:"raw"`
	}{tx, tx.Raw})
}
