package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	memcache "github.com/tkaykim/modoouniformshop-sub000/internal/infrastructure/cache"
	"github.com/tkaykim/modoouniformshop-sub000/internal/domain"
)

type orderFixture struct {
	repo    *mockOrderRepo
	gateway *mockGateway
	tx      *passThroughTx
	uc      *OrderUsecase
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		repo:    new(mockOrderRepo),
		gateway: new(mockGateway),
		tx:      &passThroughTx{},
	}
	f.uc = NewOrderUsecase(f.repo, f.gateway, f.tx, memcache.NewMemoryCache(time.Hour, time.Hour), fixedBuilder(), time.Hour)
	return f
}

func strRef(s string) *string { return &s }

func okResult() *domain.ReviseResult {
	return &domain.ReviseResult{ResCd: "0000", ResMsg: "OK", Raw: domain.RawJSON(`{"resCd":"0000","resMsg":"OK"}`)}
}

func withCode(code domain.ReviseTypeCode) interface{} {
	return mock.MatchedBy(func(req *domain.ReviseRequest) bool {
		return req.Command.TypeCode() == code
	})
}

func TestRefundOrder_CardFullCancel(t *testing.T) {
	f := newOrderFixture()
	order := cardOrder(100000, 0)
	order.Status = domain.OrderStatusPaid
	order.PgCno = strRef("PG1")
	actor := strRef("admin-1")

	f.repo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	f.gateway.On("Revise", mock.Anything, withCode(domain.ReviseFullCancel)).Return(okResult(), nil)
	f.repo.On("ApplyRefund", mock.Anything, order.ID, int64(0), domain.OrderRefundUpdate{
		RefundedAmount: 100000,
		Status:         domain.OrderStatusCancelled,
		PaymentStatus:  domain.OrderStatusCancelled,
		RefundReason:   "duplicate order",
	}).Return(nil)
	f.repo.On("CreateRefund", mock.Anything, mock.MatchedBy(func(r *domain.OrderRefund) bool {
		return r.ReviseTypeCode == "40" && r.Amount == 100000 && r.ReviseSubTypeCode == nil &&
			r.ShopTransactionID == "20260302ABC" && string(r.PgResponse) == `{"resCd":"0000","resMsg":"OK"}`
	})).Return(nil)
	f.repo.On("CreateOrderHistory", mock.Anything, mock.MatchedBy(func(h *domain.OrderHistory) bool {
		return *h.PreviousStatus == domain.OrderStatusPaid && h.NewStatus == domain.OrderStatusCancelled && h.CreatedBy == actor
	})).Return(nil)

	out, err := f.uc.RefundOrder(context.Background(), order.ID, domain.RefundRequest{Reason: "duplicate order", ActorID: actor})
	require.NoError(t, err)

	assert.Equal(t, int64(100000), out.Order.RefundedAmount)
	assert.Equal(t, domain.OrderStatusCancelled, out.Order.Status)
	assert.Equal(t, "duplicate order", *out.Order.RefundReason)
	assert.Equal(t, "0000", out.Revise.ResCd)
	assert.Equal(t, 1, f.tx.calls)
	f.repo.AssertExpectations(t)
	f.gateway.AssertExpectations(t)
}

func TestRefundOrder_PartialAccumulates(t *testing.T) {
	f := newOrderFixture()
	order := bankOrder(50000, 10000)
	order.PaymentDetails = domain.JSONB{"pgCno": "PG-DETAILS"}
	order.RefundReason = strRef("size exchange")

	f.repo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	f.gateway.On("Revise", mock.Anything, mock.MatchedBy(func(req *domain.ReviseRequest) bool {
		return req.PgCno == "PG-DETAILS" && req.Command == domain.PartialRefund{SubType: "RF01", Amount: 15000, Account: *testAccount}
	})).Return(okResult(), nil)
	f.repo.On("ApplyRefund", mock.Anything, order.ID, int64(10000), mock.MatchedBy(func(u domain.OrderRefundUpdate) bool {
		return u.RefundedAmount == 25000 && u.Status == domain.OrderStatusRefund
	})).Return(nil)
	f.repo.On("CreateRefund", mock.Anything, mock.MatchedBy(func(r *domain.OrderRefund) bool {
		return r.Amount == 15000 && r.RefundedAmountAfter == 25000 && *r.ReviseSubTypeCode == "RF01"
	})).Return(nil)
	f.repo.On("CreateOrderHistory", mock.Anything, mock.Anything).Return(nil)

	out, err := f.uc.RefundOrder(context.Background(), order.ID, domain.RefundRequest{Amount: 15000, RefundInfo: testAccount})
	require.NoError(t, err)
	assert.Equal(t, int64(25000), out.Order.RefundedAmount)
	assert.Equal(t, domain.OrderStatusRefund, out.Order.PaymentStatus)
	require.NotNil(t, out.Order.RefundReason)
	assert.Equal(t, "size exchange", *out.Order.RefundReason, "a refund without a reason keeps the stored one")
	f.repo.AssertExpectations(t)
}

func TestRefundOrder_RejectedBeforeGateway(t *testing.T) {
	closed := cardOrder(1000, 0)
	closed.Status = domain.OrderStatusCancelled
	closed.PgCno = strRef("PG")

	noAccount := bankOrder(50000, 0)
	noAccount.PgCno = strRef("PG")

	noReference := cardOrder(1000, 0)

	tests := []struct {
		name    string
		order   *domain.Order
		req     domain.RefundRequest
		wantErr error
	}{
		{"closed order", closed, domain.RefundRequest{}, domain.ErrOrderClosed},
		{"missing refund info", noAccount, domain.RefundRequest{}, domain.ErrMissingRefundInfo},
		{"missing approval reference", noReference, domain.RefundRequest{}, domain.ErrMissingApprovalReference},
		{"amount too large", noAccount, domain.RefundRequest{Amount: 60000, RefundInfo: testAccount}, domain.ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newOrderFixture()
			f.repo.On("GetByID", mock.Anything, tt.order.ID).Return(tt.order, nil)

			out, err := f.uc.RefundOrder(context.Background(), tt.order.ID, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, out)
			f.gateway.AssertNotCalled(t, "Revise", mock.Anything, mock.Anything)
			f.gateway.AssertNotCalled(t, "RetrieveTransaction", mock.Anything, mock.Anything, mock.Anything)
			f.repo.AssertNotCalled(t, "ApplyRefund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRefundOrder_MissingOrder(t *testing.T) {
	f := newOrderFixture()
	_, err := f.uc.RefundOrder(context.Background(), "  ", domain.RefundRequest{})
	assert.ErrorIs(t, err, domain.ErrMissingOrderID)

	f.repo.On("GetByID", mock.Anything, "nope").Return(nil, domain.ErrOrderNotFound)
	_, err = f.uc.RefundOrder(context.Background(), "nope", domain.RefundRequest{})
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestRefundOrder_GatewayRejectionWritesNothing(t *testing.T) {
	f := newOrderFixture()
	order := cardOrder(100000, 0)
	order.PgCno = strRef("PG1")
	gwErr := &domain.GatewayError{ResCd: "R201", ResMsg: "limit", Raw: domain.RawJSON(`{"resCd":"R201"}`)}

	f.repo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	f.gateway.On("Revise", mock.Anything, mock.Anything).Return(nil, gwErr)

	_, err := f.uc.RefundOrder(context.Background(), order.ID, domain.RefundRequest{Amount: 5000})

	var got *domain.GatewayError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, `{"resCd":"R201"}`, string(got.Raw))
	assert.Equal(t, 0, f.tx.calls)
	f.repo.AssertNotCalled(t, "ApplyRefund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRefundOrder_PersistFailureKeepsGatewayResult(t *testing.T) {
	f := newOrderFixture()
	order := cardOrder(100000, 0)
	order.PgCno = strRef("PG1")

	f.repo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	f.gateway.On("Revise", mock.Anything, mock.Anything).Return(okResult(), nil)
	f.repo.On("ApplyRefund", mock.Anything, order.ID, int64(0), mock.Anything).Return(domain.ErrRefundConflict)

	_, err := f.uc.RefundOrder(context.Background(), order.ID, domain.RefundRequest{Amount: 1000})

	var persistErr *domain.PersistAfterReviseError
	require.True(t, errors.As(err, &persistErr))
	assert.Equal(t, order.ID, persistErr.OrderID)
	assert.Equal(t, "0000", persistErr.Revise.ResCd)
	assert.ErrorIs(t, err, domain.ErrRefundConflict)
	f.repo.AssertNotCalled(t, "CreateRefund", mock.Anything, mock.Anything)
}

func TestRefundOrder_ResolvesApprovalReferenceByLookup(t *testing.T) {
	f := newOrderFixture()
	order := cardOrder(100000, 0)
	order.ShopTransactionID = strRef("20260302SHOP")
	order.CreatedAt = time.Date(2026, 3, 1, 16, 30, 0, 0, time.UTC) // 01:30 KST next day

	f.repo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	f.gateway.On("RetrieveTransaction", mock.Anything, "20260302SHOP", "20260302").
		Return(&domain.TransactionResult{ResCd: "0000", PgCno: "PG-LOOKUP"}, nil).Once()
	f.gateway.On("Revise", mock.Anything, mock.MatchedBy(func(req *domain.ReviseRequest) bool {
		return req.PgCno == "PG-LOOKUP"
	})).Return(nil, &domain.GatewayError{ResCd: "R999", Raw: domain.RawJSON(`{}`)})

	for i := 0; i < 2; i++ {
		_, err := f.uc.RefundOrder(context.Background(), order.ID, domain.RefundRequest{})
		var gwErr *domain.GatewayError
		assert.True(t, errors.As(err, &gwErr))
	}

	f.gateway.AssertNumberOfCalls(t, "RetrieveTransaction", 1)
	f.gateway.AssertNumberOfCalls(t, "Revise", 2)
}

func TestRefundOrder_LookupFailure(t *testing.T) {
	f := newOrderFixture()
	order := cardOrder(100000, 0)
	order.ShopTransactionID = strRef("S1")

	f.repo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	f.gateway.On("RetrieveTransaction", mock.Anything, "S1", mock.Anything).
		Return(nil, &domain.GatewayError{ResCd: "E404"})

	_, err := f.uc.RefundOrder(context.Background(), order.ID, domain.RefundRequest{})
	assert.ErrorIs(t, err, domain.ErrMissingApprovalReference)
	f.gateway.AssertNotCalled(t, "Revise", mock.Anything, mock.Anything)
}

func TestGetPaymentTransaction(t *testing.T) {
	f := newOrderFixture()
	order := bankOrder(1000, 0)
	order.ShopTransactionID = strRef("S1")
	order.CreatedAt = time.Date(2026, 5, 10, 3, 0, 0, 0, KST)

	f.repo.On("GetByID", mock.Anything, order.ID).Return(order, nil)
	f.gateway.On("RetrieveTransaction", mock.Anything, "S1", "20260510").
		Return(&domain.TransactionResult{ResCd: "0000", PgCno: "PG"}, nil)

	res, err := f.uc.GetPaymentTransaction(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, "PG", res.PgCno)

	noTx := cardOrder(1000, 0)
	noTx.ID = "o-notx"
	f.repo.On("GetByID", mock.Anything, noTx.ID).Return(noTx, nil)
	_, err = f.uc.GetPaymentTransaction(context.Background(), noTx.ID)
	assert.ErrorIs(t, err, domain.ErrMissingApprovalReference)
}

func TestGetRefundsRequiresOrder(t *testing.T) {
	f := newOrderFixture()
	f.repo.On("GetByID", mock.Anything, "missing").Return(nil, domain.ErrOrderNotFound)

	_, err := f.uc.GetRefunds(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	f.repo.AssertNotCalled(t, "GetRefunds", mock.Anything, mock.Anything)
}
