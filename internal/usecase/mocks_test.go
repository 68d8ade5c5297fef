package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/tkaykim/modoouniformshop-sub000/internal/domain"
)

// --- Mock Order Repository ---

type mockOrderRepo struct {
	mock.Mock
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// Hand out a copy so the usecase cannot mutate the fixture between calls.
	order := *args.Get(0).(*domain.Order)
	return &order, args.Error(1)
}

func (m *mockOrderRepo) GetAll(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Order), args.Get(1).(int64), args.Error(2)
}

func (m *mockOrderRepo) ApplyRefund(ctx context.Context, id string, expectedRefunded int64, update domain.OrderRefundUpdate) error {
	args := m.Called(ctx, id, expectedRefunded, update)
	return args.Error(0)
}

func (m *mockOrderRepo) CreateRefund(ctx context.Context, refund *domain.OrderRefund) error {
	args := m.Called(ctx, refund)
	return args.Error(0)
}

func (m *mockOrderRepo) GetRefunds(ctx context.Context, orderID string) ([]domain.OrderRefund, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]domain.OrderRefund), args.Error(1)
}

func (m *mockOrderRepo) CreateOrderHistory(ctx context.Context, history *domain.OrderHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *mockOrderRepo) GetOrderHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).([]domain.OrderHistory), args.Error(1)
}

// --- Mock Gateway ---

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Revise(ctx context.Context, req *domain.ReviseRequest) (*domain.ReviseResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviseResult), args.Error(1)
}

func (m *mockGateway) RetrieveTransaction(ctx context.Context, shopTransactionID, transactionDate string) (*domain.TransactionResult, error) {
	args := m.Called(ctx, shopTransactionID, transactionDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TransactionResult), args.Error(1)
}

// --- Transaction Manager ---

// passThroughTx runs fn directly and counts invocations.
type passThroughTx struct {
	calls int
}

func (tx *passThroughTx) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.calls++
	return fn(ctx)
}

// --- Mock Lead Repository ---

type mockLeadRepo struct {
	mock.Mock
}

func (m *mockLeadRepo) Create(ctx context.Context, lead *domain.Lead) error {
	args := m.Called(ctx, lead)
	if args.Error(0) == nil {
		lead.ID = "lead-1"
		lead.Status = domain.LeadStatusNew
	}
	return args.Error(0)
}

func (m *mockLeadRepo) Update(ctx context.Context, lead *domain.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *mockLeadRepo) GetAll(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.Lead), args.Get(1).(int64), args.Error(2)
}

func (m *mockLeadRepo) UpdateStatus(ctx context.Context, id, status string) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}
