package easypay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/tkaykim/modoouniformshop-sub000/internal/domain"
	"github.com/tkaykim/modoouniformshop-sub000/pkg/logger"
)

const (
	revisePath   = "/api/trades/revise"
	retrievePath = "/api/trades/retrieveTransaction"

	// ResultSuccess is the only result code that means the gateway applied the request.
	ResultSuccess = "0000"

	maxResponseBytes = 1 << 20
)

// Client talks to the EasyPay trade API. Requests are never retried; the operator re-invokes.
type Client struct {
	baseURL    string
	mallID     string
	secretKey  string
	httpClient *http.Client
}

func NewClient(baseURL, mallID, secretKey string, timeout time.Duration) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		mallID:    mallID,
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

var _ domain.PaymentGateway = (*Client)(nil)

type refundInfo struct {
	RefundBankCode    string `json:"refundBankCode"`
	RefundAccountNo   string `json:"refundAccountNo"`
	RefundDepositName string `json:"refundDepositName"`
}

// reviseBody is the flattened wire shape of every revise variant.
type reviseBody struct {
	MallID            string      `json:"mallId"`
	ShopTransactionID string      `json:"shopTransactionId"`
	PgCno             string      `json:"pgCno"`
	ReviseTypeCode    string      `json:"reviseTypeCode"`
	ReviseSubTypeCode string      `json:"reviseSubTypeCode,omitempty"`
	Amount            int64       `json:"amount,omitempty"`
	RemainAmount      *int64      `json:"remainAmount,omitempty"`
	CancelReqDate     string      `json:"cancelReqDate"`
	ReviseMessage     string      `json:"reviseMessage,omitempty"`
	MsgAuthValue      string      `json:"msgAuthValue,omitempty"`
	RefundInfo        *refundInfo `json:"refundInfo,omitempty"`
}

func toRefundInfo(b domain.RefundBankInfo) *refundInfo {
	return &refundInfo{
		RefundBankCode:    b.BankCode,
		RefundAccountNo:   b.AccountNo,
		RefundDepositName: b.DepositName,
	}
}

func (c *Client) encodeRevise(req *domain.ReviseRequest) (*reviseBody, error) {
	body := &reviseBody{
		MallID:            req.MallID,
		ShopTransactionID: req.ShopTransactionID,
		PgCno:             req.PgCno,
		CancelReqDate:     req.CancelReqDate,
		ReviseMessage:     req.Message,
		MsgAuthValue:      c.msgAuthValue(req.PgCno, req.ShopTransactionID),
	}
	if body.MallID == "" {
		body.MallID = c.mallID
	}

	switch cmd := req.Command.(type) {
	case domain.FullCancel:
		body.ReviseTypeCode = string(cmd.TypeCode())
	case domain.PartialCancel:
		remain := cmd.RemainAmount
		body.ReviseTypeCode = string(cmd.TypeCode())
		body.Amount = cmd.Amount
		body.RemainAmount = &remain
	case domain.FullRefund:
		body.ReviseTypeCode = string(cmd.TypeCode())
		body.ReviseSubTypeCode = cmd.SubTypeCode()
		body.RefundInfo = toRefundInfo(cmd.Account)
	case domain.PartialRefund:
		body.ReviseTypeCode = string(cmd.TypeCode())
		body.ReviseSubTypeCode = cmd.SubTypeCode()
		body.Amount = cmd.Amount
		body.RefundInfo = toRefundInfo(cmd.Account)
	case domain.ImmediateRefund:
		body.ReviseTypeCode = string(cmd.TypeCode())
		body.ReviseSubTypeCode = cmd.SubTypeCode()
		body.Amount = cmd.Amount
		body.RefundInfo = toRefundInfo(cmd.Account)
	default:
		return nil, fmt.Errorf("unsupported revise command %T", req.Command)
	}
	return body, nil
}

// msgAuthValue signs pgCno|shopTransactionId with the merchant secret. Empty without a secret.
func (c *Client) msgAuthValue(pgCno, shopTransactionID string) string {
	if c.secretKey == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(c.secretKey))
	mac.Write([]byte(pgCno + "|" + shopTransactionID))
	return hex.EncodeToString(mac.Sum(nil))
}

type resultHeader struct {
	ResCd       string `json:"resCd"`
	ResMsg      string `json:"resMsg"`
	PgCno       string `json:"pgCno"`
	PaymentInfo *struct {
		PgCno string `json:"pgCno"`
	} `json:"paymentInfo"`
}

// Revise sends a cancel or refund. A result code other than 0000 returns *domain.GatewayError.
func (c *Client) Revise(ctx context.Context, req *domain.ReviseRequest) (*domain.ReviseResult, error) {
	body, err := c.encodeRevise(req)
	if err != nil {
		return nil, err
	}

	raw, header, err := c.post(ctx, revisePath, body)
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info().
		Str("shop_transaction_id", req.ShopTransactionID).
		Str("revise_type_code", body.ReviseTypeCode).
		Str("res_cd", header.ResCd).
		Msg("EasyPay revise answered")

	if header.ResCd != ResultSuccess {
		return nil, &domain.GatewayError{ResCd: header.ResCd, ResMsg: header.ResMsg, Raw: raw}
	}
	return &domain.ReviseResult{ResCd: header.ResCd, ResMsg: header.ResMsg, Raw: raw}, nil
}

type retrieveBody struct {
	MallID            string `json:"mallId"`
	ShopTransactionID string `json:"shopTransactionId"`
	TransactionDate   string `json:"transactionDate"`
}

// RetrieveTransaction looks up a payment by the shop's transaction id and its yyyyMMdd date.
func (c *Client) RetrieveTransaction(ctx context.Context, shopTransactionID, transactionDate string) (*domain.TransactionResult, error) {
	raw, header, err := c.post(ctx, retrievePath, retrieveBody{
		MallID:            c.mallID,
		ShopTransactionID: shopTransactionID,
		TransactionDate:   transactionDate,
	})
	if err != nil {
		return nil, err
	}
	if header.ResCd != ResultSuccess {
		return nil, &domain.GatewayError{ResCd: header.ResCd, ResMsg: header.ResMsg, Raw: raw}
	}

	pgCno := header.PgCno
	if pgCno == "" && header.PaymentInfo != nil {
		pgCno = header.PaymentInfo.PgCno
	}
	return &domain.TransactionResult{ResCd: header.ResCd, ResMsg: header.ResMsg, PgCno: pgCno, Raw: raw}, nil
}

// post returns the raw body along with its decoded result header.
// Transport failures and unreadable answers wrap domain.ErrGatewayUnavailable.
func (c *Client) post(ctx context.Context, path string, payload interface{}) (domain.RawJSON, *resultHeader, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading response: %v", domain.ErrGatewayUnavailable, err)
	}

	var header resultHeader
	if err := json.Unmarshal(raw, &header); err != nil || header.ResCd == "" {
		return nil, nil, fmt.Errorf("%w: status %d: %s", domain.ErrGatewayUnavailable, resp.StatusCode, truncate(string(raw), 256))
	}
	return domain.RawJSON(raw), &header, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
