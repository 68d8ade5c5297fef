package v1

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/tkaykim/modoouniformshop-sub000/internal/domain"
	"github.com/tkaykim/modoouniformshop-sub000/pkg/logger"
	"github.com/tkaykim/modoouniformshop-sub000/pkg/utils"
	"github.com/tkaykim/modoouniformshop-sub000/pkg/validation"
)

const (
	maxPageSize = 100
	maxPage     = 100000
)

func writeData(w http.ResponseWriter, status int, data interface{}) {
	utils.WriteJSON(w, status, domain.Response{Success: true, Data: data})
}

func writeList(w http.ResponseWriter, data interface{}, meta domain.Pagination) {
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Data: data, Meta: meta})
}

func pageParams(r *http.Request) (int, int) {
	page := utils.ParseInt(r.URL.Query().Get("page"), 1)
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	limit := utils.ParseInt(r.URL.Query().Get("limit"), 20)
	if limit < 1 {
		limit = 20
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

// decodeJSON reads a JSON body; unknown fields are ignored as older admin builds send extras.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return errors.New("empty body")
	}
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst)
}

func writeInvalidRequest(w http.ResponseWriter, err error) {
	fields := validation.FromError(err)
	if msg, ok := fields["_"]; ok && len(fields) == 1 {
		utils.WriteError(w, http.StatusBadRequest, "invalid_request", msg)
		return
	}
	utils.WriteFieldErrors(w, http.StatusBadRequest, "invalid_request", "Validation failed", fields)
}

type errorMapping struct {
	err    error
	status int
	code   string
}

// Order matters only where one error wraps another.
var errorMappings = []errorMapping{
	{domain.ErrMissingOrderID, http.StatusBadRequest, "missing_order_id"},
	{domain.ErrOrderNotFound, http.StatusNotFound, "order_not_found"},
	{domain.ErrMissingApprovalReference, http.StatusUnprocessableEntity, "missing_pgCno"},
	{domain.ErrMissingRefundInfo, http.StatusBadRequest, "missing_refundInfo"},
	{domain.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{domain.ErrUnsupportedPath, http.StatusBadRequest, "unsupported_path"},
	{domain.ErrOrderClosed, http.StatusConflict, "order_closed"},
	{domain.ErrRefundConflict, http.StatusConflict, "refund_conflict"},
	{domain.ErrGatewayUnavailable, http.StatusBadGateway, "revise_failed"},

	{domain.ErrSessionNotFound, http.StatusNotFound, "session_not_found"},
	{domain.ErrUnknownStep, http.StatusNotFound, "unknown_step"},
	{domain.ErrStepOutOfOrder, http.StatusConflict, "step_out_of_order"},
	{domain.ErrLeadIncomplete, http.StatusUnprocessableEntity, "lead_incomplete"},
	{domain.ErrLeadNotFound, http.StatusNotFound, "lead_not_found"},
	{domain.ErrInvalidLeadStatus, http.StatusBadRequest, "invalid_status"},
	{domain.ErrTooManyReferences, http.StatusConflict, "too_many_references"},
	{domain.ErrUploadsUnavailable, http.StatusServiceUnavailable, "uploads_unavailable"},
}

// writeDomainError maps usecase errors to the API error envelope.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var persistErr *domain.PersistAfterReviseError
	if errors.As(err, &persistErr) {
		var detail []byte
		if persistErr.Revise != nil {
			detail = persistErr.Revise.Raw
		}
		if errors.Is(err, domain.ErrRefundConflict) {
			utils.WriteErrorDetail(w, http.StatusConflict, "refund_conflict",
				"Gateway accepted the request but the order changed meanwhile; reconcile with the payment lookup", detail)
			return
		}
		utils.WriteErrorDetail(w, http.StatusInternalServerError, "persist_failed",
			"Gateway accepted the request but the order could not be updated; reconcile with the payment lookup", detail)
		return
	}

	var gwErr *domain.GatewayError
	if errors.As(err, &gwErr) {
		utils.WriteErrorDetail(w, http.StatusBadGateway, "revise_res_failed", gwErr.Error(), gwErr.Raw)
		return
	}

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		fields := map[string]string{}
		if vErr.Field != "" {
			fields[vErr.Field] = vErr.Message
		}
		utils.WriteFieldErrors(w, http.StatusBadRequest, "invalid_request", vErr.Error(), fields)
		return
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			utils.WriteError(w, m.status, m.code, err.Error())
			return
		}
	}

	logger.WithContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Unhandled error")
	utils.WriteError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
}
