package v1

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/tkaykim/modoouniformshop-sub000/internal/domain"
	"github.com/tkaykim/modoouniformshop-sub000/pkg/utils"
	"github.com/tkaykim/modoouniformshop-sub000/pkg/validation"
)

type LeadAdmin interface {
	ListLeads(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, int64, error)
	UpdateLeadStatus(ctx context.Context, id, status string) error
}

type AdminLeadHandler struct {
	leadUC   LeadAdmin
	validate *validator.Validate
}

func NewAdminLeadHandler(uc LeadAdmin) *AdminLeadHandler {
	return &AdminLeadHandler{leadUC: uc, validate: validation.New()}
}

func (h *AdminLeadHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	filter := domain.LeadFilter{
		Page:   page,
		Limit:  limit,
		Status: r.URL.Query().Get("status"),
	}

	leads, total, err := h.leadUC.ListLeads(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if leads == nil {
		leads = []domain.Lead{}
	}
	writeList(w, leads, domain.NewPagination(page, limit, total))
}

func (h *AdminLeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status string `json:"status" validate:"required"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeInvalidRequest(w, err)
		return
	}

	if err := h.leadUC.UpdateLeadStatus(r.Context(), r.PathValue("id"), req.Status); err != nil {
		writeDomainError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, domain.Response{Success: true, Message: "Lead status updated"})
}
