package v1

import (
	"context"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/tkaykim/modoouniformshop-sub000/internal/domain"
	"github.com/tkaykim/modoouniformshop-sub000/internal/usecase"
	"github.com/tkaykim/modoouniformshop-sub000/pkg/logger"
	"github.com/tkaykim/modoouniformshop-sub000/pkg/utils"
)

var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

// LeadWizard is the public side of the lead usecase.
type LeadWizard interface {
	StartSession(ctx context.Context) *domain.LeadSession
	GetSession(ctx context.Context, id string) (*domain.LeadSession, error)
	Answer(ctx context.Context, id string, step domain.LeadStep, in usecase.LeadAnswerInput) (*domain.LeadSession, error)
	Back(ctx context.Context, id string) (*domain.LeadSession, error)
	Submit(ctx context.Context, id string) (*domain.Lead, error)
	UploadReference(ctx context.Context, id string, r io.Reader, filename string) (*domain.LeadSession, error)
}

type LeadHandler struct {
	leadUC        LeadWizard
	maxUploadSize int64
}

func NewLeadHandler(uc LeadWizard, maxUploadSizeMB int64) *LeadHandler {
	return &LeadHandler{
		leadUC:        uc,
		maxUploadSize: maxUploadSizeMB << 20,
	}
}

func (h *LeadHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusCreated, h.leadUC.StartSession(r.Context()))
}

func (h *LeadHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.leadUC.GetSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, s)
}

func (h *LeadHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var in usecase.LeadAnswerInput
	if err := decodeJSON(w, r, &in); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	step := domain.LeadStep(strings.ToLower(r.PathValue("step")))
	s, err := h.leadUC.Answer(r.Context(), r.PathValue("id"), step, in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, s)
}

func (h *LeadHandler) Back(w http.ResponseWriter, r *http.Request) {
	s, err := h.leadUC.Back(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, s)
}

func (h *LeadHandler) Submit(w http.ResponseWriter, r *http.Request) {
	lead, err := h.leadUC.Submit(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, lead)
}

// UploadReference accepts one multipart "file" image for the design step.
func (h *LeadHandler) UploadReference(w http.ResponseWriter, r *http.Request) {
	log := logger.WithContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+(1<<20))
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		log.Warn().Err(err).Msg("Upload rejected: multipart parse failed")
		utils.WriteError(w, http.StatusBadRequest, "invalid_request", "File too large or invalid format")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !utils.IsImage(contentType) {
		log.Warn().Str("content_type", contentType).Msg("Upload rejected: MIME type")
		utils.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid file type. Allowed: JPEG, PNG, WebP, GIF")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		log.Warn().Str("ext", ext).Msg("Upload rejected: extension")
		utils.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid file extension")
		return
	}

	s, err := h.leadUC.UploadReference(r.Context(), r.PathValue("id"), file, header.Filename)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, s)
}
