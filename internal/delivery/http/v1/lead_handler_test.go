package v1

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tkaykim/modoouniformshop-sub000/internal/domain"
	"github.com/tkaykim/modoouniformshop-sub000/internal/infrastructure/cache"
	"github.com/tkaykim/modoouniformshop-sub000/internal/usecase"
)

type mockLeadRepo struct {
	mock.Mock
}

func (m *mockLeadRepo) Create(ctx context.Context, lead *domain.Lead) error {
	args := m.Called(ctx, lead)
	if args.Error(0) == nil {
		lead.ID = "lead-42"
		lead.Status = domain.LeadStatusNew
	}
	return args.Error(0)
}

func (m *mockLeadRepo) Update(ctx context.Context, lead *domain.Lead) error {
	return m.Called(ctx, lead).Error(0)
}

func (m *mockLeadRepo) GetAll(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, int64, error) {
	args := m.Called(ctx, filter)
	leads, _ := args.Get(0).([]domain.Lead)
	return leads, args.Get(1).(int64), args.Error(2)
}

func (m *mockLeadRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return m.Called(ctx, id, status).Error(0)
}

type stubStore struct {
	uploads int
}

func (s *stubStore) UploadBuffer(ctx context.Context, data []byte, contentType string) (string, error) {
	s.uploads++
	return "https://cdn.example.com/leads/references/ref.webp", nil
}

func (s *stubStore) DeleteFile(ctx context.Context, fileURL string) error {
	return nil
}

func stubProcess(r io.Reader, filename string) ([]byte, string, error) {
	data, err := io.ReadAll(r)
	return data, "image/webp", err
}

func leadMux(repo domain.LeadRepository, store usecase.ReferenceStore) *http.ServeMux {
	var process usecase.ImageProcessor
	if store != nil {
		process = stubProcess
	}
	uc := usecase.NewLeadUsecase(repo, cache.NewMemoryCache(time.Hour, time.Hour), store, nil, process, time.Hour, 2)
	h := NewLeadHandler(uc, 1)
	admin := NewAdminLeadHandler(uc)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /leads/sessions", h.StartSession)
	mux.HandleFunc("GET /leads/sessions/{id}", h.GetSession)
	mux.HandleFunc("PUT /leads/sessions/{id}/steps/{step}", h.Answer)
	mux.HandleFunc("POST /leads/sessions/{id}/back", h.Back)
	mux.HandleFunc("POST /leads/sessions/{id}/uploads", h.UploadReference)
	mux.HandleFunc("POST /leads/sessions/{id}/submit", h.Submit)
	mux.HandleFunc("GET /admin/leads", admin.ListLeads)
	mux.HandleFunc("PATCH /admin/leads/{id}/status", admin.UpdateStatus)
	return mux
}

type sessionBody struct {
	Success bool               `json:"success"`
	Data    domain.LeadSession `json:"data"`
}

func decodeSession(t *testing.T, rec *httptest.ResponseRecorder) domain.LeadSession {
	t.Helper()
	var body sessionBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.True(t, body.Success)
	return body.Data
}

func startSession(t *testing.T, mux http.Handler) string {
	t.Helper()
	rec := doJSON(t, mux, http.MethodPost, "/leads/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	s := decodeSession(t, rec)
	assert.Equal(t, domain.LeadStepProduct, s.Step)
	return s.ID
}

func TestLeadWizard_FullFlow(t *testing.T) {
	repo := new(mockLeadRepo)
	repo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Lead")).Return(nil).Once()
	mux := leadMux(repo, nil)
	id := startSession(t, mux)
	base := "/leads/sessions/" + id

	rec := doJSON(t, mux, http.MethodPut, base+"/steps/deadline", `{"deadline":"2099-01-01"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "step_out_of_order", decodeError(t, rec).Error)

	deadline := time.Now().AddDate(0, 1, 0).Format("2006-01-02")
	steps := []struct {
		step string
		body string
		next domain.LeadStep
	}{
		{"product", `{"productType":"soccer uniform"}`, domain.LeadStepQuantity},
		{"quantity", `{"quantity":25}`, domain.LeadStepDesign},
		{"design", `{"hasDesign":false,"designNote":"navy with white numbers"}`, domain.LeadStepDeadline},
		{"deadline", `{"deadline":"` + deadline + `"}`, domain.LeadStepContact},
		{"contact", `{"name":"Kim","phone":"010-1234-5678"}`, domain.LeadStepConfirm},
	}
	for _, s := range steps {
		rec := doJSON(t, mux, http.MethodPut, base+"/steps/"+s.step, s.body)
		require.Equal(t, http.StatusOK, rec.Code, s.step)
		assert.Equal(t, s.next, decodeSession(t, rec).Step)
	}

	rec = doJSON(t, mux, http.MethodPost, base+"/back", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.LeadStepContact, decodeSession(t, rec).Step)

	rec = doJSON(t, mux, http.MethodPost, base+"/submit", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data domain.Lead `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "lead-42", body.Data.ID)
	assert.Equal(t, 25, body.Data.Quantity)
	assert.Equal(t, "soccer uniform", body.Data.ProductType)

	rec = doJSON(t, mux, http.MethodGet, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	s := decodeSession(t, rec)
	assert.Empty(t, s.Dirty)
	require.NotNil(t, s.LeadID)
	assert.Equal(t, "lead-42", *s.LeadID)
	repo.AssertExpectations(t)
}

func TestLeadWizard_Errors(t *testing.T) {
	mux := leadMux(new(mockLeadRepo), nil)
	id := startSession(t, mux)
	base := "/leads/sessions/" + id

	rec := doJSON(t, mux, http.MethodGet, "/leads/sessions/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "session_not_found", decodeError(t, rec).Error)

	rec = doJSON(t, mux, http.MethodPut, base+"/steps/colour", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "unknown_step", decodeError(t, rec).Error)

	rec = doJSON(t, mux, http.MethodPut, base+"/steps/product", `{"productType":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, "invalid_request", body.Error)
	assert.Contains(t, body.Fields, "productType")

	rec = doJSON(t, mux, http.MethodPost, base+"/submit", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "lead_incomplete", decodeError(t, rec).Error)
}

func multipartBody(t *testing.T, filename, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func upload(t *testing.T, mux http.Handler, path, filename, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t, filename, contentType, []byte("fake-image-bytes"))
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestLeadUpload(t *testing.T) {
	store := &stubStore{}
	mux := leadMux(new(mockLeadRepo), store)
	id := startSession(t, mux)
	path := "/leads/sessions/" + id + "/uploads"

	rec := upload(t, mux, path, "ref.pdf", "application/pdf")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload(t, mux, path, "ref.exe", "image/png")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = upload(t, mux, path, "ref.png", "image/png")
	require.Equal(t, http.StatusOK, rec.Code)
	s := decodeSession(t, rec)
	require.NotNil(t, s.Answers.Design)
	assert.Equal(t, []string{"https://cdn.example.com/leads/references/ref.webp"}, s.Answers.Design.ReferenceImages)

	upload(t, mux, path, "ref2.jpg", "image/jpeg")
	rec = upload(t, mux, path, "ref3.jpg", "image/jpeg")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "too_many_references", decodeError(t, rec).Error)
	assert.Equal(t, 2, store.uploads)
}

func TestLeadUpload_NotConfigured(t *testing.T) {
	mux := leadMux(new(mockLeadRepo), nil)
	id := startSession(t, mux)

	rec := upload(t, mux, "/leads/sessions/"+id+"/uploads", "ref.png", "image/png")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "uploads_unavailable", decodeError(t, rec).Error)
}

func TestAdminLeads(t *testing.T) {
	repo := new(mockLeadRepo)
	repo.On("GetAll", mock.Anything, domain.LeadFilter{Page: 1, Limit: 20, Status: "new"}).
		Return([]domain.Lead{{ID: "l1", Status: "new"}}, int64(1), nil)
	repo.On("UpdateStatus", mock.Anything, "l1", "quoted").Return(nil)
	repo.On("UpdateStatus", mock.Anything, "gone", "won").Return(domain.ErrLeadNotFound)
	mux := leadMux(repo, nil)

	rec := doJSON(t, mux, http.MethodGet, "/admin/leads?status=new", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"l1"`)

	rec = doJSON(t, mux, http.MethodGet, "/admin/leads?status=maybe", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_status", decodeError(t, rec).Error)

	rec = doJSON(t, mux, http.MethodPatch, "/admin/leads/l1/status", `{"status":"quoted"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, mux, http.MethodPatch, "/admin/leads/gone/status", `{"status":"won"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, mux, http.MethodPatch, "/admin/leads/l1/status", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decodeError(t, rec).Error)

	repo.AssertExpectations(t)
}
