package usecase

import (
	"context"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/tkaykim/modoouniformshop-sub000/internal/domain"
	"github.com/tkaykim/modoouniformshop-sub000/pkg/cache"
	"github.com/tkaykim/modoouniformshop-sub000/pkg/logger"
	"github.com/tkaykim/modoouniformshop-sub000/pkg/validation"
)

const deadlineLayout = "2006-01-02"

// ReferenceStore keeps processed reference images and returns their public URL.
type ReferenceStore interface {
	UploadBuffer(ctx context.Context, data []byte, contentType string) (string, error)
	DeleteFile(ctx context.Context, fileURL string) error
}

// LeadTracker reports submitted leads to ad platforms. Implementations must not block.
type LeadTracker interface {
	TrackLead(ctx context.Context, lead *domain.Lead)
}

// ImageProcessor shrinks and re-encodes an upload, returning the bytes and their content type.
type ImageProcessor func(r io.Reader, filename string) ([]byte, string, error)

// LeadAnswerInput is the union of every step's fields; only the fields of the answered step are read.
type LeadAnswerInput struct {
	ProductType string `json:"productType"`
	Quantity    int    `json:"quantity"`
	HasDesign   *bool  `json:"hasDesign"`
	DesignNote  string `json:"designNote"`
	Deadline    string `json:"deadline"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

type productStep struct {
	ProductType string `json:"productType" validate:"required,max=50"`
}

type quantityStep struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=10000"`
}

type designStep struct {
	HasDesign *bool  `json:"hasDesign" validate:"required"`
	Note      string `json:"designNote" validate:"max=1000"`
}

type deadlineStep struct {
	Deadline string `json:"deadline" validate:"required,datetime=2006-01-02"`
}

type contactStep struct {
	Name  string `json:"name" validate:"required,max=50"`
	Phone string `json:"phone" validate:"required,krphone"`
	Email string `json:"email" validate:"omitempty,email,max=254"`
}

type LeadUsecase struct {
	repo       domain.LeadRepository
	sessions   cache.CacheService
	store      ReferenceStore
	tracker    LeadTracker
	process    ImageProcessor
	validate   *validator.Validate
	sessionTTL time.Duration
	maxRefs    int
	now        func() time.Time

	// mu serializes read-modify-write of cached sessions.
	mu sync.Mutex
}

func NewLeadUsecase(repo domain.LeadRepository, sessions cache.CacheService, store ReferenceStore, tracker LeadTracker, process ImageProcessor, sessionTTL time.Duration, maxRefs int) *LeadUsecase {
	return &LeadUsecase{
		repo:       repo,
		sessions:   sessions,
		store:      store,
		tracker:    tracker,
		process:    process,
		validate:   validation.New(),
		sessionTTL: sessionTTL,
		maxRefs:    maxRefs,
		now:        time.Now,
	}
}

func sessionKey(id string) string {
	return "lead-session:" + id
}

func (u *LeadUsecase) StartSession(ctx context.Context) *domain.LeadSession {
	now := u.now()
	s := &domain.LeadSession{
		ID:        uuid.NewString(),
		Step:      domain.LeadSteps[0],
		Answered:  map[domain.LeadStep]bool{},
		Dirty:     map[domain.LeadStep]bool{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	u.sessions.Set(sessionKey(s.ID), s, u.sessionTTL)

	logger.WithContext(ctx).Debug().Str("session_id", s.ID).Msg("Lead session started")
	return cloneSession(s)
}

func (u *LeadUsecase) GetSession(ctx context.Context, id string) (*domain.LeadSession, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	s, err := u.load(id)
	if err != nil {
		return nil, err
	}
	return cloneSession(s), nil
}

// Answer stores the value for step and moves to the first step still unanswered.
// Steps already passed can be revised; steps ahead of the current one cannot.
func (u *LeadUsecase) Answer(ctx context.Context, id string, step domain.LeadStep, in LeadAnswerInput) (*domain.LeadSession, error) {
	if !step.Required() {
		return nil, fmt.Errorf("%q: %w", step, domain.ErrUnknownStep)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	s, err := u.load(id)
	if err != nil {
		return nil, err
	}
	if step.Index() > s.Step.Index() {
		return nil, fmt.Errorf("%s while on %s: %w", step, s.Step, domain.ErrStepOutOfOrder)
	}

	if err := u.applyAnswer(&s.Answers, step, in); err != nil {
		return nil, err
	}
	s.Answered[step] = true
	u.markDirty(s, step)
	s.Step = s.FirstUnanswered()
	u.save(s)

	return cloneSession(s), nil
}

// Back moves one step back. Answers are kept.
func (u *LeadUsecase) Back(ctx context.Context, id string) (*domain.LeadSession, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	s, err := u.load(id)
	if err != nil {
		return nil, err
	}
	if i := s.Step.Index(); i > 0 {
		s.Step = domain.LeadSteps[i-1]
	}
	u.save(s)
	return cloneSession(s), nil
}

// Submit persists the lead. The first submit creates it; later ones update it only when something changed.
func (u *LeadUsecase) Submit(ctx context.Context, id string) (*domain.Lead, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	s, err := u.load(id)
	if err != nil {
		return nil, err
	}
	if !s.Complete() {
		return nil, fmt.Errorf("next required step is %s: %w", s.FirstUnanswered(), domain.ErrLeadIncomplete)
	}

	lead, err := leadFromAnswers(s)
	if err != nil {
		return nil, err
	}

	created := false
	switch {
	case s.LeadID == nil:
		if err := u.repo.Create(ctx, lead); err != nil {
			return nil, err
		}
		s.LeadID = &lead.ID
		created = true
	case len(s.Dirty) > 0:
		lead.ID = *s.LeadID
		if err := u.repo.Update(ctx, lead); err != nil {
			return nil, err
		}
	default:
		lead.ID = *s.LeadID
	}

	s.Saved = cloneAnswers(s.Answers)
	s.Dirty = map[domain.LeadStep]bool{}
	s.Step = domain.LeadStepConfirm
	u.save(s)

	if created {
		logger.WithContext(ctx).Info().Str("lead_id", lead.ID).Str("product_type", lead.ProductType).Int("quantity", lead.Quantity).Msg("Lead submitted")
		if u.tracker != nil {
			u.tracker.TrackLead(ctx, lead)
		}
	}
	return lead, nil
}

// UploadReference adds a reference image to the design answer.
func (u *LeadUsecase) UploadReference(ctx context.Context, id string, r io.Reader, filename string) (*domain.LeadSession, error) {
	if u.store == nil || u.process == nil {
		return nil, domain.ErrUploadsUnavailable
	}
	if _, err := u.checkReferenceRoom(id); err != nil {
		return nil, err
	}

	// Image work and the upload happen outside the lock.
	data, contentType, err := u.process(r, filename)
	if err != nil {
		return nil, &domain.ValidationError{Field: "file", Message: "unsupported or corrupt image"}
	}
	url, err := u.store.UploadBuffer(ctx, data, contentType)
	if err != nil {
		return nil, fmt.Errorf("store reference image: %w", err)
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	// The session may have expired or filled up while the image was in flight.
	s, err := u.load(id)
	if err == nil && s.Answers.Design != nil && len(s.Answers.Design.ReferenceImages) >= u.maxRefs {
		err = domain.ErrTooManyReferences
	}
	if err != nil {
		u.discardReference(ctx, url)
		return nil, err
	}
	if s.Answers.Design == nil {
		s.Answers.Design = &domain.LeadDesign{HasDesign: true}
	}
	s.Answers.Design.ReferenceImages = append(s.Answers.Design.ReferenceImages, url)
	u.markDirty(s, domain.LeadStepDesign)
	u.save(s)

	return cloneSession(s), nil
}

func (u *LeadUsecase) discardReference(ctx context.Context, url string) {
	if err := u.store.DeleteFile(ctx, url); err != nil {
		logger.WithContext(ctx).Warn().Err(err).Str("url", url).Msg("Orphaned reference image left in storage")
	}
}

func (u *LeadUsecase) checkReferenceRoom(id string) (*domain.LeadSession, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	s, err := u.load(id)
	if err != nil {
		return nil, err
	}
	if s.Answers.Design != nil && len(s.Answers.Design.ReferenceImages) >= u.maxRefs {
		return nil, domain.ErrTooManyReferences
	}
	return s, nil
}

// --- Admin ---

func (u *LeadUsecase) ListLeads(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, int64, error) {
	if filter.Status != "" && !domain.IsValidLeadStatus(filter.Status) {
		return nil, 0, domain.ErrInvalidLeadStatus
	}
	return u.repo.GetAll(ctx, filter)
}

func (u *LeadUsecase) UpdateLeadStatus(ctx context.Context, id, status string) error {
	if !domain.IsValidLeadStatus(status) {
		return domain.ErrInvalidLeadStatus
	}
	return u.repo.UpdateStatus(ctx, id, status)
}

// --- Session store ---

func (u *LeadUsecase) load(id string) (*domain.LeadSession, error) {
	v, ok := u.sessions.Get(sessionKey(id))
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	s, ok := v.(*domain.LeadSession)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// save refreshes the TTL so an active visitor does not lose progress.
func (u *LeadUsecase) save(s *domain.LeadSession) {
	s.UpdatedAt = u.now()
	u.sessions.Set(sessionKey(s.ID), s, u.sessionTTL)
}

func (u *LeadUsecase) markDirty(s *domain.LeadSession, step domain.LeadStep) {
	if reflect.DeepEqual(stepValue(s.Answers, step), stepValue(s.Saved, step)) {
		delete(s.Dirty, step)
		return
	}
	s.Dirty[step] = true
}

func stepValue(a domain.LeadAnswers, step domain.LeadStep) interface{} {
	switch step {
	case domain.LeadStepProduct:
		return a.ProductType
	case domain.LeadStepQuantity:
		return a.Quantity
	case domain.LeadStepDesign:
		return a.Design
	case domain.LeadStepDeadline:
		return a.Deadline
	case domain.LeadStepContact:
		return a.Contact
	}
	return nil
}

func (u *LeadUsecase) check(v interface{}) error {
	if err := u.validate.Struct(v); err != nil {
		field, msg := validation.First(err)
		return &domain.ValidationError{Field: field, Message: msg}
	}
	return nil
}

func (u *LeadUsecase) applyAnswer(a *domain.LeadAnswers, step domain.LeadStep, in LeadAnswerInput) error {
	switch step {
	case domain.LeadStepProduct:
		v := productStep{ProductType: strings.TrimSpace(in.ProductType)}
		if err := u.check(v); err != nil {
			return err
		}
		a.ProductType = &v.ProductType

	case domain.LeadStepQuantity:
		v := quantityStep{Quantity: in.Quantity}
		if err := u.check(v); err != nil {
			return err
		}
		a.Quantity = &v.Quantity

	case domain.LeadStepDesign:
		v := designStep{HasDesign: in.HasDesign, Note: strings.TrimSpace(in.DesignNote)}
		if err := u.check(v); err != nil {
			return err
		}
		design := &domain.LeadDesign{HasDesign: *v.HasDesign, Note: v.Note}
		if a.Design != nil {
			design.ReferenceImages = append([]string(nil), a.Design.ReferenceImages...)
		}
		a.Design = design

	case domain.LeadStepDeadline:
		v := deadlineStep{Deadline: strings.TrimSpace(in.Deadline)}
		if err := u.check(v); err != nil {
			return err
		}
		// Same layout on both sides, so string order is date order.
		if v.Deadline < u.now().In(KST).Format(deadlineLayout) {
			return &domain.ValidationError{Field: "deadline", Message: "must not be in the past"}
		}
		a.Deadline = &v.Deadline

	case domain.LeadStepContact:
		v := contactStep{
			Name:  strings.TrimSpace(in.Name),
			Phone: strings.TrimSpace(in.Phone),
			Email: strings.TrimSpace(in.Email),
		}
		if err := u.check(v); err != nil {
			return err
		}
		a.Contact = &domain.LeadContact{Name: v.Name, Phone: v.Phone, Email: v.Email}

	default:
		return domain.ErrUnknownStep
	}
	return nil
}

func leadFromAnswers(s *domain.LeadSession) (*domain.Lead, error) {
	a := s.Answers
	deadline, err := time.ParseInLocation(deadlineLayout, *a.Deadline, KST)
	if err != nil {
		return nil, &domain.ValidationError{Field: "deadline", Message: "must match 2006-01-02"}
	}

	lead := &domain.Lead{
		SessionID:       s.ID,
		ProductType:     *a.ProductType,
		Quantity:        *a.Quantity,
		HasDesign:       a.Design.HasDesign,
		ReferenceImages: append([]string{}, a.Design.ReferenceImages...),
		Deadline:        &deadline,
		ContactName:     a.Contact.Name,
		ContactPhone:    a.Contact.Phone,
	}
	if a.Design.Note != "" {
		note := a.Design.Note
		lead.DesignNote = &note
	}
	if a.Contact.Email != "" {
		email := a.Contact.Email
		lead.ContactEmail = &email
	}
	return lead, nil
}

func cloneAnswers(a domain.LeadAnswers) domain.LeadAnswers {
	out := domain.LeadAnswers{}
	if a.ProductType != nil {
		v := *a.ProductType
		out.ProductType = &v
	}
	if a.Quantity != nil {
		v := *a.Quantity
		out.Quantity = &v
	}
	if a.Design != nil {
		v := *a.Design
		v.ReferenceImages = append([]string(nil), a.Design.ReferenceImages...)
		out.Design = &v
	}
	if a.Deadline != nil {
		v := *a.Deadline
		out.Deadline = &v
	}
	if a.Contact != nil {
		v := *a.Contact
		out.Contact = &v
	}
	return out
}

func cloneSteps(m map[domain.LeadStep]bool) map[domain.LeadStep]bool {
	out := make(map[domain.LeadStep]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// cloneSession detaches the returned value from the cached one.
func cloneSession(s *domain.LeadSession) *domain.LeadSession {
	out := *s
	out.Answers = cloneAnswers(s.Answers)
	out.Saved = cloneAnswers(s.Saved)
	out.Answered = cloneSteps(s.Answered)
	out.Dirty = cloneSteps(s.Dirty)
	if s.LeadID != nil {
		id := *s.LeadID
		out.LeadID = &id
	}
	return &out
}
