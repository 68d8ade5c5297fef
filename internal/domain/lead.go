package domain

import (
	"context"
	"time"
)

// LeadStep is one screen of the quote wizard.
type LeadStep string

const (
	LeadStepProduct  LeadStep = "product"
	LeadStepQuantity LeadStep = "quantity"
	LeadStepDesign   LeadStep = "design"
	LeadStepDeadline LeadStep = "deadline"
	LeadStepContact  LeadStep = "contact"
	LeadStepConfirm  LeadStep = "confirm"
)

// LeadSteps is the fixed wizard order. Every step before confirm is required.
var LeadSteps = []LeadStep{
	LeadStepProduct,
	LeadStepQuantity,
	LeadStepDesign,
	LeadStepDeadline,
	LeadStepContact,
	LeadStepConfirm,
}

// Index returns the position of s in LeadSteps, or -1.
func (s LeadStep) Index() int {
	for i, step := range LeadSteps {
		if step == s {
			return i
		}
	}
	return -1
}

func (s LeadStep) Required() bool {
	return s != LeadStepConfirm && s.Index() >= 0
}

type LeadDesign struct {
	HasDesign       bool     `json:"hasDesign"`
	Note            string   `json:"note,omitempty"`
	ReferenceImages []string `json:"referenceImages,omitempty"`
}

type LeadContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// LeadAnswers holds one field per step; nil means not answered.
type LeadAnswers struct {
	ProductType *string      `json:"productType,omitempty"`
	Quantity    *int         `json:"quantity,omitempty"`
	Design      *LeadDesign  `json:"design,omitempty"`
	Deadline    *string      `json:"deadline,omitempty"` // yyyy-mm-dd
	Contact     *LeadContact `json:"contact,omitempty"`
}

// LeadSession is the in-progress wizard state, kept in cache until it expires.
type LeadSession struct {
	ID        string            `json:"id"`
	Step      LeadStep          `json:"step"`
	Answers   LeadAnswers       `json:"answers"`
	Answered  map[LeadStep]bool `json:"answered"`
	Dirty     map[LeadStep]bool `json:"dirty"`
	LeadID    *string           `json:"leadId,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`

	// Saved is the answer snapshot of the last successful submit, used for dirty tracking.
	Saved LeadAnswers `json:"-"`
}

// FirstUnanswered returns the earliest step without an answer, or confirm when all are in.
func (s *LeadSession) FirstUnanswered() LeadStep {
	for _, step := range LeadSteps {
		if step.Required() && !s.Answered[step] {
			return step
		}
	}
	return LeadStepConfirm
}

func (s *LeadSession) Complete() bool {
	return s.FirstUnanswered() == LeadStepConfirm
}

type Lead struct {
	ID              string     `json:"id"`
	SessionID       string     `json:"sessionId"`
	ProductType     string     `json:"productType"`
	Quantity        int        `json:"quantity"`
	HasDesign       bool       `json:"hasDesign"`
	DesignNote      *string    `json:"designNote"`
	ReferenceImages []string   `json:"referenceImages"`
	Deadline        *time.Time `json:"deadline"`
	ContactName     string     `json:"contactName"`
	ContactPhone    string     `json:"contactPhone"`
	ContactEmail    *string    `json:"contactEmail"`
	Status          string     `json:"status"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type LeadFilter struct {
	Page   int
	Limit  int
	Status string
}

type LeadRepository interface {
	Create(ctx context.Context, lead *Lead) error
	Update(ctx context.Context, lead *Lead) error
	GetAll(ctx context.Context, filter LeadFilter) ([]Lead, int64, error)
	UpdateStatus(ctx context.Context, id, status string) error
}
