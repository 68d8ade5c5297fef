package sqlcrepo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tkaykim/modoouniformshop-sub000/db/sqlc"
	"github.com/tkaykim/modoouniformshop-sub000/internal/domain"
)

type leadRepository struct {
	db      *pgxpool.Pool
	queries *sqlc.Queries
}

func NewLeadRepository(db *pgxpool.Pool) domain.LeadRepository {
	return &leadRepository{
		db:      db,
		queries: sqlc.New(db),
	}
}

func sqlcLeadToDomain(l sqlc.Lead) domain.Lead {
	return domain.Lead{
		ID:              uuidToString(l.ID),
		SessionID:       l.SessionID,
		ProductType:     l.ProductType,
		Quantity:        int(l.Quantity),
		HasDesign:       l.HasDesign,
		DesignNote:      l.DesignNote,
		ReferenceImages: nonNilStrings(l.ReferenceImages),
		Deadline:        dateToTimePtr(l.Deadline),
		ContactName:     l.ContactName,
		ContactPhone:    l.ContactPhone,
		ContactEmail:    l.ContactEmail,
		Status:          l.Status,
		CreatedAt:       pgtimeToTime(l.CreatedAt),
		UpdatedAt:       pgtimeToTime(l.UpdatedAt),
	}
}

func (r *leadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	if lead.Status == "" {
		lead.Status = domain.LeadStatusNew
	}

	q := GetQueriesFromContext(ctx, r.queries)
	row, err := q.CreateLead(ctx, sqlc.CreateLeadParams{
		SessionID:       lead.SessionID,
		ProductType:     lead.ProductType,
		Quantity:        int32(lead.Quantity),
		HasDesign:       lead.HasDesign,
		DesignNote:      lead.DesignNote,
		ReferenceImages: nonNilStrings(lead.ReferenceImages),
		Deadline:        timePtrToDate(lead.Deadline),
		ContactName:     lead.ContactName,
		ContactPhone:    lead.ContactPhone,
		ContactEmail:    lead.ContactEmail,
		Status:          lead.Status,
	})
	if err != nil {
		return fmt.Errorf("create lead: %w", err)
	}

	*lead = sqlcLeadToDomain(row)
	return nil
}

func (r *leadRepository) Update(ctx context.Context, lead *domain.Lead) error {
	uid, ok := parseUUID(lead.ID)
	if !ok {
		return domain.ErrLeadNotFound
	}

	q := GetQueriesFromContext(ctx, r.queries)
	affected, err := q.UpdateLeadAnswers(ctx, sqlc.UpdateLeadAnswersParams{
		ID:              uid,
		ProductType:     lead.ProductType,
		Quantity:        int32(lead.Quantity),
		HasDesign:       lead.HasDesign,
		DesignNote:      lead.DesignNote,
		ReferenceImages: nonNilStrings(lead.ReferenceImages),
		Deadline:        timePtrToDate(lead.Deadline),
		ContactName:     lead.ContactName,
		ContactPhone:    lead.ContactPhone,
		ContactEmail:    lead.ContactEmail,
	})
	if err != nil {
		return fmt.Errorf("update lead %s: %w", lead.ID, err)
	}
	if affected == 0 {
		return domain.ErrLeadNotFound
	}
	return nil
}

func (r *leadRepository) GetAll(ctx context.Context, filter domain.LeadFilter) ([]domain.Lead, int64, error) {
	q := GetQueriesFromContext(ctx, r.queries)
	limit, offset := pageOffset(filter.Page, filter.Limit)

	rows, err := q.ListLeads(ctx, sqlc.ListLeadsParams{
		Status: filterPtr(filter.Status),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}

	total, err := q.CountLeads(ctx, filterPtr(filter.Status))
	if err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	leads := make([]domain.Lead, len(rows))
	for i, row := range rows {
		leads[i] = sqlcLeadToDomain(row)
	}
	return leads, total, nil
}

func (r *leadRepository) UpdateStatus(ctx context.Context, id, status string) error {
	uid, ok := parseUUID(id)
	if !ok {
		return domain.ErrLeadNotFound
	}

	affected, err := GetQueriesFromContext(ctx, r.queries).UpdateLeadStatus(ctx, sqlc.UpdateLeadStatusParams{
		ID:     uid,
		Status: status,
	})
	if err != nil {
		return fmt.Errorf("update lead %s status: %w", id, err)
	}
	if affected == 0 {
		return domain.ErrLeadNotFound
	}
	return nil
}

// nonNilStrings keeps a nil slice from being sent as NULL to a NOT NULL array column.
func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
