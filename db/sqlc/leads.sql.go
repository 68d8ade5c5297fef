// Queries from db/query/leads.sql, laid out the way sqlc's pgx/v5 generator emits them.
// Maintained by hand: edit db/query/leads.sql and this file together.

package sqlc

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const countLeads = `-- name: CountLeads :one
SELECT count(*)
FROM leads
WHERE ($1::text IS NULL OR status = $1)
`

func (q *Queries) CountLeads(ctx context.Context, status *string) (int64, error) {
	row := q.db.QueryRow(ctx, countLeads, status)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createLead = `-- name: CreateLead :one
INSERT INTO leads (session_id, product_type, quantity, has_design, design_note, reference_images,
                   deadline, contact_name, contact_phone, contact_email, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id, session_id, product_type, quantity, has_design, design_note, reference_images, deadline,
          contact_name, contact_phone, contact_email, status, created_at, updated_at
`

type CreateLeadParams struct {
	SessionID       string      `json:"session_id"`
	ProductType     string      `json:"product_type"`
	Quantity        int32       `json:"quantity"`
	HasDesign       bool        `json:"has_design"`
	DesignNote      *string     `json:"design_note"`
	ReferenceImages []string    `json:"reference_images"`
	Deadline        pgtype.Date `json:"deadline"`
	ContactName     string      `json:"contact_name"`
	ContactPhone    string      `json:"contact_phone"`
	ContactEmail    *string     `json:"contact_email"`
	Status          string      `json:"status"`
}

func (q *Queries) CreateLead(ctx context.Context, arg CreateLeadParams) (Lead, error) {
	row := q.db.QueryRow(ctx, createLead,
		arg.SessionID,
		arg.ProductType,
		arg.Quantity,
		arg.HasDesign,
		arg.DesignNote,
		arg.ReferenceImages,
		arg.Deadline,
		arg.ContactName,
		arg.ContactPhone,
		arg.ContactEmail,
		arg.Status,
	)
	var i Lead
	err := row.Scan(
		&i.ID,
		&i.SessionID,
		&i.ProductType,
		&i.Quantity,
		&i.HasDesign,
		&i.DesignNote,
		&i.ReferenceImages,
		&i.Deadline,
		&i.ContactName,
		&i.ContactPhone,
		&i.ContactEmail,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listLeads = `-- name: ListLeads :many
SELECT id, session_id, product_type, quantity, has_design, design_note, reference_images, deadline,
       contact_name, contact_phone, contact_email, status, created_at, updated_at
FROM leads
WHERE ($1::text IS NULL OR status = $1)
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`

type ListLeadsParams struct {
	Status *string `json:"status"`
	Limit  int32   `json:"limit"`
	Offset int32   `json:"offset"`
}

func (q *Queries) ListLeads(ctx context.Context, arg ListLeadsParams) ([]Lead, error) {
	rows, err := q.db.Query(ctx, listLeads, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Lead
	for rows.Next() {
		var i Lead
		if err := rows.Scan(
			&i.ID,
			&i.SessionID,
			&i.ProductType,
			&i.Quantity,
			&i.HasDesign,
			&i.DesignNote,
			&i.ReferenceImages,
			&i.Deadline,
			&i.ContactName,
			&i.ContactPhone,
			&i.ContactEmail,
			&i.Status,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateLeadAnswers = `-- name: UpdateLeadAnswers :execrows
UPDATE leads
SET product_type = $2,
    quantity = $3,
    has_design = $4,
    design_note = $5,
    reference_images = $6,
    deadline = $7,
    contact_name = $8,
    contact_phone = $9,
    contact_email = $10,
    updated_at = now()
WHERE id = $1
`

type UpdateLeadAnswersParams struct {
	ID              pgtype.UUID `json:"id"`
	ProductType     string      `json:"product_type"`
	Quantity        int32       `json:"quantity"`
	HasDesign       bool        `json:"has_design"`
	DesignNote      *string     `json:"design_note"`
	ReferenceImages []string    `json:"reference_images"`
	Deadline        pgtype.Date `json:"deadline"`
	ContactName     string      `json:"contact_name"`
	ContactPhone    string      `json:"contact_phone"`
	ContactEmail    *string     `json:"contact_email"`
}

func (q *Queries) UpdateLeadAnswers(ctx context.Context, arg UpdateLeadAnswersParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateLeadAnswers,
		arg.ID,
		arg.ProductType,
		arg.Quantity,
		arg.HasDesign,
		arg.DesignNote,
		arg.ReferenceImages,
		arg.Deadline,
		arg.ContactName,
		arg.ContactPhone,
		arg.ContactEmail,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const updateLeadStatus = `-- name: UpdateLeadStatus :execrows
UPDATE leads
SET status = $2,
    updated_at = now()
WHERE id = $1
`

type UpdateLeadStatusParams struct {
	ID     pgtype.UUID `json:"id"`
	Status string      `json:"status"`
}

func (q *Queries) UpdateLeadStatus(ctx context.Context, arg UpdateLeadStatusParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateLeadStatus, arg.ID, arg.Status)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
