package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/deppfellow/phonebook/internal/model"
)

const contactColumns = `id, name, number, created_at, updated_at`

// ContactRepository is the contact store. Each method is one round trip.
type ContactRepository struct {
	db DBTX
}

func NewContactRepository(db DBTX) *ContactRepository {
	return &ContactRepository{db: db}
}

func scanContact(row pgx.CollectableRow) (model.Contact, error) {
	var c model.Contact
	err := row.Scan(&c.ID, &c.Name, &c.Number, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

// List returns every contact, oldest first. It never returns a nil slice.
func (r *ContactRepository) List(ctx context.Context) ([]model.Contact, error) {
	rows, err := r.db.Query(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}

	contacts, err := pgx.CollectRows(rows, scanContact)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	if contacts == nil {
		contacts = []model.Contact{}
	}
	return contacts, nil
}

// Get returns the contact with id, or an error wrapping pgx.ErrNoRows.
func (r *ContactRepository) Get(ctx context.Context, id uuid.UUID) (*model.Contact, error) {
	rows, err := r.db.Query(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get contact %s: %w", id, err)
	}

	contact, err := pgx.CollectExactlyOneRow(rows, scanContact)
	if err != nil {
		return nil, fmt.Errorf("get contact %s: %w", id, err)
	}
	return &contact, nil
}

func (r *ContactRepository) Create(ctx context.Context, input model.ContactInput) (*model.Contact, error) {
	rows, err := r.db.Query(ctx,
		`INSERT INTO contacts (name, number) VALUES ($1, $2) RETURNING `+contactColumns,
		input.Name, input.Number,
	)
	if err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}

	contact, err := pgx.CollectExactlyOneRow(rows, scanContact)
	if err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return &contact, nil
}

// Update replaces name and number. A missing id yields pgx.ErrNoRows.
func (r *ContactRepository) Update(ctx context.Context, id uuid.UUID, input model.ContactInput) (*model.Contact, error) {
	rows, err := r.db.Query(ctx,
		`UPDATE contacts SET name = $2, number = $3, updated_at = now() WHERE id = $1 RETURNING `+contactColumns,
		id, input.Name, input.Number,
	)
	if err != nil {
		return nil, fmt.Errorf("update contact %s: %w", id, err)
	}

	contact, err := pgx.CollectExactlyOneRow(rows, scanContact)
	if err != nil {
		return nil, fmt.Errorf("update contact %s: %w", id, err)
	}
	return &contact, nil
}

// Delete removes the contact. Deleting a missing id is not an error.
func (r *ContactRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete contact %s: %w", id, err)
	}
	return nil
}

func (r *ContactRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM contacts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count contacts: %w", err)
	}
	return count, nil
}
