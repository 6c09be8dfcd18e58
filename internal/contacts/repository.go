package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rolodex-app/rolodex/internal/platform/httpx"
)

// Repository defines persistence operations for contacts. Every lookup is
// scoped to the owning user.
type Repository interface {
	Create(ctx context.Context, contact Contact) (int64, error)
	GetByID(ctx context.Context, userID, id int64) (*Contact, error)
	List(ctx context.Context, userID int64, limit, offset int) ([]Contact, int, error)
	Update(ctx context.Context, userID, id int64, contact Contact) error
	Delete(ctx context.Context, userID, id int64) (*Contact, error)
	UpcomingBirthdays(ctx context.Context, userID int64, days []MonthDay) ([]Contact, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

const contactColumns = `id, user_id, first_name, last_name, email, phone, birthday, created_at, updated_at`

// Create inserts a contact and returns its id.
func (r *PGRepository) Create(ctx context.Context, contact Contact) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO contacts (user_id, first_name, last_name, email, phone, birthday, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id
	`, contact.UserID, contact.FirstName, contact.LastName, contact.Email, contact.Phone, contact.Birthday).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// GetByID fetches a contact owned by userID.
func (r *PGRepository) GetByID(ctx context.Context, userID, id int64) (*Contact, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+contactColumns+` FROM contacts WHERE id = $1 AND user_id = $2
	`, id, userID)
	contact, err := scanContact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return contact, nil
}

// List returns a page of the user's contacts plus the total count.
func (r *PGRepository) List(ctx context.Context, userID int64, limit, offset int) ([]Contact, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contacts WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+contactColumns+` FROM contacts
		WHERE user_id = $1
		ORDER BY last_name, first_name, id
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	contacts, err := collectContacts(rows)
	if err != nil {
		return nil, 0, err
	}
	return contacts, total, nil
}

// Update replaces the mutable fields of a contact owned by userID.
func (r *PGRepository) Update(ctx context.Context, userID, id int64, contact Contact) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contacts
		SET first_name = $3, last_name = $4, email = $5, phone = $6, birthday = $7, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`, id, userID, contact.FirstName, contact.LastName, contact.Email, contact.Phone, contact.Birthday)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// Delete removes a contact owned by userID and returns the deleted record.
func (r *PGRepository) Delete(ctx context.Context, userID, id int64) (*Contact, error) {
	row := r.pool.QueryRow(ctx, `
		DELETE FROM contacts WHERE id = $1 AND user_id = $2
		RETURNING `+contactColumns+`
	`, id, userID)
	contact, err := scanContact(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return contact, nil
}

// UpcomingBirthdays returns the user's contacts whose birthday falls on one
// of the given calendar days, regardless of birth year.
func (r *PGRepository) UpcomingBirthdays(ctx context.Context, userID int64, days []MonthDay) ([]Contact, error) {
	if len(days) == 0 {
		return nil, nil
	}

	conditions := make([]string, 0, len(days))
	args := []any{userID}
	argPos := 2
	for _, d := range days {
		conditions = append(conditions, fmt.Sprintf(
			"(EXTRACT(MONTH FROM birthday)::int = $%d AND EXTRACT(DAY FROM birthday)::int = $%d)",
			argPos, argPos+1,
		))
		args = append(args, int(d.Month), d.Day)
		argPos += 2
	}

	query := fmt.Sprintf(`
		SELECT `+contactColumns+` FROM contacts
		WHERE user_id = $1 AND (%s)
		ORDER BY EXTRACT(MONTH FROM birthday), EXTRACT(DAY FROM birthday), id
	`, strings.Join(conditions, " OR "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectContacts(rows)
}

func scanContact(row pgx.Row) (*Contact, error) {
	var (
		contact   Contact
		birthday  pgtype.Date
		createdAt pgtype.Timestamptz
		updatedAt pgtype.Timestamptz
	)
	err := row.Scan(
		&contact.ID, &contact.UserID, &contact.FirstName, &contact.LastName,
		&contact.Email, &contact.Phone, &birthday, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}
	if birthday.Valid {
		contact.Birthday = birthday.Time
	}
	if createdAt.Valid {
		contact.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		contact.UpdatedAt = updatedAt.Time
	}
	return &contact, nil
}

func collectContacts(rows pgx.Rows) ([]Contact, error) {
	var contacts []Contact
	for rows.Next() {
		contact, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, *contact)
	}
	return contacts, rows.Err()
}

var _ Repository = (*PGRepository)(nil)
