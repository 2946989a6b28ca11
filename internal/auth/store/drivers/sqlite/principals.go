package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/fieldbook/fieldbook/internal/auth/domain"
	"github.com/fieldbook/fieldbook/internal/auth/store"
)

type principalsRepo struct {
	db *sql.DB
}

const principalColumns = `id, email, display_name, role, password_hash,
	provider_id, picture_url, email_verified, created_at, updated_at`

func (r *principalsRepo) GetPrincipalByID(ctx context.Context, id string) (domain.Principal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE id = ?`, id)
	return scanPrincipal(row)
}

func (r *principalsRepo) GetPrincipalByEmail(ctx context.Context, email string) (domain.Principal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE email = ?`, email)
	return scanPrincipal(row)
}

func (r *principalsRepo) GetPrincipalByProviderID(ctx context.Context, providerID string) (domain.Principal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+principalColumns+` FROM principals WHERE provider_id = ?`, providerID)
	return scanPrincipal(row)
}

func (r *principalsRepo) CreatePrincipal(ctx context.Context, p domain.Principal) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO principals (
			id, email, display_name, role, password_hash,
			provider_id, picture_url, email_verified, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID,
		mapStringNull(p.Email),
		p.DisplayName,
		p.Role.String(),
		p.PasswordHash,
		mapStringNull(p.ProviderID),
		p.PictureURL,
		p.EmailVerified,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return mapErr(err)
}

func (r *principalsRepo) ListPrincipals(ctx context.Context) ([]domain.Principal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+principalColumns+` FROM principals ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Principal
	for rows.Next() {
		p, err := scanPrincipal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *principalsRepo) UpdatePasswordHash(ctx context.Context, id string, newHash string) error {
	return r.exec(ctx,
		`UPDATE principals SET password_hash = ?, updated_at = ? WHERE id = ?`,
		newHash, time.Now().UTC(), id)
}

func (r *principalsRepo) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	return r.exec(ctx,
		`UPDATE principals SET role = ?, updated_at = ? WHERE id = ?`,
		role.String(), time.Now().UTC(), id)
}

func (r *principalsRepo) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPrincipal(row scanner) (domain.Principal, error) {
	var (
		p          domain.Principal
		role       string
		email      sql.NullString
		providerID sql.NullString
	)

	err := row.Scan(
		&p.ID,
		&email,
		&p.DisplayName,
		&role,
		&p.PasswordHash,
		&providerID,
		&p.PictureURL,
		&p.EmailVerified,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return domain.Principal{}, mapErr(err)
	}

	p.Email = mapNullString(email)
	p.ProviderID = mapNullString(providerID)

	parsed, err := domain.ParseRole(role)
	if err != nil {
		return domain.Principal{}, err
	}
	p.Role = parsed

	return p, nil
}
