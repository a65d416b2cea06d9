package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ogurasousui/staffboard/internal/core/company"
	pgdb "github.com/ogurasousui/staffboard/internal/platform/db/postgres"
)

// CompanyRepository は PostgreSQL を利用した会社永続化の実装です。
type CompanyRepository struct {
	pool pgdb.Queryer
}

// NewCompanyRepository は CompanyRepository を生成します。
func NewCompanyRepository(pool pgdb.Queryer) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

// FindByID は ID で会社を取得します。
func (r *CompanyRepository) FindByID(ctx context.Context, id string) (*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, name, email, logo_url, subtitle, theme, created_at, updated_at
          FROM companies
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanCompany(row)
	if err != nil {
		return nil, translateCompanyPgError(err)
	}
	return found, nil
}

// Update は会社情報を更新します。
func (r *CompanyRepository) Update(ctx context.Context, c *company.Company) (*company.Company, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE companies
           SET name = $1,
               email = $2,
               logo_url = $3,
               subtitle = $4,
               theme = $5,
               updated_at = $6
         WHERE id = $7
        RETURNING id, name, email, logo_url, subtitle, theme, created_at, updated_at
    `, c.Name, c.Email, nullableString(c.LogoURL), nullableString(c.Subtitle), string(c.Theme), c.UpdatedAt, c.ID)

	updated, err := scanCompany(row)
	if err != nil {
		return nil, translateCompanyPgError(err)
	}
	return updated, nil
}

func scanCompany(row pgx.Row) (*company.Company, error) {
	var (
		id, name, email      string
		logoURL, subtitle    sql.NullString
		theme                string
		createdAt, updatedAt time.Time
	)

	if err := row.Scan(&id, &name, &email, &logoURL, &subtitle, &theme, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, company.ErrCompanyNotFound
		}
		return nil, err
	}

	return &company.Company{
		ID:        id,
		Name:      name,
		Email:     email,
		LogoURL:   fromNullString(logoURL),
		Subtitle:  fromNullString(subtitle),
		Theme:     company.Theme(theme),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func translateCompanyPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return company.ErrCompanyNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.CheckViolation:
			if pgErr.ConstraintName == "companies_theme_check" {
				return company.ErrInvalidTheme
			}
			return company.ErrInvalidName
		case pgerrcode.InvalidTextRepresentation:
			return company.ErrInvalidID
		}
	}

	return err
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}
