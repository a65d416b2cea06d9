package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ogurasousui/staffboard/internal/core/account"
	pgdb "github.com/ogurasousui/staffboard/internal/platform/db/postgres"
)

// AccountRepository は PostgreSQL を利用した認証主体とプロフィールの永続化の実装です。
type AccountRepository struct {
	pool pgdb.Queryer
}

// NewAccountRepository は AccountRepository を生成します。
func NewAccountRepository(pool pgdb.Queryer) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// CreateUser は認証主体を新規作成します。
func (r *AccountRepository) CreateUser(ctx context.Context, u *account.User) (*account.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO users (email, password_hash, email_confirmed_at, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, email, password_hash, email_confirmed_at, created_at, updated_at
    `, u.Email, u.PasswordHash, nullableTime(u.EmailConfirmedAt), u.CreatedAt, u.UpdatedAt)

	created, err := scanUser(row)
	if err != nil {
		return nil, translateAccountPgError(err)
	}
	return created, nil
}

// DeleteUser は認証主体を削除します。
func (r *AccountRepository) DeleteUser(ctx context.Context, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return translateAccountPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrUserNotFound
	}
	return nil
}

// FindUserByID は ID で認証主体を取得します。
func (r *AccountRepository) FindUserByID(ctx context.Context, id string) (*account.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, email, password_hash, email_confirmed_at, created_at, updated_at
          FROM users
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanUser(row)
	if err != nil {
		return nil, translateAccountPgError(err)
	}
	return found, nil
}

// FindUserByEmail はメールアドレスで認証主体を取得します。
func (r *AccountRepository) FindUserByEmail(ctx context.Context, email string) (*account.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, email, password_hash, email_confirmed_at, created_at, updated_at
          FROM users
         WHERE email = $1
         LIMIT 1
    `, email)

	found, err := scanUser(row)
	if err != nil {
		return nil, translateAccountPgError(err)
	}
	return found, nil
}

// ConfirmEmail はメールアドレスの確認日時を記録します。
func (r *AccountRepository) ConfirmEmail(ctx context.Context, id string, at time.Time) (*account.User, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE users
           SET email_confirmed_at = $1,
               updated_at = $1
         WHERE id = $2
        RETURNING id, email, password_hash, email_confirmed_at, created_at, updated_at
    `, at, id)

	updated, err := scanUser(row)
	if err != nil {
		return nil, translateAccountPgError(err)
	}
	return updated, nil
}

// FindProfileByUserID は認証主体に紐づくプロフィールを取得します。
func (r *AccountRepository) FindProfileByUserID(ctx context.Context, userID string) (*account.Profile, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, user_id, company_id, role, created_at
          FROM profiles
         WHERE user_id = $1
         LIMIT 1
    `, userID)

	var (
		p    account.Profile
		role string
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.CompanyID, &role, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrProfileNotFound
		}
		return nil, translateAccountPgError(err)
	}
	p.Role = account.Role(role)
	return &p, nil
}

// Provision は signup_company_and_user 関数で会社と管理者プロフィールを作成し、会社 ID を返します。
func (r *AccountRepository) Provision(ctx context.Context, companyName, companyEmail, userID string) (string, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	var companyID string
	if err := exec.QueryRow(ctx, `SELECT signup_company_and_user($1, $2, $3)`, companyName, companyEmail, userID).Scan(&companyID); err != nil {
		return "", translateAccountPgError(err)
	}
	return companyID, nil
}

func scanUser(row pgx.Row) (*account.User, error) {
	var (
		u           account.User
		confirmedAt sql.NullTime
	)

	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &confirmedAt, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, account.ErrUserNotFound
		}
		return nil, err
	}

	if confirmedAt.Valid {
		at := confirmedAt.Time.UTC()
		u.EmailConfirmedAt = &at
	}
	return &u, nil
}

func translateAccountPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return account.ErrUserNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return account.ErrEmailAlreadyExists
		case pgerrcode.ForeignKeyViolation:
			return account.ErrUserNotFound
		case pgerrcode.InvalidTextRepresentation:
			return account.ErrInvalidID
		}
	}

	return err
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return *value
}
