package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ogurasousui/staffboard/internal/core/employee"
	pgdb "github.com/ogurasousui/staffboard/internal/platform/db/postgres"
)

const employeeColumns = `id, company_id, name, email, phone, document_id, title, department, salary,
               admission_date, status, birth_date, marital_status, gender, address, notes, photo_url,
               created_at, updated_at`

// EmployeeRepository は PostgreSQL を利用した社員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// ListByCompany は会社の全社員を作成日時の新しい順で取得します。
func (r *EmployeeRepository) ListByCompany(ctx context.Context, companyID string) ([]*employee.Employee, error) {
	if strings.TrimSpace(companyID) == "" {
		return nil, employee.ErrInvalidCompanyID
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT `+employeeColumns+`
          FROM employees
         WHERE company_id = $1
         ORDER BY created_at DESC, id DESC
    `, companyID)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	employees := make([]*employee.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}

	return employees, nil
}

// Insert は社員を新規作成します。ID と作成日時はデータベースが割り当てます。
func (r *EmployeeRepository) Insert(ctx context.Context, e *employee.NewEmployee) (*employee.Employee, error) {
	address, err := json.Marshal(e.Address)
	if err != nil {
		return nil, fmt.Errorf("encode address: %w", err)
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (company_id, name, email, phone, document_id, title, department, salary,
                               admission_date, status, birth_date, marital_status, gender, address, notes, photo_url)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        RETURNING `+employeeColumns+`
    `,
		e.CompanyID,
		e.Name,
		e.Email,
		e.Phone,
		e.DocumentID,
		e.Title,
		e.Department,
		e.Salary,
		dateOnly(e.AdmissionDate),
		string(e.Status),
		dateOnly(e.BirthDate),
		string(e.MaritalStatus),
		string(e.Gender),
		address,
		e.Notes,
		e.PhotoURL,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は Patch に含まれる列だけを更新します。
func (r *EmployeeRepository) Update(ctx context.Context, companyID, id string, patch employee.Patch) error {
	if patch.IsEmpty() {
		return employee.ErrEmptyPatch
	}

	sets := make([]string, 0, 9)
	args := make([]any, 0, 10)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.Phone != nil {
		add("phone", *patch.Phone)
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Department != nil {
		add("department", *patch.Department)
	}
	if patch.Salary != nil {
		add("salary", *patch.Salary)
	}
	if patch.Status != nil {
		add("status", string(*patch.Status))
	}
	if patch.Notes != nil {
		add("notes", *patch.Notes)
	}
	sets = append(sets, "updated_at = now()")

	args = append(args, id)
	idPlaceholder := "$" + strconv.Itoa(len(args))
	args = append(args, companyID)
	companyPlaceholder := "$" + strconv.Itoa(len(args))

	query := `UPDATE employees SET ` + strings.Join(sets, ", ") +
		` WHERE id = ` + idPlaceholder + ` AND company_id = ` + companyPlaceholder

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, query, args...)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, companyID, id string) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		e             employee.Employee
		status        string
		maritalStatus string
		gender        string
		address       []byte
		notes         sql.NullString
		photoURL      sql.NullString
	)

	if err := row.Scan(
		&e.ID,
		&e.CompanyID,
		&e.Name,
		&e.Email,
		&e.Phone,
		&e.DocumentID,
		&e.Title,
		&e.Department,
		&e.Salary,
		&e.AdmissionDate,
		&status,
		&e.BirthDate,
		&maritalStatus,
		&gender,
		&address,
		&notes,
		&photoURL,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	if len(address) > 0 {
		if err := json.Unmarshal(address, &e.Address); err != nil {
			return nil, fmt.Errorf("decode address of employee %s: %w", e.ID, err)
		}
	}

	e.Notes = fromNullString(notes)
	e.PhotoURL = fromNullString(photoURL)
	e.Status = employee.Status(status)
	e.MaritalStatus = employee.MaritalStatus(maritalStatus)
	e.Gender = employee.Gender(gender)
	e.AdmissionDate = dateOnly(e.AdmissionDate)
	e.BirthDate = dateOnly(e.BirthDate)
	return &e, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ForeignKeyViolation:
			return employee.ErrCompanyNotFound
		case pgerrcode.CheckViolation, pgerrcode.NotNullViolation:
			return &employee.ValidationError{Fields: map[string]string{constraintField(pgErr): "is invalid"}}
		case pgerrcode.InvalidTextRepresentation:
			return employee.ErrInvalidID
		}
	}

	return err
}

// constraintField は "employees_<column>_check" 形式の制約名から列名を取り出します。
func constraintField(pgErr *pgconn.PgError) string {
	if pgErr.ColumnName != "" {
		return pgErr.ColumnName
	}
	name := strings.TrimPrefix(pgErr.ConstraintName, "employees_")
	name = strings.TrimSuffix(name, "_check")
	if name == "" {
		return "record"
	}
	return name
}

func fromNullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
