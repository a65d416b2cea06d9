package employee

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrInvalidID        = errors.New("employee: invalid id")
	ErrInvalidCompanyID = errors.New("employee: invalid company id")
	ErrInvalidStatus    = errors.New("employee: invalid status")
	ErrInvalidSalary    = errors.New("employee: invalid salary")
	ErrInvalidEmail     = errors.New("employee: invalid email")
	ErrInvalidPeriod    = errors.New("employee: invalid period")
	ErrEmptyPatch       = errors.New("employee: no fields to update")
	ErrEmployeeNotFound = errors.New("employee: not found")
	ErrCompanyNotFound  = errors.New("employee: company not found")
	ErrNoCompany        = errors.New("employee: no company in context")
	ErrValidation       = errors.New("employee: validation failed")
)

// ValidationError は項目ごとの入力エラーを保持します。
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "employee: validation failed: " + strings.Join(keys, ", ")
}

// Is は errors.Is(err, ErrValidation) を成立させます。
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
