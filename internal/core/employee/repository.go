package employee

import "context"

// Repository は社員レコードストアの抽象です。すべての操作は会社 ID でスコープされます。
type Repository interface {
	ListByCompany(ctx context.Context, companyID string) ([]*Employee, error)
	Insert(ctx context.Context, e *NewEmployee) (*Employee, error)
	Update(ctx context.Context, companyID, id string, patch Patch) error
	Delete(ctx context.Context, companyID, id string) error
}
