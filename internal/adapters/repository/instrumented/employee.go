package instrumented

import (
	"context"
	"time"

	"github.com/ogurasousui/staffboard/internal/core/employee"
	"github.com/ogurasousui/staffboard/internal/platform/metrics"
)

// EmployeeRepository は employee.Repository の呼び出し回数と所要時間を記録するデコレーターです。
type EmployeeRepository struct {
	next    employee.Repository
	metrics *metrics.Metrics
}

// NewEmployeeRepository は next をメトリクス計測付きで包みます。
func NewEmployeeRepository(next employee.Repository, m *metrics.Metrics) *EmployeeRepository {
	return &EmployeeRepository{next: next, metrics: m}
}

// ListByCompany は会社の全社員を取得します。
func (r *EmployeeRepository) ListByCompany(ctx context.Context, companyID string) (list []*employee.Employee, err error) {
	defer r.observe("list", time.Now(), &err)
	return r.next.ListByCompany(ctx, companyID)
}

// Insert は社員を登録します。
func (r *EmployeeRepository) Insert(ctx context.Context, e *employee.NewEmployee) (created *employee.Employee, err error) {
	defer r.observe("insert", time.Now(), &err)
	return r.next.Insert(ctx, e)
}

// Update は社員を部分更新します。
func (r *EmployeeRepository) Update(ctx context.Context, companyID, id string, patch employee.Patch) (err error) {
	defer r.observe("update", time.Now(), &err)
	return r.next.Update(ctx, companyID, id, patch)
}

// Delete は社員を削除します。
func (r *EmployeeRepository) Delete(ctx context.Context, companyID, id string) (err error) {
	defer r.observe("delete", time.Now(), &err)
	return r.next.Delete(ctx, companyID, id)
}

func (r *EmployeeRepository) observe(op string, started time.Time, err *error) {
	r.metrics.ObserveStore(op, started, *err)
}
