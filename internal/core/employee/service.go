package employee

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// LocationClock は指定したタイムゾーンでの現在時刻を返します。暦日の比較に使います。
type LocationClock struct {
	Location *time.Location
}

// Now は Location における現在時刻を返します。
func (c LocationClock) Now() time.Time {
	if c.Location == nil {
		return time.Now().UTC()
	}
	return time.Now().In(c.Location)
}

// Roster は 1 セッション分の会社の社員一覧をメモリ上に保持します。
// 変更操作はストアへ送信したあと必ず一覧全体を再読み込みします。
type Roster struct {
	repo      Repository
	companyID string
	clock     Clock
	log       zerolog.Logger

	mu        sync.RWMutex
	employees []*Employee
	inflight  int
	issued    uint64
	applied   uint64
}

// NewRoster は Roster を生成します。companyID が空の場合、すべての操作は ErrNoCompany になります。
func NewRoster(repo Repository, companyID string, clock Clock, log zerolog.Logger) *Roster {
	if clock == nil {
		clock = realClock{}
	}
	return &Roster{
		repo:      repo,
		companyID: strings.TrimSpace(companyID),
		clock:     clock,
		log:       log.With().Str("company_id", companyID).Logger(),
	}
}

// CompanyID は一覧のスコープとなる会社 ID を返します。
func (r *Roster) CompanyID() string {
	return r.companyID
}

// Now は暦日の比較に使う基準時刻を返します。
func (r *Roster) Now() time.Time {
	return r.clock.Now()
}

// Loading は読み込みが進行中の間 true を返します。
func (r *Roster) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.inflight > 0
}

// Loaded は一度でも読み込みが反映された場合に true を返します。
func (r *Roster) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.applied > 0
}

// Employees は保持している一覧のコピーを作成日時の新しい順で返します。
func (r *Roster) Employees() []*Employee {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Employee, 0, len(r.employees))
	for _, e := range r.employees {
		out = append(out, e.Clone())
	}
	return out
}

// Find はメモリ上の一覧から社員を探します。
func (r *Roster) Find(id string) (*Employee, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.employees {
		if e.ID == id {
			return e.Clone(), nil
		}
	}
	return nil, ErrEmployeeNotFound
}

// Load は会社の全社員をストアから読み込みます。
// 失敗した場合は既存の一覧をそのまま残します。後から開始した読み込みの結果が常に優先されます。
func (r *Roster) Load(ctx context.Context) error {
	if r.companyID == "" {
		return ErrNoCompany
	}

	r.mu.Lock()
	r.issued++
	ticket := r.issued
	r.inflight++
	r.mu.Unlock()

	list, err := r.repo.ListByCompany(ctx, r.companyID)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.inflight--

	if err != nil {
		r.log.Error().Err(err).Msg("load employees")
		return fmt.Errorf("load employees: %w", err)
	}

	if ticket <= r.applied {
		r.log.Debug().Uint64("ticket", ticket).Uint64("applied", r.applied).Msg("discarding stale reload")
		return nil
	}

	r.applied = ticket
	r.employees = list
	return nil
}

// Create はフォームの内容で社員を登録し、一覧を再読み込みします。
func (r *Roster) Create(ctx context.Context, form FormData) error {
	if r.companyID == "" {
		return ErrNoCompany
	}

	if err := ValidateForm(form); err != nil {
		return err
	}

	rec, err := toNewEmployee(r.companyID, form)
	if err != nil {
		return err
	}

	created, err := r.repo.Insert(ctx, rec)
	if err != nil {
		r.log.Error().Err(err).Msg("add employee")
		return err
	}

	r.log.Info().Str("employee_id", created.ID).Msg("employee added")
	r.reload(ctx)
	return nil
}

// Update は Patch に含まれる項目だけを送信し、一覧を再読み込みします。
func (r *Roster) Update(ctx context.Context, id string, patch Patch) error {
	if r.companyID == "" {
		return ErrNoCompany
	}

	id, err := normalizeID(id)
	if err != nil {
		return err
	}

	normalized, err := normalizePatch(patch)
	if err != nil {
		return err
	}

	if err := r.repo.Update(ctx, r.companyID, id, normalized); err != nil {
		r.log.Error().Err(err).Str("employee_id", id).Msg("update employee")
		return err
	}

	r.reload(ctx)
	return nil
}

// Delete は社員を削除し、一覧を再読み込みします。
func (r *Roster) Delete(ctx context.Context, id string) error {
	if r.companyID == "" {
		return ErrNoCompany
	}

	id, err := normalizeID(id)
	if err != nil {
		return err
	}

	if err := r.repo.Delete(ctx, r.companyID, id); err != nil {
		r.log.Error().Err(err).Str("employee_id", id).Msg("delete employee")
		return err
	}

	r.reload(ctx)
	return nil
}

// reload は変更後の再読み込みです。失敗はログに残し、変更操作自体は成功として扱います。
func (r *Roster) reload(ctx context.Context) {
	_ = r.Load(ctx)
}

func normalizeID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if _, err := uuid.Parse(trimmed); err != nil {
		return "", fmt.Errorf("id %q: %w", raw, ErrInvalidID)
	}
	return trimmed, nil
}

func normalizePatch(p Patch) (Patch, error) {
	if p.IsEmpty() {
		return Patch{}, ErrEmptyPatch
	}

	fields := make(map[string]string)
	out := Patch{}

	requireText := func(name string, v *string) *string {
		if v == nil {
			return nil
		}
		trimmed := strings.TrimSpace(*v)
		if trimmed == "" {
			fields[name] = "is required"
			return nil
		}
		return &trimmed
	}

	out.Name = requireText("name", p.Name)
	out.Phone = requireText("phone", p.Phone)
	out.Title = requireText("title", p.Title)
	out.Department = requireText("department", p.Department)
	out.Email = requireText("email", p.Email)
	if out.Email != nil && !IsEmailShape(*out.Email) {
		fields["email"] = "is invalid"
	}

	if p.Salary != nil {
		if !ValidSalary(*p.Salary) {
			fields["salary"] = "must be a positive number"
		} else {
			v := *p.Salary
			out.Salary = &v
		}
	}

	if p.Status != nil {
		if !IsValidStatus(*p.Status) {
			fields["status"] = "must be one of: active inactive on_leave"
		} else {
			v := *p.Status
			out.Status = &v
		}
	}

	if p.Notes != nil {
		v := strings.TrimSpace(*p.Notes)
		out.Notes = &v
	}

	if len(fields) > 0 {
		return Patch{}, &ValidationError{Fields: fields}
	}
	return out, nil
}
