package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ogurasousui/staffboard/internal/core/employee"
)

type countingEmployeeRepo struct {
	lists chan string
}

func (r *countingEmployeeRepo) ListByCompany(_ context.Context, companyID string) ([]*employee.Employee, error) {
	r.lists <- companyID
	return []*employee.Employee{{ID: "e1", CompanyID: companyID, Name: "Ana", Status: employee.StatusActive}}, nil
}

func (r *countingEmployeeRepo) Insert(context.Context, *employee.NewEmployee) (*employee.Employee, error) {
	return nil, errors.New("not implemented")
}

func (r *countingEmployeeRepo) Update(context.Context, string, string, employee.Patch) error {
	return errors.New("not implemented")
}

func (r *countingEmployeeRepo) Delete(context.Context, string, string) error {
	return errors.New("not implemented")
}

func newTestRegistry(ttl time.Duration) (*Registry, *countingEmployeeRepo) {
	accounts, companies := newFakes()
	repo := &countingEmployeeRepo{lists: make(chan string, 16)}
	reg := NewRegistry(
		func() *Context { return New(accounts, companies, zerolog.Nop()) },
		func(companyID string) *employee.Roster {
			return employee.NewRoster(repo, companyID, nil, zerolog.Nop())
		},
		ttl,
		zerolog.Nop(),
	)
	return reg, repo
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met in time")
}

func TestRegistry_OpenReturnsSameWorkspace(t *testing.T) {
	t.Parallel()

	reg, _ := newTestRegistry(time.Hour)
	defer reg.Close()
	now := time.Now()

	first, created, err := reg.Open("sid-1", now)
	if err != nil || !created {
		t.Fatalf("expected new workspace, got created=%v err=%v", created, err)
	}
	second, created, err := reg.Open("sid-1", now.Add(time.Minute))
	if err != nil || created || second != first {
		t.Fatalf("expected existing workspace")
	}
	if reg.Len() != 1 {
		t.Fatalf("expected one workspace, got %d", reg.Len())
	}
}

func TestWorkspace_RosterBindsLazilyAndDropsOnSignOut(t *testing.T) {
	t.Parallel()

	reg, repo := newTestRegistry(time.Hour)
	defer reg.Close()
	ctx := context.Background()

	ws, _, err := reg.Open("sid-1", time.Now())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	if _, err := ws.Roster(ctx); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}

	if err := ws.Session.Restore(ctx, userID); err != nil {
		t.Fatalf("Restore returned error: %v", err)
	}

	roster, err := ws.Roster(ctx)
	if err != nil {
		t.Fatalf("Roster returned error: %v", err)
	}
	if got := <-repo.lists; got != companyID {
		t.Fatalf("expected load for %s, got %s", companyID, got)
	}
	if len(roster.Employees()) != 1 {
		t.Fatalf("expected loaded roster")
	}

	again, err := ws.Roster(ctx)
	if err != nil || again != roster {
		t.Fatalf("expected the same roster on second call")
	}
	select {
	case <-repo.lists:
		t.Fatalf("roster must not reload on reuse")
	default:
	}

	if err := ws.Session.SignOut(ctx); err != nil {
		t.Fatalf("SignOut returned error: %v", err)
	}
	waitFor(t, func() bool { return !ws.hasRoster() })
}

func TestRegistry_RevokeAndSweep(t *testing.T) {
	t.Parallel()

	reg, _ := newTestRegistry(time.Minute)
	defer reg.Close()
	start := time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC)

	if _, _, err := reg.Open("sid-revoked", start); err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	reg.Revoke("sid-revoked", start.Add(time.Hour))
	if _, _, err := reg.Open("sid-revoked", start); !errors.Is(err, ErrRevoked) {
		t.Fatalf("expected ErrRevoked, got %v", err)
	}

	if _, _, err := reg.Open("sid-idle", start); err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	active, _, err := reg.Open("sid-active", start)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	active.Touch(start.Add(50 * time.Second))

	if n := reg.Sweep(start.Add(90 * time.Second)); n != 1 {
		t.Fatalf("expected one evicted workspace, got %d", n)
	}
	if _, ok := reg.Get("sid-idle"); ok {
		t.Fatalf("idle workspace must be evicted")
	}
	if _, ok := reg.Get("sid-active"); !ok {
		t.Fatalf("active workspace must survive")
	}

	reg.Sweep(start.Add(2 * time.Hour))
	if _, _, err := reg.Open("sid-revoked", start.Add(2*time.Hour)); err != nil {
		t.Fatalf("expired revocation must be forgotten, got %v", err)
	}
}

type flakyEmployeeRepo struct {
	countingEmployeeRepo
	mu    sync.Mutex
	fails int
	calls int
}

func (r *flakyEmployeeRepo) ListByCompany(ctx context.Context, companyID string) ([]*employee.Employee, error) {
	r.mu.Lock()
	r.calls++
	fail := r.fails > 0
	if fail {
		r.fails--
	}
	r.mu.Unlock()

	if fail {
		return nil, errors.New("connection reset by peer")
	}
	return r.countingEmployeeRepo.ListByCompany(ctx, companyID)
}

func (r *flakyEmployeeRepo) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func newFlakyRegistry(fails int) (*Registry, *flakyEmployeeRepo) {
	accounts, companies := newFakes()
	repo := &flakyEmployeeRepo{countingEmployeeRepo: countingEmployeeRepo{lists: make(chan string, 16)}, fails: fails}
	reg := NewRegistry(
		func() *Context { return New(accounts, companies, zerolog.Nop()) },
		func(companyID string) *employee.Roster {
			return employee.NewRoster(repo, companyID, nil, zerolog.Nop())
		},
		time.Hour,
		zerolog.Nop(),
	)
	return reg, repo
}

func TestWorkspace_RosterRetriesUntilFirstLoadSucceeds(t *testing.T) {
	t.Parallel()

	reg, repo := newFlakyRegistry(1)
	defer reg.Close()
	ctx := context.Background()

	ws, _, err := reg.Open("sid-1", time.Now())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := ws.Session.Restore(ctx, userID); err != nil {
		t.Fatalf("Restore returned error: %v", err)
	}

	first, err := ws.Roster(ctx)
	if err != nil {
		t.Fatalf("Roster returned error: %v", err)
	}
	if first.Loaded() || len(first.Employees()) != 0 || first.Loading() {
		t.Fatalf("expected an empty, idle roster after the failed load")
	}

	second, err := ws.Roster(ctx)
	if err != nil || second != first {
		t.Fatalf("expected the same roster, got err=%v", err)
	}
	if !second.Loaded() || len(second.Employees()) != 1 {
		t.Fatalf("expected the roster to recover on the next call")
	}
	if got := repo.Calls(); got != 2 {
		t.Fatalf("expected 2 store calls, got %d", got)
	}

	if _, err := ws.Roster(ctx); err != nil {
		t.Fatalf("Roster returned error: %v", err)
	}
	if got := repo.Calls(); got != 2 {
		t.Fatalf("loaded roster must not reload on reuse, got %d calls", got)
	}
}

func TestWorkspace_ViewReloadsEveryCall(t *testing.T) {
	t.Parallel()

	reg, repo := newFlakyRegistry(1)
	defer reg.Close()
	ctx := context.Background()

	ws, _, err := reg.Open("sid-1", time.Now())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if _, err := ws.View(ctx); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if err := ws.Session.Restore(ctx, userID); err != nil {
		t.Fatalf("Restore returned error: %v", err)
	}

	for i := 0; i < 3; i++ {
		r, err := ws.View(ctx)
		if err != nil {
			t.Fatalf("View %d returned error: %v", i, err)
		}
		want := 1
		if i == 0 {
			want = 0
		}
		if got := len(r.Employees()); got != want {
			t.Fatalf("View %d: expected %d employees, got %d", i, want, got)
		}
	}
	if got := repo.Calls(); got != 3 {
		t.Fatalf("expected one store call per view, got %d", got)
	}
}

func TestRegistry_DiscardAllowsReopen(t *testing.T) {
	t.Parallel()

	reg, _ := newTestRegistry(time.Hour)
	defer reg.Close()
	now := time.Now()

	first, _, err := reg.Open("sid-1", now)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	reg.Discard("sid-1")
	if reg.Len() != 0 {
		t.Fatalf("expected no workspace after discard")
	}

	second, created, err := reg.Open("sid-1", now)
	if err != nil || !created || second == first {
		t.Fatalf("expected a fresh workspace, got created=%v err=%v", created, err)
	}
}
