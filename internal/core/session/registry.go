package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ogurasousui/staffboard/internal/core/employee"
)

// RosterFactory は会社 ID に対応する社員一覧を生成します。
type RosterFactory func(companyID string) *employee.Roster

// Workspace はセッション ID ごとの状態です。セッションと、会社が解決された後の社員一覧を持ちます。
type Workspace struct {
	ID      string
	Session *Context

	newRoster RosterFactory
	log       zerolog.Logger

	mu       sync.Mutex
	roster   *employee.Roster
	lastSeen time.Time
	done     chan struct{}
}

// Roster は現在の会社に紐づく社員一覧を返します。初回、会社が変わった場合、
// または一度も読み込みに成功していない場合は読み込みます。
// 読み込みに失敗しても既存の一覧を返し、エラーはログに残します。
func (w *Workspace) Roster(ctx context.Context) (*employee.Roster, error) {
	r, fresh, err := w.bind()
	if err != nil {
		return nil, err
	}
	if fresh || !r.Loaded() {
		w.load(ctx, r)
	}
	return r, nil
}

// View は画面表示用に社員一覧をストアから読み込み直してから返します。
// 読み込みに失敗した場合は直前の一覧を返します。
func (w *Workspace) View(ctx context.Context) (*employee.Roster, error) {
	r, _, err := w.bind()
	if err != nil {
		return nil, err
	}
	w.load(ctx, r)
	return r, nil
}

func (w *Workspace) bind() (*employee.Roster, bool, error) {
	snap := w.Session.Snapshot()
	if !snap.Authenticated() {
		return nil, false, ErrNotAuthenticated
	}
	if snap.Company == nil {
		return nil, false, ErrNoCompany
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.roster == nil || w.roster.CompanyID() != snap.Company.ID {
		w.roster = w.newRoster(snap.Company.ID)
		return w.roster, true, nil
	}
	return w.roster, false, nil
}

func (w *Workspace) load(ctx context.Context, r *employee.Roster) {
	if err := r.Load(ctx); err != nil {
		w.log.Warn().Err(err).Str("session_id", w.ID).Msg("roster load")
	}
}

// Touch は最終アクセス時刻を更新します。
func (w *Workspace) Touch(now time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if now.After(w.lastSeen) {
		w.lastSeen = now
	}
}

func (w *Workspace) idleSince() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

func (w *Workspace) hasRoster() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.roster != nil
}

// watch はセッションの変更を購読し、会社がなくなった時点で社員一覧を破棄します。
func (w *Workspace) watch(ch <-chan Snapshot) {
	defer close(w.done)
	for snap := range ch {
		if snap.Company != nil {
			continue
		}
		w.mu.Lock()
		if w.roster != nil {
			w.roster = nil
			w.log.Debug().Str("session_id", w.ID).Msg("roster released")
		}
		w.mu.Unlock()
	}
}

// Registry はセッション ID と Workspace の対応を保持します。
type Registry struct {
	newSession func() *Context
	newRoster  RosterFactory
	ttl        time.Duration
	log        zerolog.Logger

	mu         sync.Mutex
	workspaces map[string]*Workspace
	revoked    map[string]time.Time
}

// NewRegistry は Registry を生成します。ttl を超えてアクセスのない Workspace は Sweep で破棄されます。
func NewRegistry(newSession func() *Context, newRoster RosterFactory, ttl time.Duration, log zerolog.Logger) *Registry {
	return &Registry{
		newSession: newSession,
		newRoster:  newRoster,
		ttl:        ttl,
		log:        log,
		workspaces: make(map[string]*Workspace),
		revoked:    make(map[string]time.Time),
	}
}

// Open は id の Workspace を返します。存在しない場合は生成し、created が true になります。
func (r *Registry) Open(id string, now time.Time) (ws *Workspace, created bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.revoked[id]; ok {
		return nil, false, ErrRevoked
	}

	if ws, ok := r.workspaces[id]; ok {
		ws.Touch(now)
		return ws, false, nil
	}

	sess := r.newSession()
	ws = &Workspace{
		ID:        id,
		Session:   sess,
		newRoster: r.newRoster,
		log:       r.log,
		lastSeen:  now,
		done:      make(chan struct{}),
	}
	ch, _ := sess.Subscribe()
	go ws.watch(ch)

	r.workspaces[id] = ws
	return ws, true, nil
}

// Get は既存の Workspace を返します。
func (r *Registry) Get(id string) (*Workspace, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ws, ok := r.workspaces[id]
	return ws, ok
}

// Revoke は Workspace を破棄し、until までは同じ ID で開けないようにします。
func (r *Registry) Revoke(id string, until time.Time) {
	r.mu.Lock()
	ws, ok := r.workspaces[id]
	delete(r.workspaces, id)
	r.revoked[id] = until
	r.mu.Unlock()

	if ok {
		ws.Session.Close()
		<-ws.done
	}
}

// Discard は Workspace を破棄します。Revoke と異なり、同じ ID で再び開くことができます。
func (r *Registry) Discard(id string) {
	r.mu.Lock()
	ws, ok := r.workspaces[id]
	delete(r.workspaces, id)
	r.mu.Unlock()

	if ok {
		ws.Session.Close()
		<-ws.done
	}
}

// Sweep は期限切れの Workspace と失効記録を破棄し、破棄した Workspace の数を返します。
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	var expired []*Workspace
	for id, ws := range r.workspaces {
		if now.Sub(ws.idleSince()) > r.ttl {
			expired = append(expired, ws)
			delete(r.workspaces, id)
		}
	}
	for id, until := range r.revoked {
		if now.After(until) {
			delete(r.revoked, id)
		}
	}
	r.mu.Unlock()

	for _, ws := range expired {
		ws.Session.Close()
		<-ws.done
	}
	if len(expired) > 0 {
		r.log.Debug().Int("evicted", len(expired)).Msg("session sweep")
	}
	return len(expired)
}

// Len は保持している Workspace の数を返します。
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}

// Close はすべての Workspace を破棄します。
func (r *Registry) Close() {
	r.mu.Lock()
	all := make([]*Workspace, 0, len(r.workspaces))
	for id, ws := range r.workspaces {
		all = append(all, ws)
		delete(r.workspaces, id)
	}
	r.mu.Unlock()

	for _, ws := range all {
		ws.Session.Close()
		<-ws.done
	}
}
