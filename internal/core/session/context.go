package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ogurasousui/staffboard/internal/core/account"
	"github.com/ogurasousui/staffboard/internal/core/company"
)

// Accounts はセッションが利用する認証ユースケースです。
type Accounts interface {
	SignUp(ctx context.Context, in account.SignUpInput) (*account.SignUpResult, error)
	Authenticate(ctx context.Context, email, password string) (*account.User, error)
	GetUser(ctx context.Context, id string) (*account.User, error)
	LoadProfile(ctx context.Context, userID string) (*account.Profile, error)
}

// Companies はセッションが利用する会社ユースケースです。
type Companies interface {
	Get(ctx context.Context, id string) (*company.Company, error)
	Update(ctx context.Context, id string, patch company.Patch) (*company.Company, error)
}

// Snapshot はある時点のセッション状態です。
type Snapshot struct {
	Identity *account.User    `json:"identity,omitempty"`
	Profile  *account.Profile `json:"profile,omitempty"`
	Company  *company.Company `json:"company,omitempty"`
	Loading  bool             `json:"loading"`
}

// Authenticated は認証主体が存在する場合に true を返します。
func (s Snapshot) Authenticated() bool {
	return s.Identity != nil
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		Identity: s.Identity.Clone(),
		Profile:  s.Profile.Clone(),
		Company:  s.Company.Clone(),
		Loading:  s.Loading,
	}
}

// Context は 1 つのブラウジングセッションの認証状態と会社を保持します。
// 状態が変わるたびに購読者へ Snapshot を配信します。
type Context struct {
	accounts  Accounts
	companies Companies
	log       zerolog.Logger

	mu      sync.Mutex
	state   Snapshot
	subs    map[int]chan Snapshot
	nextSub int
	closed  bool
}

// New は Context を生成します。初期状態は読み込み中です。
func New(accounts Accounts, companies Companies, log zerolog.Logger) *Context {
	return &Context{
		accounts:  accounts,
		companies: companies,
		log:       log,
		state:     Snapshot{Loading: true},
		subs:      make(map[int]chan Snapshot),
	}
}

// Snapshot は現在の状態のコピーを返します。
func (c *Context) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Restore は既存の認証主体からセッションを復元します。
// 認証主体は存在するがプロフィールまたは会社が見つからない場合、Company は nil のままです。
func (c *Context) Restore(ctx context.Context, userID string) error {
	if err := c.setLoading(true); err != nil {
		return err
	}

	u, err := c.accounts.GetUser(ctx, userID)
	if err != nil {
		c.log.Warn().Err(err).Str("user_id", userID).Msg("restore session")
		c.set(Snapshot{})
		return err
	}

	c.resolve(ctx, u)
	return nil
}

// Refresh は認証済みで会社が未解決の場合に、プロフィールと会社を解決し直します。
// 一時的な障害で Restore や SignIn が会社を解決できなかったセッションを回復させます。
func (c *Context) Refresh(ctx context.Context) error {
	current := c.Snapshot()
	if c.isClosed() {
		return ErrClosed
	}
	if !current.Authenticated() {
		return ErrNotAuthenticated
	}
	if current.Company != nil {
		return nil
	}

	c.resolve(ctx, current.Identity)
	return nil
}

// SignIn はメールアドレスとパスワードで認証し、プロフィールと会社を解決します。
func (c *Context) SignIn(ctx context.Context, email, password string) (*account.User, error) {
	if err := c.setLoading(true); err != nil {
		return nil, err
	}

	u, err := c.accounts.Authenticate(ctx, email, password)
	if err != nil {
		prev := c.Snapshot()
		prev.Loading = false
		c.set(prev)
		return nil, err
	}

	c.resolve(ctx, u)
	return u.Clone(), nil
}

// SignUp は認証主体と会社を作成します。セッションはサインイン状態になりません。
func (c *Context) SignUp(ctx context.Context, in account.SignUpInput) (*account.SignUpResult, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}
	return c.accounts.SignUp(ctx, in)
}

// SignOut は認証主体・プロフィール・会社をクリアします。
func (c *Context) SignOut(_ context.Context) error {
	if c.isClosed() {
		return ErrClosed
	}
	c.set(Snapshot{})
	return nil
}

// UpdateCompany は会社を更新し、成功した場合だけローカルの状態を置き換えます。
func (c *Context) UpdateCompany(ctx context.Context, patch company.Patch) (*company.Company, error) {
	current := c.Snapshot()
	if !current.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if current.Company == nil {
		return nil, ErrNoCompany
	}

	updated, err := c.companies.Update(ctx, current.Company.ID, patch)
	if err != nil {
		return nil, err
	}

	c.ReplaceCompany(updated)
	return updated.Clone(), nil
}

// ReplaceCompany は会社サービスで直接更新した結果をローカルの状態へ反映します。
// 別の会社の値は無視します。
func (c *Context) ReplaceCompany(updated *company.Company) {
	if updated == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.state.Company == nil || c.state.Company.ID != updated.ID {
		return
	}
	c.state.Company = updated.Clone()
	c.publishLocked()
}

// Subscribe は状態変更を受け取るチャネルを返します。チャネルは最新の Snapshot だけを保持します。
// 返される関数で購読を解除するとチャネルは閉じられます。
func (c *Context) Subscribe() (<-chan Snapshot, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}

	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	ch <- c.state.clone()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subs[id]; ok {
				delete(c.subs, id)
				close(sub)
			}
		})
	}
}

// Close はすべての購読を終了します。以降の状態変更は ErrClosed になります。
func (c *Context) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}

func (c *Context) resolve(ctx context.Context, u *account.User) {
	next := Snapshot{Identity: u}

	profile, err := c.accounts.LoadProfile(ctx, u.ID)
	if err != nil {
		c.log.Warn().Err(err).Str("user_id", u.ID).Msg("load profile")
		c.set(next)
		return
	}
	next.Profile = profile

	comp, err := c.companies.Get(ctx, profile.CompanyID)
	if err != nil {
		c.log.Warn().Err(err).Str("company_id", profile.CompanyID).Msg("load company")
		c.set(next)
		return
	}
	next.Company = comp

	c.set(next)
}

func (c *Context) setLoading(loading bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	c.state.Loading = loading
	c.publishLocked()
	return nil
}

func (c *Context) set(next Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state = next.clone()
	c.publishLocked()
}

func (c *Context) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// publishLocked は c.mu を保持した状態で呼び出します。
func (c *Context) publishLocked() {
	snap := c.state.clone()
	for _, ch := range c.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
