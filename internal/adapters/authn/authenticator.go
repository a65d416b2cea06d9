package authn

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ogurasousui/staffboard/internal/core/account"
	"github.com/ogurasousui/staffboard/internal/core/session"
	"github.com/ogurasousui/staffboard/internal/platform/auth"
)

// Tokens はセッショントークンの発行と検証を行います。
type Tokens interface {
	Issue(userID, sessionID string) (auth.Token, error)
	Verify(raw string) (*auth.Claims, error)
}

// Principal は認証済みリクエストの主体です。
type Principal struct {
	Claims    *auth.Claims
	Workspace *session.Workspace
}

// Authenticator はセッショントークンとセッションレジストリを結び付けます。
// HTTP と gRPC の両方から利用されます。
type Authenticator struct {
	tokens   Tokens
	registry *session.Registry
	now      func() time.Time
	log      zerolog.Logger
}

// New は Authenticator を生成します。
func New(tokens Tokens, registry *session.Registry, log zerolog.Logger) *Authenticator {
	return &Authenticator{
		tokens:   tokens,
		registry: registry,
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.With().Str("component", "authn").Logger(),
	}
}

// Authenticate はトークンを検証し、対応する Workspace を返します。
// プロセス内に Workspace がない場合 (再起動後など) は認証主体から復元します。
func (a *Authenticator) Authenticate(ctx context.Context, raw string) (*Principal, error) {
	claims, err := a.tokens.Verify(raw)
	if err != nil {
		return nil, err
	}

	ws, created, err := a.registry.Open(claims.SessionID, a.now())
	if err != nil {
		return nil, err
	}

	snap := ws.Session.Snapshot()
	if created || (snap.Loading && !snap.Authenticated()) {
		if err := ws.Session.Restore(ctx, claims.UserID()); err != nil {
			if errors.Is(err, account.ErrUserNotFound) || errors.Is(err, account.ErrInvalidID) {
				a.registry.Revoke(claims.SessionID, expiry(claims, a.now()))
				return nil, fmt.Errorf("%w: %v", session.ErrNotAuthenticated, err)
			}
			// 一時的な障害では失効させず、次のリクエストで復元し直す。
			a.registry.Discard(claims.SessionID)
			return nil, err
		}
		snap = ws.Session.Snapshot()
	}

	if snap.Authenticated() && snap.Company == nil {
		if err := ws.Session.Refresh(ctx); err != nil {
			return nil, err
		}
		snap = ws.Session.Snapshot()
	}

	if !snap.Authenticated() || snap.Identity.ID != claims.UserID() {
		return nil, session.ErrNotAuthenticated
	}

	return &Principal{Claims: claims, Workspace: ws}, nil
}

// SignIn は新しいセッションを開いて認証し、トークンを発行します。
func (a *Authenticator) SignIn(ctx context.Context, email, password string) (auth.Token, session.Snapshot, error) {
	sid := uuid.NewString()
	ws, _, err := a.registry.Open(sid, a.now())
	if err != nil {
		return auth.Token{}, session.Snapshot{}, err
	}

	u, err := ws.Session.SignIn(ctx, email, password)
	if err != nil {
		a.registry.Revoke(sid, a.now())
		return auth.Token{}, session.Snapshot{}, err
	}

	tok, err := a.tokens.Issue(u.ID, sid)
	if err != nil {
		a.registry.Revoke(sid, a.now())
		return auth.Token{}, session.Snapshot{}, err
	}

	a.log.Info().Str("user_id", u.ID).Str("session_id", sid).Msg("signed in")
	return tok, ws.Session.Snapshot(), nil
}

// SignUp は一時的なセッションで会社と認証主体を作成します。サインイン状態にはなりません。
func (a *Authenticator) SignUp(ctx context.Context, in account.SignUpInput) (*account.SignUpResult, error) {
	sid := uuid.NewString()
	ws, _, err := a.registry.Open(sid, a.now())
	if err != nil {
		return nil, err
	}
	defer a.registry.Discard(sid)

	res, err := ws.Session.SignUp(ctx, in)
	if err != nil {
		return nil, err
	}

	a.log.Info().Str("user_id", res.User.ID).Str("company_id", res.CompanyID).Msg("signed up")
	return res, nil
}

// SignOut はセッションをサインアウトさせ、トークンの期限まで再利用できないようにします。
func (a *Authenticator) SignOut(ctx context.Context, p *Principal) error {
	if err := p.Workspace.Session.SignOut(ctx); err != nil && !errors.Is(err, session.ErrClosed) {
		return err
	}
	a.registry.Revoke(p.Claims.SessionID, expiry(p.Claims, a.now()))
	a.log.Info().Str("user_id", p.Claims.UserID()).Str("session_id", p.Claims.SessionID).Msg("signed out")
	return nil
}

func expiry(c *auth.Claims, now time.Time) time.Time {
	if c.ExpiresAt == nil {
		return now
	}
	return c.ExpiresAt.Time
}

type principalKey struct{}

// WithPrincipal は主体をコンテキストに格納します。
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext はコンテキストの主体を返します。
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*Principal)
	return p, ok && p != nil
}
