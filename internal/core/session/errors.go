package session

import "errors"

var (
	// ErrNotAuthenticated はサインインしていないセッションで操作した場合に返却されます。
	ErrNotAuthenticated = errors.New("session: not authenticated")
	// ErrNoCompany はセッションに会社が解決されていない場合に返却されます。
	ErrNoCompany = errors.New("session: no company")
	// ErrClosed は破棄済みのセッションを操作した場合に返却されます。
	ErrClosed = errors.New("session: closed")
	// ErrRevoked はサインアウト済みのセッション ID で開こうとした場合に返却されます。
	ErrRevoked = errors.New("session: revoked")
)
