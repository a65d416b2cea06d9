package account

import "time"

// Role はプロフィールの権限です。
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// User はパスワードでサインインする認証主体です。
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Confirmed はメールアドレスが確認済みかを返します。
func (u *User) Confirmed() bool {
	return u != nil && u.EmailConfirmedAt != nil
}

// Clone は User のコピーを返します。
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	if u.EmailConfirmedAt != nil {
		at := *u.EmailConfirmedAt
		out.EmailConfirmedAt = &at
	}
	return &out
}

// Profile は認証主体と会社を結び付けます。
type Profile struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CompanyID string    `json:"company_id"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Clone は Profile のコピーを返します。
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	out := *p
	return &out
}
