package account

import (
	"context"
	"time"
)

// Repository は認証主体とプロフィールの永続化を行うインターフェースです。
type Repository interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	DeleteUser(ctx context.Context, id string) error
	FindUserByID(ctx context.Context, id string) (*User, error)
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	ConfirmEmail(ctx context.Context, id string, at time.Time) (*User, error)
	FindProfileByUserID(ctx context.Context, userID string) (*Profile, error)
}

// Provisioner は会社と管理者プロフィールを一度に作成し、会社 ID を返します。
type Provisioner interface {
	Provision(ctx context.Context, companyName, companyEmail, userID string) (string, error)
}
