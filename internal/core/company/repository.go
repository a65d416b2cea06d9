package company

import (
	"context"
	"io"
)

// Repository は会社エンティティの永続化を行うインターフェースです。
type Repository interface {
	FindByID(ctx context.Context, id string) (*Company, error)
	Update(ctx context.Context, company *Company) (*Company, error)
}

// BlobStore はロゴ画像の保存先です。同名オブジェクトは上書きされます。
type BlobStore interface {
	Upload(ctx context.Context, name, contentType string, data io.Reader) (string, error)
}
