package company

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// DefaultLogoMaxBytes はロゴ画像の既定サイズ上限 (2 MiB) です。
const DefaultLogoMaxBytes int64 = 2 << 20

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var logoExtensions = map[string]string{
	"image/png":     "png",
	"image/jpeg":    "jpg",
	"image/gif":     "gif",
	"image/webp":    "webp",
	"image/svg+xml": "svg",
}

// Service は会社に関するユースケースをまとめます。
type Service struct {
	repo    Repository
	blobs   BlobStore
	clock   Clock
	tx      TransactionManager
	maxLogo int64
}

// UseCase は会社ユースケースの公開インターフェースです。
type UseCase interface {
	Get(ctx context.Context, id string) (*Company, error)
	Update(ctx context.Context, id string, patch Patch) (*Company, error)
	SetTheme(ctx context.Context, id string, theme Theme) (*Company, error)
	UploadLogo(ctx context.Context, in UploadLogoInput) (*Company, error)
}

// NewService は Service を生成します。maxLogoBytes が 0 以下の場合は DefaultLogoMaxBytes を使います。
func NewService(repo Repository, blobs BlobStore, clock Clock, tx TransactionManager, maxLogoBytes int64) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if maxLogoBytes <= 0 {
		maxLogoBytes = DefaultLogoMaxBytes
	}
	return &Service{repo: repo, blobs: blobs, clock: clock, tx: tx, maxLogo: maxLogoBytes}
}

// UploadLogoInput はロゴアップロード時の入力です。
type UploadLogoInput struct {
	CompanyID   string
	ContentType string
	Size        int64
	Data        io.Reader
}

// Get は ID で会社を取得します。
func (s *Service) Get(ctx context.Context, id string) (*Company, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, err
	}

	var company *Company
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}
		company = result
		return nil
	}); err != nil {
		return nil, err
	}

	return company, nil
}

// Update は Patch に含まれる項目だけを更新します。
func (s *Service) Update(ctx context.Context, id string, patch Patch) (*Company, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}

	var updated *Company
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, id)
		if err != nil {
			return err
		}

		if err := applyPatch(existing, patch); err != nil {
			return err
		}
		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// SetTheme は会社のテーマを変更します。
func (s *Service) SetTheme(ctx context.Context, id string, theme Theme) (*Company, error) {
	return s.Update(ctx, id, Patch{Theme: &theme})
}

// UploadLogo はロゴ画像を保存し、公開 URL を会社に設定します。
// オブジェクト名は "<会社 ID>-logo.<拡張子>" で、既存のロゴは上書きされます。
func (s *Service) UploadLogo(ctx context.Context, in UploadLogoInput) (*Company, error) {
	id, err := normalizeID(in.CompanyID)
	if err != nil {
		return nil, err
	}

	ext, ok := logoExtensions[strings.ToLower(strings.TrimSpace(in.ContentType))]
	if !ok {
		return nil, fmt.Errorf("%q: %w", in.ContentType, ErrUnsupportedLogoType)
	}
	if in.Size > s.maxLogo {
		return nil, ErrLogoTooLarge
	}
	if s.blobs == nil {
		return nil, fmt.Errorf("upload logo: blob store not configured")
	}

	name := fmt.Sprintf("%s-logo.%s", id, ext)
	url, err := s.blobs.Upload(ctx, name, in.ContentType, io.LimitReader(in.Data, s.maxLogo))
	if err != nil {
		return nil, fmt.Errorf("upload logo: %w", err)
	}

	return s.Update(ctx, id, Patch{LogoURL: &url})
}

// LogoContentTypeAllowed はロゴとして受け付ける Content-Type かを判定します。
func LogoContentTypeAllowed(contentType string) bool {
	_, ok := logoExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	return ok
}

func applyPatch(c *Company, p Patch) error {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return ErrInvalidName
		}
		c.Name = name
	}

	if p.Email != nil {
		email := strings.TrimSpace(*p.Email)
		if !emailPattern.MatchString(email) {
			return ErrInvalidEmail
		}
		c.Email = email
	}

	if p.Theme != nil {
		if !IsValidTheme(*p.Theme) {
			return ErrInvalidTheme
		}
		c.Theme = *p.Theme
	}

	if p.Subtitle != nil {
		c.Subtitle = optionalString(*p.Subtitle)
	}

	if p.LogoURL != nil {
		c.LogoURL = optionalString(*p.LogoURL)
	}

	return nil
}

func normalizeID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if _, err := uuid.Parse(trimmed); err != nil {
		return "", fmt.Errorf("id %q: %w", raw, ErrInvalidID)
	}
	return trimmed, nil
}

func optionalString(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
