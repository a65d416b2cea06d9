package account

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
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

const minPasswordLength = 6

// Options は Service の挙動を切り替えます。
type Options struct {
	// BcryptCost が 0 の場合は bcrypt.DefaultCost を使います。
	BcryptCost int
	// RequireEmailConfirmation が true の場合、未確認のメールアドレスではサインインできません。
	RequireEmailConfirmation bool
}

// Service は認証主体とサインアップに関するユースケースをまとめます。
type Service struct {
	repo        Repository
	provisioner Provisioner
	tx          TransactionManager
	clock       Clock
	log         zerolog.Logger
	opts        Options
}

// UseCase は認証ユースケースの公開インターフェースです。
type UseCase interface {
	SignUp(ctx context.Context, in SignUpInput) (*SignUpResult, error)
	Authenticate(ctx context.Context, email, password string) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	LoadProfile(ctx context.Context, userID string) (*Profile, error)
	ConfirmEmail(ctx context.Context, email string) (*User, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, provisioner Provisioner, tx TransactionManager, clock Clock, log zerolog.Logger, opts Options) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:        repo,
		provisioner: provisioner,
		tx:          tx,
		clock:       clock,
		log:         log,
		opts:        opts,
	}
}

// SignUpInput はサインアップ時の入力です。
type SignUpInput struct {
	CompanyName     string
	Email           string
	Password        string
	ConfirmPassword string
}

// SignUpResult はサインアップで作成された認証主体と会社 ID です。
type SignUpResult struct {
	User      *User
	CompanyID string
}

// SignUp は認証主体を作成し、同じトランザクションで会社と管理者プロフィールを作成します。
// 失敗した場合は作成済みの認証主体を削除してから ErrProvisioningFailed を返します。
// サインアップ後にサインイン状態にはなりません。
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*SignUpResult, error) {
	companyName := strings.TrimSpace(in.CompanyName)
	if companyName == "" {
		return nil, ErrInvalidCompanyName
	}

	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	if len(in.Password) < minPasswordLength {
		return nil, ErrInvalidPassword
	}
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var (
		created   *User
		companyID string
	)

	err = s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureEmailNotExists(txCtx, email); err != nil {
			return err
		}

		now := s.clock.Now()
		u := &User{
			Email:        email,
			PasswordHash: string(hash),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if !s.opts.RequireEmailConfirmation {
			u.EmailConfirmedAt = &now
		}

		result, err := s.repo.CreateUser(txCtx, u)
		if err != nil {
			return err
		}
		created = result

		id, err := s.provisioner.Provision(txCtx, companyName, email, result.ID)
		if err != nil {
			return fmt.Errorf("provision company: %w", err)
		}
		companyID = id
		return nil
	})
	if err != nil {
		if created == nil {
			return nil, err
		}
		return nil, s.compensate(ctx, created.ID, err)
	}

	s.log.Info().Str("user_id", created.ID).Str("company_id", companyID).Msg("account provisioned")
	return &SignUpResult{User: created, CompanyID: companyID}, nil
}

// compensate はプロビジョニングに失敗した認証主体を削除します。
// ロールバック済みで存在しない場合は成功として扱います。
func (s *Service) compensate(ctx context.Context, userID string, cause error) error {
	delErr := s.repo.DeleteUser(context.WithoutCancel(ctx), userID)
	if delErr != nil && !errors.Is(delErr, ErrUserNotFound) {
		s.log.Error().Err(cause).AnErr("compensation_error", delErr).Str("user_id", userID).Msg("identity left without company")
		return errors.Join(ErrPartialProvisioning, cause, delErr)
	}

	s.log.Warn().Err(cause).Str("user_id", userID).Msg("sign-up rolled back")
	return errors.Join(ErrProvisioningFailed, cause)
}

// Authenticate はメールアドレスとパスワードを検証します。
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	var u *User
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.FindUserByEmail(txCtx, normalized)
		if err != nil {
			return err
		}
		u = result
		return nil
	}); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	if s.opts.RequireEmailConfirmation && !u.Confirmed() {
		return nil, ErrEmailNotConfirmed
	}

	return u, nil
}

// GetUser は ID で認証主体を取得します。
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	id, err := normalizeID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.FindUserByID(ctx, id)
}

// LoadProfile は認証主体に紐づくプロフィールを取得します。
func (s *Service) LoadProfile(ctx context.Context, userID string) (*Profile, error) {
	userID, err := normalizeID(userID)
	if err != nil {
		return nil, err
	}
	return s.repo.FindProfileByUserID(ctx, userID)
}

// ConfirmEmail はメールアドレスを確認済みにします。確認済みの場合は何もしません。
func (s *Service) ConfirmEmail(ctx context.Context, email string) (*User, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	var confirmed *User
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		u, err := s.repo.FindUserByEmail(txCtx, normalized)
		if err != nil {
			return err
		}
		if u.Confirmed() {
			confirmed = u
			return nil
		}
		result, err := s.repo.ConfirmEmail(txCtx, u.ID, s.clock.Now())
		if err != nil {
			return err
		}
		confirmed = result
		return nil
	}); err != nil {
		return nil, err
	}

	return confirmed, nil
}

func (s *Service) ensureEmailNotExists(ctx context.Context, email string) error {
	u, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return err
	}
	if u != nil {
		return ErrEmailAlreadyExists
	}
	return nil
}

func normalizeEmail(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", ErrInvalidEmail
	}

	return strings.ToLower(addr.Address), nil
}

func normalizeID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if _, err := uuid.Parse(trimmed); err != nil {
		return "", fmt.Errorf("id %q: %w", raw, ErrInvalidID)
	}
	return trimmed, nil
}
