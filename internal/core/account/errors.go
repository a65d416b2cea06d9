package account

import "errors"

var (
	// ErrUserNotFound は認証主体が存在しない場合に返却されます。
	ErrUserNotFound = errors.New("account: user not found")
	// ErrProfileNotFound はプロフィールが存在しない場合に返却されます。
	ErrProfileNotFound = errors.New("account: profile not found")
	// ErrEmailAlreadyExists はメールアドレス重複時に返却されます。
	ErrEmailAlreadyExists = errors.New("account: email already exists")
	// ErrInvalidEmail はメールアドレスが不正な場合に返却されます。
	ErrInvalidEmail = errors.New("account: invalid email")
	// ErrInvalidPassword はパスワードが短すぎる場合に返却されます。
	ErrInvalidPassword = errors.New("account: password must have at least 6 characters")
	// ErrPasswordMismatch は確認用パスワードが一致しない場合に返却されます。
	ErrPasswordMismatch = errors.New("account: passwords do not match")
	// ErrInvalidCompanyName は会社名が空の場合に返却されます。
	ErrInvalidCompanyName = errors.New("account: invalid company name")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("account: invalid id")
	// ErrInvalidCredentials はメールアドレスまたはパスワードが誤っている場合に返却されます。
	ErrInvalidCredentials = errors.New("account: invalid credentials")
	// ErrEmailNotConfirmed はメール確認が必要な設定で未確認の場合に返却されます。
	ErrEmailNotConfirmed = errors.New("account: email not confirmed")
	// ErrProvisioningFailed は会社とプロフィールの作成に失敗した場合に返却されます。作成済みの認証主体は削除済みです。
	ErrProvisioningFailed = errors.New("account: company provisioning failed")
	// ErrPartialProvisioning はプロビジョニング失敗後に認証主体の削除にも失敗した場合に返却されます。
	ErrPartialProvisioning = errors.New("account: identity left without company")
)
