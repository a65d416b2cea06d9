package company

import "errors"

var (
	// ErrCompanyNotFound は会社が存在しない場合に返却されます。
	ErrCompanyNotFound = errors.New("company: not found")
	// ErrInvalidName は会社名が不正な場合に返却されます。
	ErrInvalidName = errors.New("company: invalid name")
	// ErrInvalidEmail はメールアドレスが不正な場合に返却されます。
	ErrInvalidEmail = errors.New("company: invalid email")
	// ErrInvalidTheme はテーマが不正な場合に返却されます。
	ErrInvalidTheme = errors.New("company: invalid theme")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("company: invalid id")
	// ErrEmptyPatch は更新項目がない場合に返却されます。
	ErrEmptyPatch = errors.New("company: empty patch")
	// ErrUnsupportedLogoType は受け付けない画像形式の場合に返却されます。
	ErrUnsupportedLogoType = errors.New("company: unsupported logo type")
	// ErrLogoTooLarge はロゴ画像がサイズ上限を超えた場合に返却されます。
	ErrLogoTooLarge = errors.New("company: logo too large")
)
