package company

import "time"

// Theme は画面の配色テーマです。
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Company は会社エンティティです。サインアップ時に一度だけ作成されます。
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	LogoURL   *string   `json:"logo_url,omitempty"`
	Subtitle  *string   `json:"subtitle,omitempty"`
	Theme     Theme     `json:"theme"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Patch は会社情報の部分更新です。nil の項目は変更しません。
type Patch struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	LogoURL  *string `json:"logo_url,omitempty"`
	Subtitle *string `json:"subtitle,omitempty"`
	Theme    *Theme  `json:"theme,omitempty"`
}

// IsEmpty は変更項目が一つもない場合に true を返します。
func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.LogoURL == nil && p.Subtitle == nil && p.Theme == nil
}

// Clone は Company のディープコピーを返します。
func (c *Company) Clone() *Company {
	if c == nil {
		return nil
	}
	out := *c
	out.LogoURL = cloneString(c.LogoURL)
	out.Subtitle = cloneString(c.Subtitle)
	return &out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// IsValidTheme は Theme が既知の値かを判定します。
func IsValidTheme(t Theme) bool {
	return t == ThemeLight || t == ThemeDark
}
