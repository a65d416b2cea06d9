package navigation

import (
	"path"
	"strings"
)

// View は表示する画面です。
type View string

const (
	ViewLoading   View = "loading"
	ViewAuth      View = "auth"
	ViewDashboard View = "dashboard"
	ViewRegister  View = "register"
	ViewEmployees View = "employees"
	ViewSettings  View = "settings"
	ViewNotFound  View = "not_found"
)

// Item はメニューの 1 項目です。
type Item struct {
	Path  string `json:"path"`
	View  View   `json:"view"`
	Label string `json:"label"`
}

// Menu はサイドバーに表示する項目です。
var Menu = []Item{
	{Path: "/", View: ViewDashboard, Label: "Dashboard"},
	{Path: "/register", View: ViewRegister, Label: "Register employee"},
	{Path: "/employees", View: ViewEmployees, Label: "Employees"},
	{Path: "/settings", View: ViewSettings, Label: "Settings"},
}

// Resolve はパスと認証状態から表示する画面を決めます。
// 読み込み中は常に ViewLoading、未認証の場合はパスに関わらず ViewAuth です。
func Resolve(p string, authenticated, loading bool) View {
	if loading {
		return ViewLoading
	}
	if !authenticated {
		return ViewAuth
	}

	clean := Clean(p)
	for _, item := range Menu {
		if item.Path == clean {
			return item.View
		}
	}
	return ViewNotFound
}

// Clean はクエリを除いたパスを正規化します。
func Clean(p string) string {
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
