package employee

import "strings"

// FilterAll は一覧の絞り込みを無効にする値です。
const FilterAll = "all"

// ListFilter は一覧画面の検索条件です。
type ListFilter struct {
	Term       string
	Status     string
	Department string
}

// Search は検索語 (氏名・メール・役職・部署の部分一致) と状態・部署で絞り込みます。
func Search(list []*Employee, f ListFilter) []*Employee {
	term := strings.ToLower(strings.TrimSpace(f.Term))
	status := strings.TrimSpace(f.Status)
	dept := strings.TrimSpace(f.Department)

	result := make([]*Employee, 0, len(list))
	for _, e := range list {
		if term != "" && !matchesTerm(e, term) {
			continue
		}
		if status != "" && status != FilterAll && string(e.Status) != status {
			continue
		}
		if dept != "" && dept != FilterAll && e.Department != dept {
			continue
		}
		result = append(result, e)
	}
	return result
}

func matchesTerm(e *Employee, term string) bool {
	for _, field := range []string{e.Name, e.Email, e.Title, e.Department} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// DepartmentsOf は集合に含まれる部署名を出現順に重複なく返します。
func DepartmentsOf(list []*Employee) []string {
	seen := make(map[string]struct{}, len(list))
	result := make([]string, 0)
	for _, e := range list {
		if _, ok := seen[e.Department]; ok {
			continue
		}
		seen[e.Department] = struct{}{}
		result = append(result, e.Department)
	}
	return result
}
