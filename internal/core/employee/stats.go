package employee

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Period はダッシュボードの集計期間です。
type Period string

const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

const (
	dayBuckets   = 7
	monthBuckets = 6
	yearBuckets  = 5
)

// ParsePeriod は文字列を Period に変換します。空文字は month として扱います。
func ParsePeriod(raw string) (Period, error) {
	switch p := Period(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return PeriodMonth, nil
	case PeriodDay, PeriodMonth, PeriodYear:
		return p, nil
	default:
		return "", fmt.Errorf("period %q: %w", raw, ErrInvalidPeriod)
	}
}

// Stats は社員集合の集計値です。
type Stats struct {
	Total        int `json:"total"`
	Active       int `json:"active"`
	OnLeave      int `json:"on_leave"`
	Inactive     int `json:"inactive"`
	NewThisMonth int `json:"new_this_month"`
}

// Statistics は与えられた集合を走査して集計します。ref は基準となる現在時刻です。
func Statistics(list []*Employee, ref time.Time) Stats {
	stats := Stats{Total: len(list)}
	for _, e := range list {
		switch e.Status {
		case StatusActive:
			stats.Active++
		case StatusOnLeave:
			stats.OnLeave++
		case StatusInactive:
			stats.Inactive++
		}
		if sameMonth(e.AdmissionDate, ref) {
			stats.NewThisMonth++
		}
	}
	return stats
}

// FilterByPeriod は入社日が ref と同じ日・月・年に属する社員だけを返します。
func FilterByPeriod(list []*Employee, period Period, ref time.Time) []*Employee {
	match := func(d time.Time) bool {
		switch period {
		case PeriodDay:
			return sameDay(d, ref)
		case PeriodMonth:
			return sameMonth(d, ref)
		case PeriodYear:
			return d.Year() == ref.Year()
		default:
			return true
		}
	}

	filtered := make([]*Employee, 0, len(list))
	for _, e := range list {
		if match(e.AdmissionDate) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// Bucket はグラフ 1 本分の集計です。
type Bucket struct {
	Label string    `json:"label"`
	Start time.Time `json:"start"`
	Count int       `json:"count"`
}

// ChartBuckets は ref を末尾とする固定窓で入社数を集計します。古い順に並びます。
// day は 7 日、month は 6 か月、year は 5 年です。list には期間で絞り込む前の全社員を渡します。
func ChartBuckets(list []*Employee, period Period, ref time.Time) []Bucket {
	var buckets []Bucket

	switch period {
	case PeriodDay:
		buckets = make([]Bucket, 0, dayBuckets)
		for i := 0; i < dayBuckets; i++ {
			day := time.Date(ref.Year(), ref.Month(), ref.Day()-(dayBuckets-1-i), 0, 0, 0, 0, time.UTC)
			buckets = append(buckets, Bucket{
				Label: day.Format("02/01"),
				Start: day,
				Count: countWhere(list, func(d time.Time) bool { return sameDay(d, day) }),
			})
		}
	case PeriodMonth:
		buckets = make([]Bucket, 0, monthBuckets)
		for i := 0; i < monthBuckets; i++ {
			month := time.Date(ref.Year(), ref.Month()-time.Month(monthBuckets-1-i), 1, 0, 0, 0, 0, time.UTC)
			buckets = append(buckets, Bucket{
				Label: month.Format("Jan"),
				Start: month,
				Count: countWhere(list, func(d time.Time) bool { return sameMonth(d, month) }),
			})
		}
	case PeriodYear:
		buckets = make([]Bucket, 0, yearBuckets)
		for i := 0; i < yearBuckets; i++ {
			year := ref.Year() - (yearBuckets - 1 - i)
			buckets = append(buckets, Bucket{
				Label: strconv.Itoa(year),
				Start: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
				Count: countWhere(list, func(d time.Time) bool { return d.Year() == year }),
			})
		}
	}

	return buckets
}

// DepartmentCount は部署ごとの人数です。
type DepartmentCount struct {
	Department string `json:"department"`
	Count      int    `json:"count"`
}

// DepartmentBreakdown は部署ごとの人数を多い順に返します。同数の場合は部署名の昇順です。
func DepartmentBreakdown(list []*Employee) []DepartmentCount {
	counts := make(map[string]int)
	for _, e := range list {
		counts[e.Department]++
	}

	result := make([]DepartmentCount, 0, len(counts))
	for dept, n := range counts {
		result = append(result, DepartmentCount{Department: dept, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Department < result[j].Department
	})
	return result
}

// RecentAdmissions は入社日の新しい順に最大 n 件を返します。元のスライスは並べ替えません。
func RecentAdmissions(list []*Employee, n int) []*Employee {
	sorted := make([]*Employee, len(list))
	copy(sorted, list)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AdmissionDate.After(sorted[j].AdmissionDate)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// StatusCount は在籍状態ごとの人数です。
type StatusCount struct {
	Status Status `json:"status"`
	Count  int    `json:"count"`
}

// StatusBreakdown は在籍状態の内訳を返します。0 件の状態は含めません。
func StatusBreakdown(list []*Employee) []StatusCount {
	var active, onLeave int
	for _, e := range list {
		switch e.Status {
		case StatusActive:
			active++
		case StatusOnLeave:
			onLeave++
		}
	}

	all := []StatusCount{
		{Status: StatusActive, Count: active},
		{Status: StatusOnLeave, Count: onLeave},
		{Status: StatusInactive, Count: len(list) - active - onLeave},
	}

	result := make([]StatusCount, 0, len(all))
	for _, sc := range all {
		if sc.Count > 0 {
			result = append(result, sc)
		}
	}
	return result
}

func countWhere(list []*Employee, match func(time.Time) bool) int {
	n := 0
	for _, e := range list {
		if match(e.AdmissionDate) {
			n++
		}
	}
	return n
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
