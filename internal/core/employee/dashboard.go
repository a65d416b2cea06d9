package employee

import "time"

const recentAdmissionsLimit = 5

// Dashboard はダッシュボード画面に必要な集計をまとめたものです。
type Dashboard struct {
	Period      Period
	Overall     Stats
	PeriodStats Stats
	Chart       []Bucket
	Departments []DepartmentCount
	Recent      []*Employee
	StatusMix   []StatusCount
}

// BuildDashboard は全社員と期間からダッシュボードを組み立てます。
// 統計カードは期間で絞り込んだ集合、グラフは全社員から計算します。
func BuildDashboard(all []*Employee, period Period, ref time.Time) Dashboard {
	filtered := FilterByPeriod(all, period, ref)

	return Dashboard{
		Period:      period,
		Overall:     Statistics(all, ref),
		PeriodStats: Statistics(filtered, ref),
		Chart:       ChartBuckets(all, period, ref),
		Departments: DepartmentBreakdown(filtered),
		Recent:      RecentAdmissions(filtered, recentAdmissionsLimit),
		StatusMix:   StatusBreakdown(filtered),
	}
}
