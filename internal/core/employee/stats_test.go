package employee

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func emp(id string, admission time.Time, status Status, dept string) *Employee {
	return &Employee{ID: id, CompanyID: "company-1", AdmissionDate: admission, Status: status, Department: dept}
}

var statsRef = time.Date(2026, 10, 16, 14, 0, 0, 0, time.UTC)

func sampleCollection() []*Employee {
	return []*Employee{
		emp("a", date(2026, 10, 16), StatusActive, "Tech"),
		emp("b", date(2026, 10, 15), StatusOnLeave, "Tech"),
		emp("c", date(2026, 10, 1), StatusInactive, "HR"),
		emp("d", date(2026, 9, 30), StatusActive, "Sales"),
		emp("e", date(2026, 5, 1), StatusActive, "Tech"),
		emp("f", date(2026, 4, 30), StatusActive, "HR"),
		emp("g", date(2025, 10, 16), StatusActive, "HR"),
		emp("h", date(2022, 1, 1), StatusInactive, "Legal"),
		emp("i", date(2021, 12, 31), StatusActive, "Legal"),
		emp("j", date(2026, 10, 10), StatusActive, "Sales"),
	}
}

func TestParsePeriod(t *testing.T) {
	t.Parallel()

	cases := map[string]Period{"": PeriodMonth, "day": PeriodDay, " Month ": PeriodMonth, "YEAR": PeriodYear}
	for raw, want := range cases {
		got, err := ParsePeriod(raw)
		if err != nil || got != want {
			t.Fatalf("ParsePeriod(%q) = %v, %v; want %v", raw, got, err, want)
		}
	}

	if _, err := ParsePeriod("week"); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestStatistics(t *testing.T) {
	t.Parallel()

	stats := Statistics(sampleCollection(), statsRef)
	want := Stats{Total: 10, Active: 7, OnLeave: 1, Inactive: 2, NewThisMonth: 4}
	if stats != want {
		t.Fatalf("unexpected stats: got %+v want %+v", stats, want)
	}
}

func TestFilterByPeriod_SubsetAndCalendarRule(t *testing.T) {
	t.Parallel()

	all := sampleCollection()
	index := make(map[*Employee]bool, len(all))
	for _, e := range all {
		index[e] = true
	}

	rules := map[Period]func(time.Time) bool{
		PeriodDay: func(d time.Time) bool {
			return d.Year() == 2026 && d.Month() == time.October && d.Day() == 16
		},
		PeriodMonth: func(d time.Time) bool {
			return d.Year() == 2026 && d.Month() == time.October
		},
		PeriodYear: func(d time.Time) bool { return d.Year() == 2026 },
	}
	wantLen := map[Period]int{PeriodDay: 1, PeriodMonth: 4, PeriodYear: 7}

	for period, rule := range rules {
		filtered := FilterByPeriod(all, period, statsRef)
		if len(filtered) != wantLen[period] {
			t.Fatalf("%s: expected %d, got %d", period, wantLen[period], len(filtered))
		}
		for _, e := range filtered {
			if !index[e] {
				t.Fatalf("%s: element %s not part of the input", period, e.ID)
			}
			if !rule(e.AdmissionDate) {
				t.Fatalf("%s: element %s violates calendar rule", period, e.ID)
			}
		}
		if got := Statistics(filtered, statsRef).Total; got != len(filtered) {
			t.Fatalf("%s: stats total %d != len %d", period, got, len(filtered))
		}
	}
}

func TestFilterByPeriod_UsesReferenceLocation(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("BRT", -3*60*60)
	// 2026-10-17 01:00 UTC is still 2026-10-16 in BRT.
	ref := time.Date(2026, 10, 17, 1, 0, 0, 0, time.UTC).In(loc)

	list := []*Employee{emp("a", date(2026, 10, 16), StatusActive, "Tech")}
	if got := FilterByPeriod(list, PeriodDay, ref); len(got) != 1 {
		t.Fatalf("expected admission to match local calendar day, got %d", len(got))
	}
}

func TestChartBuckets_WindowsOldestFirst(t *testing.T) {
	t.Parallel()

	all := sampleCollection()

	cases := []struct {
		period  Period
		n       int
		labels  []string
		inRange func(time.Time) bool
	}{
		{
			period: PeriodDay,
			n:      7,
			labels: []string{"10/10", "11/10", "12/10", "13/10", "14/10", "15/10", "16/10"},
			inRange: func(d time.Time) bool {
				return !d.Before(date(2026, 10, 10)) && !d.After(date(2026, 10, 16))
			},
		},
		{
			period: PeriodMonth,
			n:      6,
			labels: []string{"May", "Jun", "Jul", "Aug", "Sep", "Oct"},
			inRange: func(d time.Time) bool {
				return !d.Before(date(2026, 5, 1)) && d.Before(date(2026, 11, 1))
			},
		},
		{
			period: PeriodYear,
			n:      5,
			labels: []string{"2022", "2023", "2024", "2025", "2026"},
			inRange: func(d time.Time) bool {
				return d.Year() >= 2022 && d.Year() <= 2026
			},
		},
	}

	for _, tc := range cases {
		buckets := ChartBuckets(all, tc.period, statsRef)
		if len(buckets) != tc.n {
			t.Fatalf("%s: expected %d buckets, got %d", tc.period, tc.n, len(buckets))
		}

		sum := 0
		for i, b := range buckets {
			if b.Label != tc.labels[i] {
				t.Fatalf("%s: bucket %d label %q, want %q", tc.period, i, b.Label, tc.labels[i])
			}
			if i > 0 && !buckets[i-1].Start.Before(b.Start) {
				t.Fatalf("%s: buckets not oldest first", tc.period)
			}
			sum += b.Count
		}

		want := 0
		for _, e := range all {
			if tc.inRange(e.AdmissionDate) {
				want++
			}
		}
		if sum != want {
			t.Fatalf("%s: bucket sum %d, want %d", tc.period, sum, want)
		}
	}
}

func TestChartBuckets_MonthBoundaryDoesNotOverflow(t *testing.T) {
	t.Parallel()

	ref := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	buckets := ChartBuckets(nil, PeriodMonth, ref)

	want := []string{"Mar", "Apr", "May", "Jun", "Jul", "Aug"}
	for i, b := range buckets {
		if b.Label != want[i] {
			t.Fatalf("bucket %d label %q, want %q", i, b.Label, want[i])
		}
	}
}

func TestDepartmentBreakdown_SortedDescending(t *testing.T) {
	t.Parallel()

	list := []*Employee{
		emp("1", date(2026, 1, 5), StatusActive, "Tech"),
		emp("2", date(2026, 2, 5), StatusActive, "HR"),
		emp("3", date(2026, 3, 5), StatusActive, "Tech"),
	}

	got := DepartmentBreakdown(FilterByPeriod(list, PeriodYear, statsRef))
	want := []DepartmentCount{{Department: "Tech", Count: 2}, {Department: "HR", Count: 1}}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("unexpected breakdown: got %v want %v", got, want)
	}
}

func TestRecentAdmissionsAndStatusBreakdown(t *testing.T) {
	t.Parallel()

	all := sampleCollection()
	recent := RecentAdmissions(all, 3)
	if len(recent) != 3 || recent[0].ID != "a" || recent[1].ID != "b" || recent[2].ID != "j" {
		t.Fatalf("unexpected recent admissions: %v %v %v", recent[0].ID, recent[1].ID, recent[2].ID)
	}
	if all[0].ID != "a" || all[2].ID != "c" {
		t.Fatalf("input must not be reordered")
	}

	mix := StatusBreakdown([]*Employee{
		emp("1", statsRef, StatusActive, "x"),
		emp("2", statsRef, StatusActive, "x"),
		emp("3", statsRef, StatusInactive, "x"),
	})
	if len(mix) != 2 || mix[0].Status != StatusActive || mix[0].Count != 2 || mix[1].Status != StatusInactive || mix[1].Count != 1 {
		t.Fatalf("unexpected status breakdown: %+v", mix)
	}
}

func TestEndToEnd_CreateTodayCountsInMonthAndDay(t *testing.T) {
	t.Parallel()

	clk := &stubClock{now: statsRef}
	roster := NewRoster(newFakeEmployeeRepo(clk), "company-1", clk, zerolog.Nop())

	form := validForm("Lia")
	form.AdmissionDate = statsRef.Format(DateLayout)
	if err := roster.Create(context.Background(), form); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	all := roster.Employees()
	if got := Statistics(FilterByPeriod(all, PeriodMonth, roster.Now()), roster.Now()).NewThisMonth; got != 1 {
		t.Fatalf("expected new this month 1, got %d", got)
	}
	if got := Statistics(FilterByPeriod(all, PeriodDay, roster.Now()), roster.Now()).Total; got != 1 {
		t.Fatalf("expected day total 1, got %d", got)
	}

	dash := BuildDashboard(all, PeriodDay, roster.Now())
	if dash.PeriodStats.Total != 1 || len(dash.Chart) != 7 || dash.Chart[6].Count != 1 {
		t.Fatalf("unexpected dashboard: %+v", dash)
	}
}
