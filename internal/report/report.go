// Package report derives read-only views from a ledger snapshot: period due
// amounts, category breakdowns, forward projections and daily-log buckets.
// Nothing here mutates state.
package report

import (
	"sort"
	"time"

	"cuotas/internal/core"

	"github.com/shopspring/decimal"
)

// View selects which half of the pending/settled split is visualized.
type View string

const (
	ViewPending View = "pending"
	ViewSettled View = "settled"
)

// projectionHorizon caps forward projections at one year of periods.
const projectionHorizon = 12

// minProjectionPeriods is the floor on projection length, so short-lived
// purchases still render a readable chart.
const minProjectionPeriods = 3

type (
	// CategoryAmount is a total purchase amount aggregated by category.
	CategoryAmount struct {
		Category core.Category   `json:"category"`
		Amount   decimal.Decimal `json:"amount"`
	}

	// PeriodTotal is the amount due in one future billing cycle. Period 1 is
	// the next cycle.
	PeriodTotal struct {
		Period int             `json:"period"`
		Amount decimal.Decimal `json:"amount"`
	}

	// DayAmount buckets daily-log spending by day of month.
	DayAmount struct {
		Day    int             `json:"day"`
		Amount decimal.Decimal `json:"amount"`
	}

	// MonthAmount buckets daily-log spending by month of year.
	MonthAmount struct {
		Month  int             `json:"month"`
		Amount decimal.Decimal `json:"amount"`
	}
)

// MonthlyDue sums the per-installment charge of every unsettled, non-deferred
// item: the amount falling due in the current period. PayPeriod credits
// exactly this amount back to the owning card.
func MonthlyDue(items []core.Item) decimal.Decimal {
	due := decimal.Zero
	for _, item := range items {
		if item.InstallmentsRemaining > 0 && !item.Deferred {
			due = due.Add(item.InstallmentAmount)
		}
	}
	return due
}

// TotalOutstandingAcrossCards sums the monthly due over every card.
func TotalOutstandingAcrossCards(s core.Snapshot) decimal.Decimal {
	total := decimal.Zero
	for _, card := range s.Cards {
		total = total.Add(MonthlyDue(card.Items))
	}
	return total
}

// TotalOutstandingDebts is the monthly due of the debt list.
func TotalOutstandingDebts(s core.Snapshot) decimal.Decimal {
	return MonthlyDue(s.Debts)
}

// Pending returns the unsettled items, Settled the settled ones. The two
// views are disjoint and together cover the whole list.
func Pending(items []core.Item) []core.Item {
	return filter(items, false)
}

func Settled(items []core.Item) []core.Item {
	return filter(items, true)
}

func filter(items []core.Item, settled bool) []core.Item {
	out := []core.Item{}
	for _, item := range items {
		if item.Settled == settled {
			out = append(out, item)
		}
	}
	return out
}

// Visible applies the pending/settled toggle to a card or debt item list.
// Callers feed the result into CategoryBreakdown and ForwardProjection so the
// aggregates track what is on screen. The daily log never filters.
func Visible(items []core.Item, view View) []core.Item {
	if view == ViewSettled {
		return Settled(items)
	}
	return Pending(items)
}

// CategoryBreakdown groups items by category, summing the full purchase
// amount (not the per-installment charge). Categories with nothing in them
// are omitted; order follows the predefined category list.
func CategoryBreakdown(items []core.Item) []CategoryAmount {
	sums := map[core.Category]decimal.Decimal{}
	for _, item := range items {
		sums[item.Category] = sums[item.Category].Add(item.TotalAmount)
	}
	out := []CategoryAmount{}
	for _, cat := range core.Categories {
		if sum, ok := sums[cat]; ok && !sum.IsZero() {
			out = append(out, CategoryAmount{Category: cat, Amount: sum})
		}
	}
	return out
}

// ForwardProjection spreads every unsettled item's installment charge over
// the coming periods: an item contributes to periods 1..remaining, or
// 2..remaining+1 when deferred, since its next due cycle is pushed back one.
// The horizon is twelve periods; output is truncated to the last period with
// a non-zero total but never below three periods.
func ForwardProjection(items []core.Item) []PeriodTotal {
	totals := make([]decimal.Decimal, projectionHorizon+1) // 1-based
	for _, item := range items {
		if item.InstallmentsRemaining <= 0 {
			continue
		}
		start := 1
		if item.Deferred {
			start = 2
		}
		end := start + item.InstallmentsRemaining - 1
		if end > projectionHorizon {
			end = projectionHorizon
		}
		for p := start; p <= end; p++ {
			totals[p] = totals[p].Add(item.InstallmentAmount)
		}
	}

	last := 0
	for p := 1; p <= projectionHorizon; p++ {
		if !totals[p].IsZero() {
			last = p
		}
	}
	if last < minProjectionPeriods {
		last = minProjectionPeriods
	}

	out := make([]PeriodTotal, 0, last)
	for p := 1; p <= last; p++ {
		out = append(out, PeriodTotal{Period: p, Amount: totals[p]})
	}
	return out
}

// SortedDailyLog returns the journal ordered by date, most recent first.
func SortedDailyLog(items []core.Item) []core.Item {
	out := append([]core.Item{}, items...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date > out[j].Date
	})
	return out
}

// DailyLogMonthToDate buckets the current month's journal entries by day of
// month, summing the purchase amount. Days with no spending are omitted.
func DailyLogMonthToDate(items []core.Item, now time.Time) []DayAmount {
	prefix := now.Format("2006-01")
	sums := map[int]decimal.Decimal{}
	for _, item := range items {
		day, ok := dayOf(item.Date, prefix)
		if !ok {
			continue
		}
		sums[day] = sums[day].Add(item.TotalAmount)
	}
	out := []DayAmount{}
	for day := 1; day <= 31; day++ {
		if sum, ok := sums[day]; ok {
			out = append(out, DayAmount{Day: day, Amount: sum})
		}
	}
	return out
}

// DailyLogByMonthOfYear buckets the current year's journal entries by month,
// summing the purchase amount. Months with no spending are omitted.
func DailyLogByMonthOfYear(items []core.Item, now time.Time) []MonthAmount {
	prefix := now.Format("2006")
	sums := map[int]decimal.Decimal{}
	for _, item := range items {
		t, err := time.Parse("2006-01-02", item.Date)
		if err != nil || t.Format("2006") != prefix {
			continue
		}
		m := int(t.Month())
		sums[m] = sums[m].Add(item.TotalAmount)
	}
	out := []MonthAmount{}
	for m := 1; m <= 12; m++ {
		if sum, ok := sums[m]; ok {
			out = append(out, MonthAmount{Month: m, Amount: sum})
		}
	}
	return out
}

func dayOf(date, monthPrefix string) (int, bool) {
	t, err := time.Parse("2006-01-02", date)
	if err != nil || t.Format("2006-01") != monthPrefix {
		return 0, false
	}
	return t.Day(), true
}
