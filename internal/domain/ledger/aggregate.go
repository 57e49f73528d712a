package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dentalops/dentalops/internal/domain/scheduling"
	"github.com/dentalops/dentalops/pkg/caldate"
)

// UnknownDay is the GroupByDay key for entries without a date.
const UnknownDay = "Unknown"

// MoneyPlaces is the precision applied at the presentation boundary.
const MoneyPlaces = 2

// Totals holds per-direction sums.
type Totals struct {
	Credit decimal.Decimal `json:"credit"`
	Debit  decimal.Decimal `json:"debit"`
}

// Net is credits minus debits.
func (t Totals) Net() decimal.Decimal { return t.Credit.Sub(t.Debit) }

// Sum adds both directions.
func (t Totals) Sum() decimal.Decimal { return t.Credit.Add(t.Debit) }

// Rounded returns t rounded half away from zero to two places.
func (t Totals) Rounded() Totals {
	return Totals{Credit: t.Credit.Round(MoneyPlaces), Debit: t.Debit.Round(MoneyPlaces)}
}

func (t *Totals) add(e *Entry, amount decimal.Decimal) {
	switch e.Direction {
	case Credit:
		t.Credit = t.Credit.Add(amount)
	case Debit:
		t.Debit = t.Debit.Add(amount)
	}
}

// amountOf returns the usable amount of e. NULL and non-positive amounts
// are malformed and contribute nothing.
func amountOf(e *Entry) (decimal.Decimal, bool) {
	if !e.Amount.Valid || !e.Amount.Decimal.IsPositive() {
		return decimal.Zero, false
	}
	return e.Amount.Decimal, true
}

// TotalsByDirection sums every well-formed entry regardless of date.
// Entries with an unknown direction are ignored.
func TotalsByDirection[R Record](records []R) Totals {
	var t Totals
	for _, r := range records {
		e := r.LedgerEntry()
		if amount, ok := amountOf(e); ok {
			t.add(e, amount)
		}
	}
	return t
}

// TotalsForMonth sums the entries dated in the calendar month containing
// now, read in now's location. Undated entries are skipped.
func TotalsForMonth[R Record](records []R, now time.Time) Totals {
	var t Totals
	for _, r := range records {
		e := r.LedgerEntry()
		if e.Date == nil || !e.Date.InMonth(now.Year(), now.Month()) {
			continue
		}
		if amount, ok := amountOf(e); ok {
			t.add(e, amount)
		}
	}
	return t
}

// MonthPoint is one month of the trend series.
type MonthPoint struct {
	Month            string          `json:"month"`
	Label            string          `json:"label"`
	Revenue          decimal.Decimal `json:"revenue"`
	AppointmentCount int             `json:"appointment_count"`
}

type yearMonth struct {
	year  int
	month time.Month
}

// MonthlySeries returns exactly monthCount points, oldest first, the last
// being the month containing now. Appointments are bucketed by start time
// in now's location regardless of status.
//
// Revenue sums credits and debits together. A strict ledger would separate
// them; the trend chart has always shown the undiscriminated sum.
func MonthlySeries[R Record](records []R, appointments []*scheduling.AppointmentView, monthCount int, now time.Time) []MonthPoint {
	if monthCount <= 0 {
		return []MonthPoint{}
	}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).AddDate(0, -(monthCount - 1), 0)

	points := make([]MonthPoint, monthCount)
	index := make(map[yearMonth]int, monthCount)
	for i := range points {
		m := first.AddDate(0, i, 0)
		points[i] = MonthPoint{Month: m.Format("2006-01"), Label: m.Format("Jan 2006"), Revenue: decimal.Zero}
		index[yearMonth{m.Year(), m.Month()}] = i
	}

	for _, r := range records {
		e := r.LedgerEntry()
		if e.Date == nil {
			continue
		}
		i, ok := index[yearMonth{e.Date.Year, e.Date.Month}]
		if !ok {
			continue
		}
		if amount, ok := amountOf(e); ok {
			points[i].Revenue = points[i].Revenue.Add(amount)
		}
	}

	for _, a := range appointments {
		if a.StartTime.IsZero() {
			continue
		}
		s := a.StartTime.In(now.Location())
		if i, ok := index[yearMonth{s.Year(), s.Month()}]; ok {
			points[i].AppointmentCount++
		}
	}
	return points
}

// DayGroup is the set of entries sharing one calendar date.
type DayGroup[R Record] struct {
	Key     string        `json:"date"`
	Date    *caldate.Date `json:"-"`
	Entries []R           `json:"entries"`
	Totals  Totals        `json:"totals"`
}

// GroupByDay buckets records by date. Keys are in descending date order
// with the UnknownDay bucket last; within a bucket the newest entry comes
// first. The input slice is not modified.
func GroupByDay[R Record](records []R) []DayGroup[R] {
	byKey := make(map[string]*DayGroup[R])
	var order []string
	for _, r := range records {
		e := r.LedgerEntry()
		key := UnknownDay
		if e.Date != nil && !e.Date.IsZero() {
			key = e.Date.String()
		}
		g, ok := byKey[key]
		if !ok {
			g = &DayGroup[R]{Key: key}
			if key != UnknownDay {
				d := *e.Date
				g.Date = &d
			}
			byKey[key] = g
			order = append(order, key)
		}
		g.Entries = append(g.Entries, r)
		if amount, ok := amountOf(e); ok {
			g.Totals.add(e, amount)
		}
	}

	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if a == UnknownDay || b == UnknownDay {
			return b == UnknownDay && a != UnknownDay
		}
		return a > b
	})

	out := make([]DayGroup[R], 0, len(order))
	for _, key := range order {
		g := byKey[key]
		sort.SliceStable(g.Entries, func(i, j int) bool {
			return g.Entries[i].LedgerEntry().CreatedAt.After(g.Entries[j].LedgerEntry().CreatedAt)
		})
		out = append(out, *g)
	}
	return out
}

// CategoryCount is the number of completed appointments for one treatment.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// DistributionByCategory counts completed appointments by treatment name.
// Appointments without a joined treatment are left out. The result is
// ordered by count descending, then name.
func DistributionByCategory(appointments []*scheduling.AppointmentView) []CategoryCount {
	counts := make(map[string]int)
	for _, a := range appointments {
		if a.Status != scheduling.StatusCompleted {
			continue
		}
		name := a.TreatmentName()
		if name == "" {
			continue
		}
		counts[name]++
	}

	out := make([]CategoryCount, 0, len(counts))
	for name, n := range counts {
		out = append(out, CategoryCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
