// Package reporting composes the dashboard and ledger reports from the
// appointment and ledger collections. All figures are recomputed from the
// store on every request and rounded only here.
package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/dentalops/dentalops/internal/domain/ledger"
	"github.com/dentalops/dentalops/internal/domain/scheduling"
	"github.com/dentalops/dentalops/internal/platform/telemetry"
)

// SeriesMonths is the length of the dashboard trend series.
const SeriesMonths = 6

type EntryLister interface {
	List(ctx context.Context, ownerID string, includeClosed bool) ([]*ledger.EntryView, error)
}

type AppointmentLister interface {
	List(ctx context.Context, ownerID string, includeClosed bool) ([]*scheduling.AppointmentView, error)
}

// Dashboard is the practice overview. Money fields are rounded to
// ledger.MoneyPlaces.
type Dashboard struct {
	GeneratedAt       time.Time              `json:"generated_at"`
	Totals            ledger.Totals          `json:"totals"`
	Net               decimal.Decimal        `json:"net"`
	Month             ledger.Totals          `json:"month"`
	MonthNet          decimal.Decimal        `json:"month_net"`
	Series            []ledger.MonthPoint    `json:"series"`
	Distribution      []ledger.CategoryCount `json:"distribution"`
	TodayAppointments int                    `json:"today_appointments"`
}

// DailyLedger is one day of the ledger report.
type DailyLedger = ledger.DayGroup[*ledger.EntryView]

type Composer struct {
	entries      EntryLister
	appointments AppointmentLister
	loc          *time.Location
}

// NewComposer reads calendar boundaries in loc. A nil loc means UTC.
func NewComposer(entries EntryLister, appointments AppointmentLister, loc *time.Location) *Composer {
	if loc == nil {
		loc = time.UTC
	}
	return &Composer{entries: entries, appointments: appointments, loc: loc}
}

// Dashboard builds the overview for ownerID as of now. Archived entries and
// appointments are left out.
func (c *Composer) Dashboard(ctx context.Context, ownerID string, now time.Time) (*Dashboard, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "reporting.Dashboard")
	defer span.End()

	entries, err := c.entries.List(ctx, ownerID, false)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load ledger entries: %w", err)
	}
	appointments, err := c.appointments.List(ctx, ownerID, false)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load appointments: %w", err)
	}
	span.SetAttributes(
		attribute.Int("reporting.entries", len(entries)),
		attribute.Int("reporting.appointments", len(appointments)),
	)

	now = now.In(c.loc)
	totals := ledger.TotalsByDirection(entries)
	month := ledger.TotalsForMonth(entries, now)

	series := ledger.MonthlySeries(entries, appointments, SeriesMonths, now)
	for i := range series {
		series[i].Revenue = series[i].Revenue.Round(ledger.MoneyPlaces)
	}

	today := 0
	for _, a := range appointments {
		if scheduling.IsActiveToday(&a.Appointment, now) {
			today++
		}
	}

	return &Dashboard{
		GeneratedAt:       now,
		Totals:            totals.Rounded(),
		Net:               totals.Net().Round(ledger.MoneyPlaces),
		Month:             month.Rounded(),
		MonthNet:          month.Net().Round(ledger.MoneyPlaces),
		Series:            series,
		Distribution:      ledger.DistributionByCategory(appointments),
		TodayAppointments: today,
	}, nil
}

// LedgerByDay groups the owner's open ledger entries by date, newest day
// first, with per-day totals rounded.
func (c *Composer) LedgerByDay(ctx context.Context, ownerID string) ([]DailyLedger, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "reporting.LedgerByDay")
	defer span.End()

	entries, err := c.entries.List(ctx, ownerID, false)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("load ledger entries: %w", err)
	}
	days := ledger.GroupByDay(entries)
	for i := range days {
		days[i].Totals = days[i].Totals.Rounded()
	}
	return days, nil
}
