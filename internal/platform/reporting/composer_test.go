package reporting

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/dentalops/dentalops/internal/domain/catalog"
	"github.com/dentalops/dentalops/internal/domain/ledger"
	"github.com/dentalops/dentalops/internal/domain/scheduling"
	"github.com/dentalops/dentalops/internal/platform/auth"
	"github.com/dentalops/dentalops/pkg/caldate"
)

const testOwner = "owner-1"

type stubEntries struct {
	entries []*ledger.EntryView
	err     error
}

func (s *stubEntries) List(_ context.Context, _ string, _ bool) ([]*ledger.EntryView, error) {
	return s.entries, s.err
}

type stubAppointments struct {
	appointments []*scheduling.AppointmentView
	err          error
}

func (s *stubAppointments) List(_ context.Context, _ string, _ bool) ([]*scheduling.AppointmentView, error) {
	return s.appointments, s.err
}

func entry(dir ledger.Direction, amount string, d caldate.Date) *ledger.EntryView {
	return &ledger.EntryView{Entry: ledger.Entry{
		ID:        uuid.New(),
		Direction: dir,
		Category:  ledger.CategoryTreatment,
		Amount:    decimal.NewNullDecimal(decimal.RequireFromString(amount)),
		Date:      &d,
		CreatedAt: time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC),
	}}
}

func appointment(start time.Time, status scheduling.Status, treatment string) *scheduling.AppointmentView {
	v := &scheduling.AppointmentView{Appointment: scheduling.Appointment{
		ID:              uuid.New(),
		StartTime:       start,
		DurationMinutes: 30,
		Status:          status,
	}}
	if treatment != "" {
		v.Treatment = &catalog.TreatmentSummary{Name: treatment}
	}
	return v
}

var reportNow = time.Date(2025, 7, 15, 10, 0, 0, 0, time.UTC)

func TestComposer_Dashboard(t *testing.T) {
	entries := &stubEntries{entries: []*ledger.EntryView{
		entry(ledger.Credit, "100.005", caldate.New(2025, time.July, 1)),
		entry(ledger.Credit, "50", caldate.New(2025, time.June, 20)),
		entry(ledger.Debit, "30", caldate.New(2025, time.July, 2)),
	}}
	appts := &stubAppointments{appointments: []*scheduling.AppointmentView{
		appointment(reportNow.Add(2*time.Hour), scheduling.StatusScheduled, "Cleaning"),
		appointment(reportNow.Add(-time.Hour), scheduling.StatusCompleted, "Cleaning"),
		appointment(reportNow.Add(time.Hour), scheduling.StatusCancelled, "Filling"),
		appointment(reportNow.AddDate(0, -1, 0), scheduling.StatusCompleted, "Filling"),
		appointment(reportNow.AddDate(0, -1, 1), scheduling.StatusCompleted, "Cleaning"),
	}}

	d, err := NewComposer(entries, appts, nil).Dashboard(context.Background(), testOwner, reportNow)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}

	if d.Totals.Credit.String() != "150.01" || d.Totals.Debit.String() != "30" {
		t.Errorf("unexpected totals: %+v", d.Totals)
	}
	if d.Net.String() != "120.01" {
		t.Errorf("unexpected net %s", d.Net)
	}
	if d.Month.Credit.String() != "100.01" || d.Month.Debit.String() != "30" {
		t.Errorf("unexpected month totals: %+v", d.Month)
	}
	if len(d.Series) != SeriesMonths {
		t.Fatalf("expected %d series points, got %d", SeriesMonths, len(d.Series))
	}
	last := d.Series[SeriesMonths-1]
	if last.Month != "2025-07" || last.Revenue.String() != "130.01" || last.AppointmentCount != 3 {
		t.Errorf("unexpected current month point: %+v", last)
	}
	if d.Series[SeriesMonths-2].AppointmentCount != 2 {
		t.Errorf("expected 2 appointments in June, got %d", d.Series[SeriesMonths-2].AppointmentCount)
	}
	if d.TodayAppointments != 2 {
		t.Errorf("expected 2 active appointments today, got %d", d.TodayAppointments)
	}
	if len(d.Distribution) != 2 || d.Distribution[0].Name != "Cleaning" || d.Distribution[0].Count != 2 {
		t.Errorf("unexpected distribution: %+v", d.Distribution)
	}
}

func TestComposer_DashboardUsesPracticeTimezone(t *testing.T) {
	loc := time.FixedZone("practice", -5*60*60)
	// 02:00 UTC on the 15th is still the 14th in the practice zone.
	now := time.Date(2025, 7, 15, 2, 0, 0, 0, time.UTC)
	appts := &stubAppointments{appointments: []*scheduling.AppointmentView{
		appointment(time.Date(2025, 7, 14, 20, 0, 0, 0, time.UTC), scheduling.StatusScheduled, ""),
	}}

	d, err := NewComposer(&stubEntries{}, appts, loc).Dashboard(context.Background(), testOwner, now)
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.TodayAppointments != 1 {
		t.Errorf("expected the appointment to count for the practice's today, got %d", d.TodayAppointments)
	}
}

func TestComposer_DashboardStoreFailure(t *testing.T) {
	c := NewComposer(&stubEntries{err: errors.New("timeout")}, &stubAppointments{}, nil)
	if _, err := c.Dashboard(context.Background(), testOwner, reportNow); err == nil {
		t.Fatal("expected an error")
	}
}

func TestComposer_LedgerByDay(t *testing.T) {
	undated := entry(ledger.Credit, "5", caldate.New(2025, time.July, 1))
	undated.Date = nil
	entries := &stubEntries{entries: []*ledger.EntryView{
		undated,
		entry(ledger.Credit, "10.125", caldate.New(2025, time.July, 1)),
		entry(ledger.Debit, "4", caldate.New(2025, time.July, 3)),
	}}

	days, err := NewComposer(entries, &stubAppointments{}, nil).LedgerByDay(context.Background(), testOwner)
	if err != nil {
		t.Fatalf("LedgerByDay: %v", err)
	}
	want := []string{"2025-07-03", "2025-07-01", ledger.UnknownDay}
	if len(days) != len(want) {
		t.Fatalf("expected %d days, got %d", len(want), len(days))
	}
	for i, key := range want {
		if days[i].Key != key {
			t.Errorf("position %d: expected %s, got %s", i, key, days[i].Key)
		}
	}
	if days[1].Totals.Credit.String() != "10.13" {
		t.Errorf("expected rounded day total 10.13, got %s", days[1].Totals.Credit)
	}
}

func TestHandler_Dashboard(t *testing.T) {
	c := NewComposer(&stubEntries{}, &stubAppointments{}, nil)
	h := NewHandler(c)
	h.now = func() time.Time { return reportNow }

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/reports/dashboard", nil)
	req = req.WithContext(auth.WithOwner(req.Context(), testOwner, []string{auth.RoleDentist}))
	rec := httptest.NewRecorder()

	if err := h.Dashboard(e.NewContext(req, rec)); err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"today_appointments":0`) {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
}

func TestHandler_DashboardStoreFailure(t *testing.T) {
	h := NewHandler(NewComposer(&stubEntries{err: errors.New("timeout")}, &stubAppointments{}, nil))
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/reports/dashboard", nil)
	req = req.WithContext(auth.WithOwner(req.Context(), testOwner, nil))

	err := h.Dashboard(e.NewContext(req, httptest.NewRecorder()))
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %v", err)
	}
}

func TestHandler_RegisterRoutes(t *testing.T) {
	e := echo.New()
	NewHandler(NewComposer(&stubEntries{}, &stubAppointments{}, nil)).RegisterRoutes(e.Group("/api/v1"))

	want := map[string]bool{
		"GET /api/v1/reports/dashboard":    false,
		"GET /api/v1/reports/ledger/daily": false,
	}
	for _, r := range e.Routes() {
		key := r.Method + " " + r.Path
		if _, ok := want[key]; ok {
			want[key] = true
		}
	}
	for key, found := range want {
		if !found {
			t.Errorf("route %s not registered", key)
		}
	}
}
