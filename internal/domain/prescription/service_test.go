package prescription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dentalops/dentalops/internal/platform/apperr"
	"github.com/dentalops/dentalops/internal/platform/db"
	"github.com/dentalops/dentalops/internal/platform/events"
	"github.com/dentalops/dentalops/pkg/caldate"
)

// -- Mock Repository --

type mockPrescriptionRepo struct {
	rows      map[uuid.UUID]*Prescription
	lines     map[uuid.UUID][]MedicineLine
	ops       []string
	failLines error
}

func newMockPrescriptionRepo() *mockPrescriptionRepo {
	return &mockPrescriptionRepo{
		rows:  make(map[uuid.UUID]*Prescription),
		lines: make(map[uuid.UUID][]MedicineLine),
	}
}

func (m *mockPrescriptionRepo) view(p *Prescription) *PrescriptionView {
	cp := *p
	cp.Lines = append([]MedicineLine{}, m.lines[p.ID]...)
	return &PrescriptionView{Prescription: cp}
}

func (m *mockPrescriptionRepo) List(_ context.Context, ownerID string, _ db.ListOptions) ([]*PrescriptionView, error) {
	var out []*PrescriptionView
	for _, p := range m.rows {
		if p.OwnerID == ownerID {
			out = append(out, m.view(p))
		}
	}
	return out, nil
}

func (m *mockPrescriptionRepo) GetByID(_ context.Context, ownerID string, id uuid.UUID) (*PrescriptionView, error) {
	p, ok := m.rows[id]
	if !ok || p.OwnerID != ownerID {
		return nil, apperr.NotFound("get", "prescription")
	}
	return m.view(p), nil
}

func (m *mockPrescriptionRepo) Create(_ context.Context, p *Prescription) error {
	m.ops = append(m.ops, "create")
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	cp := *p
	cp.Lines = nil
	m.rows[p.ID] = &cp
	return nil
}

func (m *mockPrescriptionRepo) Update(_ context.Context, p *Prescription) error {
	m.ops = append(m.ops, "update")
	old, ok := m.rows[p.ID]
	if !ok || old.OwnerID != p.OwnerID {
		return apperr.NotFound("update", "prescription")
	}
	cp := *p
	cp.Lines = nil
	m.rows[p.ID] = &cp
	return nil
}

func (m *mockPrescriptionRepo) Delete(_ context.Context, ownerID string, id uuid.UUID) error {
	m.ops = append(m.ops, "delete")
	if len(m.lines[id]) > 0 {
		return apperr.Store("delete", "prescription", errors.New("foreign key violation"))
	}
	p, ok := m.rows[id]
	if !ok || p.OwnerID != ownerID {
		return apperr.NotFound("delete", "prescription")
	}
	delete(m.rows, id)
	return nil
}

func (m *mockPrescriptionRepo) InsertLines(_ context.Context, prescriptionID uuid.UUID, lines []MedicineLine) error {
	m.ops = append(m.ops, "insert_lines")
	if m.failLines != nil {
		return apperr.Store("insert", "medicine_line", m.failLines)
	}
	for _, l := range lines {
		l.ID = uuid.New()
		l.PrescriptionID = prescriptionID
		m.lines[prescriptionID] = append(m.lines[prescriptionID], l)
	}
	return nil
}

func (m *mockPrescriptionRepo) DeleteLines(_ context.Context, _ string, prescriptionID uuid.UUID) error {
	m.ops = append(m.ops, "delete_lines")
	delete(m.lines, prescriptionID)
	return nil
}

// recordingTx counts transactions and reports whether fn failed, which is
// where a real transaction would roll back.
type recordingTx struct {
	calls      int
	rolledBack int
}

func (t *recordingTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	err := fn(ctx)
	if err != nil {
		t.rolledBack++
	}
	return err
}

type recordingPublisher struct{ types []string }

func (p *recordingPublisher) Publish(_ context.Context, evt events.Event) error {
	p.types = append(p.types, evt.Type)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

const testOwner = "owner-1"

// ownedRefs maps collection to id to owner.
type ownedRefs map[string]map[uuid.UUID]string

func (o ownedRefs) Owned(_ context.Context, collection, ownerID string, id uuid.UUID) (bool, error) {
	return o[collection][id] == ownerID, nil
}

func newTestService() (*Service, *mockPrescriptionRepo, *recordingTx, *recordingPublisher) {
	repo := newMockPrescriptionRepo()
	tx := &recordingTx{}
	pub := &recordingPublisher{}
	return NewService(repo, nil, tx, pub, zerolog.Nop()), repo, tx, pub
}

func validPrescription() *Prescription {
	return &Prescription{
		PatientID:      uuid.New(),
		StaffID:        uuid.New(),
		PrescribedDate: caldate.New(2025, 7, 15),
		Lines: []MedicineLine{
			{Name: "Amoxicillin", Dosage: "500mg", Frequency: ThreeTimesDaily},
			{Name: " Ibuprofen ", Dosage: "400mg", Frequency: AsNeeded},
		},
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name  string
		edit  func(*Prescription)
		field string
	}{
		{"no patient", func(p *Prescription) { p.PatientID = uuid.Nil }, "patient_id"},
		{"no staff", func(p *Prescription) { p.StaffID = uuid.Nil }, "staff_id"},
		{"no date", func(p *Prescription) { p.PrescribedDate = caldate.Date{} }, "prescribed_date"},
		{"no lines", func(p *Prescription) { p.Lines = nil }, "lines"},
		{"blank medicine", func(p *Prescription) { p.Lines[1].Name = " " }, "lines"},
		{"no dosage", func(p *Prescription) { p.Lines[0].Dosage = "" }, "lines"},
		{"bad frequency", func(p *Prescription) { p.Lines[0].Frequency = "hourly" }, "lines"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPrescription()
			tc.edit(p)
			err := Validate(p)
			ve, ok := err.(*apperr.ValidationError)
			if !ok {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Errorf("expected field %s, got %s", tc.field, ve.Field)
			}
		})
	}
}

func TestIssue(t *testing.T) {
	svc, repo, tx, pub := newTestService()
	v, err := svc.Issue(context.Background(), testOwner, validPrescription())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(v.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(v.Lines))
	}
	if v.Lines[1].Name != "Ibuprofen" || v.Lines[1].Position != 1 {
		t.Errorf("unexpected second line: %+v", v.Lines[1])
	}
	if tx.calls != 1 {
		t.Errorf("expected one transaction, got %d", tx.calls)
	}
	if got := repo.ops; len(got) != 2 || got[0] != "create" || got[1] != "insert_lines" {
		t.Errorf("unexpected store ops %v", got)
	}
	if len(pub.types) != 1 || pub.types[0] != events.PrescriptionIssued {
		t.Errorf("expected issued event, got %v", pub.types)
	}
}

func TestIssue_LineFailureRollsBack(t *testing.T) {
	svc, repo, tx, pub := newTestService()
	repo.failLines = errors.New("disk full")
	_, err := svc.Issue(context.Background(), testOwner, validPrescription())
	var se *apperr.StoreError
	if !errors.As(err, &se) {
		t.Fatalf("expected StoreError, got %v", err)
	}
	if tx.rolledBack != 1 {
		t.Error("expected the transaction to fail")
	}
	if len(pub.types) != 0 {
		t.Error("expected no event")
	}
}

func TestIssue_EmptyLinesNeverStored(t *testing.T) {
	svc, repo, tx, _ := newTestService()
	p := validPrescription()
	p.Lines = []MedicineLine{}
	if _, err := svc.Issue(context.Background(), testOwner, p); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.ops) != 0 || tx.calls != 0 {
		t.Error("expected no store activity")
	}
}

func TestUpdate_ReplacesLines(t *testing.T) {
	svc, repo, _, _ := newTestService()
	ctx := context.Background()
	v, _ := svc.Issue(ctx, testOwner, validPrescription())

	upd := validPrescription()
	upd.Lines = []MedicineLine{{Name: "Chlorhexidine rinse", Dosage: "15ml", Frequency: TwiceDaily}}
	got, err := svc.Update(ctx, testOwner, v.ID, upd)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Lines) != 1 || got.Lines[0].Name != "Chlorhexidine rinse" {
		t.Errorf("expected lines to be replaced, got %+v", got.Lines)
	}
	want := []string{"create", "insert_lines", "update", "delete_lines", "insert_lines"}
	for i, op := range want {
		if repo.ops[i] != op {
			t.Errorf("op %d: %s, want %s", i, repo.ops[i], op)
		}
	}
}

func TestDelete_LinesFirst(t *testing.T) {
	svc, repo, tx, pub := newTestService()
	ctx := context.Background()
	v, _ := svc.Issue(ctx, testOwner, validPrescription())
	repo.ops = nil

	if err := svc.Delete(ctx, testOwner, v.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.ops) != 2 || repo.ops[0] != "delete_lines" || repo.ops[1] != "delete" {
		t.Errorf("expected lines deleted before the prescription, got %v", repo.ops)
	}
	if tx.calls != 2 {
		t.Errorf("expected issue and delete in their own transactions, got %d", tx.calls)
	}
	if _, err := svc.Get(ctx, testOwner, v.ID); !apperr.IsNotFound(err) {
		t.Errorf("expected not found after delete, got %v", err)
	}
	if pub.types[len(pub.types)-1] != events.PrescriptionDeleted {
		t.Errorf("expected deleted event, got %v", pub.types)
	}
}

func TestDelete_NotFound(t *testing.T) {
	svc, _, _, _ := newTestService()
	if err := svc.Delete(context.Background(), testOwner, uuid.New()); !apperr.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestIssueAndUpdate_RejectForeignOwnerRefs(t *testing.T) {
	ctx := context.Background()
	p := validPrescription()
	refs := ownedRefs{
		db.RefPatient: {p.PatientID: testOwner},
		db.RefStaff:   {p.StaffID: "owner-2"},
	}
	repo := newMockPrescriptionRepo()
	tx := &recordingTx{}
	svc := NewService(repo, refs, tx, &recordingPublisher{}, zerolog.Nop())

	_, err := svc.Issue(ctx, testOwner, p)
	var ve *apperr.ValidationError
	if !errors.As(err, &ve) || ve.Field != "staff_id" {
		t.Fatalf("Issue err = %v, want staff_id validation error", err)
	}

	refs[db.RefStaff][p.StaffID] = testOwner
	refs[db.RefPatient][p.PatientID] = "owner-2"
	_, err = svc.Update(ctx, testOwner, uuid.New(), p)
	if !errors.As(err, &ve) || ve.Field != "patient_id" {
		t.Fatalf("Update err = %v, want patient_id validation error", err)
	}
	if len(repo.ops) != 0 || tx.calls != 0 {
		t.Errorf("expected nothing stored, got ops %v and %d transactions", repo.ops, tx.calls)
	}

	refs[db.RefPatient][p.PatientID] = testOwner
	if _, err := svc.Issue(ctx, testOwner, p); err != nil {
		t.Fatalf("Issue with own refs: %v", err)
	}
}
