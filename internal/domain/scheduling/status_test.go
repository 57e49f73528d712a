package scheduling

import (
	"testing"

	"github.com/dentalops/dentalops/internal/platform/apperr"
)

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(" In-Progress ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st != StatusInProgress {
		t.Errorf("expected in-progress, got %s", st)
	}
	if _, err := ParseStatus("noshow"); !apperr.IsValidation(err) {
		t.Errorf("expected validation error for unknown status, got %v", err)
	}
}

func TestParsePolicy(t *testing.T) {
	cases := map[string]StatusPolicy{
		"":           PolicyTerminal,
		"terminal":   PolicyTerminal,
		"STRICT":     PolicyStrict,
		"permissive": PolicyPermissive,
	}
	for in, want := range cases {
		got, err := ParsePolicy(in)
		if err != nil || got != want {
			t.Errorf("ParsePolicy(%q) = %s, %v; want %s", in, got, err, want)
		}
	}
	if _, err := ParsePolicy("lenient"); err == nil {
		t.Error("expected error for unknown policy")
	}
}

func TestCanTransition_Strict(t *testing.T) {
	allowed := [][2]Status{
		{StatusScheduled, StatusConfirmed},
		{StatusConfirmed, StatusInProgress},
		{StatusInProgress, StatusCompleted},
		{StatusScheduled, StatusCancelled},
		{StatusConfirmed, StatusCancelled},
		{StatusInProgress, StatusCancelled},
		{StatusCompleted, StatusCompleted},
	}
	for _, tr := range allowed {
		if err := PolicyStrict.CanTransition(tr[0], tr[1]); err != nil {
			t.Errorf("%s -> %s: unexpected error %v", tr[0], tr[1], err)
		}
	}

	rejected := [][2]Status{
		{StatusScheduled, StatusCompleted},
		{StatusScheduled, StatusInProgress},
		{StatusConfirmed, StatusScheduled},
		{StatusCompleted, StatusScheduled},
		{StatusCompleted, StatusCancelled},
		{StatusCancelled, StatusScheduled},
	}
	for _, tr := range rejected {
		if err := PolicyStrict.CanTransition(tr[0], tr[1]); !apperr.IsValidation(err) {
			t.Errorf("%s -> %s: expected validation error, got %v", tr[0], tr[1], err)
		}
	}
}

func TestCanTransition_TerminalStatesAreFinal(t *testing.T) {
	for _, policy := range []StatusPolicy{PolicyStrict, PolicyTerminal} {
		for _, from := range []Status{StatusCompleted, StatusCancelled} {
			for _, to := range allStatuses {
				err := policy.CanTransition(from, to)
				if to == from && err != nil {
					t.Errorf("%s: %s -> %s should be a no-op, got %v", policy, from, to, err)
				}
				if to != from && err == nil {
					t.Errorf("%s: %s -> %s should be rejected", policy, from, to)
				}
			}
		}
	}
}

func TestCanTransition_TerminalPolicyAllowsFreeSelection(t *testing.T) {
	if err := PolicyTerminal.CanTransition(StatusScheduled, StatusCompleted); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := PolicyTerminal.CanTransition(StatusInProgress, StatusScheduled); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCanTransition_Permissive(t *testing.T) {
	if err := PolicyPermissive.CanTransition(StatusCompleted, StatusScheduled); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := PolicyPermissive.CanTransition(StatusScheduled, Status("bogus")); err == nil {
		t.Error("expected unknown status to be rejected under every policy")
	}
}
