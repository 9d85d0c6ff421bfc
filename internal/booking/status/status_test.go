package status

import (
	"reflect"
	"testing"
)

func TestNextStatusesMatchesTable(t *testing.T) {
	want := map[Status][]Status{
		Pending:   {Confirmed, Cancelled},
		Confirmed: {InUse, Cancelled, NoShow},
		InUse:     {Completed},
		Completed: {},
		Cancelled: {},
		NoShow:    {Confirmed},
	}
	for from, next := range want {
		got := NextStatuses(from)
		if !reflect.DeepEqual(got, next) {
			t.Fatalf("NextStatuses(%s) = %v, want %v", from, got, next)
		}
	}
}

func TestCanTransitionAgreesWithNextStatuses(t *testing.T) {
	for _, from := range All() {
		allowed := map[Status]bool{}
		for _, to := range NextStatuses(from) {
			allowed[to] = true
		}
		for _, to := range All() {
			if got := CanTransition(from, to); got != allowed[to] {
				t.Fatalf("CanTransition(%s, %s) = %v, want %v", from, to, got, allowed[to])
			}
		}
	}
}

func TestTerminalStatusesNeverTransition(t *testing.T) {
	for _, from := range []Status{Completed, Cancelled} {
		if !from.IsTerminal() {
			t.Fatalf("%s should be terminal", from)
		}
		for _, to := range append(All(), Status("unknown")) {
			if CanTransition(from, to) {
				t.Fatalf("CanTransition(%s, %s) should be false", from, to)
			}
		}
	}
}

func TestNoShowReconfirm(t *testing.T) {
	if !CanTransition(NoShow, Confirmed) {
		t.Fatalf("no_show -> confirmed should be allowed")
	}
	if CanTransition(NoShow, Pending) {
		t.Fatalf("no_show -> pending should be rejected")
	}
}

func TestUnknownStatusYieldsEmpty(t *testing.T) {
	if got := NextStatuses("archived"); len(got) != 0 {
		t.Fatalf("expected empty next statuses, got %v", got)
	}
	if CanTransition("archived", Confirmed) {
		t.Fatalf("unknown status should not transition")
	}
	if Status("archived").IsTerminal() {
		t.Fatalf("unknown status is not terminal")
	}
}

func TestNextStatusesReturnsCopy(t *testing.T) {
	got := NextStatuses(Pending)
	got[0] = Completed
	if !CanTransition(Pending, Confirmed) || CanTransition(Pending, Completed) {
		t.Fatalf("mutating result changed the table")
	}
}

func TestParse(t *testing.T) {
	st, err := Parse("  IN_USE ")
	if err != nil || st != InUse {
		t.Fatalf("Parse = %v, %v", st, err)
	}
	if _, err := Parse("returned"); err == nil {
		t.Fatalf("expected error for unknown status")
	}
}

func TestLabel(t *testing.T) {
	if NoShow.Label() != "無断キャンセル" {
		t.Fatalf("unexpected label %q", NoShow.Label())
	}
	if Status("x").Label() != "x" {
		t.Fatalf("unknown status label should fall back to value")
	}
}

func TestTableIsACopy(t *testing.T) {
	table := Table()
	if len(table) != len(All()) {
		t.Fatalf("table has %d entries, want %d", len(table), len(All()))
	}
	for _, st := range All() {
		next, ok := table[st]
		if !ok || next == nil {
			t.Fatalf("%s missing from table", st)
		}
	}
	table[Pending][0] = Completed
	if CanTransition(Pending, Completed) {
		t.Fatalf("mutating the returned table changed the transition rules")
	}
}
