package slip

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/radieske/solbet-poc/internal/betting/model"
)

func sel(matchID string, o model.Outcome, odds string) model.Selection {
	return model.NewSelection(matchID, o, decimal.RequireFromString(odds), "Soccer", "A vs B", "A")
}

func TestToggleParity(t *testing.T) {
	a := sel("1", model.OutcomeHome, "2.45")
	for n := 1; n <= 6; n++ {
		s := New()
		for i := 0; i < n; i++ {
			s.Toggle(a)
		}
		want := n%2 == 1
		if got := s.Len() == 1; got != want {
			t.Fatalf("toggles=%d member=%v want=%v", n, got, want)
		}
	}
}

func TestToggleInitializesDefaultStake(t *testing.T) {
	s := New()
	if added := s.Toggle(sel("1", model.OutcomeHome, "2.45")); !added {
		t.Fatal("first toggle should add")
	}
	lines := s.Snapshot()
	if len(lines) != 1 || !lines[0].Amount.Equal(DefaultStake) {
		t.Fatalf("lines=%v want one line with stake 10", lines)
	}
}

func TestToggleOffDropsAmount(t *testing.T) {
	s := New()
	a := sel("1", model.OutcomeDraw, "3.20")
	s.Toggle(a)
	s.SetAmount(a.ID, "55")
	s.Toggle(a)
	s.Toggle(a)
	if got := s.Snapshot()[0].Amount; !got.Equal(DefaultStake) {
		t.Fatalf("amount=%s want=10 after re-add", got)
	}
}

func TestSetAmountParsing(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"25", "25"},
		{" 12.5 ", "12.5"},
		{"", "0"},
		{"abc", "0"},
		{"-5", "-5"},
	}
	for _, tc := range cases {
		s := New()
		a := sel("1", model.OutcomeHome, "2")
		s.Toggle(a)
		if !s.SetAmount(a.ID, tc.raw) {
			t.Fatalf("SetAmount(%q) returned false", tc.raw)
		}
		if got := s.Snapshot()[0].Amount; !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("raw=%q amount=%s want=%s", tc.raw, got, tc.want)
		}
	}
}

func TestSetAmountUnknownSelection(t *testing.T) {
	s := New()
	if s.SetAmount("nope-home", "10") {
		t.Fatal("expected false for unknown selection")
	}
}

func TestTotals(t *testing.T) {
	s := New()
	stake, win := s.Totals()
	if !stake.IsZero() || !win.IsZero() {
		t.Fatalf("empty slip totals=(%s,%s) want (0,0)", stake, win)
	}

	a := sel("1", model.OutcomeHome, "2.45")
	b := sel("2", model.OutcomeHome, "1.85")
	s.Toggle(a)
	s.Toggle(b)
	s.SetAmount(b.ID, "20")

	stake, win = s.Totals()
	if !stake.Equal(decimal.NewFromInt(30)) {
		t.Fatalf("stake=%s want=30", stake)
	}
	if !win.Equal(decimal.RequireFromString("61.5")) {
		t.Fatalf("win=%s want=61.5", win)
	}
}

func TestRemoveAndClear(t *testing.T) {
	s := New()
	a := sel("1", model.OutcomeHome, "2.45")
	b := sel("1", model.OutcomeAway, "2.80")
	s.Toggle(a)
	s.Toggle(b)

	if !s.Remove(a.ID) {
		t.Fatal("remove existing returned false")
	}
	if s.Remove(a.ID) {
		t.Fatal("remove twice returned true")
	}
	lines := s.Snapshot()
	if len(lines) != 1 || lines[0].Selection.ID != b.ID {
		t.Fatalf("lines=%v want only %s", lines, b.ID)
	}

	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("len=%d after clear", s.Len())
	}
	stake, _ := s.Totals()
	if !stake.IsZero() {
		t.Fatalf("stake=%s after clear", stake)
	}
}

func TestSnapshotKeepsInsertionOrder(t *testing.T) {
	s := New()
	ids := []string{"3", "1", "2"}
	for _, id := range ids {
		s.Toggle(sel(id, model.OutcomeHome, "2"))
	}
	for i, l := range s.Snapshot() {
		if l.Selection.MatchID != ids[i] {
			t.Fatalf("pos %d got %s want %s", i, l.Selection.MatchID, ids[i])
		}
	}
}
