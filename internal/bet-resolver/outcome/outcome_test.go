package outcome

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/radieske/solbet-poc/internal/betting/model"
)

func fixed(v float64) func() float64 { return func() float64 { return v } }

func TestDecide(t *testing.T) {
	cases := []struct {
		odds string
		r    float64
		want model.Status
	}{
		{"2.00", 0.49, model.StatusWon},
		{"2.00", 0.50, model.StatusLost},
		{"4.00", 0.20, model.StatusWon},
		{"4.00", 0.30, model.StatusLost},
		{"0.50", 0.99, model.StatusWon}, // p limitado a 1
		{"0", 0.0, model.StatusLost},
	}
	for _, tc := range cases {
		got := New(fixed(tc.r)).Decide(decimal.RequireFromString(tc.odds))
		if got != tc.want {
			t.Errorf("odds=%s r=%v got=%s want=%s", tc.odds, tc.r, got, tc.want)
		}
	}
}

func TestDefaultSourceProducesSettledStatus(t *testing.T) {
	d := New(nil)
	for i := 0; i < 20; i++ {
		if s := d.Decide(decimal.RequireFromString("2.45")); !s.Settled() {
			t.Fatalf("status=%s", s)
		}
	}
}
