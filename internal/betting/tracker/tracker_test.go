package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/solbet-poc/internal/betting/ledger"
	"github.com/radieske/solbet-poc/internal/betting/model"
	"github.com/radieske/solbet-poc/internal/betting/store"
	"github.com/radieske/solbet-poc/internal/betting/store/storetest"
)

func bet(matchID string, status model.Status) model.PlacedBet {
	sel := model.NewSelection(matchID, model.OutcomeHome, decimal.RequireFromString("2.5"), "Soccer", "A vs B", "A")
	b := model.NewPlacedBet(sel, decimal.NewFromInt(10), "o", time.Unix(0, 0))
	b.Status = status
	b.StoreID = "db-" + matchID
	return b
}

func ids(bets []model.PlacedBet) []string {
	out := make([]string, 0, len(bets))
	for _, b := range bets {
		out = append(out, b.MatchID)
	}
	return out
}

func TestPartition(t *testing.T) {
	in := []model.PlacedBet{
		bet("1", model.StatusPending),
		bet("2", model.StatusWon),
		bet("3", model.StatusPending),
		bet("4", model.StatusLost),
		bet("5", model.StatusWon),
	}
	pending, settled := Partition(in)

	if got := ids(pending); len(got) != 2 || got[0] != "1" || got[1] != "3" {
		t.Fatalf("pending=%v want [1 3]", got)
	}
	if got := ids(settled); len(got) != 3 || got[0] != "2" || got[1] != "4" || got[2] != "5" {
		t.Fatalf("settled=%v want [2 4 5]", got)
	}
	if len(pending)+len(settled) != len(in) {
		t.Fatalf("partition lost bets: %d+%d != %d", len(pending), len(settled), len(in))
	}
}

func TestPartitionEmpty(t *testing.T) {
	pending, settled := Partition(nil)
	if len(pending) != 0 || len(settled) != 0 {
		t.Fatalf("pending=%v settled=%v", pending, settled)
	}
}

func TestLoadForOwner(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	sel := model.NewSelection("9", model.OutcomeDraw, decimal.RequireFromString("3.4"), "Soccer", "Real Madrid vs Barcelona", "Draw")
	pb := model.NewPlacedBet(sel, decimal.NewFromInt(10), "o", time.Now())
	if _, err := mem.PlaceBet(ctx, store.RecordFor(pb)); err != nil {
		t.Fatal(err)
	}

	tr := &Tracker{Store: mem, Mode: ledger.ModeDurable}
	got := tr.LoadForOwner(ctx, "o")
	if len(got) != 1 || got[0].ID != "9-draw" || got[0].StoreID == "" {
		t.Fatalf("got=%+v", got)
	}
	if !got[0].PotentialWin.Equal(decimal.NewFromInt(34)) {
		t.Fatalf("potentialWin=%s want=34", got[0].PotentialWin)
	}
}

func TestLoadForOwnerFailsOpen(t *testing.T) {
	ctx := context.Background()
	flaky := storetest.New(store.NewMemory())
	flaky.BetsErr = errors.New("boom")

	tr := &Tracker{Store: flaky, Mode: ledger.ModeDurable}
	if got := tr.LoadForOwner(ctx, "o"); got == nil || len(got) != 0 {
		t.Fatalf("got=%v want empty non-nil", got)
	}

	local := &Tracker{Store: flaky, Mode: ledger.ModeLocal}
	local.LoadForOwner(ctx, "o")
	if n := flaky.CallCount("GetUserBets"); n != 1 {
		t.Fatalf("GetUserBets calls=%d want=1 (local mode must not call)", n)
	}
}

func TestHistoryPrependAndApplyStatus(t *testing.T) {
	h := NewHistory([]model.PlacedBet{bet("old", model.StatusPending)})
	h.Prepend(bet("a", model.StatusPending), bet("b", model.StatusPending))

	if got := ids(h.All()); len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "old" {
		t.Fatalf("order=%v want [a b old]", got)
	}

	before := h.All()[1].PotentialWin
	if !h.ApplyStatus("db-b", model.StatusWon) {
		t.Fatal("ApplyStatus returned false")
	}
	after := h.All()[1]
	if after.Status != model.StatusWon || !after.PotentialWin.Equal(before) {
		t.Fatalf("status=%s potentialWin=%s want won/%s", after.Status, after.PotentialWin, before)
	}

	if h.ApplyStatus("db-b", model.StatusLost) {
		t.Fatal("settled bet must not transition again")
	}
	if h.ApplyStatus("db-a", model.StatusPending) {
		t.Fatal("pending is not a valid target status")
	}
	if h.ApplyStatus("", model.StatusWon) {
		t.Fatal("bets without store id cannot be matched")
	}
}

func TestHistoryMergeKeepsMemoryOnlyBets(t *testing.T) {
	at := func(b model.PlacedBet, min int) model.PlacedBet {
		b.PlacedAt = time.Unix(int64(min*60), 0)
		return b
	}

	unsaved := at(bet("1", model.StatusPending), 3)
	unsaved.StoreID = ""
	resolved := at(bet("2", model.StatusWon), 2)
	old := at(bet("3", model.StatusLost), 1)
	h := NewHistory([]model.PlacedBet{unsaved, resolved, old})

	// store: "2" ainda pendente, "3" liquidada e "4" criada por outra sessão
	storedPending := at(bet("2", model.StatusPending), 2)
	extra := at(bet("4", model.StatusPending), 4)
	h.Merge([]model.PlacedBet{extra, storedPending, at(bet("3", model.StatusLost), 1)})

	got := h.All()
	if want := []string{"4", "1", "2", "3"}; len(got) != 4 || ids(got)[0] != want[0] || ids(got)[1] != want[1] ||
		ids(got)[2] != want[2] || ids(got)[3] != want[3] {
		t.Fatalf("history=%v want %v", ids(got), want)
	}
	if got[2].Status != model.StatusWon {
		t.Fatalf("status=%s want won kept from memory", got[2].Status)
	}

	// modo local: o store não devolve nada e nada se perde
	h.Merge(nil)
	if h.Len() != 4 {
		t.Fatalf("len=%d want 4 after empty merge", h.Len())
	}
}
