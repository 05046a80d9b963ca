package tracker

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/radieske/solbet-poc/internal/betting/ledger"
	"github.com/radieske/solbet-poc/internal/betting/model"
	"github.com/radieske/solbet-poc/internal/betting/store"
)

// Partition separa apostas em pendentes e liquidadas (won ∪ lost), mantendo a ordem
func Partition(bets []model.PlacedBet) (pending, settled []model.PlacedBet) {
	pending = make([]model.PlacedBet, 0, len(bets))
	settled = make([]model.PlacedBet, 0)
	for _, b := range bets {
		if b.Status.Settled() {
			settled = append(settled, b)
			continue
		}
		pending = append(pending, b)
	}
	return pending, settled
}

// Tracker carrega o histórico do owner a partir do store
type Tracker struct {
	Store store.Store
	Mode  ledger.Mode
	Log   *zap.Logger
}

// LoadForOwner busca as apostas do owner (mais recentes primeiro).
// Falha do store ou modo local => lista vazia.
func (t *Tracker) LoadForOwner(ctx context.Context, owner string) []model.PlacedBet {
	if t.Mode != ledger.ModeDurable || t.Store == nil {
		return []model.PlacedBet{}
	}
	rows, err := t.Store.GetUserBets(ctx, owner)
	if err != nil {
		if t.Log != nil {
			t.Log.Warn("load bets failed", zap.String("owner", owner), zap.Error(err))
		}
		return []model.PlacedBet{}
	}
	out := make([]model.PlacedBet, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ToPlacedBet())
	}
	return out
}

// History é o histórico de apostas de uma sessão, mais recentes primeiro
type History struct {
	mu   sync.RWMutex
	bets []model.PlacedBet
}

func NewHistory(initial []model.PlacedBet) *History {
	h := &History{}
	h.Replace(initial)
	return h
}

// Prepend coloca as novas apostas no topo, preservando a ordem entre elas
func (h *History) Prepend(bets ...model.PlacedBet) {
	h.mu.Lock()
	defer h.mu.Unlock()
	next := make([]model.PlacedBet, 0, len(bets)+len(h.bets))
	next = append(next, bets...)
	h.bets = append(next, h.bets...)
}

func (h *History) Replace(bets []model.PlacedBet) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.bets = append([]model.PlacedBet(nil), bets...)
}

// Merge recarrega o histórico com as linhas do store sem perder o que só existe
// em memória: apostas sem StoreID (persistência falhou ou modo local) e
// resultados já aplicados a apostas que o store ainda mostra pendentes.
func (h *History) Merge(stored []model.PlacedBet) {
	h.mu.Lock()
	defer h.mu.Unlock()

	known := make(map[string]model.PlacedBet, len(h.bets))
	for _, b := range h.bets {
		if b.StoreID != "" {
			known[b.StoreID] = b
		}
	}
	seen := make(map[string]bool, len(stored))
	out := make([]model.PlacedBet, 0, len(stored)+len(h.bets))
	for _, r := range stored {
		if cur, ok := known[r.StoreID]; ok && r.Status == model.StatusPending && cur.Status.Settled() {
			r.Status = cur.Status
		}
		seen[r.StoreID] = true
		out = append(out, r)
	}
	for _, b := range h.bets {
		if b.StoreID == "" || !seen[b.StoreID] {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PlacedAt.After(out[j].PlacedAt) })
	h.bets = out
}

// All retorna uma cópia do histórico
func (h *History) All() []model.PlacedBet {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]model.PlacedBet(nil), h.bets...)
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.bets)
}

// ApplyStatus aplica uma transição vinda do processo externo de liquidação.
// Só pending -> won/lost; PotentialWin não é tocado. Retorna true se alterou.
func (h *History) ApplyStatus(storeID string, status model.Status) bool {
	if storeID == "" || !status.Settled() {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.bets {
		if h.bets[i].StoreID == storeID && h.bets[i].Status == model.StatusPending {
			h.bets[i].Status = status
			return true
		}
	}
	return false
}
