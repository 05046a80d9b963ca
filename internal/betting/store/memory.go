package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/radieske/solbet-poc/internal/betting/model"
)

// Memory implementa Store em memória (STORE_DRIVER=memory, ambiente local)
type Memory struct {
	mu    sync.Mutex
	users map[string]User
	bets  []StoredBet
	now   func() time.Time
}

func NewMemory() *Memory {
	return &Memory{users: make(map[string]User), now: time.Now}
}

func (m *Memory) CheckSetup(context.Context) error { return nil }

func (m *Memory) GetOrCreateUser(_ context.Context, owner string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[owner]; ok {
		return u, nil
	}
	now := m.now()
	u := User{
		ID:            uuid.NewString(),
		WalletAddress: owner,
		TokenBalance:  model.StartingBalance,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	m.users[owner] = u
	return u, nil
}

func (m *Memory) UpdateUserBalance(_ context.Context, owner string, balance decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[owner]
	if !ok {
		return ErrNotFound
	}
	u.TokenBalance = balance
	u.UpdatedAt = m.now()
	m.users[owner] = u
	return nil
}

func (m *Memory) PlaceBet(_ context.Context, rec BetRecord) (StoredBet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sb := StoredBet{BetRecord: rec, ID: uuid.NewString(), CreatedAt: m.now()}
	m.bets = append(m.bets, sb)
	return sb, nil
}

func (m *Memory) GetUserBets(_ context.Context, owner string) ([]StoredBet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []StoredBet
	for i := len(m.bets) - 1; i >= 0; i-- {
		if m.bets[i].WalletAddress == owner {
			out = append(out, m.bets[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *Memory) UpdateBetStatus(_ context.Context, betID string, status model.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.bets {
		if m.bets[i].ID == betID {
			// só pending muda; aposta já liquidada fica como está
			if m.bets[i].Status == model.StatusPending {
				m.bets[i].Status = status
			}
			return nil
		}
	}
	return ErrNotFound
}

func (m *Memory) ListPendingBets(context.Context) ([]StoredBet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []StoredBet
	for i := len(m.bets) - 1; i >= 0; i-- {
		if m.bets[i].Status == model.StatusPending {
			out = append(out, m.bets[i])
		}
	}
	return out, nil
}
