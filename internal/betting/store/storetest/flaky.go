// Package storetest tem um Store com falhas injetáveis para testes
package storetest

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/radieske/solbet-poc/internal/betting/model"
	"github.com/radieske/solbet-poc/internal/betting/store"
)

// Flaky delega para Inner e retorna o erro configurado em cada operação quando não nil.
// FailPlaceAt faz PlaceBet falhar apenas nas chamadas de índice informado (0-based).
type Flaky struct {
	Inner store.Store

	SetupErr    error
	UserErr     error
	BalanceErr  error
	PlaceErr    error
	BetsErr     error
	StatusErr   error
	FailPlaceAt map[int]bool

	mu       sync.Mutex
	Calls    map[string]int
	placeIdx int
}

func New(inner store.Store) *Flaky {
	return &Flaky{Inner: inner, Calls: make(map[string]int)}
}

func (f *Flaky) count(op string) {
	f.mu.Lock()
	f.Calls[op]++
	f.mu.Unlock()
}

// CallCount retorna quantas vezes a operação foi chamada
func (f *Flaky) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[op]
}

func (f *Flaky) CheckSetup(ctx context.Context) error {
	f.count("CheckSetup")
	if f.SetupErr != nil {
		return f.SetupErr
	}
	return f.Inner.CheckSetup(ctx)
}

func (f *Flaky) GetOrCreateUser(ctx context.Context, owner string) (store.User, error) {
	f.count("GetOrCreateUser")
	if f.UserErr != nil {
		return store.User{}, f.UserErr
	}
	return f.Inner.GetOrCreateUser(ctx, owner)
}

func (f *Flaky) UpdateUserBalance(ctx context.Context, owner string, balance decimal.Decimal) error {
	f.count("UpdateUserBalance")
	if f.BalanceErr != nil {
		return f.BalanceErr
	}
	return f.Inner.UpdateUserBalance(ctx, owner, balance)
}

func (f *Flaky) PlaceBet(ctx context.Context, rec store.BetRecord) (store.StoredBet, error) {
	f.count("PlaceBet")
	f.mu.Lock()
	idx := f.placeIdx
	f.placeIdx++
	f.mu.Unlock()
	if f.PlaceErr != nil {
		return store.StoredBet{}, f.PlaceErr
	}
	if f.FailPlaceAt[idx] {
		return store.StoredBet{}, context.DeadlineExceeded
	}
	return f.Inner.PlaceBet(ctx, rec)
}

func (f *Flaky) GetUserBets(ctx context.Context, owner string) ([]store.StoredBet, error) {
	f.count("GetUserBets")
	if f.BetsErr != nil {
		return nil, f.BetsErr
	}
	return f.Inner.GetUserBets(ctx, owner)
}

func (f *Flaky) UpdateBetStatus(ctx context.Context, betID string, status model.Status) error {
	f.count("UpdateBetStatus")
	if f.StatusErr != nil {
		return f.StatusErr
	}
	return f.Inner.UpdateBetStatus(ctx, betID, status)
}

func (f *Flaky) ListPendingBets(ctx context.Context) ([]store.StoredBet, error) {
	f.count("ListPendingBets")
	return f.Inner.ListPendingBets(ctx)
}
