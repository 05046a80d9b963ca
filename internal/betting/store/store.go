package store

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/solbet-poc/internal/betting/model"
)

// ErrNotSetUp indica que o backend existe mas as tabelas não foram criadas.
// O núcleo trata igual a uma falha transitória.
var ErrNotSetUp = errors.New("store not set up")

var ErrNotFound = errors.New("not found")

// User é a linha de usuário no store
type User struct {
	ID            string
	WalletAddress string
	TokenBalance  decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// BetRecord é o que o núcleo envia para persistir uma aposta
type BetRecord struct {
	UserID        string
	WalletAddress string
	MatchID       string
	Team          string
	Odds          decimal.Decimal
	Amount        decimal.Decimal
	Sport         string
	Match         string
	Type          model.Outcome
	Status        model.Status
	PotentialWin  decimal.Decimal
}

// StoredBet é a aposta persistida, com id e created_at do backend
type StoredBet struct {
	BetRecord
	ID        string
	CreatedAt time.Time
}

// Store é o colaborador de persistência usado por ledger, settlement e tracker
type Store interface {
	CheckSetup(ctx context.Context) error
	GetOrCreateUser(ctx context.Context, owner string) (User, error)
	UpdateUserBalance(ctx context.Context, owner string, balance decimal.Decimal) error
	PlaceBet(ctx context.Context, rec BetRecord) (StoredBet, error)
	GetUserBets(ctx context.Context, owner string) ([]StoredBet, error) // mais recentes primeiro
	UpdateBetStatus(ctx context.Context, betID string, status model.Status) error
	ListPendingBets(ctx context.Context) ([]StoredBet, error)
}

// RecordFor monta o BetRecord de uma aposta colocada
func RecordFor(b model.PlacedBet) BetRecord {
	return BetRecord{
		UserID:        b.Owner,
		WalletAddress: b.Owner,
		MatchID:       b.MatchID,
		Team:          b.Team,
		Odds:          b.Odds,
		Amount:        b.Amount,
		Sport:         b.Sport,
		Match:         b.Match,
		Type:          b.Outcome,
		Status:        b.Status,
		PotentialWin:  b.PotentialWin,
	}
}

// ToPlacedBet converte a linha do store no formato em memória
func (b StoredBet) ToPlacedBet() model.PlacedBet {
	return model.PlacedBet{
		Selection:    model.NewSelection(b.MatchID, b.Type, b.Odds, b.Sport, b.Match, b.Team),
		Amount:       b.Amount,
		PotentialWin: b.PotentialWin,
		Status:       b.Status,
		PlacedAt:     b.CreatedAt,
		Owner:        b.WalletAddress,
		StoreID:      b.ID,
	}
}

// Unavailable responde ErrNotSetUp para tudo.
// Usado quando o Postgres não responde na subida do serviço.
type Unavailable struct{}

func (Unavailable) CheckSetup(context.Context) error { return ErrNotSetUp }
func (Unavailable) GetOrCreateUser(context.Context, string) (User, error) {
	return User{}, ErrNotSetUp
}
func (Unavailable) UpdateUserBalance(context.Context, string, decimal.Decimal) error {
	return ErrNotSetUp
}
func (Unavailable) PlaceBet(context.Context, BetRecord) (StoredBet, error) {
	return StoredBet{}, ErrNotSetUp
}
func (Unavailable) GetUserBets(context.Context, string) ([]StoredBet, error) {
	return nil, ErrNotSetUp
}
func (Unavailable) UpdateBetStatus(context.Context, string, model.Status) error {
	return ErrNotSetUp
}
func (Unavailable) ListPendingBets(context.Context) ([]StoredBet, error) { return nil, ErrNotSetUp }
