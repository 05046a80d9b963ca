package settlement

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/solbet-poc/internal/betting/ledger"
	"github.com/radieske/solbet-poc/internal/betting/model"
	"github.com/radieske/solbet-poc/internal/betting/slip"
	"github.com/radieske/solbet-poc/internal/betting/store"
	"github.com/radieske/solbet-poc/internal/betting/tracker"
	"github.com/radieske/solbet-poc/pkg/contracts/events"
)

// DefaultDelay simula a espera de confirmação on-chain antes do commit
const DefaultDelay = 2 * time.Second

// Publisher recebe as apostas persistidas (ex.: Kafka bet_placed)
type Publisher interface {
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
}

// Result é o resultado de uma liquidação aceita
type Result struct {
	Bets         []model.PlacedBet
	TotalStake   decimal.Decimal
	PotentialWin decimal.Decimal
	Balance      decimal.Decimal // saldo após o débito
	Persisted    int
}

// Engine valida o bilhete contra o ledger, cria as apostas e debita o total uma vez.
// Callbacks de métricas são opcionais.
type Engine struct {
	Ledger    *ledger.Ledger
	Store     store.Store
	Mode      ledger.Mode
	Publisher Publisher
	Log       *zap.Logger
	Delay     time.Duration
	Now       func() time.Time

	OnSettled       func(bets, persisted int)
	OnRejected      func(reason string)
	OnPersistFailed func()

	sleep func(time.Duration)

	mu       sync.Mutex
	inflight map[string]struct{}
}

// New cria o engine herdando o modo decidido para o ledger na subida
func New(l *ledger.Ledger, st store.Store, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		Ledger: l,
		Store:  st,
		Mode:   l.Mode(),
		Log:    log,
		Delay:  DefaultDelay,
		Now:    time.Now,
	}
}

// Settle efetiva o bilhete do owner.
//
// Ordem: guarda single-flight por owner, validação (sem mutação), espera simulada,
// criação sequencial das apostas na ordem do bilhete, um único débito do total,
// limpeza do bilhete e prepend no histórico. Falha ao persistir uma aposta não
// aborta o lote: a aposta volta sem StoreID.
func (e *Engine) Settle(ctx context.Context, owner string, s *slip.Slip, h *tracker.History) (Result, error) {
	if !e.acquire(owner) {
		e.rejected(ErrSettlementInProgress)
		return Result{}, ErrSettlementInProgress
	}
	defer e.release(owner)

	lines := s.Snapshot()
	total, win := slip.Totals(lines)
	if err := e.validate(ctx, owner, lines, total); err != nil {
		e.rejected(err)
		return Result{}, err
	}

	// a partir daqui a liquidação vai até o fim mesmo se o cliente desistir
	ctx = context.WithoutCancel(ctx)
	e.wait()

	bets := make([]model.PlacedBet, 0, len(lines))
	persisted := 0
	for _, l := range lines {
		b := model.NewPlacedBet(l.Selection, l.Amount, owner, e.now())
		if sb, ok := e.persist(ctx, b); ok {
			b.StoreID = sb.ID
			if !sb.CreatedAt.IsZero() {
				b.PlacedAt = sb.CreatedAt
			}
			persisted++
		}
		bets = append(bets, b)
	}

	balance := e.Ledger.Debit(ctx, owner, total)

	s.Clear()
	if h != nil {
		h.Prepend(bets...)
	}
	e.publish(ctx, bets)

	e.Log.Info("slip settled",
		zap.String("owner", owner),
		zap.Int("bets", len(bets)),
		zap.Int("persisted", persisted),
		zap.String("stake", total.String()),
		zap.String("balance", balance.String()),
	)
	if e.OnSettled != nil {
		e.OnSettled(len(bets), persisted)
	}

	return Result{
		Bets:         bets,
		TotalStake:   total,
		PotentialWin: win,
		Balance:      balance,
		Persisted:    persisted,
	}, nil
}

// InFlight informa se existe liquidação em andamento para o owner
func (e *Engine) InFlight(owner string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.inflight[owner]
	return ok
}

func (e *Engine) validate(ctx context.Context, owner string, lines []slip.Line, total decimal.Decimal) error {
	if !total.IsPositive() {
		return ErrEmptyStake
	}
	for _, l := range lines {
		if l.Amount.IsNegative() {
			return ErrNegativeStake
		}
	}
	if total.GreaterThan(e.Ledger.Current(ctx, owner)) {
		return ErrInsufficientBalance
	}
	return nil
}

func (e *Engine) persist(ctx context.Context, b model.PlacedBet) (store.StoredBet, bool) {
	if e.Mode != ledger.ModeDurable || e.Store == nil {
		return store.StoredBet{}, false
	}
	sb, err := e.Store.PlaceBet(ctx, store.RecordFor(b))
	if err != nil {
		e.Log.Warn("place bet failed, keeping in memory only",
			zap.String("owner", b.Owner), zap.String("selection", b.ID), zap.Error(err))
		if e.OnPersistFailed != nil {
			e.OnPersistFailed()
		}
		return store.StoredBet{}, false
	}
	return sb, true
}

func (e *Engine) publish(ctx context.Context, bets []model.PlacedBet) {
	if e.Publisher == nil {
		return
	}
	for _, b := range bets {
		if b.StoreID == "" {
			continue
		}
		err := e.Publisher.PublishBetPlaced(ctx, events.BetPlaced{
			BetID:        b.StoreID,
			Owner:        b.Owner,
			MatchID:      b.MatchID,
			SelectionID:  b.ID,
			Selection:    string(b.Outcome),
			Team:         b.Team,
			Sport:        b.Sport,
			Match:        b.Match,
			Stake:        b.Amount,
			Odds:         b.Odds,
			PotentialWin: b.PotentialWin,
		})
		if err != nil {
			e.Log.Warn("publish bet_placed failed", zap.String("betId", b.StoreID), zap.Error(err))
		}
	}
}

func (e *Engine) rejected(err error) {
	if e.OnRejected == nil {
		return
	}
	reason := "other"
	var ve *ValidationError
	if errors.As(err, &ve) {
		reason = ve.Reason
	}
	e.OnRejected(reason)
}

func (e *Engine) acquire(owner string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inflight == nil {
		e.inflight = make(map[string]struct{})
	}
	if _, busy := e.inflight[owner]; busy {
		return false
	}
	e.inflight[owner] = struct{}{}
	return true
}

func (e *Engine) release(owner string) {
	e.mu.Lock()
	delete(e.inflight, owner)
	e.mu.Unlock()
}

func (e *Engine) wait() {
	if e.Delay <= 0 {
		return
	}
	if e.sleep != nil {
		e.sleep(e.Delay)
		return
	}
	time.Sleep(e.Delay)
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
