package ledger

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/solbet-poc/internal/betting/model"
	"github.com/radieske/solbet-poc/internal/betting/store"
)

// Mode diz se o store durável está disponível nesta sessão do processo
type Mode int

const (
	ModeUnknown Mode = iota
	ModeDurable
	ModeLocal
)

func (m Mode) String() string {
	switch m {
	case ModeDurable:
		return "durable"
	case ModeLocal:
		return "local"
	}
	return "unknown"
}

// Probe consulta o store uma única vez. Qualquer erro (inclusive ErrNotSetUp) => ModeLocal.
func Probe(ctx context.Context, st store.Store) Mode {
	if st == nil {
		return ModeLocal
	}
	if err := st.CheckSetup(ctx); err != nil {
		return ModeLocal
	}
	return ModeDurable
}

type account struct {
	balance decimal.Decimal
	// pinned: uma leitura ou escrita durável falhou; o valor local passa a valer
	// até o fim do processo e nunca é gravado por cima do store
	pinned bool
}

// Ledger é o único componente que altera o saldo de um owner
type Ledger struct {
	st   store.Store
	mode Mode
	log  *zap.Logger

	mu       sync.Mutex
	accounts map[string]*account
}

// New cria o ledger com o modo já decidido. ModeUnknown vira ModeLocal (sem re-probe).
func New(st store.Store, mode Mode, log *zap.Logger) *Ledger {
	if mode == ModeUnknown || st == nil {
		mode = ModeLocal
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Ledger{st: st, mode: mode, log: log, accounts: make(map[string]*account)}
}

func (l *Ledger) Mode() Mode { return l.mode }

// Degraded é true quando o saldo vive só em memória nesta sessão
func (l *Ledger) Degraded() bool { return l.mode == ModeLocal }

// GetOrInit retorna o saldo do owner, criando com StartingBalance na primeira vez
func (l *Ledger) GetOrInit(ctx context.Context, owner string) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.currentLocked(ctx, owner)
}

// Current retorna o valor autoritativo: durável se disponível, senão o local
func (l *Ledger) Current(ctx context.Context, owner string) decimal.Decimal {
	return l.GetOrInit(ctx, owner)
}

// Adjust soma delta (positivo ou negativo) ao saldo e tenta gravar no store.
// Retorna o novo saldo.
func (l *Ledger) Adjust(ctx context.Context, owner string, delta decimal.Decimal) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.currentLocked(ctx, owner).Add(delta)
	acc := l.accounts[owner]
	acc.balance = next

	if l.mode != ModeDurable || acc.pinned {
		return next
	}
	if err := l.st.UpdateUserBalance(ctx, owner, next); err != nil {
		acc.pinned = true
		l.log.Warn("balance write failed, using local balance for this session",
			zap.String("owner", owner), zap.String("balance", next.String()), zap.Error(err))
	}
	return next
}

func (l *Ledger) Credit(ctx context.Context, owner string, amount decimal.Decimal) decimal.Decimal {
	return l.Adjust(ctx, owner, amount)
}

func (l *Ledger) Debit(ctx context.Context, owner string, amount decimal.Decimal) decimal.Decimal {
	return l.Adjust(ctx, owner, amount.Neg())
}

// Forget descarta o estado local do owner (disconnect). Não altera o saldo durável.
// Owner fixado no valor local continua fixado: reconectar não volta a ler o store.
func (l *Ledger) Forget(owner string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if acc, ok := l.accounts[owner]; ok && acc.pinned {
		return
	}
	delete(l.accounts, owner)
}

func (l *Ledger) currentLocked(ctx context.Context, owner string) decimal.Decimal {
	acc, ok := l.accounts[owner]
	if !ok {
		acc = &account{balance: model.StartingBalance}
		l.accounts[owner] = acc
	}
	if l.mode != ModeDurable || acc.pinned {
		return acc.balance
	}

	u, err := l.st.GetOrCreateUser(ctx, owner)
	if err != nil {
		// o valor local não veio do store: fixa para nunca gravá-lo por cima do durável
		acc.pinned = true
		l.log.Warn("balance read failed, using local balance for this session",
			zap.String("owner", owner), zap.String("balance", acc.balance.String()), zap.Error(err))
		return acc.balance
	}
	acc.balance = u.TokenBalance
	return acc.balance
}
