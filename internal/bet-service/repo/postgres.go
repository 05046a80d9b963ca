package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/radieske/solbet-poc/internal/betting/model"
	"github.com/radieske/solbet-poc/internal/betting/store"
)

// código SQLSTATE de tabela inexistente (schema não aplicado)
const undefinedTable = "42P01"

// Postgres implementa store.Store em banco Postgres
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de usuários e apostas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

var _ store.Store = (*Postgres)(nil)

// classify traduz tabela inexistente em store.ErrNotSetUp
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == undefinedTable {
		return fmt.Errorf("%s: %w", op, store.ErrNotSetUp)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// CheckSetup faz uma leitura mínima na tabela users
func (p *Postgres) CheckSetup(ctx context.Context) error {
	var id string
	err := p.db.QueryRowContext(ctx, `SELECT id FROM users LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return classify("check setup", err)
}

// GetOrCreateUser retorna o usuário da carteira, criando com saldo inicial se não existir
// Usa transação para garantir atomicidade
func (p *Postgres) GetOrCreateUser(ctx context.Context, owner string) (store.User, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return store.User{}, classify("begin", err)
	}
	defer tx.Rollback()

	var u store.User
	err = tx.QueryRowContext(ctx, `
		SELECT id, wallet_address, token_balance, created_at, updated_at
		FROM users WHERE wallet_address=$1`, owner).
		Scan(&u.ID, &u.WalletAddress, &u.TokenBalance, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		// ON CONFLICT cobre duas sessões criando a mesma carteira ao mesmo tempo
		err = tx.QueryRowContext(ctx, `
			INSERT INTO users(id, wallet_address, token_balance) VALUES($1,$2,$3)
			ON CONFLICT (wallet_address) DO UPDATE SET wallet_address = EXCLUDED.wallet_address
			RETURNING id, wallet_address, token_balance, created_at, updated_at`,
			uuid.NewString(), owner, model.StartingBalance).
			Scan(&u.ID, &u.WalletAddress, &u.TokenBalance, &u.CreatedAt, &u.UpdatedAt)
		if err != nil {
			return store.User{}, classify("create user", err)
		}
	} else if err != nil {
		return store.User{}, classify("get user", err)
	}

	if err = tx.Commit(); err != nil {
		return store.User{}, classify("commit", err)
	}
	return u, nil
}

// UpdateUserBalance grava o novo saldo da carteira
func (p *Postgres) UpdateUserBalance(ctx context.Context, owner string, balance decimal.Decimal) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE users SET token_balance=$1, updated_at=NOW() WHERE wallet_address=$2`, balance, owner)
	if err != nil {
		return classify("update balance", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// PlaceBet insere a aposta e devolve id e created_at gerados
func (p *Postgres) PlaceBet(ctx context.Context, rec store.BetRecord) (store.StoredBet, error) {
	sb := store.StoredBet{BetRecord: rec, ID: uuid.NewString()}
	err := p.db.QueryRowContext(ctx, `
		INSERT INTO bets (id,user_id,wallet_address,match_id,team,odds,amount,sport,match,type,status,potential_win)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING created_at`,
		sb.ID, rec.UserID, rec.WalletAddress, rec.MatchID, rec.Team, rec.Odds, rec.Amount,
		rec.Sport, rec.Match, string(rec.Type), string(rec.Status), rec.PotentialWin,
	).Scan(&sb.CreatedAt)
	if err != nil {
		return store.StoredBet{}, classify("place bet", err)
	}
	return sb, nil
}

const betColumns = `id,user_id,wallet_address,match_id,team,odds,amount,sport,match,type,status,potential_win,created_at`

// GetUserBets lista as apostas da carteira, mais recentes primeiro
func (p *Postgres) GetUserBets(ctx context.Context, owner string) ([]store.StoredBet, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+betColumns+` FROM bets WHERE wallet_address=$1 ORDER BY created_at DESC`, owner)
	if err != nil {
		return nil, classify("get bets", err)
	}
	return scanBets(rows)
}

// UpdateBetStatus muda o status de uma aposta pendente (idempotente para apostas já liquidadas)
func (p *Postgres) UpdateBetStatus(ctx context.Context, betID string, status model.Status) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE bets SET status=$1 WHERE id=$2 AND status='pending'`, string(status), betID)
	if err != nil {
		return classify("update bet status", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var cur string
		if err := p.db.QueryRowContext(ctx, `SELECT status FROM bets WHERE id=$1`, betID).Scan(&cur); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return store.ErrNotFound
			}
			return classify("get bet status", err)
		}
	}
	return nil
}

// ListPendingBets lista todas as apostas pendentes, mais recentes primeiro
func (p *Postgres) ListPendingBets(ctx context.Context) ([]store.StoredBet, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+betColumns+` FROM bets WHERE status='pending' ORDER BY created_at DESC`)
	if err != nil {
		return nil, classify("list pending", err)
	}
	return scanBets(rows)
}

func scanBets(rows *sql.Rows) ([]store.StoredBet, error) {
	defer rows.Close()
	var out []store.StoredBet
	for rows.Next() {
		var b store.StoredBet
		var typ, status string
		if err := rows.Scan(&b.ID, &b.UserID, &b.WalletAddress, &b.MatchID, &b.Team, &b.Odds, &b.Amount,
			&b.Sport, &b.Match, &typ, &status, &b.PotentialWin, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.Type = model.Outcome(typ)
		b.Status = model.Status(status)
		out = append(out, b)
	}
	return out, rows.Err()
}
