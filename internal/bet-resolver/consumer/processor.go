package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/solbet-poc/internal/bet-resolver/outcome"
	"github.com/radieske/solbet-poc/internal/betting/store"
	"github.com/radieske/solbet-poc/internal/shared/kafka"
	"github.com/radieske/solbet-poc/pkg/contracts/events"
)

// DefaultRetries é o número de novas tentativas antes da DLQ
const DefaultRetries = 3

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// Publisher envia JSON para um tópico (bet_resolved, DLQ)
type Publisher interface {
	Publish(ctx context.Context, key string, v any) error
}

// Broadcaster repassa o resultado para o bet-service (Redis pub/sub)
type Broadcaster interface {
	Broadcast(ctx context.Context, ev events.BetResolved) error
}

// Processor consome bet_placed, sorteia o resultado e grava o novo status.
// Só muda status: o crédito de prêmios não acontece aqui.
type Processor struct {
	Log       *zap.Logger
	Reader    MessageReader
	Store     store.Store
	Drawer    *outcome.Drawer
	Resolved  Publisher
	DLQ       Publisher   // opcional
	Broadcast Broadcaster // opcional
	Retries   int
	Backoff   time.Duration
	Now       func() time.Time

	OnConsumed func()       // métricas
	OnResolved func(string) // métricas por status
	OnError    func(string) // métricas por fase
}

// Run inicia o loop de consumo até o ctx ser cancelado
func (p *Processor) Run(ctx context.Context) error {
	for {
		m, err := p.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.Log.Warn("kafka read failed", zap.Error(err))
			p.failed("read")
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if p.OnConsumed != nil {
			p.OnConsumed()
		}
		if err := p.Handle(ctx, m); err != nil {
			p.Log.Error("resolve bet", zap.ByteString("key", m.Key), zap.Error(err))
		}
	}
}

// Handle decodifica e resolve uma mensagem bet_placed
func (p *Processor) Handle(ctx context.Context, m kafka.Message) error {
	var placed events.BetPlaced
	if err := json.Unmarshal(m.Value, &placed); err != nil {
		p.failed("decode")
		return fmt.Errorf("unmarshal bet_placed: %w", err)
	}
	if placed.BetID == "" {
		p.failed("decode")
		return errors.New("bet_placed without bet id")
	}
	_, err := p.ProcessOne(ctx, placed)
	return err
}

// ProcessOne sorteia, grava o status (com retry) e publica bet_resolved.
// Depois das tentativas a mensagem vai para a DLQ.
func (p *Processor) ProcessOne(ctx context.Context, placed events.BetPlaced) (events.BetResolved, error) {
	status := p.Drawer.Decide(placed.Odds)

	err := p.Store.UpdateBetStatus(ctx, placed.BetID, status)
	for i := 0; err != nil && !errors.Is(err, store.ErrNotFound) && i < p.retries(); i++ {
		p.wait(i)
		err = p.Store.UpdateBetStatus(ctx, placed.BetID, status)
	}
	if err != nil {
		p.failed("store")
		if p.DLQ != nil {
			if derr := p.DLQ.Publish(ctx, placed.BetID, placed); derr != nil {
				p.Log.Error("dlq publish failed", zap.String("betId", placed.BetID), zap.Error(derr))
			}
		}
		return events.BetResolved{}, fmt.Errorf("update bet %s: %w", placed.BetID, err)
	}

	res := events.BetResolved{
		BetID:  placed.BetID,
		Owner:  placed.Owner,
		Status: string(status),
		Reason: fmt.Sprintf("win probability %.3f", outcome.WinProbability(placed.Odds)),
		Ts:     p.now(),
	}

	if p.Resolved != nil {
		if err := p.Resolved.Publish(ctx, placed.BetID, res); err != nil {
			p.Log.Warn("publish bet_resolved failed", zap.String("betId", placed.BetID), zap.Error(err))
			p.failed("publish")
		}
	}
	if p.Broadcast != nil {
		if err := p.Broadcast.Broadcast(ctx, res); err != nil {
			p.Log.Warn("broadcast bet_resolved failed", zap.String("betId", placed.BetID), zap.Error(err))
			p.failed("broadcast")
		}
	}

	p.Log.Info("bet resolved", zap.String("betId", placed.BetID), zap.String("owner", placed.Owner), zap.String("status", res.Status))
	if p.OnResolved != nil {
		p.OnResolved(res.Status)
	}
	return res, nil
}

// Sweep resolve as pendentes com mais de olderThan (mensagens perdidas antes da subida)
func (p *Processor) Sweep(ctx context.Context, olderThan time.Duration) (int, error) {
	rows, err := p.Store.ListPendingBets(ctx)
	if err != nil {
		p.failed("sweep")
		return 0, fmt.Errorf("list pending: %w", err)
	}
	cutoff := p.now().Add(-olderThan)
	n := 0
	for _, sb := range rows {
		if sb.CreatedAt.After(cutoff) {
			continue
		}
		if _, err := p.ProcessOne(ctx, PlacedFromStored(sb)); err != nil {
			p.Log.Warn("sweep resolve failed", zap.String("betId", sb.ID), zap.Error(err))
			continue
		}
		n++
	}
	return n, nil
}

// PlacedFromStored monta o evento a partir da linha do store
func PlacedFromStored(sb store.StoredBet) events.BetPlaced {
	pb := sb.ToPlacedBet()
	return events.BetPlaced{
		BetID:        sb.ID,
		Owner:        sb.WalletAddress,
		MatchID:      sb.MatchID,
		SelectionID:  pb.ID,
		Selection:    string(sb.Type),
		Team:         sb.Team,
		Sport:        sb.Sport,
		Match:        sb.Match,
		Stake:        sb.Amount,
		Odds:         sb.Odds,
		PotentialWin: sb.PotentialWin,
		TsUnixMs:     sb.CreatedAt.UnixMilli(),
	}
}

func (p *Processor) retries() int {
	if p.Retries < 0 {
		return 0
	}
	return p.Retries
}

// backoff linear: 1x, 2x, 3x
func (p *Processor) wait(attempt int) {
	if p.Backoff > 0 {
		time.Sleep(time.Duration(attempt+1) * p.Backoff)
	}
}

func (p *Processor) failed(stage string) {
	if p.OnError != nil {
		p.OnError(stage)
	}
}

func (p *Processor) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}
