package ws

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/solbet-poc/internal/betting/model"
	"github.com/radieske/solbet-poc/pkg/contracts/events"
)

// ApplyFunc aplica o resultado no histórico da sessão do owner
type ApplyFunc func(owner, betID string, status model.Status) bool

// Relay recebe bet_resolved, atualiza a sessão e repassa ao hub
type Relay struct {
	Hub   *Hub
	Apply ApplyFunc
	Log   *zap.Logger
	// OnApplied é opcional (métricas)
	OnApplied func(status model.Status)
}

// Dispatch processa um payload cru do canal
func (rl *Relay) Dispatch(payload []byte) {
	var ev events.BetResolved
	if err := json.Unmarshal(payload, &ev); err != nil {
		rl.logger().Warn("ws subscriber unmarshal error", zap.Error(err))
		return
	}
	status := model.Status(ev.Status)
	if ev.BetID == "" || ev.Owner == "" || !status.Settled() {
		rl.logger().Warn("ws subscriber ignoring malformed bet_resolved", zap.String("betId", ev.BetID))
		return
	}

	if rl.Apply != nil && rl.Apply(ev.Owner, ev.BetID, status) && rl.OnApplied != nil {
		rl.OnApplied(status)
	}
	if rl.Hub != nil {
		rl.Hub.Broadcast(BetUpdate{Type: "bet_resolved", Owner: ev.Owner, Payload: ev})
	}
}

// Start escuta o canal Redis até o ctx acabar
func (rl *Relay) Start(ctx context.Context, r *redis.Client, channel string) {
	sub := r.Subscribe(ctx, channel)
	ch := sub.Channel()
	go func() {
		for {
			select {
			case <-ctx.Done():
				_ = sub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if msg == nil {
					continue
				}
				rl.Dispatch([]byte(msg.Payload))
			}
		}
	}()
}

func (rl *Relay) logger() *zap.Logger {
	if rl.Log == nil {
		return zap.NewNop()
	}
	return rl.Log
}
