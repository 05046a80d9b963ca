package producer

import (
	"context"
	"errors"
	"time"

	"github.com/radieske/solbet-poc/internal/betting/settlement"
	"github.com/radieske/solbet-poc/internal/shared/kafka"
	"github.com/radieske/solbet-poc/pkg/contracts/events"
)

// KafkaPublisher publica bet_placed para o bet-resolver-worker
type KafkaPublisher struct {
	Writer *kafka.Writer
	Now    func() time.Time
}

var _ settlement.Publisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(w *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: w, Now: time.Now}
}

// PublishBetPlaced usa o id da aposta como chave (mesma partição por aposta)
func (p *KafkaPublisher) PublishBetPlaced(ctx context.Context, e events.BetPlaced) error {
	if e.BetID == "" {
		return errors.New("bet_placed without bet id")
	}
	if e.TsUnixMs == 0 {
		e.TsUnixMs = p.Now().UnixMilli()
	}
	return kafka.WriteJSON(ctx, p.Writer, e.BetID, e)
}

func (p *KafkaPublisher) Close() error { return p.Writer.Close() }
