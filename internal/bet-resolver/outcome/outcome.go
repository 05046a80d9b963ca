package outcome

import (
	"math/rand"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/radieske/solbet-poc/internal/betting/model"
)

// Drawer sorteia o resultado de uma aposta com P(won) = 1/odds
type Drawer struct {
	mu   sync.Mutex
	rand func() float64
}

// New usa a fonte informada; nil => math/rand com seed aleatória
func New(src func() float64) *Drawer {
	if src == nil {
		r := rand.New(rand.NewSource(rand.Int63()))
		src = r.Float64
	}
	return &Drawer{rand: src}
}

// WinProbability é 1/odds limitado a [0,1]; odds <= 0 nunca ganham
func WinProbability(odds decimal.Decimal) float64 {
	if !odds.IsPositive() {
		return 0
	}
	p, _ := decimal.NewFromInt(1).Div(odds).Float64()
	if p > 1 {
		return 1
	}
	return p
}

// Decide retorna won ou lost
func (d *Drawer) Decide(odds decimal.Decimal) model.Status {
	d.mu.Lock()
	r := d.rand()
	d.mu.Unlock()
	if r < WinProbability(odds) {
		return model.StatusWon
	}
	return model.StatusLost
}
