package slip

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/radieske/solbet-poc/internal/betting/model"
)

// DefaultStake é o valor inicial de uma seleção recém adicionada
var DefaultStake = decimal.NewFromInt(10)

// Line é uma seleção do bilhete com o valor digitado pelo usuário
type Line struct {
	Selection model.Selection
	Amount    decimal.Decimal
}

// PotentialWin retorna amount × odds da linha
func (l Line) PotentialWin() decimal.Decimal { return l.Amount.Mul(l.Selection.Odds) }

// Slip guarda as seleções ainda não confirmadas, em ordem de inserção,
// e o valor apostado em cada uma
type Slip struct {
	mu         sync.Mutex
	selections []model.Selection
	amounts    map[string]decimal.Decimal
}

// New cria um bilhete vazio
func New() *Slip {
	return &Slip{amounts: make(map[string]decimal.Decimal)}
}

// Toggle remove a seleção se ela já estiver no bilhete; senão adiciona com DefaultStake.
// Retorna true quando a seleção foi adicionada.
func (s *Slip) Toggle(sel model.Selection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(sel.ID); i >= 0 {
		s.removeAt(i)
		return false
	}
	s.selections = append(s.selections, sel)
	s.amounts[sel.ID] = DefaultStake
	return true
}

// SetAmount interpreta raw como decimal. Vazio ou não numérico vira zero.
// Valores negativos são guardados como vieram (a liquidação rejeita).
// Retorna false se a seleção não está no bilhete.
func (s *Slip) SetAmount(id, raw string) bool {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		amount = decimal.Zero
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(id) < 0 {
		return false
	}
	s.amounts[id] = amount
	return true
}

// Remove tira a seleção e o valor associado
func (s *Slip) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.removeAt(i)
	return true
}

// Totals soma stake e ganho potencial de todas as seleções atuais
func (s *Slip) Totals() (stake, potentialWin decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return totals(s.linesLocked())
}

// Snapshot retorna uma cópia das linhas em ordem de inserção
func (s *Slip) Snapshot() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.linesLocked()
}

// Clear esvazia seleções e valores
func (s *Slip) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections = nil
	s.amounts = make(map[string]decimal.Decimal)
}

func (s *Slip) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.selections)
}

// Totals calcula (stake, potentialWin) de um conjunto de linhas
func Totals(lines []Line) (stake, potentialWin decimal.Decimal) { return totals(lines) }

func totals(lines []Line) (stake, potentialWin decimal.Decimal) {
	stake, potentialWin = decimal.Zero, decimal.Zero
	for _, l := range lines {
		stake = stake.Add(l.Amount)
		potentialWin = potentialWin.Add(l.PotentialWin())
	}
	return stake, potentialWin
}

func (s *Slip) linesLocked() []Line {
	out := make([]Line, 0, len(s.selections))
	for _, sel := range s.selections {
		out = append(out, Line{Selection: sel, Amount: s.amounts[sel.ID]})
	}
	return out
}

func (s *Slip) indexOf(id string) int {
	for i, sel := range s.selections {
		if sel.ID == id {
			return i
		}
	}
	return -1
}

// removeAt também apaga o valor; ao readicionar volta para DefaultStake
func (s *Slip) removeAt(i int) {
	delete(s.amounts, s.selections[i].ID)
	s.selections = append(s.selections[:i], s.selections[i+1:]...)
}
