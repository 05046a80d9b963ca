package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StartingBalance é o saldo inicial de tokens BET de um owner visto pela primeira vez
var StartingBalance = decimal.NewFromInt(1000)

// Outcome é o resultado escolhido numa partida
type Outcome string

const (
	OutcomeHome Outcome = "home"
	OutcomeAway Outcome = "away"
	OutcomeDraw Outcome = "draw"
)

// Valid informa se o outcome é um dos três suportados
func (o Outcome) Valid() bool {
	switch o {
	case OutcomeHome, OutcomeAway, OutcomeDraw:
		return true
	}
	return false
}

// Status é o estado de uma aposta já colocada
type Status string

const (
	StatusPending Status = "pending"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

// Settled retorna true para won ou lost
func (s Status) Settled() bool { return s == StatusWon || s == StatusLost }

// SelectionID monta a identidade composta "<matchID>-<outcome>"
func SelectionID(matchID string, o Outcome) string {
	return fmt.Sprintf("%s-%s", matchID, o)
}

// Selection é uma perna do bilhete. Odds ficam fixas a partir da seleção.
type Selection struct {
	ID      string          `json:"id"`
	MatchID string          `json:"matchId"`
	Outcome Outcome         `json:"type"`
	Odds    decimal.Decimal `json:"odds"`
	Sport   string          `json:"sport"`
	Match   string          `json:"match"` // ex: "Lakers vs Warriors"
	Team    string          `json:"team"`
}

// NewSelection preenche o ID a partir de matchID e outcome
func NewSelection(matchID string, o Outcome, odds decimal.Decimal, sport, match, team string) Selection {
	return Selection{
		ID:      SelectionID(matchID, o),
		MatchID: matchID,
		Outcome: o,
		Odds:    odds,
		Sport:   sport,
		Match:   match,
		Team:    team,
	}
}

// PlacedBet é o registro de uma seleção efetivada.
// PotentialWin é calculado uma única vez em NewPlacedBet; só Status muda depois.
type PlacedBet struct {
	Selection
	Amount       decimal.Decimal `json:"amount"`
	PotentialWin decimal.Decimal `json:"potentialWin"`
	Status       Status          `json:"status"`
	PlacedAt     time.Time       `json:"timestamp"`
	Owner        string          `json:"owner"`
	StoreID      string          `json:"dbId,omitempty"` // vazio quando a persistência falhou
}

// NewPlacedBet congela potentialWin = amount × odds no instante do commit
func NewPlacedBet(sel Selection, amount decimal.Decimal, owner string, at time.Time) PlacedBet {
	return PlacedBet{
		Selection:    sel,
		Amount:       amount,
		PotentialWin: amount.Mul(sel.Odds),
		Status:       StatusPending,
		PlacedAt:     at,
		Owner:        owner,
	}
}
