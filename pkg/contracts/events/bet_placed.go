package events

import "github.com/shopspring/decimal"

// Evento publicado pelo bet-service para cada aposta persistida numa liquidação do bilhete.
type BetPlaced struct {
	BetID        string          `json:"bet_id"` // id da aposta no store
	Owner        string          `json:"owner"`
	MatchID      string          `json:"match_id"`
	SelectionID  string          `json:"selection_id"`
	Selection    string          `json:"selection"` // "home" | "draw" | "away"
	Team         string          `json:"team"`
	Sport        string          `json:"sport"`
	Match        string          `json:"match"`
	Stake        decimal.Decimal `json:"stake"`
	Odds         decimal.Decimal `json:"odds"`
	PotentialWin decimal.Decimal `json:"potential_win"`
	TsUnixMs     int64           `json:"ts_unix_ms"`
}
