package events

import "time"

// Evento emitido pelo bet-resolver-worker após decidir o resultado de uma aposta.
type BetResolved struct {
	BetID  string    `json:"betId"`
	Owner  string    `json:"owner"`
	Status string    `json:"status"` // "won" | "lost"
	Reason string    `json:"reason,omitempty"`
	Ts     time.Time `json:"ts"`
}
