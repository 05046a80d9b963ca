package dto

// OpenSessionRequest conecta uma carteira; publicKey vazio gera identidade demo
type OpenSessionRequest struct {
	PublicKey string `json:"publicKey"`
}

// ToggleRequest adiciona ou remove a seleção do bilhete.
// As odds nunca vêm do cliente: são resolvidas no feed.
type ToggleRequest struct {
	MatchID string `json:"matchId"`
	Type    string `json:"type"` // "home" | "draw" | "away"
}

// AmountRequest carrega o texto digitado no campo de valor
type AmountRequest struct {
	Amount string `json:"amount"`
}
