package ws

// ClientMsg é a mensagem recebida do navegador
// Type: subscribe | unsubscribe | ping
type ClientMsg struct {
	Type  string `json:"type"`
	Owner string `json:"owner"` // requerido em subscribe/unsubscribe
}

// BetUpdate é enviado aos clientes inscritos no owner
type BetUpdate struct {
	Type    string      `json:"type"` // bet_resolved
	Owner   string      `json:"owner"`
	Payload interface{} `json:"payload"`
}
