package dto

import (
	"github.com/shopspring/decimal"

	"github.com/radieske/solbet-poc/internal/bet-service/wallet"
	"github.com/radieske/solbet-poc/internal/betting/model"
	"github.com/radieske/solbet-poc/internal/betting/slip"
)

// mensagem passiva exibida uma vez quando o store não está disponível
const DegradedNotice = "database not set up: balances and bets are kept in memory for this session"

type SessionResponse struct {
	Owner      string          `json:"owner"`
	Demo       bool            `json:"demo"`
	SOLBalance decimal.Decimal `json:"solBalance"`
	Balance    decimal.Decimal `json:"balance"`
	Degraded   bool            `json:"degraded"`
	Notice     string          `json:"notice,omitempty"`
}

func NewSessionResponse(id wallet.Identity, balance decimal.Decimal, degraded bool) SessionResponse {
	out := SessionResponse{
		Owner:      id.Owner,
		Demo:       id.Demo,
		SOLBalance: id.SOLBalance,
		Balance:    balance,
		Degraded:   degraded,
	}
	if degraded {
		out.Notice = DegradedNotice
	}
	return out
}

type SlipLine struct {
	Selection    model.Selection `json:"selection"`
	Amount       decimal.Decimal `json:"amount"`
	PotentialWin decimal.Decimal `json:"potentialWin"`
}

type SlipResponse struct {
	Lines               []SlipLine      `json:"lines"`
	TotalStake          decimal.Decimal `json:"totalStake"`
	TotalPotentialWin   decimal.Decimal `json:"totalPotentialWin"`
	Balance             decimal.Decimal `json:"balance"`
	InsufficientBalance bool            `json:"insufficientBalance"`
}

// NewSlipResponse monta a visão do bilhete com totais e o aviso de saldo
func NewSlipResponse(lines []slip.Line, balance decimal.Decimal) SlipResponse {
	stake, win := slip.Totals(lines)
	out := SlipResponse{
		Lines:               make([]SlipLine, 0, len(lines)),
		TotalStake:          stake,
		TotalPotentialWin:   win,
		Balance:             balance,
		InsufficientBalance: stake.GreaterThan(balance),
	}
	for _, l := range lines {
		out.Lines = append(out.Lines, SlipLine{Selection: l.Selection, Amount: l.Amount, PotentialWin: l.PotentialWin()})
	}
	return out
}

type ToggleResponse struct {
	Selected bool         `json:"selected"`
	Slip     SlipResponse `json:"slip"`
}

type SettleResponse struct {
	Bets         []model.PlacedBet `json:"bets"`
	TotalStake   decimal.Decimal   `json:"totalStake"`
	PotentialWin decimal.Decimal   `json:"potentialWin"`
	Balance      decimal.Decimal   `json:"balance"`
	Persisted    int               `json:"persisted"`
	Message      string            `json:"message"`
}

type BetsResponse struct {
	Pending []model.PlacedBet `json:"pending"`
	Settled []model.PlacedBet `json:"settled"`
}

type ErrorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}
