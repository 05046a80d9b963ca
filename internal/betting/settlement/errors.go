package settlement

import "errors"

// ValidationError é uma rejeição do bilhete antes de qualquer mutação.
// Reason é estável (usado em métricas e na API); Msg é para o usuário.
type ValidationError struct {
	Reason string
	Msg    string
}

func (e *ValidationError) Error() string { return e.Msg }

var (
	ErrEmptyStake           = &ValidationError{Reason: "empty_stake", Msg: "please enter bet amounts"}
	ErrNegativeStake        = &ValidationError{Reason: "negative_stake", Msg: "bet amounts cannot be negative"}
	ErrInsufficientBalance  = &ValidationError{Reason: "insufficient_balance", Msg: "insufficient balance"}
	ErrSettlementInProgress = &ValidationError{Reason: "in_progress", Msg: "bets are already being placed"}
)

// IsValidation informa se err é uma rejeição de validação
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
