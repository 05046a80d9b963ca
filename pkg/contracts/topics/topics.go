package topics

const (
	// Bets
	BetPlaced   = "bet_placed"
	BetResolved = "bet_resolved"

	// DLQs
	BetPlacedDLQ = "bet_placed_dlq"
)

// Canal Redis Pub/Sub usado para empurrar bet_resolved aos websockets do bet-service
const BetUpdatesChannel = "bet_updates_broadcast"
