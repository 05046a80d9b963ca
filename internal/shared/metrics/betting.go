package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Betting agrupa as métricas do bet-service
type Betting struct {
	SlipsSettled  prometheus.Counter
	BetsPlaced    prometheus.Counter
	BetsPersisted prometheus.Counter
	PersistErrors prometheus.Counter
	Rejections    *prometheus.CounterVec
	DegradedMode  prometheus.Gauge
	StatusUpdates *prometheus.CounterVec
}

// NewBetting cria e registra as métricas em reg
func NewBetting(reg prometheus.Registerer) *Betting {
	m := &Betting{
		SlipsSettled:  prometheus.NewCounter(prometheus.CounterOpts{Name: "bet_slips_settled_total", Help: "bilhetes liquidados"}),
		BetsPlaced:    prometheus.NewCounter(prometheus.CounterOpts{Name: "bet_bets_placed_total", Help: "apostas criadas"}),
		BetsPersisted: prometheus.NewCounter(prometheus.CounterOpts{Name: "bet_bets_persisted_total", Help: "apostas gravadas no store"}),
		PersistErrors: prometheus.NewCounter(prometheus.CounterOpts{Name: "bet_persist_errors_total", Help: "falhas ao gravar aposta"}),
		Rejections:    prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bet_slip_rejections_total", Help: "bilhetes rejeitados por motivo"}, []string{"reason"}),
		DegradedMode:  prometheus.NewGauge(prometheus.GaugeOpts{Name: "bet_store_degraded", Help: "1 quando o saldo vive só em memória"}),
		StatusUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bet_status_updates_total", Help: "transições recebidas do resolver"}, []string{"status"}),
	}
	reg.MustRegister(m.SlipsSettled, m.BetsPlaced, m.BetsPersisted, m.PersistErrors, m.Rejections, m.DegradedMode, m.StatusUpdates)
	return m
}

// OnSettled é o callback do settlement engine
func (m *Betting) OnSettled(bets, persisted int) {
	m.SlipsSettled.Inc()
	m.BetsPlaced.Add(float64(bets))
	m.BetsPersisted.Add(float64(persisted))
}

func (m *Betting) OnRejected(reason string) { m.Rejections.WithLabelValues(reason).Inc() }

func (m *Betting) OnPersistFailed() { m.PersistErrors.Inc() }

// Resolver agrupa as métricas do bet-resolver-worker
type Resolver struct {
	Consumed prometheus.Counter
	Resolved *prometheus.CounterVec
	Errors   *prometheus.CounterVec
}

func NewResolver(reg prometheus.Registerer) *Resolver {
	m := &Resolver{
		Consumed: prometheus.NewCounter(prometheus.CounterOpts{Name: "bet_resolver_messages_consumed_total", Help: "mensagens consumidas"}),
		Resolved: prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bet_resolver_resolved_total", Help: "apostas resolvidas"}, []string{"status"}),
		Errors:   prometheus.NewCounterVec(prometheus.CounterOpts{Name: "bet_resolver_errors_total", Help: "erros por estágio"}, []string{"stage"}),
	}
	reg.MustRegister(m.Consumed, m.Resolved, m.Errors)
	return m
}
