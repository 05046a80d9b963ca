package odds

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/solbet-poc/internal/betting/model"
)

// TTL do cache de mercados
const CacheTTL = 30 * time.Second

var (
	ErrUnknownMatch   = errors.New("unknown match")
	ErrOutcomeMissing = errors.New("outcome not offered for match")
)

// Markets é a resposta da tela de mercados
type Markets struct {
	Matches  []Match `json:"matches"`
	RealData bool    `json:"usingRealData"`
}

// Feed monta a lista de mercados: cache -> API -> fixtures.
// Nunca retorna erro: qualquer falha cai nas fixtures.
type Feed struct {
	Client *Client
	Cache  MarketCache // opcional
	Sport  string
	Log    *zap.Logger
	Now    func() time.Time

	mu   sync.RWMutex
	last map[string]Match
}

// Markets retorna as partidas; liveOnly filtra só as ao vivo
func (f *Feed) Markets(ctx context.Context, liveOnly bool) Markets {
	out := f.load(ctx)
	f.remember(out.Matches)

	if liveOnly {
		live := make([]Match, 0, len(out.Matches))
		for _, m := range out.Matches {
			if m.IsLive {
				live = append(live, m)
			}
		}
		out.Matches = live
	}
	return out
}

// Selection resolve a seleção a partir da última lista servida; odds ficam fixas aqui
func (f *Feed) Selection(ctx context.Context, matchID string, o model.Outcome) (model.Selection, error) {
	f.mu.RLock()
	m, ok := f.last[matchID]
	f.mu.RUnlock()
	if !ok {
		// lista ainda não carregada nesta instância
		f.Markets(ctx, false)
		f.mu.RLock()
		m, ok = f.last[matchID]
		f.mu.RUnlock()
		if !ok {
			return model.Selection{}, ErrUnknownMatch
		}
	}

	switch o {
	case model.OutcomeHome:
		return model.NewSelection(m.ID, o, m.HomeOdds, m.Sport, m.Label(), m.HomeTeam), nil
	case model.OutcomeAway:
		return model.NewSelection(m.ID, o, m.AwayOdds, m.Sport, m.Label(), m.AwayTeam), nil
	case model.OutcomeDraw:
		if m.DrawOdds == nil {
			return model.Selection{}, ErrOutcomeMissing
		}
		return model.NewSelection(m.ID, o, *m.DrawOdds, m.Sport, m.Label(), "Draw"), nil
	}
	return model.Selection{}, ErrOutcomeMissing
}

func (f *Feed) load(ctx context.Context) Markets {
	if !f.Client.Configured() {
		return Markets{Matches: Fixtures()}
	}

	var cached []Match
	if f.Cache != nil {
		if ok, err := f.Cache.Get(ctx, f.sport(), &cached); err == nil && ok && len(cached) > 0 {
			return Markets{Matches: cached, RealData: true}
		} else if err != nil {
			f.logger().Warn("odds cache get failed", zap.Error(err))
		}
	}

	raw, err := f.Client.FetchLiveOdds(ctx, f.sport())
	if err != nil || len(raw) == 0 {
		if err != nil {
			f.logger().Warn("odds api request failed, using fixtures", zap.Error(err))
		}
		return Markets{Matches: Fixtures()}
	}

	matches := Convert(raw, f.now())
	if f.Cache != nil {
		if err := f.Cache.Set(ctx, f.sport(), matches, CacheTTL); err != nil {
			f.logger().Warn("odds cache set failed", zap.Error(err))
		}
	}
	return Markets{Matches: matches, RealData: true}
}

func (f *Feed) remember(matches []Match) {
	idx := make(map[string]Match, len(matches))
	for _, m := range matches {
		idx[m.ID] = m
	}
	f.mu.Lock()
	f.last = idx
	f.mu.Unlock()
}

func (f *Feed) sport() string {
	if f.Sport == "" {
		return "upcoming"
	}
	return f.Sport
}

func (f *Feed) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

func (f *Feed) logger() *zap.Logger {
	if f.Log == nil {
		return zap.NewNop()
	}
	return f.Log
}

// Sports monta o menu a partir da API (agrupado por group); sem chave ou em falha usa o catálogo fixo
func (f *Feed) Sports(ctx context.Context) []SportEntry {
	if !f.Client.Configured() {
		return Sports
	}
	raw, err := f.Client.FetchSports(ctx)
	if err != nil || len(raw) == 0 {
		if err != nil {
			f.logger().Warn("odds api sports request failed, using catalog", zap.Error(err))
		}
		return Sports
	}

	var out []SportEntry
	idx := map[string]int{}
	for _, s := range raw {
		if !s.Active {
			continue
		}
		i, ok := idx[s.Group]
		if !ok {
			i = len(out)
			idx[s.Group] = i
			out = append(out, SportEntry{ID: strings.ToLower(strings.ReplaceAll(s.Group, " ", "_")), Name: s.Group})
		}
		out[i].Leagues = append(out[i].Leagues, s.Title)
	}
	if len(out) == 0 {
		return Sports
	}
	return out
}
