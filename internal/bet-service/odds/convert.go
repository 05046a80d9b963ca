package odds

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// preço usado quando o bookmaker não traz home/away
var fallbackPrice = decimal.NewFromInt(2)

// Match é a partida no formato da tela de mercados
type Match struct {
	ID        string           `json:"id"`
	Sport     string           `json:"sport"`
	League    string           `json:"league"`
	HomeTeam  string           `json:"homeTeam"`
	AwayTeam  string           `json:"awayTeam"`
	HomeOdds  decimal.Decimal  `json:"homeOdds"`
	DrawOdds  *decimal.Decimal `json:"drawOdds"` // nil quando o esporte não tem empate
	AwayOdds  decimal.Decimal  `json:"awayOdds"`
	StartTime string           `json:"startTime"`
	IsLive    bool             `json:"isLive"`
}

// Label retorna "Home vs Away"
func (m Match) Label() string { return fmt.Sprintf("%s vs %s", m.HomeTeam, m.AwayTeam) }

// Convert usa o primeiro bookmaker e o primeiro mercado de cada partida
func Convert(in []OddsMatch, now time.Time) []Match {
	out := make([]Match, 0, len(in))
	for _, om := range in {
		var outcomes []PriceOutcome
		if len(om.Bookmakers) > 0 && len(om.Bookmakers[0].Markets) > 0 {
			outcomes = om.Bookmakers[0].Markets[0].Outcomes
		}

		m := Match{
			ID:       om.ID,
			Sport:    om.SportTitle,
			League:   om.SportTitle,
			HomeTeam: om.HomeTeam,
			AwayTeam: om.AwayTeam,
			HomeOdds: fallbackPrice,
			AwayOdds: fallbackPrice,
		}
		for _, o := range outcomes {
			if !o.Price.IsPositive() {
				continue
			}
			switch o.Name {
			case om.HomeTeam:
				m.HomeOdds = o.Price
			case om.AwayTeam:
				m.AwayOdds = o.Price
			case "Draw":
				p := o.Price
				m.DrawOdds = &p
			}
		}

		hours := int(math.Floor(om.CommenceTime.Sub(now).Hours()))
		switch {
		case hours < 0:
			m.StartTime = "Live"
			m.IsLive = true
		case hours < 24:
			m.StartTime = fmt.Sprintf("%d hours", hours)
		default:
			m.StartTime = fmt.Sprintf("%d days", hours/24)
		}
		out = append(out, m)
	}
	return out
}
