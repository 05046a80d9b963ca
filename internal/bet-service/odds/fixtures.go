package odds

import "github.com/shopspring/decimal"

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func draw(s string) *decimal.Decimal {
	d := price(s)
	return &d
}

// Fixtures são as partidas servidas quando a API não está configurada ou falha
func Fixtures() []Match {
	return []Match{
		{ID: "1", Sport: "Soccer", League: "Premier League", HomeTeam: "Manchester United", AwayTeam: "Liverpool",
			HomeOdds: price("2.45"), DrawOdds: draw("3.20"), AwayOdds: price("2.80"), StartTime: "2 hours"},
		{ID: "2", Sport: "Basketball", League: "NBA", HomeTeam: "Lakers", AwayTeam: "Warriors",
			HomeOdds: price("1.85"), AwayOdds: price("2.10"), StartTime: "4 hours"},
		{ID: "3", Sport: "Soccer", League: "La Liga", HomeTeam: "Real Madrid", AwayTeam: "Barcelona",
			HomeOdds: price("2.15"), DrawOdds: draw("3.40"), AwayOdds: price("3.25"), StartTime: "Live", IsLive: true},
		{ID: "4", Sport: "American Football", League: "NFL", HomeTeam: "Patriots", AwayTeam: "Chiefs",
			HomeOdds: price("2.60"), AwayOdds: price("1.65"), StartTime: "1 day"},
		{ID: "5", Sport: "Soccer", League: "Bundesliga", HomeTeam: "Bayern Munich", AwayTeam: "Borussia Dortmund",
			HomeOdds: price("1.75"), DrawOdds: draw("3.80"), AwayOdds: price("4.20"), StartTime: "6 hours"},
	}
}

// SportEntry é um item do menu lateral de esportes
type SportEntry struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Logo    string   `json:"logo"`
	Leagues []string `json:"leagues"`
}

// Sports é o catálogo fixo do menu
var Sports = []SportEntry{
	{ID: "soccer", Name: "Soccer", Logo: "/logos/soccer.svg", Leagues: []string{"Premier League", "La Liga", "Serie A", "Bundesliga"}},
	{ID: "basketball", Name: "Basketball", Logo: "/logos/basketball.svg", Leagues: []string{"NBA", "EuroLeague"}},
	{ID: "hockey", Name: "Hockey", Logo: "/logos/hockey.svg", Leagues: []string{"NHL"}},
	{ID: "baseball", Name: "Baseball", Logo: "/logos/baseball.svg", Leagues: []string{"MLB"}},
}
