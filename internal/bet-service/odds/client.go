package odds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// OddsMatch é o formato de /v4/sports/{sport}/odds da the-odds-api
type OddsMatch struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

type Bookmaker struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Markets []Market `json:"markets"`
}

type Market struct {
	Key      string         `json:"key"`
	Outcomes []PriceOutcome `json:"outcomes"`
}

type PriceOutcome struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Sport é um item de /v4/sports
type Sport struct {
	Key    string `json:"key"`
	Group  string `json:"group"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

// Client consulta a the-odds-api. Sem APIKey nenhuma chamada é feita.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(base, apiKey string) *Client {
	return &Client{
		BaseURL: base,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Configured informa se há chave para a API
func (c *Client) Configured() bool { return c != nil && c.APIKey != "" }

// FetchLiveOdds busca odds h2h em formato decimal para o sport (ex: "upcoming")
func (c *Client) FetchLiveOdds(ctx context.Context, sport string) ([]OddsMatch, error) {
	if !c.Configured() {
		return nil, nil
	}
	q := url.Values{}
	q.Set("apiKey", c.APIKey)
	q.Set("regions", "us")
	q.Set("markets", "h2h")
	q.Set("oddsFormat", "decimal")

	var out []OddsMatch
	if err := c.get(ctx, fmt.Sprintf("%s/sports/%s/odds/?%s", c.BaseURL, url.PathEscape(sport), q.Encode()), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchSports lista os esportes disponíveis na API
func (c *Client) FetchSports(ctx context.Context) ([]Sport, error) {
	if !c.Configured() {
		return nil, nil
	}
	var out []Sport
	if err := c.get(ctx, fmt.Sprintf("%s/sports/?apiKey=%s", c.BaseURL, url.QueryEscape(c.APIKey)), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, u string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	res, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return fmt.Errorf("odds api http %d", res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(dst)
}
