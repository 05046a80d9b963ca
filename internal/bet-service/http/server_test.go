package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/solbet-poc/internal/bet-service/dto"
	"github.com/radieske/solbet-poc/internal/bet-service/odds"
	"github.com/radieske/solbet-poc/internal/bet-service/session"
	"github.com/radieske/solbet-poc/internal/bet-service/wallet"
	"github.com/radieske/solbet-poc/internal/betting/ledger"
	"github.com/radieske/solbet-poc/internal/betting/settlement"
	"github.com/radieske/solbet-poc/internal/betting/store"
	"github.com/radieske/solbet-poc/internal/betting/tracker"
)

func newTestServer(t *testing.T, st store.Store, delay time.Duration) (*Server, *httptest.Server) {
	t.Helper()
	log := zap.NewNop()
	mode := ledger.Probe(context.Background(), st)
	l := ledger.New(st, mode, log)
	eng := settlement.New(l, st, log)
	eng.Delay = delay

	s := &Server{
		Log:      log,
		Sessions: session.NewRegistry(),
		Ledger:   l,
		Tracker:  &tracker.Tracker{Store: st, Mode: mode, Log: log},
		Engine:   eng,
		Feed:     &odds.Feed{Client: odds.NewClient("", "")},
		Wallet:   wallet.NewConnector("", log),
	}
	srv := httptest.NewServer(s.Router())
	t.Cleanup(srv.Close)
	return s, srv
}

func do(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, rd)
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer res.Body.Close()
	if out != nil && res.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(res.Body).Decode(out); err != nil {
			t.Fatalf("%s %s decode: %v", method, url, err)
		}
	}
	return res.StatusCode
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSlipToSettleFlow(t *testing.T) {
	_, srv := newTestServer(t, store.NewMemory(), 0)
	base := srv.URL + "/v1/sessions"

	var sess dto.SessionResponse
	if code := do(t, http.MethodPost, base, dto.OpenSessionRequest{PublicKey: "w1"}, &sess); code != http.StatusCreated {
		t.Fatalf("open=%d", code)
	}
	if sess.Owner != "w1" || !sess.Balance.Equal(dec("1000")) || sess.Degraded || sess.Notice != "" {
		t.Fatalf("session=%+v", sess)
	}

	var tg dto.ToggleResponse
	do(t, http.MethodPost, base+"/w1/slip/selections", dto.ToggleRequest{MatchID: "1", Type: "home"}, &tg)
	if !tg.Selected || len(tg.Slip.Lines) != 1 || !tg.Slip.Lines[0].Amount.Equal(dec("10")) {
		t.Fatalf("toggle=%+v", tg)
	}
	do(t, http.MethodPost, base+"/w1/slip/selections", dto.ToggleRequest{MatchID: "2", Type: "away"}, &tg)

	var sl dto.SlipResponse
	if code := do(t, http.MethodPut, base+"/w1/slip/selections/2-away", dto.AmountRequest{Amount: "20"}, &sl); code != http.StatusOK {
		t.Fatalf("amount=%d", code)
	}
	if !sl.TotalStake.Equal(dec("30")) || !sl.TotalPotentialWin.Equal(dec("66.5")) || sl.InsufficientBalance {
		t.Fatalf("slip=%+v", sl)
	}

	var res dto.SettleResponse
	if code := do(t, http.MethodPost, base+"/w1/slip/settle", nil, &res); code != http.StatusOK {
		t.Fatalf("settle=%d", code)
	}
	if !res.Balance.Equal(dec("970")) || len(res.Bets) != 2 || res.Persisted != 2 {
		t.Fatalf("settle=%+v", res)
	}

	do(t, http.MethodGet, base+"/w1/slip", nil, &sl)
	if len(sl.Lines) != 0 || !sl.Balance.Equal(dec("970")) {
		t.Fatalf("slip after settle=%+v", sl)
	}

	var bets dto.BetsResponse
	do(t, http.MethodGet, base+"/w1/bets", nil, &bets)
	if len(bets.Pending) != 2 || len(bets.Settled) != 0 || bets.Pending[0].ID != "1-home" {
		t.Fatalf("bets=%+v", bets)
	}
	if !bets.Pending[1].PotentialWin.Equal(dec("42")) || bets.Pending[1].StoreID == "" {
		t.Fatalf("second bet=%+v", bets.Pending[1])
	}
}

func TestSettleValidation(t *testing.T) {
	_, srv := newTestServer(t, store.NewMemory(), 0)
	base := srv.URL + "/v1/sessions"
	do(t, http.MethodPost, base, dto.OpenSessionRequest{PublicKey: "w1"}, nil)

	var e dto.ErrorResponse
	if code := do(t, http.MethodPost, base+"/w1/slip/settle", nil, &e); code != http.StatusUnprocessableEntity || e.Reason != "empty_stake" {
		t.Fatalf("code=%d err=%+v", code, e)
	}

	do(t, http.MethodPost, base+"/w1/slip/selections", dto.ToggleRequest{MatchID: "1", Type: "home"}, nil)
	do(t, http.MethodPut, base+"/w1/slip/selections/1-home", dto.AmountRequest{Amount: "1000.01"}, nil)

	var sl dto.SlipResponse
	do(t, http.MethodGet, base+"/w1/slip", nil, &sl)
	if !sl.InsufficientBalance {
		t.Fatalf("slip=%+v want insufficient flag", sl)
	}
	if code := do(t, http.MethodPost, base+"/w1/slip/settle", nil, &e); code != http.StatusUnprocessableEntity || e.Reason != "insufficient_balance" {
		t.Fatalf("code=%d err=%+v", code, e)
	}
	do(t, http.MethodGet, base+"/w1/slip", nil, &sl)
	if len(sl.Lines) != 1 || !sl.Balance.Equal(dec("1000")) {
		t.Fatalf("rejected settle mutated state: %+v", sl)
	}
}

func TestConcurrentSettleConflict(t *testing.T) {
	s, srv := newTestServer(t, store.NewMemory(), 300*time.Millisecond)
	base := srv.URL + "/v1/sessions"
	do(t, http.MethodPost, base, dto.OpenSessionRequest{PublicKey: "w1"}, nil)
	do(t, http.MethodPost, base+"/w1/slip/selections", dto.ToggleRequest{MatchID: "3", Type: "draw"}, nil)

	var wg sync.WaitGroup
	var first int
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = do(t, http.MethodPost, base+"/w1/slip/settle", nil, nil)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !s.Engine.InFlight("w1") {
		if time.Now().After(deadline) {
			t.Fatal("first settle never started")
		}
		time.Sleep(5 * time.Millisecond)
	}

	var e dto.ErrorResponse
	if code := do(t, http.MethodPost, base+"/w1/slip/settle", nil, &e); code != http.StatusConflict || e.Reason != "in_progress" {
		t.Fatalf("code=%d err=%+v", code, e)
	}
	wg.Wait()
	if first != http.StatusOK {
		t.Fatalf("first=%d", first)
	}

	var sess dto.SessionResponse
	do(t, http.MethodGet, base+"/w1", nil, &sess)
	if !sess.Balance.Equal(dec("990")) {
		t.Fatalf("balance=%s want single debit", sess.Balance)
	}
}

func TestDegradedSessionNotice(t *testing.T) {
	_, srv := newTestServer(t, store.Unavailable{}, 0)

	var sess dto.SessionResponse
	do(t, http.MethodPost, srv.URL+"/v1/sessions", nil, &sess)
	if !sess.Demo || !sess.Degraded || sess.Notice == "" || !sess.Balance.Equal(dec("1000")) {
		t.Fatalf("session=%+v", sess)
	}
}

func TestSessionLifecycleAndErrors(t *testing.T) {
	_, srv := newTestServer(t, store.NewMemory(), 0)
	base := srv.URL + "/v1/sessions"

	if code := do(t, http.MethodGet, base+"/nobody/slip", nil, nil); code != http.StatusNotFound {
		t.Fatalf("unknown session=%d", code)
	}
	do(t, http.MethodPost, base, dto.OpenSessionRequest{PublicKey: "w1"}, nil)

	cases := []struct {
		name string
		req  dto.ToggleRequest
		want int
	}{
		{"bad outcome", dto.ToggleRequest{MatchID: "1", Type: "over"}, http.StatusBadRequest},
		{"unknown match", dto.ToggleRequest{MatchID: "99", Type: "home"}, http.StatusNotFound},
		{"no draw market", dto.ToggleRequest{MatchID: "2", Type: "draw"}, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if code := do(t, http.MethodPost, base+"/w1/slip/selections", tc.req, nil); code != tc.want {
				t.Fatalf("code=%d want %d", code, tc.want)
			}
		})
	}

	if code := do(t, http.MethodDelete, base+"/w1/slip/selections/1-home", nil, nil); code != http.StatusNotFound {
		t.Fatalf("remove missing=%d", code)
	}
	if code := do(t, http.MethodDelete, base+"/w1", nil, nil); code != http.StatusNoContent {
		t.Fatalf("close=%d", code)
	}
	if code := do(t, http.MethodGet, base+"/w1", nil, nil); code != http.StatusNotFound {
		t.Fatalf("after close=%d", code)
	}
}

func TestMarketsAndSports(t *testing.T) {
	_, srv := newTestServer(t, store.NewMemory(), 0)

	var m odds.Markets
	do(t, http.MethodGet, srv.URL+"/v1/markets?filter=live", nil, &m)
	if m.RealData || len(m.Matches) != 1 || !m.Matches[0].IsLive {
		t.Fatalf("markets=%+v", m)
	}
	var sports []odds.SportEntry
	do(t, http.MethodGet, srv.URL+"/v1/sports", nil, &sports)
	if len(sports) != len(odds.Sports) {
		t.Fatalf("sports=%d", len(sports))
	}
}

func TestReconnectAfterSettleKeepsLocalBets(t *testing.T) {
	_, srv := newTestServer(t, store.Unavailable{}, 0)
	base := srv.URL + "/v1/sessions"

	do(t, http.MethodPost, base, dto.OpenSessionRequest{PublicKey: "w1"}, nil)
	do(t, http.MethodPost, base+"/w1/slip/selections", dto.ToggleRequest{MatchID: "1", Type: "home"}, nil)
	if code := do(t, http.MethodPost, base+"/w1/slip/settle", nil, nil); code != http.StatusOK {
		t.Fatalf("settle=%d", code)
	}

	var sess dto.SessionResponse
	if code := do(t, http.MethodPost, base, dto.OpenSessionRequest{PublicKey: "w1"}, &sess); code != http.StatusCreated {
		t.Fatalf("reopen=%d", code)
	}
	var bets dto.BetsResponse
	do(t, http.MethodGet, base+"/w1/bets", nil, &bets)
	if !sess.Balance.Equal(dec("990")) || len(bets.Pending) != 1 {
		t.Fatalf("balance=%s pending=%d want 990/1", sess.Balance, len(bets.Pending))
	}
}
