package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestHealthHandler(t *testing.T) {
	ok := HealthHandler(func(context.Context) error { return nil })
	rec := httptest.NewRecorder()
	ok(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("code=%d body=%q", rec.Code, rec.Body.String())
	}

	bad := HealthHandler(func(context.Context) error { return errors.New("pg down") })
	rec = httptest.NewRecorder()
	bad(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable || !strings.Contains(rec.Body.String(), "pg down") {
		t.Fatalf("code=%d body=%q", rec.Code, rec.Body.String())
	}
}

func TestBettingCallbacks(t *testing.T) {
	m := NewBetting(prometheus.NewRegistry())
	m.OnSettled(3, 2)
	m.OnRejected("empty_stake")
	m.OnRejected("empty_stake")
	m.OnPersistFailed()

	if got := testutil.ToFloat64(m.BetsPlaced); got != 3 {
		t.Fatalf("bets placed=%v want=3", got)
	}
	if got := testutil.ToFloat64(m.BetsPersisted); got != 2 {
		t.Fatalf("bets persisted=%v want=2", got)
	}
	if got := testutil.ToFloat64(m.Rejections.WithLabelValues("empty_stake")); got != 2 {
		t.Fatalf("rejections=%v want=2", got)
	}
	if got := testutil.ToFloat64(m.PersistErrors); got != 1 {
		t.Fatalf("persist errors=%v want=1", got)
	}
}
