package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDemoOwner(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id, err := DemoOwner()
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(id, "Demo") || len(id) != 4+13 {
			t.Fatalf("id=%q", id)
		}
		for _, r := range id[4:] {
			if !strings.ContainsRune(base36, r) {
				t.Fatalf("id=%q has non base36 char %q", id, r)
			}
		}
		seen[id] = true
	}
	if len(seen) < 50 {
		t.Fatalf("duplicated demo ids: %d unique", len(seen))
	}
}

func TestConnectWithoutKeyIsDemo(t *testing.T) {
	c := NewConnector("", nil)
	id, err := c.Connect(context.Background(), "  ")
	if err != nil {
		t.Fatal(err)
	}
	if !id.Demo || !strings.HasPrefix(id.Owner, "Demo") || !id.SOLBalance.Equal(FallbackSOL) {
		t.Fatalf("identity=%+v", id)
	}
}

func TestConnectReadsBalance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Method != "getBalance" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if len(req.Params) != 1 || req.Params[0] != "Pk111" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":{"context":{"slot":1},"value":2500000000}}`))
	}))
	defer srv.Close()

	id, err := NewConnector(srv.URL, nil).Connect(context.Background(), "Pk111")
	if err != nil {
		t.Fatal(err)
	}
	if id.Demo || id.Owner != "Pk111" || !id.SOLBalance.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("identity=%+v", id)
	}
}

func TestConnectFallsBackOnRPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"error":{"code":-32602,"message":"Invalid param"}}`))
	}))
	defer srv.Close()

	id, err := NewConnector(srv.URL, nil).Connect(context.Background(), "bad")
	if err != nil {
		t.Fatal(err)
	}
	if id.Owner != "bad" || !id.SOLBalance.Equal(FallbackSOL) {
		t.Fatalf("identity=%+v", id)
	}
}
