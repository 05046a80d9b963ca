package repo

import (
	"errors"
	"testing"

	"github.com/lib/pq"

	"github.com/radieske/solbet-poc/internal/betting/store"
)

func TestClassify(t *testing.T) {
	if classify("x", nil) != nil {
		t.Fatal("nil must stay nil")
	}

	missing := &pq.Error{Code: "42P01", Message: `relation "users" does not exist`}
	if err := classify("get user", missing); !errors.Is(err, store.ErrNotSetUp) {
		t.Fatalf("err=%v want ErrNotSetUp", err)
	}

	other := &pq.Error{Code: "57P01", Message: "terminating connection"}
	err := classify("get user", other)
	if errors.Is(err, store.ErrNotSetUp) {
		t.Fatalf("err=%v must not be ErrNotSetUp", err)
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		t.Fatalf("err=%v should wrap the driver error", err)
	}
}
