package db

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

// nilTx satisfies pgx.Tx without a live connection.
type nilTx struct{ pgx.Tx }

func TestTxFromContext_Empty(t *testing.T) {
	if TxFromContext(context.Background()) != nil {
		t.Error("expected no transaction on a bare context")
	}
}

func TestWithTx_NestedReusesOuter(t *testing.T) {
	// A context already carrying a transaction never touches the pool.
	ctx := context.WithValue(context.Background(), txKey, nilTx{})
	called := false
	err := WithTx(ctx, nil, func(inner context.Context) error {
		called = true
		if _, ok := TxFromContext(inner).(nilTx); !ok {
			t.Error("expected the outer transaction to be visible")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected fn to be called")
	}
}

func TestWithTx_NestedPropagatesError(t *testing.T) {
	ctx := context.WithValue(context.Background(), txKey, nilTx{})
	boom := errors.New("boom")
	if err := WithTx(ctx, nil, func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestPoolTransactor_JoinsOuterTx(t *testing.T) {
	ctx := context.WithValue(context.Background(), txKey, nilTx{})
	var seen pgx.Tx
	err := PoolTransactor{}.InTx(ctx, func(inner context.Context) error {
		seen = TxFromContext(inner)
		return nil
	})
	if err != nil || seen == nil {
		t.Errorf("expected outer transaction to be reused, got %v, %v", seen, err)
	}
}

func TestNoTx(t *testing.T) {
	boom := errors.New("boom")
	if err := (NoTx{}).InTx(context.Background(), func(context.Context) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}
