package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/and161185/lovepage/internal/store"
)

func Test_openStore_UnreachablePostgresFallsBack(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	cfg := store.Config{Endpoint: "postgres://10.255.255.1/db", Timeout: 50 * time.Millisecond}

	// stalls like a dial to a blackholed address
	stalled := func(ctx context.Context, _, _ string) error {
		<-ctx.Done()
		return ctx.Err()
	}

	start := time.Now()
	opened := openStore(context.Background(), cfg, zap.New(core), stalled)
	if took := time.Since(start); took > 2*time.Second {
		t.Fatalf("migration not bounded by store timeout: %v", took)
	}
	if opened == nil || opened.Adapter.Available() || opened.PgPool != nil || opened.Backend != store.BackendNone {
		t.Fatalf("want unavailable store, got %+v", opened)
	}
	if logs.FilterMessageSnippet("migrate up").Len() != 1 {
		t.Fatalf("want one migrate warning, got %v", logs.All())
	}
}

func Test_openStore_MigrationErrorFallsBack(t *testing.T) {
	t.Parallel()

	failing := func(context.Context, string, string) error { return errors.New("connection refused") }
	opened := openStore(context.Background(), store.Config{Endpoint: "postgres://db/love"}, zap.NewNop(), failing)
	if opened.Adapter.Available() {
		t.Fatalf("store must be unavailable after failed migration")
	}
}

func Test_openStore_BadSchemeFallsBack(t *testing.T) {
	t.Parallel()

	called := false
	up := func(context.Context, string, string) error { called = true; return nil }
	opened := openStore(context.Background(), store.Config{Endpoint: "redis://cache"}, zap.NewNop(), up)
	if opened.Adapter.Available() || called {
		t.Fatalf("unsupported scheme: available=%v migrated=%v", opened.Adapter.Available(), called)
	}
}

func Test_openStore_UnconfiguredSkipsMigration(t *testing.T) {
	t.Parallel()

	called := false
	up := func(context.Context, string, string) error { called = true; return nil }
	opened := openStore(context.Background(), store.Config{Endpoint: "https://placeholder.example"}, zap.NewNop(), up)
	if opened.Adapter.Available() || called {
		t.Fatalf("unconfigured: available=%v migrated=%v", opened.Adapter.Available(), called)
	}
}

func Test_openStore_PostgresOpensLazily(t *testing.T) {
	t.Parallel()

	var gotDSN, gotPw string
	up := func(_ context.Context, dsn, pw string) error { gotDSN, gotPw = dsn, pw; return nil }
	cfg := store.Config{Endpoint: "postgres://lp@127.0.0.1:5432/love", Credential: "s3cret"}
	opened := openStore(context.Background(), cfg, zap.NewNop(), up)
	defer opened.Adapter.Close()

	if gotDSN != cfg.Endpoint || gotPw != "s3cret" {
		t.Fatalf("migrate args: %q %q", gotDSN, gotPw)
	}
	if !opened.Adapter.Available() || opened.PgPool == nil || opened.Backend != store.BackendPostgres {
		t.Fatalf("want postgres store, got %+v", opened)
	}
}
