package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
)

func TestOptionsTranslation(t *testing.T) {
	cfg := ClientConfig{
		Host:         "ch.local",
		Port:         9000,
		Database:     "market",
		User:         "default",
		Password:     "secret",
		DialTimeout:  5 * time.Second,
		MaxExecTime:  30 * time.Second,
		AsyncInsert:  true,
		WaitForAsync: true,
	}
	opts := cfg.options()

	if opts.Protocol != clickhouse.Native {
		t.Fatalf("expected native protocol")
	}
	if len(opts.Addr) != 1 || opts.Addr[0] != "ch.local:9000" {
		t.Fatalf("unexpected addr %v", opts.Addr)
	}
	if opts.Auth.Database != "market" || opts.Auth.Password != "secret" {
		t.Fatalf("unexpected auth %+v", opts.Auth)
	}
	for key, want := range map[string]int{"max_execution_time": 30, "async_insert": 1, "wait_for_async_insert": 1} {
		if got := opts.Settings[key]; got != want {
			t.Fatalf("setting %s = %v, want %d", key, got, want)
		}
	}

	cfg.UseHTTP = true
	cfg.AsyncInsert = false
	opts = cfg.options()
	if opts.Protocol != clickhouse.HTTP {
		t.Fatalf("expected http protocol")
	}
	if _, ok := opts.Settings["async_insert"]; ok {
		t.Fatalf("async_insert should be unset")
	}
}

func TestNewClientRequiresHost(t *testing.T) {
	if _, err := NewClient(context.Background()); err == nil {
		t.Fatalf("expected error without host")
	}
}
