package persistence

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/session-service/internal/config"
)

func TestNewRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	r, err := NewRedis(ctx, config.RedisConfig{Addr: mr.Addr()}, true, zap.NewNop())
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	defer r.Close()

	if err := r.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestNewRedis_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	addr := mr.Addr()
	mr.Close()

	ctx := context.Background()
	if _, err := NewRedis(ctx, config.RedisConfig{Addr: addr}, true, zap.NewNop()); err == nil {
		t.Fatal("expected error when redis is required and unreachable")
	}

	r, err := NewRedis(ctx, config.RedisConfig{Addr: addr}, false, zap.NewNop())
	if err != nil {
		t.Fatalf("optional redis: %v", err)
	}
	defer r.Close()
	if err := r.Ping(ctx); err == nil {
		t.Fatal("expected ping to fail")
	}
}

func TestRedis_NilPing(t *testing.T) {
	var r *Redis
	if err := r.Ping(context.Background()); err == nil {
		t.Fatal("expected error for nil client")
	}
}
