//go:build integration
// +build integration

package test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/voutila/sealbox"
	"github.com/voutila/sealbox/session"
)

func integrationSecret() []byte {
	secret := make([]byte, 64)
	for i := range secret {
		secret[i] = byte(i*11 + 5)
	}
	return secret
}

func newIntegrationCodec(t *testing.T, mutate func(*sealbox.Config)) *sealbox.Codec {
	t.Helper()

	cfg := sealbox.DefaultConfig()
	cfg.Secret = integrationSecret()
	cfg.Metrics.Enabled = true
	if mutate != nil {
		mutate(&cfg)
	}

	codec, err := sealbox.New(cfg)
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	return codec
}

func newIntegrationManager(t *testing.T, mutate func(*sealbox.Config)) (*session.Manager, *miniredis.Miniredis, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	codec := newIntegrationCodec(t, mutate)

	manager, err := session.NewManager().
		WithCodec(codec).
		WithRedis(rdb).
		WithPrefix("it").
		WithTTL(time.Hour).
		WithSlidingExpiration(true).
		Build()
	if err != nil {
		t.Fatalf("build manager: %v", err)
	}

	return manager, mr, func() {
		manager.Close()
		_ = rdb.Close()
		mr.Close()
	}
}
