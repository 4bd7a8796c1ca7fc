package test

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/voutila/sealbox"
	"github.com/voutila/sealbox/session"
)

// ExampleNew demonstrates codec construction with production-style settings.
func ExampleNew() {
	cfg := sealbox.DefaultConfig()
	cfg.Secret = loadSecret()
	cfg.Purpose = "api-session"
	cfg.Metrics.Enabled = true

	codec, _ := sealbox.New(cfg)
	_ = codec
}

// ExampleCodec_Seal shows sealing a payload into a cookie-safe token.
func ExampleCodec_Seal() {
	var codec *sealbox.Codec
	token, err := codec.Seal(map[string]any{"user": "alice", "visits": 3})
	if err != nil {
		_ = err
	}
	_ = token
}

// ExampleCodec_Open shows opening a token back into a payload and structured error handling.
func ExampleCodec_Open() {
	var codec *sealbox.Codec

	var payload map[string]any
	if err := codec.Open("token-from-cookie", &payload); err != nil {
		_ = err
	}
}

// ExampleNewManager demonstrates server-side session construction with
// production-style dependencies.
func ExampleNewManager() {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:6379"})

	var codec *sealbox.Codec
	manager, _ := session.NewManager().
		WithCodec(codec).
		WithRedis(rdb).
		WithPrefix("app").
		WithTTL(24 * time.Hour).
		WithSlidingExpiration(true).
		Build()
	_ = manager
}

// ExampleManager_Create shows minting a server-side session for a payload.
func ExampleManager_Create() {
	var manager *session.Manager
	id, err := manager.Create(context.Background(), map[string]any{"user": "alice"})
	if err != nil {
		_ = err
	}
	_ = id
}

func loadSecret() []byte {
	// Real deployments load at least 64 random bytes from configuration.
	return make([]byte, 64)
}
