//go:build integration
// +build integration

package test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/voutila/sealbox"
	"github.com/voutila/sealbox/middleware"
	"github.com/voutila/sealbox/session"
)

// TestLegacyBlobMigrationEndToEnd seeds the store with a blob minted by a
// legacy-pinned writer and drives it through the full HTTP stack with a
// guess-mode reader. The first authenticated write re-seals the blob in the
// current generation.
func TestLegacyBlobMigrationEndToEnd(t *testing.T) {
	manager, mr, cleanup := newIntegrationManager(t, nil)
	defer cleanup()

	legacy := newIntegrationCodec(t, func(cfg *sealbox.Config) { cfg.Mode = sealbox.ModeV1 })
	current := newIntegrationCodec(t, func(cfg *sealbox.Config) { cfg.Mode = sealbox.ModeV2 })

	// Parallel store handle sharing the manager's key prefix, used to seed
	// and inspect raw blobs.
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	store := session.NewStore(rdb, "it", true, false, 0)

	ctx := context.Background()

	id, err := (session.RandomSource{}).NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	blob, err := legacy.Seal(map[string]any{"visits": 41})
	if err != nil {
		t.Fatalf("legacy seal: %v", err)
	}
	if err := store.Save(ctx, id, blob, time.Hour); err != nil {
		t.Fatalf("seed blob: %v", err)
	}

	opts := flowCookieOptions()
	srv := httptest.NewServer(middleware.StoreSessions(manager, opts)(flowHandler(t)))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.AddCookie(&http.Cookie{Name: opts.Name, Value: id.String()})

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if got := string(body); got != "42" {
		t.Fatalf("expected legacy payload to carry over, got %q", got)
	}

	// The write-back must have rotated the blob to the current generation.
	stored, err := store.Get(ctx, id, time.Hour)
	if err != nil {
		t.Fatalf("read back blob: %v", err)
	}
	var payload map[string]any
	if err := current.Open(stored, &payload); err != nil {
		t.Fatalf("re-sealed blob should open under the current generation: %v", err)
	}
	if err := legacy.Open(stored, &payload); err == nil {
		t.Fatal("re-sealed blob should no longer parse as legacy")
	} else if !errors.Is(err, sealbox.ErrInvalidMessage) && !errors.Is(err, sealbox.ErrInvalidSignature) {
		t.Fatalf("unexpected legacy rejection: %v", err)
	}

	snap := manager.MetricsSnapshot()
	if snap.Counters[sealbox.MetricLegacyAccepted] == 0 {
		t.Fatal("expected legacy acceptance to be counted")
	}
}

// TestPinnedManagerRejectsLegacyBlob verifies that a deployment pinned to the
// current generation treats leftover legacy blobs as no session and clears
// them from the store.
func TestPinnedManagerRejectsLegacyBlob(t *testing.T) {
	manager, mr, cleanup := newIntegrationManager(t, func(cfg *sealbox.Config) {
		cfg.Mode = sealbox.ModeV2
	})
	defer cleanup()

	legacy := newIntegrationCodec(t, func(cfg *sealbox.Config) { cfg.Mode = sealbox.ModeV1 })

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	store := session.NewStore(rdb, "it", true, false, 0)

	ctx := context.Background()

	id, err := (session.RandomSource{}).NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	blob, err := legacy.Seal(map[string]any{"user": "bob"})
	if err != nil {
		t.Fatalf("legacy seal: %v", err)
	}
	if err := store.Save(ctx, id, blob, time.Hour); err != nil {
		t.Fatalf("seed blob: %v", err)
	}

	var dst map[string]any
	if err := manager.Load(ctx, id, &dst); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("expected ErrNoSession for legacy blob, got %v", err)
	}

	// The rejected blob is deleted so the next request starts clean.
	if _, err := store.Get(ctx, id, time.Hour); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected rejected blob to be deleted, got %v", err)
	}
}
