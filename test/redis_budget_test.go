//go:build integration
// +build integration

package test

import (
	"context"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/voutila/sealbox/session"
)

// cmdCounter is a go-redis Hook that counts the number of Redis round-trips
// (individual commands and pipeline calls).
type cmdCounter struct {
	commands  atomic.Int64
	pipelines atomic.Int64
}

func (h *cmdCounter) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *cmdCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		h.commands.Add(1)
		return next(ctx, cmd)
	}
}

func (h *cmdCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		// Each pipeline call is one network round-trip regardless of command count.
		h.pipelines.Add(1)
		h.commands.Add(int64(len(cmds)))
		return next(ctx, cmds)
	}
}

func (h *cmdCounter) Reset() {
	h.commands.Store(0)
	h.pipelines.Store(0)
}

func (h *cmdCounter) Commands() int64  { return h.commands.Load() }
func (h *cmdCounter) Pipelines() int64 { return h.pipelines.Load() }

// newCountedStore creates a session.Store backed by miniredis with a
// cmdCounter hook installed. Reset the counter before each measured operation.
func newCountedStore(t *testing.T, sliding bool) (*session.Store, *redis.Client, *cmdCounter, func()) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	counter := &cmdCounter{}
	rdb.AddHook(counter)

	// Warm the connection: go-redis may emit extra commands on first use
	// (handshake, AUTH, SELECT, CLIENT SETNAME, etc.). Issuing a PING
	// before measuring avoids counting that noise.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Fatalf("warmup ping: %v", err)
	}

	// Reset after warmup so budget counts start clean.
	counter.Reset()

	store := session.NewStore(rdb, "sbx", sliding, false, 0)
	return store, rdb, counter, func() {
		_ = rdb.Close()
		mr.Close()
	}
}

// TestSessionSaveRedisBudget verifies that a save is a single Lua script call.
// go-redis issues EVALSHA first and falls back to EVAL on a script-cache miss,
// so the first call of a script counts as ≤ 2 commands; warm calls are 1.
func TestSessionSaveRedisBudget(t *testing.T) {
	store, _, counter, cleanup := newCountedStore(t, false)
	defer cleanup()

	ctx := context.Background()
	id := newID(t)

	counter.Reset()

	if err := store.Save(ctx, id, "sealed-blob", time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}

	cmds := counter.Commands()
	if cmds > 2 {
		t.Errorf("Store.Save used %d Redis commands; budget is ≤ 2 (EVALSHA + EVAL fallback)", cmds)
	}
	t.Logf("Store.Save (cold): %d commands, %d pipelines", cmds, counter.Pipelines())

	// Warm path: the script is cached, so exactly one EVALSHA.
	counter.Reset()

	if err := store.Save(ctx, id, "sealed-blob-2", time.Hour); err != nil {
		t.Fatalf("warm save: %v", err)
	}

	cmds = counter.Commands()
	if cmds > 1 {
		t.Errorf("warm Store.Save used %d Redis commands; budget is 1 (EVALSHA)", cmds)
	}
	t.Logf("Store.Save (warm): %d commands, %d pipelines", cmds, counter.Pipelines())
}

// TestSessionGetSlidingRedisBudget verifies that a sliding-expiration read
// uses at most 2 Redis commands (GET + EXPIRE renewal).
func TestSessionGetSlidingRedisBudget(t *testing.T) {
	store, _, counter, cleanup := newCountedStore(t, true)
	defer cleanup()

	ctx := context.Background()
	id := newID(t)

	// Save the session first (not counted).
	if err := store.Save(ctx, id, "sealed-blob", time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}

	counter.Reset()

	if _, err := store.Get(ctx, id, time.Hour); err != nil {
		t.Fatalf("get: %v", err)
	}

	cmds := counter.Commands()
	if cmds > 2 {
		t.Errorf("sliding Store.Get used %d Redis commands; budget is ≤ 2 (GET+EXPIRE)", cmds)
	}
	t.Logf("Store.Get (sliding): %d commands, %d pipelines", cmds, counter.Pipelines())
}

// TestSessionGetFixedRedisBudget verifies that a fixed-window read is a single GET.
func TestSessionGetFixedRedisBudget(t *testing.T) {
	store, _, counter, cleanup := newCountedStore(t, false)
	defer cleanup()

	ctx := context.Background()
	id := newID(t)

	if err := store.Save(ctx, id, "sealed-blob", time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}

	counter.Reset()

	if _, err := store.Get(ctx, id, time.Hour); err != nil {
		t.Fatalf("get: %v", err)
	}

	cmds := counter.Commands()
	if cmds > 1 {
		t.Errorf("fixed Store.Get used %d Redis commands; budget is 1 (GET)", cmds)
	}
	t.Logf("Store.Get (fixed): %d commands, %d pipelines", cmds, counter.Pipelines())
}

// TestSessionDeleteRedisBudget verifies that deletion is a single Lua script
// call (≤ 2 commands cold, for the EVALSHA fallback).
func TestSessionDeleteRedisBudget(t *testing.T) {
	store, _, counter, cleanup := newCountedStore(t, false)
	defer cleanup()

	ctx := context.Background()
	id := newID(t)

	if err := store.Save(ctx, id, "sealed-blob", time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}

	counter.Reset()

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	cmds := counter.Commands()
	if cmds > 2 {
		t.Errorf("Store.Delete used %d Redis commands; budget is ≤ 2 (EVALSHA + EVAL fallback)", cmds)
	}
	t.Logf("Store.Delete: %d commands, %d pipelines", cmds, counter.Pipelines())
}

// TestSessionTouchRedisBudget verifies that a TTL refresh is a single EXPIRE.
func TestSessionTouchRedisBudget(t *testing.T) {
	store, _, counter, cleanup := newCountedStore(t, false)
	defer cleanup()

	ctx := context.Background()
	id := newID(t)

	if err := store.Save(ctx, id, "sealed-blob", time.Hour); err != nil {
		t.Fatalf("save: %v", err)
	}

	counter.Reset()

	if err := store.Touch(ctx, id, time.Hour); err != nil {
		t.Fatalf("touch: %v", err)
	}

	cmds := counter.Commands()
	if cmds > 1 {
		t.Errorf("Store.Touch used %d Redis commands; budget is 1 (EXPIRE)", cmds)
	}
	t.Logf("Store.Touch: %d commands, %d pipelines", cmds, counter.Pipelines())
}

// TestActiveSessionsRedisBudget verifies that the counter read is a single GET.
func TestActiveSessionsRedisBudget(t *testing.T) {
	store, _, counter, cleanup := newCountedStore(t, false)
	defer cleanup()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := store.Save(ctx, newID(t), "sealed-blob", time.Hour); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}

	counter.Reset()

	count, err := store.ActiveSessions(ctx)
	if err != nil {
		t.Fatalf("active sessions: %v", err)
	}
	if count != 2 {
		t.Errorf("expected count=2, got %d", count)
	}

	cmds := counter.Commands()
	if cmds > 1 {
		t.Errorf("Store.ActiveSessions used %d Redis commands; budget is 1 (GET)", cmds)
	}
	t.Logf("Store.ActiveSessions: %d commands, %d pipelines", cmds, counter.Pipelines())
}
