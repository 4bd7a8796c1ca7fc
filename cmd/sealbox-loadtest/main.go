package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	mathrand "math/rand"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/voutila/sealbox"
	"github.com/voutila/sealbox/session"
)

func main() {
	var (
		ops          = flag.Int("ops", 200000, "operations per phase (seal + open + store load)")
		concurrency  = flag.Int("concurrency", 256, "number of concurrent workers")
		sessions     = flag.Int("sessions", 50000, "number of sessions to seed for the store phase")
		payloadBytes = flag.Int("payload-bytes", 256, "filler bytes added to each payload")
		mode         = flag.String("mode", "guess", "codec mode: guess, v1, or v2")
		compression  = flag.String("compression", "none", "payload compression: none, zlib, snappy, or zstd")
		legacyRatio  = flag.Float64("legacy-ratio", 0.2, "fraction of legacy-generation tokens in the open phase (guess mode only)")
		redisAddr    = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix       = flag.String("prefix", "sealbox", "session key prefix")
	)
	flag.Parse()

	if *ops <= 0 || *concurrency <= 0 || *sessions <= 0 {
		fmt.Fprintln(os.Stderr, "ops, concurrency, and sessions must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	secret := make([]byte, 64)
	if _, err := rand.Read(secret); err != nil {
		fmt.Fprintf(os.Stderr, "secret generation failed: %v\n", err)
		os.Exit(1)
	}

	cfg := sealbox.DefaultConfig()
	cfg.Secret = secret
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true

	switch *mode {
	case "guess":
		cfg.Mode = sealbox.ModeGuess
	case "v1":
		cfg.Mode = sealbox.ModeV1
	case "v2":
		cfg.Mode = sealbox.ModeV2
	default:
		fmt.Fprintf(os.Stderr, "unknown mode %q\n", *mode)
		os.Exit(2)
	}

	switch *compression {
	case "none":
		cfg.Compression = sealbox.CompressionNone
	case "zlib":
		cfg.Compression = sealbox.CompressionZlib
	case "snappy":
		cfg.Compression = sealbox.CompressionSnappy
	case "zstd":
		cfg.Compression = sealbox.CompressionZstd
	default:
		fmt.Fprintf(os.Stderr, "unknown compression %q\n", *compression)
		os.Exit(2)
	}

	codec, err := sealbox.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "codec construction failed: %v\n", err)
		os.Exit(1)
	}

	payload := buildPayload(*payloadBytes)

	sealStats := runSealPhase(codec, payload, *ops, *concurrency)
	openStats := runOpenPhase(codec, secret, cfg, payload, *ops, *concurrency, *legacyRatio)

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	manager, err := session.NewManager().
		WithCodec(codec).
		WithRedis(client).
		WithPrefix(*prefix).
		WithTTL(24 * time.Hour).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "manager construction failed: %v\n", err)
		os.Exit(1)
	}
	defer manager.Close()

	fmt.Printf("seeding %d sessions...\n", *sessions)
	startSeed := time.Now()
	ids := make([]session.ID, *sessions)
	for i := range ids {
		id, err := manager.Create(ctx, payload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "create failed: %v\n", err)
			os.Exit(1)
		}
		ids[i] = id
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	loadStats := runStoreLoadPhase(ctx, manager, ids, *ops, *concurrency)

	fmt.Println("---- results ----")
	printStats("seal", sealStats)
	printStats("open", openStats)
	printStats("store load", loadStats)

	m := codec.Metrics()
	fmt.Printf("codec counters: seal_success=%d open_success=%d legacy_accepted=%d invalid_signature=%d session_created=%d session_loaded=%d\n",
		m.Value(sealbox.MetricSealSuccess),
		m.Value(sealbox.MetricOpenSuccess),
		m.Value(sealbox.MetricLegacyAccepted),
		m.Value(sealbox.MetricOpenInvalidSignature),
		m.Value(sealbox.MetricSessionCreated),
		m.Value(sealbox.MetricSessionLoaded),
	)
}

func buildPayload(filler int) map[string]any {
	return map[string]any{
		"user":   "load-test-user",
		"tenant": "t-0",
		"roles":  []string{"member", "editor"},
		"visits": 1337,
		"filler": strings.Repeat("x", filler),
	}
}

func runSealPhase(codec *sealbox.Codec, payload map[string]any, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				_, err := codec.Seal(payload)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runOpenPhase(codec *sealbox.Codec, secret []byte, cfg sealbox.Config, payload map[string]any, ops, concurrency int, legacyRatio float64) phaseStats {
	// Pre-mint a pool of tokens so the phase measures Open alone. In guess mode
	// a slice of the pool is minted by a legacy-pinned writer so the dispatcher
	// has both generations to route.
	const pool = 4096
	tokens := make([]string, 0, pool)

	var legacyWriter *sealbox.Codec
	if cfg.Mode == sealbox.ModeGuess && legacyRatio > 0 {
		legacyCfg := cfg
		legacyCfg.Secret = secret
		legacyCfg.Mode = sealbox.ModeV1
		var err error
		legacyWriter, err = sealbox.New(legacyCfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "legacy codec construction failed: %v\n", err)
			os.Exit(1)
		}
	}

	for i := 0; i < pool; i++ {
		writer := codec
		if legacyWriter != nil && float64(i)/float64(pool) < legacyRatio {
			writer = legacyWriter
		}
		token, err := writer.Seal(payload)
		if err != nil {
			fmt.Fprintf(os.Stderr, "token minting failed: %v\n", err)
			os.Exit(1)
		}
		tokens = append(tokens, token)
	}

	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := mathrand.New(mathrand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				token := tokens[r.Intn(len(tokens))]
				var dst map[string]any
				t0 := time.Now()
				err := codec.Open(token, &dst)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

func runStoreLoadPhase(ctx context.Context, manager *session.Manager, ids []session.ID, ops, concurrency int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := mathrand.New(mathrand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				id := ids[r.Intn(len(ids))]
				var dst map[string]any
				t0 := time.Now()
				err := manager.Load(ctx, id, &dst)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
