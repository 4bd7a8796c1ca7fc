package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/voutila/sealbox"
)

// ErrNoSession is an exported constant or variable used by the sealbox codec.
var ErrNoSession = errors.New("no valid session")

const (
	auditEventSessionCreated   = "session_created"
	auditEventSessionSaved     = "session_saved"
	auditEventSessionRejected  = "session_rejected"
	auditEventSessionDestroyed = "session_destroyed"
	auditEventStoreUnavailable = "store_unavailable"
)

// Manager defines a public type used by sealbox APIs.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Manager struct {
	codec   *sealbox.Codec
	store   *Store
	ids     IDSource
	ttl     time.Duration
	metrics *sealbox.Metrics
	audit   *sealbox.AuditDispatcher
}

// Builder defines a public type used by sealbox APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	codec       *sealbox.Codec
	redis       redis.UniversalClient
	prefix      string
	ttl         time.Duration
	sliding     bool
	jitter      bool
	jitterRange time.Duration
	ids         IDSource
	auditCfg    sealbox.AuditConfig
	auditSink   sealbox.AuditSink

	built bool
}

// NewManager describes the newmanager operation and its observable behavior.
//
// NewManager may return an error when input validation, dependency calls, or security checks fail.
// NewManager does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewManager() *Builder {
	return &Builder{
		prefix: "sealbox",
		ids:    RandomSource{},
	}
}

// WithCodec describes the withcodec operation and its observable behavior.
//
// WithCodec may return an error when input validation, dependency calls, or security checks fail.
// WithCodec does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithCodec(codec *sealbox.Codec) *Builder {
	b.codec = codec
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithPrefix describes the withprefix operation and its observable behavior.
//
// WithPrefix may return an error when input validation, dependency calls, or security checks fail.
// WithPrefix does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithPrefix(prefix string) *Builder {
	b.prefix = prefix
	return b
}

// WithTTL describes the withttl operation and its observable behavior.
//
// WithTTL may return an error when input validation, dependency calls, or security checks fail.
// WithTTL does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithTTL(ttl time.Duration) *Builder {
	b.ttl = ttl
	return b
}

// WithSlidingExpiration describes the withslidingexpiration operation and its observable behavior.
//
// WithSlidingExpiration may return an error when input validation, dependency calls, or security checks fail.
// WithSlidingExpiration does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithSlidingExpiration(enabled bool) *Builder {
	b.sliding = enabled
	return b
}

// WithTTLJitter enables randomized TTL jitter on sliding renewals so a burst
// of sessions created together does not expire together.
func (b *Builder) WithTTLJitter(jitterRange time.Duration) *Builder {
	b.jitter = jitterRange > 0
	b.jitterRange = jitterRange
	return b
}

// WithIDSource describes the withidsource operation and its observable behavior.
//
// WithIDSource may return an error when input validation, dependency calls, or security checks fail.
// WithIDSource does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithIDSource(src IDSource) *Builder {
	b.ids = src
	return b
}

// WithAudit describes the withaudit operation and its observable behavior.
//
// WithAudit may return an error when input validation, dependency calls, or security checks fail.
// WithAudit does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAudit(cfg sealbox.AuditConfig, sink sealbox.AuditSink) *Builder {
	b.auditCfg = cfg
	b.auditSink = sink
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	if b.codec == nil {
		return nil, errors.New("codec required")
	}
	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.ttl <= 0 {
		return nil, errors.New("session ttl required")
	}
	if b.prefix == "" {
		return nil, errors.New("key prefix required")
	}
	if b.ids == nil {
		b.ids = RandomSource{}
	}

	store := NewStore(b.redis, b.prefix, b.sliding, b.jitter, b.jitterRange)

	manager := &Manager{
		codec:   b.codec,
		store:   store,
		ids:     b.ids,
		ttl:     b.ttl,
		metrics: b.codec.Metrics(),
		audit:   sealbox.NewAuditDispatcher(b.auditCfg, b.auditSink),
	}

	b.built = true
	return manager, nil
}

// Create seals the payload, mints a fresh session ID, and persists the sealed
// blob with the configured TTL.
//
// Create may return an error when input validation, dependency calls, or security checks fail.
// Create does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Create(ctx context.Context, v any) (ID, error) {
	id, err := m.ids.NewID()
	if err != nil {
		return ID{}, err
	}

	sealed, err := m.codec.Seal(v)
	if err != nil {
		m.emitAudit(ctx, auditEventSessionCreated, false, id, err)
		return ID{}, err
	}

	if err := m.store.Save(ctx, id, sealed, m.ttl); err != nil {
		m.metrics.Inc(sealbox.MetricStoreUnavailable)
		m.emitAudit(ctx, auditEventSessionCreated, false, id, err)
		return ID{}, err
	}

	m.metrics.Inc(sealbox.MetricSessionCreated)
	m.emitAudit(ctx, auditEventSessionCreated, true, id, nil)
	return id, nil
}

// Load fetches the blob for a session ID and opens it into dst. A missing
// blob or one that fails authentication yields [ErrNoSession]; a blob that
// fails authentication is also deleted so the next request starts clean.
//
// Load may return an error when input validation, dependency calls, or security checks fail.
// Load does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Load(ctx context.Context, id ID, dst any) error {
	sealed, err := m.store.Get(ctx, id, m.ttl)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			m.metrics.Inc(sealbox.MetricSessionRejected)
			m.emitAudit(ctx, auditEventSessionRejected, false, id, err)
			return errors.Join(ErrNoSession, err)
		}
		m.metrics.Inc(sealbox.MetricStoreUnavailable)
		m.emitAudit(ctx, auditEventStoreUnavailable, false, id, err)
		return err
	}

	if err := m.codec.Open(sealed, dst); err != nil {
		if errors.Is(err, sealbox.ErrInvalidMessage) || errors.Is(err, sealbox.ErrInvalidSignature) {
			_ = m.store.Delete(ctx, id)
			m.metrics.Inc(sealbox.MetricSessionRejected)
			m.emitAudit(ctx, auditEventSessionRejected, false, id, err)
			return errors.Join(ErrNoSession, err)
		}
		return err
	}

	m.metrics.Inc(sealbox.MetricSessionLoaded)
	return nil
}

// Save re-seals the payload under an existing session ID and resets its TTL.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Save(ctx context.Context, id ID, v any) error {
	sealed, err := m.codec.Seal(v)
	if err != nil {
		return err
	}

	if err := m.store.Save(ctx, id, sealed, m.ttl); err != nil {
		m.metrics.Inc(sealbox.MetricStoreUnavailable)
		m.emitAudit(ctx, auditEventStoreUnavailable, false, id, err)
		return err
	}

	m.metrics.Inc(sealbox.MetricSessionSaved)
	m.emitAudit(ctx, auditEventSessionSaved, true, id, nil)
	return nil
}

// Destroy describes the destroy operation and its observable behavior.
//
// Destroy may return an error when input validation, dependency calls, or security checks fail.
// Destroy does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Destroy(ctx context.Context, id ID) error {
	if err := m.store.Delete(ctx, id); err != nil {
		m.metrics.Inc(sealbox.MetricStoreUnavailable)
		m.emitAudit(ctx, auditEventStoreUnavailable, false, id, err)
		return err
	}

	m.metrics.Inc(sealbox.MetricSessionDestroyed)
	m.emitAudit(ctx, auditEventSessionDestroyed, true, id, nil)
	return nil
}

// Touch refreshes the TTL of an existing session without opening its payload.
//
// Touch may return an error when input validation, dependency calls, or security checks fail.
// Touch does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Touch(ctx context.Context, id ID) error {
	if err := m.store.Touch(ctx, id, m.ttl); err != nil {
		if errors.Is(err, ErrNotFound) {
			return errors.Join(ErrNoSession, err)
		}
		m.metrics.Inc(sealbox.MetricStoreUnavailable)
		return err
	}
	return nil
}

// ActiveSessions describes the activesessions operation and its observable behavior.
//
// ActiveSessions may return an error when input validation, dependency calls, or security checks fail.
// ActiveSessions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) ActiveSessions(ctx context.Context) (int, error) {
	return m.store.ActiveSessions(ctx)
}

// Ping describes the ping operation and its observable behavior.
//
// Ping may return an error when input validation, dependency calls, or security checks fail.
// Ping does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Ping(ctx context.Context) (time.Duration, error) {
	return m.store.Ping(ctx)
}

// TTL describes the ttl operation and its observable behavior.
//
// TTL may return an error when input validation, dependency calls, or security checks fail.
// TTL does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) MetricsSnapshot() sealbox.MetricsSnapshot {
	return m.codec.MetricsSnapshot()
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) AuditDropped() uint64 {
	return m.audit.Dropped()
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	m.audit.Close()
}

func (m *Manager) emitAudit(ctx context.Context, eventType string, success bool, id ID, err error) {
	if m == nil || m.audit == nil {
		return
	}

	event := sealbox.AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		SessionID: id.String(),
		Success:   success,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = code
	}

	m.audit.Emit(ctx, event)
}

func auditErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "session_not_found"
	case errors.Is(err, ErrStoreUnavailable):
		return "backend_unavailable"
	case errors.Is(err, sealbox.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, sealbox.ErrInvalidMessage):
		return "invalid_message"
	case errors.Is(err, sealbox.ErrConfiguration):
		return "configuration_error"
	default:
		return "internal_error"
	}
}
