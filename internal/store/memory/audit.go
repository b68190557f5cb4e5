package memory

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/laxmi-pos/laxmi-pos/internal/shared"
)

// AuditRecorder keeps audit entries in memory.
type AuditRecorder struct{ s *Store }

// Audit returns the audit recorder.
func (s *Store) Audit() *AuditRecorder { return &AuditRecorder{s: s} }

// Record appends the entry.
func (a *AuditRecorder) Record(ctx context.Context, log shared.AuditLog) error {
	if log.Action == "" || log.Entity == "" || log.EntityID == "" {
		return errors.New("audit log requires action/entity/entity_id")
	}
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if log.Actor == "" {
		log.Actor = shared.ActorFromContext(ctx)
	}
	if log.At.IsZero() {
		log.At = a.s.now()
	}
	a.s.auditMu.Lock()
	defer a.s.auditMu.Unlock()
	a.s.audit = append(a.s.audit, log)
	return nil
}

// Entries returns a copy of every recorded entry, oldest first.
func (a *AuditRecorder) Entries() []shared.AuditLog {
	a.s.auditMu.Lock()
	defer a.s.auditMu.Unlock()
	return slices.Clone(a.s.audit)
}

type idempotencyEntry struct {
	module    string
	createdAt time.Time
}

// IdempotencyStore keeps processed request keys in memory.
type IdempotencyStore struct{ s *Store }

// Idempotency returns the idempotency key store.
func (s *Store) Idempotency() *IdempotencyStore { return &IdempotencyStore{s: s} }

// CheckAndInsert records key, failing when it was seen before.
func (i *IdempotencyStore) CheckAndInsert(_ context.Context, key, module string) error {
	if key == "" {
		return errors.New("idempotency key required")
	}
	if module == "" {
		return errors.New("idempotency module required")
	}
	i.s.idemMu.Lock()
	defer i.s.idemMu.Unlock()
	if _, ok := i.s.idem[key]; ok {
		return shared.ErrIdempotencyConflict
	}
	i.s.idem[key] = idempotencyEntry{module: module, createdAt: i.s.now()}
	return nil
}

// Delete forgets key.
func (i *IdempotencyStore) Delete(_ context.Context, key string) error {
	if key == "" {
		return errors.New("idempotency key required")
	}
	i.s.idemMu.Lock()
	defer i.s.idemMu.Unlock()
	delete(i.s.idem, key)
	return nil
}

// Cleanup removes keys older than olderThan and reports how many were removed.
func (i *IdempotencyStore) Cleanup(_ context.Context, olderThan time.Duration) (int64, error) {
	cutoff := i.s.now().Add(-olderThan)
	i.s.idemMu.Lock()
	defer i.s.idemMu.Unlock()
	var n int64
	for key, e := range i.s.idem {
		if e.createdAt.Before(cutoff) {
			delete(i.s.idem, key)
			n++
		}
	}
	return n, nil
}
