// Package registry owns the authoritative map of open tickets. No other
// component constructs or mutates TicketRecord values.
package registry

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticket-bot/internal/domain"
	apperrors "github.com/spec-kit/ticket-bot/pkg/util"
)

// Store mirrors registry mutations into durable storage so open tickets
// survive a restart. Implementations must be safe for concurrent use.
type Store interface {
	Save(ctx context.Context, record domain.TicketRecord) error
	Delete(ctx context.Context, threadID string) error
	Load(ctx context.Context) ([]domain.TicketRecord, error)
}

// Registry is the in-memory map from thread id to ticket record. The map is
// authoritative; the snapshot store is a best-effort write-through mirror.
type Registry struct {
	mu       sync.RWMutex
	tickets  map[string]domain.TicketRecord
	snapshot Store
	logger   *zap.Logger
	now      func() time.Time
}

// Option customizes a Registry.
type Option func(*Registry)

// WithSnapshot attaches a durable mirror.
func WithSnapshot(store Store) Option {
	return func(r *Registry) { r.snapshot = store }
}

// WithClock overrides record timestamping in tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// New constructs an empty registry.
func New(logger *zap.Logger, opts ...Option) *Registry {
	r := &Registry{
		tickets: make(map[string]domain.TicketRecord),
		logger:  logger,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Restore loads previously snapshotted records into the registry. Called
// once at startup, before any interaction is served.
func (r *Registry) Restore(ctx context.Context) error {
	if r.snapshot == nil {
		return nil
	}
	records, err := r.snapshot.Load(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, record := range records {
		r.tickets[record.ThreadID] = record
	}
	if len(records) > 0 {
		r.logger.Info("restored open tickets from snapshot", zap.Int("count", len(records)))
	}
	return nil
}

// FindOpenTicketFor returns the user's open ticket, if any. Linear scan;
// at the scale of a single community this never matters.
func (r *Registry) FindOpenTicketFor(userID string) (domain.TicketRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, record := range r.tickets {
		if record.CreatorUserID == userID {
			return record, true
		}
	}
	return domain.TicketRecord{}, false
}

// Create inserts an unclaimed record for a freshly created thread.
func (r *Registry) Create(ctx context.Context, threadID, creatorUserID, categoryKey string) (domain.TicketRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tickets[threadID]; exists {
		return domain.TicketRecord{}, apperrors.NewDuplicateThread(threadID)
	}
	record := domain.TicketRecord{
		ThreadID:      threadID,
		CreatorUserID: creatorUserID,
		CategoryKey:   categoryKey,
		CreatedAt:     r.now(),
	}
	r.tickets[threadID] = record
	r.mirrorSave(ctx, record)
	return record, nil
}

// Get returns the record for a thread.
func (r *Registry) Get(threadID string) (domain.TicketRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.tickets[threadID]
	return record, ok
}

// SetClaim updates the claim state of a record. An empty userID clears it.
func (r *Registry) SetClaim(ctx context.Context, threadID, userID string) (domain.TicketRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.tickets[threadID]
	if !ok {
		return domain.TicketRecord{}, apperrors.NewNotFound("ticket", map[string]any{"thread_id": threadID})
	}
	record.ClaimedBy = userID
	r.tickets[threadID] = record
	r.mirrorSave(ctx, record)
	return record, nil
}

// Remove deletes the record for a thread. Idempotent; returns the removed
// record when one was present.
func (r *Registry) Remove(ctx context.Context, threadID string) (domain.TicketRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.tickets[threadID]
	if !ok {
		return domain.TicketRecord{}, false
	}
	delete(r.tickets, threadID)
	if r.snapshot != nil {
		if err := r.snapshot.Delete(ctx, threadID); err != nil {
			r.logger.Warn("snapshot delete failed", zap.String("thread_id", threadID), zap.Error(err))
		}
	}
	return record, true
}

// Len reports the number of open tickets.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tickets)
}

// mirrorSave persists a record best-effort. Snapshot failures never block a
// transition.
func (r *Registry) mirrorSave(ctx context.Context, record domain.TicketRecord) {
	if r.snapshot == nil {
		return
	}
	if err := r.snapshot.Save(ctx, record); err != nil {
		r.logger.Warn("snapshot save failed", zap.String("thread_id", record.ThreadID), zap.Error(err))
	}
}
