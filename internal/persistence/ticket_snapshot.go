package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// snapshotKey is the Redis hash holding one JSON record per open thread.
const snapshotKey = "ticketbot:active"

// TicketSnapshotStore persists open ticket records in a Redis hash keyed by
// thread id, so a restart does not forget tickets whose threads still exist.
type TicketSnapshotStore struct {
	redis *Redis
}

// NewTicketSnapshotStore wraps a Redis connection as a registry mirror.
func NewTicketSnapshotStore(r *Redis) *TicketSnapshotStore {
	return &TicketSnapshotStore{redis: r}
}

// Save upserts the record under its thread id.
func (s *TicketSnapshotStore) Save(ctx context.Context, record domain.TicketRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal ticket record: %w", err)
	}
	return s.redis.Client.HSet(ctx, snapshotKey, record.ThreadID, raw).Err()
}

// Delete removes the record for a thread. Deleting an absent field is a
// no-op, matching registry.Remove idempotence.
func (s *TicketSnapshotStore) Delete(ctx context.Context, threadID string) error {
	return s.redis.Client.HDel(ctx, snapshotKey, threadID).Err()
}

// Load returns every snapshotted record. Corrupt entries are skipped rather
// than failing startup.
func (s *TicketSnapshotStore) Load(ctx context.Context) ([]domain.TicketRecord, error) {
	raw, err := s.redis.Client.HGetAll(ctx, snapshotKey).Result()
	if err != nil {
		return nil, err
	}
	records := make([]domain.TicketRecord, 0, len(raw))
	for _, value := range raw {
		var record domain.TicketRecord
		if err := json.Unmarshal([]byte(value), &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	return records, nil
}
