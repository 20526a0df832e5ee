package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// TicketCacheTTL is the time-to-live for cached tickets.
	TicketCacheTTL = 24 * time.Hour

	ticketCacheKeyPrefix = "ticket"

	fieldVersion = "version"
	fieldDeleted = "deleted"

	// maxSetAttempts bounds optimistic retries when another writer touches
	// the key between WATCH and EXEC.
	maxSetAttempts = 3
)

// CachedTicket is the denormalized read model stored in Redis.
// Text fields are stored raw; the service layer re-validates them into
// domain value objects when reading.
type CachedTicket struct {
	ID          uuid.UUID `json:"id"`
	OrgID       uuid.UUID `json:"org_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Version orders snapshots of one ticket. Postgres stores microseconds, so
// finer precision is dropped to keep event and row snapshots comparable.
func (t *CachedTicket) Version() int64 {
	return t.UpdatedAt.UnixMicro()
}

// EntryState describes what a cache key currently holds.
type EntryState struct {
	Present bool
	Deleted bool
	Version int64
}

// Admits reports whether a snapshot at version next may overwrite cur.
// A deleted ticket admits nothing, and an entry is only replaced by a
// strictly newer snapshot, so late or redelivered events never roll the
// read model back.
func Admits(cur EntryState, next int64) bool {
	if cur.Deleted {
		return false
	}
	return !cur.Present || next > cur.Version
}

// TicketCache provides structured read/write operations for ticket cache entries.
// Keys are scoped by orgID to prevent cross-tenant data leakage.
// Key format: "ticket:{orgID}:{ticketID}"
type TicketCache struct {
	client *RedisClient
}

// NewTicketCache creates a new TicketCache backed by the given RedisClient.
func NewTicketCache(r *RedisClient) *TicketCache {
	return &TicketCache{client: r}
}

// Get retrieves a cached ticket by org + ticket ID.
// Returns redis.Nil when the key does not exist, has expired or marks a
// deleted ticket.
func (c *TicketCache) Get(ctx context.Context, orgID, ticketID uuid.UUID) (*CachedTicket, error) {
	vals, err := c.client.Client().HGetAll(ctx, TicketKey(orgID, ticketID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 || vals[fieldDeleted] != "" {
		return nil, redis.Nil
	}
	return decodeTicket(vals)
}

// Set writes t when Admits allows it and silently keeps the current entry
// otherwise. The check and the write run in one WATCH/MULTI transaction.
func (c *TicketCache) Set(ctx context.Context, t *CachedTicket) error {
	key := TicketKey(t.OrgID, t.ID)
	write := func(tx *redis.Tx) error {
		vals, err := tx.HMGet(ctx, key, fieldVersion, fieldDeleted).Result()
		if err != nil {
			return err
		}
		if !Admits(entryState(vals), t.Version()) {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			pipe.HSet(ctx, key, encodeTicket(t)...)
			pipe.Expire(ctx, key, TicketCacheTTL)
			return nil
		})
		return err
	}

	var err error
	for range maxSetAttempts {
		err = c.client.Client().Watch(ctx, write, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// Delete replaces the entry with a tombstone that lives as long as a regular
// entry, so snapshots arriving after the delete are refused.
func (c *TicketCache) Delete(ctx context.Context, orgID, ticketID uuid.UUID) error {
	key := TicketKey(orgID, ticketID)
	pipe := c.client.Client().TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, fieldDeleted, "1")
	pipe.Expire(ctx, key, TicketCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}

// entryState reads an HMGET of (version, deleted). An unparsable version is
// treated as absent so a newer snapshot can repair the key.
func entryState(vals []any) EntryState {
	var st EntryState
	if len(vals) > 1 && vals[1] != nil {
		st.Deleted = true
	}
	if len(vals) > 0 {
		if raw, ok := vals[0].(string); ok {
			if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
				st.Present, st.Version = true, v
			}
		}
	}
	return st
}

// TicketKey builds the Redis key: "ticket:{orgID}:{ticketID}"
func TicketKey(orgID, ticketID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", ticketCacheKeyPrefix, orgID, ticketID)
}

func encodeTicket(t *CachedTicket) []any {
	return []any{
		"id", t.ID.String(),
		"org_id", t.OrgID.String(),
		"title", t.Title,
		"description", t.Description,
		"status", t.Status,
		"created_at", t.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at", t.UpdatedAt.UTC().Format(time.RFC3339Nano),
		fieldVersion, strconv.FormatInt(t.Version(), 10),
	}
}

func decodeTicket(vals map[string]string) (*CachedTicket, error) {
	id, err := uuid.Parse(vals["id"])
	if err != nil {
		return nil, fmt.Errorf("cache parse id: %w", err)
	}
	orgID, err := uuid.Parse(vals["org_id"])
	if err != nil {
		return nil, fmt.Errorf("cache parse org_id: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, vals["created_at"])
	if err != nil {
		return nil, fmt.Errorf("cache parse created_at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, vals["updated_at"])
	if err != nil {
		return nil, fmt.Errorf("cache parse updated_at: %w", err)
	}

	return &CachedTicket{
		ID:          id,
		OrgID:       orgID,
		Title:       vals["title"],
		Description: vals["description"],
		Status:      vals["status"],
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}, nil
}
