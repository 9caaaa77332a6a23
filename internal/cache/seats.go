package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rajeev-ju/flight-booking-system/config"
)

type BlockOutcome int

const (
	// BlockUnavailable means the cache holds no counter for the schedule.
	// Blocking fails closed in that case.
	BlockUnavailable BlockOutcome = iota
	BlockOutOfStock
	BlockOK
)

// blockScript checks and decrements the available counter, bumps the blocked
// counter and writes the per-booking block record in one atomic step, so two
// concurrent blocks can never both observe the same available value.
var blockScript = redis.NewScript(`
local available = redis.call('HGET', KEYS[1], 'available')
if not available then
  return -1
end
local n = tonumber(ARGV[1])
if tonumber(available) < n then
  return 0
end
redis.call('HINCRBY', KEYS[1], 'available', -n)
redis.call('HINCRBY', KEYS[1], 'blocked', n)
redis.call('SET', KEYS[2], ARGV[2], 'EX', ARGV[3])
return 1
`)

// forceReleaseScript returns a booking's seats to the pool even when the
// block record has already expired: it prefers the record's count, falls back
// to the caller's, and clamps at the blocked counter so a repeat release can
// never over-credit.
var forceReleaseScript = redis.NewScript(`
local n = tonumber(ARGV[1])
local rec = redis.call('GETDEL', KEYS[2])
if rec then
  n = tonumber(string.match(rec, ':(%d+)$')) or n
end
local blocked = tonumber(redis.call('HGET', KEYS[1], 'blocked'))
if not blocked or blocked <= 0 or n <= 0 then
  return 0
end
if n > blocked then
  n = blocked
end
redis.call('HINCRBY', KEYS[1], 'available', n)
redis.call('HINCRBY', KEYS[1], 'blocked', -n)
return n
`)

// SeatCache keeps per-schedule seat counters and per-booking block records
// in Redis. Counters are a fast-path view; the relational source of record
// is reconciled asynchronously through seat-update events.
type SeatCache struct {
	client     *redis.Client
	blockTTL   time.Duration
	counterTTL time.Duration
	logger     *zap.Logger
}

func NewSeatCache(cfg config.RedisConfig, blockTTL, counterTTL time.Duration, logger *zap.Logger) *SeatCache {
	return &SeatCache{
		client:     redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		blockTTL:   blockTTL,
		counterTTL: counterTTL,
		logger:     logger,
	}
}

// AvailableSeats returns the cached available counter. A cache miss is
// (0, false, nil): unknown, not zero.
func (c *SeatCache) AvailableSeats(ctx context.Context, scheduleID uuid.UUID) (int, bool, error) {
	val, err := c.client.HGet(ctx, counterKey(scheduleID), "available").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("get available seats for %s: %w", scheduleID, err)
	}
	available, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt available counter for %s: %w", scheduleID, err)
	}
	return available, true, nil
}

// BlockSeats places a TTL-bound hold of n seats for the booking. The outcome
// distinguishes business rejection from an absent counter; infrastructure
// failures are returned as errors, never folded into a false.
func (c *SeatCache) BlockSeats(ctx context.Context, scheduleID, bookingID uuid.UUID, n int) (BlockOutcome, error) {
	keys := []string{counterKey(scheduleID), blockKey(bookingID)}
	blockValue := fmt.Sprintf("%s:%d", scheduleID, n)
	ttlSeconds := int(c.blockTTL / time.Second)

	res, err := blockScript.Run(ctx, c.client, keys, n, blockValue, ttlSeconds).Int()
	if err != nil {
		return BlockUnavailable, fmt.Errorf("block %d seats for booking %s: %w", n, bookingID, err)
	}

	switch res {
	case 1:
		c.logger.Info("blocked seats",
			zap.String("booking_id", bookingID.String()),
			zap.String("schedule_id", scheduleID.String()),
			zap.Int("seats", n))
		return BlockOK, nil
	case 0:
		c.logger.Warn("not enough seats available",
			zap.String("schedule_id", scheduleID.String()),
			zap.Int("requested", n))
		return BlockOutOfStock, nil
	default:
		return BlockUnavailable, nil
	}
}

// ReleaseSeats returns a held block to the available pool. The block record
// is claimed with GETDEL, so a second release (or a release racing a confirm)
// is a no-op, as is releasing an already expired block.
func (c *SeatCache) ReleaseSeats(ctx context.Context, bookingID uuid.UUID) error {
	scheduleID, n, ok, err := c.claimBlock(ctx, bookingID)
	if err != nil || !ok {
		return err
	}

	key := counterKey(scheduleID)
	if err := c.client.HIncrBy(ctx, key, "available", int64(n)).Err(); err != nil {
		return fmt.Errorf("release seats for booking %s: %w", bookingID, err)
	}
	if err := c.client.HIncrBy(ctx, key, "blocked", int64(-n)).Err(); err != nil {
		return fmt.Errorf("release seats for booking %s: %w", bookingID, err)
	}

	c.logger.Info("released seats",
		zap.String("booking_id", bookingID.String()),
		zap.String("schedule_id", scheduleID.String()),
		zap.Int("seats", n))
	return nil
}

// ReleaseSeatsFor releases a booking's hold when the block record may already
// be gone. A block expires after blockTTL without restoring the available
// counter, so the stale-booking sweep cannot rely on the record; it passes
// the seat count from the booking row instead.
func (c *SeatCache) ReleaseSeatsFor(ctx context.Context, scheduleID, bookingID uuid.UUID, n int) error {
	keys := []string{counterKey(scheduleID), blockKey(bookingID)}
	released, err := forceReleaseScript.Run(ctx, c.client, keys, n).Int()
	if err != nil {
		return fmt.Errorf("release expired block for booking %s: %w", bookingID, err)
	}
	if released > 0 {
		c.logger.Info("released expired seat block",
			zap.String("booking_id", bookingID.String()),
			zap.String("schedule_id", scheduleID.String()),
			zap.Int("seats", released))
	}
	return nil
}

// ConfirmSeats converts a held block into confirmed seats. Available is
// untouched: the seats already left the pool when they were blocked.
func (c *SeatCache) ConfirmSeats(ctx context.Context, bookingID uuid.UUID) error {
	scheduleID, n, ok, err := c.claimBlock(ctx, bookingID)
	if err != nil || !ok {
		return err
	}

	key := counterKey(scheduleID)
	if err := c.client.HIncrBy(ctx, key, "blocked", int64(-n)).Err(); err != nil {
		return fmt.Errorf("confirm seats for booking %s: %w", bookingID, err)
	}
	if err := c.client.HIncrBy(ctx, key, "confirmed", int64(n)).Err(); err != nil {
		return fmt.Errorf("confirm seats for booking %s: %w", bookingID, err)
	}

	c.logger.Info("confirmed seats",
		zap.String("booking_id", bookingID.String()),
		zap.String("schedule_id", scheduleID.String()),
		zap.Int("seats", n))
	return nil
}

// Initialize seeds the counter hash for a schedule.
func (c *SeatCache) Initialize(ctx context.Context, scheduleID uuid.UUID, totalSeats, bookedSeats int) error {
	key := counterKey(scheduleID)
	fields := map[string]interface{}{
		"available": totalSeats - bookedSeats,
		"blocked":   0,
		"confirmed": bookedSeats,
		"total":     totalSeats,
	}
	if err := c.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("initialize seat counters for %s: %w", scheduleID, err)
	}
	if err := c.client.Expire(ctx, key, c.counterTTL).Err(); err != nil {
		return fmt.Errorf("set counter TTL for %s: %w", scheduleID, err)
	}
	c.logger.Info("initialized seat counters",
		zap.String("schedule_id", scheduleID.String()),
		zap.Int("available", totalSeats-bookedSeats),
		zap.Int("total", totalSeats))
	return nil
}

func (c *SeatCache) Close() error {
	return c.client.Close()
}

// claimBlock atomically removes and parses the per-booking block record.
// ok is false when the record is absent (already claimed or TTL-expired).
func (c *SeatCache) claimBlock(ctx context.Context, bookingID uuid.UUID) (uuid.UUID, int, bool, error) {
	val, err := c.client.GetDel(ctx, blockKey(bookingID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, 0, false, nil
		}
		return uuid.Nil, 0, false, fmt.Errorf("claim block for booking %s: %w", bookingID, err)
	}

	parts := strings.SplitN(val, ":", 2)
	if len(parts) != 2 {
		return uuid.Nil, 0, false, fmt.Errorf("corrupt block record for booking %s: %q", bookingID, val)
	}
	scheduleID, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, 0, false, fmt.Errorf("corrupt block record for booking %s: %w", bookingID, err)
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil {
		return uuid.Nil, 0, false, fmt.Errorf("corrupt block record for booking %s: %w", bookingID, err)
	}
	return scheduleID, n, true, nil
}

func counterKey(scheduleID uuid.UUID) string {
	return fmt.Sprintf("flight:schedule:%s:seats", scheduleID)
}

func blockKey(bookingID uuid.UUID) string {
	return fmt.Sprintf("booking:%s:seats", bookingID)
}
