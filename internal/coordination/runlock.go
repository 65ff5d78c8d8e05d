// Package coordination keeps concurrent pipeline invocations from racing
// each other. The scheduler and the operator API can both trigger runs;
// a Redis lock guarantees at most one pipeline execution at a time so the
// dataset publish sequence never interleaves.
package coordination

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// RunLockKey is the single lock guarding pipeline execution.
	RunLockKey = "agent-profit:pipeline:run-lock"

	// DefaultLockTTL bounds how long a crashed run can hold the lock.
	DefaultLockTTL = 30 * time.Minute
)

var (
	// ErrRunInProgress is returned when another pipeline run holds the lock.
	ErrRunInProgress = errors.New("another pipeline run is in progress")

	// ErrLockNotHeld is returned when releasing a lock this instance no
	// longer holds.
	ErrLockNotHeld = errors.New("lock not held")
)

// Config holds Redis connection settings for run coordination.
type Config struct {
	Addr     string        `yaml:"addr" env:"REDIS_ADDR"`
	Password string        `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"REDIS_DB"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

// SetDefaults applies default values to the config if not set.
func (c *Config) SetDefaults() {
	if c.LockTTL <= 0 {
		c.LockTTL = DefaultLockTTL
	}
}

// Enabled reports whether Redis coordination was configured at all.
func (c *Config) Enabled() bool {
	return c.Addr != ""
}

// NewRedisClient creates a Redis client and verifies connectivity.
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RunLock is the mutual-exclusion guard around one pipeline execution.
// Each instance carries a random token so only the holder can release.
type RunLock struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration
}

// NewRunLock creates a run lock with its own holder token.
func NewRunLock(client *redis.Client, cfg Config) *RunLock {
	cfg.SetDefaults()
	return &RunLock{
		client: client,
		key:    RunLockKey,
		token:  uuid.NewString(),
		ttl:    cfg.LockTTL,
	}
}

// Acquire takes the run lock or reports ErrRunInProgress. Callers do not
// wait: an overlapping scheduled run is skipped, not queued.
func (l *RunLock) Acquire(ctx context.Context) error {
	ok, err := l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		return ErrRunInProgress
	}
	return nil
}

// Release frees the lock if this instance still holds it.
func (l *RunLock) Release(ctx context.Context) error {
	// Atomic check-and-delete so an expired lock grabbed by another run
	// is never deleted from here.
	script := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)

	result, err := script.Run(ctx, l.client, []string{l.key}, l.token).Int()
	if err != nil {
		return fmt.Errorf("failed to release run lock: %w", err)
	}
	if result == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// Extend pushes the TTL out for long-running finalize waits.
func (l *RunLock) Extend(ctx context.Context, extension time.Duration) error {
	script := redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		else
			return 0
		end
	`)

	result, err := script.Run(ctx, l.client, []string{l.key}, l.token, extension.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("failed to extend run lock: %w", err)
	}
	if result == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// IsHeld checks whether this instance currently holds the lock.
func (l *RunLock) IsHeld(ctx context.Context) (bool, error) {
	val, err := l.client.Get(ctx, l.key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check run lock: %w", err)
	}
	return val == l.token, nil
}
