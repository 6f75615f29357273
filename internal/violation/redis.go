package violation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "luna/violations/"

// recordScript decays and increments in one round-trip so concurrent bot
// instances never lose an increment.
var recordScript = redis.NewScript(`
local count = tonumber(redis.call('HGET', KEYS[1], 'count') or '0')
local last = tonumber(redis.call('HGET', KEYS[1], 'last') or '0')
local now = tonumber(ARGV[1])
if last > 0 and now - last > tonumber(ARGV[2]) then
	count = 0
end
count = count + 1
redis.call('HSET', KEYS[1], 'count', count, 'last', now)
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return count
`)

// RedisStore shares counters between bot instances.
type RedisStore struct {
	Client *redis.Client
	opts   Options
	clock  Clock
}

func NewRedisStore(redisURL string, opts Options) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.TODO()).Result(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisStore{Client: rdb, opts: opts, clock: realClock{}}, nil
}

func (s *RedisStore) WithClock(clock Clock) {
	s.clock = clock
}

func (s *RedisStore) Record(ctx context.Context, guildID, userID string) (Record, error) {
	now := s.clock.Now()
	count, err := recordScript.Run(ctx, s.Client,
		[]string{redisPrefix + s.opts.key(guildID, userID)},
		now.UnixMilli(), s.opts.window().Milliseconds(),
	).Int()
	if err != nil {
		return Record{}, fmt.Errorf("record violation: %w", err)
	}
	return Record{Count: count, LastAt: now}, nil
}

func (s *RedisStore) Get(ctx context.Context, guildID, userID string) (Record, error) {
	var fields struct {
		Count int   `redis:"count"`
		Last  int64 `redis:"last"`
	}
	res := s.Client.HGetAll(ctx, redisPrefix+s.opts.key(guildID, userID))
	if err := res.Err(); err != nil {
		return Record{}, fmt.Errorf("get violations: %w", err)
	}
	if err := res.Scan(&fields); err != nil {
		return Record{}, fmt.Errorf("scan violations: %w", err)
	}
	if fields.Last == 0 {
		return Record{}, nil
	}
	last := time.UnixMilli(fields.Last)
	if expired(last, s.clock.Now(), s.opts.window()) {
		return Record{}, nil
	}
	return Record{Count: fields.Count, LastAt: last}, nil
}

func (s *RedisStore) Reset(ctx context.Context, guildID, userID string) error {
	if err := s.Client.Del(ctx, redisPrefix+s.opts.key(guildID, userID)).Err(); err != nil {
		return fmt.Errorf("reset violations: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.Client.Close()
}
