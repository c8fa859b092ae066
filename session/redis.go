package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	redisKeyPrefix   = "call:"
	redisActiveCalls = "active_calls"
	redisOpTimeout   = 500 * time.Millisecond
)

// RedisMirror copies session state to Redis so operators can inspect live
// calls. It is write-only: sessions are never restored from it.
type RedisMirror struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisMirror connects to Redis. addr is host:port or a redis:// URL.
func NewRedisMirror(ctx context.Context, addr, password string, ttl time.Duration, logger *zap.Logger) (*RedisMirror, error) {
	opts := &redis.Options{Addr: addr, Password: password, DB: 0}
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		if password != "" {
			parsed.Password = password
		}
		opts = parsed
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", opts.Addr, err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisMirror{client: client, ttl: ttl, logger: logger}, nil
}

// Save writes the session hash and refreshes its expiry
func (m *RedisMirror) Save(ctx context.Context, s Session) {
	snapshot, err := sonic.Marshal(s)
	if err != nil {
		m.logger.Warn("failed to encode session", zap.String("call_id", s.CallID), zap.Error(err))
		return
	}

	fields := map[string]interface{}{
		"stage":         s.Stage.String(),
		"offer_index":   s.OfferIndex,
		"turns":         s.Turns,
		"last_activity": s.LastActivity.Format(time.RFC3339),
		"snapshot":      string(snapshot),
	}
	if s.Order != nil {
		fields["order_id"] = s.Order.ID
	}

	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	key := redisKeyPrefix + s.CallID
	_, err = m.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, fields)
		pipe.SAdd(ctx, redisActiveCalls, s.CallID)
		if m.ttl > 0 {
			pipe.Expire(ctx, key, m.ttl)
		}
		return nil
	})
	if err != nil {
		m.logger.Warn("failed to mirror session", zap.String("call_id", s.CallID), zap.Error(err))
	}
}

// Delete removes mirrored sessions
func (m *RedisMirror) Delete(ctx context.Context, callIDs ...string) {
	if len(callIDs) == 0 {
		return
	}

	keys := make([]string, len(callIDs))
	members := make([]interface{}, len(callIDs))
	for i, id := range callIDs {
		keys[i] = redisKeyPrefix + id
		members[i] = id
	}

	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	_, err := m.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.SRem(ctx, redisActiveCalls, members...)
		return nil
	})
	if err != nil {
		m.logger.Warn("failed to remove mirrored sessions", zap.Strings("call_ids", callIDs), zap.Error(err))
	}
}

// Close closes the Redis client
func (m *RedisMirror) Close() error {
	return m.client.Close()
}
