package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/northstar-insurance/server/internal/agent/model"
	errx "github.com/northstar-insurance/server/internal/core/error"
	logx "github.com/northstar-insurance/server/pkg/logger"
)

// RedisConversationRepository stores each session's turns in a sorted set
// scored by timestamp, so most-recent-first reads are a reverse range.
type RedisConversationRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisConversationRepository(rdb redis.Cmdable, ttl time.Duration) *RedisConversationRepository {
	return &RedisConversationRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisConversationRepository) sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s:turns", sessionID)
}

func (r *RedisConversationRepository) AppendTurn(ctx context.Context, turn model.ConversationTurn) error {
	b, err := json.Marshal(turn)
	if err != nil {
		logx.Error().Err(err).Str("session_id", turn.SessionID).Msg("failed to marshal turn")
		return fmt.Errorf("marshal turn: %w", err)
	}
	key := r.sessionKey(turn.SessionID)

	if err := r.rdb.ZAdd(ctx, key, redis.Z{
		Score:  float64(turn.Timestamp.UnixMilli()),
		Member: b,
	}).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to append turn to redis")
		return errx.WrapRedis(err)
	}
	// extend TTL on touch
	if r.ttl > 0 {
		if ok, err := r.rdb.Expire(ctx, key, r.ttl).Result(); err != nil {
			logx.Error().Err(err).Str("key", key).Msg("failed to set expire")
			return errx.WrapRedis(err)
		} else if !ok {
			logx.Warn().Str("key", key).Dur("ttl", r.ttl).Msg("failed to set TTL on session key")
		}
	}
	return nil
}

func (r *RedisConversationRepository) RecentTurns(ctx context.Context, sessionID string, limit int) ([]model.ConversationTurn, error) {
	if limit <= 0 {
		return []model.ConversationTurn{}, nil
	}
	key := r.sessionKey(sessionID)

	rows, err := r.rdb.ZRevRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		if err == redis.Nil {
			return []model.ConversationTurn{}, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load session history from redis")
		return nil, errx.WrapRedis(err)
	}

	turns := make([]model.ConversationTurn, 0, len(rows))
	for i, s := range rows {
		var t model.ConversationTurn
		if err := json.Unmarshal([]byte(s), &t); err != nil {
			logx.Error().Err(err).Str("session_id", sessionID).Int("index", i).Msg("failed to unmarshal turn")
			return nil, fmt.Errorf("unmarshal turn at index %d: %w", i, err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

func (r *RedisConversationRepository) ClearHistory(ctx context.Context, sessionID string) error {
	key := r.sessionKey(sessionID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete session history from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.ConversationRepository = (*RedisConversationRepository)(nil)
