package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/wilsondesouza/AlertSystem/internal/localtime"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// cooldownState value stored under each rule's cooldown key
type cooldownState struct {
	RuleID int64  `json:"rule_id"`
	SentAt string `json:"sent_at"`
}

// CooldownCache keeps each rule's last notification time in Redis until its
// cooldown expires. A miss means "ask the history table".
type CooldownCache struct {
	redisClient *redis.Client
	keyPrefix   string
	logger      *zap.Logger
}

// NewCooldownCache creates the Redis cooldown cache
func NewCooldownCache(redisClient *redis.Client, keyPrefix string, logger *zap.Logger) *CooldownCache {
	return &CooldownCache{
		redisClient: redisClient,
		keyPrefix:   keyPrefix,
		logger:      logger,
	}
}

// Key builds the cache key for a rule
func (c *CooldownCache) Key(ruleID int64) string {
	return c.keyPrefix + strconv.FormatInt(ruleID, 10)
}

// LastSentAt returns the cached send time; false on a miss
func (c *CooldownCache) LastSentAt(ctx context.Context, ruleID int64) (time.Time, bool, error) {
	val, err := c.redisClient.Get(ctx, c.Key(ruleID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, fmt.Errorf("failed to get cooldown state: %w", err)
	}

	var state cooldownState
	if err := json.Unmarshal([]byte(val), &state); err != nil {
		return time.Time{}, false, fmt.Errorf("failed to unmarshal cooldown state: %w", err)
	}

	sentAt, err := localtime.Parse(state.SentAt)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid cooldown state for rule %d: %w", ruleID, err)
	}
	return sentAt, true, nil
}

// Remember stores sentAt for ttl. Rules without a cooldown are not cached.
func (c *CooldownCache) Remember(ctx context.Context, ruleID int64, sentAt time.Time, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	jsonData, err := json.Marshal(cooldownState{
		RuleID: ruleID,
		SentAt: localtime.Format(sentAt),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal cooldown state: %w", err)
	}

	if err := c.redisClient.Set(ctx, c.Key(ruleID), jsonData, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cooldown state: %w", err)
	}

	c.logger.Debug("Cooldown cached",
		zap.Int64("rule_id", ruleID),
		zap.Duration("ttl", ttl),
	)
	return nil
}
