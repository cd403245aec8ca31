// Package leaderboard maintains the cross-battle XP standings in Redis.
package leaderboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Entry is one leaderboard row sent to clients.
type Entry struct {
	Rank        int    `json:"rank"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	XP          int64  `json:"xp"`
}

// ErrNotRanked is returned when a user has never earned XP.
var ErrNotRanked = errors.New("user not on the leaderboard")

// ServiceOptions configures leaderboard behavior.
type ServiceOptions struct {
	TopN           int
	RedisKeyPrefix string
}

// Service manages the XP leaderboard: a sorted set of scores plus a hash of
// display names, both under the configured prefix.
type Service struct {
	redis  *redis.Client
	logger zerolog.Logger
	topN   int
	prefix string
}

// NewService constructs a leaderboard service instance.
func NewService(redisClient *redis.Client, logger zerolog.Logger, opts ServiceOptions) *Service {
	topN := opts.TopN
	if topN <= 0 {
		topN = 50
	}
	prefix := opts.RedisKeyPrefix
	if prefix == "" {
		prefix = "xp"
	}
	return &Service{
		redis:  redisClient,
		logger: logger.With().Str("component", "leaderboard").Logger(),
		topN:   topN,
		prefix: prefix,
	}
}

func (s *Service) boardKey() string { return s.prefix + ":board" }
func (s *Service) namesKey() string { return s.prefix + ":names" }

// AwardXP credits experience to a user and refreshes their display name.
func (s *Service) AwardXP(ctx context.Context, userID, displayName string, xp int) error {
	if userID == "" || xp <= 0 {
		return nil
	}

	pipe := s.redis.TxPipeline()
	pipe.ZIncrBy(ctx, s.boardKey(), float64(xp), userID)
	if displayName != "" {
		pipe.HSet(ctx, s.namesKey(), userID, displayName)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("award xp: %w", err)
	}

	s.logger.Debug().Str("user_id", userID).Int("xp", xp).Msg("xp awarded")
	return nil
}

// Top returns the highest-ranked entries. A non-positive limit uses the
// configured default; the limit is capped at the default as well.
func (s *Service) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > s.topN {
		limit = s.topN
	}

	ranked, err := s.redis.ZRevRangeWithScores(ctx, s.boardKey(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}
	if len(ranked) == 0 {
		return []Entry{}, nil
	}

	ids := make([]string, len(ranked))
	for i, z := range ranked {
		ids[i], _ = z.Member.(string)
	}
	names, err := s.redis.HMGet(ctx, s.namesKey(), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch display names: %w", err)
	}

	entries := make([]Entry, len(ranked))
	for i, z := range ranked {
		name := ""
		if i < len(names) {
			name, _ = names[i].(string)
		}
		entries[i] = Entry{
			Rank:        i + 1,
			UserID:      ids[i],
			DisplayName: name,
			XP:          int64(z.Score),
		}
	}
	return entries, nil
}

// Standing returns a single user's rank and XP.
func (s *Service) Standing(ctx context.Context, userID string) (Entry, error) {
	rank, err := s.redis.ZRevRank(ctx, s.boardKey(), userID).Result()
	if err == redis.Nil {
		return Entry{}, ErrNotRanked
	}
	if err != nil {
		return Entry{}, fmt.Errorf("fetch rank: %w", err)
	}

	score, err := s.redis.ZScore(ctx, s.boardKey(), userID).Result()
	if err != nil {
		return Entry{}, fmt.Errorf("fetch score: %w", err)
	}
	name, err := s.redis.HGet(ctx, s.namesKey(), userID).Result()
	if err != nil && err != redis.Nil {
		return Entry{}, fmt.Errorf("fetch display name: %w", err)
	}

	return Entry{
		Rank:        int(rank) + 1,
		UserID:      userID,
		DisplayName: name,
		XP:          int64(score),
	}, nil
}
