package question

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/rs/zerolog"
)

// BankSource loads the raw question bank.
type BankSource interface {
	ListBank(ctx context.Context, limit int) ([]BattleQuestion, error)
}

// BankCache is an optional read-through cache in front of the source.
type BankCache interface {
	Get(ctx context.Context) ([]BattleQuestion, error)
	Set(ctx context.Context, bank []BattleQuestion) error
}

// Bank selects question sequences for battles. The random source is injected
// so tests can assert deterministic sequences.
type Bank struct {
	source   BankSource
	cache    BankCache // may be nil
	logger   zerolog.Logger
	loadSize int

	mu  sync.Mutex
	rng *rand.Rand
}

// NewBank constructs a battle question bank.
func NewBank(source BankSource, cache BankCache, rng *rand.Rand, loadSize int, logger zerolog.Logger) *Bank {
	if loadSize <= 0 {
		loadSize = 500
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}
	return &Bank{
		source:   source,
		cache:    cache,
		logger:   logger,
		loadSize: loadSize,
		rng:      rng,
	}
}

// Pick returns count questions drawn uniformly at random without replacement.
func (b *Bank) Pick(ctx context.Context, count int) ([]BattleQuestion, error) {
	bank, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(bank) < count {
		return nil, fmt.Errorf("question bank has %d questions, need %d", len(bank), count)
	}

	shuffled := append([]BattleQuestion(nil), bank...)
	b.mu.Lock()
	b.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	b.mu.Unlock()

	return shuffled[:count], nil
}

func (b *Bank) load(ctx context.Context) ([]BattleQuestion, error) {
	if b.cache != nil {
		cached, err := b.cache.Get(ctx)
		if err != nil {
			b.logger.Warn().Err(err).Msg("bank cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	bank, err := b.source.ListBank(ctx, b.loadSize)
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}

	if b.cache != nil {
		if err := b.cache.Set(ctx, bank); err != nil {
			b.logger.Warn().Err(err).Msg("bank cache write failed")
		}
	}
	return bank, nil
}
