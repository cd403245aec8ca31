package question

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	bank []BattleQuestion
}

func (s *staticSource) ListBank(_ context.Context, _ int) ([]BattleQuestion, error) {
	return s.bank, nil
}

func makeBank(n int) []BattleQuestion {
	bank := make([]BattleQuestion, n)
	for i := range bank {
		bank[i] = BattleQuestion{
			ID:      fmt.Sprintf("q%03d", i),
			Prompt:  fmt.Sprintf("prompt %d", i),
			Options: []string{"a", "b", "c", "d"},
			Correct: i % 4,
		}
	}
	return bank
}

func TestPickWithoutReplacement(t *testing.T) {
	bank := NewBank(&staticSource{bank: makeBank(30)}, nil, rand.New(rand.NewSource(7)), 0, zerolog.Nop())

	picked, err := bank.Pick(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, picked, 10)

	seen := make(map[string]bool)
	for _, q := range picked {
		assert.False(t, seen[q.ID], "duplicate question %s", q.ID)
		seen[q.ID] = true
	}
}

func TestPickIsDeterministicForSeed(t *testing.T) {
	source := &staticSource{bank: makeBank(30)}

	first, err := NewBank(source, nil, rand.New(rand.NewSource(42)), 0, zerolog.Nop()).Pick(context.Background(), 10)
	require.NoError(t, err)
	second, err := NewBank(source, nil, rand.New(rand.NewSource(42)), 0, zerolog.Nop()).Pick(context.Background(), 10)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPickInsufficientBank(t *testing.T) {
	bank := NewBank(&staticSource{bank: makeBank(3)}, nil, rand.New(rand.NewSource(1)), 0, zerolog.Nop())

	_, err := bank.Pick(context.Background(), 10)
	assert.Error(t, err)
}
