package question

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the battle question bank from Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wraps a pgx pool for question bank access.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListBank returns up to limit questions from the battle bank.
func (r *Repository) ListBank(ctx context.Context, limit int) ([]BattleQuestion, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, prompt, options, correct_option, subject, explanation, COALESCE(reference, '')
		FROM battle_questions
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query battle bank: %w", err)
	}
	defer rows.Close()

	var bank []BattleQuestion
	for rows.Next() {
		var q BattleQuestion
		if err := rows.Scan(&q.ID, &q.Prompt, &q.Options, &q.Correct, &q.Subject, &q.Explanation, &q.Reference); err != nil {
			return nil, fmt.Errorf("scan battle question: %w", err)
		}
		bank = append(bank, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate battle bank: %w", err)
	}
	return bank, nil
}
