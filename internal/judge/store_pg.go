package judge

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore persists the judgement log in PostgreSQL. The primary-key conflict
// clause keeps duplicate writes idempotent, matching the append-only file
// semantics.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) Load(ctx context.Context) ([]Judgement, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, question, answer, judgement, created_at, model
		 FROM judgements ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("query judgements: %w", err)
	}
	defer rows.Close()

	out := []Judgement{}
	for rows.Next() {
		var item Judgement
		var resultJSON []byte
		if err := rows.Scan(&item.ID, &item.Question, &item.Answer, &resultJSON, &item.Timestamp, &item.Model); err != nil {
			return nil, fmt.Errorf("scan judgement: %w", err)
		}
		if err := json.Unmarshal(resultJSON, &item.Result); err != nil {
			continue
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate judgements: %w", err)
	}
	return out, nil
}

func (s *PgStore) Append(ctx context.Context, judgement Judgement) error {
	resultJSON, err := json.Marshal(judgement.Result)
	if err != nil {
		return fmt.Errorf("encode judgement result: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO judgements (id, question, answer, judgement, created_at, model)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO NOTHING`,
		judgement.ID, judgement.Question, judgement.Answer, resultJSON, judgement.Timestamp, judgement.Model)
	if err != nil {
		return fmt.Errorf("insert judgement: %w", err)
	}
	return nil
}
