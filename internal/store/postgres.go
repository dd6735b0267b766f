// Package store holds the collaborators the core talks to through narrow
// interfaces: the Postgres question/result tables and the optional Redis
// score backing.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chancia/quizlive/internal/core"
	"github.com/chancia/quizlive/internal/domain"
)

// PostgresStore implements core.QuestionOracle and core.ScorePersister on
// top of the questions/results tables.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) CorrectAnswer(ctx context.Context, questionID int64) (int, error) {
	var answer int
	err := s.pool.QueryRow(ctx,
		`SELECT correct_answer FROM questions WHERE id = $1`, questionID,
	).Scan(&answer)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrQuestionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("%w: query correct answer: %v", domain.ErrCollaboratorUnavailable, err)
	}
	return answer, nil
}

// Questions returns a random question set for distribution to clients.
// Options are stored as a JSONB array.
func (s *PostgresStore) Questions(ctx context.Context, limit int) ([]core.Question, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, question, options FROM questions ORDER BY RANDOM() LIMIT $1`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: query questions: %v", domain.ErrCollaboratorUnavailable, err)
	}
	defer rows.Close()

	var out []core.Question
	for rows.Next() {
		var q core.Question
		var rawOptions []byte
		if err := rows.Scan(&q.ID, &q.Text, &rawOptions); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(rawOptions, &q.Options); err != nil {
			return nil, fmt.Errorf("decode question options: %w", err)
		}
		out = append(out, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read questions: %v", domain.ErrCollaboratorUnavailable, err)
	}
	return out, nil
}

func (s *PostgresStore) Record(ctx context.Context, id domain.MemberID, room domain.RoomKey, score int) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO results (member_id, room_key, score) VALUES ($1, $2, $3)`,
		string(id), string(room), score,
	)
	if err != nil {
		return fmt.Errorf("%w: insert result: %v", domain.ErrCollaboratorUnavailable, err)
	}
	return nil
}
