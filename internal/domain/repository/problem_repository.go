package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cp_tracker/internal/common"
	"cp_tracker/internal/domain/model"
)

type ProblemRepository interface {
	CreateProblem(ctx context.Context, tx *sql.Tx, problem *model.Problem) error
	DeleteProblem(ctx context.Context, id string) error
	FindProblemByID(ctx context.Context, id string) (*model.Problem, error)
	// ListProblemsForUser returns all problems, newest first, with Solved set for userID.
	ListProblemsForUser(ctx context.Context, userID string) ([]model.Problem, error)
	// ListProblemsWithExternalKey returns problems carrying both Codeforces id halves.
	ListProblemsWithExternalKey(ctx context.Context, tx *sql.Tx) ([]model.Problem, error)
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

const problemColumns = `p.id, p.title, p.slug, p.problem_url, p.points, p.cf_contest_id, p.cf_problem_index, p.created_by, p.created_at`

func (r *pgProblemRepository) CreateProblem(ctx context.Context, tx *sql.Tx, p *model.Problem) error {
	query := `INSERT INTO problems (id, title, slug, problem_url, points, cf_contest_id, cf_problem_index, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING created_at`

	err := conn(r.db, tx).QueryRowContext(ctx, query,
		p.ID, p.Title, p.Slug, p.ProblemURL, p.Points, p.CFContestID, p.CFProblemIndex, p.CreatedByID,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.CreateProblem: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) DeleteProblem(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM problems WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.DeleteProblem: %w", err)
	}
	return requireAffected(res, "pgProblemRepository.DeleteProblem")
}

func (r *pgProblemRepository) FindProblemByID(ctx context.Context, id string) (*model.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems p WHERE p.id = $1`

	problem := &model.Problem{}
	err := scanProblem(r.db.QueryRowContext(ctx, query, id), problem)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.FindProblemByID: %w", err)
	}
	return problem, nil
}

func (r *pgProblemRepository) ListProblemsForUser(ctx context.Context, userID string) ([]model.Problem, error) {
	query := `
        SELECT ` + problemColumns + `,
               EXISTS (SELECT 1 FROM submissions s WHERE s.user_id = $1 AND s.problem_id = p.id) AS solved
        FROM problems p
        ORDER BY p.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.ListProblemsForUser query: %w", err)
	}
	defer rows.Close()

	problems := []model.Problem{}
	for rows.Next() {
		var p model.Problem
		if err := scanProblem(rows, &p, &p.Solved); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.ListProblemsForUser scan: %w", err)
		}
		problems = append(problems, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.ListProblemsForUser rows.Err: %w", err)
	}
	return problems, nil
}

func (r *pgProblemRepository) ListProblemsWithExternalKey(ctx context.Context, tx *sql.Tx) ([]model.Problem, error) {
	query := `SELECT ` + problemColumns + `
              FROM problems p
              WHERE p.cf_contest_id IS NOT NULL AND p.cf_problem_index IS NOT NULL`

	rows, err := conn(r.db, tx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.ListProblemsWithExternalKey query: %w", err)
	}
	defer rows.Close()

	var problems []model.Problem
	for rows.Next() {
		var p model.Problem
		if err := scanProblem(rows, &p); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.ListProblemsWithExternalKey scan: %w", err)
		}
		problems = append(problems, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.ListProblemsWithExternalKey rows.Err: %w", err)
	}
	return problems, nil
}

func scanProblem(row rowScanner, p *model.Problem, extra ...any) error {
	dest := []any{
		&p.ID, &p.Title, &p.Slug, &p.ProblemURL, &p.Points,
		&p.CFContestID, &p.CFProblemIndex, &p.CreatedByID, &p.CreatedAt,
	}
	return row.Scan(append(dest, extra...)...)
}
