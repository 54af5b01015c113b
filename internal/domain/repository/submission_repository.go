package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cp_tracker/internal/domain/model"
)

type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error
	SubmissionExists(ctx context.Context, tx *sql.Tx, userID, problemID string) (bool, error)
	// ListProblemIDsByUser returns one problem id per submission, duplicates included.
	ListProblemIDsByUser(ctx context.Context, userID string) ([]string, error)
	// AggregateByUser sums solved counts and points per user for submissions at or
	// after since (all time when since is nil). Every user appears, unranked.
	AggregateByUser(ctx context.Context, since *time.Time) ([]model.LeaderboardEntry, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) CreateSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error {
	query := `INSERT INTO submissions (id, user_id, problem_id, solved_at, cf_submission_id)
	          VALUES ($1, $2, $3, $4, $5)`
	_, err := conn(r.db, tx).ExecContext(ctx, query, sub.ID, sub.UserID, sub.ProblemID, sub.SolvedAt, sub.CFSubmissionID)
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateSubmission: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) SubmissionExists(ctx context.Context, tx *sql.Tx, userID, problemID string) (bool, error) {
	var exists bool
	err := conn(r.db, tx).QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM submissions WHERE user_id = $1 AND problem_id = $2)`,
		userID, problemID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("pgSubmissionRepository.SubmissionExists: %w", err)
	}
	return exists, nil
}

func (r *pgSubmissionRepository) ListProblemIDsByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT problem_id FROM submissions WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListProblemIDsByUser query: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListProblemIDsByUser scan: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListProblemIDsByUser rows.Err: %w", err)
	}
	return ids, nil
}

// The window goes into the join condition, not WHERE, so users without
// qualifying submissions keep their row with zero counts.
func (r *pgSubmissionRepository) AggregateByUser(ctx context.Context, since *time.Time) ([]model.LeaderboardEntry, error) {
	query := `
        SELECT u.id, u.username, COUNT(s.id) AS solved_count, COALESCE(SUM(p.points), 0) AS total_points
        FROM users u
        LEFT JOIN submissions s ON s.user_id = u.id AND ($1::timestamptz IS NULL OR s.solved_at >= $1)
        LEFT JOIN problems p ON p.id = s.problem_id
        GROUP BY u.id, u.username`

	var bound sql.NullTime
	if since != nil {
		bound = sql.NullTime{Time: *since, Valid: true}
	}

	rows, err := r.db.QueryContext(ctx, query, bound)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.AggregateByUser query: %w", err)
	}
	defer rows.Close()

	entries := []model.LeaderboardEntry{}
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.Username, &e.SolvedCount, &e.TotalPoints); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.AggregateByUser scan: %w", err)
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.AggregateByUser rows.Err: %w", err)
	}
	return entries, nil
}
