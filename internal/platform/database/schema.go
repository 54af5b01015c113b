package database

import (
	"context"
	"database/sql"
	"fmt"
)

// submissions.problem_id deliberately has no foreign key: deleting a problem
// leaves its completion records in place.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id              TEXT PRIMARY KEY,
    username        VARCHAR(50) NOT NULL UNIQUE,
    hashed_password VARCHAR(128) NOT NULL,
    cf_handle       VARCHAR(50),
    is_admin        BOOLEAN NOT NULL DEFAULT FALSE,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS problems (
    id               TEXT PRIMARY KEY,
    title            VARCHAR(200) NOT NULL,
    slug             VARCHAR(220) NOT NULL DEFAULT '',
    problem_url      VARCHAR(500),
    points           INTEGER NOT NULL DEFAULT 10,
    cf_contest_id    INTEGER,
    cf_problem_index VARCHAR(5),
    created_by       TEXT,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS submissions (
    id               TEXT PRIMARY KEY,
    user_id          TEXT NOT NULL REFERENCES users(id),
    problem_id       TEXT NOT NULL,
    solved_at        TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
    cf_submission_id BIGINT
);

CREATE INDEX IF NOT EXISTS idx_submissions_user_problem ON submissions (user_id, problem_id);
CREATE INDEX IF NOT EXISTS idx_submissions_solved_at ON submissions (solved_at);
CREATE INDEX IF NOT EXISTS idx_problems_cf ON problems (cf_contest_id, cf_problem_index);
`

// Migrate creates the tables if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
