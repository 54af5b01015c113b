package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"cp_tracker/internal/common"
	"cp_tracker/internal/domain/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var problemRowColumns = []string{
	"id", "title", "slug", "problem_url", "points", "cf_contest_id", "cf_problem_index", "created_by", "created_at",
}

func TestCreateProblem_InTx(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewPgProblemRepository(db)

	contest := 1
	index := "A"
	p := &model.Problem{ID: "p1", Title: "Theatre Square", Slug: "theatre-square", Points: 50, CFContestID: &contest, CFProblemIndex: &index}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO problems (id, title, slug, problem_url, points, cf_contest_id, cf_problem_index, created_by)`)).
		WithArgs("p1", "Theatre Square", "theatre-square", sqlmock.AnyArg(), 50, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, repo.CreateProblem(context.Background(), tx, p))
	require.NoError(t, tx.Commit())

	assert.False(t, p.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteProblem(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewPgProblemRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM problems WHERE id = $1`)).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM problems WHERE id = $1`)).
		WithArgs("p2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.DeleteProblem(context.Background(), "p1"))
	assert.ErrorIs(t, repo.DeleteProblem(context.Background(), "p2"), common.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProblemsForUser(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewPgProblemRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(append(problemRowColumns, "solved")).
		AddRow("p2", "Second", "second", nil, 20, nil, nil, "admin", now, false).
		AddRow("p1", "First", "first", "https://codeforces.com/contest/1/problem/A", 10, int64(1), "A", nil, now.Add(-time.Hour), true)

	mock.ExpectQuery(regexp.QuoteMeta(`AS solved FROM problems p ORDER BY p.created_at DESC`)).
		WithArgs("u1").
		WillReturnRows(rows)

	problems, err := repo.ListProblemsForUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, problems, 2)

	assert.False(t, problems[0].Solved)
	assert.Nil(t, problems[0].ProblemURL)
	assert.True(t, problems[1].Solved)
	key, ok := problems[1].ExternalKey()
	assert.True(t, ok)
	assert.Equal(t, model.ProblemKey{ContestID: 1, Index: "A"}, key)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProblemsWithExternalKey_Error(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewPgProblemRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE p.cf_contest_id IS NOT NULL AND p.cf_problem_index IS NOT NULL`)).
		WillReturnError(errors.New("timeout"))

	_, err := repo.ListProblemsWithExternalKey(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ListProblemsWithExternalKey")
}

func TestFindProblemByID_NotFound(t *testing.T) {
	db, mock := setupMock(t)
	repo := NewPgProblemRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM problems p WHERE p.id = $1`)).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(problemRowColumns))

	_, err := repo.FindProblemByID(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
}
