package service

import (
	"context"
	"testing"

	"cp_tracker/internal/common"
	"cp_tracker/internal/domain/model"
	"cp_tracker/internal/domain/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMarkSolved_InsertIfAbsent(t *testing.T) {
	db, mock := setupMock(t)
	s := repotest.NewStore()
	s.Problems.Add(model.Problem{ID: "p1", Title: "First", Points: 10})
	svc := NewSubmissionService(s.Submissions, s.Problems, db, zap.NewNop())

	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	created, err := svc.MarkSolved(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.MarkSolved(context.Background(), "u1", "p1")
	require.NoError(t, err)
	assert.False(t, created)

	assert.Equal(t, 1, s.Submissions.Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkSolved_UnknownProblem(t *testing.T) {
	db, mock := setupMock(t)
	s := repotest.NewStore()
	svc := NewSubmissionService(s.Submissions, s.Problems, db, zap.NewNop())

	_, err := svc.MarkSolved(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
	assert.Zero(t, s.Submissions.Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}
