package service

import (
	"context"
	"testing"
	"time"

	"cp_tracker/internal/common"
	"cp_tracker/internal/domain/model"
	"cp_tracker/internal/domain/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLeaderboard(s *repotest.Store, now time.Time) *LeaderboardService {
	svc := NewLeaderboardService(s.Submissions)
	svc.now = func() time.Time { return now }
	return svc
}

func solve(s *repotest.Store, userID, problemID string, at time.Time) {
	s.Submissions.Add(model.Submission{
		ID: userID + "-" + problemID, UserID: userID, ProblemID: problemID, SolvedAt: at,
	})
}

func TestParseWindow(t *testing.T) {
	for in, want := range map[string]Window{"": WindowAll, "all": WindowAll, "Monthly": WindowMonthly, "weekly": WindowWeekly} {
		got, err := ParseWindow(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseWindow("daily")
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestWindowSince(t *testing.T) {
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	assert.Nil(t, WindowAll.Since(now))
	assert.Equal(t, now.Add(-7*24*time.Hour), *WindowWeekly.Since(now))
	assert.Equal(t, now.Add(-30*24*time.Hour), *WindowMonthly.Since(now))
}

func TestGetLeaderboard_SolvedCountBreaksPointTies(t *testing.T) {
	now := time.Now()
	s := repotest.NewStore()
	s.Users.Add(model.User{ID: "a", Username: "A"})
	s.Users.Add(model.User{ID: "b", Username: "B"})
	s.Problems.Add(model.Problem{ID: "p10", Points: 10})
	s.Problems.Add(model.Problem{ID: "p20", Points: 20})
	s.Problems.Add(model.Problem{ID: "p30", Points: 30})
	solve(s, "b", "p30", now)
	solve(s, "a", "p10", now)
	solve(s, "a", "p20", now)

	board, err := newLeaderboard(s, now).GetLeaderboard(context.Background(), WindowAll)
	require.NoError(t, err)
	require.Len(t, board, 2)

	assert.Equal(t, model.LeaderboardEntry{Rank: 1, UserID: "a", Username: "A", SolvedCount: 2, TotalPoints: 30}, board[0])
	assert.Equal(t, model.LeaderboardEntry{Rank: 2, UserID: "b", Username: "B", SolvedCount: 1, TotalPoints: 30}, board[1])
}

func TestGetLeaderboard_FullTiesGetSequentialRanks(t *testing.T) {
	s := repotest.NewStore()
	s.Users.Add(model.User{ID: "z", Username: "zed"})
	s.Users.Add(model.User{ID: "m", Username: "mia"})
	s.Users.Add(model.User{ID: "x", Username: "amy"})

	board, err := newLeaderboard(s, time.Now()).GetLeaderboard(context.Background(), WindowAll)
	require.NoError(t, err)
	require.Len(t, board, 3)

	for i, want := range []string{"amy", "mia", "zed"} {
		assert.Equal(t, want, board[i].Username)
		assert.Equal(t, i+1, board[i].Rank)
		assert.Zero(t, board[i].SolvedCount)
		assert.Zero(t, board[i].TotalPoints)
	}
}

func TestGetLeaderboard_Windows(t *testing.T) {
	now := time.Now()
	s := repotest.NewStore()
	s.Users.Add(model.User{ID: "u1", Username: "alice"})
	s.Problems.Add(model.Problem{ID: "old", Points: 10})
	s.Problems.Add(model.Problem{ID: "ancient", Points: 5})
	solve(s, "u1", "old", now.Add(-8*24*time.Hour))
	solve(s, "u1", "ancient", now.Add(-40*24*time.Hour))

	svc := newLeaderboard(s, now)
	tests := []struct {
		window     Window
		wantSolved int
		wantPoints int
	}{
		{WindowAll, 2, 15},
		{WindowMonthly, 1, 10},
		{WindowWeekly, 0, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.window), func(t *testing.T) {
			board, err := svc.GetLeaderboard(context.Background(), tt.window)
			require.NoError(t, err)
			require.Len(t, board, 1, "users without qualifying submissions still appear")
			assert.Equal(t, tt.wantSolved, board[0].SolvedCount)
			assert.Equal(t, tt.wantPoints, board[0].TotalPoints)
		})
	}
}

func TestGetLeaderboard_DeletedProblemCountsWithoutPoints(t *testing.T) {
	now := time.Now()
	s := repotest.NewStore()
	s.Users.Add(model.User{ID: "u1", Username: "alice"})
	s.Problems.Add(model.Problem{ID: "p1", Points: 40})
	solve(s, "u1", "p1", now)
	solve(s, "u1", "gone", now)

	board, err := newLeaderboard(s, now).GetLeaderboard(context.Background(), WindowAll)
	require.NoError(t, err)
	assert.Equal(t, 2, board[0].SolvedCount)
	assert.Equal(t, 40, board[0].TotalPoints)
}

func TestGetUserStats(t *testing.T) {
	now := time.Now()
	s := repotest.NewStore()
	s.Users.Add(model.User{ID: "a", Username: "A"})
	s.Users.Add(model.User{ID: "b", Username: "B"})
	s.Problems.Add(model.Problem{ID: "p1", Points: 25})
	solve(s, "b", "p1", now)
	svc := newLeaderboard(s, now)

	stats, err := svc.GetUserStats(context.Background(), "b")
	require.NoError(t, err)
	require.NotNil(t, stats.Rank)
	assert.Equal(t, 1, *stats.Rank)
	assert.Equal(t, 1, stats.SolvedCount)
	assert.Equal(t, 25, stats.TotalPoints)

	stats, err = svc.GetUserStats(context.Background(), "a")
	require.NoError(t, err)
	require.NotNil(t, stats.Rank)
	assert.Equal(t, 2, *stats.Rank)

	stats, err = svc.GetUserStats(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, stats.Rank)
	assert.Zero(t, stats.SolvedCount)
}

func TestGetUserSolvedProblems_KeepsDuplicates(t *testing.T) {
	s := repotest.NewStore()
	s.Submissions.Add(
		model.Submission{ID: "1", UserID: "u1", ProblemID: "p1"},
		model.Submission{ID: "2", UserID: "u1", ProblemID: "p1"},
		model.Submission{ID: "3", UserID: "u2", ProblemID: "p2"},
	)

	ids, err := newLeaderboard(s, time.Now()).GetUserSolvedProblems(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p1"}, ids)
}
