package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"cp_tracker/internal/common"
	"cp_tracker/internal/domain/model"
	"cp_tracker/internal/domain/repository"
)

// Window bounds the leaderboard to submissions solved after a point in time.
type Window string

const (
	WindowAll     Window = "all"
	WindowMonthly Window = "monthly"
	WindowWeekly  Window = "weekly"
)

func ParseWindow(s string) (Window, error) {
	switch w := Window(strings.ToLower(strings.TrimSpace(s))); w {
	case "":
		return WindowAll, nil
	case WindowAll, WindowMonthly, WindowWeekly:
		return w, nil
	}
	return "", common.UserError(common.ErrBadRequest, fmt.Sprintf("unknown window %q, expected all, monthly or weekly", s))
}

// Since returns the lower bound for now, or nil for the all-time window.
func (w Window) Since(now time.Time) *time.Time {
	var since time.Time
	switch w {
	case WindowWeekly:
		since = now.AddDate(0, 0, -7)
	case WindowMonthly:
		since = now.AddDate(0, 0, -30)
	default:
		return nil
	}
	return &since
}

type LeaderboardService struct {
	submissionRepo repository.SubmissionRepository
	now            func() time.Time
}

func NewLeaderboardService(submissionRepo repository.SubmissionRepository) *LeaderboardService {
	return &LeaderboardService{submissionRepo: submissionRepo, now: time.Now}
}

// GetLeaderboard ranks every user by points, then solved count, then username.
// Ranks are 1-based positions; tied users still get distinct ranks.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, window Window) ([]model.LeaderboardEntry, error) {
	entries, err := s.submissionRepo.AggregateByUser(ctx, window.Since(s.now().UTC()))
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate leaderboard: %w", err)
	}
	rankEntries(entries)
	return entries, nil
}

func rankEntries(entries []model.LeaderboardEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.TotalPoints != b.TotalPoints {
			return a.TotalPoints > b.TotalPoints
		}
		if a.SolvedCount != b.SolvedCount {
			return a.SolvedCount > b.SolvedCount
		}
		return a.Username < b.Username
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
}

// GetUserStats reads the user's row off the all-time leaderboard.
func (s *LeaderboardService) GetUserStats(ctx context.Context, userID string) (*model.UserStats, error) {
	entries, err := s.GetLeaderboard(ctx, WindowAll)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.UserID == userID {
			rank := e.Rank
			return &model.UserStats{SolvedCount: e.SolvedCount, TotalPoints: e.TotalPoints, Rank: &rank}, nil
		}
	}
	return &model.UserStats{}, nil
}

// GetUserSolvedProblems lists the problem id of every submission, repeats included.
func (s *LeaderboardService) GetUserSolvedProblems(ctx context.Context, userID string) ([]string, error) {
	ids, err := s.submissionRepo.ListProblemIDsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list solved problems: %w", err)
	}
	return ids, nil
}
