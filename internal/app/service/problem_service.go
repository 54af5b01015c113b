package service

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cp_tracker/internal/common"
	"cp_tracker/internal/domain/model"
	"cp_tracker/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

const (
	MinProblemPoints = 1
	MaxProblemPoints = 1000
)

type ProblemFilter string

const (
	FilterAll      ProblemFilter = "all"
	FilterSolved   ProblemFilter = "solved"
	FilterUnsolved ProblemFilter = "unsolved"
)

func ParseProblemFilter(s string) (ProblemFilter, error) {
	switch f := ProblemFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterSolved, FilterUnsolved:
		return f, nil
	}
	return "", common.UserError(common.ErrBadRequest, fmt.Sprintf("unknown filter %q, expected all, solved or unsolved", s))
}

// Matches /contest/{id}/problem/{index} and /problemset/problem/{id}/{index}.
var codeforcesProblemURL = regexp.MustCompile(`codeforces\.com/(?:contest/(\d+)/problem|problemset/problem/(\d+))/(\w+)`)

// ExtractProblemKey pulls (contest id, index) out of a contest or problemset URL.
func ExtractProblemKey(url string) (model.ProblemKey, bool) {
	m := codeforcesProblemURL.FindStringSubmatch(url)
	if m == nil {
		return model.ProblemKey{}, false
	}
	rawID := m[1]
	if rawID == "" {
		rawID = m[2]
	}
	contestID, err := strconv.Atoi(rawID)
	if err != nil {
		return model.ProblemKey{}, false
	}
	return model.ProblemKey{ContestID: contestID, Index: strings.ToUpper(m[3])}, true
}

type ProblemService struct {
	problemRepo repository.ProblemRepository
	db          *sql.DB
	log         *zap.Logger
}

func NewProblemService(problemRepo repository.ProblemRepository, db *sql.DB, log *zap.Logger) *ProblemService {
	return &ProblemService{problemRepo: problemRepo, db: db, log: log}
}

type CreateProblemRequest struct {
	Title          string `json:"title"`
	ProblemURL     string `json:"problem_url"`
	Points         *int   `json:"points,omitempty"`
	CFContestID    int    `json:"cf_contest_id"`
	CFProblemIndex string `json:"cf_problem_index"`
}

type CreateProblemResponse struct {
	Problem *model.Problem `json:"problem"`
	Message string         `json:"message"`
}

func (s *ProblemService) CreateProblem(ctx context.Context, adminID string, req CreateProblemRequest) (*CreateProblemResponse, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, common.UserError(common.ErrValidation, "Title is required.")
	}
	points := model.DefaultProblemPoints
	if req.Points != nil {
		points = *req.Points
	}
	if points < MinProblemPoints || points > MaxProblemPoints {
		return nil, common.UserError(common.ErrValidation, "Points must be between 1 and 1000.")
	}

	problem := &model.Problem{
		ID:     uuid.NewString(),
		Title:  title,
		Slug:   slug.Make(title),
		Points: points,
	}
	if adminID != "" {
		problem.CreatedByID = &adminID
	}

	url := strings.TrimSpace(req.ProblemURL)
	if url != "" {
		problem.ProblemURL = &url
	}
	if req.CFContestID > 0 {
		contestID := req.CFContestID
		problem.CFContestID = &contestID
	}
	if index := strings.ToUpper(strings.TrimSpace(req.CFProblemIndex)); index != "" {
		problem.CFProblemIndex = &index
	}
	// The URL only fills in the external id when no contest id was typed in.
	if url != "" && problem.CFContestID == nil {
		if key, ok := ExtractProblemKey(url); ok {
			problem.CFContestID = &key.ContestID
			problem.CFProblemIndex = &key.Index
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.problemRepo.CreateProblem(ctx, tx, problem); err != nil {
		return nil, common.Errorf("failed to create problem in DB: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}

	s.log.Info("problem created",
		zap.String("problem_id", problem.ID),
		zap.String("title", problem.Title),
		zap.Int("points", problem.Points),
		zap.String("created_by", adminID))
	return &CreateProblemResponse{
		Problem: problem,
		Message: fmt.Sprintf("Problem '%s' added with %d points!", problem.Title, problem.Points),
	}, nil
}

// DeleteProblem removes the problem only; its submissions stay behind.
func (s *ProblemService) DeleteProblem(ctx context.Context, problemID string) error {
	if err := s.problemRepo.DeleteProblem(ctx, problemID); err != nil {
		return err
	}
	s.log.Info("problem deleted", zap.String("problem_id", problemID))
	return nil
}

func (s *ProblemService) GetProblem(ctx context.Context, problemID string) (*model.Problem, error) {
	return s.problemRepo.FindProblemByID(ctx, problemID)
}

// ListProblems returns problems newest first, flagged solved for userID.
func (s *ProblemService) ListProblems(ctx context.Context, userID string, filter ProblemFilter) ([]model.Problem, error) {
	problems, err := s.problemRepo.ListProblemsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if filter == FilterAll || filter == "" {
		return problems, nil
	}

	wantSolved := filter == FilterSolved
	filtered := make([]model.Problem, 0, len(problems))
	for _, p := range problems {
		if p.Solved == wantSolved {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}
