package service

import (
	"context"
	"database/sql"
	"time"

	"cp_tracker/internal/common"
	"cp_tracker/internal/domain/model"
	"cp_tracker/internal/domain/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const MsgMarkedSolved = "Marked as solved!"
const MsgAlreadySolved = "Already solved."

type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	problemRepo    repository.ProblemRepository
	db             *sql.DB
	log            *zap.Logger
}

func NewSubmissionService(
	subRepo repository.SubmissionRepository,
	probRepo repository.ProblemRepository,
	db *sql.DB,
	log *zap.Logger,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: subRepo,
		problemRepo:    probRepo,
		db:             db,
		log:            log,
	}
}

// MarkSolved records a manual completion unless the user already has one for
// the problem. It reports whether a record was created.
func (s *SubmissionService) MarkSolved(ctx context.Context, userID, problemID string) (bool, error) {
	if _, err := s.problemRepo.FindProblemByID(ctx, problemID); err != nil {
		return false, common.Errorf("problem not found: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	created, err := insertIfAbsent(ctx, tx, s.submissionRepo, userID, problemID, time.Now().UTC())
	if err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, common.Errorf("failed to commit transaction: %w", err)
	}

	if created {
		s.log.Info("problem marked solved", zap.String("user_id", userID), zap.String("problem_id", problemID))
	}
	return created, nil
}

// insertIfAbsent is the one duplicate check shared by manual marking and sync.
func insertIfAbsent(ctx context.Context, tx *sql.Tx, repo repository.SubmissionRepository, userID, problemID string, solvedAt time.Time) (bool, error) {
	exists, err := repo.SubmissionExists(ctx, tx, userID, problemID)
	if err != nil {
		return false, common.Errorf("failed to check submission: %w", err)
	}
	if exists {
		return false, nil
	}

	sub := &model.Submission{
		ID:        uuid.NewString(),
		UserID:    userID,
		ProblemID: problemID,
		SolvedAt:  solvedAt,
	}
	if err := repo.CreateSubmission(ctx, tx, sub); err != nil {
		return false, common.Errorf("failed to create submission: %w", err)
	}
	return true, nil
}
