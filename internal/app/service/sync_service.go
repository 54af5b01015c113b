package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"cp_tracker/internal/common"
	"cp_tracker/internal/domain/model"
	"cp_tracker/internal/domain/repository"

	"go.uber.org/zap"
)

const (
	MsgNoHandle   = "No Codeforces handle set."
	MsgNoAccepted = "No accepted submissions found or API error."
)

// Judge is the slice of the Codeforces client the services depend on.
type Judge interface {
	GetAcceptedProblems(ctx context.Context, handle string) (map[model.ProblemKey]struct{}, error)
	ValidateHandle(ctx context.Context, handle string) (bool, string)
}

type SyncResult struct {
	Synced  int    `json:"synced"`
	Message string `json:"message"`
}

type SyncService struct {
	db             *sql.DB
	userRepo       repository.UserRepository
	problemRepo    repository.ProblemRepository
	submissionRepo repository.SubmissionRepository
	locks          repository.LockRepository
	judge          Judge
	lockTTL        time.Duration
	log            *zap.Logger
}

func NewSyncService(
	db *sql.DB,
	userRepo repository.UserRepository,
	problemRepo repository.ProblemRepository,
	submissionRepo repository.SubmissionRepository,
	locks repository.LockRepository,
	judge Judge,
	lockTTL time.Duration,
	log *zap.Logger,
) *SyncService {
	return &SyncService{
		db:             db,
		userRepo:       userRepo,
		problemRepo:    problemRepo,
		submissionRepo: submissionRepo,
		locks:          locks,
		judge:          judge,
		lockTTL:        lockTTL,
		log:            log,
	}
}

func syncLockKey(userID string) string {
	return "sync_lock:" + userID
}

// SyncOwnProgress syncs against the handle stored on the user's profile.
func (s *SyncService) SyncOwnProgress(ctx context.Context, userID string) (SyncResult, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return SyncResult{}, fmt.Errorf("failed to find user: %w", err)
	}
	return s.SyncUserProgress(ctx, userID, user.Handle())
}

// SyncUserProgress records a submission for every catalogued problem that
// handle has an accepted verdict on and userID has not solved yet. All inserts
// commit together or not at all; repeated calls add nothing new.
func (s *SyncService) SyncUserProgress(ctx context.Context, userID, handle string) (SyncResult, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return SyncResult{Message: MsgNoHandle}, nil
	}

	key := syncLockKey(userID)
	token, ok, err := s.locks.Acquire(ctx, key, s.lockTTL)
	if err != nil {
		return SyncResult{}, fmt.Errorf("failed to acquire sync lock: %w", err)
	}
	if !ok {
		return SyncResult{}, common.UserError(common.ErrConflict, "Sync already in progress.")
	}
	defer func() {
		if err := s.locks.Release(context.WithoutCancel(ctx), key, token); err != nil {
			s.log.Warn("failed to release sync lock", zap.String("user_id", userID), zap.Error(err))
		}
	}()

	accepted, err := s.judge.GetAcceptedProblems(ctx, handle)
	if err != nil || len(accepted) == 0 {
		return SyncResult{Message: MsgNoAccepted}, nil
	}

	synced, err := s.reconcile(ctx, userID, accepted)
	if err != nil {
		s.log.Error("sync rolled back", zap.String("user_id", userID), zap.String("handle", handle), zap.Error(err))
		return SyncResult{}, err
	}

	s.log.Info("sync finished",
		zap.String("user_id", userID),
		zap.String("handle", handle),
		zap.Int("accepted", len(accepted)),
		zap.Int("synced", synced))
	return SyncResult{Synced: synced, Message: fmt.Sprintf("Synced %d new solved problems!", synced)}, nil
}

func (s *SyncService) reconcile(ctx context.Context, userID string, accepted map[model.ProblemKey]struct{}) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	problems, err := s.problemRepo.ListProblemsWithExternalKey(ctx, tx)
	if err != nil {
		return 0, common.Errorf("failed to load problems: %w", err)
	}

	now := time.Now().UTC()
	synced := 0
	for i := range problems {
		k, ok := problems[i].ExternalKey()
		if !ok {
			continue
		}
		if _, hit := accepted[k]; !hit {
			continue
		}
		created, err := insertIfAbsent(ctx, tx, s.submissionRepo, userID, problems[i].ID, now)
		if err != nil {
			return 0, err
		}
		if created {
			synced++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, common.Errorf("failed to commit transaction: %w", err)
	}
	return synced, nil
}
