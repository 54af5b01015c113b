// Package repotest provides in-memory implementations of the repository
// interfaces for tests. They ignore transactions.
package repotest

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"cp_tracker/internal/common"
	"cp_tracker/internal/domain/model"
	"cp_tracker/internal/domain/repository"
)

var (
	_ repository.UserRepository       = (*Users)(nil)
	_ repository.ProblemRepository    = (*Problems)(nil)
	_ repository.SubmissionRepository = (*Submissions)(nil)
	_ repository.SessionRepository    = (*Sessions)(nil)
	_ repository.LockRepository       = (*Locks)(nil)
)

// Store links the three tables the way the postgres schema does: submissions
// see problem points, problems see who solved them.
type Store struct {
	Users       *Users
	Problems    *Problems
	Submissions *Submissions
}

func NewStore() *Store {
	users := &Users{users: map[string]*model.User{}}
	problems := &Problems{}
	subs := &Submissions{users: users, problems: problems}
	problems.subs = subs
	return &Store{Users: users, Problems: problems, Submissions: subs}
}

type Users struct {
	mu    sync.Mutex
	users map[string]*model.User
	Err   error
}

func (f *Users) Add(u model.User) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.users == nil {
		f.users = map[string]*model.User{}
	}
	f.users[u.ID] = &u
	return &u
}

func (f *Users) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

func (f *Users) snapshot() []model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out
}

func (f *Users) Create(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return f.Err
	}
	if f.users == nil {
		f.users = map[string]*model.User{}
	}
	for _, u := range f.users {
		if u.Username == user.Username {
			return common.ErrConflict
		}
	}
	user.CreatedAt = time.Now()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *Users) FindByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *Users) FindByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *Users) UpdatePassword(_ context.Context, id, hashedPassword string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.HashedPassword = hashedPassword
	return nil
}

func (f *Users) UpdateCFHandle(_ context.Context, id string, handle *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.CFHandle = handle
	return nil
}

type Problems struct {
	mu       sync.Mutex
	problems []model.Problem
	subs     *Submissions
	Err      error
}

func (f *Problems) Add(p model.Problem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.problems = append(f.problems, p)
}

func (f *Problems) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.problems)
}

func (f *Problems) points(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.problems {
		if p.ID == id {
			return p.Points
		}
	}
	return 0
}

func (f *Problems) CreateProblem(_ context.Context, _ *sql.Tx, p *model.Problem) error {
	if f.Err != nil {
		return f.Err
	}
	p.CreatedAt = time.Now()
	f.Add(*p)
	return nil
}

func (f *Problems) DeleteProblem(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.problems {
		if p.ID == id {
			f.problems = append(f.problems[:i], f.problems[i+1:]...)
			return nil
		}
	}
	return common.ErrNotFound
}

func (f *Problems) FindProblemByID(_ context.Context, id string) (*model.Problem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.problems {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

// ListProblemsForUser returns problems newest first, i.e. in reverse insertion order.
func (f *Problems) ListProblemsForUser(_ context.Context, userID string) ([]model.Problem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Problem, 0, len(f.problems))
	for i := len(f.problems) - 1; i >= 0; i-- {
		p := f.problems[i]
		if f.subs != nil {
			p.Solved = f.subs.Has(userID, p.ID)
		}
		out = append(out, p)
	}
	return out, nil
}

func (f *Problems) ListProblemsWithExternalKey(_ context.Context, _ *sql.Tx) ([]model.Problem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	var out []model.Problem
	for _, p := range f.problems {
		if p.CFContestID != nil && p.CFProblemIndex != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

type Submissions struct {
	mu        sync.Mutex
	subs      []model.Submission
	users     *Users
	problems  *Problems
	CreateErr error
}

func (f *Submissions) Add(subs ...model.Submission) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs = append(f.subs, subs...)
}

func (f *Submissions) Has(userID, problemID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subs {
		if s.UserID == userID && s.ProblemID == problemID {
			return true
		}
	}
	return false
}

func (f *Submissions) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *Submissions) CreateSubmission(_ context.Context, _ *sql.Tx, sub *model.Submission) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return f.CreateErr
	}
	f.subs = append(f.subs, *sub)
	return nil
}

func (f *Submissions) SubmissionExists(_ context.Context, _ *sql.Tx, userID, problemID string) (bool, error) {
	return f.Has(userID, problemID), nil
}

func (f *Submissions) ListProblemIDsByUser(_ context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := []string{}
	for _, s := range f.subs {
		if s.UserID == userID {
			ids = append(ids, s.ProblemID)
		}
	}
	return ids, nil
}

// AggregateByUser mirrors the outer join: every user appears, submissions of
// deleted problems count with zero points.
func (f *Submissions) AggregateByUser(_ context.Context, since *time.Time) ([]model.LeaderboardEntry, error) {
	users := f.users.snapshot()

	f.mu.Lock()
	subs := append([]model.Submission(nil), f.subs...)
	f.mu.Unlock()

	entries := make([]model.LeaderboardEntry, 0, len(users))
	for _, u := range users {
		e := model.LeaderboardEntry{UserID: u.ID, Username: u.Username}
		for _, s := range subs {
			if s.UserID != u.ID || (since != nil && s.SolvedAt.Before(*since)) {
				continue
			}
			e.SolvedCount++
			e.TotalPoints += f.problems.points(s.ProblemID)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

type Sessions struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
}

func (f *Sessions) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.revoked == nil {
		f.revoked = map[string]time.Duration{}
	}
	f.revoked[tokenID] = ttl
	return nil
}

func (f *Sessions) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	_, ok := f.TTL(tokenID)
	return ok, nil
}

// TTL returns the lifetime a revocation was stored with.
func (f *Sessions) TTL(tokenID string) (time.Duration, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ttl, ok := f.revoked[tokenID]
	return ttl, ok
}

type Locks struct {
	mu       sync.Mutex
	held     map[string]string
	Released int
}

func (f *Locks) Acquire(_ context.Context, key string, _ time.Duration) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held == nil {
		f.held = map[string]string{}
	}
	if _, ok := f.held[key]; ok {
		return "", false, nil
	}
	f.held[key] = "token-" + key
	return f.held[key], true, nil
}

func (f *Locks) Release(_ context.Context, key, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held[key] == token {
		delete(f.held, key)
		f.Released++
	}
	return nil
}
