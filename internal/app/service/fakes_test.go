package service

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"cp_tracker/internal/common/security"
	"cp_tracker/internal/domain/model"
	"cp_tracker/internal/platform/config"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestMain(m *testing.M) {
	config.AppConfig = &config.Config{JWTKey: []byte("test-secret"), JWTExp: time.Hour}
	security.InitJWT()
	os.Exit(m.Run())
}

func setupMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open sqlmock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type fakeJudge struct {
	accepted map[model.ProblemKey]struct{}
	err      error
	calls    int
}

func (f *fakeJudge) GetAcceptedProblems(_ context.Context, _ string) (map[model.ProblemKey]struct{}, error) {
	f.calls++
	return f.accepted, f.err
}

func (f *fakeJudge) ValidateHandle(_ context.Context, handle string) (bool, string) {
	if f.err != nil {
		return false, "Handle not found on Codeforces."
	}
	return true, "Found: " + handle + " (Rating: Unrated, Rank: unknown)"
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
