package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"cp_tracker/internal/common"
	"cp_tracker/internal/common/security"
	"cp_tracker/internal/domain/model"
	"cp_tracker/internal/domain/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

const (
	MsgRegistered      = "Registration successful! Please log in."
	MsgPasswordChanged = "Password changed successfully!"
	MsgHandleUpdated   = "Codeforces handle updated!"
	MsgHandleCleared   = "Handle cleared."
	MsgLoggedOut       = "Logged out."
)

type AuthService struct {
	userRepo repository.UserRepository
	sessions repository.SessionRepository
	log      *zap.Logger
}

func NewAuthService(userRepo repository.UserRepository, sessions repository.SessionRepository, log *zap.Logger) *AuthService {
	return &AuthService{userRepo: userRepo, sessions: sessions, log: log}
}

type RegisterRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User    *model.User    `json:"user"`
	Session *model.Session `json:"session"`
	Token   string         `json:"token"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

type UpdateHandleRequest struct {
	Handle string `json:"cf_handle"`
}

var errInvalidCredentials = common.UserError(common.ErrUnauthorized, "Invalid username or password.")

// Register creates a regular (non-admin) account.
func (s *AuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	if utf8.RuneCountInString(username) < MinUsernameLength {
		return nil, common.UserError(common.ErrValidation, "Username must be at least 3 characters.")
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, common.UserError(common.ErrValidation, "Password must be at least 6 characters.")
	}

	hashedPassword, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       username,
		HashedPassword: hashedPassword,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, common.UserError(common.ErrConflict, "Username already taken.")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID), zap.String("username", user.Username))
	user.HashedPassword = ""
	return user, nil
}

// Login verifies credentials and issues a signed token carrying the session.
// Unknown users and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !security.CheckPasswordHash(password, user.HashedPassword) {
		return nil, errInvalidCredentials
	}

	token, session, err := security.IssueToken(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = ""
	return &AuthResponse{User: user, Session: session, Token: token}, nil
}

// Logout revokes the session's token until it would have expired on its own.
func (s *AuthService) Logout(ctx context.Context, session *model.Session) error {
	if !session.IsLoggedIn() {
		return nil
	}
	if err := s.sessions.Revoke(ctx, session.ID, time.Until(session.ExpiresAt)); err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	return nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if utf8.RuneCountInString(newPassword) < MinPasswordLength {
		return common.UserError(common.ErrValidation, "New password must be at least 6 characters.")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.UserError(common.ErrNotFound, "User not found.")
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	if !security.CheckPasswordHash(currentPassword, user.HashedPassword) {
		return common.UserError(common.ErrValidation, "Current password is incorrect.")
	}

	hashedPassword, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// UpdateExternalHandle stores the trimmed handle; an empty one clears the link.
func (s *AuthService) UpdateExternalHandle(ctx context.Context, userID, handle string) error {
	var stored *string
	if h := strings.TrimSpace(handle); h != "" {
		stored = &h
	}
	if err := s.userRepo.UpdateCFHandle(ctx, userID, stored); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.UserError(common.ErrNotFound, "User not found.")
		}
		return fmt.Errorf("failed to update handle: %w", err)
	}
	return nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.HashedPassword = ""
	return user, nil
}

// EnsureAdmin creates the bootstrap administrator unless the username is already taken.
// It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) (bool, error) {
	_, err := s.userRepo.FindByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}

	hashedPassword, err := security.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}
	admin := &model.User{
		ID:             uuid.NewString(),
		Username:       username,
		HashedPassword: hashedPassword,
		IsAdmin:        true,
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, common.ErrConflict) {
			return false, nil // created concurrently
		}
		return false, fmt.Errorf("failed to create admin: %w", err)
	}

	s.log.Warn("seeded default administrator, change its password", zap.String("username", username))
	return true, nil
}
