package security

import (
	"encoding/json"
	"errors"
	"time"

	"cp_tracker/internal/domain/model"
	"cp_tracker/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var TokenAuth *jwtauth.JWTAuth

func InitJWT() {
	TokenAuth = jwtauth.New("HS256", config.AppConfig.JWTKey, nil)
}

// IssueToken signs a token carrying the identity marker of a freshly logged-in user.
func IssueToken(userID, username string, isAdmin bool) (string, *model.Session, error) {
	now := time.Now()
	session := &model.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Username:  username,
		IsAdmin:   isAdmin,
		ExpiresAt: now.Add(config.AppConfig.JWTExp).Truncate(time.Second),
	}
	claims := jwt.MapClaims{
		"jti":      session.ID,
		"user_id":  session.UserID,
		"username": session.Username,
		"role":     session.Role(),
		"exp":      session.ExpiresAt.Unix(),
		"iat":      now.Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	if err != nil {
		return "", nil, err
	}
	return tokenString, session, nil
}

// SessionFromClaims rebuilds the identity marker from verified token claims.
func SessionFromClaims(claims jwt.MapClaims) (*model.Session, error) {
	userID, err := GetUserIDFromClaims(claims)
	if err != nil {
		return nil, err
	}
	role, err := GetUserRoleFromClaims(claims)
	if err != nil {
		return nil, err
	}
	tokenID, ok := claims["jti"].(string)
	if !ok || tokenID == "" {
		return nil, errors.New("jti claim is missing or not a string")
	}
	username, _ := claims["username"].(string)

	return &model.Session{
		ID:        tokenID,
		UserID:    userID,
		Username:  username,
		IsAdmin:   role == model.RoleAdmin,
		ExpiresAt: expiryFromClaims(claims),
	}, nil
}

func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}

func GetUserRoleFromClaims(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}

// jwtauth hands back "exp" as time.Time; raw claim maps carry numbers.
func expiryFromClaims(claims jwt.MapClaims) time.Time {
	switch exp := claims["exp"].(type) {
	case time.Time:
		return exp
	case float64:
		return time.Unix(int64(exp), 0)
	case int64:
		return time.Unix(exp, 0)
	case json.Number:
		if v, err := exp.Int64(); err == nil {
			return time.Unix(v, 0)
		}
	}
	return time.Time{}
}
