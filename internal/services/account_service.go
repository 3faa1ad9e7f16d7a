// Package services orchestrates writes across the store, the auth
// collaborator and the optional event stream. Read-side aggregation lives
// in the reports engine.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// ErrInvalidCredentials is returned for both unknown logins and wrong
// passwords so the two cases stay indistinguishable to callers.
var ErrInvalidCredentials = errors.New("invalid credentials")

type AccountService struct {
	store      *storage.Repository
	tokens     *auth.Manager
	bcryptCost int
}

func NewAccountService(store *storage.Repository, tokens *auth.Manager, bcryptCost int) *AccountService {
	return &AccountService{store: store, tokens: tokens, bcryptCost: bcryptCost}
}

// Register creates an account, seeds the default category set and issues a
// bearer token.
func (s *AccountService) Register(ctx context.Context, username, email, password string) (core.User, string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return core.User{}, "", core.Validationf("All fields are required")
	}
	if len(password) < 6 {
		return core.User{}, "", core.Validationf("Password must be at least 6 characters")
	}

	taken, err := s.store.UserExists(ctx, username, email)
	if err != nil {
		return core.User{}, "", core.Upstream("check user", err)
	}
	if taken {
		return core.User{}, "", core.Conflictf("Username or email already exists")
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return core.User{}, "", core.Upstream("hash password", err)
	}

	user, err := s.store.CreateUser(ctx, username, email, hash)
	if err != nil {
		return core.User{}, "", core.Upstream("create user", err)
	}

	if err := s.store.SeedDefaultCategories(ctx, user.ID); err != nil {
		return core.User{}, "", core.Upstream("seed default categories", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return core.User{}, "", core.Upstream("issue token", err)
	}
	return user, token, nil
}

// Login verifies credentials against the stored hash and issues a token.
func (s *AccountService) Login(ctx context.Context, login, password string) (core.User, string, error) {
	if strings.TrimSpace(login) == "" || password == "" {
		return core.User{}, "", core.Validationf("Username and password are required")
	}

	user, err := s.store.GetUserByLogin(ctx, login)
	if err != nil {
		if core.KindOf(err) == core.KindNotFound {
			return core.User{}, "", ErrInvalidCredentials
		}
		return core.User{}, "", core.Upstream("lookup user", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return core.User{}, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return core.User{}, "", core.Upstream("issue token", err)
	}
	return user, token, nil
}

// Profile loads the account behind an authenticated identity.
func (s *AccountService) Profile(ctx context.Context, userID int64) (core.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if core.KindOf(err) == core.KindNotFound {
			return core.User{}, err
		}
		return core.User{}, core.Upstream(fmt.Sprintf("load profile %d", userID), err)
	}
	return user, nil
}
