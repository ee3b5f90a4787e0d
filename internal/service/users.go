// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/heavyfix/internal/auth"
	"github.com/olegiv/heavyfix/internal/authz"
	"github.com/olegiv/heavyfix/internal/model"
	"github.com/olegiv/heavyfix/internal/paging"
	"github.com/olegiv/heavyfix/internal/result"
	"github.com/olegiv/heavyfix/internal/store"
	"github.com/olegiv/heavyfix/internal/util"
)

// RegisterInput is the sign-up form.
type RegisterInput struct {
	Name            string `form:"name" validate:"required,max=100"`
	Email           string `form:"email" validate:"required,email,max=254"`
	Password        string `form:"password" validate:"required,min=8,max=128"`
	PasswordConfirm string `form:"password_confirm" validate:"required,eqfield=Password"`
}

// UserService manages accounts and sign-in.
type UserService struct {
	db      *sql.DB
	queries *store.Queries
	events  *EventService
	logger  *slog.Logger
	now     func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, events *EventService, logger *slog.Logger) *UserService {
	return &UserService{
		db:      db,
		queries: store.New(db),
		events:  events,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Get returns a user by id. Users may read themselves; reading anyone
// else requires ManageUsers.
func (s *UserService) Get(ctx context.Context, p authz.Principal, id int64) (store.User, error) {
	if !p.OwnsOr(id, authz.ManageUsers) {
		if err := p.Require(authz.ManageUsers); err != nil {
			return store.User{}, err
		}
	}
	u, err := s.queries.GetUserByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, notFound("user")
	}
	return u, dbError(err)
}

// List returns users ordered by created_at DESC, id DESC.
func (s *UserService) List(ctx context.Context, p authz.Principal, params paging.Params) (*Page[store.User], error) {
	if err := p.Require(authz.ManageUsers); err != nil {
		return nil, err
	}
	total, err := s.queries.CountUsers(ctx)
	if err != nil {
		return nil, dbError(err)
	}
	items, err := s.queries.ListUsers(ctx, store.ListUsersParams{
		Limit:  int64(params.Limit()),
		Offset: int64(params.Offset()),
	})
	if err != nil {
		return nil, dbError(err)
	}
	return &Page[store.User]{Items: items, Total: total, Page: params.Page, PageSize: params.PageSize}, nil
}

// Count returns the number of users.
func (s *UserService) Count(ctx context.Context, p authz.Principal) (int64, error) {
	if err := p.Require(authz.ManageUsers); err != nil {
		return 0, err
	}
	n, err := s.queries.CountUsers(ctx)
	return n, dbError(err)
}

// ChangeRole sets a user's role. Admins cannot change their own role and
// the last admin cannot be demoted.
func (s *UserService) ChangeRole(ctx context.Context, p authz.Principal, id int64, role string) (store.User, error) {
	if err := p.Require(authz.ManageUsers); err != nil {
		return store.User{}, err
	}
	if !model.ValidRole(role) {
		return store.User{}, result.Validation(map[string]string{"role": "Must be one of: admin user"})
	}
	if id == p.UserID {
		return store.User{}, result.New(result.CodeValidation, "you cannot change your own role")
	}

	target, err := s.queries.GetUserByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, notFound("user")
	}
	if err != nil {
		return store.User{}, dbError(err)
	}
	if target.Role == role {
		return target, nil
	}
	if err := s.ensureNotLastAdmin(ctx, target); err != nil {
		return store.User{}, err
	}

	updated, err := s.queries.UpdateUserRole(ctx, store.UpdateUserRoleParams{Role: role, UpdatedAt: s.now(), ID: id})
	if err != nil {
		return store.User{}, dbError(err)
	}
	s.events.LogInfo(ctx, model.EventCategoryUser, "User role changed", p.UserID, map[string]any{
		"target_id": id, "from": target.Role, "to": role,
	})
	return updated, nil
}

// Delete removes a user. Admins cannot delete themselves and the last
// admin cannot be deleted.
func (s *UserService) Delete(ctx context.Context, p authz.Principal, id int64) error {
	if err := p.Require(authz.ManageUsers); err != nil {
		return err
	}
	if id == p.UserID {
		return result.New(result.CodeValidation, "you cannot delete your own account")
	}
	target, err := s.queries.GetUserByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return notFound("user")
	}
	if err != nil {
		return dbError(err)
	}
	if err := s.ensureNotLastAdmin(ctx, target); err != nil {
		return err
	}
	if err := s.queries.DeleteUser(ctx, id); err != nil {
		return dbError(err)
	}
	s.events.LogInfo(ctx, model.EventCategoryUser, "User deleted", p.UserID, map[string]any{
		"target_id": id, "email": target.Email,
	})
	return nil
}

func (s *UserService) ensureNotLastAdmin(ctx context.Context, target store.User) error {
	if target.Role != model.RoleAdmin {
		return nil
	}
	admins, err := s.queries.CountUsersByRole(ctx, model.RoleAdmin)
	if err != nil {
		return dbError(err)
	}
	if admins <= 1 {
		return result.New(result.CodeValidation, "the last admin cannot be removed")
	}
	return nil
}

// Register creates a user account with the user role.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (store.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return store.User{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return store.User{}, result.Wrap(result.CodeServer, err)
	}
	now := s.now()
	u, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		Email:        in.Email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		Name:         in.Name,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return store.User{}, dbError(err)
	}
	s.events.LogInfo(ctx, model.EventCategoryAuth, "User registered", u.ID, map[string]any{"email": u.Email})
	return u, nil
}

// Authenticate checks email and password. Every failure, including an
// unknown email, is the same Auth error. Hashes made with outdated
// parameters are upgraded on success.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (store.User, error) {
	invalid := result.New(result.CodeAuth, "invalid email or password")

	u, err := s.queries.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, invalid
	}
	if err != nil {
		return store.User{}, dbError(err)
	}

	ok, err := auth.CheckPassword(password, u.PasswordHash)
	if err != nil && !errors.Is(err, auth.ErrNoPassword) {
		s.logger.Warn("stored password hash is unreadable", "user_id", u.ID, "error", err)
	}
	if !ok {
		return store.User{}, invalid
	}

	if auth.NeedsRehash(u.PasswordHash) {
		if hash, herr := auth.HashPassword(password); herr == nil {
			if uerr := s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{
				PasswordHash: hash, UpdatedAt: s.now(), ID: u.ID,
			}); uerr != nil {
				s.logger.Warn("failed to upgrade password hash", "user_id", u.ID, "error", uerr)
			}
		}
	}
	s.touchLogin(ctx, u.ID)
	return u, nil
}

func (s *UserService) touchLogin(ctx context.Context, id int64) {
	err := s.queries.UpdateUserLastLogin(ctx, store.UpdateUserLastLoginParams{
		LastLoginAt: util.NullTimeFromValue(s.now()),
		ID:          id,
	})
	if err != nil {
		s.logger.Warn("failed to update last login", "user_id", id, "error", err)
	}
}

// ResolveOAuth finds or creates the account for an external identity:
// an existing link wins, then a user with the same email (which gets
// linked), then a new user-role account.
func (s *UserService) ResolveOAuth(ctx context.Context, id auth.Identity) (store.User, error) {
	if id.Provider == "" || id.Subject == "" {
		return store.User{}, result.New(result.CodeAuth, "incomplete oauth identity")
	}

	link, err := s.queries.GetOAuthIdentity(ctx, store.GetOAuthIdentityParams{Provider: id.Provider, Subject: id.Subject})
	switch {
	case err == nil:
		u, uerr := s.queries.GetUserByID(ctx, link.UserID)
		if uerr != nil {
			return store.User{}, dbError(uerr)
		}
		s.touchLogin(ctx, u.ID)
		return u, nil
	case !errors.Is(err, sql.ErrNoRows):
		return store.User{}, dbError(err)
	}

	email := normalizeEmail(id.Email)
	if email == "" {
		return store.User{}, result.New(result.CodeAuth, "oauth provider did not return an email")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return store.User{}, dbError(err)
	}
	defer func() { _ = tx.Rollback() }()
	qtx := s.queries.WithTx(tx)

	now := s.now()
	u, err := qtx.GetUserByEmail(ctx, email)
	created := false
	if errors.Is(err, sql.ErrNoRows) {
		name := strings.TrimSpace(id.Name)
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}
		u, err = qtx.CreateUser(ctx, store.CreateUserParams{
			Email: email, Role: model.RoleUser, Name: name, CreatedAt: now, UpdatedAt: now,
		})
		created = true
	}
	if err != nil {
		return store.User{}, dbError(err)
	}

	if err := qtx.CreateOAuthIdentity(ctx, store.CreateOAuthIdentityParams{
		Provider: id.Provider, Subject: id.Subject, UserID: u.ID, CreatedAt: now,
	}); err != nil {
		return store.User{}, dbError(err)
	}
	if err := tx.Commit(); err != nil {
		return store.User{}, dbError(fmt.Errorf("committing oauth link: %w", err))
	}

	msg := "OAuth identity linked"
	if created {
		msg = "User registered via OAuth"
	}
	s.events.LogInfo(ctx, model.EventCategoryAuth, msg, u.ID, map[string]any{"provider": id.Provider})
	s.touchLogin(ctx, u.ID)
	return u, nil
}
