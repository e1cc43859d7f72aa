package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/HSouheill/branchstock_backend/models"
	"github.com/HSouheill/branchstock_backend/repositories"
	"github.com/HSouheill/branchstock_backend/utils"
)

// RoleDirectory maps a uid to its role and home branch.
type RoleDirectory struct {
	users    repositories.UserRepository
	branches repositories.BranchRepository
	sessions SessionRevoker
	now      func() time.Time
}

// SessionRevoker ends live sessions that were opened under a user's old role.
type SessionRevoker interface {
	Disconnect(uid string) int
}

func NewRoleDirectory(users repositories.UserRepository, branches repositories.BranchRepository, sessions SessionRevoker) *RoleDirectory {
	return &RoleDirectory{users: users, branches: branches, sessions: sessions, now: time.Now}
}

func (d *RoleDirectory) revoke(uid string) {
	if d.sessions == nil {
		return
	}
	if n := d.sessions.Disconnect(uid); n > 0 {
		log.Info().Str("uid", uid).Int("connections", n).Msg("live sessions closed after role change")
	}
}

// ResolveRole derives a role from the user's flags. Worker wins when both
// flags are set.
func ResolveRole(u *models.User) models.Role {
	switch {
	case u.IsWorker:
		return models.RoleWorker
	case u.IsAdmin:
		return models.RoleAdmin
	}
	return models.RoleNone
}

func (d *RoleDirectory) GetRole(ctx context.Context, uid string) (*models.RoleInfo, error) {
	user, err := d.users.FindByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	info := &models.RoleInfo{UID: uid, Role: ResolveRole(user), IsBlocked: user.IsBlocked}
	if info.Role == models.RoleWorker {
		info.BranchID = user.BranchID
	}
	return info, nil
}

// SetRole assigns role to uid. A worker needs an existing branch; every
// other role clears the branch. Exactly one flag is left set.
func (d *RoleDirectory) SetRole(ctx context.Context, uid string, role models.Role, branchID string) error {
	if !role.Valid() {
		return newValidationError("role", "role must be one of admin, worker, none")
	}

	assignment := models.RoleAssignment{Role: role}
	switch role {
	case models.RoleWorker:
		branchID = strings.TrimSpace(branchID)
		if branchID == "" {
			return ErrBranchRequired
		}
		branch, err := d.branches.FindByID(ctx, branchID)
		if err != nil {
			return err
		}
		assignment.IsWorker = true
		assignment.BranchID = &branch.ID
		assignment.BranchName = &branch.Name
	case models.RoleAdmin:
		assignment.IsAdmin = true
	}

	if err := d.users.UpdateRole(ctx, uid, assignment); err != nil {
		return err
	}
	log.Info().Str("uid", uid).Str("role", string(role)).Str("branch", branchID).Msg("role updated")
	d.revoke(uid)
	return nil
}

// ToggleBlocked flips the user's blocked flag and returns the new value.
func (d *RoleDirectory) ToggleBlocked(ctx context.Context, uid string) (bool, error) {
	user, err := d.users.FindByID(ctx, uid)
	if err != nil {
		return false, err
	}
	blocked := !user.IsBlocked
	if err := d.users.SetBlocked(ctx, uid, blocked); err != nil {
		return false, err
	}
	d.revoke(uid)
	return blocked, nil
}

// EnsureProfile returns the user's document, creating it with no role on
// first sign-in.
func (d *RoleDirectory) EnsureProfile(ctx context.Context, uid, name, email, phone string) (*models.User, error) {
	existing, err := d.users.FindByID(ctx, uid)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	verr := &ValidationError{Fields: map[string]string{}}
	cleanEmail, eerr := utils.SanitizeEmail(email)
	if eerr != nil {
		verr.Fields["email"] = eerr.Error()
	}
	cleanPhone, perr := utils.SanitizePhone(phone)
	if perr != nil {
		verr.Fields["phoneNumber"] = perr.Error()
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	now := d.now()
	user := &models.User{
		UID:         uid,
		Name:        utils.SanitizeInput(name),
		Email:       cleanEmail,
		PhoneNumber: cleanPhone,
		Role:        models.RoleNone,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := d.users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			// Created by a concurrent first request.
			return d.users.FindByID(ctx, uid)
		}
		return nil, err
	}
	log.Info().Str("uid", uid).Str("email", cleanEmail).Msg("user profile created")
	return user, nil
}

func (d *RoleDirectory) GetUser(ctx context.Context, uid string) (*models.User, error) {
	return d.users.FindByID(ctx, uid)
}

func (d *RoleDirectory) ListWorkers(ctx context.Context) ([]models.User, error) {
	return d.users.ListWorkers(ctx)
}
