package service

import (
	"context"
	"fmt"

	"verokai-pos/internal/model"
	"verokai-pos/internal/repository"

	"go.uber.org/zap"
)

// SeedAccessControl creates the default privileges and roles when missing and
// grants each role its default privileges. Existing rows are left untouched.
func SeedAccessControl(ctx context.Context, privileges repository.PrivilegeRepository, roles repository.RoleRepository) error {
	for _, p := range model.DefaultPrivileges {
		_, err := privileges.FindByCode(ctx, p.Code)
		if err == nil {
			continue
		}
		if !repository.IsNotFound(err) {
			return fmt.Errorf("find privilege %s: %w", p.Code, err)
		}
		p := p
		if err := privileges.Create(ctx, &p); err != nil {
			return fmt.Errorf("create privilege %s: %w", p.Code, err)
		}
	}

	all, err := privileges.FindAll(ctx)
	if err != nil {
		return err
	}

	for _, r := range model.DefaultRoles {
		role, err := roles.FindByCode(ctx, r.Code)
		if repository.IsNotFound(err) {
			r := r
			if err := roles.Create(ctx, &r); err != nil {
				return fmt.Errorf("create role %s: %w", r.Code, err)
			}
			role = &r
		} else if err != nil {
			return fmt.Errorf("find role %s: %w", r.Code, err)
		} else if len(role.Privileges) > 0 {
			continue
		}

		granted := all
		if codes := model.DefaultRolePrivileges[r.Code]; codes != nil {
			granted, err = privileges.FindByCodes(ctx, codes)
			if err != nil {
				return err
			}
		}
		if err := roles.ReplacePrivileges(ctx, role, granted); err != nil {
			return fmt.Errorf("grant role %s: %w", r.Code, err)
		}
	}
	return nil
}

// SeedAdmin creates the administrator account when no user has that email.
func SeedAdmin(ctx context.Context, users repository.UserRepository, roles repository.RoleRepository, email, password string) error {
	_, err := users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !repository.IsNotFound(err) {
		return err
	}

	role, err := roles.FindByCode(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("find admin role: %w", err)
	}

	admin := &model.User{
		Email:      email,
		FullName:   "Administrador",
		RoleID:     &role.ID,
		IsActive:   true,
		Privileges: role.Privileges,
	}
	admin.CreatedBy = "system"
	admin.UpdatedBy = "system"
	if err := admin.SetPassword(password); err != nil {
		return err
	}
	if err := users.Create(ctx, admin); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	zap.L().Info("default administrator created", zap.String("email", email))
	return nil
}
