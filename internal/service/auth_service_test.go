package service

import (
	"context"
	"testing"
	"time"

	"verokai-pos/internal/model"
	"verokai-pos/internal/repository"
	"verokai-pos/internal/testutil"
	"verokai-pos/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type accessFixture struct {
	users UserService
	auth  *authService
	roles repository.RoleRepository
	repo  repository.UserRepository
}

func newAccess(t *testing.T) *accessFixture {
	t.Helper()
	db := testutil.NewDB(t)
	ctx := context.Background()
	privileges := repository.NewPrivilegeRepo(db)
	roles := repository.NewRoleRepo(db)
	users := repository.NewUserRepo(db)

	require.NoError(t, SeedAccessControl(ctx, privileges, roles))
	require.NoError(t, SeedAdmin(ctx, users, roles, "admin@verokai.local", "admin123"))

	auth := NewAuthService(users, jwt.NewManager("secret", time.Hour), &recordingPublisher{}, 30*time.Minute).(*authService)
	return &accessFixture{
		users: NewUserService(users, privileges, roles),
		auth:  auth,
		roles: roles,
		repo:  users,
	}
}

func TestSeedAccessControl(t *testing.T) {
	f := newAccess(t)
	ctx := context.Background()

	admin, err := f.roles.FindByCode(ctx, model.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, admin.Privileges, len(model.DefaultPrivileges))

	cashierRole, err := f.roles.FindByCode(ctx, model.RoleCashier)
	require.NoError(t, err)
	codes := make([]string, 0, len(cashierRole.Privileges))
	for _, p := range cashierRole.Privileges {
		codes = append(codes, p.Code)
	}
	assert.ElementsMatch(t, model.DefaultRolePrivileges[model.RoleCashier], codes)
}

func TestLoginAndAuthenticate(t *testing.T) {
	f := newAccess(t)
	ctx := context.Background()

	_, err := f.auth.Login(ctx, "admin@verokai.local", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, "nobody@verokai.local", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	res, err := f.auth.Login(ctx, "ADMIN@verokai.local", "admin123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, model.RoleAdmin, res.Role.Code)
	assert.Contains(t, res.Privileges, model.PrivPurchaseCreate)

	user, err := f.auth.Authenticate(ctx, res.Token)
	require.NoError(t, err)
	assert.True(t, user.HasPrivilege(model.PrivSaleCreate))

	t.Run("second login replaces the first session", func(t *testing.T) {
		again, err := f.auth.Login(ctx, "admin@verokai.local", "admin123")
		require.NoError(t, err)
		_, err = f.auth.Authenticate(ctx, res.Token)
		assert.ErrorIs(t, err, ErrSessionReplaced)
		res = again
	})

	t.Run("idle session times out", func(t *testing.T) {
		f.auth.now = func() time.Time { return time.Now().Add(time.Hour) }
		defer func() { f.auth.now = time.Now }()
		_, err := f.auth.Authenticate(ctx, res.Token)
		assert.ErrorIs(t, err, ErrSessionTimeout)
	})

	t.Run("heartbeat keeps the session alive", func(t *testing.T) {
		require.NoError(t, f.auth.Heartbeat(ctx, user.ID))
		v, err := f.auth.ValidateToken(ctx, res.Token)
		require.NoError(t, err)
		assert.Equal(t, "admin@verokai.local", v.User.Email)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := f.auth.Authenticate(ctx, "not-a-token")
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})
}

func TestResetPassword(t *testing.T) {
	f := newAccess(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.auth.ResetPassword(ctx, "admin@verokai.local", "bad", "nueva123"), ErrWrongPassword)
	assert.True(t, IsValidation(f.auth.ResetPassword(ctx, "admin@verokai.local", "admin123", "123")))
	require.NoError(t, f.auth.ResetPassword(ctx, "admin@verokai.local", "admin123", "nueva123"))

	_, err := f.auth.Login(ctx, "admin@verokai.local", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.auth.Login(ctx, "admin@verokai.local", "nueva123")
	assert.NoError(t, err)
}

func TestUserService(t *testing.T) {
	f := newAccess(t)
	ctx := context.Background()
	cashierRole, err := f.roles.FindByCode(ctx, model.RoleCashier)
	require.NoError(t, err)
	warehouse, err := f.roles.FindByCode(ctx, model.RoleWarehouse)
	require.NoError(t, err)

	created, err := f.users.CreateUser(ctx, &CreateUserRequest{
		Email: "Caja@Verokai.local", Password: "caja123", FullName: "Caja 1", RoleID: cashierRole.ID,
	}, "admin")
	require.NoError(t, err)
	assert.Equal(t, "caja@verokai.local", created.Email)
	assert.True(t, created.HasPrivilege(model.PrivSaleCreate))
	assert.False(t, created.HasPrivilege(model.PrivPurchaseCreate))

	_, err = f.users.CreateUser(ctx, &CreateUserRequest{
		Email: "caja@verokai.local", Password: "caja123", FullName: "Otra", RoleID: cashierRole.ID,
	}, "admin")
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = f.users.CreateUser(ctx, &CreateUserRequest{Email: "x", Password: "1", RoleID: cashierRole.ID}, "admin")
	assert.True(t, IsValidation(err))

	_, err = f.users.CreateUser(ctx, &CreateUserRequest{
		Email: "otro@verokai.local", Password: "caja123", FullName: "Otro", RoleID: 999,
	}, "admin")
	assert.ErrorIs(t, err, ErrRoleNotFound)

	t.Run("role change resets privileges", func(t *testing.T) {
		updated, err := f.users.UpdateUser(ctx, created.ID, &UpdateUserRequest{
			Email: created.Email, FullName: "Almacén 1", RoleID: warehouse.ID,
		}, "admin")
		require.NoError(t, err)
		assert.Equal(t, model.RoleWarehouse, updated.RoleCode())
		assert.True(t, updated.HasPrivilege(model.PrivPurchaseCreate))
		assert.False(t, updated.HasPrivilege(model.PrivSaleCreate))
	})

	t.Run("explicit privileges", func(t *testing.T) {
		updated, err := f.users.UpdateUserPrivileges(ctx, created.ID, []string{model.PrivProductView}, "admin")
		require.NoError(t, err)
		assert.Equal(t, []string{model.PrivProductView}, updated.GetPrivilegeCodes())

		_, err = f.users.UpdateUserPrivileges(ctx, created.ID, []string{"nope:nope"}, "admin")
		assert.True(t, IsValidation(err))
	})

	t.Run("delete", func(t *testing.T) {
		assert.ErrorIs(t, f.users.DeleteUser(ctx, created.ID, created.ID.String()), ErrSelfDelete)
		require.NoError(t, f.users.DeleteUser(ctx, created.ID, "admin"))
		_, err := f.users.GetUserByID(ctx, created.ID)
		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.ErrorIs(t, f.users.DeleteUser(ctx, created.ID, "admin"), ErrUserNotFound)
	})

	all, err := f.users.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
