package identity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oggyb/skillswap/internal/app/apptest"
	svcErr "github.com/oggyb/skillswap/internal/errors"
	"github.com/oggyb/skillswap/internal/model"
	"github.com/oggyb/skillswap/internal/service/exchange"
	"github.com/oggyb/skillswap/internal/service/identity"
)

func setupService(t *testing.T) (*identity.Service, *apptest.Fixture) {
	t.Helper()
	f := apptest.New(t)
	return identity.NewIdentityService(f.App), f
}

func ptr[T any](v T) *T { return &v }

func newcomer() model.SignupDraft {
	return model.SignupDraft{
		Name:          "Asha Rao",
		Email:         "asha@example.com",
		Password:      "s3cret-pass",
		Location:      "Pune",
		SkillsOffered: []string{"Go", "Kubernetes"},
		SkillsWanted:  []string{"Guitar"},
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	svc, f := setupService(t)

	user, err := svc.Login(ctx, "rahul@example.com", apptest.SeedPassword)
	require.NoError(t, err)
	assert.Equal(t, "1", user.ID)

	current, ok := svc.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, user, current)

	// session survives a restart
	reloaded := f.Reload(t).Snapshot()
	require.NotNil(t, reloaded.CurrentUser)
	assert.Equal(t, "1", reloaded.CurrentUser.ID)
}

func TestLoginRefusals(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	cases := map[string][2]string{
		"unknown email":  {"nobody@example.com", apptest.SeedPassword},
		"wrong password": {"rahul@example.com", "not-the-password"},
		"email case":     {"Rahul@example.com", apptest.SeedPassword},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Login(ctx, c[0], c[1])
			assert.ErrorIs(t, err, svcErr.ErrUnauthorized)

			_, ok := svc.CurrentUser()
			assert.False(t, ok)
		})
	}
}

func TestBannedUserCannotLogin(t *testing.T) {
	ctx := context.Background()
	svc, f := setupService(t)

	require.NoError(t, exchange.NewExchangeService(f.App).BanUser(ctx, "2"))

	_, err := svc.Login(ctx, "priya@example.com", apptest.SeedPassword)
	assert.ErrorIs(t, err, svcErr.ErrUnauthorized)
	assert.Contains(t, err.Error(), "banned")
}

func TestSignup(t *testing.T) {
	ctx := context.Background()
	svc, f := setupService(t)

	user, err := svc.Signup(ctx, newcomer())
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "Asha Rao", user.Name)
	assert.Equal(t, []string{"Go", "Kubernetes"}, user.SkillsOffered)
	assert.Equal(t, []string{}, user.Availability)
	assert.True(t, user.IsProfilePublic)
	assert.Zero(t, user.Rating)
	assert.Zero(t, user.TotalRatings)
	assert.False(t, user.IsAdmin)
	assert.False(t, user.IsBanned)
	assert.Equal(t, apptest.Epoch, user.CreatedAt)

	current, ok := svc.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, user, current)

	st := f.Reload(t).Snapshot()
	require.Len(t, st.Users, 4)
	assert.Equal(t, user, st.Users[3])
	require.NotNil(t, st.CurrentUser)
	assert.Equal(t, user.ID, st.CurrentUser.ID)

	// the new credential works after logging out
	require.NoError(t, svc.Logout(ctx))
	_, err = svc.Login(ctx, "asha@example.com", "s3cret-pass")
	assert.NoError(t, err)
}

func TestSignupPrivateProfile(t *testing.T) {
	svc, _ := setupService(t)

	draft := newcomer()
	draft.IsProfilePublic = ptr(false)
	user, err := svc.Signup(context.Background(), draft)
	require.NoError(t, err)
	assert.False(t, user.IsProfilePublic)
}

func TestSignupDuplicateEmailLeavesDirectoryUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, f := setupService(t)
	before := f.App.Repo.Snapshot()

	draft := newcomer()
	draft.Email = "priya@example.com"
	_, err := svc.Signup(ctx, draft)
	assert.ErrorIs(t, err, svcErr.ErrDuplicateEmail)

	after := f.App.Repo.Snapshot()
	assert.Equal(t, before.Users, after.Users)
	assert.Equal(t, before.Credentials, after.Credentials)
	assert.Nil(t, after.CurrentUser)
	assert.Equal(t, before.Users, f.Reload(t).Snapshot().Users)
}

func TestSignupValidation(t *testing.T) {
	svc, f := setupService(t)

	missingName := newcomer()
	missingName.Name = ""

	badEmail := newcomer()
	badEmail.Email = "not-an-email"

	shortPassword := newcomer()
	shortPassword.Password = "abc"

	textPhoto := newcomer()
	textPhoto.ProfilePhoto = "data:image/png;base64,aGVsbG8gd29ybGQ="

	for name, draft := range map[string]model.SignupDraft{
		"missing name":   missingName,
		"bad email":      badEmail,
		"short password": shortPassword,
		"text as photo":  textPhoto,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Signup(context.Background(), draft)
			assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)
		})
	}
	assert.Len(t, f.App.Repo.Snapshot().Users, 3)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	svc, f := setupService(t)

	_, err := svc.Login(ctx, "rahul@example.com", apptest.SeedPassword)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx))
	_, ok := svc.CurrentUser()
	assert.False(t, ok)

	st := f.Reload(t).Snapshot()
	assert.Nil(t, st.CurrentUser)
	assert.Len(t, st.Users, 3)

	// logging out twice is harmless
	assert.NoError(t, svc.Logout(ctx))
}

func TestUpdateProfileWithoutSession(t *testing.T) {
	svc, f := setupService(t)
	before := f.App.Repo.Snapshot()

	_, err := svc.UpdateProfile(context.Background(), model.ProfilePatch{Name: ptr("Ghost")})
	assert.ErrorIs(t, err, svcErr.ErrUnauthorized)
	assert.Equal(t, before, f.App.Repo.Snapshot())
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	svc, f := setupService(t)

	_, err := svc.Login(ctx, "rahul@example.com", apptest.SeedPassword)
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, model.ProfilePatch{
		Location:        ptr("Bengaluru"),
		SkillsWanted:    ptr([]string{"Rust"}),
		IsProfilePublic: ptr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, "Bengaluru", updated.Location)
	assert.Equal(t, []string{"Rust"}, updated.SkillsWanted)
	assert.Equal(t, "Rahul Sharma", updated.Name)
	assert.False(t, updated.IsProfilePublic)

	current, ok := svc.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, updated, current)

	st := f.Reload(t).Snapshot()
	assert.Equal(t, updated, st.Users[0])
	require.NotNil(t, st.CurrentUser)
	assert.Equal(t, updated, *st.CurrentUser)
}

func TestUpdateProfileEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Login(ctx, "rahul@example.com", apptest.SeedPassword)
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, model.ProfilePatch{Email: ptr("priya@example.com")})
	assert.ErrorIs(t, err, svcErr.ErrDuplicateEmail)

	// keeping one's own address is not a collision
	_, err = svc.UpdateProfile(ctx, model.ProfilePatch{Email: ptr("rahul@example.com")})
	assert.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, model.ProfilePatch{Email: ptr("rahul.s@example.com")})
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx))

	_, err = svc.Login(ctx, "rahul.s@example.com", apptest.SeedPassword)
	assert.NoError(t, err)
}

func TestUpdateProfileRejectsInvalidPatch(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Login(ctx, "rahul@example.com", apptest.SeedPassword)
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, model.ProfilePatch{Name: ptr("")})
	assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)

	_, err = svc.UpdateProfile(ctx, model.ProfilePatch{ProfilePhoto: ptr("https://example.com/me.png")})
	assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	assert.ErrorIs(t, svc.ChangePassword(ctx, apptest.SeedPassword, "new-password"), svcErr.ErrUnauthorized)

	_, err := svc.Login(ctx, "rahul@example.com", apptest.SeedPassword)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.ChangePassword(ctx, "wrong", "new-password"), svcErr.ErrUnauthorized)
	assert.ErrorIs(t, svc.ChangePassword(ctx, apptest.SeedPassword, "abc"), svcErr.ErrInvalidArgument)
	require.NoError(t, svc.ChangePassword(ctx, apptest.SeedPassword, "new-password"))
	require.NoError(t, svc.Logout(ctx))

	_, err = svc.Login(ctx, "rahul@example.com", apptest.SeedPassword)
	assert.ErrorIs(t, err, svcErr.ErrUnauthorized)
	_, err = svc.Login(ctx, "rahul@example.com", "new-password")
	assert.NoError(t, err)
}
