package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/figmints/meetsync/internal/common"
	"github.com/figmints/meetsync/internal/logging"
	"github.com/figmints/meetsync/internal/server/auth"
	"github.com/figmints/meetsync/internal/server/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ---- fake users repository ----

type fakeUserRepo struct {
	byEmail map[string]*models.User
	byID    map[string]*models.User

	created     []*models.User
	lastTouched string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*models.User{}, byID: map[string]*models.User{}}
}

func (f *fakeUserRepo) add(u *models.User) {
	f.byEmail[u.Email] = u
	f.byID[u.ID] = u
}

func (f *fakeUserRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if _, ok := f.byEmail[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	f.add(u)
	f.created = append(f.created, u)
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := f.byEmail[email]
	if !ok || !u.Active {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) List(ctx context.Context) ([]*models.User, error) {
	var out []*models.User
	for _, u := range f.byID {
		out = append(out, u)
	}
	return out, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u *models.User) error {
	if _, ok := f.byID[u.ID]; !ok {
		return common.ErrorNotFound
	}
	f.byID[u.ID] = u
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) TouchLastLogin(ctx context.Context, id string) error {
	f.lastTouched = id
	return nil
}

// ---- helpers ----

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newUserService(t *testing.T, repo *fakeUserRepo) (*UserService, *auth.TokenService) {
	t.Helper()
	tokens := auth.NewTokenService([]byte("test-secret"), 7*24*time.Hour)
	return NewUserService(repo, tokens, testLogger()), tokens
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func adminCaller() *models.User {
	return &models.User{ID: "admin-1", Role: models.RoleAdmin, Active: true}
}

// ---- tests ----

func TestLogin_Success(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(&models.User{ID: "u-1", Email: "admin@x.com", PasswordHash: hashOf(t, "correct horse"),
		Role: models.RoleAdmin, Active: true})
	svc, tokens := newUserService(t, repo)

	token, user, err := svc.Login(context.Background(), "admin@x.com", "correct horse")
	require.NoError(t, err)
	require.Equal(t, "u-1", user.ID)
	require.Equal(t, "u-1", repo.lastTouched, "login must record last_login")

	subject, err := tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "u-1", subject)
}

func TestLogin_WrongPassword_Generic(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(&models.User{ID: "u-1", Email: "admin@x.com", PasswordHash: hashOf(t, "right"),
		Role: models.RoleAdmin, Active: true})
	svc, _ := newUserService(t, repo)

	_, _, errWrongPass := svc.Login(context.Background(), "admin@x.com", "wrong")
	_, _, errNoUser := svc.Login(context.Background(), "nobody@x.com", "wrong")

	// Unknown email and wrong password must be indistinguishable.
	require.ErrorIs(t, errWrongPass, common.ErrorUnauthorized)
	require.ErrorIs(t, errNoUser, common.ErrorUnauthorized)
	require.Equal(t, errWrongPass.Error(), errNoUser.Error())
}

func TestLogin_DeactivatedUser(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(&models.User{ID: "u-1", Email: "gone@x.com", PasswordHash: hashOf(t, "pw12345678"),
		Role: models.RoleClient, TenantID: "t-1", Active: false})
	svc, _ := newUserService(t, repo)

	_, _, err := svc.Login(context.Background(), "gone@x.com", "pw12345678")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestAuthenticate_RoundTrip(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(&models.User{ID: "u-1", Email: "a@x.com", Role: models.RoleClient, TenantID: "t-7", Active: true})
	svc, tokens := newUserService(t, repo)

	token, err := tokens.Issue("u-1")
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, "t-7", user.TenantID)
}

func TestAuthenticate_GarbageToken(t *testing.T) {
	svc, _ := newUserService(t, newFakeUserRepo())

	_, err := svc.Authenticate(context.Background(), "garbage")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestAuthenticate_DeactivatedSubject(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(&models.User{ID: "u-1", Email: "a@x.com", Role: models.RoleAdmin, Active: false})
	svc, tokens := newUserService(t, repo)

	token, err := tokens.Issue("u-1")
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newUserService(t, newFakeUserRepo())
	caller := adminCaller()

	tests := []struct {
		name string
		in   CreateUserInput
	}{
		{"missing email", CreateUserInput{Password: "long-enough", Role: models.RoleAdmin}},
		{"short password", CreateUserInput{Email: "a@x.com", Password: "short", Role: models.RoleAdmin}},
		{"client without tenant", CreateUserInput{Email: "a@x.com", Password: "long-enough", Role: models.RoleClient}},
		{"admin with tenant", CreateUserInput{Email: "a@x.com", Password: "long-enough", Role: models.RoleAdmin, TenantID: "t-1"}},
		{"unknown role", CreateUserInput{Email: "a@x.com", Password: "long-enough", Role: "owner"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), caller, tc.in)
			require.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestCreate_AdminOnly(t *testing.T) {
	svc, _ := newUserService(t, newFakeUserRepo())
	member := &models.User{ID: "m-1", Role: models.RoleClient, TenantID: "t-1", Active: true}

	_, err := svc.Create(context.Background(), member, CreateUserInput{
		Email: "new@x.com", Password: "long-enough", Role: models.RoleClient, TenantID: "t-1"})
	require.ErrorIs(t, err, common.ErrorForbidden)
}

func TestUpdate_Deactivate(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(&models.User{ID: "u-1", Email: "a@x.com", Role: models.RoleClient, TenantID: "t-1", Active: true})
	svc, _ := newUserService(t, repo)

	inactive := false
	got, err := svc.Update(context.Background(), adminCaller(), "u-1", UpdateUserInput{Active: &inactive})
	require.NoError(t, err)
	require.False(t, got.Active)
}
