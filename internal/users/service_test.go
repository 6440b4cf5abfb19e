package users

import (
	"context"
	"errors"
	"github.com/ariefcatur/erp-lite/internal/apperr"
	"github.com/ariefcatur/erp-lite/internal/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"strings"
	"sync"
	"testing"
	"time"
)

type memStore struct {
	mu    sync.Mutex
	users map[string]User
}

func newMemStore() *memStore { return &memStore{users: map[string]User{}} }

func (m *memStore) Insert(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.users {
		if strings.EqualFold(x.Email, u.Email) {
			return ErrEmailTaken
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *memStore) GetByID(_ context.Context, id string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return u, nil
}

func (m *memStore) GetByEmail(_ context.Context, email string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (m *memStore) List(context.Context) ([]User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []User{}
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *memStore) Update(_ context.Context, u User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return ErrUserNotFound
	}
	for id, x := range m.users {
		if id != u.ID && strings.EqualFold(x.Email, u.Email) {
			return ErrEmailTaken
		}
	}
	m.users[u.ID] = u
	return nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

func newService() *Service {
	return &Service{
		Store:  newMemStore(),
		Issuer: auth.NewIssuer("test-secret", time.Hour),
	}
}

func register(t *testing.T, s *Service, email string) User {
	t.Helper()
	u, err := s.Register(context.Background(), RegisterRequest{Name: "Ana", Email: email, Password: "secret1"})
	require.NoError(t, err)
	return u
}

func TestRegisterCreatesRegularUser(t *testing.T) {
	s := newService()
	u := register(t, s, "  Ana@Example.com ")

	assert.Equal(t, auth.RoleUser, u.Role)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.NoError(t, auth.CheckPassword("secret1", u.PasswordHash))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newService()
	register(t, s, "ana@example.com")

	_, err := s.Register(context.Background(), RegisterRequest{Name: "Other", Email: "ANA@example.com", Password: "secret2"})
	assert.True(t, errors.Is(err, ErrEmailTaken))
}

func TestRegisterValidation(t *testing.T) {
	s := newService()
	_, err := s.Register(context.Background(), RegisterRequest{Email: "nope", Password: "123"})
	require.Error(t, err)

	ae := apperr.From(err)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	fields, ok := ae.Details["fields"].(map[string]string)
	require.True(t, ok)
	assert.Contains(t, fields, "name")
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "password")
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	s := newService()
	u := register(t, s, "ana@example.com")

	res, err := s.Login(context.Background(), LoginRequest{Email: "ANA@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.User.ID)

	sub, err := s.Issuer.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, sub)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newService()
	register(t, s, "ana@example.com")

	_, err := s.Login(context.Background(), LoginRequest{Email: "ana@example.com", Password: "wrong"})
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = s.Login(context.Background(), LoginRequest{Email: "bob@example.com", Password: "secret1"})
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
	assert.Equal(t, 401, apperr.From(err).HTTPStatus())
}

func TestUpdateKeepsPasswordWhenBlank(t *testing.T) {
	s := newService()
	u := register(t, s, "ana@example.com")

	got, err := s.Update(context.Background(), u.ID, UpdateRequest{Name: "Ana B", Email: "ana@example.com", Role: "Admin"})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAdmin, got.Role)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)

	got, err = s.Update(context.Background(), u.ID, UpdateRequest{Name: "Ana B", Email: "ana@example.com", Role: "user", Password: "newpass"})
	require.NoError(t, err)
	assert.NoError(t, auth.CheckPassword("newpass", got.PasswordHash))
}

func TestUpdateRejectsUnknownRole(t *testing.T) {
	s := newService()
	u := register(t, s, "ana@example.com")

	_, err := s.Update(context.Background(), u.ID, UpdateRequest{Name: "Ana", Email: "ana@example.com", Role: "root"})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestGetAndDeleteUnknown(t *testing.T) {
	s := newService()
	_, err := s.Get(context.Background(), "not-a-uuid")
	assert.True(t, errors.Is(err, ErrUserNotFound))

	err = s.Delete(context.Background(), uuid.NewString())
	assert.True(t, errors.Is(err, ErrUserNotFound))
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	s := newService()
	ctx := context.Background()

	require.NoError(t, s.EnsureAdmin(ctx, "", "root@example.com", "rootpass"))
	require.NoError(t, s.EnsureAdmin(ctx, "", "root@example.com", "rootpass"))

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, auth.RoleAdmin, all[0].Role)
	assert.Equal(t, "Administrator", all[0].Name)

	assert.NoError(t, s.EnsureAdmin(ctx, "x", "", ""))
}

func TestLookupSubject(t *testing.T) {
	s := newService()
	u := register(t, s, "ana@example.com")

	id, err := s.LookupSubject(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, id.Email)
	assert.False(t, id.IsAdmin)

	_, err = s.LookupSubject(context.Background(), uuid.NewString())
	assert.True(t, errors.Is(err, auth.ErrUnknownSubject))
}
