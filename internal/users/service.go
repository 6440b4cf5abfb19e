package users

import (
	"context"
	"errors"
	"github.com/ariefcatur/erp-lite/internal/apperr"
	"github.com/ariefcatur/erp-lite/internal/auth"
	"github.com/ariefcatur/erp-lite/internal/logging"
	"github.com/ariefcatur/erp-lite/internal/validate"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"strings"
	"time"
)

type Service struct {
	Store  Store
	Issuer *auth.Issuer
	Log    *logrus.Entry
	Now    func() time.Time
}

var _ auth.SubjectLookup = (*Service)(nil)

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateRequest is the admin edit form. An empty password keeps the current
// one.
type UpdateRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required,oneof=user admin"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Register always creates a regular user; roles are granted by admins.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (User, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return User{}, err
	}
	u, err := s.create(ctx, req.Name, req.Email, req.Password, auth.RoleUser)
	if err != nil {
		return User{}, err
	}
	s.log(ctx).WithField("user_id", u.ID).Info("user registered")
	return u, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return LoginResult{}, err
	}
	u, err := s.Store.GetByEmail(ctx, req.Email)
	if errors.Is(err, ErrUserNotFound) {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}
	if err := auth.CheckPassword(req.Password, u.PasswordHash); err != nil {
		s.log(ctx).WithField("user_id", u.ID).Info("login rejected")
		return LoginResult{}, ErrInvalidCredentials
	}

	token, err := s.Issuer.Issue(identityOf(u))
	if err != nil {
		return LoginResult{}, apperr.Internal("issue token", err)
	}
	return LoginResult{Token: token, User: u}, nil
}

// Me returns the stored record behind id.
func (s *Service) Me(ctx context.Context, id auth.Identity) (User, error) {
	return s.Get(ctx, id.UserID)
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.Store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return User{}, ErrUserNotFound
	}
	return s.Store.GetByID(ctx, id)
}

func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (User, error) {
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.Role = strings.ToLower(strings.TrimSpace(req.Role))
	if err := validate.Struct(req); err != nil {
		return User{}, err
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return User{}, err
	}

	u.Name, u.Email, u.Role = req.Name, req.Email, req.Role
	if req.Password != "" {
		if u.PasswordHash, err = auth.HashPassword(req.Password); err != nil {
			return User{}, apperr.Internal("hash password", err)
		}
	}
	u.UpdatedAt = s.now()
	if err := s.Store.Update(ctx, u); err != nil {
		return User{}, err
	}
	s.log(ctx).WithFields(logrus.Fields{"user_id": u.ID, "role": u.Role}).Info("user updated")
	return u, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrUserNotFound
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		return err
	}
	s.log(ctx).WithField("user_id", id).Info("user deleted")
	return nil
}

// EnsureAdmin creates the bootstrap admin when no user holds email yet.
// Existing accounts are left untouched.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	_, err := s.Store.GetByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return err
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}
	u, err := s.create(ctx, name, email, password, auth.RoleAdmin)
	if errors.Is(err, ErrEmailTaken) {
		return nil
	}
	if err != nil {
		return err
	}
	s.log(ctx).WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email}).Info("bootstrap admin created")
	return nil
}

func (s *Service) LookupSubject(ctx context.Context, userID string) (auth.Identity, error) {
	u, err := s.Get(ctx, userID)
	if errors.Is(err, ErrUserNotFound) {
		return auth.Identity{}, auth.ErrUnknownSubject
	}
	if err != nil {
		return auth.Identity{}, err
	}
	return identityOf(u), nil
}

func (s *Service) create(ctx context.Context, name, email, password, role string) (User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, apperr.Internal("hash password", err)
	}
	now := s.now()
	u := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Store.Insert(ctx, u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *Service) log(ctx context.Context) *logrus.Entry {
	base := s.Log
	if base == nil {
		base = logrus.NewEntry(logrus.StandardLogger())
	}
	return logging.FromContext(ctx, base)
}

func identityOf(u User) auth.Identity {
	return auth.Identity{
		UserID:  u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Role:    u.Role,
		IsAdmin: u.Role == auth.RoleAdmin,
	}
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
