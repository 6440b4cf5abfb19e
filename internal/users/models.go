package users

import (
	"context"
	"github.com/ariefcatur/erp-lite/internal/apperr"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

var (
	ErrUserNotFound       = apperr.New(apperr.KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrEmailTaken         = apperr.Conflict("EMAIL_TAKEN", "a user with this email already exists")
	ErrInvalidCredentials = apperr.New(apperr.KindAuthentication, "INVALID_CREDENTIALS", "Invalid credentials")
)

type Store interface {
	Insert(ctx context.Context, u User) error
	GetByID(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, id string) error
}
