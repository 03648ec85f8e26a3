package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/persistence"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// UserRepository is the credential store: one record per username, lookup
// by username, existence check, append. Absence is a normal outcome and
// returns nil, not an error.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Exists(ctx context.Context, username string) (bool, error)
	Create(ctx context.Context, username, passwordHash string, role domain.Role) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) (bool, error)
	FindByResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

type userRepository struct {
	mu    sync.Mutex
	store persistence.Collections
}

// NewUserRepository returns a Collections-backed implementation.
func NewUserRepository(store persistence.Collections) UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			user := users[i]
			return &user, nil
		}
	}
	return nil, nil
}

func (r *userRepository) Exists(ctx context.Context, username string) (bool, error) {
	user, err := r.FindByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

// Create appends a new user record. The duplicate check is check-then-act
// under the repository mutex; concurrent processes remain last-writer-wins.
func (r *userRepository) Create(ctx context.Context, username, passwordHash string, role domain.Role) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			return nil, apperrors.NewDuplicateUsername(username)
		}
	}

	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}
	users = append(users, user)

	if err := r.save(ctx, users); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			user := users[i]
			return &user, nil
		}
	}
	return nil, nil
}

// Update replaces the stored record matching user.ID. Username and
// CreatedAt of the stored record are kept; callers change password hash,
// role and reset-token fields through this path.
func (r *userRepository) Update(ctx context.Context, user *domain.User) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return false, err
	}
	for i := range users {
		if users[i].ID == user.ID {
			updated := *user
			updated.Username = users[i].Username
			updated.CreatedAt = users[i].CreatedAt
			users[i] = updated
			if err := r.save(ctx, users); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

// FindByResetToken returns the user holding a matching, non-expired reset
// token, or nil.
func (r *userRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}
	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		u := users[i]
		if u.ResetToken != nil && *u.ResetToken == token &&
			u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(now) {
			user := u
			return &user, nil
		}
	}
	return nil, nil
}

func (r *userRepository) List(ctx context.Context) ([]domain.User, error) {
	return r.load(ctx)
}

func (r *userRepository) load(ctx context.Context) ([]domain.User, error) {
	return persistence.ReadCollection[domain.User](ctx, r.store, persistence.CollectionUsers)
}

func (r *userRepository) save(ctx context.Context, users []domain.User) error {
	if err := persistence.WriteCollection(ctx, r.store, persistence.CollectionUsers, users); err != nil {
		return apperrors.NewStorageWriteError(err)
	}
	return nil
}
