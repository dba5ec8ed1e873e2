package store

import (
	"context"
	"fmt"
	"sort"

	"github.com/amirhossein-jamali/marketplace/internal/domain/entity"
	errs "github.com/amirhossein-jamali/marketplace/internal/domain/error"
)

// userRepository is the users family loaded into one unit of work
type userRepository struct {
	users map[string]*entity.User
	dirty bool
}

func newUserRepository(users map[string]*entity.User) *userRepository {
	if users == nil {
		users = make(map[string]*entity.User)
	}
	return &userRepository{users: users}
}

func (r *userRepository) GetByName(_ context.Context, username string) (*entity.User, error) {
	u, ok := r.users[username]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrUserNotFound, username)
	}
	return u.Clone(), nil
}

func (r *userRepository) Exists(_ context.Context, username string) (bool, error) {
	_, ok := r.users[username]
	return ok, nil
}

func (r *userRepository) Create(_ context.Context, user *entity.User) error {
	if _, ok := r.users[user.Username]; ok {
		return fmt.Errorf("%w: %s", errs.ErrUsernameTaken, user.Username)
	}
	r.users[user.Username] = user.Clone()
	r.dirty = true
	return nil
}

func (r *userRepository) Update(_ context.Context, user *entity.User) error {
	if _, ok := r.users[user.Username]; !ok {
		return fmt.Errorf("%w: %s", errs.ErrUserNotFound, user.Username)
	}
	r.users[user.Username] = user.Clone()
	r.dirty = true
	return nil
}

func (r *userRepository) Delete(_ context.Context, username string) error {
	if _, ok := r.users[username]; !ok {
		return fmt.Errorf("%w: %s", errs.ErrUserNotFound, username)
	}
	delete(r.users, username)
	r.dirty = true
	return nil
}

func (r *userRepository) List(_ context.Context) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *userRepository) encode() ([]byte, error) {
	return encodeUsers(r.users)
}
