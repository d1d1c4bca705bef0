package memstore

import (
	"context"
	"sort"

	"ticketbari/internal/status"
	"ticketbari/models"
)

type userRepo struct {
	s    *Store
	inTx bool
}

func (r *userRepo) Insert(_ context.Context, user *models.User) error {
	return r.s.write(r.inTx, func(d *data) error {
		user.Email = models.NormalizeEmail(user.Email)
		for _, u := range d.users {
			if u.Email == user.Email {
				return status.ErrDuplicate
			}
		}
		if user.ID == "" {
			user.ID = newID()
		}
		if user.CreatedAt.IsZero() {
			user.CreatedAt = r.s.now()
		}
		d.users[user.ID] = *user
		return nil
	})
}

func (r *userRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.s.read(func(d *data) error {
		u, ok := d.users[id]
		if !ok {
			return status.ErrUserNotFound
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	var user *models.User
	err := r.s.read(func(d *data) error {
		for _, u := range d.users {
			if models.SameEmail(u.Email, email) {
				u := u
				user = &u
				return nil
			}
		}
		return status.ErrUserNotFound
	})
	return user, err
}

func (r *userRepo) List(_ context.Context) ([]models.User, error) {
	users := []models.User{}
	_ = r.s.read(func(d *data) error {
		for _, u := range d.users {
			users = append(users, u)
		}
		return nil
	})
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (r *userRepo) SetRole(_ context.Context, id string, role models.Role) (bool, error) {
	changed := false
	err := r.s.write(r.inTx, func(d *data) error {
		u, ok := d.users[id]
		if !ok {
			return status.ErrUserNotFound
		}
		if u.Role != role {
			u.Role = role
			d.users[id] = u
			changed = true
		}
		return nil
	})
	return changed, err
}

func (r *userRepo) CountByRole(_ context.Context) (map[models.Role]int, error) {
	counts := map[models.Role]int{}
	_ = r.s.read(func(d *data) error {
		for _, u := range d.users {
			counts[u.Role]++
		}
		return nil
	})
	return counts, nil
}
