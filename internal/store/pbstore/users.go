package pbstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"

	"ticketbari/internal/status"
	"ticketbari/models"
)

type userRepo struct {
	app core.App
}

func userFromRecord(r *core.Record) models.User {
	return models.User{
		ID:        r.Id,
		Email:     r.GetString("email"),
		Name:      r.GetString("name"),
		Photo:     r.GetString("photo"),
		Role:      models.Role(r.GetString("role")),
		CreatedAt: r.GetDateTime("created").Time(),
	}
}

func (r *userRepo) Insert(ctx context.Context, user *models.User) error {
	if _, err := r.FindByEmail(ctx, user.Email); err == nil {
		return status.ErrDuplicate
	}

	record, err := newRecord(r.app, UsersCollection)
	if err != nil {
		return err
	}
	record.Set("email", models.NormalizeEmail(user.Email))
	record.Set("name", user.Name)
	record.Set("photo", user.Photo)
	record.Set("role", string(user.Role))

	if err := r.app.SaveWithContext(ctx, record); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	*user = userFromRecord(record)
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	record, err := r.app.FindRecordById(UsersCollection, id)
	if err != nil {
		return nil, notFound(err, status.ErrUserNotFound)
	}
	user := userFromRecord(record)
	return &user, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	records := []*core.Record{}
	err := r.app.RecordQuery(UsersCollection).
		AndWhere(dbx.NewExp("LOWER([[email]]) = {:email}", dbx.Params{"email": strings.ToLower(strings.TrimSpace(email))})).
		Limit(1).
		WithContext(ctx).
		All(&records)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, status.ErrUserNotFound
	}
	user := userFromRecord(records[0])
	return &user, nil
}

func (r *userRepo) List(ctx context.Context) ([]models.User, error) {
	records := []*core.Record{}
	err := r.app.RecordQuery(UsersCollection).OrderBy("created ASC").WithContext(ctx).All(&records)
	if err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(records))
	for _, record := range records {
		users = append(users, userFromRecord(record))
	}
	return users, nil
}

func (r *userRepo) SetRole(ctx context.Context, id string, role models.Role) (bool, error) {
	record, err := r.app.FindRecordById(UsersCollection, id)
	if err != nil {
		return false, notFound(err, status.ErrUserNotFound)
	}
	if record.GetString("role") == string(role) {
		return false, nil
	}
	record.Set("role", string(role))
	if err := r.app.SaveWithContext(ctx, record); err != nil {
		return false, fmt.Errorf("save user role: %w", err)
	}
	return true, nil
}

func (r *userRepo) CountByRole(ctx context.Context) (map[models.Role]int, error) {
	rows, err := countBy(ctx, r.app, UsersCollection, "role")
	if err != nil {
		return nil, err
	}
	counts := make(map[models.Role]int, len(rows))
	for _, row := range rows {
		counts[models.Role(row.Key)] = row.Total
	}
	return counts, nil
}
