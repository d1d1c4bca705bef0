package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"ticketbari/internal/auth"
	"ticketbari/internal/logging"
	"ticketbari/internal/status"
	"ticketbari/internal/store"
	"ticketbari/models"
)

type UserService struct {
	store store.Store
}

func NewUserService(st store.Store) *UserService {
	return &UserService{store: st}
}

type Profile struct {
	Name  string `json:"name"`
	Photo string `json:"photo"`
}

type SignInResult struct {
	Message    string  `json:"message,omitempty"`
	InsertedID *string `json:"insertedId"`
}

// FraudResult counts the documents a fraud flag actually changed.
type FraudResult struct {
	UserModified    int `json:"userModified"`
	TicketsModified int `json:"ticketsModified"`
}

// SignIn records the caller on first sign in. Repeated calls leave the
// stored account untouched.
func (s *UserService) SignIn(ctx context.Context, caller *auth.Caller, profile Profile) (*SignInResult, error) {
	if caller == nil {
		return nil, status.ErrUnauthenticated
	}
	if strings.TrimSpace(caller.Email) == "" {
		return nil, status.Invalid("token carries no email")
	}

	exists := &SignInResult{Message: "user already exists"}
	if _, err := s.store.Users().FindByEmail(ctx, caller.Email); err == nil {
		return exists, nil
	} else if !errors.Is(err, status.ErrNotFound) {
		return nil, err
	}

	user := &models.User{
		Email: caller.Email,
		Name:  strings.TrimSpace(profile.Name),
		Photo: strings.TrimSpace(profile.Photo),
		Role:  models.RoleUser,
	}
	if err := s.store.Users().Insert(ctx, user); err != nil {
		// a concurrent sign in won the insert
		if errors.Is(err, status.ErrDuplicate) {
			return exists, nil
		}
		return nil, err
	}

	logging.FromContext(ctx).WithField("user", user.ID).Info("user registered")
	return &SignInResult{InsertedID: &user.ID}, nil
}

// Role returns the stored role of email, or user for unknown accounts.
func (s *UserService) Role(ctx context.Context, email string) (models.Role, error) {
	user, err := s.store.Users().FindByEmail(ctx, email)
	switch {
	case err == nil:
		return user.Role, nil
	case errors.Is(err, status.ErrNotFound):
		return models.RoleUser, nil
	default:
		return "", err
	}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.store.Users().List(ctx)
}

// SetRole changes an account's role. Flagging an account as fraud goes
// through MarkFraud so its tickets are pulled as well.
func (s *UserService) SetRole(ctx context.Context, id string, role models.Role) (int, error) {
	if !role.Valid() {
		return 0, status.Invalid("unknown role %q", role)
	}
	if role == models.RoleFraud {
		res, err := s.MarkFraud(ctx, id)
		if err != nil {
			return 0, err
		}
		return res.UserModified, nil
	}

	changed, err := s.store.Users().SetRole(ctx, id, role)
	if err != nil {
		return 0, err
	}

	logging.FromContext(ctx).WithFields(logrus.Fields{"user": id, "role": role}).Info("role updated")
	if changed {
		return 1, nil
	}
	return 0, nil
}

// MarkFraud flags the account and rejects every ticket it listed, in one
// transaction. Existing bookings are left as they are.
func (s *UserService) MarkFraud(ctx context.Context, id string) (*FraudResult, error) {
	res := &FraudResult{}
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx store.Tx) error {
		user, err := tx.Users().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Lock(ctx, store.AdvertiseLockKey); err != nil {
			return err
		}

		changed, err := tx.Users().SetRole(ctx, id, models.RoleFraud)
		if err != nil {
			return err
		}
		if changed {
			res.UserModified = 1
		}

		res.TicketsModified, err = tx.Tickets().RejectByVendor(ctx, user.Email)
		return err
	})
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).WithFields(logrus.Fields{
		"user":    id,
		"tickets": res.TicketsModified,
	}).Warn("account marked as fraud")
	return res, nil
}

// PromoteAdmin makes an existing account admin by email.
func (s *UserService) PromoteAdmin(ctx context.Context, email string) (*models.User, error) {
	user, err := s.store.Users().FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("promote %s: %w", email, err)
	}
	if _, err := s.store.Users().SetRole(ctx, user.ID, models.RoleAdmin); err != nil {
		return nil, err
	}
	user.Role = models.RoleAdmin
	return user, nil
}
