package migrations

import (
	"errors"
	"fmt"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"

	"ticketbari/internal/store/pbstore"
)

func init() {
	m.Register(func(app core.App) error {
		for _, c := range []*core.Collection{
			pbstore.NewUsersCollection(),
			pbstore.NewTicketsCollection(),
			pbstore.NewBookingsCollection(),
			pbstore.NewPaymentsCollection(),
		} {
			if _, err := app.FindCollectionByNameOrId(c.Name); err == nil {
				continue
			}
			if err := app.Save(c); err != nil {
				return fmt.Errorf("create %s collection: %w", c.Name, err)
			}
		}
		return nil
	}, func(app core.App) error {
		var errs []error
		for _, name := range []string{
			pbstore.PaymentsCollection,
			pbstore.BookingsCollection,
			pbstore.TicketsCollection,
			pbstore.UsersCollection,
		} {
			c, err := app.FindCollectionByNameOrId(name)
			if err != nil {
				continue
			}
			if err := app.Delete(c); err != nil {
				errs = append(errs, fmt.Errorf("drop %s collection: %w", name, err))
			}
		}
		return errors.Join(errs...)
	})
}
