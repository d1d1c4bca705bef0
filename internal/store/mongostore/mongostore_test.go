package mongostore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"ticketbari/internal/status"
	"ticketbari/models"
)

func TestUserRepo_InsertDuplicateEmail(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate key", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error collection: TicketBariDB.users index: email_1",
		}))

		repo := &userRepo{coll: mt.Coll}
		err := repo.Insert(context.Background(), &models.User{Email: "a@bari.com", Role: models.RoleUser})

		assert.ErrorIs(mt, err, status.ErrDuplicate)
	})
}

func TestPaymentRepo_InsertReusedTransaction(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("transaction index", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error collection: TicketBariDB.payments index: transactionId_1 dup key: { transactionId: \"pi_1\" }",
		}))

		repo := &paymentRepo{coll: mt.Coll}
		err := repo.Insert(context.Background(), &models.Payment{BookingID: "b2", Email: "a@bari.com", TransactionID: "pi_1"})

		assert.ErrorIs(mt, err, status.ErrIntentUsed)
	})

	mt.Run("booking index", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error collection: TicketBariDB.payments index: bookingId_1",
		}))

		repo := &paymentRepo{coll: mt.Coll}
		err := repo.Insert(context.Background(), &models.Payment{BookingID: "b1", Email: "a@bari.com"})

		assert.ErrorIs(mt, err, status.ErrDuplicate)
	})
}

func TestTicketRepo_DecrementQuantityInsufficient(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("guard rejects", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: oid},
				{Key: "title", Value: "Rajshahi Express"},
				{Key: "quantity", Value: 1},
			}),
		)

		repo := &ticketRepo{coll: mt.Coll}
		err := repo.DecrementQuantity(context.Background(), oid.Hex(), 2)

		var insufficient *status.InsufficientQuantityError
		require.ErrorAs(mt, err, &insufficient)
		assert.Equal(mt, 1, insufficient.Available)
		assert.Equal(mt, 2, insufficient.Requested)
	})
}

func TestTicketRepo_RejectByVendorReportsModified(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("update many", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 3},
			bson.E{Key: "nModified", Value: 2},
		))

		repo := &ticketRepo{coll: mt.Coll}
		n, err := repo.RejectByVendor(context.Background(), "vendor@bari.com")

		require.NoError(mt, err)
		assert.Equal(mt, 2, n)
	})
}

func TestTicketRepo_FindByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("malformed id", func(mt *mtest.T) {
		repo := &ticketRepo{coll: mt.Coll}
		_, err := repo.FindByID(context.Background(), "not-an-object-id")

		assert.ErrorIs(mt, err, status.ErrTicketNotFound)
	})

	mt.Run("no document", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		repo := &ticketRepo{coll: mt.Coll}
		_, err := repo.FindByID(context.Background(), primitive.NewObjectID().Hex())

		assert.ErrorIs(mt, err, status.ErrTicketNotFound)
	})
}

func TestBookingRepo_TransitionStatusGuarded(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("already paid", func(mt *mtest.T) {
		oid := primitive.NewObjectID()
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
				{Key: "_id", Value: oid},
				{Key: "status", Value: "paid"},
			}),
		)

		repo := &bookingRepo{coll: mt.Coll}
		moved, err := repo.TransitionStatus(context.Background(), oid.Hex(), models.BookingApproved, models.BookingPaid)

		require.NoError(mt, err)
		assert.False(mt, moved)
	})
}

func TestDocumentsNormalizeEmails(t *testing.T) {
	doc := newBookingDoc(&models.Booking{CustomerEmail: "A@Bari.com", VendorEmail: "V@Bari.com", SeatNumbers: models.SeatNumbers{"1"}})

	assert.Equal(t, "a@bari.com", doc.CustomerEmail)
	assert.Equal(t, "v@bari.com", doc.VendorEmail)
	assert.Equal(t, []string{"1"}, doc.SeatNumbers)
}
