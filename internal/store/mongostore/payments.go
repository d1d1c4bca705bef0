package mongostore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ticketbari/internal/status"
	"ticketbari/models"
)

// transactionIndex is partial: payments without a transaction id omit the
// field and never collide.
const transactionIndex = "transactionId_1"

type paymentRepo struct {
	coll *mongo.Collection
}

func (r *paymentRepo) Insert(ctx context.Context, p *models.Payment) error {
	doc := paymentDoc{
		BookingID:     p.BookingID,
		TicketID:      p.TicketID,
		Email:         models.NormalizeEmail(p.Email),
		Price:         p.Price,
		TransactionID: p.TransactionID,
		Date:          p.Date,
	}
	if doc.Date.IsZero() {
		doc.Date = time.Now().UTC()
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), transactionIndex) {
			return status.ErrIntentUsed
		}
		return status.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	doc.ID = insertedID(res)
	*p = doc.model()
	return nil
}

func (r *paymentRepo) FindByBookingID(ctx context.Context, bookingID string) (*models.Payment, error) {
	var doc paymentDoc
	if err := r.coll.FindOne(ctx, bson.M{"bookingId": bookingID}).Decode(&doc); err != nil {
		return nil, mapNoDocuments(err, status.ErrNotFound)
	}
	payment := doc.model()
	return &payment, nil
}

func (r *paymentRepo) ListByEmail(ctx context.Context, email string) ([]models.Payment, error) {
	cur, err := r.coll.Find(ctx,
		bson.M{"email": models.NormalizeEmail(email)},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	var docs []paymentDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	payments := make([]models.Payment, 0, len(docs))
	for _, d := range docs {
		payments = append(payments, d.model())
	}
	return payments, nil
}
