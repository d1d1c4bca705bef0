package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ticketbari/internal/status"
	"ticketbari/internal/store"
	"ticketbari/models"
)

type bookingRepo struct {
	coll *mongo.Collection
}

var holdingStatuses = bson.A{
	string(models.BookingPending), string(models.BookingApproved), string(models.BookingPaid),
}

func (r *bookingRepo) Insert(ctx context.Context, b *models.Booking) error {
	doc := newBookingDoc(b)
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	doc.ID = insertedID(res)
	*b = doc.model()
	return nil
}

func (r *bookingRepo) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	oid, err := objectID(id, status.ErrBookingNotFound)
	if err != nil {
		return nil, err
	}
	var doc bookingDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapNoDocuments(err, status.ErrBookingNotFound)
	}
	booking := doc.model()
	return &booking, nil
}

func (r *bookingRepo) List(ctx context.Context, f store.BookingFilter) ([]models.Booking, error) {
	filter := bson.M{}
	if f.TicketID != "" {
		filter["ticketId"] = f.TicketID
	}
	if f.CustomerEmail != "" {
		filter["customerEmail"] = models.NormalizeEmail(f.CustomerEmail)
	}
	if f.VendorEmail != "" {
		filter["vendorEmail"] = models.NormalizeEmail(f.VendorEmail)
	}
	if f.HoldingOnly {
		filter["status"] = bson.M{"$in": holdingStatuses}
	}

	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	var docs []bookingDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	bookings := make([]models.Booking, 0, len(docs))
	for _, d := range docs {
		bookings = append(bookings, d.model())
	}
	return bookings, nil
}

func (r *bookingRepo) TransitionStatus(ctx context.Context, id string, from, to models.BookingStatus) (bool, error) {
	oid, err := objectID(id, status.ErrBookingNotFound)
	if err != nil {
		return false, err
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "status": string(from)},
		bson.M{"$set": bson.M{"status": string(to)}},
	)
	if err != nil {
		return false, err
	}
	if res.ModifiedCount > 0 {
		return true, nil
	}
	if _, err := r.FindByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (r *bookingRepo) DeleteIfStatus(ctx context.Context, id string, st models.BookingStatus) (bool, error) {
	oid, err := objectID(id, status.ErrBookingNotFound)
	if err != nil {
		return false, err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid, "status": string(st)})
	if err != nil {
		return false, err
	}
	if res.DeletedCount > 0 {
		return true, nil
	}
	if _, err := r.FindByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}
