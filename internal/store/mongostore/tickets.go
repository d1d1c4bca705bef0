package mongostore

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ticketbari/internal/status"
	"ticketbari/internal/store"
	"ticketbari/models"
)

type ticketRepo struct {
	coll *mongo.Collection
}

func exactFold(value string) primitive.Regex {
	return primitive.Regex{Pattern: "^" + regexp.QuoteMeta(value) + "$", Options: "i"}
}

func (r *ticketRepo) Insert(ctx context.Context, ticket *models.Ticket) error {
	doc := newTicketDoc(ticket)
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	doc.ID = insertedID(res)
	*ticket = doc.model()
	return nil
}

func (r *ticketRepo) FindByID(ctx context.Context, id string) (*models.Ticket, error) {
	oid, err := objectID(id, status.ErrTicketNotFound)
	if err != nil {
		return nil, err
	}
	var doc ticketDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapNoDocuments(err, status.ErrTicketNotFound)
	}
	ticket := doc.model()
	return &ticket, nil
}

func (r *ticketRepo) List(ctx context.Context, f store.TicketFilter) ([]models.Ticket, error) {
	filter := bson.M{}
	if f.VendorEmail != "" {
		filter["vendorEmail"] = models.NormalizeEmail(f.VendorEmail)
	}
	if f.From != "" {
		filter["from"] = exactFold(f.From)
	}
	if f.To != "" {
		filter["to"] = exactFold(f.To)
	}
	if f.TransportType != "" {
		filter["transportType"] = exactFold(f.TransportType)
	}
	if f.Status != "" {
		filter["verificationStatus"] = string(f.Status)
	}
	if f.AdvertisedOnly {
		filter["isAdvertised"] = true
	}
	if f.Search != "" {
		filter["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
	}

	opts := options.Find()
	switch f.Sort {
	case store.SortPriceAsc:
		opts.SetSort(bson.D{{Key: "price", Value: 1}})
	case store.SortPriceDesc:
		opts.SetSort(bson.D{{Key: "price", Value: -1}})
	case store.SortDeparture:
		opts.SetSort(bson.D{{Key: "departureDate", Value: 1}})
	default:
		opts.SetSort(bson.D{{Key: "createdAt", Value: -1}})
	}
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}
	if f.Offset > 0 {
		opts.SetSkip(int64(f.Offset))
	}

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var docs []ticketDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	tickets := make([]models.Ticket, 0, len(docs))
	for _, d := range docs {
		tickets = append(tickets, d.model())
	}
	return tickets, nil
}

func (r *ticketRepo) Update(ctx context.Context, id string, patch models.TicketPatch) (*models.Ticket, error) {
	oid, err := objectID(id, status.ErrTicketNotFound)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.From != nil {
		set["from"] = *patch.From
	}
	if patch.To != nil {
		set["to"] = *patch.To
	}
	if patch.TransportType != nil {
		set["transportType"] = *patch.TransportType
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Quantity != nil {
		set["quantity"] = *patch.Quantity
	}
	if patch.DepartureDate != nil {
		set["departureDate"] = *patch.DepartureDate
	}
	if patch.Perks != nil {
		set["perks"] = *patch.Perks
	}
	if patch.Photo != nil {
		set["photo"] = *patch.Photo
	}
	if len(set) == 0 {
		return r.FindByID(ctx, id)
	}

	var doc ticketDoc
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		return nil, mapNoDocuments(err, status.ErrTicketNotFound)
	}
	ticket := doc.model()
	return &ticket, nil
}

func (r *ticketRepo) Delete(ctx context.Context, id string) error {
	oid, err := objectID(id, status.ErrTicketNotFound)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return status.ErrTicketNotFound
	}
	return nil
}

func (r *ticketRepo) SetVerificationStatus(ctx context.Context, id string, vs models.VerificationStatus) error {
	set := bson.M{"verificationStatus": string(vs)}
	if vs == models.TicketRejected {
		set["isAdvertised"] = false
	}
	return r.updateOne(ctx, id, bson.M{"$set": set})
}

func (r *ticketRepo) SetAdvertised(ctx context.Context, id string, advertised bool) error {
	return r.updateOne(ctx, id, bson.M{"$set": bson.M{"isAdvertised": advertised}})
}

func (r *ticketRepo) CountAdvertised(ctx context.Context) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"isAdvertised": true})
	return int(n), err
}

func (r *ticketRepo) DecrementQuantity(ctx context.Context, id string, qty int) error {
	oid, err := objectID(id, status.ErrTicketNotFound)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "quantity": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"quantity": -qty}},
	)
	if err != nil {
		return fmt.Errorf("decrement quantity: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	ticket, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return &status.InsufficientQuantityError{TicketID: id, Requested: qty, Available: ticket.Quantity}
}

func (r *ticketRepo) RejectByVendor(ctx context.Context, vendorEmail string) (int, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"vendorEmail": models.NormalizeEmail(vendorEmail)},
		bson.M{"$set": bson.M{"verificationStatus": string(models.TicketRejected), "isAdvertised": false}},
	)
	if err != nil {
		return 0, fmt.Errorf("reject vendor tickets: %w", err)
	}
	return int(res.ModifiedCount), nil
}

func (r *ticketRepo) CountByStatus(ctx context.Context) (map[models.VerificationStatus]int, error) {
	counts := map[models.VerificationStatus]int{}
	err := groupCount(ctx, r.coll, "$verificationStatus", func(key string, n int) {
		counts[models.VerificationStatus(key)] = n
	})
	return counts, err
}

func (r *ticketRepo) updateOne(ctx context.Context, id string, update bson.M) error {
	oid, err := objectID(id, status.ErrTicketNotFound)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return status.ErrTicketNotFound
	}
	return nil
}
