// Package mongostore stores the marketplace collections in MongoDB.
// Transactions need a replica set or sharded cluster.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"ticketbari/internal/store"
)

const (
	usersColl    = "users"
	ticketsColl  = "tickets"
	bookingsColl = "bookings"
	paymentsColl = "payments"
	locksColl    = "locks"
)

// emailCollation makes equality on email case-insensitive.
var emailCollation = &options.Collation{Locale: "en", Strength: 2}

type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Store = (*Store)(nil)

// Connect dials MongoDB, verifies the connection and ensures indexes.
func Connect(ctx context.Context, uri, database string, timeout time.Duration) (*Store, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s := &Store{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logrus.WithField("database", database).Info("Connected to MongoDB")
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	transactionOpts := options.Index().SetName(transactionIndex).SetUnique(true).
		SetPartialFilterExpression(bson.M{"transactionId": bson.M{"$exists": true}})

	indexes := map[string][]mongo.IndexModel{
		usersColl: {{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetCollation(emailCollation),
		}},
		ticketsColl: {
			{Keys: bson.D{{Key: "vendorEmail", Value: 1}}},
			{Keys: bson.D{{Key: "isAdvertised", Value: 1}}},
		},
		bookingsColl: {
			{Keys: bson.D{{Key: "ticketId", Value: 1}, {Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "customerEmail", Value: 1}}},
			{Keys: bson.D{{Key: "vendorEmail", Value: 1}}},
		},
		paymentsColl: {
			{Keys: bson.D{{Key: "bookingId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "transactionId", Value: 1}}, Options: transactionOpts},
			{Keys: bson.D{{Key: "email", Value: 1}}},
		},
	}

	for coll, idx := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create %s indexes: %w", coll, err)
		}
	}
	return nil
}

func (s *Store) Users() store.UserRepository       { return &userRepo{coll: s.db.Collection(usersColl)} }
func (s *Store) Tickets() store.TicketRepository   { return &ticketRepo{coll: s.db.Collection(ticketsColl)} }
func (s *Store) Bookings() store.BookingRepository { return &bookingRepo{coll: s.db.Collection(bookingsColl)} }
func (s *Store) Payments() store.PaymentRepository { return &paymentRepo{coll: s.db.Collection(paymentsColl)} }

// RunInTx runs fn inside a multi-document transaction. The driver retries fn
// on transient errors such as write conflicts.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, tx store.Tx) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, &tx{Store: s})
	})
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type tx struct {
	*Store
}

// Lock bumps a counter document. Two transactions locking the same key write
// the same document, so one of them aborts with a write conflict and retries.
func (t *tx) Lock(ctx context.Context, key string) error {
	_, err := t.db.Collection(locksColl).UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$inc": bson.M{"version": 1}, "$currentDate": bson.M{"lockedAt": true}},
		options.Update().SetUpsert(true),
	)
	return err
}

func objectID(id string, notFound error) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, notFound
	}
	return oid, nil
}

func mapNoDocuments(err error, notFound error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}
	return err
}

func insertedID(res *mongo.InsertOneResult) primitive.ObjectID {
	oid, _ := res.InsertedID.(primitive.ObjectID)
	return oid
}
