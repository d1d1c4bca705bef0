package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ticketbari/internal/status"
	"ticketbari/models"
)

type userRepo struct {
	coll *mongo.Collection
}

func (r *userRepo) Insert(ctx context.Context, user *models.User) error {
	doc := userDoc{
		Email:     models.NormalizeEmail(user.Email),
		Name:      user.Name,
		Photo:     user.Photo,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return status.ErrDuplicate
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	doc.ID = insertedID(res)
	*user = doc.model()
	return nil
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id, status.ErrUserNotFound)
	if err != nil {
		return nil, err
	}
	var doc userDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, mapNoDocuments(err, status.ErrUserNotFound)
	}
	user := doc.model()
	return &user, nil
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var doc userDoc
	err := r.coll.FindOne(ctx,
		bson.M{"email": models.NormalizeEmail(email)},
		options.FindOne().SetCollation(emailCollation),
	).Decode(&doc)
	if err != nil {
		return nil, mapNoDocuments(err, status.ErrUserNotFound)
	}
	user := doc.model()
	return &user, nil
}

func (r *userRepo) List(ctx context.Context) ([]models.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	users := make([]models.User, 0, len(docs))
	for _, d := range docs {
		users = append(users, d.model())
	}
	return users, nil
}

func (r *userRepo) SetRole(ctx context.Context, id string, role models.Role) (bool, error) {
	oid, err := objectID(id, status.ErrUserNotFound)
	if err != nil {
		return false, err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"role": string(role)}})
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, status.ErrUserNotFound
	}
	return res.ModifiedCount > 0, nil
}

func (r *userRepo) CountByRole(ctx context.Context) (map[models.Role]int, error) {
	counts := map[models.Role]int{}
	err := groupCount(ctx, r.coll, "$role", func(key string, n int) {
		counts[models.Role(key)] = n
	})
	return counts, err
}

type groupRow struct {
	Key   string `bson:"_id"`
	Count int    `bson:"count"`
}

func groupCount(ctx context.Context, coll *mongo.Collection, field string, fn func(key string, n int)) error {
	cur, err := coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{{Key: "_id", Value: field}, {Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}}}}},
	})
	if err != nil {
		return err
	}
	var rows []groupRow
	if err := cur.All(ctx, &rows); err != nil {
		return err
	}
	for _, row := range rows {
		fn(row.Key, row.Count)
	}
	return nil
}
