package repositories

import (
	"context"
	"time"

	"github.com/HSouheill/branchstock_backend/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoUserRepository struct {
	collection *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{
		collection: db.Collection("users"),
	}
}

func (r *MongoUserRepository) FindByID(ctx context.Context, uid string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": uid}).Decode(&user); err != nil {
		return nil, classify(err)
	}
	return &user, nil
}

func (r *MongoUserRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.collection.InsertOne(ctx, user)
	return classify(err)
}

func (r *MongoUserRepository) UpdateRole(ctx context.Context, uid string, a models.RoleAssignment) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	filter := bson.M{"_id": uid}
	update := bson.M{
		"$set": bson.M{
			"role":       a.Role,
			"isAdmin":    a.IsAdmin,
			"isWorker":   a.IsWorker,
			"branchId":   a.BranchID,
			"branchName": a.BranchName,
			"updatedAt":  time.Now(),
		},
	}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return classify(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) SetBlocked(ctx context.Context, uid string, blocked bool) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": uid}, bson.M{
		"$set": bson.M{"isBlocked": blocked, "updatedAt": time.Now()},
	})
	if err != nil {
		return classify(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoUserRepository) ListWorkers(ctx context.Context) ([]models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"isWorker": true}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, classify(err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, classify(err)
	}
	return users, nil
}

func (r *MongoUserRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, bson.M{})
	return n, classify(err)
}

func (r *MongoUserRepository) CountWorkers(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	n, err := r.collection.CountDocuments(ctx, bson.M{"isWorker": true})
	return n, classify(err)
}
